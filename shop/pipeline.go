package shop

import (
	"context"

	"github.com/google/wire"

	ss "github.com/kestrelworks/shopstream"
	"github.com/kestrelworks/shopstream/cache"
	"github.com/kestrelworks/shopstream/projections"
	"github.com/kestrelworks/shopstream/uow"
)

// Pipeline assembles the write store, event log, projections and cache
// invalidation into a single commit path for the shop.
type Pipeline struct {
	coordinator *uow.Coordinator
	dispatcher  *ss.Dispatcher

	Customers *projections.Projection[CustomerRecord]
	Orders    *projections.Projection[OrderRecord]
}

func NewPipeline(
	store uow.WriteStore,
	log ss.EventLog,
	customers projections.ReadStore[CustomerRecord],
	orders projections.ReadStore[OrderRecord],
	invalidator cache.Invalidator,
	options ...uow.CoordinatorOption,
) *Pipeline {
	dispatcher := ss.NewDispatcher()

	pipeline := &Pipeline{
		dispatcher: dispatcher,
		Customers:  NewCustomerProjection(customers, invalidator),
		Orders:     NewOrderProjection(orders, invalidator),
	}

	pipeline.Customers.Subscribe(dispatcher)
	pipeline.Orders.Subscribe(dispatcher)

	pipeline.coordinator = uow.NewCoordinator(store, log, dispatcher, options...)

	return pipeline
}

// Commit flushes tracked changes and propagates their events to the read side.
func (p *Pipeline) Commit(ctx context.Context) error {
	return p.coordinator.Commit(ctx)
}

func (p *Pipeline) Close() error {
	return p.coordinator.Close()
}

var PipelineSet = wire.NewSet(NewPipeline)
