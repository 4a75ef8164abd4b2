package shop

import (
	"github.com/google/uuid"

	ss "github.com/kestrelworks/shopstream"
	"github.com/kestrelworks/shopstream/cache"
	"github.com/kestrelworks/shopstream/projections"
)

type OrderStatus string

const (
	OrderStatusOpen      = OrderStatus("open")
	OrderStatusCancelled = OrderStatus("cancelled")
)

// Order is a write side aggregate of the order shop.
type Order struct {
	ss.EventRecorder `gorm:"-" json:"-"`

	ID         string `gorm:"primaryKey"`
	CustomerID string
	Status     OrderStatus
	TotalCents int64
}

func NewOrderId() string {
	return uuid.NewString()
}

func (o *Order) AggregateId() ss.AggregateId {
	return ss.AggregateId{Type: "order", Key: o.ID}
}

func PlaceOrder(id string, customerId string, totalCents int64) *Order {
	order := &Order{ID: id, CustomerID: customerId, Status: OrderStatusOpen, TotalCents: totalCents}
	order.Record(OrderPlaced{ID: id, CustomerID: customerId, TotalCents: totalCents})

	return order
}

func (o *Order) Amend(totalCents int64) {
	o.TotalCents = totalCents
	o.Record(OrderAmended{ID: o.ID, CustomerID: o.CustomerID, TotalCents: o.TotalCents})
}

func (o *Order) Cancel() {
	o.Status = OrderStatusCancelled
	o.Record(OrderCancelled{ID: o.ID})
}

type OrderPlaced struct {
	ID         string `json:"id"`
	CustomerID string `json:"customer_id"`
	TotalCents int64  `json:"total_cents"`
}

type OrderAmended struct {
	ID         string `json:"id"`
	CustomerID string `json:"customer_id"`
	TotalCents int64  `json:"total_cents"`
}

type OrderCancelled struct {
	ID string `json:"id"`
}

const (
	OrderPlacedEvent    = ss.EventType("shop:order-placed")
	OrderAmendedEvent   = ss.EventType("shop:order-amended")
	OrderCancelledEvent = ss.EventType("shop:order-cancelled")
)

// OrderRecord is the denormalized read side copy of an order.
type OrderRecord struct {
	ID         string `bson:"_id" json:"id"`
	CustomerID string `bson:"customer_id" json:"customer_id"`
	Status     string `bson:"status" json:"status"`
	TotalCents int64  `bson:"total_cents" json:"total_cents"`
}

func (r OrderRecord) RecordKey() string {
	return r.ID
}

const OrderQuery = "orders"

// NewOrderProjection keeps order records in step with order events. A
// cancelled order is removed from the read model; the write side retains it.
func NewOrderProjection(store projections.ReadStore[OrderRecord], invalidator cache.Invalidator) *projections.Projection[OrderRecord] {
	return projections.NewProjection[OrderRecord](OrderQuery, store, invalidator).
		OnCreated(OrderPlacedEvent, func(event ss.Event) (OrderRecord, error) {
			placed, ok := event.Payload.(OrderPlaced)
			if !ok {
				return OrderRecord{}, projections.UnexpectedEvent(event)
			}

			return OrderRecord{
				ID:         placed.ID,
				CustomerID: placed.CustomerID,
				Status:     string(OrderStatusOpen),
				TotalCents: placed.TotalCents,
			}, nil
		}).
		OnUpdated(OrderAmendedEvent, func(event ss.Event) (OrderRecord, error) {
			amended, ok := event.Payload.(OrderAmended)
			if !ok {
				return OrderRecord{}, projections.UnexpectedEvent(event)
			}

			return OrderRecord{
				ID:         amended.ID,
				CustomerID: amended.CustomerID,
				Status:     string(OrderStatusOpen),
				TotalCents: amended.TotalCents,
			}, nil
		}).
		OnDeleted(OrderCancelledEvent, func(event ss.Event) (string, error) {
			cancelled, ok := event.Payload.(OrderCancelled)
			if !ok {
				return "", projections.UnexpectedEvent(event)
			}

			return cancelled.ID, nil
		})
}
