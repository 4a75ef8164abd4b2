package shop

import (
	"github.com/google/uuid"

	ss "github.com/kestrelworks/shopstream"
	"github.com/kestrelworks/shopstream/cache"
	"github.com/kestrelworks/shopstream/projections"
)

// Customer is a write side aggregate of the order shop.
type Customer struct {
	ss.EventRecorder `gorm:"-" json:"-"`

	ID    string `gorm:"primaryKey"`
	Name  string
	Email string
}

func NewCustomerId() string {
	return uuid.NewString()
}

func (c *Customer) AggregateId() ss.AggregateId {
	return ss.AggregateId{Type: "customer", Key: c.ID}
}

func RegisterCustomer(id string, name string, email string) *Customer {
	customer := &Customer{ID: id, Name: name, Email: email}
	customer.Record(CustomerCreated{ID: id, Name: name, Email: email})

	return customer
}

func (c *Customer) Update(name string, email string) {
	c.Name = name
	c.Email = email
	c.Record(CustomerUpdated{ID: c.ID, Name: c.Name, Email: c.Email})
}

func (c *Customer) Remove() {
	c.Record(CustomerDeleted{ID: c.ID, Email: c.Email})
}

type CustomerCreated struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type CustomerUpdated struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type CustomerDeleted struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

const (
	CustomerCreatedEvent = ss.EventType("shop:customer-created")
	CustomerUpdatedEvent = ss.EventType("shop:customer-updated")
	CustomerDeletedEvent = ss.EventType("shop:customer-deleted")
)

// CustomerRecord is the denormalized read side copy of a customer.
type CustomerRecord struct {
	ID    string `bson:"_id" json:"id"`
	Name  string `bson:"name" json:"name"`
	Email string `bson:"email" json:"email"`
}

func (r CustomerRecord) RecordKey() string {
	return r.ID
}

const CustomerQuery = "customers"

// NewCustomerProjection keeps customer records in step with customer
// events. Deletes key on the customer id even though the delete event also
// carries the email; email is neither unique nor stable enough to identify
// a record.
func NewCustomerProjection(store projections.ReadStore[CustomerRecord], invalidator cache.Invalidator) *projections.Projection[CustomerRecord] {
	return projections.NewProjection[CustomerRecord](CustomerQuery, store, invalidator).
		OnCreated(CustomerCreatedEvent, func(event ss.Event) (CustomerRecord, error) {
			created, ok := event.Payload.(CustomerCreated)
			if !ok {
				return CustomerRecord{}, projections.UnexpectedEvent(event)
			}

			return CustomerRecord{ID: created.ID, Name: created.Name, Email: created.Email}, nil
		}).
		OnUpdated(CustomerUpdatedEvent, func(event ss.Event) (CustomerRecord, error) {
			updated, ok := event.Payload.(CustomerUpdated)
			if !ok {
				return CustomerRecord{}, projections.UnexpectedEvent(event)
			}

			return CustomerRecord{ID: updated.ID, Name: updated.Name, Email: updated.Email}, nil
		}).
		OnDeleted(CustomerDeletedEvent, func(event ss.Event) (string, error) {
			deleted, ok := event.Payload.(CustomerDeleted)
			if !ok {
				return "", projections.UnexpectedEvent(event)
			}

			return deleted.ID, nil
		})
}
