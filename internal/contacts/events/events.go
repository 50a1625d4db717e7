// Package events describes contact change notifications and the publishers
// that ship them.
package events

import (
	"context"
	"time"

	"addressbook/internal/contacts/models"
	id "addressbook/pkg/domain"
)

// Type names a change to the address book.
type Type string

const (
	ContactCreated Type = "contact.created"
	ContactUpdated Type = "contact.updated"
	ContactDeleted Type = "contact.deleted"
)

// Event is emitted after the backing store accepted a change. Entry is the
// zero value for deletions.
type Event struct {
	Type       Type         `json:"type"`
	ContactID  id.ContactID `json:"contact_id"`
	Entry      models.Entry `json:"entry,omitzero"`
	OccurredAt time.Time    `json:"occurred_at"`
}

// Publisher ships change events to interested consumers.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// NopPublisher drops every event. Used when no brokers are configured.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Event) error { return nil }

// Recorder keeps published events in memory. Tests use it to assert on the
// events an operation produced.
type Recorder struct {
	Events []Event
}

func (r *Recorder) Publish(_ context.Context, event Event) error {
	r.Events = append(r.Events, event)
	return nil
}
