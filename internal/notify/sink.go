// Package notify carries listing change events to whatever sink is installed.
package notify

import (
	"context"
	"time"
)

const (
	EventListingCreated = "listing.created"
	EventListingBulk    = "listing.bulk_uploaded"
)

type Event struct {
	Type     string    `json:"type"`
	Resource string    `json:"resource"`
	ID       string    `json:"id,omitempty"`
	Count    int       `json:"count,omitempty"`
	At       time.Time `json:"at"`
}

// Sink receives events. Publish must not block the caller on slow consumers and never fails
// the operation that produced the event.
type Sink interface {
	Publish(ctx context.Context, evt Event)
}

// Nop discards every event.
type Nop struct{}

func (Nop) Publish(context.Context, Event) {}
