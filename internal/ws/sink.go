package ws

import (
	"context"
	"encoding/json"
	"time"

	"careerboard/internal/notify"
)

// Sink publishes listing events to every connected client.
type Sink struct {
	hub *Hub
	now func() time.Time
}

func NewSink(hub *Hub) *Sink {
	return &Sink{hub: hub, now: time.Now}
}

func (s *Sink) Publish(_ context.Context, evt notify.Event) {
	if s == nil || s.hub == nil {
		return
	}
	if evt.At.IsZero() {
		evt.At = s.now().UTC()
	}
	b, err := json.Marshal(evt)
	if err != nil {
		return
	}
	s.hub.Broadcast(b)
}

var _ notify.Sink = (*Sink)(nil)
