package ws

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"careerboard/internal/notify"
)

func newTestClient(hub *Hub, buffer int) *Client {
	return &Client{hub: hub, send: make(chan []byte, buffer)}
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("condition not met before deadline")
}

func TestHub_BroadcastReachesClients(t *testing.T) {
	hub := NewHub(nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)

	a, b := newTestClient(hub, 4), newTestClient(hub, 4)
	hub.Register(a)
	hub.Register(b)
	waitFor(t, func() bool { return hub.ClientCount() == 2 })

	hub.Broadcast([]byte("hello"))
	for _, c := range []*Client{a, b} {
		select {
		case msg := <-c.send:
			if string(msg) != "hello" {
				t.Fatalf("unexpected message %q", msg)
			}
		case <-time.After(2 * time.Second):
			t.Fatalf("message not delivered")
		}
	}
}

func TestHub_DropsSlowClient(t *testing.T) {
	hub := NewHub(nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)

	slow := newTestClient(hub, 0)
	hub.Register(slow)
	waitFor(t, func() bool { return hub.ClientCount() == 1 })

	hub.Broadcast([]byte("x"))
	waitFor(t, func() bool { return hub.ClientCount() == 0 })
	if _, ok := <-slow.send; ok {
		t.Fatalf("expected send channel to be closed")
	}
}

func TestHub_RunStopsOnCancel(t *testing.T) {
	hub := NewHub(nil)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		hub.Run(ctx)
		close(done)
	}()

	c := newTestClient(hub, 1)
	hub.Register(c)
	waitFor(t, func() bool { return hub.ClientCount() == 1 })
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("Run did not return")
	}
	if hub.ClientCount() != 0 {
		t.Fatalf("expected clients to be released")
	}
}

func TestSink_PublishesJSON(t *testing.T) {
	hub := NewHub(nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)

	c := newTestClient(hub, 1)
	hub.Register(c)
	waitFor(t, func() bool { return hub.ClientCount() == 1 })

	sink := NewSink(hub)
	sink.now = func() time.Time { return time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC) }
	sink.Publish(context.Background(), notify.Event{Type: notify.EventListingCreated, Resource: "jobs", ID: "j1"})

	select {
	case msg := <-c.send:
		var evt notify.Event
		if err := json.Unmarshal(msg, &evt); err != nil {
			t.Fatalf("bad payload: %v", err)
		}
		if evt.Type != notify.EventListingCreated || evt.ID != "j1" || evt.At.IsZero() {
			t.Fatalf("unexpected event: %+v", evt)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("event not delivered")
	}
}

func TestSink_NilHubIsNoop(t *testing.T) {
	var s *Sink
	s.Publish(context.Background(), notify.Event{Type: "x"})
	NewSink(nil).Publish(context.Background(), notify.Event{Type: "x"})
}
