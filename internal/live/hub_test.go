package live

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/medconnect/clinic-platform/internal/events"
)

func TestHubBroadcastsToMatchingSubscribers(t *testing.T) {
	hub := NewHub(nil)

	apts, cancelApts := hub.Subscribe(events.CollectionAppointments)
	defer cancelApts()
	all, cancelAll := hub.Subscribe("")
	defer cancelAll()
	msgs, cancelMsgs := hub.Subscribe(events.CollectionMessages)
	defer cancelMsgs()

	event := events.ChangeEvent{
		ID:         uuid.New(),
		Collection: events.CollectionAppointments,
		Op:         events.OpCreated,
		DocumentID: "apt-1",
		CreatedAt:  time.Now().UTC(),
	}
	if err := hub.Handle(context.Background(), event); err != nil {
		t.Fatalf("handle: %v", err)
	}

	select {
	case got := <-apts.C:
		if got.DocumentID != "apt-1" {
			t.Fatalf("unexpected event: %+v", got)
		}
	default:
		t.Fatal("expected appointments subscriber to receive the event")
	}

	select {
	case <-all.C:
	default:
		t.Fatal("expected wildcard subscriber to receive the event")
	}

	select {
	case got := <-msgs.C:
		t.Fatalf("messages subscriber should not receive appointment events, got %+v", got)
	default:
	}
}

func TestHubCancelClosesChannel(t *testing.T) {
	hub := NewHub(nil)
	sub, cancel := hub.Subscribe(events.CollectionPatients)

	if hub.SubscriberCount() != 1 {
		t.Fatalf("expected 1 subscriber, got %d", hub.SubscriberCount())
	}

	cancel()
	cancel() // idempotent

	if hub.SubscriberCount() != 0 {
		t.Fatalf("expected 0 subscribers after cancel, got %d", hub.SubscriberCount())
	}
	if _, ok := <-sub.C; ok {
		t.Fatal("expected channel to be closed after cancel")
	}
}

func TestHubSkipsSlowSubscriber(t *testing.T) {
	hub := NewHub(nil)
	sub, cancel := hub.Subscribe("")
	defer cancel()

	// Fill the buffer past capacity; Handle must not block.
	for i := 0; i < cap(sub.C)+5; i++ {
		if err := hub.Handle(context.Background(), events.ChangeEvent{
			ID:         uuid.New(),
			Collection: events.CollectionMessages,
			Op:         events.OpCreated,
			DocumentID: "m1",
		}); err != nil {
			t.Fatalf("handle: %v", err)
		}
	}
	if len(sub.C) != cap(sub.C) {
		t.Fatalf("expected full buffer, got %d", len(sub.C))
	}
}
