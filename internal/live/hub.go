// Package live fans committed change events out to websocket subscribers so
// clients can react to store changes without polling.
package live

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/medconnect/clinic-platform/internal/events"
	"github.com/medconnect/clinic-platform/pkg/logging"
)

// Subscription receives change events for one collection filter.
type Subscription struct {
	id         string
	collection string // empty subscribes to every collection
	C          chan events.ChangeEvent
}

// Hub tracks active subscriptions and broadcasts events to them.
type Hub struct {
	logger *logging.Logger

	mu   sync.RWMutex
	subs map[string]*Subscription
}

func NewHub(logger *logging.Logger) *Hub {
	if logger == nil {
		logger = logging.Default()
	}
	return &Hub{
		logger: logger,
		subs:   make(map[string]*Subscription),
	}
}

// Subscribe registers interest in a collection. An empty collection matches
// everything. The returned cancel func tears the subscription down; after it
// returns the channel is closed.
func (h *Hub) Subscribe(collection string) (*Subscription, func()) {
	sub := &Subscription{
		id:         uuid.NewString(),
		collection: collection,
		C:          make(chan events.ChangeEvent, 32),
	}

	h.mu.Lock()
	h.subs[sub.id] = sub
	h.mu.Unlock()

	cancel := func() {
		h.mu.Lock()
		if _, ok := h.subs[sub.id]; ok {
			delete(h.subs, sub.id)
			close(sub.C)
		}
		h.mu.Unlock()
	}
	return sub, cancel
}

// SubscriberCount reports active subscriptions, mostly for tests and logs.
func (h *Hub) SubscriberCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

// Handle implements events.DeliveryHandler. Slow subscribers are skipped
// rather than blocking the dispatcher.
func (h *Hub) Handle(_ context.Context, event events.ChangeEvent) error {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, sub := range h.subs {
		if sub.collection != "" && sub.collection != event.Collection {
			continue
		}
		select {
		case sub.C <- event:
		default:
			h.logger.Warn("dropping event for slow subscriber", "subscription", sub.id, "collection", event.Collection)
		}
	}
	return nil
}
