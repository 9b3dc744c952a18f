// Package notify is the live notification fan-out: best-effort, non-blocking
// delivery of change events to whoever is subscribed right now.
package notify

import (
	"log/slog"
	"sync"

	"github.com/corray333/backend-labs/bookstore/internal/metrics"
	"github.com/corray333/backend-labs/bookstore/internal/service/models/event"
	"github.com/google/uuid"
)

const defaultBufferSize = 64

// Hub broadcasts events to subscribers. A slow subscriber loses events
// instead of slowing down publishers or other subscribers.
type Hub struct {
	mu         sync.RWMutex
	subs       map[uuid.UUID]*Subscription
	bufferSize int
	closed     bool
}

// option is a function that configures the Hub.
type option func(*Hub)

// WithBufferSize sets the per-subscriber buffer.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithBufferSize(n int) option {
	return func(h *Hub) {
		if n > 0 {
			h.bufferSize = n
		}
	}
}

// NewHub creates a new Hub.
func NewHub(opts ...option) *Hub {
	h := &Hub{
		subs:       make(map[uuid.UUID]*Subscription),
		bufferSize: defaultBufferSize,
	}
	for _, opt := range opts {
		opt(h)
	}

	return h
}

// Subscription is one listener registered on the hub.
type Subscription struct {
	id    uuid.UUID
	kinds map[event.Kind]struct{}
	ch    chan event.Event
	hub   *Hub
}

// ID returns the subscription id.
func (s *Subscription) ID() uuid.UUID {
	return s.id
}

// Events returns the delivery channel. It is closed when the subscription ends.
func (s *Subscription) Events() <-chan event.Event {
	return s.ch
}

// Close unsubscribes. Safe to call more than once.
func (s *Subscription) Close() {
	s.hub.Unsubscribe(s.id)
}

func (s *Subscription) wants(k event.Kind) bool {
	if len(s.kinds) == 0 {
		return true
	}
	_, ok := s.kinds[k]

	return ok
}

// Subscribe registers a listener for the given kinds; no kinds means all.
// Subscribing to a closed hub returns an already closed subscription.
func (h *Hub) Subscribe(kinds ...event.Kind) *Subscription {
	sub := &Subscription{
		id:    uuid.New(),
		kinds: make(map[event.Kind]struct{}, len(kinds)),
		ch:    make(chan event.Event, h.bufferSize),
		hub:   h,
	}
	for _, k := range kinds {
		sub.kinds[k] = struct{}{}
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		close(sub.ch)

		return sub
	}
	h.subs[sub.id] = sub
	metrics.NotifySubscribers.Inc()

	return sub
}

// Unsubscribe removes a listener and closes its channel.
func (h *Hub) Unsubscribe(id uuid.UUID) {
	h.mu.Lock()
	defer h.mu.Unlock()

	sub, ok := h.subs[id]
	if !ok {
		return
	}
	delete(h.subs, id)
	close(sub.ch)
	metrics.NotifySubscribers.Dec()
}

// Publish offers the event to every matching subscriber without blocking and
// returns how many accepted it. Full buffers drop the event for that subscriber only.
func (h *Hub) Publish(e event.Event) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.closed {
		return 0
	}

	metrics.NotifyPublished.WithLabelValues(string(e.Kind)).Inc()

	delivered := 0
	for _, sub := range h.subs {
		if !sub.wants(e.Kind) {
			continue
		}
		select {
		case sub.ch <- e:
			delivered++
		default:
			metrics.NotifyDropped.WithLabelValues(string(e.Kind)).Inc()
			slog.Warn("Notification dropped, subscriber buffer full",
				"subscription_id", sub.id,
				"event_id", e.ID,
				"kind", e.Kind,
				"action", e.Action,
			)
		}
	}

	return delivered
}

// Len returns the number of live subscribers.
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return len(h.subs)
}

// Close ends every subscription. Later publishes are no-ops.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	for id, sub := range h.subs {
		delete(h.subs, id)
		close(sub.ch)
		metrics.NotifySubscribers.Dec()
	}
}
