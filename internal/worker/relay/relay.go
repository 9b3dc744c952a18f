// Package relay forwards live change events to a message broker so that
// consumers outside the process can follow them.
package relay

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/corray333/backend-labs/bookstore/internal/dal/interfaces/ioutboxrepo"
	"github.com/corray333/backend-labs/bookstore/internal/metrics"
	"github.com/corray333/backend-labs/bookstore/internal/notify"
	"github.com/corray333/backend-labs/bookstore/internal/service/models/event"
	"github.com/corray333/backend-labs/bookstore/internal/service/models/outbox"
)

const contentType = "application/json"

type sink interface {
	Publish(ctx context.Context, routingKey, contentType string, body []byte) error
}

type subscriber interface {
	Subscribe(kinds ...event.Kind) *notify.Subscription
}

// Relay is a hub subscriber that republishes every event to a broker.
// Events the broker refuses are parked in the outbox when one is configured.
type Relay struct {
	hub            subscriber
	sink           sink
	outboxRepo     ioutboxrepo.IOutboxRepository
	maxRetries     int
	publishTimeout time.Duration
	now            func() time.Time
}

// option is a function that configures the Relay.
type option func(*Relay)

// WithOutbox parks failed publishes in repo for the outbox worker.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithOutbox(repo ioutboxrepo.IOutboxRepository, maxRetries int) option {
	return func(r *Relay) {
		r.outboxRepo = repo
		if maxRetries > 0 {
			r.maxRetries = maxRetries
		}
	}
}

// WithPublishTimeout bounds a single broker publish.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithPublishTimeout(d time.Duration) option {
	return func(r *Relay) {
		if d > 0 {
			r.publishTimeout = d
		}
	}
}

// NewRelay creates a new Relay.
func NewRelay(hub subscriber, s sink, opts ...option) *Relay {
	r := &Relay{
		hub:            hub,
		sink:           s,
		maxRetries:     5,
		publishTimeout: 5 * time.Second,
		now:            time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Run forwards events until ctx is done or the hub closes the subscription.
func (r *Relay) Run(ctx context.Context) error {
	sub := r.hub.Subscribe()
	defer sub.Close()

	slog.Info("Broker relay started", "outbox", r.outboxRepo != nil)

	for {
		select {
		case <-ctx.Done():
			slog.Info("Broker relay shutting down")

			return nil
		case e, ok := <-sub.Events():
			if !ok {
				slog.Info("Broker relay subscription closed")

				return nil
			}
			r.forward(ctx, e)
		}
	}
}

func (r *Relay) forward(ctx context.Context, e event.Event) {
	body, err := json.Marshal(e)
	if err != nil {
		metrics.RelayMessages.WithLabelValues("dropped").Inc()
		slog.Error("Failed to marshal event for relay", "event_id", e.ID, "error", err)

		return
	}

	pubCtx, cancel := context.WithTimeout(ctx, r.publishTimeout)
	err = r.sink.Publish(pubCtx, e.RoutingKey(), contentType, body)
	cancel()
	if err == nil {
		metrics.RelayMessages.WithLabelValues("published").Inc()

		return
	}

	if r.outboxRepo == nil {
		metrics.RelayMessages.WithLabelValues("dropped").Inc()
		slog.Warn("Failed to relay event, no outbox configured", "event_id", e.ID, "error", err)

		return
	}

	if err := r.park(ctx, e, body, err); err != nil {
		metrics.RelayMessages.WithLabelValues("dropped").Inc()
		slog.Error("Failed to park event in outbox", "event_id", e.ID, "error", err)

		return
	}
	metrics.RelayMessages.WithLabelValues("outboxed").Inc()
	slog.Warn("Failed to relay event, parked in outbox", "event_id", e.ID, "error", err)
}

func (r *Relay) park(ctx context.Context, e event.Event, body []byte, cause error) error {
	now := r.now()
	msg := outbox.OutboxMessage{
		EventID:     e.ID.String(),
		RoutingKey:  e.RoutingKey(),
		Payload:     body,
		ContentType: contentType,
		MaxRetries:  r.maxRetries,
		LastError:   cause.Error(),
		CreatedAt:   now,
		UpdatedAt:   now,
		NextRetryAt: now.Add(outbox.Backoff(1)),
	}

	if err := r.outboxRepo.Insert(context.WithoutCancel(ctx), msg); err != nil {
		return fmt.Errorf("failed to insert outbox message: %w", err)
	}

	return nil
}
