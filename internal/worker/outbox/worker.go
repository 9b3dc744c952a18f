package outbox

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/corray333/backend-labs/bookstore/internal/dal/interfaces/ioutboxrepo"
	"github.com/corray333/backend-labs/bookstore/internal/metrics"
	"github.com/corray333/backend-labs/bookstore/internal/service/models/outbox"
	"github.com/spf13/viper"
)

type sink interface {
	Publish(ctx context.Context, routingKey, contentType string, body []byte) error
}

// Worker redelivers relay messages parked in the outbox table.
type Worker struct {
	outboxRepo   ioutboxrepo.IOutboxRepository
	sink         sink
	pollInterval time.Duration
	batchSize    int
	stopCh       chan struct{}
	stopOnce     sync.Once
	now          func() time.Time
}

// NewWorker creates a new outbox worker.
func NewWorker(
	outboxRepo ioutboxrepo.IOutboxRepository,
	s sink,
) *Worker {
	pollIntervalSeconds := viper.GetInt("outbox.poll_interval_seconds")
	if pollIntervalSeconds == 0 {
		pollIntervalSeconds = 10
	}

	batchSize := viper.GetInt("outbox.batch_size")
	if batchSize == 0 {
		batchSize = 100
	}

	return &Worker{
		outboxRepo:   outboxRepo,
		sink:         s,
		pollInterval: time.Duration(pollIntervalSeconds) * time.Second,
		batchSize:    batchSize,
		stopCh:       make(chan struct{}),
		now:          time.Now,
	}
}

// Start begins processing messages from the outbox.
func (w *Worker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	slog.Info("Outbox worker started", "poll_interval", w.pollInterval, "batch_size", w.batchSize)

	for {
		select {
		case <-ctx.Done():
			slog.Info("Outbox worker shutting down")

			return
		case <-w.stopCh:
			slog.Info("Outbox worker stopped")

			return
		case <-ticker.C:
			w.processMessages(ctx)
		}
	}
}

// Stop stops the worker. Safe to call more than once.
func (w *Worker) Stop() {
	w.stopOnce.Do(func() { close(w.stopCh) })
}

// processMessages retrieves and redelivers pending messages from the outbox.
func (w *Worker) processMessages(ctx context.Context) {
	messages, err := w.outboxRepo.GetPendingMessages(ctx, w.batchSize)
	if err != nil {
		slog.Error("Failed to get pending messages from outbox", "error", err)

		return
	}

	if len(messages) == 0 {
		return
	}

	slog.Info("Processing outbox messages", "count", len(messages))

	for _, msg := range messages {
		if err := ctx.Err(); err != nil {
			return
		}
		w.redeliver(ctx, msg)
	}
}

func (w *Worker) redeliver(ctx context.Context, msg outbox.OutboxMessage) {
	err := w.sink.Publish(ctx, msg.RoutingKey, msg.ContentType, msg.Payload)
	if err == nil {
		metrics.RelayMessages.WithLabelValues("redelivered").Inc()
		if err := w.outboxRepo.Delete(ctx, msg.ID); err != nil {
			slog.Error("Failed to delete message from outbox after successful publish",
				"outbox_id", msg.ID,
				"error", err,
			)

			return
		}
		slog.Info("Message successfully published and removed from outbox", "outbox_id", msg.ID)

		return
	}

	msg.RetryCount++
	nextRetryAt := w.now().Add(outbox.Backoff(msg.RetryCount + 1))

	if msg.Exhausted() {
		metrics.RelayMessages.WithLabelValues("exhausted").Inc()
		slog.Error("Outbox message exhausted its retries",
			"outbox_id", msg.ID,
			"event_id", msg.EventID,
			"retry_count", msg.RetryCount,
			"error", err,
		)
	} else {
		metrics.RelayMessages.WithLabelValues("retry").Inc()
		slog.Warn("Failed to publish message from outbox, will retry",
			"outbox_id", msg.ID,
			"retry_count", msg.RetryCount,
			"next_retry", nextRetryAt,
			"error", err,
		)
	}

	if err := w.outboxRepo.UpdateRetry(ctx, msg.ID, msg.RetryCount, err.Error(), nextRetryAt); err != nil {
		slog.Error("Failed to update retry information", "outbox_id", msg.ID, "error", err)
	}
}
