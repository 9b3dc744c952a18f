package outbox

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/corray333/backend-labs/bookstore/internal/service/models/outbox"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type retryCall struct {
	id          int64
	retryCount  int
	lastError   string
	nextRetryAt time.Time
}

type fakeRepo struct {
	pending []outbox.OutboxMessage
	deleted []int64
	retries []retryCall
}

func (f *fakeRepo) Insert(context.Context, outbox.OutboxMessage) error { return nil }

func (f *fakeRepo) GetPendingMessages(_ context.Context, limit int) ([]outbox.OutboxMessage, error) {
	if len(f.pending) > limit {
		return f.pending[:limit], nil
	}

	return f.pending, nil
}

func (f *fakeRepo) Delete(_ context.Context, id int64) error {
	f.deleted = append(f.deleted, id)

	return nil
}

func (f *fakeRepo) UpdateRetry(_ context.Context, id int64, retryCount int, lastError string, nextRetryAt time.Time) error {
	f.retries = append(f.retries, retryCall{id, retryCount, lastError, nextRetryAt})

	return nil
}

type fakeSink struct {
	failKeys map[string]bool
	keys     []string
}

func (s *fakeSink) Publish(_ context.Context, routingKey, _ string, _ []byte) error {
	if s.failKeys[routingKey] {
		return errors.New("nack")
	}
	s.keys = append(s.keys, routingKey)

	return nil
}

func newTestWorker(repo *fakeRepo, s *fakeSink, now time.Time) *Worker {
	w := NewWorker(repo, s)
	w.now = func() time.Time { return now }

	return w
}

func TestProcessMessages_DeletesDelivered(t *testing.T) {
	repo := &fakeRepo{pending: []outbox.OutboxMessage{
		{ID: 1, RoutingKey: "order.created", MaxRetries: 5},
		{ID: 2, RoutingKey: "book.updated", MaxRetries: 5},
	}}
	sink := &fakeSink{}
	w := newTestWorker(repo, sink, time.Now())

	w.processMessages(context.Background())

	assert.Equal(t, []string{"order.created", "book.updated"}, sink.keys)
	assert.Equal(t, []int64{1, 2}, repo.deleted)
	assert.Empty(t, repo.retries)
}

func TestProcessMessages_SchedulesRetryWithBackoff(t *testing.T) {
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	repo := &fakeRepo{pending: []outbox.OutboxMessage{
		{ID: 9, RoutingKey: "order.created", RetryCount: 1, MaxRetries: 5},
	}}
	sink := &fakeSink{failKeys: map[string]bool{"order.created": true}}
	w := newTestWorker(repo, sink, now)

	w.processMessages(context.Background())

	assert.Empty(t, repo.deleted)
	require.Len(t, repo.retries, 1)
	call := repo.retries[0]
	assert.Equal(t, int64(9), call.id)
	assert.Equal(t, 2, call.retryCount)
	assert.Equal(t, "nack", call.lastError)
	assert.Equal(t, now.Add(outbox.Backoff(3)), call.nextRetryAt)
}

func TestProcessMessages_ExhaustedStillRecorded(t *testing.T) {
	repo := &fakeRepo{pending: []outbox.OutboxMessage{
		{ID: 3, RoutingKey: "order.created", RetryCount: 4, MaxRetries: 5},
	}}
	sink := &fakeSink{failKeys: map[string]bool{"order.created": true}}
	w := newTestWorker(repo, sink, time.Now())

	w.processMessages(context.Background())

	require.Len(t, repo.retries, 1)
	assert.Equal(t, 5, repo.retries[0].retryCount)
}

func TestWorker_StopEndsStart(t *testing.T) {
	w := newTestWorker(&fakeRepo{}, &fakeSink{}, time.Now())

	done := make(chan struct{})
	go func() {
		w.Start(context.Background())
		close(done)
	}()
	w.Stop()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("worker did not stop")
	}
}

func TestWorker_StopTwice(t *testing.T) {
	w := newTestWorker(&fakeRepo{}, &fakeSink{}, time.Now())

	assert.NotPanics(t, func() {
		w.Stop()
		w.Stop()
	})
}
