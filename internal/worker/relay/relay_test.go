package relay

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/corray333/backend-labs/bookstore/internal/notify"
	"github.com/corray333/backend-labs/bookstore/internal/service/models/event"
	"github.com/corray333/backend-labs/bookstore/internal/service/models/order"
	"github.com/corray333/backend-labs/bookstore/internal/service/models/outbox"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type published struct {
	routingKey  string
	contentType string
	body        []byte
}

type fakeSink struct {
	mu   sync.Mutex
	err  error
	msgs []published
}

func (s *fakeSink) Publish(_ context.Context, routingKey, contentType string, body []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.msgs = append(s.msgs, published{routingKey: routingKey, contentType: contentType, body: body})

	return nil
}

func (s *fakeSink) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.msgs)
}

type fakeOutbox struct {
	mu       sync.Mutex
	inserted []outbox.OutboxMessage
}

func (f *fakeOutbox) Insert(_ context.Context, msg outbox.OutboxMessage) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.inserted = append(f.inserted, msg)

	return nil
}

func (f *fakeOutbox) GetPendingMessages(context.Context, int) ([]outbox.OutboxMessage, error) {
	return nil, nil
}

func (f *fakeOutbox) Delete(context.Context, int64) error { return nil }

func (f *fakeOutbox) UpdateRetry(context.Context, int64, int, string, time.Time) error { return nil }

func (f *fakeOutbox) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()

	return len(f.inserted)
}

func startRelay(t *testing.T, hub *notify.Hub, r *Relay) {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- r.Run(ctx) }()

	require.Eventually(t, func() bool { return hub.Len() == 1 }, time.Second, 5*time.Millisecond)

	t.Cleanup(func() {
		cancel()
		require.NoError(t, <-done)
	})
}

func TestRelay_ForwardsEvents(t *testing.T) {
	hub := notify.NewHub()
	sink := &fakeSink{}
	startRelay(t, hub, NewRelay(hub, sink))

	e := event.OrderChanged(event.ActionCreated, order.Order{ID: 42, ClientID: "c1"})
	hub.Publish(e)

	require.Eventually(t, func() bool { return sink.count() == 1 }, time.Second, 5*time.Millisecond)

	sink.mu.Lock()
	msg := sink.msgs[0]
	sink.mu.Unlock()
	assert.Equal(t, "order.created", msg.routingKey)
	assert.Equal(t, "application/json", msg.contentType)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(msg.body, &decoded))
	assert.Equal(t, e.ID.String(), decoded["id"])
	assert.Equal(t, "order", decoded["kind"])
}

func TestRelay_ParksFailedPublishInOutbox(t *testing.T) {
	hub := notify.NewHub()
	sink := &fakeSink{err: errors.New("broker down")}
	repo := &fakeOutbox{}
	r := NewRelay(hub, sink, WithOutbox(repo, 3))
	fixed := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	r.now = func() time.Time { return fixed }
	startRelay(t, hub, r)

	e := event.OrderChanged(event.ActionDeleted, order.Order{ID: 7})
	hub.Publish(e)

	require.Eventually(t, func() bool { return repo.count() == 1 }, time.Second, 5*time.Millisecond)

	repo.mu.Lock()
	msg := repo.inserted[0]
	repo.mu.Unlock()
	assert.Equal(t, e.ID.String(), msg.EventID)
	assert.Equal(t, "order.deleted", msg.RoutingKey)
	assert.Equal(t, 3, msg.MaxRetries)
	assert.Equal(t, 0, msg.RetryCount)
	assert.Equal(t, "broker down", msg.LastError)
	assert.Equal(t, fixed.Add(30*time.Second), msg.NextRetryAt)
}

func TestRelay_StopsWhenHubCloses(t *testing.T) {
	hub := notify.NewHub()
	r := NewRelay(hub, &fakeSink{})

	done := make(chan error, 1)
	go func() { done <- r.Run(context.Background()) }()
	require.Eventually(t, func() bool { return hub.Len() == 1 }, time.Second, 5*time.Millisecond)

	hub.Close()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("relay did not stop after hub close")
	}
}
