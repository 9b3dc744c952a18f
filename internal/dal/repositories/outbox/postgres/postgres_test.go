package postgresrepo

import (
	"testing"
	"time"

	"github.com/corray333/backend-labs/bookstore/internal/service/models/outbox"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPendingQuery_DueAndNotExhausted(t *testing.T) {
	r := NewOutboxRepository(nil)
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	r.now = func() time.Time { return now }

	query, args, err := r.pendingQuery(50)
	require.NoError(t, err)

	assert.Contains(t, query, "FROM outbox WHERE next_retry_at <= $1 AND retry_count < max_retries")
	assert.Contains(t, query, "ORDER BY next_retry_at ASC LIMIT 50")
	assert.Equal(t, []any{now}, args)
}

func TestInsertQuery(t *testing.T) {
	r := NewOutboxRepository(nil)

	query, args, err := r.insertQuery(outbox.OutboxMessage{
		EventID:     "e-1",
		RoutingKey:  "order.created",
		Payload:     []byte(`{}`),
		ContentType: "application/json",
		MaxRetries:  5,
	})
	require.NoError(t, err)

	assert.Contains(t, query, "INSERT INTO outbox (event_id,routing_key,payload,content_type")
	assert.Len(t, args, 10)
	assert.Equal(t, "order.created", args[1])
}
