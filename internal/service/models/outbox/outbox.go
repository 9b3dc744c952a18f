package outbox

import (
	"math"
	"time"
)

// OutboxMessage is an event that could not be handed to the broker and waits for redelivery.
type OutboxMessage struct {
	ID          int64
	EventID     string
	RoutingKey  string
	Payload     []byte
	ContentType string
	RetryCount  int
	MaxRetries  int
	LastError   string
	CreatedAt   time.Time
	UpdatedAt   time.Time
	NextRetryAt time.Time
}

// Backoff returns the delay before the given retry attempt: 30s, 60s, 120s, ...
func Backoff(retryCount int) time.Duration {
	seconds := math.Pow(2, float64(retryCount-1)) * 30
	if retryCount < 1 {
		seconds = 30
	}

	return time.Duration(seconds) * time.Second
}

// Exhausted reports whether the message has used up its retries.
func (m OutboxMessage) Exhausted() bool {
	return m.RetryCount >= m.MaxRetries
}
