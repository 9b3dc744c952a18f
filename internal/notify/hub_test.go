package notify

import (
	"sync"
	"testing"
	"time"

	"github.com/corray333/backend-labs/bookstore/internal/service/models/book"
	"github.com/corray333/backend-labs/bookstore/internal/service/models/event"
	"github.com/corray333/backend-labs/bookstore/internal/service/models/order"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func orderEvent() event.Event {
	return event.OrderChanged(event.ActionCreated, order.Order{ID: 1})
}

func bookEvent() event.Event {
	return event.BookChanged(event.ActionUpdated, book.Book{ID: 1})
}

func TestPublish_DeliversToMatchingSubscribers(t *testing.T) {
	h := NewHub()
	all := h.Subscribe()
	orders := h.Subscribe(event.KindOrder)
	books := h.Subscribe(event.KindBook)

	assert.Equal(t, 2, h.Publish(orderEvent()))

	assert.Len(t, all.Events(), 1)
	assert.Len(t, orders.Events(), 1)
	assert.Empty(t, books.Events())
}

func TestPublish_FullBufferDropsOnlyForSlowSubscriber(t *testing.T) {
	h := NewHub(WithBufferSize(2))
	slow := h.Subscribe()
	fast := h.Subscribe()

	for range 3 {
		h.Publish(orderEvent())
		<-fast.Events()
	}

	assert.Len(t, slow.Events(), 2)
	assert.Empty(t, fast.Events())
}

func TestPublish_NeverBlocks(t *testing.T) {
	h := NewHub(WithBufferSize(1))
	h.Subscribe()

	done := make(chan struct{})
	go func() {
		for range 1000 {
			h.Publish(bookEvent())
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("publish blocked on a full subscriber")
	}
}

func TestUnsubscribe_ClosesChannel(t *testing.T) {
	h := NewHub()
	sub := h.Subscribe()
	require.Equal(t, 1, h.Len())

	sub.Close()
	sub.Close()

	_, ok := <-sub.Events()
	assert.False(t, ok)
	assert.Zero(t, h.Len())
	assert.Zero(t, h.Publish(orderEvent()))
}

func TestClose_EndsEverySubscription(t *testing.T) {
	h := NewHub()
	a := h.Subscribe()
	b := h.Subscribe(event.KindShop)

	h.Close()
	h.Close()

	_, ok := <-a.Events()
	assert.False(t, ok)
	_, ok = <-b.Events()
	assert.False(t, ok)
	assert.Zero(t, h.Publish(orderEvent()))

	late := h.Subscribe()
	_, ok = <-late.Events()
	assert.False(t, ok)
	late.Close()
}

func TestHub_ConcurrentPublishAndSubscribe(t *testing.T) {
	h := NewHub(WithBufferSize(4))

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(2)
		go func() {
			defer wg.Done()
			for range 100 {
				h.Publish(orderEvent())
			}
		}()
		go func() {
			defer wg.Done()
			for range 20 {
				sub := h.Subscribe(event.KindOrder)
				sub.Close()
			}
		}()
	}
	wg.Wait()

	assert.Zero(t, h.Len())
}
