package memory

import (
	"context"
	"testing"
	"time"

	"github.com/corray333/backend-labs/bookstore/internal/service/models/order"
	"github.com/corray333/backend-labs/bookstore/internal/service/models/orderline"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newOrder(clientID string) order.Order {
	return order.Order{
		UserID:   1,
		ClientID: clientID,
		OrderLines: []orderline.OrderLine{
			{BookID: 1, Quantity: 2, UnitPriceCents: 300},
		},
	}
}

func TestCreate_AssignsIncreasingIDsAndTotals(t *testing.T) {
	s := NewOrderStore()

	a, err := s.Create(context.Background(), newOrder("c"))
	require.NoError(t, err)
	b, err := s.Create(context.Background(), newOrder("c"))
	require.NoError(t, err)

	assert.Less(t, a.ID, b.ID)
	assert.Equal(t, int64(2), a.TotalItems)
	assert.Equal(t, int64(600), a.TotalCents)
	assert.False(t, a.CreatedAt.IsZero())
}

func TestFindByID_ReturnsCopy(t *testing.T) {
	s := NewOrderStore()
	created, err := s.Create(context.Background(), newOrder("c"))
	require.NoError(t, err)

	created.OrderLines[0].Quantity = 99

	got, err := s.FindByID(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), got.OrderLines[0].Quantity)

	_, err = s.FindByID(context.Background(), 404)
	assert.ErrorIs(t, err, order.ErrOrderNotFound)
}

func TestListByClient_NewestFirstWithoutDeleted(t *testing.T) {
	s := NewOrderStore()
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	tick := 0
	s.now = func() time.Time {
		tick++

		return base.Add(time.Duration(tick) * time.Minute)
	}

	var ids []int64
	for range 4 {
		o, err := s.Create(context.Background(), newOrder("c"))
		require.NoError(t, err)
		ids = append(ids, o.ID)
	}
	_, err := s.Create(context.Background(), newOrder("other"))
	require.NoError(t, err)

	changed, err := s.SoftDelete(context.Background(), ids[3])
	require.NoError(t, err)
	require.True(t, changed)

	page, err := s.ListByClient(context.Background(), order.QueryOrdersModel{ClientID: "c", Page: 1, PageSize: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(3), page.Total)
	require.Len(t, page.Orders, 2)
	assert.Equal(t, ids[2], page.Orders[0].ID)
	assert.Equal(t, ids[1], page.Orders[1].ID)

	page, err = s.ListByClient(context.Background(), order.QueryOrdersModel{ClientID: "c", Page: 2, PageSize: 2})
	require.NoError(t, err)
	require.Len(t, page.Orders, 1)
	assert.Equal(t, ids[0], page.Orders[0].ID)
}

func TestSoftDelete_Idempotent(t *testing.T) {
	s := NewOrderStore()
	o, err := s.Create(context.Background(), newOrder("c"))
	require.NoError(t, err)

	changed, err := s.SoftDelete(context.Background(), o.ID)
	require.NoError(t, err)
	assert.True(t, changed)

	changed, err = s.SoftDelete(context.Background(), o.ID)
	require.NoError(t, err)
	assert.False(t, changed)

	got, err := s.FindByID(context.Background(), o.ID)
	require.NoError(t, err)
	assert.True(t, got.IsDeleted)

	_, err = s.SoftDelete(context.Background(), 404)
	assert.ErrorIs(t, err, order.ErrOrderNotFound)
}
