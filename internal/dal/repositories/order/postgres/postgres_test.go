package postgresrepo

import (
	"testing"
	"time"

	"github.com/corray333/backend-labs/bookstore/internal/service/models/currency"
	"github.com/corray333/backend-labs/bookstore/internal/service/models/order"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInsertQuery(t *testing.T) {
	r := NewPostgresOrderRepository(nil)
	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

	query, args, err := r.insertQuery(OrderDalFromModel(&order.Order{
		UserID:     3,
		ClientID:   "c-1",
		TotalItems: 4,
		TotalCents: 1200,
		Currency:   currency.CurrencyRUB,
		CreatedAt:  now,
		UpdatedAt:  now,
	}))
	require.NoError(t, err)

	assert.Equal(t,
		"INSERT INTO orders (user_id,client_id,total_items,total_cents,currency,is_deleted,created_at,updated_at) "+
			"VALUES ($1,$2,$3,$4,$5,$6,$7,$8) RETURNING id",
		query,
	)
	assert.Len(t, args, 8)
}

func TestQueryByClientQuery_NewestFirstLiveOnly(t *testing.T) {
	r := NewPostgresOrderRepository(nil)

	query, args, err := r.queryByClientQuery(order.QueryOrdersModel{ClientID: "c-1", Page: 3, PageSize: 10})
	require.NoError(t, err)

	assert.Contains(t, query, "FROM orders WHERE client_id = $1 AND is_deleted = $2")
	assert.Contains(t, query, "ORDER BY created_at DESC, id DESC LIMIT 10 OFFSET 20")
	assert.Equal(t, []any{"c-1", false}, args)
}

func TestSoftDeleteQuery_OnlyTouchesLiveOrders(t *testing.T) {
	r := NewPostgresOrderRepository(nil)

	query, args, err := r.softDeleteQuery(9)
	require.NoError(t, err)

	assert.Equal(t,
		"UPDATE orders SET is_deleted = $1, updated_at = now() WHERE id = $2 AND is_deleted = $3",
		query,
	)
	assert.Equal(t, []any{true, int64(9), false}, args)
}
