package postgresrepo

import (
	"testing"

	"github.com/corray333/backend-labs/bookstore/internal/service/models/orderline"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBulkInsertQuery_KeepsPosition(t *testing.T) {
	r := NewPostgresOrderLineRepository(nil)

	query, args, err := r.bulkInsertQuery(11, []orderline.OrderLine{
		{BookID: 7, Quantity: 2, UnitPriceCents: 500},
		{BookID: 3, Quantity: 1, UnitPriceCents: 900},
	})
	require.NoError(t, err)

	assert.Equal(t,
		"INSERT INTO order_lines (order_id,position,book_id,quantity,unit_price_cents) "+
			"VALUES ($1,$2,$3,$4,$5),($6,$7,$8,$9,$10)",
		query,
	)
	assert.Equal(t, []any{
		int64(11), 0, int64(7), int64(2), int64(500),
		int64(11), 1, int64(3), int64(1), int64(900),
	}, args)
}

func TestQueryByOrderIDsQuery(t *testing.T) {
	r := NewPostgresOrderLineRepository(nil)

	query, args, err := r.queryByOrderIDsQuery([]int64{4, 5})
	require.NoError(t, err)

	assert.Contains(t, query, "FROM order_lines WHERE order_id IN ($1,$2) ORDER BY order_id, position")
	assert.Equal(t, []any{int64(4), int64(5)}, args)
}
