package memory

import (
	"context"
	"sync"
	"testing"

	"github.com/corray333/backend-labs/bookstore/internal/service/models/book"
	"github.com/corray333/backend-labs/bookstore/internal/service/models/currency"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seed(t *testing.T, r *BookRepository, stock, price int64) book.Book {
	t.Helper()

	b, err := r.Create(context.Background(), book.Book{Title: "Solaris", Author: "Lem", Stock: stock, PriceCents: price})
	require.NoError(t, err)

	return b
}

func TestCreate_AssignsIDsAndDefaults(t *testing.T) {
	r := NewBookRepository()

	first := seed(t, r, 1, 100)
	second := seed(t, r, 1, 100)

	assert.Equal(t, int64(1), first.ID)
	assert.Equal(t, int64(2), second.ID)
	assert.Equal(t, currency.Default, first.Currency)
	assert.False(t, first.CreatedAt.IsZero())

	_, err := r.Create(context.Background(), book.Book{Stock: 1})
	assert.ErrorIs(t, err, book.ErrInvalidBook)
}

func TestReserve(t *testing.T) {
	ctx := context.Background()
	r := NewBookRepository()
	b := seed(t, r, 5, 250)

	res, err := r.Reserve(ctx, b.ID, 3)
	require.NoError(t, err)
	assert.Equal(t, book.Reservation{BookID: b.ID, Quantity: 3, UnitPriceCents: 250, Currency: currency.Default}, res)

	_, err = r.Reserve(ctx, b.ID, 3)
	assert.ErrorIs(t, err, book.ErrInsufficientStock)

	_, err = r.Reserve(ctx, 404, 1)
	assert.ErrorIs(t, err, book.ErrBookNotFound)

	_, err = r.Reserve(ctx, b.ID, 0)
	assert.Error(t, err)

	got, err := r.GetByID(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), got.Stock)
}

func TestReleaseRestoresStock(t *testing.T) {
	ctx := context.Background()
	r := NewBookRepository()
	b := seed(t, r, 5, 250)

	_, err := r.Reserve(ctx, b.ID, 5)
	require.NoError(t, err)
	require.NoError(t, r.Release(ctx, b.ID, 5))

	got, err := r.GetByID(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(5), got.Stock)

	assert.ErrorIs(t, r.Release(ctx, 404, 1), book.ErrBookNotFound)
}

func TestReserve_ConcurrentNeverNegative(t *testing.T) {
	ctx := context.Background()
	r := NewBookRepository()
	b := seed(t, r, 100, 1)

	var (
		wg sync.WaitGroup
		mu sync.Mutex
		ok int
	)
	for range 250 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := r.Reserve(ctx, b.ID, 1); err == nil {
				mu.Lock()
				ok++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	got, err := r.GetByID(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, 100, ok)
	assert.Zero(t, got.Stock)
}

func TestRestock(t *testing.T) {
	ctx := context.Background()
	r := NewBookRepository()
	b := seed(t, r, 2, 100)

	got, err := r.Restock(ctx, b.ID, 8)
	require.NoError(t, err)
	assert.Equal(t, int64(10), got.Stock)

	got, err = r.Restock(ctx, b.ID, -10)
	require.NoError(t, err)
	assert.Zero(t, got.Stock)

	_, err = r.Restock(ctx, b.ID, -1)
	assert.ErrorIs(t, err, book.ErrInsufficientStock)

	_, err = r.Restock(ctx, 404, 1)
	assert.ErrorIs(t, err, book.ErrBookNotFound)
}

func TestList_Paginates(t *testing.T) {
	ctx := context.Background()
	r := NewBookRepository()
	for range 5 {
		seed(t, r, 1, 1)
	}

	page, err := r.List(ctx, book.QueryBooksModel{Page: 2, PageSize: 2})
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, int64(3), page[0].ID)
	assert.Equal(t, int64(4), page[1].ID)

	page, err = r.List(ctx, book.QueryBooksModel{Page: 4, PageSize: 2})
	require.NoError(t, err)
	assert.Empty(t, page)
}
