package iinventory

import (
	"context"

	"github.com/corray333/backend-labs/bookstore/internal/service/models/book"
)

// ILedger is the inventory ledger: per-book stock with atomic reservations.
type ILedger interface {
	// Reserve atomically decrements stock for one book. It fails with
	// book.ErrInsufficientStock or book.ErrBookNotFound without side effects.
	Reserve(ctx context.Context, bookID, quantity int64) (book.Reservation, error)
	// Release reverses a prior successful reservation.
	Release(ctx context.Context, bookID, quantity int64) error
}

// ICatalog manages the books the ledger tracks.
type ICatalog interface {
	Create(ctx context.Context, b book.Book) (book.Book, error)
	GetByID(ctx context.Context, id int64) (book.Book, error)
	List(ctx context.Context, query book.QueryBooksModel) ([]book.Book, error)
	Restock(ctx context.Context, id, delta int64) (book.Book, error)
}

// IInventory is implemented by stores that serve both the ledger and the catalog.
type IInventory interface {
	ILedger
	ICatalog
}
