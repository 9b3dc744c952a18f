package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/corray333/backend-labs/bookstore/internal/service/models/book"
	"github.com/corray333/backend-labs/bookstore/internal/service/models/currency"
)

type bookEntry struct {
	mu sync.Mutex
	b  book.Book
}

// BookRepository is an in-memory inventory ledger and catalog.
// The map lock guards membership only; stock changes take the per-book lock.
type BookRepository struct {
	mu     sync.RWMutex
	nextID int64
	books  map[int64]*bookEntry
}

// NewBookRepository creates an empty in-memory book repository.
func NewBookRepository() *BookRepository {
	return &BookRepository{
		nextID: 1,
		books:  make(map[int64]*bookEntry),
	}
}

func (r *BookRepository) entry(id int64) (*bookEntry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.books[id]

	return e, ok
}

// Create inserts a new book and assigns its id.
func (r *BookRepository) Create(_ context.Context, b book.Book) (book.Book, error) {
	if err := b.Validate(); err != nil {
		return book.Book{}, err
	}
	if b.Currency == "" {
		b.Currency = currency.Default
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	b.ID = r.nextID
	r.nextID++
	b.CreatedAt = time.Now().UTC()
	b.UpdatedAt = b.CreatedAt
	r.books[b.ID] = &bookEntry{b: b}

	return b, nil
}

// GetByID returns a copy of the book.
func (r *BookRepository) GetByID(_ context.Context, id int64) (book.Book, error) {
	e, ok := r.entry(id)
	if !ok {
		return book.Book{}, book.ErrBookNotFound
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.b, nil
}

// List returns a page of books ordered by id.
func (r *BookRepository) List(_ context.Context, q book.QueryBooksModel) ([]book.Book, error) {
	q = q.Normalize()

	r.mu.RLock()
	entries := make([]*bookEntry, 0, len(r.books))
	for _, e := range r.books {
		entries = append(entries, e)
	}
	r.mu.RUnlock()

	out := make([]book.Book, 0, len(entries))
	for _, e := range entries {
		e.mu.Lock()
		out = append(out, e.b)
		e.mu.Unlock()
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })

	start := q.Offset()
	if start >= len(out) {
		return []book.Book{}, nil
	}
	end := min(start+q.PageSize, len(out))

	return out[start:end], nil
}

// Reserve decrements stock only if enough is available.
func (r *BookRepository) Reserve(_ context.Context, bookID, quantity int64) (book.Reservation, error) {
	if quantity <= 0 {
		return book.Reservation{}, fmt.Errorf("quantity must be positive, got %d", quantity)
	}
	e, ok := r.entry(bookID)
	if !ok {
		return book.Reservation{}, book.ErrBookNotFound
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.b.Stock < quantity {
		return book.Reservation{}, book.ErrInsufficientStock
	}
	e.b.Stock -= quantity
	e.b.UpdatedAt = time.Now().UTC()

	return book.Reservation{
		BookID:         bookID,
		Quantity:       quantity,
		UnitPriceCents: e.b.PriceCents,
		Currency:       e.b.Currency,
	}, nil
}

// Release gives back stock taken by a reservation.
func (r *BookRepository) Release(_ context.Context, bookID, quantity int64) error {
	if quantity <= 0 {
		return fmt.Errorf("quantity must be positive, got %d", quantity)
	}
	e, ok := r.entry(bookID)
	if !ok {
		return book.ErrBookNotFound
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.b.Stock += quantity
	e.b.UpdatedAt = time.Now().UTC()

	return nil
}

// Restock adds delta (which may be negative) to the stock of a book.
func (r *BookRepository) Restock(_ context.Context, id, delta int64) (book.Book, error) {
	e, ok := r.entry(id)
	if !ok {
		return book.Book{}, book.ErrBookNotFound
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.b.Stock+delta < 0 {
		return book.Book{}, book.ErrInsufficientStock
	}
	e.b.Stock += delta
	e.b.UpdatedAt = time.Now().UTC()

	return e.b, nil
}
