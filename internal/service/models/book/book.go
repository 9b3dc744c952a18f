package book

import (
	"errors"
	"time"

	"github.com/corray333/backend-labs/bookstore/internal/service/models/currency"
)

var (
	// ErrBookNotFound is returned when a book id is unknown to the inventory.
	ErrBookNotFound = errors.New("book not found")
	// ErrInsufficientStock is returned when a reservation would drive stock negative.
	ErrInsufficientStock = errors.New("insufficient stock")
	// ErrInvalidBook is returned when a book fails validation.
	ErrInvalidBook = errors.New("invalid book")
)

// Book represents a catalog entry together with its available stock.
type Book struct {
	ID         int64             `json:"id"`
	Title      string            `json:"title"`
	Author     string            `json:"author"`
	Stock      int64             `json:"stock"`
	PriceCents int64             `json:"priceCents"`
	Currency   currency.Currency `json:"currency"`
	CreatedAt  time.Time         `json:"createdAt"`
	UpdatedAt  time.Time         `json:"updatedAt"`
}

// Validate checks the invariants of a new book.
func (b *Book) Validate() error {
	switch {
	case b.Title == "":
		return errors.Join(ErrInvalidBook, errors.New("title is required"))
	case b.Stock < 0:
		return errors.Join(ErrInvalidBook, errors.New("stock must be >= 0"))
	case b.PriceCents < 0:
		return errors.Join(ErrInvalidBook, errors.New("price must be >= 0"))
	}

	return nil
}

// Reservation is a provisional stock decrement for one order line.
type Reservation struct {
	BookID         int64
	Quantity       int64
	UnitPriceCents int64
	Currency       currency.Currency
}
