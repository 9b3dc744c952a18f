package booksvc

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/corray333/backend-labs/bookstore/internal/dal/interfaces/iinventory"
	"github.com/corray333/backend-labs/bookstore/internal/service/models/book"
	"github.com/corray333/backend-labs/bookstore/internal/service/models/event"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

type publisher interface {
	Publish(e event.Event) int
}

// BookService manages the catalog that backs the inventory ledger.
type BookService struct {
	catalog   iinventory.ICatalog
	publisher publisher
}

// option is a function that configures the BookService.
type option func(*BookService)

// MustNewBookService creates a new BookService.
func MustNewBookService(opts ...option) *BookService {
	s := &BookService{}
	for _, opt := range opts {
		opt(s)
	}

	if s.catalog == nil || s.publisher == nil {
		panic("booksvc: catalog and publisher are required")
	}

	return s
}

// WithCatalog sets the catalog for the BookService.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithCatalog(catalog iinventory.ICatalog) option {
	return func(s *BookService) {
		s.catalog = catalog
	}
}

// WithPublisher sets the notification fan-out for the BookService.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithPublisher(p publisher) option {
	return func(s *BookService) {
		s.publisher = p
	}
}

// CreateBook adds a book to the catalog.
func (s *BookService) CreateBook(ctx context.Context, b book.Book) (book.Book, error) {
	ctx, span := otel.Tracer("service").Start(ctx, "BookService.CreateBook")
	defer span.End()

	if err := b.Validate(); err != nil {
		return book.Book{}, err
	}

	created, err := s.catalog.Create(ctx, b)
	if err != nil {
		return book.Book{}, fmt.Errorf("failed to create book: %w", err)
	}
	span.SetAttributes(attribute.Int64("book.id", created.ID))

	s.publisher.Publish(event.BookChanged(event.ActionCreated, created))
	slog.Info("Book created", "book_id", created.ID, "stock", created.Stock)

	return created, nil
}

// GetBook returns a book by id.
func (s *BookService) GetBook(ctx context.Context, id int64) (book.Book, error) {
	return s.catalog.GetByID(ctx, id)
}

// ListBooks returns a page of books ordered by id.
func (s *BookService) ListBooks(ctx context.Context, query book.QueryBooksModel) ([]book.Book, error) {
	return s.catalog.List(ctx, query.Normalize())
}

// Restock adjusts the stock of a book by delta, which may be negative.
func (s *BookService) Restock(ctx context.Context, id, delta int64) (book.Book, error) {
	ctx, span := otel.Tracer("service").Start(ctx, "BookService.Restock")
	defer span.End()
	span.SetAttributes(attribute.Int64("book.id", id), attribute.Int64("book.delta", delta))

	if delta == 0 {
		return book.Book{}, errors.Join(book.ErrInvalidBook, errors.New("delta must not be zero"))
	}

	updated, err := s.catalog.Restock(ctx, id, delta)
	if err != nil {
		return book.Book{}, err
	}

	s.publisher.Publish(event.BookChanged(event.ActionUpdated, updated))
	slog.Info("Book restocked", "book_id", id, "delta", delta, "stock", updated.Stock)

	return updated, nil
}
