package postgresrepo

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/corray333/backend-labs/bookstore/internal/dal/postgres"
	"github.com/corray333/backend-labs/bookstore/internal/service/models/book"
	"github.com/corray333/backend-labs/bookstore/internal/service/models/currency"
	"github.com/jackc/pgx/v5"
)

var bookColumns = []string{
	"id",
	"title",
	"author",
	"stock",
	"price_cents",
	"currency",
	"created_at",
	"updated_at",
}

// BookDal represents book data access layer model.
type BookDal struct {
	Id         int64     `db:"id"`
	Title      string    `db:"title"`
	Author     string    `db:"author"`
	Stock      int64     `db:"stock"`
	PriceCents int64     `db:"price_cents"`
	Currency   string    `db:"currency"`
	CreatedAt  time.Time `db:"created_at"`
	UpdatedAt  time.Time `db:"updated_at"`
}

// ToModel converts BookDal to service layer Book model.
func (b *BookDal) ToModel() (book.Book, error) {
	cur, err := currency.ParseCurrency(b.Currency)
	if err != nil {
		return book.Book{}, err
	}

	return book.Book{
		ID:         b.Id,
		Title:      b.Title,
		Author:     b.Author,
		Stock:      b.Stock,
		PriceCents: b.PriceCents,
		Currency:   cur,
		CreatedAt:  b.CreatedAt,
		UpdatedAt:  b.UpdatedAt,
	}, nil
}

func (b *BookDal) scanTargets() []any {
	return []any{
		&b.Id,
		&b.Title,
		&b.Author,
		&b.Stock,
		&b.PriceCents,
		&b.Currency,
		&b.CreatedAt,
		&b.UpdatedAt,
	}
}

// BookRepository is the Postgres inventory ledger and catalog.
// Reservations are single compare-and-decrement statements, so the row lock
// is held only for the duration of one UPDATE.
type BookRepository struct {
	conn postgres.GenericConn
	sb   sq.StatementBuilderType
}

// NewBookRepository creates a new Postgres book repository.
func NewBookRepository(conn postgres.GenericConn) *BookRepository {
	return &BookRepository{
		conn: conn,
		sb:   sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

// Create inserts a new book and returns it with the assigned id.
func (r *BookRepository) Create(ctx context.Context, b book.Book) (book.Book, error) {
	if err := b.Validate(); err != nil {
		return book.Book{}, err
	}
	if b.Currency == "" {
		b.Currency = currency.Default
	}

	now := time.Now().UTC()
	query, args, err := r.sb.Insert("books").
		Columns("title", "author", "stock", "price_cents", "currency", "created_at", "updated_at").
		Values(b.Title, b.Author, b.Stock, b.PriceCents, b.Currency.String(), now, now).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return book.Book{}, fmt.Errorf("failed to build insert query: %w", err)
	}

	if err := r.conn.QueryRow(ctx, query, args...).Scan(&b.ID, &b.CreatedAt, &b.UpdatedAt); err != nil {
		return book.Book{}, fmt.Errorf("failed to insert book: %w", err)
	}

	return b, nil
}

// GetByID retrieves a book by id.
func (r *BookRepository) GetByID(ctx context.Context, id int64) (book.Book, error) {
	query, args, err := r.sb.Select(bookColumns...).
		From("books").
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return book.Book{}, fmt.Errorf("failed to build select query: %w", err)
	}

	var dal BookDal
	if err := r.conn.QueryRow(ctx, query, args...).Scan(dal.scanTargets()...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return book.Book{}, book.ErrBookNotFound
		}

		return book.Book{}, fmt.Errorf("failed to get book: %w", err)
	}

	return dal.ToModel()
}

// List returns a page of books ordered by id.
func (r *BookRepository) List(ctx context.Context, q book.QueryBooksModel) ([]book.Book, error) {
	q = q.Normalize()
	query, args, err := r.sb.Select(bookColumns...).
		From("books").
		OrderBy("id ASC").
		Limit(uint64(q.PageSize)).
		Offset(uint64(q.Offset())).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build select query: %w", err)
	}

	rows, err := r.conn.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query books: %w", err)
	}
	defer rows.Close()

	result := make([]book.Book, 0, q.PageSize)
	for rows.Next() {
		var dal BookDal
		if err := rows.Scan(dal.scanTargets()...); err != nil {
			return nil, fmt.Errorf("failed to scan book: %w", err)
		}
		model, err := dal.ToModel()
		if err != nil {
			return nil, fmt.Errorf("failed to convert book dal to model: %w", err)
		}
		result = append(result, model)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return result, nil
}

func (r *BookRepository) reserveQuery(bookID, quantity int64) (string, []any, error) {
	return r.sb.Update("books").
		Set("stock", sq.Expr("stock - ?", quantity)).
		Set("updated_at", sq.Expr("now()")).
		Where(sq.Eq{"id": bookID}).
		Where(sq.GtOrEq{"stock": quantity}).
		Suffix("RETURNING price_cents, currency").
		ToSql()
}

func (r *BookRepository) adjustQuery(bookID, delta int64) (string, []any, error) {
	return r.sb.Update("books").
		Set("stock", sq.Expr("stock + ?", delta)).
		Set("updated_at", sq.Expr("now()")).
		Where(sq.Eq{"id": bookID}).
		Where(sq.Expr("stock + ? >= 0", delta)).
		Suffix("RETURNING " + strings.Join(bookColumns, ", ")).
		ToSql()
}

// Reserve decrements stock only if enough is available.
func (r *BookRepository) Reserve(ctx context.Context, bookID, quantity int64) (book.Reservation, error) {
	if quantity <= 0 {
		return book.Reservation{}, fmt.Errorf("quantity must be positive, got %d", quantity)
	}

	query, args, err := r.reserveQuery(bookID, quantity)
	if err != nil {
		return book.Reservation{}, fmt.Errorf("failed to build reserve query: %w", err)
	}

	res := book.Reservation{BookID: bookID, Quantity: quantity}
	var cur string
	err = r.conn.QueryRow(ctx, query, args...).Scan(&res.UnitPriceCents, &cur)
	if errors.Is(err, pgx.ErrNoRows) {
		return book.Reservation{}, r.missingOrShort(ctx, bookID)
	}
	if err != nil {
		return book.Reservation{}, fmt.Errorf("failed to reserve book %d: %w", bookID, err)
	}

	res.Currency, err = currency.ParseCurrency(cur)
	if err != nil {
		// The decrement already ran; give the stock back before reporting.
		if relErr := r.Release(context.WithoutCancel(ctx), bookID, quantity); relErr != nil {
			return book.Reservation{}, errors.Join(err, relErr)
		}

		return book.Reservation{}, fmt.Errorf("book %d has unusable currency %q: %w", bookID, cur, err)
	}

	return res, nil
}

// Release gives back stock taken by a reservation.
func (r *BookRepository) Release(ctx context.Context, bookID, quantity int64) error {
	if quantity <= 0 {
		return fmt.Errorf("quantity must be positive, got %d", quantity)
	}

	query, args, err := r.sb.Update("books").
		Set("stock", sq.Expr("stock + ?", quantity)).
		Set("updated_at", sq.Expr("now()")).
		Where(sq.Eq{"id": bookID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build release query: %w", err)
	}

	tag, err := r.conn.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to release book %d: %w", bookID, err)
	}
	if tag.RowsAffected() == 0 {
		return book.ErrBookNotFound
	}

	return nil
}

// Restock adds delta (which may be negative) to the stock of a book.
func (r *BookRepository) Restock(ctx context.Context, id, delta int64) (book.Book, error) {
	query, args, err := r.adjustQuery(id, delta)
	if err != nil {
		return book.Book{}, fmt.Errorf("failed to build restock query: %w", err)
	}

	var dal BookDal
	err = r.conn.QueryRow(ctx, query, args...).Scan(dal.scanTargets()...)
	if errors.Is(err, pgx.ErrNoRows) {
		return book.Book{}, r.missingOrShort(ctx, id)
	}
	if err != nil {
		return book.Book{}, fmt.Errorf("failed to restock book %d: %w", id, err)
	}

	return dal.ToModel()
}

// missingOrShort tells a missing book apart from a failed stock guard.
func (r *BookRepository) missingOrShort(ctx context.Context, bookID int64) error {
	query, args, err := r.sb.Select("1").From("books").Where(sq.Eq{"id": bookID}).ToSql()
	if err != nil {
		return fmt.Errorf("failed to build existence query: %w", err)
	}

	var one int
	err = r.conn.QueryRow(ctx, query, args...).Scan(&one)
	if errors.Is(err, pgx.ErrNoRows) {
		return book.ErrBookNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to check book %d exists: %w", bookID, err)
	}

	return book.ErrInsufficientStock
}
