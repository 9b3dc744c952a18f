// Package orderstore persists order aggregates in Postgres.
package orderstore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	iorder "github.com/corray333/backend-labs/bookstore/internal/dal/interfaces/iorderrepo"
	iorderline "github.com/corray333/backend-labs/bookstore/internal/dal/interfaces/iorderlinerepo"
	"github.com/corray333/backend-labs/bookstore/internal/dal/postgres"
	"github.com/corray333/backend-labs/bookstore/internal/dal/uow"
	"github.com/corray333/backend-labs/bookstore/internal/service/models/order"
	"github.com/jackc/pgx/v5"
)

type unitOfWork interface {
	Begin(ctx context.Context) error
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error

	OrderRepository() iorder.IOrderRepository
	OrderLineRepository() iorderline.IOrderLineRepository
}

// Store is the Postgres order store. Header and lines are written in one transaction.
type Store struct {
	pgClient *postgres.Client
}

// New creates a new Store.
func New(pgClient *postgres.Client) *Store {
	return &Store{pgClient: pgClient}
}

func (s *Store) newUOW() unitOfWork {
	return uow.NewUnitOfWork(s.pgClient.Pool())
}

// Create stores the order with its lines and returns it with the assigned id.
func (s *Store) Create(ctx context.Context, o order.Order) (created order.Order, err error) {
	now := time.Now().UTC()
	o.CreatedAt = now
	o.UpdatedAt = now
	o.Recalculate()

	work := s.newUOW()
	if err := work.Begin(ctx); err != nil {
		return order.Order{}, fmt.Errorf("%w: %w", order.ErrPersistence, err)
	}
	defer func() {
		if rbErr := work.Rollback(context.WithoutCancel(ctx)); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
			slog.Error("Failed to rollback order transaction", "error", rbErr)
		}
	}()

	created, err = work.OrderRepository().Insert(ctx, o)
	if err != nil {
		return order.Order{}, fmt.Errorf("%w: %w", order.ErrPersistence, err)
	}

	if err := work.OrderLineRepository().BulkInsert(ctx, created.ID, created.OrderLines); err != nil {
		return order.Order{}, fmt.Errorf("%w: %w", order.ErrPersistence, err)
	}

	if err := work.Commit(ctx); err != nil {
		return order.Order{}, fmt.Errorf("%w: failed to commit order: %w", order.ErrPersistence, err)
	}

	return created, nil
}

// FindByID returns the order with its lines.
func (s *Store) FindByID(ctx context.Context, id int64) (order.Order, error) {
	work := s.newUOW()

	o, err := work.OrderRepository().GetByID(ctx, id)
	if err != nil {
		return order.Order{}, err
	}

	lines, err := work.OrderLineRepository().QueryByOrderIDs(ctx, []int64{o.ID})
	if err != nil {
		return order.Order{}, err
	}
	o.OrderLines = append(o.OrderLines, lines[o.ID]...)

	return o, nil
}

// ListByClient returns a page of the client's live orders, newest first.
func (s *Store) ListByClient(ctx context.Context, query order.QueryOrdersModel) (order.Page, error) {
	query = query.Normalize()
	work := s.newUOW()

	total, err := work.OrderRepository().CountByClient(ctx, query.ClientID)
	if err != nil {
		return order.Page{}, err
	}

	orders, err := work.OrderRepository().QueryByClient(ctx, query)
	if err != nil {
		return order.Page{}, err
	}

	ids := make([]int64, 0, len(orders))
	for _, o := range orders {
		ids = append(ids, o.ID)
	}
	lines, err := work.OrderLineRepository().QueryByOrderIDs(ctx, ids)
	if err != nil {
		return order.Page{}, err
	}
	for i := range orders {
		orders[i].OrderLines = append(orders[i].OrderLines, lines[orders[i].ID]...)
	}

	return order.Page{
		Orders:   orders,
		Page:     query.Page,
		PageSize: query.PageSize,
		Total:    total,
	}, nil
}

// SoftDelete marks the order deleted.
func (s *Store) SoftDelete(ctx context.Context, id int64) (bool, error) {
	return s.newUOW().OrderRepository().SoftDelete(ctx, id)
}
