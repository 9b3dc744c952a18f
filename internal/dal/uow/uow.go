package uow

import (
	"context"
	"fmt"

	iorder "github.com/corray333/backend-labs/bookstore/internal/dal/interfaces/iorderrepo"
	iorderline "github.com/corray333/backend-labs/bookstore/internal/dal/interfaces/iorderlinerepo"
	orderrepo "github.com/corray333/backend-labs/bookstore/internal/dal/repositories/order/postgres"
	orderlinerepo "github.com/corray333/backend-labs/bookstore/internal/dal/repositories/orderline/postgres"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type unitOfWork struct {
	pool          *pgxpool.Pool
	tx            pgx.Tx
	orderRepo     iorder.IOrderRepository
	orderLineRepo iorderline.IOrderLineRepository
}

// NewUnitOfWork creates a unit of work whose repositories use the pool until Begin is called.
func NewUnitOfWork(pool *pgxpool.Pool) *unitOfWork {
	return &unitOfWork{
		pool:          pool,
		orderRepo:     orderrepo.NewPostgresOrderRepository(pool),
		orderLineRepo: orderlinerepo.NewPostgresOrderLineRepository(pool),
	}
}

func (u *unitOfWork) OrderRepository() iorder.IOrderRepository {
	return u.orderRepo
}

func (u *unitOfWork) OrderLineRepository() iorderline.IOrderLineRepository {
	return u.orderLineRepo
}

// Begin starts a transaction and rebinds the repositories to it.
func (u *unitOfWork) Begin(ctx context.Context) error {
	tx, err := u.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	u.tx = tx
	u.orderRepo = orderrepo.NewPostgresOrderRepository(tx)
	u.orderLineRepo = orderlinerepo.NewPostgresOrderLineRepository(tx)

	return nil
}

func (u *unitOfWork) Commit(ctx context.Context) error {
	if u.tx == nil {
		return nil
	}

	return u.tx.Commit(ctx)
}

// Rollback is safe to call after Commit.
func (u *unitOfWork) Rollback(ctx context.Context) error {
	if u.tx == nil {
		return nil
	}

	return u.tx.Rollback(ctx)
}
