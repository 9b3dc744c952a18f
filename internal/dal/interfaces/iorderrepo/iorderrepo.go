package iorder

import (
	"context"

	"github.com/corray333/backend-labs/bookstore/internal/service/models/order"
)

// IOrderRepository is an interface for the order header postgres repository.
type IOrderRepository interface {
	Insert(ctx context.Context, o order.Order) (order.Order, error)
	GetByID(ctx context.Context, id int64) (order.Order, error)
	QueryByClient(ctx context.Context, query order.QueryOrdersModel) ([]order.Order, error)
	CountByClient(ctx context.Context, clientID string) (int64, error)
	SoftDelete(ctx context.Context, id int64) (bool, error)
}
