package iorderstore

import (
	"context"

	"github.com/corray333/backend-labs/bookstore/internal/service/models/order"
)

// IOrderStore persists order aggregates.
type IOrderStore interface {
	// Create stores the order with its lines and returns it with the assigned id.
	Create(ctx context.Context, o order.Order) (order.Order, error)
	FindByID(ctx context.Context, id int64) (order.Order, error)
	// ListByClient returns the client's live orders, newest first.
	ListByClient(ctx context.Context, query order.QueryOrdersModel) (order.Page, error)
	// SoftDelete marks the order deleted. The bool reports whether this call changed it.
	SoftDelete(ctx context.Context, id int64) (bool, error)
}
