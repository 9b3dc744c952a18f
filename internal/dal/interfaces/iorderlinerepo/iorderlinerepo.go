package iorderline

import (
	"context"

	"github.com/corray333/backend-labs/bookstore/internal/service/models/orderline"
)

// IOrderLineRepository is an interface for the order line postgres repository.
type IOrderLineRepository interface {
	BulkInsert(ctx context.Context, orderID int64, lines []orderline.OrderLine) error
	QueryByOrderIDs(ctx context.Context, orderIDs []int64) (map[int64][]orderline.OrderLine, error)
}
