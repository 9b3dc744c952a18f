package order

import (
	"errors"
	"time"

	"github.com/corray333/backend-labs/bookstore/internal/service/models/currency"
	"github.com/corray333/backend-labs/bookstore/internal/service/models/orderline"
)

var (
	// ErrOrderNotFound is returned when an order id is unknown to the store.
	ErrOrderNotFound = errors.New("order not found")
	// ErrInvalidInput is returned for malformed create-order requests.
	ErrInvalidInput = errors.New("invalid input")
	// ErrPersistence marks storage-layer failures.
	ErrPersistence = errors.New("persistence error")
)

// Order represents an order aggregate: header plus its ordered lines.
// TotalItems and TotalCents are derived from OrderLines by Recalculate.
type Order struct {
	ID         int64                 `json:"id"`
	UserID     int64                 `json:"userId"`
	ClientID   string                `json:"clientId"`
	OrderLines []orderline.OrderLine `json:"orderLines"`
	TotalItems int64                 `json:"totalItems"`
	TotalCents int64                 `json:"totalCents"`
	Currency   currency.Currency     `json:"currency"`
	IsDeleted  bool                  `json:"isDeleted"`
	CreatedAt  time.Time             `json:"createdAt"`
	UpdatedAt  time.Time             `json:"updatedAt"`
}

// Recalculate recomputes TotalItems and TotalCents from the order lines.
func (o *Order) Recalculate() {
	var items, total int64
	for _, l := range o.OrderLines {
		items += l.Quantity
		total += l.SubtotalCents()
	}
	o.TotalItems = items
	o.TotalCents = total
}

// Clone returns a deep copy so callers cannot mutate stored lines.
func (o Order) Clone() Order {
	lines := make([]orderline.OrderLine, len(o.OrderLines))
	copy(lines, o.OrderLines)
	o.OrderLines = lines

	return o
}

// CreateOrderModel is the input of the create-order workflow.
type CreateOrderModel struct {
	UserID   int64                   `json:"userId"`
	ClientID string                  `json:"clientId"`
	Lines    []orderline.LineRequest `json:"lines"`
}
