package ordersvc

import (
	"fmt"

	"github.com/corray333/backend-labs/bookstore/internal/service/models/order"
)

// RejectedInvalidError is returned when the request fails validation.
// Nothing was reserved or stored.
type RejectedInvalidError struct {
	Reason string
}

func (e *RejectedInvalidError) Error() string {
	return "order rejected: " + e.Reason
}

func (e *RejectedInvalidError) Unwrap() error {
	return order.ErrInvalidInput
}

// RejectedStockError is returned when a line could not be reserved.
// Cause is book.ErrInsufficientStock or book.ErrBookNotFound; every earlier
// reservation of the order has been released.
type RejectedStockError struct {
	BookID int64
	Line   int
	Cause  error
}

func (e *RejectedStockError) Error() string {
	return fmt.Sprintf("order rejected: line %d (book %d): %v", e.Line, e.BookID, e.Cause)
}

func (e *RejectedStockError) Unwrap() error {
	return e.Cause
}

// FailedError is returned when the order could not be completed after
// reservation started: storage failure, ledger failure or cancellation.
// Reservations have been released, so retrying is safe.
type FailedError struct {
	Cause error
}

func (e *FailedError) Error() string {
	return "order failed: " + e.Cause.Error()
}

func (e *FailedError) Unwrap() error {
	return e.Cause
}
