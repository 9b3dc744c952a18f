package response

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/corray333/backend-labs/bookstore/internal/service/models/book"
	"github.com/corray333/backend-labs/bookstore/internal/service/models/order"
	"github.com/corray333/backend-labs/bookstore/internal/service/services/ordersvc"
	"github.com/stretchr/testify/assert"
)

func TestStatus(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"invalid", &ordersvc.RejectedInvalidError{Reason: "x"}, http.StatusBadRequest, CodeInvalidInput},
		{"invalid book", book.ErrInvalidBook, http.StatusBadRequest, CodeInvalidInput},
		{"short", &ordersvc.RejectedStockError{BookID: 1, Cause: book.ErrInsufficientStock}, http.StatusConflict, CodeInsufficientStock},
		{"missing book", &ordersvc.RejectedStockError{BookID: 1, Cause: book.ErrBookNotFound}, http.StatusNotFound, CodeBookNotFound},
		{"missing order", fmt.Errorf("lookup: %w", order.ErrOrderNotFound), http.StatusNotFound, CodeOrderNotFound},
		{"failed", &ordersvc.FailedError{Cause: order.ErrPersistence}, http.StatusInternalServerError, CodeInternal},
		{"cancelled", errors.Join(&ordersvc.FailedError{Cause: context.Canceled}, errors.New("release")), http.StatusInternalServerError, CodeInternal},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, CodeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, code := Status(tt.err)
			assert.Equal(t, tt.status, status)
			assert.Equal(t, tt.code, code)
		})
	}
}
