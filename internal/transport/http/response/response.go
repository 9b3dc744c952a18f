// Package response writes JSON bodies and maps domain errors to HTTP statuses.
package response

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/corray333/backend-labs/bookstore/internal/service/models/book"
	"github.com/corray333/backend-labs/bookstore/internal/service/models/order"
	"github.com/corray333/backend-labs/bookstore/internal/service/services/ordersvc"
)

const (
	CodeInvalidInput      = "invalid_input"
	CodeBookNotFound      = "book_not_found"
	CodeOrderNotFound     = "order_not_found"
	CodeInsufficientStock = "insufficient_stock"
	CodeInternal          = "internal"
)

// ErrorBody is the JSON shape of every error response.
type ErrorBody struct {
	Error   string `json:"error"`
	Details string `json:"details"`
}

// JSON writes v with the given status.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Error sending response", "error", err)
	}
}

// Status maps an error to its HTTP status and error code.
func Status(err error) (int, string) {
	var failed *ordersvc.FailedError
	switch {
	case errors.As(err, &failed):
		return http.StatusInternalServerError, CodeInternal
	case errors.Is(err, order.ErrInvalidInput), errors.Is(err, book.ErrInvalidBook):
		return http.StatusBadRequest, CodeInvalidInput
	case errors.Is(err, book.ErrBookNotFound):
		return http.StatusNotFound, CodeBookNotFound
	case errors.Is(err, order.ErrOrderNotFound):
		return http.StatusNotFound, CodeOrderNotFound
	case errors.Is(err, book.ErrInsufficientStock):
		return http.StatusConflict, CodeInsufficientStock
	default:
		return http.StatusInternalServerError, CodeInternal
	}
}

// Error writes err as an ErrorBody. Internal errors are logged and their
// details hidden from the client.
func Error(w http.ResponseWriter, r *http.Request, err error) {
	status, code := Status(err)
	details := err.Error()
	if status >= http.StatusInternalServerError {
		slog.ErrorContext(r.Context(), "Request failed", "path", r.URL.Path, "error", err)
		details = http.StatusText(status)
	}

	JSON(w, status, ErrorBody{Error: code, Details: details})
}

// BadRequest writes a 400 with the given details.
func BadRequest(w http.ResponseWriter, details string) {
	JSON(w, http.StatusBadRequest, ErrorBody{Error: CodeInvalidInput, Details: details})
}
