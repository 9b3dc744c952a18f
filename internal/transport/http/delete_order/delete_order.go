package deleteorder

import (
	"context"
	"net/http"
	"strconv"

	"github.com/corray333/backend-labs/bookstore/internal/transport/http/response"
	"github.com/go-chi/chi/v5"
)

type service interface {
	DeleteOrder(ctx context.Context, id int64) error
}

// DeleteOrder soft-deletes the order. Repeated deletes also answer 204.
func DeleteOrder(w http.ResponseWriter, r *http.Request, service service) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		response.BadRequest(w, "id must be a positive integer")

		return
	}

	if err := service.DeleteOrder(r.Context(), id); err != nil {
		response.Error(w, r, err)

		return
	}

	w.WriteHeader(http.StatusNoContent)
}
