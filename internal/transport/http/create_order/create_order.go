package createorder

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/corray333/backend-labs/bookstore/internal/service/models/order"
	"github.com/corray333/backend-labs/bookstore/internal/service/models/orderline"
	"github.com/corray333/backend-labs/bookstore/internal/transport/http/response"
	"github.com/go-playground/validator/v10"
)

// service is an interface for the service layer.
type service interface {
	CreateOrder(ctx context.Context, req order.CreateOrderModel) (order.Order, error)
}

// lineInCreateOrderRequest represents a line in a create order request.
type lineInCreateOrderRequest struct {
	BookID   int64 `json:"bookId"   validate:"gt=0"`
	Quantity int64 `json:"quantity" validate:"gt=0"`
}

// createOrderRequest represents a create order request.
type createOrderRequest struct {
	UserID   int64                      `json:"userId"   validate:"gt=0"`
	ClientID string                     `json:"clientId" validate:"required"`
	Lines    []lineInCreateOrderRequest `json:"lines"    validate:"required,min=1,dive"`
}

// Validate validates the create order request.
func (r *createOrderRequest) Validate() error {
	return validator.New().Struct(r)
}

// toModel converts createOrderRequest to order.CreateOrderModel.
func (r *createOrderRequest) toModel() order.CreateOrderModel {
	lines := make([]orderline.LineRequest, len(r.Lines))
	for i, l := range r.Lines {
		lines[i] = orderline.LineRequest{BookID: l.BookID, Quantity: l.Quantity}
	}

	return order.CreateOrderModel{
		UserID:   r.UserID,
		ClientID: r.ClientID,
		Lines:    lines,
	}
}

// CreateOrder handles the create order request.
func CreateOrder(w http.ResponseWriter, r *http.Request, service service) {
	req := createOrderRequest{}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "malformed request body: "+err.Error())
		slog.Warn("Error decoding request body for create order", "error", err)

		return
	}

	if err := req.Validate(); err != nil {
		response.BadRequest(w, err.Error())
		slog.Warn("Error validating request body for create order", "error", err)

		return
	}

	created, err := service.CreateOrder(r.Context(), req.toModel())
	if err != nil {
		response.Error(w, r, err)

		return
	}

	response.JSON(w, http.StatusCreated, created)
}
