package grpctransport

import (
	"context"
	"errors"

	"github.com/corray333/backend-labs/bookstore/internal/service/models/book"
	"github.com/corray333/backend-labs/bookstore/internal/service/models/order"
	"github.com/corray333/backend-labs/bookstore/internal/service/models/orderline"
	"github.com/corray333/backend-labs/bookstore/internal/service/services/ordersvc"
	apiv1 "github.com/corray333/backend-labs/bookstore/pkg/api/v1"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// OrderServer implements the gRPC OrderService.
type OrderServer struct {
	service service
}

// NewOrderServer creates a new OrderServer.
func NewOrderServer(service service) *OrderServer {
	return &OrderServer{
		service: service,
	}
}

// toStatus maps domain errors to gRPC status codes.
func toStatus(err error) error {
	var failed *ordersvc.FailedError
	switch {
	case errors.As(err, &failed):
		return status.Error(codes.Internal, err.Error())
	case errors.Is(err, order.ErrInvalidInput):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, book.ErrBookNotFound), errors.Is(err, order.ErrOrderNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, book.ErrInsufficientStock):
		return status.Error(codes.FailedPrecondition, err.Error())
	default:
		return status.Error(codes.Internal, err.Error())
	}
}

// CreateOrder handles the create order gRPC request.
func (s *OrderServer) CreateOrder(
	ctx context.Context,
	req *apiv1.CreateOrderRequest,
) (*apiv1.CreateOrderResponse, error) {
	lines := make([]orderline.LineRequest, len(req.Lines))
	for i, l := range req.Lines {
		lines[i] = orderline.LineRequest{BookID: l.BookID, Quantity: l.Quantity}
	}

	created, err := s.service.CreateOrder(ctx, order.CreateOrderModel{
		UserID:   req.UserID,
		ClientID: req.ClientID,
		Lines:    lines,
	})
	if err != nil {
		return nil, toStatus(err)
	}

	return &apiv1.CreateOrderResponse{Order: created}, nil
}

// GetOrder handles the get order gRPC request.
func (s *OrderServer) GetOrder(
	ctx context.Context,
	req *apiv1.GetOrderRequest,
) (*apiv1.GetOrderResponse, error) {
	o, err := s.service.GetOrder(ctx, req.ID)
	if err != nil {
		return nil, toStatus(err)
	}

	return &apiv1.GetOrderResponse{Order: o}, nil
}

// ListOrders handles the list orders gRPC request.
func (s *OrderServer) ListOrders(
	ctx context.Context,
	req *apiv1.ListOrdersRequest,
) (*apiv1.ListOrdersResponse, error) {
	page, err := s.service.ListClientOrders(ctx, order.QueryOrdersModel{
		ClientID: req.ClientID,
		Page:     req.Page,
		PageSize: req.PageSize,
	})
	if err != nil {
		return nil, toStatus(err)
	}

	return &apiv1.ListOrdersResponse{
		Orders:   page.Orders,
		Page:     page.Page,
		PageSize: page.PageSize,
		Total:    page.Total,
	}, nil
}

// DeleteOrder handles the delete order gRPC request.
func (s *OrderServer) DeleteOrder(
	ctx context.Context,
	req *apiv1.DeleteOrderRequest,
) (*apiv1.DeleteOrderResponse, error) {
	if err := s.service.DeleteOrder(ctx, req.ID); err != nil {
		return nil, toStatus(err)
	}

	return &apiv1.DeleteOrderResponse{}, nil
}
