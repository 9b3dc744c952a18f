package apiv1

import (
	"github.com/corray333/backend-labs/bookstore/internal/service/models/order"
)

type LineRequest struct {
	BookID   int64 `json:"bookId"`
	Quantity int64 `json:"quantity"`
}

type CreateOrderRequest struct {
	UserID   int64         `json:"userId"`
	ClientID string        `json:"clientId"`
	Lines    []LineRequest `json:"lines"`
}

type CreateOrderResponse struct {
	Order order.Order `json:"order"`
}

type GetOrderRequest struct {
	ID int64 `json:"id"`
}

type GetOrderResponse struct {
	Order order.Order `json:"order"`
}

type ListOrdersRequest struct {
	ClientID string `json:"clientId"`
	Page     int    `json:"page"`
	PageSize int    `json:"pageSize"`
}

type ListOrdersResponse struct {
	Orders   []order.Order `json:"orders"`
	Page     int           `json:"page"`
	PageSize int           `json:"pageSize"`
	Total    int64         `json:"total"`
}

type DeleteOrderRequest struct {
	ID int64 `json:"id"`
}

type DeleteOrderResponse struct{}
