package listorders

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/corray333/backend-labs/bookstore/internal/service/models/order"
	"github.com/corray333/backend-labs/bookstore/internal/transport/http/response"
	"github.com/gorilla/schema"
)

type service interface {
	ListClientOrders(ctx context.Context, query order.QueryOrdersModel) (order.Page, error)
}

type queryOrdersRequest struct {
	ClientID string `schema:"clientId"`
	Page     int    `schema:"page,omitempty"`
	PageSize int    `schema:"pageSize,omitempty"`
}

func (q *queryOrdersRequest) ToModel() order.QueryOrdersModel {
	return order.QueryOrdersModel{
		ClientID: q.ClientID,
		Page:     q.Page,
		PageSize: q.PageSize,
	}
}

func ListOrders(w http.ResponseWriter, r *http.Request, service service) {
	decoder := schema.NewDecoder()
	decoder.IgnoreUnknownKeys(true)
	query := &queryOrdersRequest{}
	if err := decoder.Decode(query, r.URL.Query()); err != nil {
		response.BadRequest(w, err.Error())
		slog.Warn("Error decoding request", "error", err)

		return
	}

	page, err := service.ListClientOrders(r.Context(), query.ToModel())
	if err != nil {
		response.Error(w, r, err)

		return
	}

	response.JSON(w, http.StatusOK, page)
}
