// Package books serves the catalog endpoints used to seed and inspect stock.
package books

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/corray333/backend-labs/bookstore/internal/service/models/book"
	"github.com/corray333/backend-labs/bookstore/internal/service/models/currency"
	"github.com/corray333/backend-labs/bookstore/internal/transport/http/response"
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/gorilla/schema"
)

type service interface {
	CreateBook(ctx context.Context, b book.Book) (book.Book, error)
	GetBook(ctx context.Context, id int64) (book.Book, error)
	ListBooks(ctx context.Context, query book.QueryBooksModel) ([]book.Book, error)
	Restock(ctx context.Context, id, delta int64) (book.Book, error)
}

type createBookRequest struct {
	Title      string `json:"title"      validate:"required"`
	Author     string `json:"author"`
	Stock      int64  `json:"stock"      validate:"gte=0"`
	PriceCents int64  `json:"priceCents" validate:"gte=0"`
	Currency   string `json:"currency"`
}

func (r *createBookRequest) toModel() (book.Book, error) {
	cur, err := currency.ParseCurrency(r.Currency)
	if err != nil {
		return book.Book{}, err
	}

	return book.Book{
		Title:      r.Title,
		Author:     r.Author,
		Stock:      r.Stock,
		PriceCents: r.PriceCents,
		Currency:   cur,
	}, nil
}

type restockRequest struct {
	Delta int64 `json:"delta" validate:"ne=0"`
}

type listBooksRequest struct {
	Page     int `schema:"page,omitempty"`
	PageSize int `schema:"pageSize,omitempty"`
}

func pathID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)

	return id, err == nil && id > 0
}

func CreateBook(w http.ResponseWriter, r *http.Request, service service) {
	req := createBookRequest{}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "malformed request body: "+err.Error())

		return
	}
	if err := validator.New().Struct(&req); err != nil {
		response.BadRequest(w, err.Error())

		return
	}

	model, err := req.toModel()
	if err != nil {
		response.BadRequest(w, err.Error())

		return
	}

	created, err := service.CreateBook(r.Context(), model)
	if err != nil {
		response.Error(w, r, err)

		return
	}

	response.JSON(w, http.StatusCreated, created)
}

func GetBook(w http.ResponseWriter, r *http.Request, service service) {
	id, ok := pathID(r)
	if !ok {
		response.BadRequest(w, "id must be a positive integer")

		return
	}

	b, err := service.GetBook(r.Context(), id)
	if err != nil {
		response.Error(w, r, err)

		return
	}

	response.JSON(w, http.StatusOK, b)
}

func ListBooks(w http.ResponseWriter, r *http.Request, service service) {
	decoder := schema.NewDecoder()
	decoder.IgnoreUnknownKeys(true)
	req := &listBooksRequest{}
	if err := decoder.Decode(req, r.URL.Query()); err != nil {
		response.BadRequest(w, err.Error())

		return
	}

	list, err := service.ListBooks(r.Context(), book.QueryBooksModel{Page: req.Page, PageSize: req.PageSize})
	if err != nil {
		response.Error(w, r, err)

		return
	}

	response.JSON(w, http.StatusOK, list)
}

func Restock(w http.ResponseWriter, r *http.Request, service service) {
	id, ok := pathID(r)
	if !ok {
		response.BadRequest(w, "id must be a positive integer")

		return
	}

	req := restockRequest{}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "malformed request body: "+err.Error())

		return
	}
	if err := validator.New().Struct(&req); err != nil {
		response.BadRequest(w, err.Error())

		return
	}

	updated, err := service.Restock(r.Context(), id, req.Delta)
	if err != nil {
		response.Error(w, r, err)

		return
	}

	response.JSON(w, http.StatusOK, updated)
}
