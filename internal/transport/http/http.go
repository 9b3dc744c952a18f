package httptransport

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/corray333/backend-labs/bookstore/docs"
	"github.com/corray333/backend-labs/bookstore/internal/metrics"
	"github.com/corray333/backend-labs/bookstore/internal/service/models/book"
	"github.com/corray333/backend-labs/bookstore/internal/service/models/order"
	"github.com/corray333/backend-labs/bookstore/internal/transport/http/books"
	createorder "github.com/corray333/backend-labs/bookstore/internal/transport/http/create_order"
	deleteorder "github.com/corray333/backend-labs/bookstore/internal/transport/http/delete_order"
	getorder "github.com/corray333/backend-labs/bookstore/internal/transport/http/get_order"
	listorders "github.com/corray333/backend-labs/bookstore/internal/transport/http/list_orders"
	"github.com/corray333/backend-labs/bookstore/internal/transport/http/response"
	"github.com/corray333/backend-labs/bookstore/internal/transport/http/ws"
	"github.com/corray333/backend-labs/bookstore/pkg/http/middleware/trace"
	"github.com/corray333/backend-labs/bookstore/pkg/logger"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/spf13/viper"
	httpSwagger "github.com/swaggo/http-swagger/v2"
)

type orderService interface {
	CreateOrder(ctx context.Context, req order.CreateOrderModel) (order.Order, error)
	GetOrder(ctx context.Context, id int64) (order.Order, error)
	ListClientOrders(ctx context.Context, query order.QueryOrdersModel) (order.Page, error)
	DeleteOrder(ctx context.Context, id int64) error
}

type bookService interface {
	CreateBook(ctx context.Context, b book.Book) (book.Book, error)
	GetBook(ctx context.Context, id int64) (book.Book, error)
	ListBooks(ctx context.Context, query book.QueryBooksModel) ([]book.Book, error)
	Restock(ctx context.Context, id, delta int64) (book.Book, error)
}

type HTTPTransport struct {
	server   *http.Server
	router   *chi.Mux
	orders   orderService
	books    bookService
	wsHandle *ws.Handler
}

func NewHTTPTransport(orders orderService, books bookService, feed *ws.Handler) *HTTPTransport {
	router := newRouter()
	server := newServer(router)
	return &HTTPTransport{
		server:   server,
		router:   router,
		orders:   orders,
		books:    books,
		wsHandle: feed,
	}
}

// Handler exposes the router, mainly for tests.
func (h *HTTPTransport) Handler() http.Handler {
	return h.router
}

func (h *HTTPTransport) Run() error {
	return h.server.ListenAndServe()
}

func (h *HTTPTransport) Shutdown(ctx context.Context) error {
	return h.server.Shutdown(ctx)
}

// RegisterRoutes registers the routes for the HTTPTransport.
func (h *HTTPTransport) RegisterRoutes() {
	h.router.Route("/api", func(r chi.Router) {
		r.Use(trace.NewTraceMiddleware)

		r.Route("/orders", func(r chi.Router) {
			r.Post("/", h.createOrder)
			r.Get("/", h.listOrders)
			r.Get("/{id}", h.getOrder)
			r.Delete("/{id}", h.deleteOrder)
		})

		r.Route("/books", func(r chi.Router) {
			r.Post("/", h.createBook)
			r.Get("/", h.listBooks)
			r.Get("/{id}", h.getBook)
			r.Post("/{id}/restock", h.restock)
		})
	})

	if h.wsHandle != nil {
		h.router.Handle("/ws", h.wsHandle)
	}
	h.router.Handle("/metrics", metrics.Handler())
	h.router.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		response.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	h.router.Get("/swagger/doc.json", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(docs.SwaggerJSON)
	})
	h.router.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))
}

func (h *HTTPTransport) createOrder(w http.ResponseWriter, r *http.Request) {
	createorder.CreateOrder(w, r, h.orders)
}

func (h *HTTPTransport) getOrder(w http.ResponseWriter, r *http.Request) {
	getorder.GetOrder(w, r, h.orders)
}

func (h *HTTPTransport) listOrders(w http.ResponseWriter, r *http.Request) {
	listorders.ListOrders(w, r, h.orders)
}

func (h *HTTPTransport) deleteOrder(w http.ResponseWriter, r *http.Request) {
	deleteorder.DeleteOrder(w, r, h.orders)
}

func (h *HTTPTransport) createBook(w http.ResponseWriter, r *http.Request) {
	books.CreateBook(w, r, h.books)
}

func (h *HTTPTransport) getBook(w http.ResponseWriter, r *http.Request) {
	books.GetBook(w, r, h.books)
}

func (h *HTTPTransport) listBooks(w http.ResponseWriter, r *http.Request) {
	books.ListBooks(w, r, h.books)
}

func (h *HTTPTransport) restock(w http.ResponseWriter, r *http.Request) {
	books.Restock(w, r, h.books)
}

func newRouter() *chi.Mux {
	router := chi.NewMux()
	router.Use(middleware.RequestID)
	router.Use(logger.NewLoggerMiddleware(slog.Default()))
	router.Use(middleware.Recoverer)

	allowedOrigins := viper.GetStringSlice("server.http.cors.allowed_origins")
	allowedMethods := viper.GetStringSlice("server.http.cors.allowed_methods")
	allowedHeaders := viper.GetStringSlice("server.http.cors.allowed_headers")
	exposedHeaders := viper.GetStringSlice("server.http.cors.exposed_headers")
	allowCredentials := viper.GetBool("server.http.cors.allow_credentials")
	maxAge := viper.GetInt("server.http.cors.max_age")

	c := cors.New(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   allowedMethods,
		AllowedHeaders:   allowedHeaders,
		ExposedHeaders:   exposedHeaders,
		AllowCredentials: allowCredentials,
		MaxAge:           maxAge,
	})

	router.Use(c.Handler)

	return router
}

func newServer(router http.Handler) *http.Server {
	return &http.Server{
		Addr:              "0.0.0.0:" + viper.GetString("server.http.port"),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
}
