package app

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/corray333/backend-labs/bookstore/internal/dal/interfaces/iinventory"
	"github.com/corray333/backend-labs/bookstore/internal/dal/interfaces/iorderstore"
	"github.com/corray333/backend-labs/bookstore/internal/dal/interfaces/ioutboxrepo"
	natsclient "github.com/corray333/backend-labs/bookstore/internal/dal/nats"
	"github.com/corray333/backend-labs/bookstore/internal/dal/orderstore"
	"github.com/corray333/backend-labs/bookstore/internal/dal/postgres"
	"github.com/corray333/backend-labs/bookstore/internal/dal/rabbitmq"
	bookmemory "github.com/corray333/backend-labs/bookstore/internal/dal/repositories/book/memory"
	bookpostgres "github.com/corray333/backend-labs/bookstore/internal/dal/repositories/book/postgres"
	ordermemory "github.com/corray333/backend-labs/bookstore/internal/dal/repositories/order/memory"
	outboxpostgres "github.com/corray333/backend-labs/bookstore/internal/dal/repositories/outbox/postgres"
	"github.com/corray333/backend-labs/bookstore/internal/notify"
	"github.com/corray333/backend-labs/bookstore/internal/otel"
	"github.com/corray333/backend-labs/bookstore/internal/service/services/booksvc"
	"github.com/corray333/backend-labs/bookstore/internal/service/services/ordersvc"
	grpctransport "github.com/corray333/backend-labs/bookstore/internal/transport/grpc"
	httptransport "github.com/corray333/backend-labs/bookstore/internal/transport/http"
	"github.com/corray333/backend-labs/bookstore/internal/transport/http/ws"
	"github.com/corray333/backend-labs/bookstore/internal/worker/outbox"
	"github.com/corray333/backend-labs/bookstore/internal/worker/relay"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"
)

type brokerSink interface {
	Publish(ctx context.Context, routingKey, contentType string, body []byte) error
	Close() error
}

// App represents the application.
type App struct {
	hub            *notify.Hub
	httpTransport  *httptransport.HTTPTransport
	grpcTransport  *grpctransport.GRPCTransport
	relay          *relay.Relay
	outboxWorker   *outbox.Worker
	broker         brokerSink
	postgresClient *postgres.Client
	otel           *otel.OtelController
}

// MustNewApp creates a new application.
func MustNewApp() *App {
	a := &App{
		otel: otel.MustInitOtel(),
		hub:  notify.NewHub(notify.WithBufferSize(viper.GetInt("notify.buffer_size"))),
	}

	inventory, store, outboxRepo := a.mustInitStorage()

	orderSvc := ordersvc.MustNewOrderService(
		ordersvc.WithLedger(inventory),
		ordersvc.WithOrderStore(store),
		ordersvc.WithPublisher(a.hub),
		ordersvc.WithReleaseTimeout(
			time.Duration(viper.GetInt("workflow.release_timeout_seconds"))*time.Second,
		),
		ordersvc.WithStepTimeout(
			time.Duration(viper.GetInt("workflow.step_timeout_seconds"))*time.Second,
		),
	)
	bookSvc := booksvc.MustNewBookService(
		booksvc.WithCatalog(inventory),
		booksvc.WithPublisher(a.hub),
	)

	a.mustInitRelay(outboxRepo)

	feed := ws.NewHandler(
		a.hub,
		time.Duration(viper.GetInt("notify.ws.ping_interval_seconds"))*time.Second,
		time.Duration(viper.GetInt("notify.ws.write_timeout_seconds"))*time.Second,
	)
	a.httpTransport = httptransport.NewHTTPTransport(orderSvc, bookSvc, feed)
	a.httpTransport.RegisterRoutes()

	grpcTransport, err := grpctransport.NewGRPCTransport(orderSvc)
	if err != nil {
		panic(err)
	}
	a.grpcTransport = grpcTransport

	return a
}

func (a *App) mustInitStorage() (iinventory.IInventory, iorderstore.IOrderStore, ioutboxrepo.IOutboxRepository) {
	driver := viper.GetString("storage.driver")
	slog.Info("Initializing storage", "driver", driver)

	switch driver {
	case "postgres":
		a.postgresClient = postgres.MustNewClient()
		pool := a.postgresClient.Pool()

		return bookpostgres.NewBookRepository(pool),
			orderstore.New(a.postgresClient),
			outboxpostgres.NewOutboxRepository(pool)
	case "memory", "":
		return bookmemory.NewBookRepository(), ordermemory.NewOrderStore(), nil
	default:
		panic("unknown storage driver: " + driver)
	}
}

func (a *App) mustInitRelay(outboxRepo ioutboxrepo.IOutboxRepository) {
	switch broker := viper.GetString("relay.broker"); broker {
	case "rabbitmq":
		a.broker = rabbitmq.MustNewClient()
	case "nats":
		a.broker = natsclient.MustNewClient()
	case "none", "":
		return
	default:
		panic("unknown relay broker: " + broker)
	}

	if outboxRepo == nil {
		a.relay = relay.NewRelay(a.hub, a.broker)
		slog.Warn("Relay has no outbox, failed publishes will be dropped")

		return
	}

	a.relay = relay.NewRelay(a.hub, a.broker,
		relay.WithOutbox(outboxRepo, viper.GetInt("outbox.max_retries")),
	)
	a.outboxWorker = outbox.NewWorker(outboxRepo, a.broker)
}

// Run starts the application.
// Tracks interrupt signal to gracefully shut down the application.
func (a *App) Run() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		slog.Info("Starting HTTP server", "port", viper.GetString("server.http.port"))
		if err := a.httpTransport.Run(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}

		return nil
	})

	g.Go(func() error {
		return a.grpcTransport.Run()
	})

	if a.relay != nil {
		g.Go(func() error {
			return a.relay.Run(gctx)
		})
	}

	if a.outboxWorker != nil {
		g.Go(func() error {
			a.outboxWorker.Start(gctx)

			return nil
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		slog.Info("Shutdown signal received")
		a.shutdown()

		return nil
	})

	if err := g.Wait(); err != nil {
		slog.Error("Application stopped with error", "error", err)
	}

	slog.Info("Application shutdown complete")
}

func (a *App) shutdown() {
	timeout := time.Duration(viper.GetInt("server.http.shutdown_timeout_seconds")) * time.Second
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := a.httpTransport.Shutdown(ctx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	} else {
		slog.Info("HTTP server stopped gracefully")
	}

	if err := a.grpcTransport.Shutdown(ctx); err != nil {
		slog.Error("gRPC server shutdown error", "error", err)
	} else {
		slog.Info("gRPC server stopped gracefully")
	}

	if a.outboxWorker != nil {
		a.outboxWorker.Stop()
	}

	a.hub.Close()

	if a.broker != nil {
		if err := a.broker.Close(); err != nil {
			slog.Error("Broker connection close error", "error", err)
		}
	}

	if a.postgresClient != nil {
		a.postgresClient.Close()
		slog.Info("Database connection closed gracefully")
	}

	if err := a.otel.Shutdown(ctx); err != nil {
		slog.Error("Tracer provider shutdown error", "error", err)
	}
}
