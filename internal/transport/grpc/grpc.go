package grpctransport

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"time"

	"github.com/corray333/backend-labs/bookstore/internal/service/models/order"
	apiv1 "github.com/corray333/backend-labs/bookstore/pkg/api/v1"
	"github.com/spf13/viper"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	otelcodes "go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"google.golang.org/grpc"
	"google.golang.org/grpc/keepalive"
	"google.golang.org/grpc/status"
)

// service is an interface for the service layer.
type service interface {
	CreateOrder(ctx context.Context, req order.CreateOrderModel) (order.Order, error)
	GetOrder(ctx context.Context, id int64) (order.Order, error)
	ListClientOrders(ctx context.Context, query order.QueryOrdersModel) (order.Page, error)
	DeleteOrder(ctx context.Context, id int64) error
}

// GRPCTransport represents the gRPC transport layer.
type GRPCTransport struct {
	server      *grpc.Server
	listener    net.Listener
	orderServer *OrderServer
}

// NewGRPCTransport listens on server.grpc.port.
func NewGRPCTransport(service service) (*GRPCTransport, error) {
	listener, err := net.Listen("tcp", ":"+viper.GetString("server.grpc.port"))
	if err != nil {
		return nil, fmt.Errorf("failed to listen for gRPC: %w", err)
	}

	return NewGRPCTransportWithListener(service, listener), nil
}

// NewGRPCTransportWithListener serves on an existing listener.
func NewGRPCTransportWithListener(service service, listener net.Listener) *GRPCTransport {
	t := &GRPCTransport{
		server:      newGRPCServer(),
		listener:    listener,
		orderServer: NewOrderServer(service),
	}
	t.RegisterServices()

	return t
}

// Run starts the gRPC server.
func (g *GRPCTransport) Run() error {
	slog.Info("Starting gRPC server", "address", g.listener.Addr().String())

	return g.server.Serve(g.listener)
}

// Shutdown gracefully shuts down the gRPC server.
func (g *GRPCTransport) Shutdown(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		g.server.GracefulStop()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		g.server.Stop()

		return ctx.Err()
	}
}

// RegisterServices registers the gRPC services.
func (g *GRPCTransport) RegisterServices() {
	apiv1.RegisterOrderServiceServer(g.server, g.orderServer)
}

// unaryInterceptor traces and logs every call.
func unaryInterceptor(
	ctx context.Context,
	req any,
	info *grpc.UnaryServerInfo,
	handler grpc.UnaryHandler,
) (any, error) {
	ctx, span := otel.Tracer("grpc").Start(ctx, info.FullMethod, trace.WithSpanKind(trace.SpanKindServer))
	defer span.End()

	started := time.Now()
	resp, err := handler(ctx, req)

	code := status.Code(err)
	span.SetAttributes(attribute.String("rpc.grpc.status_code", code.String()))
	if err != nil {
		span.SetStatus(otelcodes.Error, err.Error())
	}
	slog.InfoContext(ctx, "gRPC call completed",
		"method", info.FullMethod,
		"code", code.String(),
		"duration", time.Since(started),
	)

	return resp, err
}

// newGRPCServer creates a new gRPC server with keepalive settings.
func newGRPCServer() *grpc.Server {
	keepaliveParams := keepalive.ServerParameters{
		MaxConnectionIdle: time.Duration(
			viper.GetInt("server.grpc.keepalive.max_connection_idle_minutes"),
		) * time.Minute,
		Time: time.Duration(
			viper.GetInt("server.grpc.keepalive.time_seconds"),
		) * time.Second,
		Timeout: time.Duration(
			viper.GetInt("server.grpc.keepalive.timeout_seconds"),
		) * time.Second,
	}

	opts := []grpc.ServerOption{
		grpc.KeepaliveParams(keepaliveParams),
		grpc.UnaryInterceptor(unaryInterceptor),
	}

	return grpc.NewServer(opts...)
}
