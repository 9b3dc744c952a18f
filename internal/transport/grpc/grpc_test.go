package grpctransport

import (
	"context"
	"net"
	"testing"
	"time"

	bookmemory "github.com/corray333/backend-labs/bookstore/internal/dal/repositories/book/memory"
	ordermemory "github.com/corray333/backend-labs/bookstore/internal/dal/repositories/order/memory"
	"github.com/corray333/backend-labs/bookstore/internal/notify"
	"github.com/corray333/backend-labs/bookstore/internal/service/models/book"
	"github.com/corray333/backend-labs/bookstore/internal/service/services/ordersvc"
	apiv1 "github.com/corray333/backend-labs/bookstore/pkg/api/v1"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

func newTestClient(t *testing.T) (*apiv1.OrderServiceClient, *bookmemory.BookRepository) {
	t.Helper()

	conn, ledger := newTestConn(t)

	return apiv1.NewOrderServiceClient(conn), ledger
}

func newTestConn(t *testing.T) (*grpc.ClientConn, *bookmemory.BookRepository) {
	t.Helper()

	ledger := bookmemory.NewBookRepository()
	_, err := ledger.Create(context.Background(), book.Book{Title: "Dune", Stock: 2, PriceCents: 500})
	require.NoError(t, err)

	hub := notify.NewHub()
	t.Cleanup(hub.Close)
	svc := ordersvc.MustNewOrderService(
		ordersvc.WithLedger(ledger),
		ordersvc.WithOrderStore(ordermemory.NewOrderStore()),
		ordersvc.WithPublisher(hub),
	)

	lis := bufconn.Listen(1 << 20)
	transport := NewGRPCTransportWithListener(svc, lis)
	go func() { _ = transport.Run() }()
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = transport.Shutdown(ctx)
	})

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	return conn, ledger
}

func createReq(bookID, qty int64) *apiv1.CreateOrderRequest {
	return &apiv1.CreateOrderRequest{
		UserID:   1,
		ClientID: "client-1",
		Lines:    []apiv1.LineRequest{{BookID: bookID, Quantity: qty}},
	}
}

func TestOrderService_Lifecycle(t *testing.T) {
	client, ledger := newTestClient(t)
	ctx := context.Background()

	created, err := client.CreateOrder(ctx, createReq(1, 2))
	require.NoError(t, err)
	assert.Positive(t, created.Order.ID)
	assert.Equal(t, int64(1000), created.Order.TotalCents)

	b, err := ledger.GetByID(ctx, 1)
	require.NoError(t, err)
	assert.Zero(t, b.Stock)

	got, err := client.GetOrder(ctx, &apiv1.GetOrderRequest{ID: created.Order.ID})
	require.NoError(t, err)
	assert.Equal(t, created.Order.ID, got.Order.ID)

	list, err := client.ListOrders(ctx, &apiv1.ListOrdersRequest{ClientID: "client-1"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), list.Total)
	require.Len(t, list.Orders, 1)

	_, err = client.DeleteOrder(ctx, &apiv1.DeleteOrderRequest{ID: created.Order.ID})
	require.NoError(t, err)
	_, err = client.DeleteOrder(ctx, &apiv1.DeleteOrderRequest{ID: created.Order.ID})
	require.NoError(t, err)
}

func TestOrderService_ErrorCodes(t *testing.T) {
	tests := []struct {
		name string
		call func(context.Context, *apiv1.OrderServiceClient) error
		code codes.Code
	}{
		{
			name: "no lines",
			call: func(ctx context.Context, c *apiv1.OrderServiceClient) error {
				_, err := c.CreateOrder(ctx, &apiv1.CreateOrderRequest{UserID: 1, ClientID: "c"})
				return err
			},
			code: codes.InvalidArgument,
		},
		{
			name: "unknown book",
			call: func(ctx context.Context, c *apiv1.OrderServiceClient) error {
				_, err := c.CreateOrder(ctx, createReq(42, 1))
				return err
			},
			code: codes.NotFound,
		},
		{
			name: "insufficient stock",
			call: func(ctx context.Context, c *apiv1.OrderServiceClient) error {
				_, err := c.CreateOrder(ctx, createReq(1, 3))
				return err
			},
			code: codes.FailedPrecondition,
		},
		{
			name: "missing order",
			call: func(ctx context.Context, c *apiv1.OrderServiceClient) error {
				_, err := c.GetOrder(ctx, &apiv1.GetOrderRequest{ID: 7})
				return err
			},
			code: codes.NotFound,
		},
		{
			name: "empty client",
			call: func(ctx context.Context, c *apiv1.OrderServiceClient) error {
				_, err := c.ListOrders(ctx, &apiv1.ListOrdersRequest{})
				return err
			},
			code: codes.InvalidArgument,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, _ := newTestClient(t)

			err := tt.call(context.Background(), client)

			require.Error(t, err)
			assert.Equal(t, tt.code, status.Code(err))
		})
	}
}

func TestOrderService_WellKnownWireTypes(t *testing.T) {
	conn, _ := newTestConn(t)
	ctx := context.Background()

	req, err := structpb.NewStruct(map[string]any{
		"userId":   1,
		"clientId": "client-1",
		"lines":    []any{map[string]any{"bookId": 1, "quantity": 1}},
	})
	require.NoError(t, err)

	created := &structpb.Struct{}
	require.NoError(t, conn.Invoke(ctx, apiv1.CreateOrderMethod, req, created))
	orderFields := created.GetFields()["order"].GetStructValue().GetFields()
	id := int64(orderFields["id"].GetNumberValue())
	assert.Positive(t, id)
	assert.Equal(t, float64(500), orderFields["totalCents"].GetNumberValue())

	got := &structpb.Struct{}
	require.NoError(t, conn.Invoke(ctx, apiv1.GetOrderMethod, wrapperspb.Int64(id), got))
	assert.Equal(t, "client-1", got.GetFields()["order"].GetStructValue().GetFields()["clientId"].GetStringValue())

	require.NoError(t, conn.Invoke(ctx, apiv1.DeleteOrderMethod, wrapperspb.Int64(id), &emptypb.Empty{}))
}
