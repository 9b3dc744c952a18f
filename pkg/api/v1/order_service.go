package apiv1

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

const ServiceName = "bookstore.v1.OrderService"

// Wire types: order payloads travel as google.protobuf.Struct, ids as
// google.protobuf.Int64Value and the delete reply as google.protobuf.Empty.
const (
	CreateOrderMethod = "/" + ServiceName + "/CreateOrder"
	GetOrderMethod    = "/" + ServiceName + "/GetOrder"
	ListOrdersMethod  = "/" + ServiceName + "/ListOrders"
	DeleteOrderMethod = "/" + ServiceName + "/DeleteOrder"
)

// OrderServiceServer is the server API for the order service.
type OrderServiceServer interface {
	CreateOrder(ctx context.Context, req *CreateOrderRequest) (*CreateOrderResponse, error)
	GetOrder(ctx context.Context, req *GetOrderRequest) (*GetOrderResponse, error)
	ListOrders(ctx context.Context, req *ListOrdersRequest) (*ListOrdersResponse, error)
	DeleteOrder(ctx context.Context, req *DeleteOrderRequest) (*DeleteOrderResponse, error)
}

// unaryHandler decodes the wire message In into Req, calls the server and
// encodes Resp back. Interceptors see the wire messages.
func unaryHandler[In proto.Message, Req, Resp any](
	fullMethod string,
	newIn func() In,
	decode func(In) (*Req, error),
	call func(OrderServiceServer, context.Context, *Req) (*Resp, error),
	encode func(*Resp) (proto.Message, error),
) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := newIn()
		if err := dec(in); err != nil {
			return nil, err
		}

		handler := func(ctx context.Context, req any) (any, error) {
			typed, err := decode(req.(In))
			if err != nil {
				return nil, status.Error(codes.InvalidArgument, err.Error())
			}

			resp, err := call(srv.(OrderServiceServer), ctx, typed)
			if err != nil {
				return nil, err
			}

			out, err := encode(resp)
			if err != nil {
				return nil, status.Error(codes.Internal, err.Error())
			}

			return out, nil
		}
		if interceptor == nil {
			return handler(ctx, in)
		}

		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}

		return interceptor(ctx, in, info, handler)
	}
}

func newStruct() *structpb.Struct {
	return &structpb.Struct{}
}

func newInt64() *wrapperspb.Int64Value {
	return &wrapperspb.Int64Value{}
}

func encodeStruct[T any](v *T) (proto.Message, error) {
	s, err := ToStruct(v)
	if err != nil {
		return nil, err
	}

	return s, nil
}

// OrderServiceDesc describes the order service for grpc.Server.RegisterService.
var OrderServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*OrderServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "CreateOrder",
			Handler: unaryHandler(CreateOrderMethod, newStruct,
				FromStruct[CreateOrderRequest],
				OrderServiceServer.CreateOrder,
				encodeStruct[CreateOrderResponse],
			),
		},
		{
			MethodName: "GetOrder",
			Handler: unaryHandler(GetOrderMethod, newInt64,
				func(in *wrapperspb.Int64Value) (*GetOrderRequest, error) {
					return &GetOrderRequest{ID: in.GetValue()}, nil
				},
				OrderServiceServer.GetOrder,
				encodeStruct[GetOrderResponse],
			),
		},
		{
			MethodName: "ListOrders",
			Handler: unaryHandler(ListOrdersMethod, newStruct,
				FromStruct[ListOrdersRequest],
				OrderServiceServer.ListOrders,
				encodeStruct[ListOrdersResponse],
			),
		},
		{
			MethodName: "DeleteOrder",
			Handler: unaryHandler(DeleteOrderMethod, newInt64,
				func(in *wrapperspb.Int64Value) (*DeleteOrderRequest, error) {
					return &DeleteOrderRequest{ID: in.GetValue()}, nil
				},
				OrderServiceServer.DeleteOrder,
				func(*DeleteOrderResponse) (proto.Message, error) {
					return &emptypb.Empty{}, nil
				},
			),
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "bookstore/v1/order_service",
}

// RegisterOrderServiceServer registers srv on s.
func RegisterOrderServiceServer(s grpc.ServiceRegistrar, srv OrderServiceServer) {
	s.RegisterService(&OrderServiceDesc, srv)
}

// OrderServiceClient calls the order service over the default proto codec.
type OrderServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewOrderServiceClient(cc grpc.ClientConnInterface) *OrderServiceClient {
	return &OrderServiceClient{cc: cc}
}

func invoke[Resp any](ctx context.Context, cc grpc.ClientConnInterface, method string, in proto.Message, opts []grpc.CallOption) (*Resp, error) {
	out := &structpb.Struct{}
	if err := cc.Invoke(ctx, method, in, out, opts...); err != nil {
		return nil, err
	}

	return FromStruct[Resp](out)
}

func (c *OrderServiceClient) CreateOrder(ctx context.Context, in *CreateOrderRequest, opts ...grpc.CallOption) (*CreateOrderResponse, error) {
	wire, err := ToStruct(in)
	if err != nil {
		return nil, err
	}

	return invoke[CreateOrderResponse](ctx, c.cc, CreateOrderMethod, wire, opts)
}

func (c *OrderServiceClient) GetOrder(ctx context.Context, in *GetOrderRequest, opts ...grpc.CallOption) (*GetOrderResponse, error) {
	return invoke[GetOrderResponse](ctx, c.cc, GetOrderMethod, wrapperspb.Int64(in.ID), opts)
}

func (c *OrderServiceClient) ListOrders(ctx context.Context, in *ListOrdersRequest, opts ...grpc.CallOption) (*ListOrdersResponse, error) {
	wire, err := ToStruct(in)
	if err != nil {
		return nil, err
	}

	return invoke[ListOrdersResponse](ctx, c.cc, ListOrdersMethod, wire, opts)
}

func (c *OrderServiceClient) DeleteOrder(ctx context.Context, in *DeleteOrderRequest, opts ...grpc.CallOption) (*DeleteOrderResponse, error) {
	if err := c.cc.Invoke(ctx, DeleteOrderMethod, wrapperspb.Int64(in.ID), &emptypb.Empty{}, opts...); err != nil {
		return nil, err
	}

	return &DeleteOrderResponse{}, nil
}
