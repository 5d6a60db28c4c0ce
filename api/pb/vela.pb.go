// Package pb holds the gRPC types for the engine's OrderService.
// Schema source: api/proto/vela.proto.
package pb

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/timestamppb"
)

type Side int32

const (
	Side_BID Side = 0
	Side_ASK Side = 1
)

type OrderKind int32

const (
	OrderKind_LIMIT     OrderKind = 0
	OrderKind_MARKET    OrderKind = 1
	OrderKind_IOC       OrderKind = 2
	OrderKind_FOK       OrderKind = 3
	OrderKind_POST_ONLY OrderKind = 4
)

// Request/Response message types

type PlaceOrderRequest struct {
	UserId uint64    `json:"user_id"`
	Side   Side      `json:"side"`
	Kind   OrderKind `json:"kind"`
	Price  int64     `json:"price"`
	Qty    int64     `json:"qty"`
}

type PlaceOrderResponse struct {
	OrderId uint64   `json:"order_id"`
	Status  string   `json:"status"`
	Trades  []*Trade `json:"trades"`
}

type CancelOrderRequest struct {
	OrderId uint64 `json:"order_id"`
	Side    Side   `json:"side"`
}

type CancelOrderResponse struct {
	Found bool `json:"found"`
}

type GetOrderRequest struct {
	OrderId uint64 `json:"order_id"`
}

type GetOrderResponse struct {
	Found bool   `json:"found"`
	Order *Order `json:"order"`
}

type GetDepthRequest struct {
	Levels int32 `json:"levels"`
}

type GetDepthResponse struct {
	Symbol string                 `json:"symbol"`
	Seq    uint64                 `json:"seq"`
	Bids   []*Level               `json:"bids"`
	Asks   []*Level               `json:"asks"`
	Time   *timestamppb.Timestamp `json:"time"`
}

type GetTradesRequest struct {
	Limit int32 `json:"limit"`
}

type GetTradesResponse struct {
	Trades []*Trade `json:"trades"`
}

type Order struct {
	Id     uint64    `json:"id"`
	UserId uint64    `json:"user_id"`
	Side   Side      `json:"side"`
	Kind   OrderKind `json:"kind"`
	Price  int64     `json:"price"`
	Qty    int64     `json:"qty"`
	Filled int64     `json:"filled"`
	Status string    `json:"status"`
}

type Trade struct {
	Seq         uint64                 `json:"seq"`
	BuyOrderId  uint64                 `json:"buy_order_id"`
	SellOrderId uint64                 `json:"sell_order_id"`
	Price       int64                  `json:"price"`
	Qty         int64                  `json:"qty"`
	TakerSide   Side                   `json:"taker_side"`
	Time        *timestamppb.Timestamp `json:"time"`
}

type Level struct {
	Price  int64 `json:"price"`
	Qty    int64 `json:"qty"`
	Orders int32 `json:"orders"`
}

// OrderServiceServer is the server API for OrderService.
type OrderServiceServer interface {
	PlaceOrder(context.Context, *PlaceOrderRequest) (*PlaceOrderResponse, error)
	CancelOrder(context.Context, *CancelOrderRequest) (*CancelOrderResponse, error)
	GetOrder(context.Context, *GetOrderRequest) (*GetOrderResponse, error)
	GetDepth(context.Context, *GetDepthRequest) (*GetDepthResponse, error)
	GetTrades(context.Context, *GetTradesRequest) (*GetTradesResponse, error)
}

// UnimplementedOrderServiceServer can be embedded for forward
// compatible implementations.
type UnimplementedOrderServiceServer struct{}

func (UnimplementedOrderServiceServer) PlaceOrder(context.Context, *PlaceOrderRequest) (*PlaceOrderResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method PlaceOrder not implemented")
}

func (UnimplementedOrderServiceServer) CancelOrder(context.Context, *CancelOrderRequest) (*CancelOrderResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method CancelOrder not implemented")
}

func (UnimplementedOrderServiceServer) GetOrder(context.Context, *GetOrderRequest) (*GetOrderResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method GetOrder not implemented")
}

func (UnimplementedOrderServiceServer) GetDepth(context.Context, *GetDepthRequest) (*GetDepthResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method GetDepth not implemented")
}

func (UnimplementedOrderServiceServer) GetTrades(context.Context, *GetTradesRequest) (*GetTradesResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method GetTrades not implemented")
}

// RegisterOrderServiceServer registers the server implementation.
func RegisterOrderServiceServer(s grpc.ServiceRegistrar, srv OrderServiceServer) {
	s.RegisterService(&OrderService_ServiceDesc, srv)
}

func _OrderService_PlaceOrder_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(PlaceOrderRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(OrderServiceServer).PlaceOrder(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: "/vela.OrderService/PlaceOrder",
	}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(OrderServiceServer).PlaceOrder(ctx, req.(*PlaceOrderRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _OrderService_CancelOrder_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(CancelOrderRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(OrderServiceServer).CancelOrder(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: "/vela.OrderService/CancelOrder",
	}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(OrderServiceServer).CancelOrder(ctx, req.(*CancelOrderRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _OrderService_GetOrder_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(GetOrderRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(OrderServiceServer).GetOrder(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: "/vela.OrderService/GetOrder",
	}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(OrderServiceServer).GetOrder(ctx, req.(*GetOrderRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _OrderService_GetDepth_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(GetDepthRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(OrderServiceServer).GetDepth(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: "/vela.OrderService/GetDepth",
	}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(OrderServiceServer).GetDepth(ctx, req.(*GetDepthRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _OrderService_GetTrades_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(GetTradesRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(OrderServiceServer).GetTrades(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: "/vela.OrderService/GetTrades",
	}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(OrderServiceServer).GetTrades(ctx, req.(*GetTradesRequest))
	}
	return interceptor(ctx, in, info, handler)
}

var OrderService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: "vela.OrderService",
	HandlerType: (*OrderServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "PlaceOrder",
			Handler:    _OrderService_PlaceOrder_Handler,
		},
		{
			MethodName: "CancelOrder",
			Handler:    _OrderService_CancelOrder_Handler,
		},
		{
			MethodName: "GetOrder",
			Handler:    _OrderService_GetOrder_Handler,
		},
		{
			MethodName: "GetDepth",
			Handler:    _OrderService_GetDepth_Handler,
		},
		{
			MethodName: "GetTrades",
			Handler:    _OrderService_GetTrades_Handler,
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "api/proto/vela.proto",
}
