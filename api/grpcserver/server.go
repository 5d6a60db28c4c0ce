// Package grpcserver exposes the order service over gRPC.
package grpcserver

import (
	"context"
	"errors"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/timestamppb"

	"vela/api/pb"
	"vela/domain/orderbook"
	"vela/service"
)

const defaultDepthLevels = 10

type Server struct {
	pb.UnimplementedOrderServiceServer

	svc *service.OrderService
}

func New(svc *service.OrderService) *Server {
	return &Server{svc: svc}
}

func (s *Server) PlaceOrder(ctx context.Context, req *pb.PlaceOrderRequest) (*pb.PlaceOrderResponse, error) {
	side, err := toSide(req.Side)
	if err != nil {
		return nil, err
	}
	kind, err := toKind(req.Kind)
	if err != nil {
		return nil, err
	}

	id, trades, err := s.svc.PlaceOrder(req.UserId, side, kind, req.Price, req.Qty)
	if err != nil {
		return nil, placeError(err)
	}

	resp := &pb.PlaceOrderResponse{
		OrderId: id,
		Trades:  make([]*pb.Trade, 0, len(trades)),
	}
	for _, t := range trades {
		resp.Trades = append(resp.Trades, fromTrade(t))
	}
	if o, ok := s.svc.GetOrder(id); ok {
		resp.Status = o.Status.String()
	} else {
		resp.Status = orderbook.StatusCancelled.String()
	}
	return resp, nil
}

func (s *Server) CancelOrder(ctx context.Context, req *pb.CancelOrderRequest) (*pb.CancelOrderResponse, error) {
	side, err := toSide(req.Side)
	if err != nil {
		return nil, err
	}
	return &pb.CancelOrderResponse{
		Found: s.svc.CancelOrder(req.OrderId, side),
	}, nil
}

func (s *Server) GetOrder(ctx context.Context, req *pb.GetOrderRequest) (*pb.GetOrderResponse, error) {
	o, ok := s.svc.GetOrder(req.OrderId)
	if !ok {
		return &pb.GetOrderResponse{Found: false}, nil
	}
	return &pb.GetOrderResponse{
		Found: true,
		Order: &pb.Order{
			Id:     o.ID,
			UserId: o.User,
			Side:   fromSide(o.Side),
			Kind:   fromKind(o.Kind),
			Price:  o.Price,
			Qty:    o.Qty,
			Filled: o.Filled,
			Status: o.Status.String(),
		},
	}, nil
}

func (s *Server) GetDepth(ctx context.Context, req *pb.GetDepthRequest) (*pb.GetDepthResponse, error) {
	levels := int(req.Levels)
	if levels <= 0 {
		levels = defaultDepthLevels
	}

	view := s.svc.Depth(levels)
	return &pb.GetDepthResponse{
		Symbol: view.Symbol,
		Seq:    view.Seq,
		Bids:   fromLevels(view.Bids),
		Asks:   fromLevels(view.Asks),
		Time:   timestamppb.New(view.Time),
	}, nil
}

func (s *Server) GetTrades(ctx context.Context, req *pb.GetTradesRequest) (*pb.GetTradesResponse, error) {
	limit := int(req.Limit)
	if limit <= 0 {
		limit = 100
	}

	trades := s.svc.RecentTrades(limit)
	resp := &pb.GetTradesResponse{Trades: make([]*pb.Trade, 0, len(trades))}
	for _, t := range trades {
		resp.Trades = append(resp.Trades, fromTrade(t))
	}
	return resp, nil
}

// placeError maps engine errors onto gRPC codes. Validation failures
// are the caller's fault; ErrBookCrossed is an engine invariant
// failure and must surface as an internal error, never as bad input.
func placeError(err error) error {
	if errors.Is(err, orderbook.ErrInvalidQty) || errors.Is(err, orderbook.ErrInvalidPrice) {
		return status.Errorf(codes.InvalidArgument, "place order: %v", err)
	}
	return status.Errorf(codes.Internal, "place order: %v", err)
}

func toSide(s pb.Side) (orderbook.Side, error) {
	switch s {
	case pb.Side_BID:
		return orderbook.Bid, nil
	case pb.Side_ASK:
		return orderbook.Ask, nil
	default:
		return 0, status.Errorf(codes.InvalidArgument, "unknown side %d", s)
	}
}

func toKind(k pb.OrderKind) (orderbook.Kind, error) {
	switch k {
	case pb.OrderKind_LIMIT:
		return orderbook.Limit, nil
	case pb.OrderKind_MARKET:
		return orderbook.Market, nil
	case pb.OrderKind_IOC:
		return orderbook.IOC, nil
	case pb.OrderKind_FOK:
		return orderbook.FOK, nil
	case pb.OrderKind_POST_ONLY:
		return orderbook.PostOnly, nil
	default:
		return 0, status.Errorf(codes.InvalidArgument, "unknown order kind %d", k)
	}
}

func fromSide(s orderbook.Side) pb.Side {
	if s == orderbook.Ask {
		return pb.Side_ASK
	}
	return pb.Side_BID
}

func fromKind(k orderbook.Kind) pb.OrderKind {
	switch k {
	case orderbook.Market:
		return pb.OrderKind_MARKET
	case orderbook.IOC:
		return pb.OrderKind_IOC
	case orderbook.FOK:
		return pb.OrderKind_FOK
	case orderbook.PostOnly:
		return pb.OrderKind_POST_ONLY
	default:
		return pb.OrderKind_LIMIT
	}
}

func fromTrade(t orderbook.Trade) *pb.Trade {
	return &pb.Trade{
		Seq:         t.Seq,
		BuyOrderId:  t.BuyOrderID,
		SellOrderId: t.SellOrderID,
		Price:       t.Price,
		Qty:         t.Qty,
		TakerSide:   fromSide(t.TakerSide),
		Time:        timestamppb.New(t.Time),
	}
}

func fromLevels(levels []orderbook.LevelView) []*pb.Level {
	out := make([]*pb.Level, 0, len(levels))
	for _, l := range levels {
		out = append(out, &pb.Level{
			Price:  l.Price,
			Qty:    l.Qty,
			Orders: int32(l.Orders),
		})
	}
	return out
}
