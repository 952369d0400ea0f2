package grpc

import (
	"context"
	"errors"

	"github.com/krobus00/derivex-service/internal/entity"
	"github.com/krobus00/derivex-service/internal/service/exchange"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

type Server struct {
	exchangeService *exchange.ExchangeService
}

func NewExchangeGRPCServer(exchangeService *exchange.ExchangeService) *Server {
	return &Server{
		exchangeService: exchangeService,
	}
}

func (s *Server) CreateExchange(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	created, err := s.exchangeService.CreateExchange(ctx, stringField(req, "token"))
	if err != nil {
		return nil, mapRegistryError(err)
	}

	return exchangeToStruct(created)
}

func (s *Server) GetExchange(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	token := stringField(req, "token")
	found, ok := s.exchangeService.GetExchangeByToken(token)
	if !ok {
		return nil, status.Errorf(codes.NotFound, "exchange not found: %q", token)
	}

	return exchangeToStruct(found)
}

func (s *Server) RemoveExchange(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	if err := s.exchangeService.RemoveExchange(ctx, stringField(req, "token")); err != nil {
		return nil, status.FromContextError(err).Err()
	}

	return &structpb.Struct{}, nil
}

func (s *Server) GetToken(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	factory := stringField(req, "factory")
	if factory == "" {
		factory = s.exchangeService.FactoryLabel()
	}
	server := stringField(req, "server")
	if server == "" {
		server = s.exchangeService.Server()
	}

	target := entity.NewExchange(stringField(req, "token"), factory, server)
	token, ok := s.exchangeService.GetTokenByExchange(target)
	if !ok {
		return nil, status.Errorf(codes.NotFound, "token not found for %s", target)
	}

	return structpb.NewStruct(map[string]any{"token": token})
}

func stringField(req *structpb.Struct, key string) string {
	return req.GetFields()[key].GetStringValue()
}

func exchangeToStruct(e entity.Exchange) (*structpb.Struct, error) {
	return structpb.NewStruct(map[string]any{
		"token":   e.Token(),
		"factory": e.Factory(),
		"server":  e.Server(),
		"display": e.String(),
	})
}

func mapRegistryError(err error) error {
	switch {
	case errors.Is(err, exchange.ErrInvalidToken):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, exchange.ErrDuplicateToken):
		return status.Error(codes.AlreadyExists, err.Error())
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return status.FromContextError(err).Err()
	default:
		return status.Error(codes.Internal, err.Error())
	}
}
