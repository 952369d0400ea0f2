package grpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

const ExchangeRegistryServiceName = "derivex.ExchangeRegistry"

// ExchangeRegistryServer is the server side of derivex.ExchangeRegistry.
// Requests and responses are google.protobuf.Struct values.
type ExchangeRegistryServer interface {
	CreateExchange(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	GetExchange(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	RemoveExchange(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	GetToken(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
}

type unaryCall func(srv ExchangeRegistryServer, ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)

var ExchangeRegistryServiceDesc = grpc.ServiceDesc{
	ServiceName: ExchangeRegistryServiceName,
	HandlerType: (*ExchangeRegistryServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "CreateExchange",
			Handler: unaryHandler("CreateExchange", func(srv ExchangeRegistryServer, ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
				return srv.CreateExchange(ctx, req)
			}),
		},
		{
			MethodName: "GetExchange",
			Handler: unaryHandler("GetExchange", func(srv ExchangeRegistryServer, ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
				return srv.GetExchange(ctx, req)
			}),
		},
		{
			MethodName: "RemoveExchange",
			Handler: unaryHandler("RemoveExchange", func(srv ExchangeRegistryServer, ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
				return srv.RemoveExchange(ctx, req)
			}),
		},
		{
			MethodName: "GetToken",
			Handler: unaryHandler("GetToken", func(srv ExchangeRegistryServer, ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
				return srv.GetToken(ctx, req)
			}),
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "derivex/exchange_registry.proto",
}

func RegisterExchangeRegistryServer(s grpc.ServiceRegistrar, srv ExchangeRegistryServer) {
	s.RegisterService(&ExchangeRegistryServiceDesc, srv)
}

func unaryHandler(method string, call unaryCall) func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	fullMethod := "/" + ExchangeRegistryServiceName + "/" + method

	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}

		if interceptor == nil {
			return call(srv.(ExchangeRegistryServer), ctx, in)
		}

		info := &grpc.UnaryServerInfo{
			Server:     srv,
			FullMethod: fullMethod,
		}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(ExchangeRegistryServer), ctx, req.(*structpb.Struct))
		}

		return interceptor(ctx, in, info, handler)
	}
}

// ExchangeRegistryClient calls derivex.ExchangeRegistry over an existing connection.
type ExchangeRegistryClient struct {
	cc grpc.ClientConnInterface
}

func NewExchangeRegistryClient(cc grpc.ClientConnInterface) *ExchangeRegistryClient {
	return &ExchangeRegistryClient{cc: cc}
}

func (c *ExchangeRegistryClient) CreateExchange(ctx context.Context, req *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, "CreateExchange", req, opts...)
}

func (c *ExchangeRegistryClient) GetExchange(ctx context.Context, req *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, "GetExchange", req, opts...)
}

func (c *ExchangeRegistryClient) RemoveExchange(ctx context.Context, req *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, "RemoveExchange", req, opts...)
}

func (c *ExchangeRegistryClient) GetToken(ctx context.Context, req *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, "GetToken", req, opts...)
}

func (c *ExchangeRegistryClient) invoke(ctx context.Context, method string, req *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	err := c.cc.Invoke(ctx, "/"+ExchangeRegistryServiceName+"/"+method, req, out, opts...)
	if err != nil {
		return nil, err
	}

	return out, nil
}
