package grpc

import (
	"context"
	"net"
	"testing"

	"github.com/krobus00/derivex-service/internal/service/exchange"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/structpb"
)

func newTestClient(t *testing.T, opts ...exchange.RegistryOption) *ExchangeRegistryClient {
	t.Helper()

	registry := exchange.NewExchangeRegistry("horizon.test", opts...)
	svc := exchange.NewExchangeService(registry)

	listener := bufconn.Listen(1024 * 1024)
	server := grpc.NewServer()
	RegisterExchangeRegistryServer(server, NewExchangeGRPCServer(svc))
	go func() {
		_ = server.Serve(listener)
	}()
	t.Cleanup(server.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return listener.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	return NewExchangeRegistryClient(conn)
}

func tokenRequest(t *testing.T, fields map[string]any) *structpb.Struct {
	t.Helper()

	req, err := structpb.NewStruct(fields)
	require.NoError(t, err)

	return req
}

func TestExchangeRegistryServer_Lifecycle(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()

	created, err := client.CreateExchange(ctx, tokenRequest(t, map[string]any{"token": "TOKEN_A"}))
	require.NoError(t, err)
	assert.Equal(t, "TOKEN_A", created.GetFields()["token"].GetStringValue())
	assert.Equal(t, "Factory", created.GetFields()["factory"].GetStringValue())
	assert.Equal(t, "horizon.test", created.GetFields()["server"].GetStringValue())
	assert.Equal(t, "Exchange{token: TOKEN_A, factory: Factory, server: horizon.test}", created.GetFields()["display"].GetStringValue())

	found, err := client.GetExchange(ctx, tokenRequest(t, map[string]any{"token": "TOKEN_A"}))
	require.NoError(t, err)
	assert.Equal(t, "TOKEN_A", found.GetFields()["token"].GetStringValue())

	token, err := client.GetToken(ctx, tokenRequest(t, map[string]any{"token": "TOKEN_A"}))
	require.NoError(t, err)
	assert.Equal(t, "TOKEN_A", token.GetFields()["token"].GetStringValue())

	_, err = client.RemoveExchange(ctx, tokenRequest(t, map[string]any{"token": "TOKEN_A"}))
	require.NoError(t, err)

	_, err = client.RemoveExchange(ctx, tokenRequest(t, map[string]any{"token": "TOKEN_A"}))
	require.NoError(t, err)

	_, err = client.GetExchange(ctx, tokenRequest(t, map[string]any{"token": "TOKEN_A"}))
	assert.Equal(t, codes.NotFound, status.Code(err))
}

func TestExchangeRegistryServer_GetToken_UsesConfiguredFactoryLabel(t *testing.T) {
	client := newTestClient(t, exchange.WithFactoryLabel("Derivex"))
	ctx := context.Background()

	created, err := client.CreateExchange(ctx, tokenRequest(t, map[string]any{"token": "TOKEN_A"}))
	require.NoError(t, err)
	assert.Equal(t, "Derivex", created.GetFields()["factory"].GetStringValue())

	token, err := client.GetToken(ctx, tokenRequest(t, map[string]any{"token": "TOKEN_A"}))
	require.NoError(t, err)
	assert.Equal(t, "TOKEN_A", token.GetFields()["token"].GetStringValue())

	_, err = client.GetToken(ctx, tokenRequest(t, map[string]any{"token": "TOKEN_A", "factory": "Factory"}))
	assert.Equal(t, codes.NotFound, status.Code(err))
}

func TestExchangeRegistryServer_ErrorCodes(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()

	_, err := client.CreateExchange(ctx, tokenRequest(t, map[string]any{"token": "TOKEN_A"}))
	require.NoError(t, err)

	tests := []struct {
		name string
		call func() error
		code codes.Code
	}{
		{
			name: "empty token",
			call: func() error {
				_, err := client.CreateExchange(ctx, tokenRequest(t, map[string]any{"token": ""}))
				return err
			},
			code: codes.InvalidArgument,
		},
		{
			name: "missing token field",
			call: func() error {
				_, err := client.CreateExchange(ctx, tokenRequest(t, map[string]any{}))
				return err
			},
			code: codes.InvalidArgument,
		},
		{
			name: "duplicate token",
			call: func() error {
				_, err := client.CreateExchange(ctx, tokenRequest(t, map[string]any{"token": "TOKEN_A"}))
				return err
			},
			code: codes.AlreadyExists,
		},
		{
			name: "token for foreign server",
			call: func() error {
				_, err := client.GetToken(ctx, tokenRequest(t, map[string]any{"token": "TOKEN_A", "server": "other"}))
				return err
			},
			code: codes.NotFound,
		},
		{
			name: "token for foreign factory",
			call: func() error {
				_, err := client.GetToken(ctx, tokenRequest(t, map[string]any{"token": "TOKEN_A", "factory": "Other"}))
				return err
			},
			code: codes.NotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.call()
			require.Error(t, err)
			assert.Equal(t, tt.code, status.Code(err))
		})
	}
}

func TestMapRegistryError(t *testing.T) {
	assert.Equal(t, codes.Canceled, status.Code(mapRegistryError(context.Canceled)))
	assert.Equal(t, codes.DeadlineExceeded, status.Code(mapRegistryError(context.DeadlineExceeded)))
	assert.Equal(t, codes.Internal, status.Code(mapRegistryError(assert.AnError)))
}
