package util

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProcessWithTimeout_ReturnsCallbackError(t *testing.T) {
	boom := errors.New("boom")
	msg := &nats.Msg{Subject: "exchange.created", Data: []byte(`{}`)}

	err := ProcessWithTimeout(time.Second, msg, func(ctx context.Context, m *nats.Msg) error {
		assert.Same(t, msg, m)
		return boom
	})
	require.ErrorIs(t, err, boom)
}

func TestProcessWithTimeout_Timeout(t *testing.T) {
	msg := &nats.Msg{Subject: "exchange.created", Data: []byte(`{"id":"1"}`)}
	release := make(chan struct{})
	defer close(release)

	err := ProcessWithTimeout(20*time.Millisecond, msg, func(ctx context.Context, _ *nats.Msg) error {
		<-release
		return nil
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "processing timeout")
	assert.Contains(t, err.Error(), `{"id":"1"}`)
}

func TestRequestIDFromContext(t *testing.T) {
	assert.Empty(t, RequestIDFromContext(context.Background()))

	ctx := ContextWithRequestID(context.Background(), "req-1")
	assert.Equal(t, "req-1", RequestIDFromContext(ctx))
	assert.NotEmpty(t, NewRequestID())
}
