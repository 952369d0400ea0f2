package infrastructure

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/krobus00/derivex-service/internal/config"
	"github.com/stretchr/testify/require"
)

func TestNewRedisClient(t *testing.T) {
	mr := miniredis.RunT(t)

	client, err := NewRedisClient(context.Background(), config.RedisConfig{CacheDSN: "redis://" + mr.Addr() + "/0"})
	require.NoError(t, err)
	defer client.Close()

	require.NoError(t, client.Set(context.Background(), "k", "v", 0).Err())
	require.Equal(t, "v", client.Get(context.Background(), "k").Val())
}

func TestNewRedisClient_InvalidConfig(t *testing.T) {
	_, err := NewRedisClient(context.Background(), config.RedisConfig{})
	require.EqualError(t, err, "redis cache_dsn is required")

	_, err = NewRedisClient(context.Background(), config.RedisConfig{CacheDSN: "not-a-url"})
	require.Error(t, err)
}
