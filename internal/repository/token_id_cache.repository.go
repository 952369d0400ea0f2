package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/krobus00/derivex-service/internal/constant"
	"github.com/redis/go-redis/v9"
)

type TokenIDCacheRepository struct {
	client *redis.Client
	ttl    time.Duration
}

func NewTokenIDCacheRepository(client *redis.Client, ttl time.Duration) *TokenIDCacheRepository {
	if ttl <= 0 {
		ttl = constant.TokenIDCacheTTL
	}

	return &TokenIDCacheRepository{client: client, ttl: ttl}
}

func (r *TokenIDCacheRepository) Get(ctx context.Context, id uint64) (string, bool, error) {
	token, err := r.client.Get(ctx, tokenIDCacheKey(id)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}

	return token, true, nil
}

func (r *TokenIDCacheRepository) Set(ctx context.Context, id uint64, token string) error {
	return r.client.Set(ctx, tokenIDCacheKey(id), token, r.ttl).Err()
}

func (r *TokenIDCacheRepository) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func tokenIDCacheKey(id uint64) string {
	return fmt.Sprintf("%s:%d", constant.TokenIDCacheKeyPrefix, id)
}
