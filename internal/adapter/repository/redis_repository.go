package repository

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	domainrepo "github.com/voicebank/payment-service/internal/domain/repository"
)

// redisRepository implements the CacheRepository interface on Redis.
type redisRepository struct {
	client *redis.Client
	logger *zap.Logger
}

// NewRedisRepository creates a Redis-backed cache repository
func NewRedisRepository(client *redis.Client, logger *zap.Logger) domainrepo.CacheRepository {
	return &redisRepository{
		client: client,
		logger: logger,
	}
}

func (r *redisRepository) Set(ctx context.Context, key string, value string, expiration time.Duration) error {
	if err := r.client.Set(ctx, key, value, expiration).Err(); err != nil {
		r.logger.Error("redis set failed",
			zap.String("key", key),
			zap.Error(err))
		return err
	}
	return nil
}

func (r *redisRepository) Get(ctx context.Context, key string) (string, error) {
	value, err := r.client.Get(ctx, key).Result()
	if err != nil {
		if err == redis.Nil {
			return "", err
		}
		r.logger.Error("redis get failed",
			zap.String("key", key),
			zap.Error(err))
		return "", err
	}
	return value, nil
}

func (r *redisRepository) GetDel(ctx context.Context, key string) (string, error) {
	value, err := r.client.GetDel(ctx, key).Result()
	if err != nil {
		if err == redis.Nil {
			return "", err
		}
		r.logger.Error("redis getdel failed",
			zap.String("key", key),
			zap.Error(err))
		return "", err
	}
	return value, nil
}

func (r *redisRepository) Delete(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, key).Err(); err != nil {
		r.logger.Error("redis delete failed",
			zap.String("key", key),
			zap.Error(err))
		return err
	}
	return nil
}

func (r *redisRepository) SetMulti(ctx context.Context, items map[string]string, expiration time.Duration) error {
	pipe := r.client.Pipeline()
	for key, value := range items {
		pipe.Set(ctx, key, value, expiration)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		r.logger.Error("redis setmulti failed", zap.Error(err))
		return err
	}
	return nil
}

func (r *redisRepository) DeleteMulti(ctx context.Context, keys []string) error {
	if len(keys) == 0 {
		return nil
	}

	if err := r.client.Del(ctx, keys...).Err(); err != nil {
		r.logger.Error("redis deletemulti failed",
			zap.Strings("keys", keys),
			zap.Error(err))
		return err
	}
	return nil
}

func (r *redisRepository) IsNotFound(err error) bool {
	return err == redis.Nil
}
