package db

import (
	"context"

	"github.com/legendsansar/legendsansar/pkg/logger"
	"github.com/legendsansar/legendsansar/pkg/utils"
	"github.com/redis/go-redis/v9"
)

// RedisClient wraps the go-redis client so callers depend on this package.
type RedisClient struct {
	*redis.Client
}

// NewRedis initializes a Redis client and verifies connectivity.
func NewRedis(ctx context.Context, addr, password string) (*RedisClient, error) {
	if err := ctx.Err(); err != nil {
		return nil, utils.WrapError(err, utils.ErrInternalServerError.Code, "redis initialization canceled")
	}

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, utils.WrapError(err, utils.ErrInternalServerError.Code, "Failed to connect to Redis")
	}

	return &RedisClient{client}, nil
}

// Close shuts down the Redis connection.
func (r *RedisClient) Close(log *logger.Logger) error {
	if err := r.Client.Close(); err != nil {
		log.Error(context.Background()).WithMeta(utils.Map{"error": err.Error()}).Logs("Redis close failed")
		return utils.WrapError(err, utils.ErrInternalServerError.Code, "Failed to close Redis")
	}
	log.Info(context.Background()).Logs("Redis connection closed")
	return nil
}
