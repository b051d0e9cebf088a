package cache

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const identityKeyPrefix = "pupsorders:identity:"

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

func NewRedisClient(cfg RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
	})
}

// RedisIdentityCache shares the email -> user id mapping across api replicas.
type RedisIdentityCache struct {
	rdb redis.Cmdable
	ttl time.Duration
}

func NewRedisIdentityCache(rdb redis.Cmdable, ttl time.Duration) *RedisIdentityCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &RedisIdentityCache{rdb: rdb, ttl: ttl}
}

func (r *RedisIdentityCache) GetUserID(ctx context.Context, email string) (string, bool, error) {
	id, err := r.rdb.Get(ctx, identityKeyPrefix+email).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return id, true, nil
}

func (r *RedisIdentityCache) SetUserID(ctx context.Context, email, userID string) error {
	return r.rdb.Set(ctx, identityKeyPrefix+email, userID, r.ttl).Err()
}

// Ping checks redis connectivity.
func (r *RedisIdentityCache) Ping(ctx context.Context) error {
	return r.rdb.Ping(ctx).Err()
}
