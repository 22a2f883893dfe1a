// Package redis shares the nearest-city memo between service instances.
package redis

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
)

const keyPrefix = "hebcal:nearest-city:"

// CityMemo implements domain.NearestCityCache on Redis. Redis failures are
// logged and reported as misses; the resolver recomputes the answer.
type CityMemo struct {
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

func NewCityMemo(client *redis.Client, ttl time.Duration, logger *slog.Logger) *CityMemo {
	return &CityMemo{client: client, ttl: ttl, logger: logger}
}

// NewClient creates a client for addr.
func NewClient(addr string) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:         addr,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  500 * time.Millisecond,
		WriteTimeout: 500 * time.Millisecond,
	})
}

func (m *CityMemo) Get(ctx context.Context, key string) (int, bool) {
	v, err := m.client.Get(ctx, keyPrefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return 0, false
	}
	if err != nil {
		m.logger.Warn("nearest city memo read failed", "key", key, "error", err)
		return 0, false
	}
	id, err := strconv.Atoi(v)
	if err != nil {
		m.logger.Warn("nearest city memo holds non-integer", "key", key, "value", v)
		return 0, false
	}
	return id, true
}

func (m *CityMemo) Put(ctx context.Context, key string, id int) {
	if err := m.client.Set(ctx, keyPrefix+key, strconv.Itoa(id), m.ttl).Err(); err != nil {
		m.logger.Warn("nearest city memo write failed", "key", key, "error", err)
	}
}

// Ping reports whether Redis is reachable.
func (m *CityMemo) Ping(ctx context.Context) error {
	return m.client.Ping(ctx).Err()
}

func (m *CityMemo) Close() error {
	return m.client.Close()
}
