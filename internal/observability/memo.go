package observability

import (
	"context"

	"github.com/couchcryptid/hebcal-calendar-service/internal/domain"
)

// CountingCityCache records hit/miss metrics around a nearest-city memo.
type CountingCityCache struct {
	inner   domain.NearestCityCache
	metrics *Metrics
}

func NewCountingCityCache(inner domain.NearestCityCache, metrics *Metrics) *CountingCityCache {
	return &CountingCityCache{inner: inner, metrics: metrics}
}

func (c *CountingCityCache) Get(ctx context.Context, key string) (int, bool) {
	id, ok := c.inner.Get(ctx, key)
	if ok {
		c.metrics.NearestCityCache.WithLabelValues("hit").Inc()
	} else {
		c.metrics.NearestCityCache.WithLabelValues("miss").Inc()
	}
	return id, ok
}

func (c *CountingCityCache) Put(ctx context.Context, key string, id int) {
	c.inner.Put(ctx, key, id)
}
