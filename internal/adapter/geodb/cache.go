package geodb

import (
	"context"
	"strconv"
	"sync"

	"github.com/couchcryptid/hebcal-calendar-service/internal/domain"
	"github.com/couchcryptid/hebcal-calendar-service/internal/observability"
)

// CachedLookup wraps a LocationLookup with an in-memory LRU cache.
type CachedLookup struct {
	inner   domain.LocationLookup
	cache   *lruCache
	metrics *observability.Metrics
}

// NewCachedLookup creates a cache decorator around a location lookup.
func NewCachedLookup(inner domain.LocationLookup, maxEntries int, metrics *observability.Metrics) *CachedLookup {
	return &CachedLookup{
		inner:   inner,
		cache:   newLRUCache(maxEntries),
		metrics: metrics,
	}
}

func (c *CachedLookup) LookupGeoname(ctx context.Context, id int) (*domain.Location, error) {
	return c.cached(ctx, "geoname", "g:"+strconv.Itoa(id), func() (*domain.Location, error) {
		return c.inner.LookupGeoname(ctx, id)
	})
}

func (c *CachedLookup) LookupZip(ctx context.Context, zip string) (*domain.Location, error) {
	return c.cached(ctx, "zip", "z:"+zip, func() (*domain.Location, error) {
		return c.inner.LookupZip(ctx, zip)
	})
}

func (c *CachedLookup) LookupLegacyCity(ctx context.Context, name string) (*domain.Location, error) {
	return c.cached(ctx, "city", "c:"+normalizeCityName(name), func() (*domain.Location, error) {
		return c.inner.LookupLegacyCity(ctx, name)
	})
}

func (c *CachedLookup) cached(_ context.Context, kind, key string, load func() (*domain.Location, error)) (*domain.Location, error) {
	if loc, ok := c.cache.get(key); ok {
		c.metrics.LookupCache.WithLabelValues(kind, "hit").Inc()
		return loc, nil
	}
	c.metrics.LookupCache.WithLabelValues(kind, "miss").Inc()
	loc, err := load()
	if err != nil {
		return nil, err
	}
	// Only cache found locations so a database refresh picks up new ids.
	if loc != nil {
		c.cache.put(key, loc)
	}
	return loc, nil
}

// lruCache is a simple thread-safe LRU cache of resolved locations.
type lruCache struct {
	maxEntries int
	mu         sync.Mutex
	entries    map[string]*entry
	head       *entry // most recently used
	tail       *entry // least recently used
}

type entry struct {
	key   string
	value *domain.Location
	prev  *entry
	next  *entry
}

func newLRUCache(maxEntries int) *lruCache {
	return &lruCache{
		maxEntries: maxEntries,
		entries:    make(map[string]*entry),
	}
}

func (c *lruCache) get(key string) (*domain.Location, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	c.moveToFront(e)
	return e.value, true
}

func (c *lruCache) put(key string, value *domain.Location) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.entries[key]; ok {
		e.value = value
		c.moveToFront(e)
		return
	}

	e := &entry{key: key, value: value}
	c.entries[key] = e
	c.addToFront(e)

	if len(c.entries) > c.maxEntries {
		c.evictTail()
	}
}

func (c *lruCache) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *lruCache) moveToFront(e *entry) {
	if e == c.head {
		return
	}
	c.remove(e)
	c.addToFront(e)
}

func (c *lruCache) addToFront(e *entry) {
	e.next = c.head
	e.prev = nil
	if c.head != nil {
		c.head.prev = e
	}
	c.head = e
	if c.tail == nil {
		c.tail = e
	}
}

func (c *lruCache) remove(e *entry) {
	if e.prev != nil {
		e.prev.next = e.next
	} else {
		c.head = e.next
	}
	if e.next != nil {
		e.next.prev = e.prev
	} else {
		c.tail = e.prev
	}
}

func (c *lruCache) evictTail() {
	if c.tail == nil {
		return
	}
	delete(c.entries, c.tail.key)
	c.remove(c.tail)
}
