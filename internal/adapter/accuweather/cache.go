package accuweather

import (
	"context"
	"sync"

	"github.com/couchcryptid/forecast-report-service/internal/domain"
	"github.com/couchcryptid/forecast-report-service/internal/observability"
)

// CachedForecaster wraps a Forecaster with an in-memory LRU cache keyed by
// location key.
type CachedForecaster struct {
	inner   domain.Forecaster
	cache   *lruCache[[]domain.DailyForecast]
	metrics *observability.Metrics
}

// NewCachedForecaster creates a cache decorator around a forecaster.
func NewCachedForecaster(inner domain.Forecaster, maxEntries int, metrics *observability.Metrics) *CachedForecaster {
	return &CachedForecaster{
		inner:   inner,
		cache:   newLRUCache[[]domain.DailyForecast](maxEntries),
		metrics: metrics,
	}
}

func (c *CachedForecaster) DailyForecasts(ctx context.Context, locationKey string) ([]domain.DailyForecast, error) {
	if forecasts, ok := c.cache.get(locationKey); ok {
		c.metrics.ForecastCache.WithLabelValues("hit").Inc()
		return forecasts, nil
	}
	c.metrics.ForecastCache.WithLabelValues("miss").Inc()

	forecasts, err := c.inner.DailyForecasts(ctx, locationKey)
	if err != nil {
		return nil, err
	}
	// Empty results stay uncached so a location that is not yet published can be retried.
	if len(forecasts) > 0 {
		c.cache.put(locationKey, forecasts)
	}
	return forecasts, nil
}

// lruCache is a small thread-safe LRU cache.
type lruCache[V any] struct {
	maxEntries int
	mu         sync.Mutex
	entries    map[string]*entry[V]
	head       *entry[V] // most recently used
	tail       *entry[V] // least recently used
}

type entry[V any] struct {
	key   string
	value V
	prev  *entry[V]
	next  *entry[V]
}

func newLRUCache[V any](maxEntries int) *lruCache[V] {
	return &lruCache[V]{
		maxEntries: maxEntries,
		entries:    make(map[string]*entry[V]),
	}
}

func (c *lruCache[V]) get(key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		var zero V
		return zero, false
	}
	c.moveToFront(e)
	return e.value, true
}

func (c *lruCache[V]) put(key string, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.entries[key]; ok {
		e.value = value
		c.moveToFront(e)
		return
	}

	e := &entry[V]{key: key, value: value}
	c.entries[key] = e
	c.pushFront(e)

	if len(c.entries) > c.maxEntries {
		c.evictOldest()
	}
}

func (c *lruCache[V]) size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *lruCache[V]) moveToFront(e *entry[V]) {
	if e == c.head {
		return
	}
	c.unlink(e)
	c.pushFront(e)
}

func (c *lruCache[V]) pushFront(e *entry[V]) {
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

func (c *lruCache[V]) unlink(e *entry[V]) {
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

func (c *lruCache[V]) evictOldest() {
	if c.tail == nil {
		return
	}
	delete(c.entries, c.tail.key)
	c.unlink(c.tail)
}
