package openmeteo

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"golang.org/x/sync/singleflight"

	"github.com/couchcryptid/irrigation-advisor/internal/domain"
	"github.com/couchcryptid/irrigation-advisor/internal/observability"
)

// sharedFetchTimeout bounds an upstream fetch that may be serving several
// waiters, none of whose contexts own it.
const sharedFetchTimeout = 30 * time.Second

// CachedProvider wraps a WeatherProvider with an in-memory LRU cache whose
// entries expire after a freshness window. Concurrent misses for the same key
// share one upstream fetch.
type CachedProvider struct {
	inner   domain.WeatherProvider
	cache   *lruCache
	ttl     time.Duration
	clock   clockwork.Clock
	group   singleflight.Group
	metrics *observability.Metrics
}

// NewCachedProvider creates a cache decorator around a weather provider.
func NewCachedProvider(inner domain.WeatherProvider, maxEntries int, ttl time.Duration, clock clockwork.Clock, metrics *observability.Metrics) *CachedProvider {
	return &CachedProvider{
		inner:   inner,
		cache:   newLRUCache(maxEntries),
		ttl:     ttl,
		clock:   clock,
		metrics: metrics,
	}
}

// DailySeries serves a cached series while it is fresh and refetches
// otherwise. Errors are never cached.
func (c *CachedProvider) DailySeries(ctx context.Context, loc domain.Location, days int) ([]domain.DailyWeatherRecord, error) {
	key := fmt.Sprintf("%s|%d", loc.Key(), days)
	if series, ok := c.cache.get(key, c.clock.Now().Add(-c.ttl)); ok {
		c.metrics.WeatherCache.WithLabelValues("hit").Inc()
		return slices.Clone(series), nil
	}
	c.metrics.WeatherCache.WithLabelValues("miss").Inc()

	ch := c.group.DoChan(key, func() (any, error) {
		fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), sharedFetchTimeout)
		defer cancel()
		series, err := c.inner.DailySeries(fetchCtx, loc, days)
		if err != nil {
			return nil, err
		}
		c.cache.put(key, series, c.clock.Now())
		return series, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return slices.Clone(res.Val.([]domain.DailyWeatherRecord)), nil
	}
}

// lruCache is a thread-safe LRU cache of weather series stamped with the
// time they were stored.
type lruCache struct {
	maxEntries int
	mu         sync.Mutex
	entries    map[string]*entry
	head       *entry // most recently used
	tail       *entry // least recently used
}

type entry struct {
	key      string
	series   []domain.DailyWeatherRecord
	storedAt time.Time
	prev     *entry
	next     *entry
}

func newLRUCache(maxEntries int) *lruCache {
	return &lruCache{
		maxEntries: maxEntries,
		entries:    make(map[string]*entry),
	}
}

// get returns the series for key if it was stored after notBefore. Stale
// entries are dropped.
func (c *lruCache) get(key string, notBefore time.Time) ([]domain.DailyWeatherRecord, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if !e.storedAt.After(notBefore) {
		delete(c.entries, key)
		c.remove(e)
		return nil, false
	}
	c.moveToFront(e)
	return e.series, true
}

func (c *lruCache) put(key string, series []domain.DailyWeatherRecord, now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.entries[key]; ok {
		e.series = series
		e.storedAt = now
		c.moveToFront(e)
		return
	}

	e := &entry{key: key, series: series, storedAt: now}
	c.entries[key] = e
	c.addToFront(e)

	if len(c.entries) > c.maxEntries {
		c.evictTail()
	}
}

func (c *lruCache) size() int {
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
