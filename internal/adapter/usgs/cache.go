package usgs

import (
	"context"
	"fmt"
	"time"

	"github.com/couchcryptid/quake-data-viewer/internal/domain"
	"github.com/couchcryptid/quake-data-viewer/internal/observability"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/jonboulle/clockwork"
)

// settleGrace is how long after the end of its last day a range becomes
// cacheable. Events near midnight are still being ingested before that.
const settleGrace = time.Hour

// CachedSource wraps an EventSource with an in-memory LRU cache. Only settled
// ranges (ended at least settleGrace ago) are cached, and each entry expires
// after ttl since the catalog keeps revising past events.
type CachedSource struct {
	inner   domain.EventSource
	cache   *lru.Cache[string, cacheEntry]
	ttl     time.Duration
	clock   clockwork.Clock
	metrics *observability.Metrics
}

type cacheEntry struct {
	fc        domain.FeatureCollection
	fetchedAt time.Time
}

// NewCachedSource creates a cache decorator around a source. maxEntries and
// ttl must be positive.
func NewCachedSource(inner domain.EventSource, maxEntries int, ttl time.Duration, clock clockwork.Clock, metrics *observability.Metrics) (*CachedSource, error) {
	if ttl <= 0 {
		return nil, fmt.Errorf("cache ttl must be positive, got %s", ttl)
	}
	cache, err := lru.New[string, cacheEntry](maxEntries)
	if err != nil {
		return nil, fmt.Errorf("create query cache: %w", err)
	}
	return &CachedSource{
		inner:   inner,
		cache:   cache,
		ttl:     ttl,
		clock:   clock,
		metrics: metrics,
	}, nil
}

func (c *CachedSource) Query(ctx context.Context, r domain.DateRange) (domain.FeatureCollection, error) {
	now := c.clock.Now()
	if !r.Closed(now.Add(-settleGrace)) {
		c.metrics.UpstreamCache.WithLabelValues("bypass").Inc()
		return c.inner.Query(ctx, r)
	}

	key := r.String()
	if e, ok := c.cache.Get(key); ok {
		if now.Sub(e.fetchedAt) < c.ttl {
			c.metrics.UpstreamCache.WithLabelValues("hit").Inc()
			return e.fc, nil
		}
		c.cache.Remove(key)
		c.metrics.UpstreamCache.WithLabelValues("expired").Inc()
	} else {
		c.metrics.UpstreamCache.WithLabelValues("miss").Inc()
	}

	fc, err := c.inner.Query(ctx, r)
	if err != nil {
		return fc, err
	}
	c.cache.Add(key, cacheEntry{fc: fc, fetchedAt: now})
	return fc, nil
}
