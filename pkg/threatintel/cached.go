package threatintel

import (
	"context"
	"phishguard/pkg/domain"
	"phishguard/pkg/logger"
	"phishguard/pkg/metrics"
	"phishguard/pkg/serrors"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// Cached is a Client that answers repeated lookups of the same URL from a
// Cache and collapses concurrent lookups of the same URL into a single
// provider call. Failed lookups are not cached, so a transient outage or a
// missing credential does not pin a URL to an empty result.
type Cached struct {
	client  Client
	cache   Cache
	group   singleflight.Group
	metrics *metrics.Lookup
}

// CachedOption customizes a Cached client.
type CachedOption func(*Cached)

// WithMetrics records lookup outcomes, latency and cache hits on m.
func WithMetrics(m *metrics.Lookup) CachedOption {
	return func(c *Cached) { c.metrics = m }
}

// NewCached wraps client with cache. A nil cache gets a fresh MemoryCache.
func NewCached(client Client, cache Cache, opts ...CachedOption) *Cached {
	if cache == nil {
		cache = NewMemoryCache()
	}
	c := &Cached{client: client, cache: cache}
	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Lookup implements Client.
func (c *Cached) Lookup(ctx context.Context, URL domain.CandidateURL) (domain.ThreatQueryResult, error) {
	if res, ok := c.cache.Get(URL); ok {
		c.cacheHit(ctx)

		return res, nil
	}

	v, err, shared := c.group.Do(string(URL), func() (any, error) {
		// a flight that finished between our Get and Do may have filled it
		if res, ok := c.cache.Get(URL); ok {
			return flight{res: res, hit: true}, nil
		}

		// the flight outlives any single caller; the provider client bounds it
		flightCtx := context.WithoutCancel(ctx)
		start := time.Now()
		res, err := c.client.Lookup(flightCtx, URL)
		c.observe(flightCtx, err, time.Since(start))
		if err != nil {
			return flight{}, err
		}
		c.cache.Set(URL, res)

		return flight{res: res}, nil
	})
	if shared {
		logger.Debug(ctx, "threat lookup shared with a concurrent caller", zap.Error(err))
	}
	if err != nil {
		return domain.ThreatQueryResult{}, err //nolint: wrapcheck
	}

	f, _ := v.(flight)
	if f.hit {
		c.cacheHit(ctx)
	}

	return f.res, nil
}

// flight is the value shared by callers of one singleflight call.
type flight struct {
	res domain.ThreatQueryResult
	hit bool
}

func (c *Cached) cacheHit(ctx context.Context) {
	logger.Debug(ctx, "threat lookup served from cache")
	if c.metrics != nil {
		c.metrics.CacheHit(ctx)
	}
}

func (c *Cached) observe(ctx context.Context, err error, took time.Duration) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
		if k := serrors.KindOf(err); k != nil {
			outcome = k.Error()
		}
		logger.Debug(ctx, "provider lookup failed", zap.String("outcome", outcome), zap.Error(err))
	}
	if c.metrics != nil {
		c.metrics.Observe(ctx, outcome, took)
	}
}

var _ Client = (*Cached)(nil)
