package openweather

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/aerowatch/air-traffic-monitor/internal/domain"
	"github.com/aerowatch/air-traffic-monitor/internal/observability"
)

// CachedSource wraps a WeatherSource with a TTL cache keyed by coordinate.
// Weather goes stale quickly, so entries expire rather than live until
// evicted; airports are few, so the map stays small.
type CachedSource struct {
	inner   domain.WeatherSource
	ttl     time.Duration
	clock   clockwork.Clock
	metrics *observability.Metrics

	mu      sync.Mutex
	entries map[string]cacheEntry
}

type cacheEntry struct {
	obs       domain.WeatherObservation
	expiresAt time.Time
}

// NewCachedSource creates a TTL cache decorator around a weather source.
// Pass nil clock to use real time.
func NewCachedSource(inner domain.WeatherSource, ttl time.Duration, clock clockwork.Clock, metrics *observability.Metrics) *CachedSource {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &CachedSource{
		inner:   inner,
		ttl:     ttl,
		clock:   clock,
		metrics: metrics,
		entries: make(map[string]cacheEntry),
	}
}

func (c *CachedSource) Current(ctx context.Context, lat, lon float64) (domain.WeatherObservation, error) {
	key := fmt.Sprintf("%.4f,%.4f", lat, lon)
	now := c.clock.Now()

	c.mu.Lock()
	if e, ok := c.entries[key]; ok && now.Before(e.expiresAt) {
		c.mu.Unlock()
		c.metrics.WeatherCache.WithLabelValues("hit").Inc()
		return e.obs, nil
	}
	c.mu.Unlock()

	c.metrics.WeatherCache.WithLabelValues("miss").Inc()

	obs, err := c.inner.Current(ctx, lat, lon)
	if err != nil {
		return obs, err
	}

	c.mu.Lock()
	c.entries[key] = cacheEntry{obs: obs, expiresAt: now.Add(c.ttl)}
	// Opportunistic sweep of expired entries keeps the map bounded by the
	// set of recently queried coordinates.
	for k, e := range c.entries {
		if !now.Before(e.expiresAt) {
			delete(c.entries, k)
		}
	}
	c.mu.Unlock()

	return obs, nil
}
