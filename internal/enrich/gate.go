package enrich

import (
	"context"
	"sync"
	"time"

	"github.com/kzcompliance/offshore-radar/internal/service"
)

// intervalGate enforces a minimum interval between calls per service name.
// It is shared across concurrent transaction analyses, so callers wait for
// their slot instead of failing.
type intervalGate struct {
	lastCall    map[string]time.Time
	minInterval time.Duration
	mu          sync.Mutex
}

func newIntervalGate(minInterval time.Duration) *intervalGate {
	return &intervalGate{
		lastCall:    make(map[string]time.Time),
		minInterval: minInterval,
	}
}

// wait blocks until the service's interval has elapsed or ctx is canceled.
// The slot is claimed under the lock so two waiters cannot share it.
func (g *intervalGate) wait(ctx context.Context, svc string) error {
	for {
		g.mu.Lock()
		now := time.Now()
		elapsed := now.Sub(g.lastCall[svc])
		if elapsed >= g.minInterval {
			g.lastCall[svc] = now
			g.mu.Unlock()
			return nil
		}
		remaining := g.minInterval - elapsed
		g.mu.Unlock()

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(remaining):
		}
	}
}

// lookupCache is a bounded map cache for enrichment results. Eviction is
// oldest-insertion-first, matching the small working set of a batch run.
type lookupCache struct {
	entries map[string]*service.EnrichmentContext
	order   []string
	max     int
	mu      sync.Mutex
}

func newLookupCache(max int) *lookupCache {
	return &lookupCache{
		entries: make(map[string]*service.EnrichmentContext),
		max:     max,
	}
}

func (c *lookupCache) get(key string) (*service.EnrichmentContext, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.entries[key]
	return v, ok
}

func (c *lookupCache) set(key string, v *service.EnrichmentContext) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[key]; !exists {
		if len(c.order) >= c.max {
			oldest := c.order[0]
			c.order = c.order[1:]
			delete(c.entries, oldest)
		}
		c.order = append(c.order, key)
	}
	c.entries[key] = v
}
