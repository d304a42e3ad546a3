package executor

import (
	"sync"
	"time"
)

// Dedup suppresses repeat executions of the same arbitrage route within a
// time-to-live window. Divergences typically persist across several scan
// cycles; without this the bot would race its own pending transaction.
// Safe for concurrent use.
type Dedup struct {
	seen map[string]time.Time // route -> last execution time
	ttl  time.Duration
	mu   sync.Mutex
}

// NewDedup creates a Dedup instance that considers a route a duplicate if it
// was executed within the given ttl.
func NewDedup(ttl time.Duration) *Dedup {
	return &Dedup{
		seen: make(map[string]time.Time),
		ttl:  ttl,
	}
}

// IsDuplicate returns true if the route was executed within the TTL window.
// Otherwise the route is recorded and false is returned.
func (d *Dedup) IsDuplicate(route string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	now := time.Now()
	if last, ok := d.seen[route]; ok && now.Sub(last) < d.ttl {
		return true
	}

	d.seen[route] = now
	return false
}

// Cleanup removes entries expired beyond the TTL. Call periodically to keep
// memory bounded on long-running monitors.
func (d *Dedup) Cleanup() {
	d.mu.Lock()
	defer d.mu.Unlock()

	now := time.Now()
	for route, ts := range d.seen {
		if now.Sub(ts) >= d.ttl {
			delete(d.seen, route)
		}
	}
}
