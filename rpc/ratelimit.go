package rpc

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// clientLimiter tracks a token bucket per client address so one noisy caller
// cannot starve the endpoint for everyone else.
type clientLimiter struct {
	mu       sync.Mutex
	visitors map[string]*visitorEntry
	rate     rate.Limit
	burst    int
	ttl      time.Duration
	now      func() time.Time
}

type visitorEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func newClientLimiter(perMinute float64, burst int) *clientLimiter {
	perSecond := perMinute / 60.0
	if perSecond <= 0 {
		perSecond = 1
	}
	if burst <= 0 {
		burst = 1
	}
	return &clientLimiter{
		visitors: make(map[string]*visitorEntry),
		rate:     rate.Limit(perSecond),
		burst:    burst,
		ttl:      5 * time.Minute,
		now:      time.Now,
	}
}

func (c *clientLimiter) allow(source string) bool {
	if source == "" {
		source = "unknown"
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	entry, ok := c.visitors[source]
	if !ok {
		entry = &visitorEntry{limiter: rate.NewLimiter(c.rate, c.burst)}
		c.visitors[source] = entry
	}
	entry.lastSeen = now
	c.evictStale(now)
	return entry.limiter.Allow()
}

// evictStale drops entries not seen within the TTL. Called with the lock held.
func (c *clientLimiter) evictStale(now time.Time) {
	for id, entry := range c.visitors {
		if now.Sub(entry.lastSeen) > c.ttl {
			delete(c.visitors, id)
		}
	}
}
