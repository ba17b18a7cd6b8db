// Package quota gates and memoizes calls to the external text-generation
// provider: a keyed TTL cache, a sliding-window request counter and a
// cooldown that kicks in after a provider-reported rate limit.
package quota

import (
	"strings"
	"sync"
	"time"

	"fleetwatch/config"
)

// rateWindow is the span of the sliding admission window. The per-window
// request budget comes from config; the span itself does not.
const rateWindow = time.Minute

type cacheEntry struct {
	payload   any
	createdAt time.Time
}

// Guard owns the in-memory cache, rate window and cooldown state placed in
// front of the provider. All state is process-lifetime and resets on restart;
// no persistence is implied. Safe for concurrent use.
type Guard struct {
	mu sync.Mutex

	now           func() time.Time
	ttl           time.Duration
	maxPerWindow  int
	cooldown      time.Duration
	hasCredential bool

	entries       map[string]cacheEntry
	window        []time.Time
	cooldownUntil time.Time
}

// New creates a Guard from the AI configuration, using the wall clock.
func New(cfg *config.AIConfig) *Guard {
	return NewWithClock(cfg, time.Now)
}

// NewWithClock creates a Guard with an injected clock. Tests use this to
// drive TTL, window and cooldown expiry deterministically.
func NewWithClock(cfg *config.AIConfig, now func() time.Time) *Guard {
	return &Guard{
		now:           now,
		ttl:           cfg.CacheTTL,
		maxPerWindow:  cfg.MaxRequestsPerMinute,
		cooldown:      cfg.Cooldown,
		hasCredential: cfg.APIKey != "",
		entries:       make(map[string]cacheEntry),
	}
}

// Key builds the cache key for a quote request from its free-text parts.
func Key(parts ...string) string {
	return strings.Join(parts, "|")
}

// Cached returns the stored payload for key while the entry is younger than
// the TTL. Expired entries are evicted lazily here.
func (g *Guard) Cached(key string) (any, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()

	entry, ok := g.entries[key]
	if !ok {
		return nil, false
	}

	if g.now().Sub(entry.createdAt) >= g.ttl {
		delete(g.entries, key)

		return nil, false
	}

	return entry.payload, true
}

// Store saves payload under key with the current timestamp, overwriting any
// prior entry.
func (g *Guard) Store(key string, payload any) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.entries[key] = cacheEntry{payload: payload, createdAt: g.now()}
}

// Admit decides whether one more provider call fits into the trailing
// window. Timestamps older than the window are pruned first; when the
// remaining count is at the budget the call is rejected, otherwise the
// current instant is recorded and the call admitted.
func (g *Guard) Admit() bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.now()
	cutoff := now.Add(-rateWindow)

	kept := g.window[:0]
	for _, ts := range g.window {
		if ts.After(cutoff) {
			kept = append(kept, ts)
		}
	}
	g.window = kept

	if len(g.window) >= g.maxPerWindow {
		return false
	}

	g.window = append(g.window, now)

	return true
}

// HasCredential reports whether a provider credential is configured.
func (g *Guard) HasCredential() bool {
	return g.hasCredential
}

// Available reports whether the provider may be contacted at all: a
// credential must be configured and no cooldown may be running.
func (g *Guard) Available() bool {
	if !g.hasCredential {
		return false
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	return !g.now().Before(g.cooldownUntil)
}

// RecordProviderLimit extends the cooldown after the provider itself
// reported a rate-limit or quota error. The cooldown never shrinks.
func (g *Guard) RecordProviderLimit() {
	g.mu.Lock()
	defer g.mu.Unlock()

	until := g.now().Add(g.cooldown)
	if until.After(g.cooldownUntil) {
		g.cooldownUntil = until
	}
}

// CoolingDown reports whether a cooldown is currently in effect,
// independent of credential configuration.
func (g *Guard) CoolingDown() bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	return g.now().Before(g.cooldownUntil)
}
