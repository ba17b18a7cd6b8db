package quota

import (
	"testing"
	"time"

	"fleetwatch/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.now = c.now.Add(d)
}

func newTestGuard(apiKey string) (*Guard, *fakeClock) {
	clock := &fakeClock{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
	cfg := &config.AIConfig{
		APIKey:               apiKey,
		CacheTTL:             5 * time.Minute,
		MaxRequestsPerMinute: 5,
		Cooldown:             time.Minute,
	}

	return NewWithClock(cfg, clock.Now), clock
}

func TestGuard_CacheHitWithinTTL(t *testing.T) {
	guard, clock := newTestGuard("key")

	key := Key("40t steel coils", "Almaty - Astana")
	guard.Store(key, "payload")

	clock.Advance(4*time.Minute + 59*time.Second)

	payload, ok := guard.Cached(key)
	require.True(t, ok)
	assert.Equal(t, "payload", payload)
}

func TestGuard_CacheExpiresAfterTTL(t *testing.T) {
	guard, clock := newTestGuard("key")

	key := Key("40t steel coils", "Almaty - Astana")
	guard.Store(key, "payload")

	clock.Advance(5*time.Minute + time.Second)

	_, ok := guard.Cached(key)
	assert.False(t, ok)

	// Lazy eviction removed the entry entirely
	_, ok = guard.Cached(key)
	assert.False(t, ok)
}

func TestGuard_StoreOverwritesEntry(t *testing.T) {
	guard, clock := newTestGuard("key")

	guard.Store("k", "first")
	clock.Advance(4 * time.Minute)
	guard.Store("k", "second")

	// The overwrite reset the entry age, so it survives past the
	// original entry's would-be expiry.
	clock.Advance(2 * time.Minute)

	payload, ok := guard.Cached("k")
	require.True(t, ok)
	assert.Equal(t, "second", payload)
}

func TestGuard_AdmitRejectsSixthCallInWindow(t *testing.T) {
	guard, clock := newTestGuard("key")

	for i := 0; i < 5; i++ {
		require.True(t, guard.Admit(), "call %d should be admitted", i+1)
		clock.Advance(time.Second)
	}

	assert.False(t, guard.Admit(), "6th call within 60s must be rejected")
}

func TestGuard_AdmitAfterWindowSlides(t *testing.T) {
	guard, clock := newTestGuard("key")

	for i := 0; i < 5; i++ {
		require.True(t, guard.Admit())
	}
	assert.False(t, guard.Admit())

	// 61 seconds after the first call all five timestamps fall out of
	// the trailing window.
	clock.Advance(61 * time.Second)

	assert.True(t, guard.Admit())
}

func TestGuard_AvailableRequiresCredential(t *testing.T) {
	guard, _ := newTestGuard("")

	assert.False(t, guard.Available())
}

func TestGuard_CooldownBlocksAllCalls(t *testing.T) {
	guard, clock := newTestGuard("key")

	require.True(t, guard.Available())

	guard.RecordProviderLimit()

	// Blocked regardless of the rate-limiter window state.
	assert.False(t, guard.Available())
	assert.True(t, guard.CoolingDown())

	clock.Advance(59 * time.Second)
	assert.False(t, guard.Available())

	clock.Advance(2 * time.Second)
	assert.True(t, guard.Available())
	assert.False(t, guard.CoolingDown())
}

func TestGuard_CooldownNeverShrinks(t *testing.T) {
	guard, clock := newTestGuard("key")

	guard.RecordProviderLimit()
	until := clock.now.Add(time.Minute)

	clock.Advance(30 * time.Second)
	guard.RecordProviderLimit()

	// The second report extended the cooldown past the first deadline.
	clock.now = until.Add(time.Second)
	assert.False(t, guard.Available())

	clock.Advance(30 * time.Second)
	assert.True(t, guard.Available())
}

func TestKey_JoinsParts(t *testing.T) {
	assert.Equal(t, "cargo|route", Key("cargo", "route"))
}
