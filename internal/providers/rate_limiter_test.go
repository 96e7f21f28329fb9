package providers

import (
	"fmt"
	"testing"
	"time"

	"rld/internal/structures"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubClock and stubLogger keep provider tests free of outside wiring.
type stubClock struct{ t time.Time }

func (c *stubClock) Now() time.Time          { return c.t }
func (c *stubClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

type stubLogger struct{}

func (stubLogger) Debugf(TypeEnum, string, ...interface{}) {}
func (stubLogger) Infof(TypeEnum, string, ...interface{})  {}
func (stubLogger) Warnf(TypeEnum, string, ...interface{})  {}
func (stubLogger) Errorf(TypeEnum, string, ...interface{}) {}
func (stubLogger) Fatalf(TypeEnum, string, ...interface{}) {}
func (stubLogger) Close()                                  {}

func limiterConf(max int, window time.Duration) *structures.Config {
	conf := &structures.Config{}
	conf.RateLimit.MaxRequests = max
	conf.RateLimit.Window = window
	return conf
}

func TestRateLimiterAllowsUpToMax(t *testing.T) {
	clock := &stubClock{t: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)}
	rl := NewRateLimiter(limiterConf(3, time.Minute), NewMemoryCounterStore(), clock, stubLogger{})

	for i := 0; i < 3; i++ {
		res := rl.Check("exchange:alice")
		assert.True(t, res.Allowed, "request %d", i+1)
		assert.Equal(t, 2-i, res.Remaining)
	}

	res := rl.Check("exchange:alice")
	assert.False(t, res.Allowed)
	assert.Equal(t, 0, res.Remaining)
	assert.Equal(t, clock.t.Add(time.Minute), res.ResetTime)
}

func TestRateLimiterWindowReset(t *testing.T) {
	clock := &stubClock{t: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)}
	rl := NewRateLimiter(limiterConf(1, time.Minute), NewMemoryCounterStore(), clock, stubLogger{})

	assert.True(t, rl.Check("k").Allowed)
	assert.False(t, rl.Check("k").Allowed)

	clock.Advance(59 * time.Second)
	assert.False(t, rl.Check("k").Allowed)

	clock.Advance(time.Second)
	res := rl.Check("k")
	assert.True(t, res.Allowed)
	assert.Equal(t, clock.t.Add(time.Minute), res.ResetTime)
}

func TestRateLimiterKeysAreIndependent(t *testing.T) {
	clock := &stubClock{t: time.Now()}
	rl := NewRateLimiter(limiterConf(1, time.Minute), NewMemoryCounterStore(), clock, stubLogger{})

	assert.True(t, rl.Check("exchange:alice").Allowed)
	assert.False(t, rl.Check("exchange:alice").Allowed)
	assert.True(t, rl.Check("exchange:bob").Allowed)
}

func TestRateLimiterDisabled(t *testing.T) {
	clock := &stubClock{t: time.Now()}
	rl := NewRateLimiter(limiterConf(0, time.Minute), NewMemoryCounterStore(), clock, stubLogger{})

	for i := 0; i < 100; i++ {
		assert.True(t, rl.Check("k").Allowed)
	}
}

type recordingCounterStore struct {
	keys []string
}

func (r *recordingCounterStore) Incr(key string, now time.Time, _ time.Duration) (int, time.Time) {
	r.keys = append(r.keys, key)
	return len(r.keys), now
}

func (r *recordingCounterStore) Expire(time.Time) {}

func TestRateLimiterUsesInjectedStore(t *testing.T) {
	clock := &stubClock{t: time.Now()}
	store := &recordingCounterStore{}
	rl := NewRateLimiter(limiterConf(5, time.Minute), store, clock, stubLogger{})

	rl.Check("exchange:alice")
	rl.Check("exchange:bob")
	assert.Equal(t, []string{"exchange:alice", "exchange:bob"}, store.keys)
}

func TestMemoryCounterStoreExpire(t *testing.T) {
	store := NewMemoryCounterStore()
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	for i := 0; i < 5; i++ {
		store.Incr(fmt.Sprintf("old-%d", i), now, time.Minute)
	}
	store.Incr("fresh", now.Add(30*time.Minute), time.Minute)
	require.Equal(t, 6, store.size())

	store.Expire(now.Add(10 * time.Minute))
	assert.Equal(t, 1, store.size())

	// an expired key starts a new window
	count, _ := store.Incr("old-0", now.Add(30*time.Minute), time.Minute)
	assert.Equal(t, 1, count)
}

func TestRateLimiterSweep(t *testing.T) {
	clock := &stubClock{t: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)}
	store := NewMemoryCounterStore()
	rl := &RateLimiter{store: store, max: 5, window: time.Minute, clock: clock}

	rl.Check("stale")
	clock.Advance(time.Hour)
	rl.Check("active")

	rl.Sweep()
	assert.Equal(t, 1, store.size())
}
