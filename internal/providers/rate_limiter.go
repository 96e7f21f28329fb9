package providers

import (
	"rld/internal/structures"
	"sync"
	"time"
)

// CounterStore is the backing port of the rate limiter: a windowed
// counter per key. The in-process implementation below is the default;
// a shared backend can implement the same three calls without touching
// any caller.
type CounterStore interface {
	// Incr bumps the key's counter, resetting counter and window start
	// atomically when the window has elapsed. Returns the counter value
	// and the window start after the bump.
	Incr(key string, now time.Time, window time.Duration) (count int, windowStart time.Time)
	// Expire removes keys whose window started before the cutoff.
	Expire(olderThan time.Time)
}

type RateLimitResult struct {
	Allowed   bool      `json:"allowed"`
	Remaining int       `json:"remaining"`
	ResetTime time.Time `json:"reset_time"`
}

type RateLimiterInterface interface {
	Check(key string) RateLimitResult
	Sweep()
}

type RateLimiter struct {
	store  CounterStore
	max    int
	window time.Duration
	clock  ClockInterface
}

func NewRateLimiter(conf *structures.Config, store CounterStore, clock ClockInterface, logger Logger) RateLimiterInterface {
	if conf.RateLimit.MaxRequests <= 0 {
		logger.Infof(TypeApp, "Rate limiting disabled")
		return &noopRateLimiter{}
	}
	logger.Infof(TypeApp, "Rate limiting: %d requests per %s", conf.RateLimit.MaxRequests, conf.RateLimit.Window)
	return &RateLimiter{
		store:  store,
		max:    conf.RateLimit.MaxRequests,
		window: conf.RateLimit.Window,
		clock:  clock,
	}
}

func (rl *RateLimiter) Check(key string) RateLimitResult {
	now := rl.clock.Now()
	count, windowStart := rl.store.Incr(key, now, rl.window)
	remaining := rl.max - count
	if remaining < 0 {
		remaining = 0
	}
	return RateLimitResult{
		Allowed:   count <= rl.max,
		Remaining: remaining,
		ResetTime: windowStart.Add(rl.window),
	}
}

// Sweep drops keys idle for many windows, bounding memory. Invoked by
// the scheduler.
func (rl *RateLimiter) Sweep() {
	rl.store.Expire(rl.clock.Now().Add(-10 * rl.window))
}

type counterEntry struct {
	count       int
	windowStart time.Time
}

// MemoryCounterStore is the single-process CounterStore.
type MemoryCounterStore struct {
	mu      sync.Mutex
	entries map[string]*counterEntry
}

func NewMemoryCounterStore() *MemoryCounterStore {
	return &MemoryCounterStore{entries: make(map[string]*counterEntry)}
}

// NewCounterStore is the default CounterStore binding.
func NewCounterStore() CounterStore {
	return NewMemoryCounterStore()
}

func (m *MemoryCounterStore) Incr(key string, now time.Time, window time.Duration) (int, time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[key]
	if !ok || now.Sub(e.windowStart) >= window {
		e = &counterEntry{windowStart: now}
		m.entries[key] = e
	}
	e.count++
	return e.count, e.windowStart
}

func (m *MemoryCounterStore) Expire(olderThan time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for key, e := range m.entries {
		if e.windowStart.Before(olderThan) {
			delete(m.entries, key)
		}
	}
}

func (m *MemoryCounterStore) size() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

type noopRateLimiter struct{}

func (n *noopRateLimiter) Check(_ string) RateLimitResult {
	return RateLimitResult{Allowed: true, Remaining: 1}
}
func (n *noopRateLimiter) Sweep() {}
