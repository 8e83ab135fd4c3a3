package ratelimit

import (
	"sync"
	"time"
)

const (
	DefaultLimit      = 10
	DefaultWindow     = time.Minute
	DefaultSweepEvery = 5 * time.Minute

	ReasonExceeded = "rate limit exceeded"
)

type Decision struct {
	Allowed bool
	Reason  string
}

// Limiter is a sliding-window request counter keyed by client identifier.
// All map access goes through mu, so concurrent checks for one identifier are counted exactly.
type Limiter struct {
	mu         sync.Mutex
	hits       map[string][]time.Time
	limit      int
	window     time.Duration
	sweepEvery time.Duration
	lastSweep  time.Time
	now        func() time.Time
}

type Option func(*Limiter)

func WithWindow(d time.Duration) Option {
	return func(l *Limiter) { l.window = d }
}

func WithSweepEvery(d time.Duration) Option {
	return func(l *Limiter) { l.sweepEvery = d }
}

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(l *Limiter) { l.now = now }
}

func NewLimiter(limit int, opts ...Option) *Limiter {
	if limit <= 0 {
		limit = DefaultLimit
	}
	l := &Limiter{
		hits:       make(map[string][]time.Time),
		limit:      limit,
		window:     DefaultWindow,
		sweepEvery: DefaultSweepEvery,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	l.lastSweep = l.now()
	return l
}

func (l *Limiter) Limit() int { return l.limit }

// Check records a request for id and reports whether it may proceed.
// Rejected requests are not recorded.
func (l *Limiter) Check(id string) Decision {
	if IsLoopback(id) {
		return Decision{Allowed: true}
	}

	now := l.now()
	cutoff := now.Add(-l.window)

	l.mu.Lock()
	defer l.mu.Unlock()

	if now.Sub(l.lastSweep) >= l.sweepEvery {
		l.sweepLocked(cutoff)
		l.lastSweep = now
	}

	recent := prune(l.hits[id], cutoff)
	if len(recent) >= l.limit {
		l.hits[id] = recent
		return Decision{Allowed: false, Reason: ReasonExceeded}
	}

	l.hits[id] = append(recent, now)
	return Decision{Allowed: true}
}

// Sweep drops expired timestamps for every identifier and forgets identifiers left empty.
func (l *Limiter) Sweep() {
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	l.sweepLocked(now.Add(-l.window))
	l.lastSweep = now
}

func (l *Limiter) sweepLocked(cutoff time.Time) {
	for id, ts := range l.hits {
		recent := prune(ts, cutoff)
		if len(recent) == 0 {
			delete(l.hits, id)
			continue
		}
		l.hits[id] = recent
	}
}

// Tracked returns how many identifiers currently hold state.
func (l *Limiter) Tracked() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.hits)
}

// prune keeps timestamps after cutoff. ts is ordered, so the first kept index splits the slice.
func prune(ts []time.Time, cutoff time.Time) []time.Time {
	i := 0
	for i < len(ts) && !ts[i].After(cutoff) {
		i++
	}
	if i == 0 {
		return ts
	}
	return append(ts[:0:0], ts[i:]...)
}
