// FilePath: internal/ratelimit/ratelimit.go
package ratelimit

import (
	"math"
	"sync"
	"time"
)

// Limiter applies per-client token bucket admission control with two
// simultaneously enforced limits: a burst allowance refilling over one second
// and a sustained allowance refilling over one minute. A request is admitted
// only while both buckets hold at least one token; one token is consumed from
// each on admission.
//
// Buckets are created lazily on the first request from a key and live for the
// process lifetime. There is no eviction of stale keys; under long-lived
// deployments with churning client IPs the map grows without bound. Known
// limitation carried over unchanged to keep the externally observable
// behavior identical.
type Limiter struct {
	cfg Config

	mu      sync.RWMutex
	buckets map[string]*bucket

	now func() time.Time
}

// Config holds the bucket capacities. Sustained tokens refill to capacity
// over one minute, burst tokens over one second.
type Config struct {
	SustainedCapacity int64
	BurstCapacity     int64
}

// Result is the outcome of one admission attempt
type Result struct {
	Allowed           bool
	Remaining         int64
	RetryAfterSeconds int64
}

const (
	sustainedPeriod = time.Minute
	burstPeriod     = time.Second
)

type bucket struct {
	mu         sync.Mutex
	sustained  float64
	burst      float64
	lastRefill time.Time
}

// New creates a limiter with the given capacities
func New(cfg Config) *Limiter {
	return &Limiter{
		cfg:     cfg,
		buckets: make(map[string]*bucket),
		now:     time.Now,
	}
}

// Admit decides whether one request from clientKey may proceed. Admission
// for the same key is serialized on the key's bucket; different keys only
// share the read lock on the bucket map.
func (l *Limiter) Admit(clientKey string) Result {
	b := l.resolveBucket(clientKey)

	b.mu.Lock()
	defer b.mu.Unlock()

	now := l.now()
	b.refill(now, l.cfg)

	if b.sustained >= 1 && b.burst >= 1 {
		b.sustained--
		b.burst--
		return Result{
			Allowed:   true,
			Remaining: int64(math.Floor(math.Min(b.sustained, b.burst))),
		}
	}

	return Result{
		Allowed:           false,
		Remaining:         0,
		RetryAfterSeconds: b.retryAfter(l.cfg),
	}
}

// resolveBucket returns the bucket for key, creating it on first use
func (l *Limiter) resolveBucket(key string) *bucket {
	l.mu.RLock()
	b, ok := l.buckets[key]
	l.mu.RUnlock()
	if ok {
		return b
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if b, ok = l.buckets[key]; ok {
		return b
	}
	b = &bucket{
		sustained:  float64(l.cfg.SustainedCapacity),
		burst:      float64(l.cfg.BurstCapacity),
		lastRefill: l.now(),
	}
	l.buckets[key] = b
	return b
}

// refill adds tokens for the time elapsed since the last refill, capped at
// each bucket's capacity. Caller holds b.mu.
func (b *bucket) refill(now time.Time, cfg Config) {
	elapsed := now.Sub(b.lastRefill).Seconds()
	if elapsed <= 0 {
		return
	}
	b.sustained = math.Min(
		float64(cfg.SustainedCapacity),
		b.sustained+elapsed*float64(cfg.SustainedCapacity)/sustainedPeriod.Seconds(),
	)
	b.burst = math.Min(
		float64(cfg.BurstCapacity),
		b.burst+elapsed*float64(cfg.BurstCapacity)/burstPeriod.Seconds(),
	)
	b.lastRefill = now
}

// retryAfter computes the wait in whole seconds until the emptier bucket
// regains its next token. Caller holds b.mu.
func (b *bucket) retryAfter(cfg Config) int64 {
	var wait float64
	if b.sustained < 1 {
		perToken := sustainedPeriod.Seconds() / float64(cfg.SustainedCapacity)
		wait = math.Max(wait, (1-b.sustained)*perToken)
	}
	if b.burst < 1 {
		perToken := burstPeriod.Seconds() / float64(cfg.BurstCapacity)
		wait = math.Max(wait, (1-b.burst)*perToken)
	}
	secs := int64(math.Ceil(wait))
	if secs < 1 {
		secs = 1
	}
	return secs
}

// Size returns the number of tracked client keys
func (l *Limiter) Size() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.buckets)
}
