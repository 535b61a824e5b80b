// FilePath: internal/ratelimit/ratelimit_test.go
package ratelimit

import (
	"sync"
	"testing"
	"time"
)

func testConfig() Config {
	return Config{SustainedCapacity: 100, BurstCapacity: 20}
}

// fixedClock lets tests advance time deterministically
type fixedClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFixedClock() *fixedClock {
	return &fixedClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fixedClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fixedClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTestLimiter(clock *fixedClock) *Limiter {
	l := New(testConfig())
	l.now = clock.Now
	return l
}

func TestAdmit_AllowsUpToBurstCapacity(t *testing.T) {
	clock := newFixedClock()
	l := newTestLimiter(clock)

	for i := 0; i < 20; i++ {
		res := l.Admit("10.0.0.1")
		if !res.Allowed {
			t.Fatalf("request %d should be allowed", i+1)
		}
	}

	res := l.Admit("10.0.0.1")
	if res.Allowed {
		t.Fatal("21st request within the same second should be rejected")
	}
	if res.RetryAfterSeconds <= 0 {
		t.Errorf("expected positive retry-after, got %d", res.RetryAfterSeconds)
	}
	if res.Remaining != 0 {
		t.Errorf("expected zero remaining on rejection, got %d", res.Remaining)
	}
}

func TestAdmit_BurstReplenishesAfterOneSecond(t *testing.T) {
	clock := newFixedClock()
	l := newTestLimiter(clock)

	for i := 0; i < 20; i++ {
		l.Admit("10.0.0.1")
	}
	if res := l.Admit("10.0.0.1"); res.Allowed {
		t.Fatal("expected rejection once burst bucket is drained")
	}

	clock.Advance(time.Second)

	res := l.Admit("10.0.0.1")
	if !res.Allowed {
		t.Fatal("expected admission after burst refill window elapsed")
	}
	if res.Remaining <= 0 {
		t.Errorf("expected replenished tokens, remaining=%d", res.Remaining)
	}
}

func TestAdmit_SustainedLimitBindsAcrossSeconds(t *testing.T) {
	clock := newFixedClock()
	l := newTestLimiter(clock)

	// Drain the sustained bucket in bursts of 20, advancing a second between
	// bursts so the burst bucket fully refills each time. Sustained refills
	// too (100/60 per second), so the total admitted before rejection is
	// capacity plus the refill accrued during the drain.
	allowed := 0
	for i := 0; i < 12; i++ {
		for j := 0; j < 20; j++ {
			if l.Admit("10.0.0.9").Allowed {
				allowed++
			}
		}
		clock.Advance(time.Second)
	}

	if allowed >= 240 {
		t.Fatalf("sustained limit never bound: %d admitted", allowed)
	}
	if allowed < 100 {
		t.Fatalf("sustained capacity not honored: only %d admitted", allowed)
	}
}

func TestAdmit_KeysAreIsolated(t *testing.T) {
	clock := newFixedClock()
	l := newTestLimiter(clock)

	for i := 0; i < 20; i++ {
		l.Admit("10.0.0.1")
	}
	if res := l.Admit("10.0.0.1"); res.Allowed {
		t.Fatal("first key should be exhausted")
	}

	if res := l.Admit("10.0.0.2"); !res.Allowed {
		t.Fatal("second key must not be affected by first key's consumption")
	}
	if l.Size() != 2 {
		t.Errorf("expected 2 tracked keys, got %d", l.Size())
	}
}

func TestAdmit_RetryAfterReflectsLongestWait(t *testing.T) {
	clock := newFixedClock()
	l := New(Config{SustainedCapacity: 2, BurstCapacity: 20})
	l.now = clock.Now

	if !l.Admit("k").Allowed || !l.Admit("k").Allowed {
		t.Fatal("first two requests should pass")
	}
	res := l.Admit("k")
	if res.Allowed {
		t.Fatal("third request should be rejected")
	}
	// Sustained refills one token every 30s; burst is still stocked, so the
	// sustained bucket dictates the wait.
	if res.RetryAfterSeconds < 1 || res.RetryAfterSeconds > 30 {
		t.Errorf("retry-after out of range: %d", res.RetryAfterSeconds)
	}
}

func TestAdmit_NoLostTokensUnderConcurrency(t *testing.T) {
	clock := newFixedClock()
	l := newTestLimiter(clock)

	const goroutines = 50
	results := make(chan bool, goroutines)
	var wg sync.WaitGroup
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results <- l.Admit("shared").Allowed
		}()
	}
	wg.Wait()
	close(results)

	allowed := 0
	for ok := range results {
		if ok {
			allowed++
		}
	}
	// Burst capacity is 20 and the clock never advances: exactly 20 of the
	// 50 concurrent attempts may consume a token.
	if allowed != 20 {
		t.Errorf("expected exactly 20 admissions, got %d", allowed)
	}
}
