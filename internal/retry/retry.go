// Package retry holds the two failure-handling primitives the bot
// reuses: a bounded retry policy with per-attempt timeouts, and a
// consecutive-failure breaker that throttles a hot loop.
package retry

import (
	"context"
	"fmt"
	"time"

	"github.com/jonboulle/clockwork"
)

// Policy retries an operation a fixed number of times. Timeout bounds
// each attempt (zero means unbounded); Backoff returns the pause after
// the given 1-based failed attempt.
type Policy struct {
	Attempts int
	Timeout  time.Duration
	Backoff  func(attempt int) time.Duration
}

// Linear returns a backoff of step, 2*step, 3*step, ...
func Linear(step time.Duration) func(int) time.Duration {
	return func(attempt int) time.Duration {
		return time.Duration(attempt) * step
	}
}

// Exponential returns a backoff of base, 2*base, 4*base, ...
func Exponential(base time.Duration) func(int) time.Duration {
	return func(attempt int) time.Duration {
		return base << (attempt - 1)
	}
}

// Do runs op until it succeeds or attempts are exhausted. The last
// error is returned wrapped with the attempt count.
func (p Policy) Do(ctx context.Context, op func(ctx context.Context) error) error {
	var lastErr error
	for attempt := 1; attempt <= p.Attempts; attempt++ {
		attemptCtx := ctx
		cancel := context.CancelFunc(func() {})
		if p.Timeout > 0 {
			attemptCtx, cancel = context.WithTimeout(ctx, p.Timeout)
		}
		lastErr = op(attemptCtx)
		cancel()
		if lastErr == nil {
			return nil
		}
		if attempt == p.Attempts {
			break
		}
		if p.Backoff != nil {
			select {
			case <-time.After(p.Backoff(attempt)):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}
	return fmt.Errorf("after %d attempts: %w", p.Attempts, lastErr)
}

// Breaker trips after Threshold consecutive failures and stays open
// for Cooldown. Not safe for concurrent use; the scheduling loop is
// its only caller.
type Breaker struct {
	Threshold int
	Cooldown  time.Duration

	clock     clockwork.Clock
	failures  int
	openUntil time.Time
}

func NewBreaker(threshold int, cooldown time.Duration, clock clockwork.Clock) *Breaker {
	return &Breaker{Threshold: threshold, Cooldown: cooldown, clock: clock}
}

// Failure records one failed phase. It returns true when this failure
// trips the breaker open.
func (b *Breaker) Failure() bool {
	b.failures++
	if b.failures >= b.Threshold {
		b.openUntil = b.clock.Now().Add(b.Cooldown)
		b.failures = 0
		return true
	}
	return false
}

func (b *Breaker) Success() {
	b.failures = 0
}

// Open reports whether the cooldown window is still running.
func (b *Breaker) Open() bool {
	return b.clock.Now().Before(b.openUntil)
}
