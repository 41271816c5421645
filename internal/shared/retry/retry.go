// Package retry runs an operation a bounded number of times with linear backoff.
package retry

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// Policy bounds a retry loop. Retry n (1-based) waits n*Backoff.
type Policy struct {
	Attempts int
	Backoff  time.Duration
}

// Default is three attempts with 50ms linear backoff.
var Default = Policy{Attempts: 3, Backoff: 50 * time.Millisecond}

// Do calls fn until it succeeds, returns a non-retryable error, the attempts
// are exhausted, or ctx is done. The last error is returned unwrapped.
func Do(ctx context.Context, p Policy, retryable func(error) bool, fn func(ctx context.Context) error) error {
	attempts := p.Attempts
	if attempts <= 0 {
		attempts = 1
	}
	policy := backoff.WithContext(
		backoff.WithMaxRetries(&linear{step: p.Backoff}, uint64(attempts-1)),
		ctx,
	)
	return backoff.Retry(func() error {
		err := fn(ctx)
		if err != nil && (retryable == nil || !retryable(err)) {
			return backoff.Permanent(err)
		}
		return err
	}, policy)
}

type linear struct {
	step time.Duration
	n    int
}

func (l *linear) NextBackOff() time.Duration {
	l.n++
	return time.Duration(l.n) * l.step
}

func (l *linear) Reset() { l.n = 0 }
