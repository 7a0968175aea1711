package transport

import (
	"context"
	"errors"
	"time"

	"go.trai.ch/protanno/internal/core/domain"
	"go.trai.ch/zerr"
)

// backoffPrimes is the retry schedule in backoff units.
var backoffPrimes = []int{1, 2, 3, 5, 11, 23, 47, 61}

// Policy bounds the retries of one request.
type Policy struct {
	MaxAttempts int
	Unit        time.Duration
	Max         time.Duration
}

// PolicyFrom builds a policy from source settings.
func PolicyFrom(s domain.SourceSettings) Policy {
	return Policy{MaxAttempts: s.MaxAttempts, Unit: s.BackoffUnit, Max: s.MaxBackoff}
}

// Backoff returns the wait before retry number n, starting at 1.
func (p Policy) Backoff(n int) time.Duration {
	idx := max(n-1, 0)
	step := backoffPrimes[len(backoffPrimes)-1]
	if idx < len(backoffPrimes) {
		step = backoffPrimes[idx]
	}
	d := time.Duration(step) * p.Unit
	if p.Max > 0 && d > p.Max {
		return p.Max
	}
	return d
}

// retryAfter is implemented by errors that carry a server requested delay.
type retryAfter interface {
	RetryAfter() time.Duration
}

// Retrier runs an operation until it succeeds, fails permanently or runs out
// of attempts. A Retrier is single use.
type Retrier struct {
	policy  Policy
	attempt int
	waited  time.Duration
}

// NewRetrier returns a retrier in its initial state.
func NewRetrier(p Policy) *Retrier {
	if p.MaxAttempts <= 0 {
		p.MaxAttempts = 1
	}
	return &Retrier{policy: p}
}

// Attempts returns how many times the operation ran.
func (r *Retrier) Attempts() int {
	return r.attempt
}

// Waited returns the total time spent backing off.
func (r *Retrier) Waited() time.Duration {
	return r.waited
}

// next decides whether another attempt follows err and how long to wait for it.
func (r *Retrier) next(err error) (time.Duration, bool) {
	if !domain.IsRetryable(err) || r.attempt >= r.policy.MaxAttempts {
		return 0, false
	}
	wait := r.policy.Backoff(r.attempt)
	var ra retryAfter
	if errors.As(err, &ra) && ra.RetryAfter() > wait {
		wait = ra.RetryAfter()
		if r.policy.Max > 0 && wait > r.policy.Max {
			wait = r.policy.Max
		}
	}
	return wait, true
}

// Do runs op. Retryable failures are retried on the prime schedule. Once the
// attempts are used up the last error is wrapped in ErrRetriesExhausted.
func (r *Retrier) Do(ctx context.Context, op func(context.Context) error) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		r.attempt++
		err := op(ctx)
		if err == nil {
			return nil
		}

		wait, again := r.next(err)
		if !again {
			if domain.IsRetryable(err) {
				return zerr.With(zerr.Wrap(err, domain.ErrRetriesExhausted.Error()), "attempts", r.attempt)
			}
			return err
		}

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
			r.waited += wait
		}
	}
}
