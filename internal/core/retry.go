package core

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"time"

	errx "github.com/askpy/server/internal/core/error"
)

const retryJitterFactor = 0.25

// CallPolicy bounds a single external collaborator call: an overall timeout
// per attempt plus a limited number of retries with exponential backoff.
type CallPolicy struct {
	Timeout   time.Duration
	Attempts  int
	BaseDelay time.Duration
}

func (p CallPolicy) normalize() CallPolicy {
	if p.Timeout <= 0 {
		p.Timeout = 30 * time.Second
	}
	if p.Attempts <= 0 {
		p.Attempts = 1
	}
	if p.BaseDelay <= 0 {
		p.BaseDelay = 300 * time.Millisecond
	}
	return p
}

// Retry runs fn under the policy's per-attempt timeout, retrying transient
// failures up to Attempts times. Context cancellation and malformed-judgment
// errors are never retried; retries apply only to the individual call, the
// caller must not re-run a whole turn through this helper.
func Retry(ctx context.Context, policy CallPolicy, fn func(context.Context) error) error {
	policy = policy.normalize()

	var err error
	for attempt := 0; attempt < policy.Attempts; attempt++ {
		if attempt > 0 {
			delay := backoffDelay(policy.BaseDelay, attempt)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}

		attemptCtx, cancel := context.WithTimeout(ctx, policy.Timeout)
		err = fn(attemptCtx)
		cancel()

		if err == nil {
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if errors.Is(err, errx.ErrMalformedJudgment) {
			return err
		}
	}
	return err
}

// backoffDelay doubles the base delay per attempt and spreads it with jitter.
func backoffDelay(base time.Duration, attempt int) time.Duration {
	d := float64(base) * math.Pow(2, float64(attempt-1))
	jitter := 1 + retryJitterFactor*(2*rand.Float64()-1)
	return time.Duration(d * jitter)
}
