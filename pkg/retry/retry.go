// Package retry runs an operation under an exponential backoff policy.
// Only failures the classifier marks retryable are attempted again;
// everything else returns immediately. Built on cenkalti/backoff.
package retry

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/liugddx/spark-go/pkg/api"
)

// Policy shapes the backoff schedule.
type Policy struct {
	// MaxAttempts counts the first try. 3 means one call plus up to
	// two retries.
	MaxAttempts     int
	InitialInterval time.Duration
	MaxInterval     time.Duration
	// MaxElapsedTime caps the whole retry loop. Zero means no cap;
	// the attempt budget alone bounds it.
	MaxElapsedTime time.Duration
	Multiplier     float64
}

// DefaultPolicy suits interactive chat calls: quick retries, bounded
// total delay.
func DefaultPolicy() Policy {
	return Policy{
		MaxAttempts:     3,
		InitialInterval: 250 * time.Millisecond,
		MaxInterval:     2 * time.Second,
		Multiplier:      2,
	}
}

// Classifier reports whether an error is worth retrying.
type Classifier func(error) bool

// Retrier applies one policy to many operations. A nil *Retrier is
// valid and runs each operation exactly once.
type Retrier struct {
	policy   Policy
	classify Classifier
}

// New builds a Retrier. A nil classifier defaults to api.IsTransport,
// the only failure class where a retry can change the outcome.
func New(policy Policy, classify Classifier) *Retrier {
	if policy.MaxAttempts < 1 {
		policy.MaxAttempts = 1
	}
	if classify == nil {
		classify = api.IsTransport
	}
	return &Retrier{policy: policy, classify: classify}
}

// Do runs op until it succeeds, fails permanently, exhausts the
// attempt budget, or ctx ends. The last error is returned unchanged;
// a cancelled context yields ctx.Err().
func (r *Retrier) Do(ctx context.Context, op func() error) error {
	if r == nil {
		return op()
	}
	classify := r.classify
	if classify == nil {
		classify = api.IsTransport
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = r.policy.InitialInterval
	bo.MaxInterval = r.policy.MaxInterval
	bo.Multiplier = r.policy.Multiplier
	bo.MaxElapsedTime = r.policy.MaxElapsedTime

	wrapped := func() error {
		err := op()
		if err == nil {
			return nil
		}
		if !classify(err) {
			return backoff.Permanent(err)
		}
		return err
	}

	return backoff.Retry(wrapped,
		backoff.WithContext(backoff.WithMaxRetries(bo, uint64(r.policy.MaxAttempts-1)), ctx))
}
