// Package retry re-issues operations that fail with a transient error.
package retry

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/aluiziolira/cinesent/failure"
	"github.com/aluiziolira/cinesent/metrics"
)

// Policy bounds the number of attempts and the fixed delay between them.
type Policy struct {
	MaxAttempts int
	Backoff     time.Duration
}

// DefaultPolicy makes 3 attempts 2 seconds apart.
func DefaultPolicy() Policy {
	return Policy{MaxAttempts: 3, Backoff: 2 * time.Second}
}

// Op is a single attempt. attempt starts at 1.
type Op func(ctx context.Context, attempt int) error

// Retrier runs an Op under a Policy, retrying only failures that failure.IsRetryable accepts.
type Retrier struct {
	policy  Policy
	source  string
	metrics *metrics.Metrics
	sleep   func(ctx context.Context, d time.Duration) error

	totalRetries atomic.Int64
}

// New returns a Retrier that labels its metrics and logs with source.
func New(policy Policy, source string, m *metrics.Metrics) *Retrier {
	if policy.MaxAttempts <= 0 {
		policy.MaxAttempts = 1
	}
	if policy.Backoff < 0 {
		policy.Backoff = 0
	}
	return &Retrier{
		policy:  policy,
		source:  source,
		metrics: m,
		sleep:   sleepContext,
	}
}

// Do runs op until it succeeds, fails terminally, or the attempt ceiling is reached.
// The last error is returned wrapped, so its type stays reachable with errors.As.
func (r *Retrier) Do(ctx context.Context, op Op) error {
	if ctx == nil {
		ctx = context.Background()
	}

	var err error
	for attempt := 1; attempt <= r.policy.MaxAttempts; attempt++ {
		err = op(ctx, attempt)
		if err == nil {
			return nil
		}
		if !failure.IsRetryable(err) {
			return err
		}
		if attempt == r.policy.MaxAttempts {
			break
		}

		r.totalRetries.Add(1)
		r.metrics.IncRetries(r.source)
		slog.Warn("retrying after transient failure",
			slog.String("source", r.source),
			slog.Int("attempt", attempt),
			slog.Duration("backoff", r.policy.Backoff),
			slog.Any("error", err),
		)
		if serr := r.sleep(ctx, r.policy.Backoff); serr != nil {
			return fmt.Errorf("%s: retry aborted: %w", r.source, serr)
		}
	}
	return fmt.Errorf("%s: giving up after %d attempts: %w", r.source, r.policy.MaxAttempts, err)
}

// TotalRetries returns how many retries were scheduled over the Retrier's lifetime.
func (r *Retrier) TotalRetries() int {
	return int(r.totalRetries.Load())
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
