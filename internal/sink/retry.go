package sink

import (
	"context"
	"fmt"
	"time"

	apperrors "github.com/Adithya-Monish-Kumar-K/query-reformulator/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/query-reformulator/pkg/resilience"
)

// Retrying retries the writes and flushes of a mirror sink with
// exponential backoff, bounding each attempt by a timeout.
type Retrying struct {
	next    Sink
	cfg     resilience.RetryConfig
	timeout time.Duration
}

func WithRetry(next Sink, cfg resilience.RetryConfig, attemptTimeout time.Duration) *Retrying {
	return &Retrying{next: next, cfg: cfg, timeout: attemptTimeout}
}

func (r *Retrying) Name() string { return r.next.Name() }

func (r *Retrying) Write(ctx context.Context, e Entry) error {
	return r.unavailable(resilience.Retry(ctx, r.next.Name()+"-write", r.cfg, func() error {
		actx, cancel := r.attemptContext(ctx)
		defer cancel()
		return r.next.Write(actx, e)
	}))
}

func (r *Retrying) Flush(ctx context.Context) error {
	return r.unavailable(resilience.Retry(ctx, r.next.Name()+"-flush", r.cfg, func() error {
		actx, cancel := r.attemptContext(ctx)
		defer cancel()
		return r.next.Flush(actx)
	}))
}

func (r *Retrying) unavailable(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %s: %w", apperrors.ErrSinkUnavailable, r.next.Name(), err)
}

// attemptContext runs the attempt inline so a timed-out attempt never
// overlaps the next one.
func (r *Retrying) attemptContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if r.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, r.timeout)
}

func (r *Retrying) Close() error {
	return r.next.Close()
}
