package crawl

import (
	"context"
	"fmt"
	"time"

	"github.com/jonesrussell/newsharvest/internal/logger"
	"github.com/jonesrussell/newsharvest/internal/metrics"
)

// Retrier wraps a page fetch with a bounded-attempt loop and a fixed
// pause between attempts. It short-circuits on the first non-transient
// outcome: a terminal marker is a confident stop signal, never a
// failure to retry.
type Retrier struct {
	maxAttempts int
	delay       time.Duration
	logger      logger.Interface
	metrics     *metrics.Metrics
	source      string
}

// NewRetrier creates a retry controller for one source.
func NewRetrier(source string, maxAttempts int, delay time.Duration, log logger.Interface, m *metrics.Metrics) *Retrier {
	if log == nil {
		log = logger.NewNoOp()
	}
	return &Retrier{
		maxAttempts: maxAttempts,
		delay:       delay,
		logger:      log.WithSource(source),
		metrics:     m,
		source:      source,
	}
}

// Run attempts the fetch up to the configured budget. It returns the
// first Items or Terminal outcome, or the last transient outcome
// wrapped in ErrRetriesExhausted once the budget is spent.
func (r *Retrier) Run(ctx context.Context, page int, fetch func(context.Context) PageOutcome) (PageOutcome, error) {
	var last PageOutcome

	for attempt := 1; attempt <= r.maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return last, err
		}

		r.metrics.RecordPageFetched(r.source)
		last = fetch(ctx)
		if last.Kind != OutcomeTransient {
			return last, nil
		}

		if attempt < r.maxAttempts {
			r.logger.Warn("Retrying page fetch",
				"page", page,
				"attempt", attempt,
				"max_attempts", r.maxAttempts,
				"reason", last.Reason)
			r.metrics.RecordFetchRetry(r.source)

			select {
			case <-ctx.Done():
				return last, ctx.Err()
			case <-time.After(r.delay):
			}
		}
	}

	return last, fmt.Errorf("%w: page %d after %d attempts: %s",
		ErrRetriesExhausted, page, r.maxAttempts, last.Reason)
}
