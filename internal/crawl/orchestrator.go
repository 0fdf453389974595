package crawl

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jonesrussell/newsharvest/internal/logger"
	"github.com/jonesrussell/newsharvest/internal/metrics"
	"github.com/jonesrussell/newsharvest/internal/sources"
)

// SourceRunner is one source's unit of work, run to a terminal state.
type SourceRunner interface {
	Run(ctx context.Context) RunResult
}

// RunnerFactory builds the runner for a source. A factory error (a
// missing credential, typically) is fatal to that source only.
type RunnerFactory func(src sources.Config) (SourceRunner, error)

// Summary aggregates one full orchestrator invocation.
type Summary struct {
	// Results is keyed by source name.
	Results map[string]RunResult
	// Total is the record count across surviving sources.
	Total int
	// Duration is the wall time of the whole run.
	Duration time.Duration
}

// Failures returns the results of sources that ended fatally.
func (s *Summary) Failures() []RunResult {
	var failed []RunResult
	for _, r := range s.Results {
		if r.Err != nil {
			failed = append(failed, r)
		}
	}
	return failed
}

// Orchestrator launches one unit of work per configured source, all
// together, and blocks until every one reaches a terminal state. No
// partial results are exposed before the barrier.
type Orchestrator struct {
	sources []sources.Config
	factory RunnerFactory
	logger  logger.Interface
	metrics *metrics.Metrics
}

// NewOrchestrator creates an orchestrator over the configured sources.
func NewOrchestrator(srcs []sources.Config, factory RunnerFactory, log logger.Interface, m *metrics.Metrics) *Orchestrator {
	if log == nil {
		log = logger.NewNoOp()
	}
	return &Orchestrator{
		sources: srcs,
		factory: factory,
		logger:  log.WithComponent("orchestrator"),
		metrics: m,
	}
}

// Run fans out every source concurrently and joins on a single
// barrier. Per-source failures — factory errors and recovered panics —
// are captured in that source's RunResult and never propagate to
// siblings.
func (o *Orchestrator) Run(ctx context.Context) Summary {
	started := time.Now()
	o.logger.Info("Starting concurrent crawl of all sources", "sources", len(o.sources))

	results := make(chan RunResult, len(o.sources))
	var wg sync.WaitGroup

	for _, src := range o.sources {
		wg.Add(1)
		go func(src sources.Config) {
			defer wg.Done()
			results <- o.runOne(ctx, src)
		}(src)
	}

	wg.Wait()
	close(results)

	summary := Summary{Results: make(map[string]RunResult, len(o.sources))}
	for result := range results {
		summary.Results[result.Source] = result
		if result.Err == nil {
			summary.Total += result.Records
		}
	}
	summary.Duration = time.Since(started)

	o.logger.Info("Crawl run finished",
		"total_records", summary.Total,
		"failed_sources", len(summary.Failures()),
		"duration", summary.Duration)

	return summary
}

// runOne executes a single source's unit of work with panic isolation.
func (o *Orchestrator) runOne(ctx context.Context, src sources.Config) (result RunResult) {
	defer func() {
		if r := recover(); r != nil {
			o.logger.Error("Source panicked", "source", src.Name, "panic", r)
			o.metrics.RecordSourceRun(string(ReasonFatal))
			result = RunResult{
				Source: src.Name,
				Reason: ReasonFatal,
				Err:    fmt.Errorf("%w: %v", ErrSourcePanic, r),
			}
		}
	}()

	runner, err := o.factory(src)
	if err != nil {
		o.logger.Error("Skipping source", "source", src.Name, "error", err)
		o.metrics.RecordSourceRun(string(ReasonFatal))
		return RunResult{Source: src.Name, Reason: ReasonFatal, Err: err}
	}

	return runner.Run(ctx)
}
