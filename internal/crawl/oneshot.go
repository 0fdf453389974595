package crawl

import (
	"context"

	"github.com/jonesrussell/newsharvest/internal/logger"
	"github.com/jonesrussell/newsharvest/internal/metrics"
	"github.com/jonesrussell/newsharvest/internal/models"
	"github.com/jonesrussell/newsharvest/internal/sink"
)

// OneShotFetcher is the boundary to a single-call API source.
type OneShotFetcher interface {
	Fetch(ctx context.Context) ([]models.RawRecord, error)
}

// OneShotConfig wires one one-shot source's run.
type OneShotConfig struct {
	Source string
	Topic  string

	Fetcher   OneShotFetcher
	Validator *Validator
	Sink      sink.Sink

	Logger  logger.Interface
	Metrics *metrics.Metrics
}

// OneShotRunner fetches a one-shot API source once, screens the mapped
// records through the same validator and a fresh session deduplicator,
// and delivers them through the sink.
type OneShotRunner struct {
	cfg OneShotConfig
	log logger.Interface
}

// NewOneShotRunner creates a runner for one one-shot source.
func NewOneShotRunner(cfg OneShotConfig) *OneShotRunner {
	log := cfg.Logger
	if log == nil {
		log = logger.NewNoOp()
	}
	return &OneShotRunner{cfg: cfg, log: log.WithSource(cfg.Source)}
}

// Run executes the single fetch-and-transform.
func (r *OneShotRunner) Run(ctx context.Context) RunResult {
	items, err := r.cfg.Fetcher.Fetch(ctx)
	if err != nil {
		r.cfg.Metrics.RecordSourceRun(string(ReasonFatal))
		r.log.Error("One-shot fetch failed", "error", err)
		return RunResult{Source: r.cfg.Source, Reason: ReasonFatal, Err: err}
	}

	deduper := NewDeduper()
	accepted := make([]models.NewsRecord, 0, len(items))
	for i := range items {
		record, rejection := r.cfg.Validator.Validate(items[i])
		if rejection != nil {
			continue
		}
		if !deduper.Accept(record.Title) {
			r.cfg.Metrics.RecordRejected(r.cfg.Source, ReasonDuplicate)
			continue
		}
		accepted = append(accepted, record)
	}
	r.cfg.Metrics.RecordAccepted(r.cfg.Source, len(accepted))

	if len(accepted) > 0 {
		r.publish(ctx, accepted)
		r.snapshot(ctx, accepted)
	}

	r.cfg.Metrics.RecordSourceRun(string(ReasonCompleted))
	r.log.Info("One-shot source finished", "records", len(accepted))
	return RunResult{Source: r.cfg.Source, Records: len(accepted), Reason: ReasonCompleted}
}

// publish forwards the mapped batch to the event stream; failures are
// logged, not fatal.
func (r *OneShotRunner) publish(ctx context.Context, records []models.NewsRecord) {
	err := r.cfg.Sink.Publish(ctx, r.cfg.Topic, sink.Batch{
		Source:  r.cfg.Source,
		Page:    1,
		Records: records,
	})
	if err != nil {
		r.cfg.Metrics.RecordPublishFailure(r.cfg.Source)
		r.log.Error("Failed to publish batch", "error", err)
		return
	}
	r.cfg.Metrics.RecordBatchPublished(r.cfg.Source)
	r.log.Info("Published batch", "records", len(records), "topic", r.cfg.Topic)
}

// snapshot persists the run's records; failures are logged, not fatal.
func (r *OneShotRunner) snapshot(ctx context.Context, records []models.NewsRecord) {
	if err := r.cfg.Sink.Snapshot(ctx, r.cfg.Source, records); err != nil {
		r.log.Error("Failed to write snapshot", "error", err)
	}
}
