package crawl

import (
	"context"
	"time"

	"github.com/jonesrussell/newsharvest/internal/logger"
	"github.com/jonesrussell/newsharvest/internal/metrics"
	"github.com/jonesrussell/newsharvest/internal/models"
	"github.com/jonesrussell/newsharvest/internal/sink"
)

// TerminalReason classifies how a source's run ended.
type TerminalReason string

const (
	// ReasonExhausted: terminal marker seen, retries spent, or a page
	// produced no net new valid records.
	ReasonExhausted TerminalReason = "exhausted"

	// ReasonMaxPages: the page cursor reached the configured safety
	// bound.
	ReasonMaxPages TerminalReason = "max-pages-reached"

	// ReasonFatal: the source failed before or during its run.
	ReasonFatal TerminalReason = "fatal-error"

	// ReasonCompleted: a one-shot source finished its single fetch.
	ReasonCompleted TerminalReason = "completed"
)

// RunResult is the per-source outcome of one orchestrator invocation.
type RunResult struct {
	Source  string
	Records int
	Reason  TerminalReason
	Err     error
}

// sessionState is the mutable per-source, per-run crawl state. It is
// exclusively owned by one Session and discarded when the run ends.
type sessionState struct {
	pageCursor int
	deduper    *Deduper
	collected  []models.NewsRecord
}

// SessionConfig wires one paginated source's session.
type SessionConfig struct {
	Source    string
	Topic     string
	MaxPages  int
	PageDelay time.Duration

	Fetcher   pageFetcher
	Retrier   *Retrier
	Validator *Validator
	Sink      sink.Sink

	Logger  logger.Interface
	Metrics *metrics.Metrics
}

// Session drives one paginated source: it advances the page cursor,
// consults the retry controller, validator, and deduplicator, publishes
// each page's batch, and decides the stop condition.
type Session struct {
	cfg   SessionConfig
	log   logger.Interface
	state sessionState
}

// NewSession creates a session starting at page 1.
func NewSession(cfg SessionConfig) *Session {
	log := cfg.Logger
	if log == nil {
		log = logger.NewNoOp()
	}
	return &Session{
		cfg: cfg,
		log: log.WithSource(cfg.Source),
		state: sessionState{
			pageCursor: 1,
			deduper:    NewDeduper(),
		},
	}
}

// Run executes the pagination loop to a terminal state. Pages are
// strictly sequential; the cursor only ever advances.
func (s *Session) Run(ctx context.Context) RunResult {
	reason := s.paginate(ctx)

	s.flush(ctx)
	s.cfg.Metrics.RecordSourceRun(string(reason))

	result := RunResult{
		Source:  s.cfg.Source,
		Records: len(s.state.collected),
		Reason:  reason,
	}
	s.log.Info("Session finished",
		"reason", string(reason),
		"records", result.Records,
		"pages", s.state.pageCursor)

	// Session state is not reused after a run.
	s.state = sessionState{}
	return result
}

// paginate runs the fetch/validate/publish loop and returns the
// terminal reason.
func (s *Session) paginate(ctx context.Context) TerminalReason {
	for {
		page := s.state.pageCursor
		s.log.Info("Loading page", "page", page)

		outcome, err := s.cfg.Retrier.Run(ctx, page, func(ctx context.Context) PageOutcome {
			return s.cfg.Fetcher.FetchPage(ctx, page)
		})
		if err != nil {
			// Retries spent: upstream being down is indistinguishable
			// from upstream having no more content.
			s.log.Warn("No news from page after retries, assuming exhausted",
				"page", page, "error", err)
			return ReasonExhausted
		}
		if outcome.Kind == OutcomeTerminal {
			s.log.Info("No-results marker found, source exhausted", "page", page)
			return ReasonExhausted
		}

		batch := s.screen(outcome.Items)
		if len(batch) == 0 {
			s.log.Warn("No valid records on page after filtering", "page", page)
			return ReasonExhausted
		}

		s.publish(ctx, page, batch)
		s.state.collected = append(s.state.collected, batch...)

		s.state.pageCursor++
		if s.state.pageCursor > s.cfg.MaxPages {
			s.log.Info("Page cap reached", "max_pages", s.cfg.MaxPages)
			return ReasonMaxPages
		}

		if s.cfg.PageDelay > 0 {
			select {
			case <-ctx.Done():
				return ReasonExhausted
			case <-time.After(s.cfg.PageDelay):
			}
		}
	}
}

// screen runs the validator and deduplicator over a page's raw records
// in arrival order and returns the accepted subset.
func (s *Session) screen(items []models.RawRecord) []models.NewsRecord {
	accepted := make([]models.NewsRecord, 0, len(items))
	for i := range items {
		record, rejection := s.cfg.Validator.Validate(items[i])
		if rejection != nil {
			continue
		}
		if !s.state.deduper.Accept(record.Title) {
			s.cfg.Metrics.RecordRejected(s.cfg.Source, ReasonDuplicate)
			s.log.Debug("Duplicate title, dropping",
				"title", truncate(record.Title, titleLogLimit))
			continue
		}
		accepted = append(accepted, record)
	}
	s.cfg.Metrics.RecordAccepted(s.cfg.Source, len(accepted))
	return accepted
}

// publish forwards a page's valid batch to the event stream. Publish
// failures are logged and counted; they never abort the loop.
func (s *Session) publish(ctx context.Context, page int, batch []models.NewsRecord) {
	err := s.cfg.Sink.Publish(ctx, s.cfg.Topic, sink.Batch{
		Source:  s.cfg.Source,
		Page:    page,
		Records: batch,
	})
	if err != nil {
		s.cfg.Metrics.RecordPublishFailure(s.cfg.Source)
		s.log.Error("Failed to publish batch", "page", page, "error", err)
		return
	}
	s.cfg.Metrics.RecordBatchPublished(s.cfg.Source)
	s.log.Info("Published batch", "page", page, "records", len(batch), "topic", s.cfg.Topic)
}

// flush writes the end-of-session snapshot if the session collected
// anything. Snapshot failures are logged; the stream publish path is
// independent.
func (s *Session) flush(ctx context.Context) {
	if len(s.state.collected) == 0 {
		return
	}
	if err := s.cfg.Sink.Snapshot(ctx, s.cfg.Source, s.state.collected); err != nil {
		s.log.Error("Failed to write snapshot", "error", err)
		return
	}
	s.log.Info("Saved session snapshot", "records", len(s.state.collected))
}
