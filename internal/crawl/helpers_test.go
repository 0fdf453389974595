package crawl_test

import (
	"context"
	"sync"

	"github.com/jonesrussell/newsharvest/internal/crawl"
	"github.com/jonesrussell/newsharvest/internal/extract"
	"github.com/jonesrussell/newsharvest/internal/models"
	"github.com/jonesrussell/newsharvest/internal/sink"
)

// scriptedFetcher returns one preset outcome per page, in page order.
// Pages past the script return the final entry again.
type scriptedFetcher struct {
	mu       sync.Mutex
	outcomes map[int]crawl.PageOutcome
	calls    []int
}

func newScriptedFetcher(outcomes map[int]crawl.PageOutcome) *scriptedFetcher {
	return &scriptedFetcher{outcomes: outcomes}
}

func (f *scriptedFetcher) FetchPage(_ context.Context, page int) crawl.PageOutcome {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, page)
	if outcome, ok := f.outcomes[page]; ok {
		return outcome
	}
	return crawl.TerminalOutcome()
}

func (f *scriptedFetcher) pagesFetched() []int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]int(nil), f.calls...)
}

// memorySink records every publish and snapshot it receives.
type memorySink struct {
	mu         sync.Mutex
	batches    []sink.Batch
	snapshots  map[string][]models.NewsRecord
	publishErr error
}

func newMemorySink() *memorySink {
	return &memorySink{snapshots: make(map[string][]models.NewsRecord)}
}

func (s *memorySink) Publish(_ context.Context, _ string, batch sink.Batch) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.publishErr != nil {
		return s.publishErr
	}
	s.batches = append(s.batches, batch)
	return nil
}

func (s *memorySink) Snapshot(_ context.Context, source string, records []models.NewsRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshots[source] = append([]models.NewsRecord(nil), records...)
	return nil
}

func (s *memorySink) published() []sink.Batch {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]sink.Batch(nil), s.batches...)
}

func (s *memorySink) snapshot(source string) []models.NewsRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshots[source]
}

// stubEngine serves canned render and extraction payloads keyed by URL.
type stubEngine struct {
	html      map[string]string
	payloads  map[string]string
	renderErr error
}

func (e *stubEngine) Render(_ context.Context, url string) (string, error) {
	if e.renderErr != nil {
		return "", e.renderErr
	}
	return e.html[url], nil
}

func (e *stubEngine) Extract(_ context.Context, req extract.Request) (extract.Result, error) {
	payload, ok := e.payloads[req.URL]
	if !ok {
		return extract.Result{}, nil
	}
	return extract.Result{Success: true, Content: payload}, nil
}

// rawRecord builds a complete raw record with a distinguishing title.
func rawRecord(title string) models.RawRecord {
	return models.RawRecord{
		Title:       title,
		Description: "description of " + title,
		URL:         "https://example.com/" + title,
		PublishTime: "2026-08-30 10:00:00",
		Provider:    "example",
	}
}
