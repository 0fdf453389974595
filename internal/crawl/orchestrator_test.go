package crawl_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonesrussell/newsharvest/internal/crawl"
	"github.com/jonesrussell/newsharvest/internal/sources"
)

// stubRunner returns a fixed result, optionally panicking instead.
type stubRunner struct {
	result crawl.RunResult
	panics bool
}

func (r *stubRunner) Run(context.Context) crawl.RunResult {
	if r.panics {
		panic("runner blew up")
	}
	return r.result
}

func namedSources(names ...string) []sources.Config {
	configs := make([]sources.Config, 0, len(names))
	for _, name := range names {
		configs = append(configs, sources.Config{Name: name, Kind: sources.KindPaginated})
	}
	return configs
}

func TestOrchestratorCollectsAllSources(t *testing.T) {
	t.Parallel()

	runners := map[string]*stubRunner{
		"alpha": {result: crawl.RunResult{Source: "alpha", Records: 3, Reason: crawl.ReasonExhausted}},
		"beta":  {result: crawl.RunResult{Source: "beta", Records: 5, Reason: crawl.ReasonMaxPages}},
	}
	factory := func(src sources.Config) (crawl.SourceRunner, error) {
		return runners[src.Name], nil
	}

	orch := crawl.NewOrchestrator(namedSources("alpha", "beta"), factory, nil, nil)
	summary := orch.Run(context.Background())

	require.Len(t, summary.Results, 2)
	assert.Equal(t, 8, summary.Total)
	assert.Empty(t, summary.Failures())
	assert.Equal(t, crawl.ReasonMaxPages, summary.Results["beta"].Reason)
}

func TestOrchestratorIsolatesPanics(t *testing.T) {
	t.Parallel()

	runners := map[string]*stubRunner{
		"stable":   {result: crawl.RunResult{Source: "stable", Records: 4, Reason: crawl.ReasonExhausted}},
		"unstable": {panics: true},
	}
	factory := func(src sources.Config) (crawl.SourceRunner, error) {
		return runners[src.Name], nil
	}

	orch := crawl.NewOrchestrator(namedSources("stable", "unstable"), factory, nil, nil)
	summary := orch.Run(context.Background())

	require.Len(t, summary.Results, 2)
	assert.Equal(t, 4, summary.Total, "panicking source must not affect siblings")

	failed := summary.Results["unstable"]
	assert.Equal(t, crawl.ReasonFatal, failed.Reason)
	require.Error(t, failed.Err)
	assert.ErrorIs(t, failed.Err, crawl.ErrSourcePanic)

	failures := summary.Failures()
	require.Len(t, failures, 1)
	assert.Equal(t, "unstable", failures[0].Source)
}

func TestOrchestratorSkipsSourcesTheFactoryRejects(t *testing.T) {
	t.Parallel()

	credErr := errors.New("EXTRACT_API_KEY is not set")
	factory := func(src sources.Config) (crawl.SourceRunner, error) {
		if src.Name == "broken" {
			return nil, credErr
		}
		return &stubRunner{
			result: crawl.RunResult{Source: src.Name, Records: 2, Reason: crawl.ReasonExhausted},
		}, nil
	}

	orch := crawl.NewOrchestrator(namedSources("ok", "broken"), factory, nil, nil)
	summary := orch.Run(context.Background())

	require.Len(t, summary.Results, 2)
	assert.Equal(t, 2, summary.Total)
	assert.ErrorIs(t, summary.Results["broken"].Err, credErr)
	assert.Equal(t, crawl.ReasonFatal, summary.Results["broken"].Reason)
}

func TestOrchestratorHandlesNoSources(t *testing.T) {
	t.Parallel()

	factory := func(sources.Config) (crawl.SourceRunner, error) {
		t.Fatal("factory must not run without sources")
		return nil, nil
	}

	orch := crawl.NewOrchestrator(nil, factory, nil, nil)
	summary := orch.Run(context.Background())

	assert.Empty(t, summary.Results)
	assert.Zero(t, summary.Total)
}
