package crawl

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jonesrussell/newsharvest/internal/extract"
	"github.com/jonesrussell/newsharvest/internal/logger"
	"github.com/jonesrussell/newsharvest/internal/models"
	"github.com/jonesrussell/newsharvest/internal/sources"
)

// NoResultsMarker is the content signal indicating a paginated source
// has no further pages.
const NoResultsMarker = "No Results Found"

// pageFetcher is the seam the pagination engine fetches pages through.
type pageFetcher interface {
	FetchPage(ctx context.Context, page int) PageOutcome
}

// PageFetcher adapts one source's extraction-engine calls into
// tri-state PageOutcomes. It holds no session state.
type PageFetcher struct {
	engine   extract.Engine
	baseURL  string
	selector string
	schema   sources.Schema
	logger   logger.Interface
}

// Ensure PageFetcher implements pageFetcher.
var _ pageFetcher = (*PageFetcher)(nil)

// NewPageFetcher creates a fetch adapter for one paginated source.
func NewPageFetcher(engine extract.Engine, src sources.Config, log logger.Interface) *PageFetcher {
	if log == nil {
		log = logger.NewNoOp()
	}
	return &PageFetcher{
		engine:   engine,
		baseURL:  strings.TrimRight(src.BaseURL, "/"),
		selector: src.Selector,
		schema:   src.Schema,
		logger:   log.WithSource(src.Name),
	}
}

// PageURL returns the address of a page.
func (f *PageFetcher) PageURL(page int) string {
	return fmt.Sprintf("%s/page-%d/", f.baseURL, page)
}

// FetchPage probes the page for the terminal marker, then runs the
// extraction call and parses its payload. All failure modes surface as
// OutcomeTransient; only the probe yields OutcomeTerminal.
func (f *PageFetcher) FetchPage(ctx context.Context, page int) PageOutcome {
	url := f.PageURL(page)
	log := f.logger.WithPage(page)

	// Cheap probe before the expensive extraction call.
	if f.probeNoResults(ctx, url, log) {
		return TerminalOutcome()
	}

	result, err := f.engine.Extract(ctx, extract.Request{
		URL:      url,
		Selector: f.selector,
		Schema:   f.schema,
	})
	if err != nil {
		log.Warn("Extraction call failed", "error", err)
		return TransientOutcome(err.Error())
	}
	if !result.Success || result.Content == "" {
		log.Warn("Extraction returned no content", "error", result.ErrorMessage)
		return TransientOutcome(fmt.Sprintf("no extracted content: %s", result.ErrorMessage))
	}

	return f.parsePayload(result.Content, log)
}

// probeNoResults fetches the rendered page and checks for the known
// no-results marker. Probe failures are not terminal; the extraction
// path decides.
func (f *PageFetcher) probeNoResults(ctx context.Context, url string, log logger.Interface) bool {
	html, err := f.engine.Render(ctx, url)
	if err != nil {
		log.Warn("Terminal-marker probe failed", "error", err)
		return false
	}
	return strings.Contains(html, NoResultsMarker)
}

// parsePayload interprets the extraction payload. A JSON array maps to
// a batch; a single object is a one-element batch, unless it is the
// engine's own error envelope; anything else is transient.
func (f *PageFetcher) parsePayload(content string, log logger.Interface) PageOutcome {
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return TransientOutcome("empty extraction payload")
	}

	switch trimmed[0] {
	case '[':
		var items []models.RawRecord
		if err := json.Unmarshal([]byte(trimmed), &items); err != nil {
			log.Warn("Failed to parse extraction payload", "error", err)
			return TransientOutcome(fmt.Sprintf("payload parse error: %v", err))
		}
		if len(items) == 0 {
			return TransientOutcome("no items on page")
		}
		return ItemsOutcome(items)

	case '{':
		// Engine-level error envelope: {"error": true, "content": ...}
		var envelope struct {
			Error   bool   `json:"error"`
			Content string `json:"content"`
		}
		if err := json.Unmarshal([]byte(trimmed), &envelope); err == nil && envelope.Error {
			log.Warn("Extraction-level error", "detail", envelope.Content)
			return TransientOutcome(fmt.Sprintf("extraction error: %s", envelope.Content))
		}

		var item models.RawRecord
		if err := json.Unmarshal([]byte(trimmed), &item); err != nil {
			log.Warn("Failed to parse extraction payload", "error", err)
			return TransientOutcome(fmt.Sprintf("payload parse error: %v", err))
		}
		return ItemsOutcome([]models.RawRecord{item})

	default:
		return TransientOutcome("unexpected payload format")
	}
}
