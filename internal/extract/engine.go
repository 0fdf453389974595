// Package extract defines the boundary to the external structured-
// extraction engine and provides the default language-model-backed
// implementation.
package extract

import (
	"context"

	"github.com/jonesrussell/newsharvest/internal/sources"
)

// Request describes one extraction call for one page.
type Request struct {
	// URL is the fully resolved page address.
	URL string
	// Selector is the CSS content-selection rule applied before
	// extraction.
	Selector string
	// Schema names the record shape the engine must produce.
	Schema sources.Schema
}

// Result describes the outcome of one extraction call. Content is the
// raw extracted payload, expected to parse as structured data; the
// caller owns that parse.
type Result struct {
	Success      bool
	Content      string
	ErrorMessage string
}

// Engine is the external extraction collaborator. Render fetches a
// page's content without extraction, used for the cheap terminal-marker
// probe; Extract runs the full structured extraction.
type Engine interface {
	Render(ctx context.Context, url string) (string, error)
	Extract(ctx context.Context, req Request) (Result, error)
}
