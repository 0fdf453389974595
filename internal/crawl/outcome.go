// Package crawl implements the multi-source crawl orchestration core:
// the per-source pagination engine, the bounded retry policy, record
// validation and session dedup, and the concurrent fan-out across
// sources.
package crawl

import "github.com/jonesrussell/newsharvest/internal/models"

// OutcomeKind discriminates a page-fetch result.
type OutcomeKind int

const (
	// OutcomeItems carries zero or more raw records for the page.
	OutcomeItems OutcomeKind = iota

	// OutcomeTerminal is the confident no-more-results stop signal.
	OutcomeTerminal

	// OutcomeTransient covers fetch failures, extraction failures, and
	// empty pages. A genuinely-empty page is indistinguishable from a
	// transient glitch at this layer; only the terminal-marker probe
	// yields a confident stop.
	OutcomeTransient
)

// String returns a readable name for the outcome kind.
func (k OutcomeKind) String() string {
	switch k {
	case OutcomeItems:
		return "items"
	case OutcomeTerminal:
		return "terminal"
	case OutcomeTransient:
		return "transient"
	default:
		return "unknown"
	}
}

// PageOutcome describes one page-fetch attempt. It is consumed
// immediately by the pagination engine and never persisted.
type PageOutcome struct {
	Kind  OutcomeKind
	Items []models.RawRecord
	// Reason carries the transient-error context.
	Reason string
}

// ItemsOutcome builds an OutcomeItems result.
func ItemsOutcome(items []models.RawRecord) PageOutcome {
	return PageOutcome{Kind: OutcomeItems, Items: items}
}

// TerminalOutcome builds an OutcomeTerminal result.
func TerminalOutcome() PageOutcome {
	return PageOutcome{Kind: OutcomeTerminal}
}

// TransientOutcome builds an OutcomeTransient result with context.
func TransientOutcome(reason string) PageOutcome {
	return PageOutcome{Kind: OutcomeTransient, Reason: reason}
}
