package crawl

import "strings"

// Deduper tracks the titles accepted within one source's session.
// Comparison is byte-for-byte after trimming surrounding whitespace; no
// case-folding or fuzzy matching. The set lives and dies with the
// session — there is no cross-run persistence.
type Deduper struct {
	seen map[string]struct{}
}

// NewDeduper creates an empty session deduplicator.
func NewDeduper() *Deduper {
	return &Deduper{seen: make(map[string]struct{})}
}

// Accept records the title and returns true if it has not been seen in
// this session. A duplicate returns false and leaves the set unchanged.
func (d *Deduper) Accept(title string) bool {
	key := strings.TrimSpace(title)
	if _, dup := d.seen[key]; dup {
		return false
	}
	d.seen[key] = struct{}{}
	return true
}

// Len returns the number of distinct titles seen so far.
func (d *Deduper) Len() int {
	return len(d.seen)
}
