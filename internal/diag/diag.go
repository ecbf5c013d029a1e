// Package diag collects non-fatal diagnostic events. The reporting pipeline
// prefers warn-and-continue over aborting: a warning raised while expanding
// one category must not block its siblings, so warnings accumulate in a
// Diagnostics value that travels with the result instead of the error path.
package diag

import (
	"fmt"
	"log"
)

// Kind classifies a diagnostic event
type Kind string

const (
	// KindNotFound: a requested variable is absent from the store under
	// all fallback names.
	KindNotFound Kind = "not-found"
	// KindConsistency: a subcategory sum diverges from the reported total
	// beyond the category tolerance.
	KindConsistency Kind = "data-consistency"
	// KindUnsupported: a parameter combination the pipeline cannot honor,
	// e.g. subcategories requested at grid resolution.
	KindUnsupported Kind = "unsupported-combination"
)

// Event is one non-fatal diagnostic
type Event struct {
	Kind    Kind   `json:"kind"`
	Source  string `json:"source"`
	Message string `json:"message"`
}

// Diagnostics is an ordered list of events
type Diagnostics []Event

// Warnf appends an event and logs it
func (d *Diagnostics) Warnf(kind Kind, source, format string, args ...interface{}) {
	e := Event{Kind: kind, Source: source, Message: fmt.Sprintf(format, args...)}
	*d = append(*d, e)
	log.Printf("[%s] warning (%s): %s", source, kind, e.Message)
}

// Extend appends all events from another Diagnostics
func (d *Diagnostics) Extend(other Diagnostics) {
	*d = append(*d, other...)
}

// Has reports whether any event of the given kind was recorded
func (d Diagnostics) Has(kind Kind) bool {
	for _, e := range d {
		if e.Kind == kind {
			return true
		}
	}
	return false
}

// Count returns the number of events of the given kind
func (d Diagnostics) Count(kind Kind) int {
	n := 0
	for _, e := range d {
		if e.Kind == kind {
			n++
		}
	}
	return n
}
