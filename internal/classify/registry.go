// Package classify turns free-text message tails into typed events through
// an ordered set of extractors.
package classify

import (
	"fmt"

	"github.com/cisec/logsift/internal/record"
)

// Registry is an ordered list of extractors. Evaluation order is part of the
// observable contract: the first extractor (in registration order) whose
// pattern matches wins, and no later extractor is consulted. The registry is
// built once and read-only during a run.
type Registry struct {
	extractors []Extractor
}

// NewRegistry creates a registry with the built-in extractors in priority
// order.
func NewRegistry() *Registry {
	r := &Registry{}
	r.Register(newACLExtractor())
	r.Register(newACLHardwareExtractor())
	r.Register(newLinkStateExtractor())
	r.Register(newLoginExtractor())
	r.Register(newLogoutExtractor())
	r.Register(newConfigExtractor())
	r.Register(newCommandExtractor())
	return r
}

// NewEmptyRegistry creates a registry with no extractors.
func NewEmptyRegistry() *Registry {
	return &Registry{}
}

// Register appends an extractor at the lowest priority position.
func (r *Registry) Register(e Extractor) {
	r.extractors = append(r.extractors, e)
}

// InsertBefore inserts an extractor immediately before the named anchor,
// giving it higher priority. Returns an error when the anchor is unknown.
func (r *Registry) InsertBefore(anchor string, e Extractor) error {
	for i, existing := range r.extractors {
		if existing.Name() == anchor {
			r.extractors = append(r.extractors[:i],
				append([]Extractor{e}, r.extractors[i:]...)...)
			return nil
		}
	}
	return fmt.Errorf("unknown extractor %q", anchor)
}

// Names returns the extractor names in evaluation order.
func (r *Registry) Names() []string {
	names := make([]string, len(r.extractors))
	for i, e := range r.extractors {
		names[i] = e.Name()
	}
	return names
}

// Classify runs the extractors in order against a message tail. It returns
// (nil, false) when no extractor matched; that is the expected common case,
// not an error.
func (r *Registry) Classify(message string) (record.Event, bool) {
	for _, e := range r.extractors {
		if ev, ok := e.Extract(message); ok {
			return ev, true
		}
	}
	return nil, false
}
