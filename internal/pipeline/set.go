package pipeline

import pipelineerr "github.com/forgepages/pipeline/pkg/errors"

// Set is an ordered collection of pipelines keyed by case-insensitive name.
// Mutating it invalidates any cached phase graph built from it — callers
// that own a graph built from a Set must rebuild after any Add/Remove call
// that changed the set, which Revision reports by incrementing.
type Set struct {
	order []string // normalized names, insertion order
	byKey map[string]*Pipeline
	names map[string]string // normalized -> original-cased name
	rev   int
}

// NewSet constructs an empty pipeline set.
func NewSet() *Set {
	return &Set{byKey: make(map[string]*Pipeline), names: make(map[string]string)}
}

// Add registers a pipeline, rejecting duplicate names (case-insensitive).
func (s *Set) Add(p *Pipeline) error {
	if p == nil || p.Name == "" {
		return pipelineerr.ConfigError("pipeline must have a non-empty name", nil)
	}
	key := NormalizeName(p.Name)
	if _, exists := s.byKey[key]; exists {
		return pipelineerr.ConfigError("duplicate pipeline name", map[string]interface{}{"name": p.Name})
	}
	s.byKey[key] = p
	s.names[key] = p.Name
	s.order = append(s.order, key)
	s.rev++
	return nil
}

// Remove deletes a pipeline by name, invalidating any cached graph.
func (s *Set) Remove(name string) {
	key := NormalizeName(name)
	if _, exists := s.byKey[key]; !exists {
		return
	}
	delete(s.byKey, key)
	delete(s.names, key)
	for i, k := range s.order {
		if k == key {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	s.rev++
}

// Get looks up a pipeline by case-insensitive name.
func (s *Set) Get(name string) (*Pipeline, bool) {
	p, ok := s.byKey[NormalizeName(name)]
	return p, ok
}

// Ordered returns the pipelines in insertion order — the builder's
// tie-break order for deterministic phase graph construction.
func (s *Set) Ordered() []*Pipeline {
	out := make([]*Pipeline, 0, len(s.order))
	for _, key := range s.order {
		out = append(out, s.byKey[key])
	}
	return out
}

// Len returns the number of pipelines in the set.
func (s *Set) Len() int {
	return len(s.order)
}

// Revision returns a counter incremented on every mutation, used by the
// engine to decide whether a cached phase graph must be rebuilt.
func (s *Set) Revision() int {
	return s.rev
}
