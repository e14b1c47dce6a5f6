// Package aggregate folds parsed entities into deduplicated term and type sets.
package aggregate

import (
	"sort"
	"strings"

	"github.com/jackzampolin/text2onto/internal/records"
	"github.com/jackzampolin/text2onto/internal/types"
)

// Sets holds the deduplicated, lower-cased terms and types of one subset.
// The zero value is not usable; call New.
type Sets struct {
	terms map[string]struct{}
	types map[string]struct{}
}

// New returns empty sets.
func New() *Sets {
	return &Sets{
		terms: make(map[string]struct{}),
		types: make(map[string]struct{}),
	}
}

func normalize(entity string) string {
	return strings.ToLower(strings.TrimSpace(entity))
}

// AddTerm inserts a lower-cased entity into the term set.
func (s *Sets) AddTerm(entity string) {
	if e := normalize(entity); e != "" {
		s.terms[e] = struct{}{}
	}
}

// AddType inserts a lower-cased entity into the type set.
func (s *Sets) AddType(entity string) {
	if e := normalize(entity); e != "" {
		s.types[e] = struct{}{}
	}
}

// Add routes an entity to the set named by its label.
// Labels other than term and type are ignored.
func (s *Sets) Add(entity string, label types.Label) {
	switch label {
	case types.LabelTerm:
		s.AddTerm(entity)
	case types.LabelType:
		s.AddType(entity)
	}
}

// AddEntity records an extracted entity that has no classification yet.
// Extraction writes the same list to both output files, so the entity is
// added to both sets.
func (s *Sets) AddEntity(entity string) {
	s.AddTerm(entity)
	s.AddType(entity)
}

// AddLabeled adds every parsed pair.
func (s *Sets) AddLabeled(pairs []records.Labeled) {
	for _, p := range pairs {
		s.Add(p.Entity, p.Label)
	}
}

// Terms returns the term set sorted.
func (s *Sets) Terms() []string { return sorted(s.terms) }

// Types returns the type set sorted.
func (s *Sets) Types() []string { return sorted(s.types) }

// Entities returns the union of both sets sorted. For extraction output the
// two sets are identical and this is the extracted entity list.
func (s *Sets) Entities() []string {
	union := make(map[string]struct{}, len(s.terms)+len(s.types))
	for e := range s.terms {
		union[e] = struct{}{}
	}
	for e := range s.types {
		union[e] = struct{}{}
	}
	return sorted(union)
}

func sorted(m map[string]struct{}) []string {
	out := make([]string, 0, len(m))
	for e := range m {
		out = append(out, e)
	}
	sort.Strings(out)
	return out
}
