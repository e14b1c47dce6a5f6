// Package types provides shared types used across multiple packages.
// This package has no dependencies on other text2onto packages to avoid import cycles.
package types

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownSubset is returned when a subset name is not recognized.
var ErrUnknownSubset = errors.New("unknown subset")

// ErrUnknownVariant is returned when a prompt variant is not recognized.
var ErrUnknownVariant = errors.New("unknown prompt variant")

// Subset identifies a document domain.
type Subset string

const (
	// SubsetEngineering is the engineering domain (units, quantities, measures).
	SubsetEngineering Subset = "engineering"
	// SubsetScholarly is the scholarly domain (linguistics vocabulary).
	SubsetScholarly Subset = "scholarly"
)

// AllSubsets returns every supported subset in processing order.
func AllSubsets() []Subset {
	return []Subset{SubsetEngineering, SubsetScholarly}
}

// ParseSubset converts a string to a Subset.
func ParseSubset(s string) (Subset, error) {
	switch Subset(strings.ToLower(strings.TrimSpace(s))) {
	case SubsetEngineering:
		return SubsetEngineering, nil
	case SubsetScholarly:
		return SubsetScholarly, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownSubset, s)
	}
}

// ParseSubsets converts a list of names, defaulting to AllSubsets when empty.
// Duplicates are collapsed, first occurrence wins.
func ParseSubsets(names []string) ([]Subset, error) {
	if len(names) == 0 {
		return AllSubsets(), nil
	}
	seen := make(map[Subset]bool, len(names))
	out := make([]Subset, 0, len(names))
	for _, name := range names {
		s, err := ParseSubset(name)
		if err != nil {
			return nil, err
		}
		if seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out, nil
}

// Variant selects the prompting strategy of a stage.
type Variant string

const (
	// VariantPlain uses fixed instructions with one in-line worked example.
	VariantPlain Variant = "1"
	// VariantExamples builds worked examples from curated training documents.
	VariantExamples Variant = "2"
)

// ParseVariant converts a positional CLI argument to a Variant.
func ParseVariant(s string) (Variant, error) {
	switch Variant(strings.TrimSpace(s)) {
	case VariantPlain:
		return VariantPlain, nil
	case VariantExamples:
		return VariantExamples, nil
	default:
		return "", fmt.Errorf("%w: %q (choose 1 or 2)", ErrUnknownVariant, s)
	}
}
