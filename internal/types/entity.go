package types

import (
	"fmt"
	"strings"
)

// EntityRecord is one extraction record:
// ("entity"|||<name>|||<type>|||<description>)
type EntityRecord struct {
	Marker      string `json:"marker"`
	Name        string `json:"name"`
	TypeLabel   string `json:"type_label"`
	Description string `json:"description"`
}

// Label is the classification assigned to an entity.
type Label string

const (
	// LabelTerm marks a concrete, specific value, expression or unit.
	LabelTerm Label = "term"
	// LabelType marks a general category that groups terms.
	LabelType Label = "type"
)

// ParseLabel validates a classification label.
// When caseSensitive is false the label is lower-cased before matching.
func ParseLabel(s string, caseSensitive bool) (Label, error) {
	if !caseSensitive {
		s = strings.ToLower(s)
	}
	switch Label(s) {
	case LabelTerm:
		return LabelTerm, nil
	case LabelType:
		return LabelType, nil
	default:
		return "", fmt.Errorf("invalid classification label %q", s)
	}
}

// Classification is the JSON shape returned by the plain classification prompt.
type Classification struct {
	Entity         string `json:"entity"`
	Classification string `json:"classification"`
}

// ParserKind selects the classification response parser.
// It is fixed by the prompt variant that produced the completion.
type ParserKind int

const (
	// ParserJSON parses a JSON array of {entity, classification} objects.
	ParserJSON ParserKind = iota
	// ParserDelimited parses "<entity>|||<classification>" lines.
	ParserDelimited
)

func (k ParserKind) String() string {
	switch k {
	case ParserJSON:
		return "json"
	case ParserDelimited:
		return "delimited"
	default:
		return fmt.Sprintf("ParserKind(%d)", int(k))
	}
}

// ParserFor returns the classification parser matching a prompt variant.
func ParserFor(v Variant) ParserKind {
	if v == VariantExamples {
		return ParserDelimited
	}
	return ParserJSON
}
