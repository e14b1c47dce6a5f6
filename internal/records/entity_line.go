package records

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jackzampolin/text2onto/internal/types"
)

// Delimiter separates fields in both extraction and classification lines.
const Delimiter = "|||"

// ErrMalformedLine is returned when a line has too few fields.
var ErrMalformedLine = errors.New("malformed line")

// Field positions of an extraction line.
const (
	fieldMarker = iota
	fieldName
	fieldType
	fieldDescription
)

// LineFailure records a line that could not be parsed.
type LineFailure struct {
	Line string
	Err  error
}

func field(line string, idx int) (string, error) {
	parts := strings.Split(strings.TrimSpace(line), Delimiter)
	if len(parts) <= idx {
		return "", fmt.Errorf("%w: want field %d, got %d fields: %q", ErrMalformedLine, idx, len(parts), line)
	}
	return strings.TrimSpace(parts[idx]), nil
}

func lowerIf(s string, lower bool) string {
	if lower {
		return strings.ToLower(s)
	}
	return s
}

// EntityName returns the entity name (field 1) of an extraction line.
func EntityName(line string, lower bool) (string, error) {
	name, err := field(line, fieldName)
	if err != nil {
		return "", err
	}
	if name == "" {
		return "", fmt.Errorf("%w: empty entity name: %q", ErrMalformedLine, line)
	}
	return lowerIf(name, lower), nil
}

// TypeLabel returns the entity type label (field 2) of an extraction line.
func TypeLabel(line string, lower bool) (string, error) {
	label, err := field(line, fieldType)
	if err != nil {
		return "", err
	}
	return lowerIf(label, lower), nil
}

// Description returns the entity description (field 3) of an extraction line.
func Description(line string, lower bool) (string, error) {
	desc, err := field(line, fieldDescription)
	if err != nil {
		return "", err
	}
	return lowerIf(desc, lower), nil
}

// ParseEntityRecord parses all four positional fields of an extraction line.
// Extra fields are tolerated: they come from a delimiter inside a value and
// are not re-joined. The name is kept as written.
func ParseEntityRecord(line string) (types.EntityRecord, error) {
	desc, err := Description(line, false)
	if err != nil {
		return types.EntityRecord{}, err
	}
	name, err := EntityName(line, false)
	if err != nil {
		return types.EntityRecord{}, err
	}
	marker, _ := field(line, fieldMarker)
	label, _ := TypeLabel(line, false)
	return types.EntityRecord{
		Marker:      marker,
		Name:        name,
		TypeLabel:   label,
		Description: desc,
	}, nil
}

// Lines splits a completion into non-blank lines.
func Lines(completion string) []string {
	raw := strings.Split(completion, "\n")
	lines := make([]string, 0, len(raw))
	for _, l := range raw {
		l = strings.TrimRight(l, "\r")
		if strings.TrimSpace(l) == "" {
			continue
		}
		lines = append(lines, l)
	}
	return lines
}

// EntityNames returns the lower-cased entity name of every parsable line.
// Malformed lines are returned as failures and never stop the loop.
func EntityNames(completion string) ([]string, []LineFailure) {
	var names []string
	var failures []LineFailure
	for _, line := range Lines(completion) {
		name, err := EntityName(line, true)
		if err != nil {
			failures = append(failures, LineFailure{Line: line, Err: err})
			continue
		}
		names = append(names, name)
	}
	return names, failures
}
