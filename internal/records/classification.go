package records

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/jackzampolin/text2onto/internal/types"
)

var (
	// ErrUnreadable is returned when no JSON could be recovered from a completion.
	ErrUnreadable = errors.New("unreadable completion")
	// ErrInvalidLabel is returned for a classification other than term or type.
	ErrInvalidLabel = errors.New("invalid classification label")
)

// embeddedArray finds the first JSON array of objects in free text.
// The match is non-greedy, so a second array later in the text is ignored.
var embeddedArray = regexp.MustCompile(`(?s)\[\s*\{.*?\}\s*\]`)

// JSONResult is the outcome of parsing one JSON-variant completion.
type JSONResult struct {
	Outcome Outcome
	// Records holds every decoded element, before label filtering.
	Records []types.Classification
	// Rejections holds elements that were not classification objects.
	Rejections []Rejection
	// Raw is the original completion; kept for the unreadable file.
	Raw string
}

// ParseJSONCompletion decodes a JSON-variant completion.
//
// The whole completion is tried first. Any valid JSON counts as parsed: an
// array yields its elements, anything else is a one-element list, and
// elements that are not objects are dropped.
// Failing that, the first embedded array is decoded and only its first element
// is kept. Otherwise the result is OutcomeUnreadable.
func ParseJSONCompletion(completion string) JSONResult {
	res := JSONResult{Raw: completion}

	if elems, ok := decodeWhole(completion); ok {
		res.Outcome = OutcomeParsed
		for _, el := range elems {
			rec, err := decodeElement(el)
			if err != nil {
				res.Rejections = append(res.Rejections, Rejection{
					Input:   string(el),
					Outcome: OutcomeMalformed,
					Policy:  PolicyDrop,
					Err:     err,
				})
				continue
			}
			res.Records = append(res.Records, rec)
		}
		return res
	}

	if match := embeddedArray.FindString(completion); match != "" {
		var elems []json.RawMessage
		if err := json.Unmarshal([]byte(match), &elems); err == nil && len(elems) > 0 {
			if rec, err := decodeElement(elems[0]); err == nil {
				res.Outcome = OutcomeRecovered
				res.Records = []types.Classification{rec}
				return res
			}
		}
	}

	res.Outcome = OutcomeUnreadable
	res.Rejections = []Rejection{{
		Input:   completion,
		Outcome: OutcomeUnreadable,
		Policy:  PolicyFile,
		Err:     ErrUnreadable,
	}}
	return res
}

func decodeWhole(completion string) ([]json.RawMessage, bool) {
	trimmed := bytes.TrimSpace([]byte(completion))
	if len(trimmed) == 0 || !json.Valid(trimmed) {
		return nil, false
	}
	switch trimmed[0] {
	case '[':
		var elems []json.RawMessage
		if err := json.Unmarshal(trimmed, &elems); err != nil {
			return nil, false
		}
		return elems, true
	default:
		// A bare object or scalar is valid JSON; decodeElement drops scalars.
		return []json.RawMessage{trimmed}, true
	}
}

func decodeElement(raw json.RawMessage) (types.Classification, error) {
	var rec types.Classification
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return rec, fmt.Errorf("%w: element is not an object: %s", ErrMalformedLine, trimmed)
	}
	if err := json.Unmarshal(trimmed, &rec); err != nil {
		return rec, fmt.Errorf("%w: %v", ErrMalformedLine, err)
	}
	return rec, nil
}

// FilterJSONLabels keeps records whose classification is exactly "term" or
// "type". Everything else is rejected with PolicyDrop.
func FilterJSONLabels(recs []types.Classification) ([]Labeled, []Rejection) {
	var kept []Labeled
	var rejected []Rejection
	for _, rec := range recs {
		label, err := types.ParseLabel(rec.Classification, true)
		if err != nil {
			rejected = append(rejected, Rejection{
				Input:   rec.Entity + Delimiter + rec.Classification,
				Outcome: OutcomeInvalidLabel,
				Policy:  PolicyDrop,
				Err:     fmt.Errorf("%w: %q", ErrInvalidLabel, rec.Classification),
			})
			continue
		}
		kept = append(kept, Labeled{Entity: rec.Entity, Label: label})
	}
	return kept, rejected
}

// DelimitedResult is the outcome of parsing one delimited-variant completion.
type DelimitedResult struct {
	Pairs      []Labeled
	Rejections []Rejection
}

// ParseDelimitedLine parses a single "<entity>|||<label>" line.
func ParseDelimitedLine(line string) (Labeled, Outcome, error) {
	parts := strings.Split(strings.TrimSpace(line), Delimiter)
	if len(parts) != 2 {
		return Labeled{}, OutcomeMalformed, fmt.Errorf("%w: want 2 fields, got %d: %q", ErrMalformedLine, len(parts), line)
	}
	entity := strings.TrimSpace(parts[0])
	if entity == "" {
		return Labeled{}, OutcomeMalformed, fmt.Errorf("%w: empty entity: %q", ErrMalformedLine, line)
	}
	label, err := types.ParseLabel(strings.TrimSpace(parts[1]), false)
	if err != nil {
		return Labeled{}, OutcomeInvalidLabel, fmt.Errorf("%w: %q", ErrInvalidLabel, line)
	}
	return Labeled{Entity: entity, Label: label}, OutcomeParsed, nil
}

// ParseDelimitedCompletion parses every non-blank line of a completion.
// Bad lines are rejected with PolicyReport and never stop the loop.
func ParseDelimitedCompletion(completion string) DelimitedResult {
	var res DelimitedResult
	for _, line := range Lines(completion) {
		pair, outcome, err := ParseDelimitedLine(line)
		if err != nil {
			res.Rejections = append(res.Rejections, Rejection{
				Input:   line,
				Outcome: outcome,
				Policy:  PolicyReport,
				Err:     err,
			})
			continue
		}
		res.Pairs = append(res.Pairs, pair)
	}
	return res
}

// ClassificationResult is a parsed classification completion of either kind.
type ClassificationResult struct {
	Kind    types.ParserKind
	Outcome Outcome
	// Records is only set for ParserJSON, before label filtering.
	Records    []types.Classification
	Pairs      []Labeled
	Rejections []Rejection
}

// ParseClassification parses a completion with the parser selected by kind.
// The kind comes from the prompt variant and is never guessed from the text.
func ParseClassification(kind types.ParserKind, completion string) ClassificationResult {
	res := ClassificationResult{Kind: kind}
	switch kind {
	case types.ParserDelimited:
		d := ParseDelimitedCompletion(completion)
		res.Outcome = OutcomeParsed
		res.Pairs = d.Pairs
		res.Rejections = d.Rejections
	default:
		j := ParseJSONCompletion(completion)
		res.Outcome = j.Outcome
		res.Records = j.Records
		res.Rejections = j.Rejections
		pairs, rejected := FilterJSONLabels(j.Records)
		res.Pairs = pairs
		res.Rejections = append(res.Rejections, rejected...)
	}
	return res
}
