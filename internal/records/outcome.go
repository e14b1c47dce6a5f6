package records

import (
	"fmt"

	"github.com/jackzampolin/text2onto/internal/types"
)

// Outcome classifies the result of one parse attempt.
type Outcome int

const (
	// OutcomeParsed means the input matched the expected shape directly.
	OutcomeParsed Outcome = iota
	// OutcomeRecovered means a JSON array was found by pattern search
	// inside otherwise invalid text and only its first element was kept.
	OutcomeRecovered
	// OutcomeUnreadable means no JSON could be recovered from a completion.
	OutcomeUnreadable
	// OutcomeMalformed means a line or element had the wrong shape.
	OutcomeMalformed
	// OutcomeInvalidLabel means the classification was neither term nor type.
	OutcomeInvalidLabel
)

func (o Outcome) String() string {
	switch o {
	case OutcomeParsed:
		return "parsed"
	case OutcomeRecovered:
		return "recovered"
	case OutcomeUnreadable:
		return "unreadable"
	case OutcomeMalformed:
		return "malformed"
	case OutcomeInvalidLabel:
		return "invalid_label"
	default:
		return fmt.Sprintf("Outcome(%d)", int(o))
	}
}

// Policy is what the pipeline does with a rejected unit.
type Policy int

const (
	// PolicyDrop discards the unit silently (debug log only).
	PolicyDrop Policy = iota
	// PolicyReport discards the unit and reports it to the operator.
	PolicyReport
	// PolicyFile keeps the raw unit in unreadable_responses.json.
	PolicyFile
)

func (p Policy) String() string {
	switch p {
	case PolicyDrop:
		return "drop"
	case PolicyReport:
		return "report"
	case PolicyFile:
		return "file"
	default:
		return fmt.Sprintf("Policy(%d)", int(p))
	}
}

// Rejection is a unit of model output that did not make it into the results.
type Rejection struct {
	Input   string
	Outcome Outcome
	Policy  Policy
	Err     error
}

// Labeled is an entity with a validated classification label.
type Labeled struct {
	Entity string
	Label  types.Label
}
