package aggregate

import (
	"github.com/jackzampolin/text2onto/internal/records"
)

// FromExtraction folds extraction completions into sets. Every parsable line
// contributes its entity name; malformed lines are returned, not fatal.
func FromExtraction(completions []string) (*Sets, []records.LineFailure) {
	s := New()
	var failures []records.LineFailure
	for _, c := range completions {
		names, bad := records.EntityNames(c)
		for _, n := range names {
			s.AddEntity(n)
		}
		failures = append(failures, bad...)
	}
	return s, failures
}

// FromClassification folds parsed classification completions. Only labeled
// pairs count; the rejections of every result are returned in order.
func FromClassification(results []records.ClassificationResult) (*Sets, []records.Rejection) {
	s := New()
	var rejected []records.Rejection
	for _, res := range results {
		s.AddLabeled(res.Pairs)
		rejected = append(rejected, res.Rejections...)
	}
	return s, rejected
}
