// Package records parses the semi-structured text a model returns.
//
// Two formats share one reserved delimiter ("|||"):
//   - extraction lines: ("entity"|||<name>|||<type>|||<description>)
//   - classification lines: <name>|||<term|type>
//
// Classification completions may also be a JSON array of
// {"entity", "classification"} objects. Every parse attempt yields an
// Outcome value instead of an error that aborts the batch; callers decide
// what to do with rejected units according to the Rejection's Policy.
//
// The delimiter is never escaped. A field that itself contains "|||" shifts
// the following fields to the right.
package records
