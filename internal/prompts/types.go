// Package prompts provides prompt management with embedded defaults and
// directory overrides.
//
// Embedded .tmpl files are the source of truth. An operator can replace any
// prompt without rebuilding by placing <key>.tmpl in the override directory.
//
// Resolution order:
//  1. <override dir>/<key>.tmpl (if configured and present)
//  2. Embedded default
package prompts

import "errors"

var (
	// ErrPromptNotFound is returned when no prompt is registered under a key.
	ErrPromptNotFound = errors.New("prompt not found")
	// ErrMissingSlot is returned when a template references a slot that was
	// not supplied.
	ErrMissingSlot = errors.New("missing prompt slot")
)

// ResolvedPrompt is the text that will actually be rendered for a key.
type ResolvedPrompt struct {
	Key        string   `json:"key"`
	Text       string   `json:"text"`
	Variables  []string `json:"variables,omitempty"`
	IsOverride bool     `json:"is_override"`
	Hash       string   `json:"hash"`
	Source     string   `json:"source,omitempty"` // override file path, empty for embedded
}

// EmbeddedPrompt represents a prompt loaded from an embedded .tmpl file.
type EmbeddedPrompt struct {
	Key         string   // Hierarchical key: classification.engineering.plain
	Text        string   // The prompt text (Go template)
	Description string   // Human-readable description
	Variables   []string // Extracted template variables
	Hash        string   // SHA256 hash of the text for change detection
}
