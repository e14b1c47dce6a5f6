// Package catalog builds a resolver with every embedded prompt registered.
package catalog

import (
	"log/slog"

	"github.com/jackzampolin/text2onto/internal/prompts"
	"github.com/jackzampolin/text2onto/internal/prompts/classification"
	"github.com/jackzampolin/text2onto/internal/prompts/extraction"
)

// New returns a resolver holding the extraction and classification prompts.
func New(overrideDir string, logger *slog.Logger) *prompts.Resolver {
	r := prompts.NewResolver(overrideDir, logger)
	extraction.RegisterPrompts(r)
	classification.RegisterPrompts(r)
	return r
}
