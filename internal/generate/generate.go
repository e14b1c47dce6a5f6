// Package generate turns a rendered prompt into a cleaned model completion.
package generate

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jackzampolin/text2onto/internal/llmcall"
	"github.com/jackzampolin/text2onto/internal/prompts"
	"github.com/jackzampolin/text2onto/internal/providers"
)

// ThinkEndMarker closes the reasoning section emitted by thinking models.
const ThinkEndMarker = "</think>"

// Defaults used when Config leaves a field zero.
const (
	DefaultMaxTokens   = 32768
	DefaultTemperature = 0.6
)

// Config holds generation parameters shared by every call.
type Config struct {
	Model          string
	Temperature    float64
	MaxTokens      int
	EnableThinking bool
}

// Generator performs one blocking model call per prompt.
type Generator struct {
	client   providers.LLMClient
	resolver *prompts.Resolver
	recorder *llmcall.Recorder
	cfg      Config
	logger   *slog.Logger
}

// New creates a Generator. recorder may be nil.
func New(client providers.LLMClient, resolver *prompts.Resolver, recorder *llmcall.Recorder, cfg Config, logger *slog.Logger) *Generator {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = DefaultMaxTokens
	}
	return &Generator{
		client:   client,
		resolver: resolver,
		recorder: recorder,
		cfg:      cfg,
		logger:   logger.With("provider", client.Name()),
	}
}

// Call identifies one generation: the prompt to render and where it came from.
type Call struct {
	Stage     string
	Subset    string
	DocID     string
	PromptKey string
	Values    map[string]any
}

// Recorder returns the recorder calls are written to.
func (g *Generator) Recorder() *llmcall.Recorder {
	return g.recorder
}

// Generate renders the prompt, sends it as a single user message and returns
// the completion with any reasoning section removed.
//
// There is no retry or timeout here; cancellation comes from ctx and errors
// propagate to the caller.
func (g *Generator) Generate(ctx context.Context, c Call) (string, error) {
	text, resolved, err := g.resolver.Render(c.PromptKey, c.Values)
	if err != nil {
		return "", err
	}

	temp := g.cfg.Temperature
	req := providers.UserPrompt(text)
	req.Model = g.cfg.Model
	req.Temperature = &temp
	req.MaxTokens = g.cfg.MaxTokens
	req.EnableThinking = g.cfg.EnableThinking

	opts := llmcall.RecordOptions{
		Stage:       c.Stage,
		Subset:      c.Subset,
		DocID:       c.DocID,
		PromptKey:   c.PromptKey,
		PromptHash:  resolved.Hash,
		Temperature: &temp,
	}

	result, err := g.client.Chat(ctx, req)
	if result != nil {
		g.recorder.Record(result, opts)
	} else {
		g.recorder.RecordCall(llmcall.FromError(g.client.Name(), err, opts))
	}
	if err != nil {
		return "", fmt.Errorf("generate %s: %w", c.PromptKey, err)
	}

	g.logger.Debug("completion received",
		"prompt", c.PromptKey,
		"subset", c.Subset,
		"doc_id", c.DocID,
		"input_tokens", result.PromptTokens,
		"output_tokens", result.CompletionTokens,
		"latency", result.ExecutionTime)

	return StripReasoning(result.Content), nil
}

// StripReasoning drops everything up to and including the last </think>
// marker, then trims leading and trailing newlines.
func StripReasoning(completion string) string {
	if i := strings.LastIndex(completion, ThinkEndMarker); i >= 0 {
		completion = completion[i+len(ThinkEndMarker):]
	}
	return strings.Trim(completion, "\n")
}
