// Package llmcall records model calls for traceability.
// Every call is recorded with its prompt key, response, and metrics.
package llmcall

import (
	"time"

	"github.com/google/uuid"

	"github.com/jackzampolin/text2onto/internal/providers"
)

// Call represents a recorded LLM API call.
type Call struct {
	// Unique identifier
	ID string `json:"id"`

	// Timing
	Timestamp time.Time `json:"timestamp"`
	LatencyMs int       `json:"latency_ms"`

	// Context references
	Stage  string `json:"stage,omitempty"`
	Subset string `json:"subset,omitempty"`
	DocID  string `json:"doc_id,omitempty"`

	// Prompt traceability
	PromptKey  string `json:"prompt_key"`
	PromptHash string `json:"prompt_hash,omitempty"` // hash of the template text actually used

	// Model info
	Provider    string   `json:"provider"`
	Model       string   `json:"model"`
	Temperature *float64 `json:"temperature,omitempty"`

	// Token usage
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`

	// Response
	Response string `json:"response"`

	// Status
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// RecordOptions provides context for recording an LLM call.
type RecordOptions struct {
	Stage  string
	Subset string
	DocID  string

	// Prompt identification (required for traceability)
	PromptKey  string
	PromptHash string

	// Request parameters (pointer to distinguish "not set" from "set to 0")
	Temperature *float64
}

// FromChatResult creates a Call from a ChatResult.
// Returns nil if result is nil.
func FromChatResult(result *providers.ChatResult, opts RecordOptions) *Call {
	if result == nil {
		return nil
	}

	call := &Call{
		ID:           uuid.New().String(),
		Timestamp:    time.Now(),
		LatencyMs:    int(result.ExecutionTime.Milliseconds()),
		Stage:        opts.Stage,
		Subset:       opts.Subset,
		DocID:        opts.DocID,
		PromptKey:    opts.PromptKey,
		PromptHash:   opts.PromptHash,
		Provider:     result.Provider,
		Model:        result.ModelUsed,
		Temperature:  opts.Temperature,
		InputTokens:  result.PromptTokens,
		OutputTokens: result.CompletionTokens,
		Response:     result.Content,
		Success:      result.Success,
	}
	if !result.Success {
		call.Error = result.ErrorMessage
	}
	return call
}

// FromError creates a failed Call when the client returned no result.
func FromError(provider string, err error, opts RecordOptions) *Call {
	call := &Call{
		ID:          uuid.New().String(),
		Timestamp:   time.Now(),
		Stage:       opts.Stage,
		Subset:      opts.Subset,
		DocID:       opts.DocID,
		PromptKey:   opts.PromptKey,
		PromptHash:  opts.PromptHash,
		Provider:    provider,
		Temperature: opts.Temperature,
	}
	if err != nil {
		call.Error = err.Error()
	}
	return call
}
