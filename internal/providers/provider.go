package providers

import (
	"context"
	"time"
)

// LLMClient is the interface every chat backend implements.
type LLMClient interface {
	// Chat sends a chat completion request.
	Chat(ctx context.Context, req *ChatRequest) (*ChatResult, error)

	// Name returns the client identifier (e.g., "openai").
	Name() string
}

// HealthChecker is implemented by clients that can probe their backend
// before a run starts.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// Message roles
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message represents a chat message.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatRequest is a request to an LLM.
type ChatRequest struct {
	// Required
	Messages []Message `json:"messages"`

	// Model selection (uses client default if empty)
	Model string `json:"model,omitempty"`

	// Generation parameters. A nil Temperature leaves sampling to the
	// backend default; zero means greedy decoding.
	Temperature *float64 `json:"temperature,omitempty"`
	MaxTokens   int     `json:"max_tokens,omitempty"`

	// EnableThinking asks reasoning models to emit a <think> section.
	// Backends without a switch for it ignore the flag.
	EnableThinking bool `json:"enable_thinking,omitempty"`

	// Request tracking
	RequestID string `json:"-"`
}

// UserPrompt builds a request holding a single user message.
func UserPrompt(prompt string) *ChatRequest {
	return &ChatRequest{
		Messages: []Message{{Role: RoleUser, Content: prompt}},
	}
}

// ChatResult is the complete response from an LLM call.
type ChatResult struct {
	// Response content
	Content string `json:"content"`

	// Token counts
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`

	// Timing
	ExecutionTime time.Duration `json:"execution_time"`

	// Provider info
	Provider  string `json:"provider"`
	ModelUsed string `json:"model_used"`

	// Request tracking
	RequestID string `json:"request_id"`
	Attempts  int    `json:"attempts"`

	// Success/error
	Success      bool   `json:"success"`
	ErrorType    string `json:"error_type,omitempty"`
	ErrorMessage string `json:"error_message,omitempty"`
}

// fail marks a result as failed and returns err for convenience.
func (r *ChatResult) fail(errorType string, err error, start time.Time) (*ChatResult, error) {
	r.Success = false
	r.ErrorType = errorType
	r.ErrorMessage = err.Error()
	r.ExecutionTime = time.Since(start)
	return r, err
}
