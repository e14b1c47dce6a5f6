package providers

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/ollama/ollama/api"
)

const (
	OllamaName         = "ollama"
	OllamaDefaultModel = "qwen3:8b"
)

// OllamaConfig holds configuration for the Ollama client.
// An empty BaseURL falls back to OLLAMA_HOST.
type OllamaConfig struct {
	BaseURL      string
	DefaultModel string
	Timeout      time.Duration
	HTTPClient   *http.Client // Optional (tests)
}

// OllamaClient implements LLMClient against a local Ollama server.
type OllamaClient struct {
	defaultModel string
	client       *api.Client
}

// NewOllamaClient creates a new Ollama client.
func NewOllamaClient(cfg OllamaConfig) (*OllamaClient, error) {
	if cfg.DefaultModel == "" {
		cfg.DefaultModel = OllamaDefaultModel
	}

	var client *api.Client
	if cfg.BaseURL == "" {
		c, err := api.ClientFromEnvironment()
		if err != nil {
			return nil, fmt.Errorf("failed to create ollama client: %w", err)
		}
		client = c
	} else {
		base, err := url.Parse(cfg.BaseURL)
		if err != nil {
			return nil, fmt.Errorf("invalid ollama base url: %w", err)
		}
		httpClient := cfg.HTTPClient
		if httpClient == nil {
			httpClient = &http.Client{Timeout: cfg.Timeout}
		}
		client = api.NewClient(base, httpClient)
	}

	return &OllamaClient{
		defaultModel: cfg.DefaultModel,
		client:       client,
	}, nil
}

// Name returns the client identifier.
func (c *OllamaClient) Name() string {
	return OllamaName
}

// Chat sends the conversation as a single non-streaming generate call.
func (c *OllamaClient) Chat(ctx context.Context, req *ChatRequest) (*ChatResult, error) {
	start := time.Now()

	requestID := req.RequestID
	if requestID == "" {
		requestID = uuid.New().String()
	}
	model := req.Model
	if model == "" {
		model = c.defaultModel
	}

	result := &ChatResult{
		RequestID: requestID,
		Provider:  OllamaName,
		Attempts:  1,
	}

	var system, prompt []string
	for _, m := range req.Messages {
		if m.Role == RoleSystem {
			system = append(system, m.Content)
			continue
		}
		prompt = append(prompt, m.Content)
	}

	stream := false
	genReq := &api.GenerateRequest{
		Model:   model,
		Prompt:  strings.Join(prompt, "\n\n"),
		System:  strings.Join(system, "\n\n"),
		Stream:  &stream,
		Think:   &api.ThinkValue{Value: req.EnableThinking},
		Options: map[string]any{},
	}
	if req.Temperature != nil {
		genReq.Options["temperature"] = *req.Temperature
	}
	if req.MaxTokens > 0 {
		genReq.Options["num_predict"] = req.MaxTokens
	}

	var final api.GenerateResponse
	var text strings.Builder
	err := c.client.Generate(ctx, genReq, func(resp api.GenerateResponse) error {
		text.WriteString(resp.Response)
		if resp.Done {
			final = resp
		}
		return nil
	})
	if err != nil {
		return result.fail("http_error", fmt.Errorf("ollama generation failed: %w", err), start)
	}

	result.Success = true
	result.Content = text.String()
	result.ModelUsed = final.Model
	result.PromptTokens = final.PromptEvalCount
	result.CompletionTokens = final.EvalCount
	result.TotalTokens = result.PromptTokens + result.CompletionTokens
	result.ExecutionTime = time.Since(start)
	return result, nil
}

// HealthCheck lists local models to verify the server is up.
func (c *OllamaClient) HealthCheck(ctx context.Context) error {
	if _, err := c.client.List(ctx); err != nil {
		return fmt.Errorf("ollama list failed: %w", err)
	}
	return nil
}

var (
	_ LLMClient     = (*OllamaClient)(nil)
	_ HealthChecker = (*OllamaClient)(nil)
)
