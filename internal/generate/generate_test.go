package generate

import (
	"context"
	"errors"
	"testing"

	"github.com/jackzampolin/text2onto/internal/llmcall"
	"github.com/jackzampolin/text2onto/internal/prompts"
	"github.com/jackzampolin/text2onto/internal/providers"
)

func TestStripReasoning(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"no marker", "\n\nanswer\n", "answer"},
		{"single marker", "<think>hmm</think>\n\nanswer", "answer"},
		{"last marker wins", "<think>a</think>x</think>\nanswer\n\n", "answer"},
		{"spaces kept", "</think>\n  answer  \n", "  answer  "},
		{"empty after marker", "<think>only</think>", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StripReasoning(tt.in); got != tt.want {
				t.Errorf("StripReasoning(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func newResolver() *prompts.Resolver {
	r := prompts.NewResolver("", nil)
	r.Register(prompts.EmbeddedPrompt{
		Key:  "test.greet",
		Text: "Hello {{.name}}",
	})
	return r
}

func TestGenerate(t *testing.T) {
	client := providers.NewMockClient()
	client.Responses = []string{"<think>plan</think>\n\nHi there\n"}
	rec := llmcall.NewRecorder()

	g := New(client, newResolver(), rec, Config{Model: "qwen", Temperature: 0.6, EnableThinking: true}, nil)
	got, err := g.Generate(context.Background(), Call{
		Subset:    "scholarly",
		DocID:     "d1",
		PromptKey: "test.greet",
		Values:    map[string]any{"name": "World"},
	})
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if got != "Hi there" {
		t.Errorf("Generate() = %q", got)
	}

	reqs := client.Requests()
	if len(reqs) != 1 {
		t.Fatalf("expected 1 request, got %d", len(reqs))
	}
	req := reqs[0]
	if len(req.Messages) != 1 || req.Messages[0].Role != providers.RoleUser || req.Messages[0].Content != "Hello World" {
		t.Errorf("unexpected messages: %+v", req.Messages)
	}
	if !req.EnableThinking || req.Model != "qwen" || req.MaxTokens != DefaultMaxTokens {
		t.Errorf("unexpected request params: %+v", req)
	}

	calls := rec.Calls()
	if len(calls) != 1 {
		t.Fatalf("expected 1 recorded call, got %d", len(calls))
	}
	if calls[0].PromptKey != "test.greet" || calls[0].DocID != "d1" || calls[0].PromptHash == "" || !calls[0].Success {
		t.Errorf("unexpected call record: %+v", calls[0])
	}
}

func TestGenerateMissingSlot(t *testing.T) {
	client := providers.NewMockClient()
	g := New(client, newResolver(), nil, Config{}, nil)

	_, err := g.Generate(context.Background(), Call{PromptKey: "test.greet", Values: map[string]any{}})
	if !errors.Is(err, prompts.ErrMissingSlot) {
		t.Fatalf("expected ErrMissingSlot, got %v", err)
	}
	if len(client.Requests()) != 0 {
		t.Error("no request should be sent when rendering fails")
	}
}

func TestGenerateClientError(t *testing.T) {
	client := providers.NewMockClient()
	client.ShouldFail = true
	rec := llmcall.NewRecorder()
	g := New(client, newResolver(), rec, Config{}, nil)

	_, err := g.Generate(context.Background(), Call{PromptKey: "test.greet", Values: map[string]any{"name": "x"}})
	if err == nil {
		t.Fatal("expected error")
	}
	calls := rec.Calls()
	if len(calls) != 1 || calls[0].Success || calls[0].Error == "" {
		t.Errorf("failed call should be recorded: %+v", calls)
	}
}

func TestGenerateZeroTemperatureIsSent(t *testing.T) {
	client := providers.NewMockClient()
	g := New(client, newResolver(), nil, Config{Model: "qwen", Temperature: 0}, nil)
	if _, err := g.Generate(context.Background(), Call{PromptKey: "test.greet", Values: map[string]any{"name": "x"}}); err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	req := client.Requests()[0]
	if req.Temperature == nil || *req.Temperature != 0 {
		t.Errorf("Temperature = %v, want explicit 0 for greedy decoding", req.Temperature)
	}
}
