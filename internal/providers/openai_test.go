package providers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestOpenAIClient_Chat(t *testing.T) {
	t.Run("successful chat", func(t *testing.T) {
		var payload map[string]any

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !strings.HasSuffix(r.URL.Path, "/chat/completions") {
				t.Errorf("unexpected path: %s", r.URL.Path)
			}
			body, err := io.ReadAll(r.Body)
			if err != nil {
				t.Fatalf("read body: %v", err)
			}
			if err := json.Unmarshal(body, &payload); err != nil {
				t.Fatalf("unmarshal body: %v", err)
			}

			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(map[string]any{
				"id":      "chatcmpl-1",
				"object":  "chat.completion",
				"created": 1,
				"model":   "Qwen/Qwen3-8B",
				"choices": []map[string]any{{
					"index":         0,
					"finish_reason": "stop",
					"message": map[string]any{
						"role":    "assistant",
						"content": "<think>\n\n</think>\n\n(\"entity\"|||bean|||food|||x)",
					},
				}},
				"usage": map[string]int{
					"prompt_tokens":     12,
					"completion_tokens": 7,
					"total_tokens":      19,
				},
			})
		}))
		defer server.Close()

		client := NewOpenAIClient(OpenAIConfig{BaseURL: server.URL, ThinkingKwargs: true})

		req := UserPrompt("extract")
		req.MaxTokens = 32768
		zero := 0.0
		req.Temperature = &zero
		result, err := client.Chat(context.Background(), req)
		if err != nil {
			t.Fatalf("Chat() error = %v", err)
		}
		if !result.Success {
			t.Error("expected Success = true")
		}
		if !strings.HasSuffix(result.Content, `("entity"|||bean|||food|||x)`) {
			t.Errorf("Content = %q", result.Content)
		}
		if result.TotalTokens != 19 {
			t.Errorf("TotalTokens = %d, want 19", result.TotalTokens)
		}
		if result.RequestID == "" {
			t.Error("expected a generated request id")
		}

		if got, _ := payload["model"].(string); got != OpenAIDefaultModel {
			t.Errorf("model = %q", got)
		}
		kwargs, _ := payload["chat_template_kwargs"].(map[string]any)
		if v, ok := kwargs["enable_thinking"].(bool); !ok || v {
			t.Errorf("chat_template_kwargs = %v", payload["chat_template_kwargs"])
		}
		if temp, ok := payload["temperature"].(float64); !ok || temp != 0 {
			t.Errorf("temperature = %v, want explicit 0", payload["temperature"])
		}
	})

	t.Run("plain endpoint gets no vendor fields", func(t *testing.T) {
		var payload map[string]any
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			json.NewDecoder(r.Body).Decode(&payload)
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(map[string]any{
				"id":      "chatcmpl-2",
				"object":  "chat.completion",
				"created": 1,
				"model":   "gpt-test",
				"choices": []map[string]any{{
					"index":         0,
					"finish_reason": "stop",
					"message":       map[string]any{"role": "assistant", "content": "ok"},
				}},
			})
		}))
		defer server.Close()

		client := NewOpenAIClient(OpenAIConfig{BaseURL: server.URL})
		if _, err := client.Chat(context.Background(), UserPrompt("x")); err != nil {
			t.Fatalf("Chat() error = %v", err)
		}
		if _, ok := payload["chat_template_kwargs"]; ok {
			t.Error("chat_template_kwargs sent without ThinkingKwargs")
		}
		if _, ok := payload["temperature"]; ok {
			t.Error("temperature sent for a nil request temperature")
		}
	})

	t.Run("rate limited", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.Header().Set("Retry-After", "3")
			w.WriteHeader(http.StatusTooManyRequests)
			w.Write([]byte(`{"error": {"message": "slow down", "type": "rate_limit"}}`))
		}))
		defer server.Close()

		client := NewOpenAIClient(OpenAIConfig{BaseURL: server.URL})
		result, err := client.Chat(context.Background(), UserPrompt("x"))
		var rle *RateLimitError
		if !errors.As(err, &rle) {
			t.Fatalf("expected RateLimitError, got %v", err)
		}
		if rle.RetryAfter.Seconds() != 3 {
			t.Errorf("RetryAfter = %v", rle.RetryAfter)
		}
		if result.Success {
			t.Error("expected Success = false")
		}
	})
}
