package providers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func openRouterOK(w http.ResponseWriter, content string) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"id":    "test-id",
		"model": "qwen/qwen3-8b",
		"choices": []map[string]any{{
			"message":       map[string]any{"role": "assistant", "content": content},
			"finish_reason": "stop",
		}},
		"usage": map[string]int{
			"prompt_tokens":     10,
			"completion_tokens": 8,
			"total_tokens":      18,
		},
	})
}

func TestOpenRouterClient_Chat(t *testing.T) {
	t.Run("successful chat", func(t *testing.T) {
		var received openRouterRequest
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/chat/completions" {
				t.Errorf("unexpected path: %s", r.URL.Path)
			}
			if auth := r.Header.Get("Authorization"); auth != "Bearer test-key" {
				t.Errorf("unexpected authorization: %s", auth)
			}
			json.NewDecoder(r.Body).Decode(&received)
			openRouterOK(w, "pronoun|||type")
		}))
		defer server.Close()

		client := NewOpenRouterClient(OpenRouterConfig{APIKey: "test-key", BaseURL: server.URL})

		req := UserPrompt("classify")
		req.EnableThinking = true
		zero := 0.0
		req.Temperature = &zero
		result, err := client.Chat(context.Background(), req)
		if err != nil {
			t.Fatalf("Chat() error = %v", err)
		}
		if result.Content != "pronoun|||type" {
			t.Errorf("Content = %q", result.Content)
		}
		if result.TotalTokens != 18 || result.Attempts != 1 {
			t.Errorf("TotalTokens = %d, Attempts = %d", result.TotalTokens, result.Attempts)
		}
		if received.Temperature == nil || *received.Temperature != 0 {
			t.Errorf("Temperature = %v, want explicit 0", received.Temperature)
		}
		if received.Reasoning == nil || !received.Reasoning.Enabled {
			t.Error("expected reasoning to be enabled in request")
		}
		if len(received.Messages) != 1 || received.Messages[0].Role != RoleUser {
			t.Errorf("messages = %+v", received.Messages)
		}
	})

	t.Run("server error fails on first attempt by default", func(t *testing.T) {
		var calls atomic.Int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if calls.Add(1) == 1 {
				w.WriteHeader(http.StatusInternalServerError)
				return
			}
			openRouterOK(w, "ok")
		}))
		defer server.Close()

		client := NewOpenRouterClient(OpenRouterConfig{APIKey: "k", BaseURL: server.URL, RetryDelay: time.Millisecond})
		result, err := client.Chat(context.Background(), UserPrompt("x"))
		if err == nil {
			t.Fatalf("expected error, got content %q", result.Content)
		}
		if result.Success {
			t.Error("expected Success = false")
		}
		if calls.Load() != 1 {
			t.Errorf("calls = %d, want 1", calls.Load())
		}
	})

	t.Run("retries server errors when configured", func(t *testing.T) {
		var calls atomic.Int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if calls.Add(1) == 1 {
				w.WriteHeader(http.StatusBadGateway)
				return
			}
			openRouterOK(w, "ok")
		}))
		defer server.Close()

		client := NewOpenRouterClient(OpenRouterConfig{
			APIKey:     "k",
			BaseURL:    server.URL,
			MaxRetries: 3,
			RetryDelay: time.Millisecond,
		})
		result, err := client.Chat(context.Background(), UserPrompt("x"))
		if err != nil {
			t.Fatalf("Chat() error = %v", err)
		}
		if result.Attempts != 2 {
			t.Errorf("Attempts = %d, want 2", result.Attempts)
		}
	})

	t.Run("client errors are not retried", func(t *testing.T) {
		var calls atomic.Int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(`{"error": {"message": "bad model"}}`))
		}))
		defer server.Close()

		client := NewOpenRouterClient(OpenRouterConfig{APIKey: "k", BaseURL: server.URL, RetryDelay: time.Millisecond})
		if _, err := client.Chat(context.Background(), UserPrompt("x")); err == nil {
			t.Fatal("expected error")
		}
		if calls.Load() != 1 {
			t.Errorf("calls = %d, want 1", calls.Load())
		}
	})

	t.Run("empty choices", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"id": "x", "choices": []}`))
		}))
		defer server.Close()

		client := NewOpenRouterClient(OpenRouterConfig{APIKey: "k", BaseURL: server.URL})
		result, err := client.Chat(context.Background(), UserPrompt("x"))
		if err == nil {
			t.Fatal("expected error")
		}
		if result.ErrorType != "empty_response" {
			t.Errorf("ErrorType = %q", result.ErrorType)
		}
	})
}
