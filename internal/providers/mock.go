package providers

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"
)

const MockClientName = "mock"

// MockClient is an LLMClient for tests and dry runs.
//
// Responses are served in order; once exhausted the last one repeats. When
// Respond is set it takes precedence and can answer based on the prompt.
type MockClient struct {
	// Configurable behavior
	Latency      time.Duration
	ShouldFail   bool
	FailAfter    int // Fail after N requests (0 = never)
	ResponseText string
	Responses    []string
	Respond      func(req *ChatRequest) (string, error)

	// State
	requestCount atomic.Int64
	mu           sync.Mutex
	requests     []*ChatRequest
}

// NewMockClient creates a new mock client with sensible defaults.
func NewMockClient() *MockClient {
	return &MockClient{
		ResponseText: "mock response",
	}
}

// Name returns the client identifier.
func (c *MockClient) Name() string {
	return MockClientName
}

// Chat returns the next scripted response.
func (c *MockClient) Chat(ctx context.Context, req *ChatRequest) (*ChatResult, error) {
	start := time.Now()
	count := c.requestCount.Add(1)

	c.mu.Lock()
	c.requests = append(c.requests, req)
	c.mu.Unlock()

	result := &ChatResult{
		RequestID: fmt.Sprintf("mock-%d", count),
		Provider:  MockClientName,
		ModelUsed: req.Model,
		Attempts:  1,
	}

	if c.ShouldFail {
		return result.fail("mock_failure", fmt.Errorf("mock client configured to fail"), start)
	}
	if c.FailAfter > 0 && int(count) > c.FailAfter {
		return result.fail("mock_failure", fmt.Errorf("mock client failed after %d requests", c.FailAfter), start)
	}

	if c.Latency > 0 {
		select {
		case <-time.After(c.Latency):
		case <-ctx.Done():
			return result.fail("context_cancelled", ctx.Err(), start)
		}
	} else if err := ctx.Err(); err != nil {
		return result.fail("context_cancelled", err, start)
	}

	text, err := c.next(req, int(count))
	if err != nil {
		return result.fail("mock_failure", err, start)
	}

	promptTokens := 0
	for _, m := range req.Messages {
		promptTokens += len(m.Content) / 4 // Rough estimate
	}

	result.Success = true
	result.Content = text
	result.PromptTokens = promptTokens
	result.CompletionTokens = len(text) / 4
	result.TotalTokens = result.PromptTokens + result.CompletionTokens
	result.ExecutionTime = time.Since(start)
	return result, nil
}

func (c *MockClient) next(req *ChatRequest, count int) (string, error) {
	if c.Respond != nil {
		return c.Respond(req)
	}
	if len(c.Responses) > 0 {
		i := count - 1
		if i >= len(c.Responses) {
			i = len(c.Responses) - 1
		}
		return c.Responses[i], nil
	}
	return c.ResponseText, nil
}

// RequestCount returns the number of requests made.
func (c *MockClient) RequestCount() int64 {
	return c.requestCount.Load()
}

// Requests returns every request received, in order.
func (c *MockClient) Requests() []*ChatRequest {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]*ChatRequest, len(c.requests))
	copy(out, c.requests)
	return out
}

// Reset resets the request counter and history.
func (c *MockClient) Reset() {
	c.requestCount.Store(0)
	c.mu.Lock()
	c.requests = nil
	c.mu.Unlock()
}

// HealthCheck always succeeds.
func (c *MockClient) HealthCheck(context.Context) error {
	return nil
}

var (
	_ LLMClient     = (*MockClient)(nil)
	_ HealthChecker = (*MockClient)(nil)
)
