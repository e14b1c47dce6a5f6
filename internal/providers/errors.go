package providers

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

var (
	// ErrEmptyResponse is returned when a backend answers without content.
	ErrEmptyResponse = errors.New("empty response")
	// ErrUnknownProviderType is returned for an unsupported provider type.
	ErrUnknownProviderType = errors.New("unknown provider type")
	// ErrProviderNotFound is returned when no client is registered by name.
	ErrProviderNotFound = errors.New("LLM client not found")
)

// RateLimitError is returned when a backend answers 429.
type RateLimitError struct {
	Message    string
	RetryAfter time.Duration
	StatusCode int
}

func (e *RateLimitError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("%s (retry after %s)", e.Message, e.RetryAfter)
	}
	return e.Message
}

// parseRetryAfter reads a Retry-After header given in seconds.
func parseRetryAfter(v string) time.Duration {
	v = strings.TrimSpace(v)
	if v == "" {
		return 0
	}
	secs, err := strconv.ParseFloat(v, 64)
	if err != nil || secs <= 0 {
		return 0
	}
	return time.Duration(secs * float64(time.Second))
}
