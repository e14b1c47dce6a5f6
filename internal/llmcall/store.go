package llmcall

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"
)

// QueryFilter specifies filters for listing recorded calls.
type QueryFilter struct {
	Subset    string
	DocID     string
	PromptKey string
	Provider  string
	Model     string
	After     *time.Time
	Before    *time.Time
	Success   *bool
	Limit     int
	Offset    int
}

// Load reads a call log written by Recorder.Flush.
func Load(path string) ([]*Call, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open call log: %w", err)
	}
	defer f.Close()

	dec := json.NewDecoder(f)
	var calls []*Call
	for {
		var c Call
		if err := dec.Decode(&c); err != nil {
			if err == io.EOF {
				return calls, nil
			}
			return nil, fmt.Errorf("read call log %s: %w", path, err)
		}
		calls = append(calls, &c)
	}
}

// Filter returns the calls matching f, in order.
func Filter(calls []*Call, f QueryFilter) []*Call {
	var out []*Call
	skipped := 0
	for _, c := range calls {
		if !f.matches(c) {
			continue
		}
		if skipped < f.Offset {
			skipped++
			continue
		}
		out = append(out, c)
		if f.Limit > 0 && len(out) >= f.Limit {
			break
		}
	}
	return out
}

func (f QueryFilter) matches(c *Call) bool {
	switch {
	case f.Subset != "" && c.Subset != f.Subset:
		return false
	case f.DocID != "" && c.DocID != f.DocID:
		return false
	case f.PromptKey != "" && c.PromptKey != f.PromptKey:
		return false
	case f.Provider != "" && c.Provider != f.Provider:
		return false
	case f.Model != "" && c.Model != f.Model:
		return false
	case f.After != nil && !c.Timestamp.After(*f.After):
		return false
	case f.Before != nil && !c.Timestamp.Before(*f.Before):
		return false
	case f.Success != nil && c.Success != *f.Success:
		return false
	}
	return true
}

// Summary aggregates a set of calls.
type Summary struct {
	Calls        int            `json:"calls" yaml:"calls"`
	Failures     int            `json:"failures" yaml:"failures"`
	InputTokens  int            `json:"input_tokens" yaml:"input_tokens"`
	OutputTokens int            `json:"output_tokens" yaml:"output_tokens"`
	TotalLatency time.Duration  `json:"total_latency" yaml:"total_latency"`
	ByPromptKey  map[string]int `json:"by_prompt_key" yaml:"by_prompt_key"`
}

// Summarize totals calls, failures, tokens and latency.
func Summarize(calls []*Call) Summary {
	s := Summary{ByPromptKey: make(map[string]int)}
	for _, c := range calls {
		s.Calls++
		if !c.Success {
			s.Failures++
		}
		s.InputTokens += c.InputTokens
		s.OutputTokens += c.OutputTokens
		s.TotalLatency += time.Duration(c.LatencyMs) * time.Millisecond
		s.ByPromptKey[c.PromptKey]++
	}
	return s
}
