package llmcall

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/jackzampolin/text2onto/internal/providers"
)

// Recorder buffers calls in memory until Flush writes them out.
// A nil *Recorder is valid and records nothing.
type Recorder struct {
	mu    sync.Mutex
	calls []*Call
}

// NewRecorder creates a new LLM call recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// Record captures a call built from a chat result.
func (r *Recorder) Record(result *providers.ChatResult, opts RecordOptions) {
	r.RecordCall(FromChatResult(result, opts))
}

// RecordCall captures an already-constructed Call.
func (r *Recorder) RecordCall(call *Call) {
	if r == nil || call == nil {
		return
	}
	r.mu.Lock()
	r.calls = append(r.calls, call)
	r.mu.Unlock()
}

// Calls returns the buffered calls in record order.
func (r *Recorder) Calls() []*Call {
	if r == nil {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*Call, len(r.calls))
	copy(out, r.calls)
	return out
}

// Len returns the number of buffered calls.
func (r *Recorder) Len() int {
	if r == nil {
		return 0
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.calls)
}

// Flush writes buffered calls to path as JSON lines and clears the buffer.
// Nothing is written when the buffer is empty.
func (r *Recorder) Flush(path string) error {
	if r == nil {
		return nil
	}
	r.mu.Lock()
	calls := r.calls
	r.calls = nil
	r.mu.Unlock()

	if len(calls) == 0 {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create call log dir: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create call log: %w", err)
	}
	w := bufio.NewWriter(f)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	for _, c := range calls {
		if err := enc.Encode(c); err != nil {
			f.Close()
			return fmt.Errorf("encode call %s: %w", c.ID, err)
		}
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return fmt.Errorf("write call log: %w", err)
	}
	return f.Close()
}
