package dataset

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Contents maps document ids to raw model completions, keeping insertion
// order so contents.json lists documents in the order they were processed.
type Contents struct {
	ids    []string
	values map[string]string
}

// NewContents returns an empty mapping.
func NewContents() *Contents {
	return &Contents{values: make(map[string]string)}
}

// Set stores the completion for id. Re-setting an id keeps its position.
func (c *Contents) Set(id, completion string) {
	if c.values == nil {
		c.values = make(map[string]string)
	}
	if _, ok := c.values[id]; !ok {
		c.ids = append(c.ids, id)
	}
	c.values[id] = completion
}

// Get returns the completion for id.
func (c *Contents) Get(id string) (string, bool) {
	v, ok := c.values[id]
	return v, ok
}

// IDs returns document ids in insertion order.
func (c *Contents) IDs() []string {
	out := make([]string, len(c.ids))
	copy(out, c.ids)
	return out
}

// Values returns completions in insertion order.
func (c *Contents) Values() []string {
	out := make([]string, 0, len(c.ids))
	for _, id := range c.ids {
		out = append(out, c.values[id])
	}
	return out
}

// Len returns the number of documents.
func (c *Contents) Len() int { return len(c.ids) }

// MarshalJSON writes a JSON object with keys in insertion order.
func (c *Contents) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)

	buf.WriteByte('{')
	for i, id := range c.ids {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := enc.Encode(id); err != nil {
			return nil, err
		}
		buf.WriteByte(':')
		if err := enc.Encode(c.values[id]); err != nil {
			return nil, err
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads a JSON object of string values, keeping key order.
func (c *Contents) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("contents: expected object, got %v", tok)
	}

	c.ids = nil
	c.values = make(map[string]string)
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		id, ok := tok.(string)
		if !ok {
			return fmt.Errorf("contents: expected string key, got %v", tok)
		}
		var completion string
		if err := dec.Decode(&completion); err != nil {
			return fmt.Errorf("contents: value for %q: %w", id, err)
		}
		c.Set(id, completion)
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	return nil
}
