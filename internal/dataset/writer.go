package dataset

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Writer writes the output files of one subset into Dir.
// Each file is written in full by a single call.
type Writer struct {
	Dir string
}

// NewWriter creates dir if needed and returns a writer for it.
func NewWriter(dir string) (*Writer, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}
	return &Writer{Dir: dir}, nil
}

// Path returns the full path of an output file.
func (w *Writer) Path(name string) string {
	return filepath.Join(w.Dir, name)
}

// WriteJSON writes v as 2-space indented JSON.
func (w *Writer) WriteJSON(name string, v any) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode %s: %w", name, err)
	}
	if err := os.WriteFile(w.Path(name), buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	return nil
}

// WriteContents writes contents.json.
func (w *Writer) WriteContents(c *Contents) error {
	return w.WriteJSON(ContentsFile, c)
}

// WriteLines writes one value per line, each followed by a newline.
func (w *Writer) WriteLines(name string, lines []string) error {
	var buf bytes.Buffer
	bw := bufio.NewWriter(&buf)
	for _, l := range lines {
		bw.WriteString(l)
		bw.WriteByte('\n')
	}
	if err := bw.Flush(); err != nil {
		return err
	}
	if err := os.WriteFile(w.Path(name), buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	return nil
}

// WriteTermsAndTypes writes terms.txt and types.txt.
func (w *Writer) WriteTermsAndTypes(terms, typs []string) error {
	if err := w.WriteLines(TermsFile, terms); err != nil {
		return err
	}
	return w.WriteLines(TypesFile, typs)
}
