package dataset

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/jackzampolin/text2onto/internal/types"
)

// LoadDocuments reads a JSON-lines document file.
func LoadDocuments(path string) ([]types.Document, error) {
	return LoadDocumentsFiltered(path, nil)
}

// LoadDocumentsFiltered reads a JSON-lines document file, keeping only the
// documents for which keep returns true. A nil keep keeps everything.
// File order is preserved.
func LoadDocumentsFiltered(path string, keep func(id string) bool) ([]types.Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open documents: %w", err)
	}
	defer f.Close()

	docs, err := decodeDocuments(f, keep)
	if err != nil {
		return nil, fmt.Errorf("read documents %s: %w", path, err)
	}
	return docs, nil
}

func decodeDocuments(r io.Reader, keep func(id string) bool) ([]types.Document, error) {
	dec := json.NewDecoder(r)
	var docs []types.Document
	for n := 1; ; n++ {
		var doc types.Document
		if err := dec.Decode(&doc); err != nil {
			if err == io.EOF {
				return docs, nil
			}
			return nil, fmt.Errorf("record %d: %w", n, err)
		}
		if doc.ID == "" {
			return nil, fmt.Errorf("record %d: missing id", n)
		}
		if keep != nil && !keep(doc.ID) {
			continue
		}
		docs = append(docs, doc)
	}
}

// LoadContents reads a contents.json written by an earlier stage.
func LoadContents(path string) (*Contents, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read contents: %w", err)
	}
	c := NewContents()
	if err := json.Unmarshal(data, c); err != nil {
		return nil, fmt.Errorf("parse contents %s: %w", path, err)
	}
	return c, nil
}
