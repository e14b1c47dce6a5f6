// Package testutil builds small on-disk datasets and service contexts for
// stage tests.
package testutil

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jackzampolin/text2onto/internal/config"
	"github.com/jackzampolin/text2onto/internal/dataset"
	"github.com/jackzampolin/text2onto/internal/prompts/catalog"
	"github.com/jackzampolin/text2onto/internal/providers"
	"github.com/jackzampolin/text2onto/internal/svcctx"
	"github.com/jackzampolin/text2onto/internal/types"
)

// ProviderName is the registry name the mock client is registered under.
const ProviderName = "mock"

// TestDocs are the test documents written for every subset.
var TestDocs = map[types.Subset][]types.Document{
	types.SubsetEngineering: {
		{ID: "eng-1", Title: "Energy units", Text: "A kilojoule is a unit of energy."},
		{ID: "eng-2", Title: "Temperature", Text: "Kelvin is a temperature scale."},
	},
	types.SubsetScholarly: {
		{ID: "sch-1", Title: "Linguistics", Text: "A noun phrase is a syntactic unit."},
	},
}

// TrainDocs are the training documents. Only the first of each subset has
// curated examples.
var TrainDocs = map[types.Subset][]types.Document{
	types.SubsetEngineering: {
		{ID: "eng-train-1", Title: "Power", Text: "A centiwatt is a unit of power."},
		{ID: "eng-train-2", Title: "Unused", Text: "Not an example."},
	},
	types.SubsetScholarly: {
		{ID: "sch-train-1", Title: "Morphology", Text: "A suffix is a bound morpheme."},
	},
}

// ExtractionExamples are the gold extraction outputs per subset.
var ExtractionExamples = map[types.Subset]map[string]string{
	types.SubsetEngineering: {"eng-train-1": `("entity"|||centiwatt|||power unit|||one hundredth of a watt)`},
	types.SubsetScholarly:   {"sch-train-1": `("entity"|||suffix|||morpheme|||a bound morpheme after a stem)`},
}

// ClassificationExamples are the gold terms and types per subset.
var ClassificationExamples = map[types.Subset]map[string]types.GoldEntities{
	types.SubsetEngineering: {"eng-train-1": {Terms: []string{"centiwatt"}, Types: []string{"power unit"}}},
	types.SubsetScholarly:   {"sch-train-1": {Terms: []string{"suffix"}, Types: []string{"morpheme"}}},
}

// Dataset writes the fixture documents and examples under a temp dir and
// returns a layout pointing at them.
func Dataset(t testing.TB) dataset.Layout {
	t.Helper()
	root := t.TempDir()
	layout := dataset.Layout{
		DataDir:       filepath.Join(root, "data"),
		ExampleDir:    filepath.Join(root, "examples"),
		ExtractionDir: filepath.Join(root, "out", "ee"),
		OutputDir:     filepath.Join(root, "out", "ec"),
	}

	for _, s := range types.AllSubsets() {
		WriteJSONLines(t, layout.TestDocuments(s), TestDocs[s])
		WriteJSONLines(t, layout.TrainDocuments(s), TrainDocs[s])
		WriteJSON(t, layout.ExtractionExamples(s), ExtractionExamples[s])
		WriteJSON(t, layout.ClassificationExamples(s), ClassificationExamples[s])
	}
	return layout
}

// WriteExtractionContents writes an extraction contents.json for subset.
func WriteExtractionContents(t testing.TB, layout dataset.Layout, s types.Subset, ids []string, completions []string) {
	t.Helper()
	c := dataset.NewContents()
	for i, id := range ids {
		c.Set(id, completions[i])
	}
	WriteJSON(t, layout.ExtractionContents(s), c)
}

// WriteJSONLines writes docs as one JSON object per line.
func WriteJSONLines(t testing.TB, path string, docs []types.Document) {
	t.Helper()
	var b strings.Builder
	for _, d := range docs {
		line, err := json.Marshal(d)
		if err != nil {
			t.Fatal(err)
		}
		b.Write(line)
		b.WriteByte('\n')
	}
	writeFile(t, path, []byte(b.String()))
}

// WriteJSON writes v as JSON.
func WriteJSON(t testing.TB, path string, v any) {
	t.Helper()
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatal(err)
	}
	writeFile(t, path, data)
}

func writeFile(t testing.TB, path string, data []byte) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
}

// Services returns a context carrying a registry with client registered as
// ProviderName and the full prompt catalog.
func Services(t testing.TB, client providers.LLMClient) context.Context {
	t.Helper()
	reg := providers.NewRegistry()
	reg.RegisterLLM(ProviderName, client)

	logger := slog.New(slog.NewTextHandler(testWriter{t}, &slog.HandlerOptions{Level: slog.LevelDebug}))
	return svcctx.WithServices(context.Background(), &svcctx.Services{
		Registry: reg,
		Prompts:  catalog.New("", logger),
		Config:   config.DefaultConfig(),
		Logger:   logger,
	})
}

// ReadLines reads a newline-terminated list file.
func ReadLines(t testing.TB, path string) []string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	text := strings.TrimSuffix(string(data), "\n")
	if text == "" {
		return nil
	}
	return strings.Split(text, "\n")
}

// testWriter routes log output through t.Log.
type testWriter struct {
	t testing.TB
}

func (w testWriter) Write(p []byte) (int, error) {
	w.t.Log(strings.TrimSuffix(string(p), "\n"))
	return len(p), nil
}
