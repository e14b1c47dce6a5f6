package extraction

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/jackzampolin/text2onto/internal/dataset"
	"github.com/jackzampolin/text2onto/internal/examples"
	"github.com/jackzampolin/text2onto/internal/llmcall"
	"github.com/jackzampolin/text2onto/internal/pipeline"
	"github.com/jackzampolin/text2onto/internal/providers"
	"github.com/jackzampolin/text2onto/internal/testutil"
	"github.com/jackzampolin/text2onto/internal/types"
)

// responder answers by the test document found in the prompt.
func responder(req *providers.ChatRequest) (string, error) {
	prompt := req.Messages[0].Content
	switch {
	case strings.Contains(prompt, "A kilojoule is a unit of energy."):
		return "<think>units first</think>\n\n" +
			`("entity"|||Kilojoule|||unit|||a unit of energy)` + "\n" +
			`("entity"|||Energy Unit|||category|||units of energy)` + "\n", nil
	case strings.Contains(prompt, "Kelvin is a temperature scale."):
		return `("entity"|||kelvin|||scale|||absolute scale)` + "\n" +
			"no delimiter here\n" +
			`("entity"|||Kilojoule|||unit|||again)`, nil
	case strings.Contains(prompt, "A noun phrase is a syntactic unit."):
		return `("entity"|||Noun Phrase|||syntax|||a phrase headed by a noun)`, nil
	}
	return "", errors.New("unexpected prompt")
}

func TestStageMetadata(t *testing.T) {
	s := NewStage(Config{Provider: "x"})
	if s.Name() != Name || len(s.Dependencies()) != 0 || s.Description() == "" {
		t.Errorf("unexpected metadata: %s %v", s.Name(), s.Dependencies())
	}
}

func TestCheckOutputs(t *testing.T) {
	layout := testutil.Dataset(t)
	s := NewStage(Config{Provider: testutil.ProviderName})
	opts := pipeline.Options{Layout: layout}

	if err := s.CheckOutputs(opts); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected os.ErrNotExist before extraction, got %v", err)
	}

	testutil.WriteExtractionContents(t, layout, types.SubsetEngineering, []string{"eng-1"}, []string{"x"})
	only := pipeline.Options{Layout: layout, Subsets: []types.Subset{types.SubsetEngineering}}
	if err := s.CheckOutputs(only); err != nil {
		t.Errorf("CheckOutputs() error = %v", err)
	}
	if err := s.CheckOutputs(opts); err == nil || !strings.Contains(err.Error(), string(types.SubsetScholarly)) {
		t.Errorf("expected the scholarly subset to be reported, got %v", err)
	}
}

func TestRunPlain(t *testing.T) {
	layout := testutil.Dataset(t)
	client := providers.NewMockClient()
	client.Respond = responder
	ctx := testutil.Services(t, client)

	res, err := NewStage(Config{Provider: testutil.ProviderName}).Run(ctx, pipeline.Options{
		Variant:     types.VariantPlain,
		Layout:      layout,
		RecordCalls: true,
	})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if len(res.Subsets) != 2 {
		t.Fatalf("expected 2 subset results, got %d", len(res.Subsets))
	}

	eng := res.Subsets[0]
	if eng.Subset != types.SubsetEngineering || eng.Documents != 2 || eng.Calls != 2 || eng.Entities != 3 || eng.Rejected != 1 {
		t.Errorf("unexpected engineering result: %+v", eng)
	}

	dir := layout.ExtractionOutput(types.SubsetEngineering)
	contents, err := dataset.LoadContents(filepath.Join(dir, dataset.ContentsFile))
	if err != nil {
		t.Fatal(err)
	}
	if got := contents.IDs(); !reflect.DeepEqual(got, []string{"eng-1", "eng-2"}) {
		t.Errorf("contents ids = %v", got)
	}
	first, _ := contents.Get("eng-1")
	if strings.Contains(first, "think") || strings.HasPrefix(first, "\n") || strings.HasSuffix(first, "\n") {
		t.Errorf("completion not cleaned: %q", first)
	}

	want := []string{"energy unit", "kelvin", "kilojoule"}
	terms := testutil.ReadLines(t, filepath.Join(dir, dataset.TermsFile))
	typs := testutil.ReadLines(t, filepath.Join(dir, dataset.TypesFile))
	if !reflect.DeepEqual(terms, want) || !reflect.DeepEqual(typs, want) {
		t.Errorf("terms=%v types=%v, want both %v", terms, typs, want)
	}

	calls, err := llmcall.Load(filepath.Join(dir, dataset.CallsFile))
	if err != nil {
		t.Fatal(err)
	}
	if len(calls) != 2 || calls[0].DocID != "eng-1" || calls[0].PromptKey != "extraction.plain" {
		t.Errorf("unexpected call log: %+v", calls)
	}

	sch := testutil.ReadLines(t, filepath.Join(layout.ExtractionOutput(types.SubsetScholarly), dataset.TermsFile))
	if !reflect.DeepEqual(sch, []string{"noun phrase"}) {
		t.Errorf("scholarly terms = %v", sch)
	}

	for _, req := range client.Requests() {
		if len(req.Messages) != 1 || req.Messages[0].Role != providers.RoleUser {
			t.Errorf("expected a single user message, got %+v", req.Messages)
		}
		if strings.Contains(req.Messages[0].Content, "centiwatt") {
			t.Error("plain prompt should not include training examples")
		}
	}
}

func TestRunWithExamples(t *testing.T) {
	layout := testutil.Dataset(t)
	client := providers.NewMockClient()
	client.Respond = responder
	ctx := testutil.Services(t, client)

	_, err := NewStage(Config{Provider: testutil.ProviderName}).Run(ctx, pipeline.Options{
		Variant: types.VariantExamples,
		Subsets: []types.Subset{types.SubsetEngineering},
		Layout:  layout,
	})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	reqs := client.Requests()
	if len(reqs) != 2 {
		t.Fatalf("expected 2 requests, got %d", len(reqs))
	}
	for _, req := range reqs {
		prompt := req.Messages[0].Content
		if !strings.Contains(prompt, "A centiwatt is a unit of power.") || !strings.Contains(prompt, "one hundredth of a watt") {
			t.Error("prompt should carry the curated training example")
		}
		if strings.Contains(prompt, "Not an example.") {
			t.Error("training documents without gold output must not appear")
		}
	}

	if _, err := os.Stat(layout.ExtractionOutput(types.SubsetScholarly)); !os.IsNotExist(err) {
		t.Error("scholarly subset should not have been processed")
	}
	if _, err := os.Stat(filepath.Join(layout.ExtractionOutput(types.SubsetEngineering), dataset.CallsFile)); !os.IsNotExist(err) {
		t.Error("call log should not be written when recording is off")
	}
}

func TestRunAbortsOnProviderError(t *testing.T) {
	layout := testutil.Dataset(t)
	client := providers.NewMockClient()
	client.Respond = responder
	client.FailAfter = 1
	ctx := testutil.Services(t, client)

	_, err := NewStage(Config{Provider: testutil.ProviderName}).Run(ctx, pipeline.Options{
		Variant: types.VariantPlain,
		Layout:  layout,
	})
	if err == nil {
		t.Fatal("expected error")
	}
	if _, err := os.Stat(filepath.Join(layout.ExtractionOutput(types.SubsetEngineering), dataset.ContentsFile)); !os.IsNotExist(err) {
		t.Error("no partial contents.json should be written")
	}
}

func TestRunMissingExampleDocument(t *testing.T) {
	layout := testutil.Dataset(t)
	testutil.WriteJSON(t, layout.ExtractionExamples(types.SubsetEngineering), map[string]string{
		"eng-train-1": "x",
		"ghost":       "y",
	})
	client := providers.NewMockClient()
	ctx := testutil.Services(t, client)

	_, err := NewStage(Config{Provider: testutil.ProviderName}).Run(ctx, pipeline.Options{
		Variant: types.VariantExamples,
		Layout:  layout,
	})
	if !errors.Is(err, examples.ErrExampleDocMissing) {
		t.Fatalf("expected ErrExampleDocMissing, got %v", err)
	}
	if client.RequestCount() != 0 {
		t.Error("no model call should be made")
	}
}

func TestRunUnknownProvider(t *testing.T) {
	layout := testutil.Dataset(t)
	ctx := testutil.Services(t, providers.NewMockClient())

	_, err := NewStage(Config{Provider: "absent"}).Run(ctx, pipeline.Options{Layout: layout})
	if !errors.Is(err, providers.ErrProviderNotFound) {
		t.Fatalf("expected ErrProviderNotFound, got %v", err)
	}
}

func TestRunWithoutServices(t *testing.T) {
	layout := testutil.Dataset(t)
	_, err := NewStage(Config{Provider: testutil.ProviderName}).Run(context.Background(), pipeline.Options{Layout: layout})
	if !errors.Is(err, pipeline.ErrNoServices) {
		t.Fatalf("expected ErrNoServices, got %v", err)
	}
}

func TestContentsJSONShape(t *testing.T) {
	layout := testutil.Dataset(t)
	client := providers.NewMockClient()
	client.Respond = responder
	ctx := testutil.Services(t, client)

	if _, err := NewStage(Config{Provider: testutil.ProviderName}).Run(ctx, pipeline.Options{
		Subsets: []types.Subset{types.SubsetScholarly},
		Layout:  layout,
	}); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(layout.ExtractionContents(types.SubsetScholarly))
	if err != nil {
		t.Fatal(err)
	}
	var m map[string]string
	if err := json.Unmarshal(data, &m); err != nil {
		t.Fatalf("contents.json should be a flat object: %v", err)
	}
	if !strings.HasPrefix(m["sch-1"], `("entity"|||Noun Phrase`) {
		t.Errorf("unexpected content: %q", m["sch-1"])
	}
	if !strings.Contains(string(data), "\n  \"sch-1\"") {
		t.Error("contents.json should be indented with two spaces")
	}
}
