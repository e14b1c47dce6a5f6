// Package dataset reads the challenge data layout and writes pipeline outputs.
package dataset

import (
	"path/filepath"

	"github.com/jackzampolin/text2onto/internal/types"
)

// Output file names, relative to a subset's output directory.
const (
	ContentsFile                = "contents.json"
	ClassificationResponsesFile = "classification_responses.json"
	UnreadableResponsesFile     = "unreadable_responses.json"
	TermsFile                   = "terms.txt"
	TypesFile                   = "types.txt"
	CallsFile                   = "llm_calls.jsonl"
)

// Default directories, relative to the working directory.
const (
	DefaultDataDir           = "data/LLMs4OL-Challenge/2025/TaskA-Text2Onto"
	DefaultExampleDir        = "data/few_shot_examples"
	DefaultExtractionDir     = "output/LLMs4OL_TaskA_Entity_Extraction"
	DefaultClassificationDir = "output/LLMs4OL_TaskA_Entity_Classification"
)

// Layout locates every input and output of a run.
type Layout struct {
	DataDir       string `json:"data_dir" yaml:"data_dir"`
	ExampleDir    string `json:"example_dir" yaml:"example_dir"`
	ExtractionDir string `json:"extraction_dir" yaml:"extraction_dir"` // entity extraction output, read by classification
	OutputDir     string `json:"output_dir" yaml:"output_dir"`
}

// TestDocuments is <data>/<subset>/test/text2onto_<subset>_test_documents.jsonl.
func (l Layout) TestDocuments(s types.Subset) string {
	return filepath.Join(l.DataDir, string(s), "test", "text2onto_"+string(s)+"_test_documents.jsonl")
}

// TrainDocuments is <data>/<subset>/train/documents.jsonl.
func (l Layout) TrainDocuments(s types.Subset) string {
	return filepath.Join(l.DataDir, string(s), "train", "documents.jsonl")
}

// ExtractionExamples is <examples>/entity_extraction/<subset>/doc_examples.json.
func (l Layout) ExtractionExamples(s types.Subset) string {
	return filepath.Join(l.ExampleDir, "entity_extraction", string(s), "doc_examples.json")
}

// ClassificationExamples is <examples>/entity_classification/<subset>/example_doc_entities.json.
func (l Layout) ClassificationExamples(s types.Subset) string {
	return filepath.Join(l.ExampleDir, "entity_classification", string(s), "example_doc_entities.json")
}

// ExtractionContents is <extraction output>/<subset>/contents.json.
func (l Layout) ExtractionContents(s types.Subset) string {
	return filepath.Join(l.ExtractionDir, string(s), ContentsFile)
}

// ExtractionOutput is the subset's entity extraction output directory.
func (l Layout) ExtractionOutput(s types.Subset) string {
	return filepath.Join(l.ExtractionDir, string(s))
}

// Output is the subset's classification output directory.
func (l Layout) Output(s types.Subset) string {
	return filepath.Join(l.OutputDir, string(s))
}
