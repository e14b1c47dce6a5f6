package dataset

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/jackzampolin/text2onto/internal/types"
)

//go:embed schemas/*.json
var schemaFS embed.FS

const (
	extractionExamplesSchema     = "schemas/doc_examples.schema.json"
	classificationExamplesSchema = "schemas/example_doc_entities.schema.json"
)

var (
	schemaMu sync.Mutex
	compiled = map[string]*jsonschema.Schema{}
)

func loadSchema(name string) (*jsonschema.Schema, error) {
	schemaMu.Lock()
	defer schemaMu.Unlock()

	if s, ok := compiled[name]; ok {
		return s, nil
	}
	raw, err := schemaFS.ReadFile(name)
	if err != nil {
		return nil, fmt.Errorf("failed to read schema %s: %w", name, err)
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(name, bytes.NewReader(raw)); err != nil {
		return nil, fmt.Errorf("failed to load schema %s: %w", name, err)
	}
	s, err := compiler.Compile(name)
	if err != nil {
		return nil, fmt.Errorf("failed to compile schema %s: %w", name, err)
	}
	compiled[name] = s
	return s, nil
}

// readValidated reads path, validates it against the named schema and
// decodes it into out.
func readValidated(path, schemaName string, out any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read examples: %w", err)
	}

	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("parse examples %s: %w", path, err)
	}
	schema, err := loadSchema(schemaName)
	if err != nil {
		return err
	}
	if err := schema.Validate(doc); err != nil {
		return fmt.Errorf("invalid examples %s: %w", path, err)
	}

	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode examples %s: %w", path, err)
	}
	return nil
}

// LoadExtractionExamples reads doc_examples.json: training document id to the
// gold extraction output for that document.
func LoadExtractionExamples(path string) (map[string]string, error) {
	var out map[string]string
	if err := readValidated(path, extractionExamplesSchema, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// LoadClassificationExamples reads example_doc_entities.json: training
// document id to its gold terms and types.
func LoadClassificationExamples(path string) (map[string]types.GoldEntities, error) {
	var out map[string]types.GoldEntities
	if err := readValidated(path, classificationExamplesSchema, &out); err != nil {
		return nil, err
	}
	return out, nil
}
