package output

import (
	"bytes"
	"strings"
	"testing"
)

type summary struct {
	Stage string `json:"stage" yaml:"stage"`
	Terms int    `json:"terms" yaml:"terms"`
}

func TestPrintTo(t *testing.T) {
	data := summary{Stage: "entity-extraction", Terms: 3}

	t.Run("yaml", func(t *testing.T) {
		var buf bytes.Buffer
		if err := PrintTo(&buf, FormatYAML, data); err != nil {
			t.Fatal(err)
		}
		if got := buf.String(); got != "stage: entity-extraction\nterms: 3\n" {
			t.Errorf("unexpected yaml: %q", got)
		}
	})

	t.Run("json", func(t *testing.T) {
		var buf bytes.Buffer
		if err := PrintTo(&buf, FormatJSON, data); err != nil {
			t.Fatal(err)
		}
		if !strings.Contains(buf.String(), "\n  \"stage\": \"entity-extraction\"") {
			t.Errorf("unexpected json: %q", buf.String())
		}
	})

	t.Run("unknown", func(t *testing.T) {
		if err := PrintTo(&bytes.Buffer{}, Format("xml"), data); err == nil {
			t.Error("expected error")
		}
	})
}

func TestSetFormat(t *testing.T) {
	t.Cleanup(func() { current = DefaultFormat })

	if err := SetFormat("json"); err != nil || Current() != FormatJSON {
		t.Errorf("SetFormat(json) = %v, current %s", err, Current())
	}
	if err := SetFormat(""); err != nil || Current() != FormatYAML {
		t.Errorf("empty format should reset to yaml, got %s", Current())
	}
	if err := SetFormat("toml"); err == nil {
		t.Error("expected error for unknown format")
	}
}
