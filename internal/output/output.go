// Package output renders command results as YAML or JSON.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// Format defines the output format for CLI commands.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// DefaultFormat is the default output format.
const DefaultFormat = FormatYAML

// current is set by the root command's --format flag.
var current = DefaultFormat

// ParseFormat validates a format name.
func ParseFormat(name string) (Format, error) {
	switch Format(name) {
	case FormatYAML, FormatJSON:
		return Format(name), nil
	case "":
		return DefaultFormat, nil
	default:
		return "", fmt.Errorf("unknown output format %q (yaml or json)", name)
	}
}

// SetFormat sets the global output format.
func SetFormat(name string) error {
	f, err := ParseFormat(name)
	if err != nil {
		return err
	}
	current = f
	return nil
}

// Current returns the global output format.
func Current() Format {
	return current
}

// Print writes data to stdout in the configured format.
func Print(data any) error {
	return PrintTo(os.Stdout, current, data)
}

// PrintTo writes data to the given writer in the specified format.
func PrintTo(w io.Writer, format Format, data any) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetEscapeHTML(false)
		enc.SetIndent("", "  ")
		return enc.Encode(data)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		defer enc.Close()
		return enc.Encode(data)
	default:
		return fmt.Errorf("unknown output format: %s", format)
	}
}
