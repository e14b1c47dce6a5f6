package prompts

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"text/template"
)

// variablePattern matches Go template variable references like {{.title}} or {{ .title }}
var variablePattern = regexp.MustCompile(`\{\{\s*\.([a-zA-Z_][a-zA-Z0-9_.]*)\s*\}\}`)

// ExtractVariables extracts template variable names from a Go template string.
// For example, "Title: {{.title}} Text: {{.text}}" returns ["text", "title"].
func ExtractVariables(text string) []string {
	matches := variablePattern.FindAllStringSubmatch(text, -1)
	seen := make(map[string]bool)
	var vars []string

	for _, match := range matches {
		if len(match) > 1 {
			varName := match[1]
			if !seen[varName] {
				seen[varName] = true
				vars = append(vars, varName)
			}
		}
	}

	sort.Strings(vars)
	return vars
}

// HashText returns a SHA256 hash of the text for change detection.
func HashText(text string) string {
	h := sha256.Sum256([]byte(text))
	return hex.EncodeToString(h[:])
}

// Render executes a prompt template against named slot values.
// Every referenced slot must be present in values; extra values are ignored.
func Render(key, text string, values map[string]any) (string, error) {
	for _, v := range ExtractVariables(text) {
		if _, ok := values[v]; !ok {
			return "", fmt.Errorf("render %s: %w: %s", key, ErrMissingSlot, v)
		}
	}

	tmpl, err := template.New(key).Option("missingkey=error").Parse(text)
	if err != nil {
		return "", fmt.Errorf("parse %s: %w", key, err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, values); err != nil {
		if strings.Contains(err.Error(), "map has no entry for key") {
			return "", fmt.Errorf("render %s: %w: %v", key, ErrMissingSlot, err)
		}
		return "", fmt.Errorf("render %s: %w", key, err)
	}
	return buf.String(), nil
}
