package prompts

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"
)

// Resolver resolves prompts with directory overrides.
// Resolution order: <overrideDir>/<key>.tmpl > Embedded default
type Resolver struct {
	overrideDir string
	embedded    map[string]EmbeddedPrompt
	mu          sync.RWMutex
	logger      *slog.Logger
}

// NewResolver creates a new prompt resolver. An empty overrideDir disables
// overrides.
func NewResolver(overrideDir string, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{
		overrideDir: overrideDir,
		embedded:    make(map[string]EmbeddedPrompt),
		logger:      logger,
	}
}

// Register registers an embedded prompt.
// This should be called during initialization by each prompt package.
func (r *Resolver) Register(prompt EmbeddedPrompt) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if prompt.Hash == "" {
		prompt.Hash = HashText(prompt.Text)
	}
	if prompt.Variables == nil {
		prompt.Variables = ExtractVariables(prompt.Text)
	}

	r.embedded[prompt.Key] = prompt
	r.logger.Debug("registered embedded prompt", "key", prompt.Key, "vars", prompt.Variables)
}

// Resolve returns the override for key if one exists, otherwise the embedded
// default. A key is only resolvable if it was registered.
func (r *Resolver) Resolve(key string) (*ResolvedPrompt, error) {
	r.mu.RLock()
	embedded, ok := r.embedded[key]
	r.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrPromptNotFound, key)
	}

	if r.overrideDir != "" {
		path := filepath.Join(r.overrideDir, key+".tmpl")
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			text := string(data)
			r.logger.Debug("using prompt override", "key", key, "path", path)
			return &ResolvedPrompt{
				Key:        key,
				Text:       text,
				Variables:  ExtractVariables(text),
				IsOverride: true,
				Hash:       HashText(text),
				Source:     path,
			}, nil
		case !errors.Is(err, fs.ErrNotExist):
			return nil, fmt.Errorf("read prompt override %s: %w", path, err)
		}
	}

	return &ResolvedPrompt{
		Key:       key,
		Text:      embedded.Text,
		Variables: embedded.Variables,
		Hash:      embedded.Hash,
	}, nil
}

// Render resolves key and renders it with values.
func (r *Resolver) Render(key string, values map[string]any) (string, *ResolvedPrompt, error) {
	p, err := r.Resolve(key)
	if err != nil {
		return "", nil, err
	}
	out, err := Render(key, p.Text, values)
	if err != nil {
		return "", p, err
	}
	return out, p, nil
}

// GetEmbedded returns the embedded default for a key (no override resolution).
func (r *Resolver) GetEmbedded(key string) (*EmbeddedPrompt, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.embedded[key]
	return &p, ok
}

// AllEmbedded returns all registered embedded prompts sorted by key.
func (r *Resolver) AllEmbedded() []EmbeddedPrompt {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]EmbeddedPrompt, 0, len(r.embedded))
	for _, p := range r.embedded {
		result = append(result, p)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Key < result[j].Key })
	return result
}
