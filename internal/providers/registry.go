package providers

import (
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"
)

// Provider types accepted in configuration.
const (
	TypeOpenAI     = OpenAIName
	TypeOpenRouter = OpenRouterName
	TypeAnthropic  = AnthropicName
	TypeOllama     = OllamaName
	TypeMock       = MockClientName
)

// Registry holds references to LLM clients and provides thread-safe access.
type Registry struct {
	mu         sync.RWMutex
	llmClients map[string]LLMClient
	logger     *slog.Logger
}

// NewRegistry creates a new empty provider registry.
func NewRegistry() *Registry {
	return &Registry{
		llmClients: make(map[string]LLMClient),
		logger:     slog.Default(),
	}
}

// SetLogger sets the logger for the registry.
func (r *Registry) SetLogger(logger *slog.Logger) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.logger = logger
}

// RegisterLLM registers an LLM client by name.
func (r *Registry) RegisterLLM(name string, client LLMClient) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.llmClients[name] = client
	if r.logger != nil {
		r.logger.Debug("registered LLM client", "name", name, "type", client.Name())
	}
}

// GetLLM returns an LLM client by name.
func (r *Registry) GetLLM(name string) (LLMClient, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	client, ok := r.llmClients[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrProviderNotFound, name)
	}
	return client, nil
}

// ListLLM returns all registered LLM client names, sorted.
func (r *Registry) ListLLM() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.llmClients))
	for name := range r.llmClients {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// HasLLM checks if an LLM client is registered.
func (r *Registry) HasLLM(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.llmClients[name]
	return ok
}

// LLMProviderConfig is one configured provider with its API key resolved.
type LLMProviderConfig struct {
	Type      string        // openai, openrouter, anthropic, ollama, mock
	Model     string        // Default model name
	APIKey    string        // Resolved API key
	BaseURL   string        // Optional endpoint override
	RateLimit int           // Requests per minute, 0 = unlimited
	Timeout   time.Duration // 0 = no client-side timeout
	Enabled   bool

	MaxAttempts    int  // OpenRouter attempts per call, 0 or 1 = single attempt
	ThinkingKwargs bool // OpenAI-compatible: send chat_template_kwargs
}

// RegistryConfig defines the providers to instantiate from config.
type RegistryConfig struct {
	LLMProviders map[string]LLMProviderConfig
}

// NewRegistryFromConfig creates a registry with every enabled provider.
// A provider that cannot be built is an error; silently skipping it would
// leave a run pointed at a provider that does not exist.
func NewRegistryFromConfig(cfg RegistryConfig, logger *slog.Logger) (*Registry, error) {
	r := NewRegistry()
	if logger != nil {
		r.SetLogger(logger)
	}

	names := make([]string, 0, len(cfg.LLMProviders))
	for name := range cfg.LLMProviders {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		provCfg := cfg.LLMProviders[name]
		if !provCfg.Enabled {
			continue
		}
		client, err := createLLMClient(provCfg)
		if err != nil {
			return nil, fmt.Errorf("provider %s: %w", name, err)
		}
		r.RegisterLLM(name, WithRateLimit(client, provCfg.RateLimit))
	}
	return r, nil
}

// createLLMClient creates an LLM client based on provider type.
func createLLMClient(cfg LLMProviderConfig) (LLMClient, error) {
	switch cfg.Type {
	case TypeOpenAI:
		return NewOpenAIClient(OpenAIConfig{
			APIKey:         cfg.APIKey,
			BaseURL:        cfg.BaseURL,
			DefaultModel:   cfg.Model,
			Timeout:        cfg.Timeout,
			ThinkingKwargs: cfg.ThinkingKwargs,
		}), nil
	case TypeOpenRouter:
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("openrouter requires an api_key")
		}
		return NewOpenRouterClient(OpenRouterConfig{
			APIKey:       cfg.APIKey,
			BaseURL:      cfg.BaseURL,
			DefaultModel: cfg.Model,
			Timeout:      cfg.Timeout,
			MaxRetries:   cfg.MaxAttempts,
		}), nil
	case TypeAnthropic:
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("anthropic requires an api_key")
		}
		return NewAnthropicClient(AnthropicConfig{
			APIKey:       cfg.APIKey,
			BaseURL:      cfg.BaseURL,
			DefaultModel: cfg.Model,
			Timeout:      cfg.Timeout,
		}), nil
	case TypeOllama:
		return NewOllamaClient(OllamaConfig{
			BaseURL:      cfg.BaseURL,
			DefaultModel: cfg.Model,
			Timeout:      cfg.Timeout,
		})
	case TypeMock:
		return NewMockClient(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownProviderType, cfg.Type)
	}
}
