package config

import (
	"github.com/jackzampolin/text2onto/internal/dataset"
)

// Config holds text2onto configuration.
// Stored at: {home}/config.yaml or ./config.yaml
type Config struct {
	LLMProviders map[string]LLMProviderCfg `mapstructure:"llm_providers" yaml:"llm_providers" validate:"dive"`
	Defaults     DefaultsCfg               `mapstructure:"defaults" yaml:"defaults"`
	Paths        PathsCfg                  `mapstructure:"paths" yaml:"paths"`
	Log          LogCfg                    `mapstructure:"log" yaml:"log"`
}

// LLMProviderCfg configures an LLM provider.
type LLMProviderCfg struct {
	Type           string `mapstructure:"type" yaml:"type" validate:"required,oneof=openai openrouter anthropic ollama mock"`
	Model          string `mapstructure:"model" yaml:"model"`                                      // Model name
	APIKey         string `mapstructure:"api_key" yaml:"api_key"`                                  // API key (supports ${ENV_VAR} syntax)
	BaseURL        string `mapstructure:"base_url" yaml:"base_url,omitempty"`                      // Endpoint override
	RateLimit      int    `mapstructure:"rate_limit" yaml:"rate_limit" validate:"gte=0"`           // Requests per minute
	TimeoutSeconds int    `mapstructure:"timeout_seconds" yaml:"timeout_seconds" validate:"gte=0"` // 0 = none
	MaxAttempts    int    `mapstructure:"max_attempts" yaml:"max_attempts,omitempty" validate:"gte=0"` // openrouter only; 0 or 1 = no retry
	ThinkingKwargs bool   `mapstructure:"thinking_kwargs" yaml:"thinking_kwargs,omitempty"`           // openai only; vLLM chat_template_kwargs
	Enabled        bool   `mapstructure:"enabled" yaml:"enabled"`
}

// DefaultsCfg specifies generation defaults.
type DefaultsCfg struct {
	LLMProvider    string  `mapstructure:"llm_provider" yaml:"llm_provider" validate:"required"`
	Temperature    float64 `mapstructure:"temperature" yaml:"temperature" validate:"gte=0,lte=2"`
	MaxTokens      int     `mapstructure:"max_tokens" yaml:"max_tokens" validate:"gte=0"`
	EnableThinking bool    `mapstructure:"enable_thinking" yaml:"enable_thinking"`
	Seed           int64   `mapstructure:"seed" yaml:"seed"` // negative = seed from clock
	RecordCalls    bool    `mapstructure:"record_calls" yaml:"record_calls"`
}

// PathsCfg holds the default dataset and output directories.
type PathsCfg struct {
	DataDir           string `mapstructure:"data_dir" yaml:"data_dir"`
	ExampleDir        string `mapstructure:"example_dir" yaml:"example_dir"`
	ExtractionDir     string `mapstructure:"extraction_dir" yaml:"extraction_dir"`
	ClassificationDir string `mapstructure:"classification_dir" yaml:"classification_dir"`
	PromptDir         string `mapstructure:"prompt_dir" yaml:"prompt_dir"` // prompt overrides, empty = embedded only
}

// LogCfg configures logging.
type LogCfg struct {
	Level      string `mapstructure:"level" yaml:"level" validate:"oneof=debug info warn error"`
	ToFile     bool   `mapstructure:"to_file" yaml:"to_file"` // also write to {home}/logs/text2onto.log
	MaxSizeMB  int    `mapstructure:"max_size_mb" yaml:"max_size_mb" validate:"gte=0"`
	MaxBackups int    `mapstructure:"max_backups" yaml:"max_backups" validate:"gte=0"`
}

// DefaultConfig returns configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		LLMProviders: map[string]LLMProviderCfg{
			"vllm": {
				Type:           "openai",
				Model:          "Qwen/Qwen3-8B",
				APIKey:         "${VLLM_API_KEY}",
				BaseURL:        "http://localhost:8000/v1",
				ThinkingKwargs: true,
				Enabled:        true,
			},
			"ollama": {
				Type:    "ollama",
				Model:   "qwen3:8b",
				Enabled: false,
			},
			"openrouter": {
				Type:    "openrouter",
				Model:   "qwen/qwen3-8b",
				APIKey:  "${OPENROUTER_API_KEY}",
				Enabled: false,
			},
			"anthropic": {
				Type:    "anthropic",
				Model:   "claude-sonnet-4-5",
				APIKey:  "${ANTHROPIC_API_KEY}",
				Enabled: false,
			},
		},
		Defaults: DefaultsCfg{
			LLMProvider:    "vllm",
			Temperature:    0.6,
			MaxTokens:      32768,
			EnableThinking: false,
			Seed:           42,
			RecordCalls:    true,
		},
		Paths: PathsCfg{
			DataDir:           dataset.DefaultDataDir,
			ExampleDir:        dataset.DefaultExampleDir,
			ExtractionDir:     dataset.DefaultExtractionDir,
			ClassificationDir: dataset.DefaultClassificationDir,
		},
		Log: LogCfg{
			Level:      "info",
			MaxSizeMB:  10,
			MaxBackups: 3,
		},
	}
}

// GetLLMProvider returns an LLM provider config by name.
func (c *Config) GetLLMProvider(name string) (LLMProviderCfg, bool) {
	p, ok := c.LLMProviders[name]
	return p, ok
}

// Layout returns the dataset layout described by the paths section.
func (c *Config) Layout() dataset.Layout {
	return dataset.Layout{
		DataDir:       c.Paths.DataDir,
		ExampleDir:    c.Paths.ExampleDir,
		ExtractionDir: c.Paths.ExtractionDir,
		OutputDir:     c.Paths.ClassificationDir,
	}
}
