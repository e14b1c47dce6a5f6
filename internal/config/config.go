package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v2"

	"github.com/jackzampolin/text2onto/internal/providers"
)

// EnvPrefix is prepended to environment overrides, e.g.
// TEXT2ONTO_DEFAULTS_LLM_PROVIDER.
const EnvPrefix = "TEXT2ONTO"

var validate = validator.New()

var envVarPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// Manager loads configuration from file, environment and defaults.
type Manager struct {
	mu     sync.RWMutex
	v      *viper.Viper
	config *Config
}

// NewManager creates a new config manager and loads the config.
// searchDirs are consulted for config.yaml when cfgFile is empty.
func NewManager(cfgFile string, searchDirs ...string) (*Manager, error) {
	cm := &Manager{v: viper.New()}

	if err := cm.initViper(cfgFile, searchDirs); err != nil {
		return nil, err
	}

	cfg, err := cm.load()
	if err != nil {
		return nil, err
	}
	cm.config = cfg

	return cm, nil
}

// initViper sets up viper with defaults and config file.
func (cm *Manager) initViper(cfgFile string, searchDirs []string) error {
	v := cm.v
	defaults := DefaultConfig()
	v.SetDefault("llm_providers", defaults.LLMProviders)
	v.SetDefault("defaults.llm_provider", defaults.Defaults.LLMProvider)
	v.SetDefault("defaults.temperature", defaults.Defaults.Temperature)
	v.SetDefault("defaults.max_tokens", defaults.Defaults.MaxTokens)
	v.SetDefault("defaults.enable_thinking", defaults.Defaults.EnableThinking)
	v.SetDefault("defaults.seed", defaults.Defaults.Seed)
	v.SetDefault("defaults.record_calls", defaults.Defaults.RecordCalls)
	v.SetDefault("paths.data_dir", defaults.Paths.DataDir)
	v.SetDefault("paths.example_dir", defaults.Paths.ExampleDir)
	v.SetDefault("paths.extraction_dir", defaults.Paths.ExtractionDir)
	v.SetDefault("paths.classification_dir", defaults.Paths.ClassificationDir)
	v.SetDefault("paths.prompt_dir", defaults.Paths.PromptDir)
	v.SetDefault("log.level", defaults.Log.Level)
	v.SetDefault("log.to_file", defaults.Log.ToFile)
	v.SetDefault("log.max_size_mb", defaults.Log.MaxSizeMB)
	v.SetDefault("log.max_backups", defaults.Log.MaxBackups)

	// Environment variables with TEXT2ONTO_ prefix
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Config file
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		for _, dir := range searchDirs {
			v.AddConfigPath(dir)
		}
	}

	// Try to read config file (not required unless named explicitly)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			return fmt.Errorf("error reading config file: %w", err)
		}
	}

	return nil
}

// load parses the current viper state into a validated Config.
func (cm *Manager) load() (*Config, error) {
	var cfg Config
	if err := cm.v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Get returns the current configuration.
func (cm *Manager) Get() *Config {
	cm.mu.RLock()
	defer cm.mu.RUnlock()
	return cm.config
}

// ConfigFile returns the file the config was read from, or "" when running
// on defaults.
func (cm *Manager) ConfigFile() string {
	return cm.v.ConfigFileUsed()
}

// Validate checks field constraints and that the default provider exists.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if _, ok := c.LLMProviders[c.Defaults.LLMProvider]; !ok {
		return fmt.Errorf("invalid config: default llm_provider %q is not configured", c.Defaults.LLMProvider)
	}
	return nil
}

// LoadDotEnv loads environment variables from .env files. Missing files are
// not an error; with no paths ./.env is tried.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("load %s: %w", p, err)
		}
	}
	return nil
}

// ResolveEnvVars expands ${ENV_VAR} references in a string.
func ResolveEnvVars(value string) string {
	if value == "" {
		return value
	}
	return envVarPattern.ReplaceAllStringFunc(value, func(match string) string {
		varName := match[2 : len(match)-1]
		return os.Getenv(varName)
	})
}

// ToProviderRegistryConfig converts the config to a format suitable for providers.Registry.
// It resolves all ${ENV_VAR} references in API keys and base URLs.
func (c *Config) ToProviderRegistryConfig() providers.RegistryConfig {
	cfg := providers.RegistryConfig{
		LLMProviders: make(map[string]providers.LLMProviderConfig),
	}

	for name, llm := range c.LLMProviders {
		cfg.LLMProviders[name] = providers.LLMProviderConfig{
			Type:      llm.Type,
			Model:     llm.Model,
			APIKey:    ResolveEnvVars(llm.APIKey),
			BaseURL:   ResolveEnvVars(llm.BaseURL),
			RateLimit:      llm.RateLimit,
			Timeout:        time.Duration(llm.TimeoutSeconds) * time.Second,
			MaxAttempts:    llm.MaxAttempts,
			ThinkingKwargs: llm.ThinkingKwargs,
			Enabled:        llm.Enabled,
		}
	}

	return cfg
}

// WriteDefault writes the default configuration to the specified path.
func WriteDefault(path string) error {
	cfg := DefaultConfig()
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	header := []byte(`# text2onto configuration
# API keys use ${ENV_VAR} syntax to reference environment variables
# Set these in your shell or a .env file: VLLM_API_KEY, OPENROUTER_API_KEY, ANTHROPIC_API_KEY

`)
	return os.WriteFile(path, append(header, data...), 0o644)
}
