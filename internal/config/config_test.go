package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jackzampolin/text2onto/internal/providers"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}
	p, ok := cfg.GetLLMProvider(cfg.Defaults.LLMProvider)
	if !ok || !p.Enabled {
		t.Errorf("default provider %q should be configured and enabled", cfg.Defaults.LLMProvider)
	}
	if cfg.Defaults.Seed != 42 {
		t.Errorf("Seed = %d, want 42", cfg.Defaults.Seed)
	}
	if cfg.Layout().OutputDir != cfg.Paths.ClassificationDir {
		t.Error("layout output dir should be the classification dir")
	}
}

func TestResolveEnvVars(t *testing.T) {
	t.Run("resolves environment variable", func(t *testing.T) {
		t.Setenv("TEST_API_KEY", "secret123")

		result := ResolveEnvVars("${TEST_API_KEY}")
		if result != "secret123" {
			t.Errorf("expected secret123, got %s", result)
		}
	})

	t.Run("returns empty for missing env var", func(t *testing.T) {
		result := ResolveEnvVars("${DEFINITELY_NOT_SET_12345}")
		if result != "" {
			t.Errorf("expected empty string, got %s", result)
		}
	})

	t.Run("leaves literal values unchanged", func(t *testing.T) {
		result := ResolveEnvVars("literal-value")
		if result != "literal-value" {
			t.Errorf("expected literal-value, got %s", result)
		}
	})

	t.Run("expands inside a string", func(t *testing.T) {
		t.Setenv("TEST_HOST", "gpu01")
		result := ResolveEnvVars("http://${TEST_HOST}:8000/v1")
		if result != "http://gpu01:8000/v1" {
			t.Errorf("got %s", result)
		}
	})
}

func TestToProviderRegistryConfig(t *testing.T) {
	t.Setenv("TEST_OPENROUTER_KEY", "or-key-123")

	cfg := &Config{
		LLMProviders: map[string]LLMProviderCfg{
			"or": {
				Type:           "openrouter",
				APIKey:         "${TEST_OPENROUTER_KEY}",
				RateLimit:      30,
				TimeoutSeconds: 90,
				Enabled:        true,
			},
		},
	}

	reg := cfg.ToProviderRegistryConfig()
	got := reg.LLMProviders["or"]
	if got.APIKey != "or-key-123" {
		t.Errorf("APIKey = %q", got.APIKey)
	}
	if got.Type != providers.TypeOpenRouter || got.RateLimit != 30 || got.Timeout.Seconds() != 90 {
		t.Errorf("unexpected provider config: %+v", got)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"unknown provider type", func(c *Config) {
			c.LLMProviders["bad"] = LLMProviderCfg{Type: "gpt-local"}
		}},
		{"default provider missing", func(c *Config) {
			c.Defaults.LLMProvider = "nope"
		}},
		{"negative rate limit", func(c *Config) {
			p := c.LLMProviders["vllm"]
			p.RateLimit = -1
			c.LLMProviders["vllm"] = p
		}},
		{"temperature out of range", func(c *Config) {
			c.Defaults.Temperature = 3
		}},
		{"bad log level", func(c *Config) {
			c.Log.Level = "verbose"
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestNewManager(t *testing.T) {
	t.Run("loads from config file", func(t *testing.T) {
		configFile := filepath.Join(t.TempDir(), "config.yaml")

		configContent := `
llm_providers:
  local:
    type: ollama
    model: qwen3:8b
    enabled: true
defaults:
  llm_provider: local
  seed: 7
paths:
  data_dir: /data/taska
`
		if err := os.WriteFile(configFile, []byte(configContent), 0o644); err != nil {
			t.Fatalf("failed to write config file: %v", err)
		}

		mgr, err := NewManager(configFile)
		if err != nil {
			t.Fatalf("failed to create manager: %v", err)
		}

		cfg := mgr.Get()
		if cfg.Defaults.LLMProvider != "local" || cfg.Defaults.Seed != 7 {
			t.Errorf("unexpected defaults: %+v", cfg.Defaults)
		}
		if cfg.LLMProviders["local"].Type != "ollama" {
			t.Errorf("unexpected providers: %+v", cfg.LLMProviders)
		}
		if cfg.Paths.DataDir != "/data/taska" {
			t.Errorf("DataDir = %q", cfg.Paths.DataDir)
		}
		// Unset keys fall back to defaults
		if cfg.Defaults.Temperature != 0.6 || cfg.Paths.ExampleDir == "" {
			t.Errorf("defaults not applied: %+v %+v", cfg.Defaults, cfg.Paths)
		}
		if mgr.ConfigFile() != configFile {
			t.Errorf("ConfigFile() = %q", mgr.ConfigFile())
		}
	})

	t.Run("defaults without a file", func(t *testing.T) {
		t.Chdir(t.TempDir())
		mgr, err := NewManager("", t.TempDir())
		if err != nil {
			t.Fatalf("failed to create manager: %v", err)
		}
		if mgr.Get().Defaults.LLMProvider != "vllm" {
			t.Errorf("unexpected default provider: %q", mgr.Get().Defaults.LLMProvider)
		}
	})

	t.Run("environment overrides", func(t *testing.T) {
		t.Chdir(t.TempDir())
		t.Setenv("TEXT2ONTO_DEFAULTS_SEED", "99")
		t.Setenv("TEXT2ONTO_LOG_LEVEL", "debug")

		mgr, err := NewManager("")
		if err != nil {
			t.Fatalf("failed to create manager: %v", err)
		}
		cfg := mgr.Get()
		if cfg.Defaults.Seed != 99 || cfg.Log.Level != "debug" {
			t.Errorf("env overrides not applied: seed=%d level=%s", cfg.Defaults.Seed, cfg.Log.Level)
		}
	})

	t.Run("missing explicit file is an error", func(t *testing.T) {
		if _, err := NewManager(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
			t.Error("expected error")
		}
	})
}

func TestWriteDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := WriteDefault(path); err != nil {
		t.Fatalf("WriteDefault() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(data), "# text2onto configuration") {
		t.Error("missing header")
	}

	mgr, err := NewManager(path)
	if err != nil {
		t.Fatalf("written default should load: %v", err)
	}
	if mgr.Get().LLMProviders["vllm"].BaseURL != "http://localhost:8000/v1" {
		t.Errorf("unexpected vllm provider: %+v", mgr.Get().LLMProviders["vllm"])
	}
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	if err := os.WriteFile(path, []byte("TEXT2ONTO_TEST_DOTENV=from-file\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.Unsetenv("TEXT2ONTO_TEST_DOTENV") })

	if err := LoadDotEnv(filepath.Join(dir, "missing.env"), path); err != nil {
		t.Fatalf("LoadDotEnv() error = %v", err)
	}
	if got := os.Getenv("TEXT2ONTO_TEST_DOTENV"); got != "from-file" {
		t.Errorf("env = %q", got)
	}
}
