package home

import (
	"fmt"
	"os"
	"path/filepath"
)

const (
	// DefaultDirName is the default name for the text2onto home directory.
	DefaultDirName = ".text2onto"

	// LogsDirName is the subdirectory for rotated log files.
	LogsDirName = "logs"

	// PromptsDirName is the subdirectory searched for prompt overrides.
	PromptsDirName = "prompts"

	// ConfigFileName is the default config file name.
	ConfigFileName = "config.yaml"

	// LogFileName is the name of the rotating log file.
	LogFileName = "text2onto.log"

	// DotEnvFileName holds API keys loaded into the environment at startup.
	DotEnvFileName = ".env"
)

// Dir represents the text2onto home directory structure.
type Dir struct {
	path string
}

// New creates a new Dir with the given path.
// If path is empty, uses the default (~/.text2onto).
func New(path string) (*Dir, error) {
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get user home directory: %w", err)
		}
		path = filepath.Join(home, DefaultDirName)
	}

	return &Dir{path: path}, nil
}

// Path returns the root path of the home directory.
func (d *Dir) Path() string {
	return d.path
}

// LogsPath returns the path to the logs directory.
func (d *Dir) LogsPath() string {
	return filepath.Join(d.path, LogsDirName)
}

// LogFilePath returns the path of the rotating log file.
func (d *Dir) LogFilePath() string {
	return filepath.Join(d.LogsPath(), LogFileName)
}

// PromptsPath returns the default prompt override directory.
func (d *Dir) PromptsPath() string {
	return filepath.Join(d.path, PromptsDirName)
}

// ConfigPath returns the path to the default config file.
func (d *Dir) ConfigPath() string {
	return filepath.Join(d.path, ConfigFileName)
}

// DotEnvPath returns the path to the home .env file.
func (d *Dir) DotEnvPath() string {
	return filepath.Join(d.path, DotEnvFileName)
}

// EnsureExists creates the home directory and subdirectories if they don't exist.
func (d *Dir) EnsureExists() error {
	// Create logs directory (this also creates the parent)
	if err := os.MkdirAll(d.LogsPath(), 0o755); err != nil {
		return fmt.Errorf("failed to create logs directory: %w", err)
	}
	return nil
}

// Exists returns true if the home directory exists.
func (d *Dir) Exists() bool {
	_, err := os.Stat(d.path)
	return err == nil
}

// ConfigExists returns true if the config file exists in the home directory.
func (d *Dir) ConfigExists() bool {
	_, err := os.Stat(d.ConfigPath())
	return err == nil
}

// PromptsExist returns true if the prompt override directory exists.
func (d *Dir) PromptsExist() bool {
	info, err := os.Stat(d.PromptsPath())
	return err == nil && info.IsDir()
}
