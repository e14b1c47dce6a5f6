package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"

	"github.com/jackzampolin/text2onto/internal/config"
	"github.com/jackzampolin/text2onto/internal/home"
	"github.com/jackzampolin/text2onto/internal/prompts/catalog"
	"github.com/jackzampolin/text2onto/internal/providers"
	"github.com/jackzampolin/text2onto/internal/svcctx"
)

// app bundles everything a command needs after startup.
type app struct {
	home     *home.Dir
	manager  *config.Manager
	services *svcctx.Services
	logger   *slog.Logger
	closer   io.Closer
}

// Close flushes the log file sink.
func (a *app) Close() error {
	if a.closer == nil {
		return nil
	}
	return a.closer.Close()
}

// setup loads .env files and config, then builds the logger, the provider
// registry and the prompt resolver. promptDir overrides paths.prompt_dir when
// set.
func setup(promptDir string) (*app, error) {
	h, err := home.New(homeDir)
	if err != nil {
		return nil, err
	}

	// .env in the working directory wins over the home one; godotenv never
	// overwrites a variable that is already set.
	if err := config.LoadDotEnv(".env", h.DotEnvPath()); err != nil {
		return nil, err
	}

	mgr, err := config.NewManager(cfgFile, h.Path())
	if err != nil {
		return nil, err
	}
	cfg := mgr.Get()

	logger, closer, err := newLogger(cfg.Log, logLevel, h)
	if err != nil {
		return nil, err
	}
	if f := mgr.ConfigFile(); f != "" {
		logger.Debug("loaded config", "file", f)
	}

	registry, err := providers.NewRegistryFromConfig(cfg.ToProviderRegistryConfig(), logger)
	if err != nil {
		_ = closer.Close()
		return nil, fmt.Errorf("failed to create provider registry: %w", err)
	}

	dir := cfg.Paths.PromptDir
	if promptDir != "" {
		dir = promptDir
	}
	if dir == "" && h.PromptsExist() {
		dir = h.PromptsPath()
	}
	if dir != "" {
		dir, _ = filepath.Abs(dir)
		logger.Debug("prompt overrides enabled", "dir", dir)
	}

	return &app{
		home:    h,
		manager: mgr,
		services: &svcctx.Services{
			Registry: registry,
			Prompts:  catalog.New(dir, logger),
			Config:   cfg,
			Logger:   logger,
			Home:     h,
		},
		logger: logger,
		closer: closer,
	}, nil
}

// withServices attaches the services to ctx.
func (a *app) withServices(ctx context.Context) context.Context {
	return svcctx.WithServices(ctx, a.services)
}
