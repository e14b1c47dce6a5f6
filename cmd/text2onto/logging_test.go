package main

import (
	"context"
	"log/slog"
	"os"
	"strings"
	"testing"

	"github.com/jackzampolin/text2onto/internal/config"
	"github.com/jackzampolin/text2onto/internal/home"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug": slog.LevelDebug,
		"info":  slog.LevelInfo,
		"WARN":  slog.LevelWarn,
		"error": slog.LevelError,
	}
	for name, want := range tests {
		got, err := parseLevel(name)
		if err != nil || got != want {
			t.Errorf("parseLevel(%q) = %v, %v", name, got, err)
		}
	}
	if _, err := parseLevel("loud"); err == nil {
		t.Error("expected error for unknown level")
	}
}

func TestNewLoggerWritesFile(t *testing.T) {
	h, _ := home.New(t.TempDir())
	logger, closer, err := newLogger(config.LogCfg{Level: "info", ToFile: true, MaxSizeMB: 1}, "debug", h)
	if err != nil {
		t.Fatalf("newLogger() error = %v", err)
	}
	if !logger.Enabled(context.Background(), slog.LevelDebug) {
		t.Error("level override should enable debug")
	}
	logger.Info("hello from test")
	if err := closer.Close(); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(h.LogFilePath())
	if err != nil {
		t.Fatalf("log file should exist: %v", err)
	}
	if !strings.Contains(string(data), "hello from test") {
		t.Errorf("log file missing message: %q", data)
	}
}
