package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/jackzampolin/text2onto/internal/config"
	"github.com/jackzampolin/text2onto/internal/home"
)

// parseLevel maps a level name to slog.Level.
func parseLevel(name string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToUpper(name))); err != nil {
		return slog.LevelInfo, fmt.Errorf("invalid log level %q", name)
	}
	return level, nil
}

// newLogger builds the process logger: text to stderr, plus a rotating file
// under the home logs directory when enabled. The returned closer flushes the
// file sink.
func newLogger(cfg config.LogCfg, levelOverride string, h *home.Dir) (*slog.Logger, io.Closer, error) {
	name := cfg.Level
	if levelOverride != "" {
		name = levelOverride
	}
	level, err := parseLevel(name)
	if err != nil {
		return nil, nil, err
	}

	var w io.Writer = os.Stderr
	var closer io.Closer = nopCloser{}
	if cfg.ToFile && h != nil {
		if err := h.EnsureExists(); err != nil {
			return nil, nil, err
		}
		file := &lumberjack.Logger{
			Filename:   h.LogFilePath(),
			MaxSize:    cfg.MaxSizeMB,
			MaxBackups: cfg.MaxBackups,
		}
		w = io.MultiWriter(os.Stderr, file)
		closer = file
	}

	logger := slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
	return logger, closer, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
