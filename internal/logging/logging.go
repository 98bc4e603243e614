// Package logging builds the zap logger shared by the commands.
package logging

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
)

// Options select the logger level and destination.
type Options struct {
	// Level is a zap level name; empty means "info".
	Level string
	// File receives the log when set, otherwise stderr. Full-screen programs always set it.
	File string
	// Dev switches to the human-readable development encoder.
	Dev bool
}

// New builds a SugaredLogger. The returned func flushes buffered entries.
func New(opts Options) (*zap.SugaredLogger, func(), error) {
	cfg := zap.NewProductionConfig()
	if opts.Dev {
		cfg = zap.NewDevelopmentConfig()
	}
	level := opts.Level
	if level == "" {
		level = "info"
	}
	lvl, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	cfg.Level = lvl
	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}
	if opts.File != "" {
		if err := os.MkdirAll(filepath.Dir(opts.File), 0o755); err != nil {
			return nil, nil, fmt.Errorf("failed to create log dir: %w", err)
		}
		cfg.OutputPaths = []string{opts.File}
		cfg.ErrorOutputPaths = []string{opts.File}
	}
	logger, err := cfg.Build()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to build logger: %w", err)
	}
	sugar := logger.Sugar()
	sync := func() {
		if err := logger.Sync(); err != nil {
			_ = err
		}
	}
	return sugar, sync, nil
}

// Nop returns a logger that discards everything.
func Nop() *zap.SugaredLogger {
	return zap.NewNop().Sugar()
}
