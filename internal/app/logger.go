package app

import (
	"fmt"
	"slices"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Levels lists the accepted log levels.
var Levels = []string{"debug", "info", "warn", "error"}

// NewLogger builds a console logger for format "text" (or "") and a JSON
// production logger for "json". The level must be one of Levels.
func NewLogger(level, format string) (*zap.Logger, error) {
	if !slices.Contains(Levels, level) {
		return nil, fmt.Errorf("invalid log level %q (want one of %s)", level, strings.Join(Levels, ", "))
	}
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}

	var cfg zap.Config
	switch format {
	case "", "text":
		cfg = zap.NewDevelopmentConfig()
		cfg.DisableStacktrace = true
	case "json":
		cfg = zap.NewProductionConfig()
	default:
		return nil, fmt.Errorf("invalid log format %q (want text or json)", format)
	}
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	cfg.OutputPaths = []string{"stderr"}
	return cfg.Build()
}
