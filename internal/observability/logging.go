// Package observability provides structured logging for the simulator and a
// battle observer that records engine events.
package observability

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/cory-johannsen/gospelrpg/internal/config"
)

// NewLogger builds the logger for one simulator binary. Every entry carries
// the binary's name, and battle event entries are never sampled away.
//
// Precondition: cfg.Level must be one of "debug", "info", "warn", "error".
// Precondition: cfg.Format must be "json" or "console".
// Precondition: component must be non-empty.
// Postcondition: Returns a logger named component or a non-nil error.
func NewLogger(cfg config.LoggingConfig, component string) (*zap.Logger, error) {
	if component == "" {
		return nil, fmt.Errorf("logger component must not be empty")
	}
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("parsing log level %q: %w", cfg.Level, err)
	}

	var zapCfg zap.Config
	switch cfg.Format {
	case "json":
		zapCfg = zap.NewProductionConfig()
	case "console":
		zapCfg = zap.NewDevelopmentConfig()
	default:
		return nil, fmt.Errorf("unknown log format %q", cfg.Format)
	}

	// A battle emits bursts of identical damage entries.
	zapCfg.Sampling = nil
	zapCfg.Level = zap.NewAtomicLevelAt(level)
	zapCfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	zapCfg.InitialFields = map[string]any{"app": "gospelrpg"}

	logger, err := zapCfg.Build()
	if err != nil {
		return nil, fmt.Errorf("building %s logger: %w", component, err)
	}
	return logger.Named(component), nil
}
