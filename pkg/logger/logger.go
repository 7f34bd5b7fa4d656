// Package logger builds the zap loggers used across the gateway client.
package logger

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config selects a logger's verbosity and encoding.
type Config struct {
	// Level is one of debug, info, warn, error.
	Level string

	// Format is "json" for production encoding or "console" for
	// human-readable colored output.
	Format string
}

// New builds a zap logger from the given config.
func New(cfg Config) (*zap.Logger, error) {
	level, err := zap.ParseAtomicLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
	}

	var zapCfg zap.Config
	switch cfg.Format {
	case "console":
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	default:
		zapCfg = zap.NewProductionConfig()
	}
	zapCfg.Level = level

	logger, err := zapCfg.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}
	return logger, nil
}

// NewDevelopment creates a debug-level logger with console output.
func NewDevelopment() (*zap.Logger, error) {
	return New(Config{Level: "debug", Format: "console"})
}

// NewProduction creates an info-level logger with JSON output.
func NewProduction() (*zap.Logger, error) {
	return New(Config{Level: "info", Format: "json"})
}
