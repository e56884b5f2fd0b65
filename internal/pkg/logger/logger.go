// Package logger builds the zap loggers of the API and worker binaries.
package logger

import (
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config returns the zap configuration for a service at the given level.
// Production output is JSON with ISO8601 timestamps; "debug" switches to a
// colored console encoder for local runs. Unknown levels fall back to info.
func Config(service, level string) zap.Config {
	lvl := parseLevel(level)

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.InitialFields = map[string]interface{}{"service": service}

	if lvl == zapcore.DebugLevel {
		cfg.Development = true
		cfg.Encoding = "console"
		cfg.Sampling = nil
		cfg.EncoderConfig = zap.NewDevelopmentEncoderConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	return cfg
}

// New builds the logger of one binary. Every entry carries the service name
// so API and worker output can share a sink.
func New(service, level string) (*zap.Logger, error) {
	return Config(service, level).Build()
}

func parseLevel(level string) zapcore.Level {
	// "warning" is what most env files use
	if strings.EqualFold(strings.TrimSpace(level), "warning") {
		return zapcore.WarnLevel
	}

	var lvl zapcore.Level
	if err := lvl.UnmarshalText([]byte(strings.TrimSpace(level))); err != nil {
		return zapcore.InfoLevel
	}
	return lvl
}
