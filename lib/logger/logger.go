package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// level is shared by every logger created through New so the CLI can
// raise or lower verbosity for all components at once.
var level = zap.NewAtomicLevelAt(zapcore.InfoLevel)

// New returns a sugared logger named after the given service.
func New(service string, options ...zap.Option) (*zap.SugaredLogger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = level
	cfg.Encoding = "console"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.DisableStacktrace = true

	log, err := cfg.Build(options...)
	if err != nil {
		return zap.NewNop().Sugar(), err
	}

	return log.Named(service).Sugar(), nil
}

func SetLevel(l zapcore.Level) {
	level.SetLevel(l)
}
