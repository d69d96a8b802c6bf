// Package log is a thin package-level wrapper around zap so callers don't
// carry a logger instance through every constructor.
package log

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var logger = newDefault()

func newDefault() *zap.Logger {
	cfg := zap.NewProductionConfig()
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	l, err := cfg.Build(zap.AddCallerSkip(1))
	if err != nil {
		return zap.NewNop()
	}
	return l
}

// SetDebug switches the process logger to development output with debug level.
func SetDebug() {
	cfg := zap.NewDevelopmentConfig()
	l, err := cfg.Build(zap.AddCallerSkip(1))
	if err != nil {
		return
	}
	logger = l
}

func Debug(msg string, fields ...zap.Field) { logger.Debug(msg, fields...) }

func Info(msg string, fields ...zap.Field) { logger.Info(msg, fields...) }

func Warn(msg string, fields ...zap.Field) { logger.Warn(msg, fields...) }

func Error(msg string, fields ...zap.Field) { logger.Error(msg, fields...) }

func Fatal(msg string, fields ...zap.Field) { logger.Fatal(msg, fields...) }

// Sync flushes buffered log entries. Call on shutdown.
func Sync() { _ = logger.Sync() }
