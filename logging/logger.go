// Package logging builds the zap loggers used across the admin.
package logging

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New creates a zap logger writing console-encoded entries to stderr. Debug
// enables debug level, which includes SQL statements.
func New(debug bool) *zap.Logger {
	return zap.New(NewCore(debug, zapcore.AddSync(os.Stderr)))
}

// NewCore creates the console core behind New, writing to sink
func NewCore(debug bool, sink zapcore.WriteSyncer) zapcore.Core {
	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.TimeKey = "ts"
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderCfg.EncodeLevel = zapcore.CapitalLevelEncoder

	level := zapcore.InfoLevel
	if debug {
		level = zapcore.DebugLevel
	}

	return zapcore.NewCore(zapcore.NewConsoleEncoder(encoderCfg), sink, level)
}
