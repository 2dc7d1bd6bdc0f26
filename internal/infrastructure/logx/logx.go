package logx

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var logger *zap.Logger

func init() {
	logger = zap.Must(zap.NewProduction())
}

// L returns the package-level logger instance.
func L() *zap.Logger {
	return logger
}

// Configure rebuilds the package logger at the given level. Unknown level
// strings keep the current logger.
func Configure(level string) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	if l, err := cfg.Build(); err == nil {
		logger = l
	}
}
