// Package logging wraps zap for the export pipeline. Debug mode switches
// to a console encoder at debug level so every pipeline step is visible;
// otherwise the library stays quiet apart from warnings.
package logging

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger wraps zap.Logger with library defaults.
type Logger struct {
	*zap.Logger
}

// New builds a logger. With debug set it logs every pipeline step to the
// console; otherwise it emits JSON at warn level and above.
func New(debug bool) *Logger {
	var cfg zap.Config
	if debug {
		cfg = zap.NewDevelopmentConfig()
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	} else {
		cfg = zap.NewProductionConfig()
		cfg.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
		cfg.DisableStacktrace = true
	}

	logger, err := cfg.Build()
	if err != nil {
		return Nop()
	}
	return &Logger{Logger: logger.Named("agentlens")}
}

// Nop returns a logger that discards everything.
func Nop() *Logger {
	return &Logger{Logger: zap.NewNop()}
}

// Wrap adopts a caller-supplied zap logger.
func Wrap(l *zap.Logger) *Logger {
	if l == nil {
		return Nop()
	}
	return &Logger{Logger: l}
}
