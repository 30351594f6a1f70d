package neuroflow

import (
	"go.uber.org/zap"
)

// Logger is the logging interface consumed by the engine packages. It matches
// the method set of a sugared zap logger so one can be passed in directly.
type Logger interface {
	Debugw(msg string, keysAndValues ...interface{})
	Infow(msg string, keysAndValues ...interface{})
	Warnw(msg string, keysAndValues ...interface{})
	Errorw(msg string, keysAndValues ...interface{})
}

// NewStdLogger returns a development zap logger suitable for the cmd tools
// and for verbose runs.
func NewStdLogger() (Logger, error) {
	logger, err := zap.NewDevelopment()
	if err != nil {
		return nil, err
	}
	return logger.Sugar(), nil
}

// NopLogger returns a logger that discards everything. It is the default for
// process and system configs when no logger is supplied.
func NopLogger() Logger {
	return zap.NewNop().Sugar()
}
