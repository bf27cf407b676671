package service

import "github.com/garyjia/procurement-hub/internal/domain/entity"

// Logger interface for minimal logging dependency
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
}

// ChainResolver returns the approval stages a new request in department goes through
type ChainResolver func(department string) []entity.ChainStage

// StaticChain resolves every department to the same stages
func StaticChain(stages []entity.ChainStage) ChainResolver {
	return func(string) []entity.ChainStage {
		return append([]entity.ChainStage(nil), stages...)
	}
}

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

func loggerOrNop(l Logger) Logger {
	if l == nil {
		return nopLogger{}
	}
	return l
}
