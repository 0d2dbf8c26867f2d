package logger

import "github.com/user/asciiplay/pkg/ports"

// NoopLogger discards everything. The CLI uses it for --quiet.
type NoopLogger struct{}

func NewNoop() *NoopLogger { return &NoopLogger{} }

func (l *NoopLogger) Debug(string, ...interface{}) {}
func (l *NoopLogger) Info(string, ...interface{})  {}
func (l *NoopLogger) Warn(string, ...interface{})  {}
func (l *NoopLogger) Error(string, ...interface{}) {}

func (l *NoopLogger) WithComponent(string) ports.Logger { return l }
