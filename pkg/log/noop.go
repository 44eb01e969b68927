package log

// NoopLogger discards everything. It is the default logger of the library
// packages and of tests.
type NoopLogger struct{}

var _ Logger = NoopLogger{}

// NewNoopLogger returns a NoopLogger.
func NewNoopLogger() *NoopLogger {
	return &NoopLogger{}
}

func (NoopLogger) Debug(string, ...Field) {}
func (NoopLogger) Info(string, ...Field)  {}
func (NoopLogger) Warn(string, ...Field)  {}
func (NoopLogger) Error(string, ...Field) {}
