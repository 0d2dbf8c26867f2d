// Package ports defines the interfaces of the collaborators around the playback core:
// the video decoding service, the character display and the logger.
package ports

// LogLevel represents the severity level of a log message.
type LogLevel int

const (
	// LevelDebug is for per-component details such as state transitions.
	LevelDebug LogLevel = iota
	// LevelInfo is for session-level progress.
	LevelInfo
	// LevelWarn is for recoverable problems that don't stop playback.
	LevelWarn
	// LevelError is for problems that end playback.
	LevelError
	// LevelQuiet suppresses all log output.
	LevelQuiet
)

// String returns the string representation of the log level.
func (l LogLevel) String() string {
	switch l {
	case LevelDebug:
		return "debug"
	case LevelInfo:
		return "info"
	case LevelWarn:
		return "warn"
	case LevelError:
		return "error"
	case LevelQuiet:
		return "quiet"
	default:
		return "unknown"
	}
}

// ParseLogLevel parses a string into a LogLevel.
// Unknown names report ok=false and fall back to LevelWarn, which keeps the
// terminal quiet while a video is playing.
func ParseLogLevel(s string) (level LogLevel, ok bool) {
	switch s {
	case "debug":
		return LevelDebug, true
	case "info":
		return LevelInfo, true
	case "warn":
		return LevelWarn, true
	case "error":
		return LevelError, true
	case "quiet":
		return LevelQuiet, true
	default:
		return LevelWarn, false
	}
}

// Logger abstracts logging operations with multi-language support.
type Logger interface {
	// Debug logs a debug message. The msg parameter is a translatable message key.
	Debug(msg string, args ...interface{})

	// Info logs an informational message.
	Info(msg string, args ...interface{})

	// Warn logs a warning message.
	Warn(msg string, args ...interface{})

	// Error logs an error message.
	Error(msg string, args ...interface{})

	// WithComponent returns a new Logger that prefixes messages with the component name.
	WithComponent(component string) Logger
}
