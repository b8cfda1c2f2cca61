package contracts

import "time"

// LogLevel represents the severity level for logging.
type LogLevel int

const (
	// InfoLevel reports capture sessions, playback passes and device selection.
	InfoLevel LogLevel = iota
	// DebugLevel reports every stamped, dispatched or paired event.
	DebugLevel
	// ErrorLevel reports failures surfaced to the caller (I/O, decode, transport).
	ErrorLevel
	// WarnLevel reports recoverable oddities such as dropped or unmatched events.
	WarnLevel
	// FatalLevel logs and aborts the process.
	FatalLevel
)

// String returns the lower-case name used in configuration files.
func (l LogLevel) String() string {
	switch l {
	case InfoLevel:
		return "info"
	case DebugLevel:
		return "debug"
	case ErrorLevel:
		return "error"
	case WarnLevel:
		return "warn"
	case FatalLevel:
		return "fatal"
	default:
		return "unknown"
	}
}

// ParseLogLevel maps a configuration string to a LogLevel.
// Unknown names fall back to InfoLevel and ok is false.
func ParseLogLevel(s string) (level LogLevel, ok bool) {
	switch s {
	case "info", "":
		return InfoLevel, s != ""
	case "debug":
		return DebugLevel, true
	case "error":
		return ErrorLevel, true
	case "warn", "warning":
		return WarnLevel, true
	case "fatal":
		return FatalLevel, true
	}
	return InfoLevel, false
}

// LogDestination specifies where the log messages should be directed.
type LogDestination string

const (
	// ConsoleLog directs log messages to stderr.
	ConsoleLog LogDestination = "console"
	// FileLog directs log messages to a file.
	FileLog LogDestination = "file"
)

// Field is a typed key/value pair attached to a log entry.
// Loggers hand out an empty Field through Logger.Field and each call
// returns a new populated one.
type Field interface {
	Bool(key string, val bool) Field
	Int(key string, val int) Field
	Float64(key string, val float64) Field
	String(key string, val string) Field
	Time(key string, val time.Time) Field
	Duration(key string, val time.Duration) Field
	Int64(key string, val int64) Field
	Error(key string, val error) Field
	Uint64(key string, val uint64) Field
	Uint8(key string, val uint8) Field
}

// Logger records messages at different levels.
type Logger interface {
	Info(msg string, fields ...Field)
	Error(msg string, fields ...Field)
	Debug(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
	Fatal(msg string, fields ...Field)

	Field() Field

	SetLevel(level LogLevel)
	SetDestination(dest LogDestination, filePath ...string)
}
