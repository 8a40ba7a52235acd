package orm

import (
	"fmt"
	"sync/atomic"
)

// LogLevel is the severity scale used by the ORM's internal diagnostics.
type LogLevel int

const (
	LogTrace LogLevel = iota
	LogDebug
	LogInfo
	LogWarn
	LogError
	LogFatal
	LogNone
)

func (l LogLevel) String() string {
	switch l {
	case LogTrace:
		return "Trace"
	case LogDebug:
		return "Debug"
	case LogInfo:
		return "Info"
	case LogWarn:
		return "Warn"
	case LogError:
		return "Error"
	case LogFatal:
		return "Fatal"
	case LogNone:
		return "None"
	default:
		return fmt.Sprintf("LogLevel(%d)", int(l))
	}
}

// LogValues is a log message that has not been formatted yet.
// Args are only rendered when String is called, which a Logger does
// only after deciding to write the record.
type LogValues struct {
	Format string
	Args   []any
}

func (v LogValues) String() string {
	if len(v.Args) == 0 {
		return v.Format
	}
	return fmt.Sprintf(v.Format, v.Args...)
}

// Logger is the interface the ORM writes its diagnostics to.
type Logger interface {
	IsEnabled(level LogLevel) bool
	Log(level LogLevel, v LogValues, err error)
}

// LoggerFactory hands out a Logger per internal component, identified
// by keyName ("SQL", "Loader", "Session", ...).
type LoggerFactory interface {
	LoggerFor(keyName string) Logger
}

type noLogger struct{}

func (noLogger) IsEnabled(LogLevel) bool        { return false }
func (noLogger) Log(LogLevel, LogValues, error) {}

type noLoggerFactory struct{}

func (noLoggerFactory) LoggerFor(string) Logger { return noLogger{} }

// NoLoggerFactory discards every record. It is installed until
// SetLoggerFactory is called.
var NoLoggerFactory LoggerFactory = noLoggerFactory{}

type factoryHolder struct{ f LoggerFactory }

var installed atomic.Pointer[factoryHolder]

// SetLoggerFactory installs f as the process-wide logging backend,
// replacing whatever was installed before. A nil f restores NoLoggerFactory.
func SetLoggerFactory(f LoggerFactory) {
	if f == nil {
		f = NoLoggerFactory
	}
	installed.Store(&factoryHolder{f: f})
}

// CurrentLoggerFactory returns the installed logging backend.
func CurrentLoggerFactory() LoggerFactory {
	if h := installed.Load(); h != nil {
		return h.f
	}
	return NoLoggerFactory
}

// LoggerFor returns a Logger for keyName from the installed backend.
// The lookup happens on every call so a newly installed factory takes
// effect immediately.
func LoggerFor(keyName string) Logger {
	return CurrentLoggerFactory().LoggerFor(keyName)
}

// internalLogger guards every record with IsEnabled so that arguments
// are never rendered for disabled levels.
type internalLogger struct {
	Logger
}

func logFor(keyName string) internalLogger {
	return internalLogger{LoggerFor(keyName)}
}

func (l internalLogger) logf(level LogLevel, err error, format string, args ...any) {
	if l.IsEnabled(level) {
		l.Log(level, LogValues{Format: format, Args: args}, err)
	}
}

func (l internalLogger) tracef(format string, args ...any) { l.logf(LogTrace, nil, format, args...) }
func (l internalLogger) debugf(format string, args ...any) { l.logf(LogDebug, nil, format, args...) }
func (l internalLogger) infof(format string, args ...any)  { l.logf(LogInfo, nil, format, args...) }

func (l internalLogger) errorf(err error, format string, args ...any) {
	l.logf(LogError, err, format, args...)
}
