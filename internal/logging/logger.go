package logging

import (
	"io"
	"time"

	"github.com/hashicorp/go-hclog"
)

// Logger writes records of one category.
type Logger interface {
	// IsEnabled reports whether records at level are written.
	IsEnabled(level Level) bool

	// Log writes a record at level. The message is format rendered with
	// args; err, when not nil, is attached to the record.
	Log(level Level, err error, format string, args ...any)
}

// Factory creates loggers by category.
type Factory interface {
	CreateLogger(category string) Logger
}

// Make sure that consoleLogger is a Logger.
var _ Logger = &consoleLogger{}

// ConsoleFactory writes every record as text to a single writer.
type ConsoleFactory struct {
	root hclog.Logger
	min  Level
}

// NewConsoleFactory creates a factory writing records at min or above to w.
func NewConsoleFactory(w io.Writer, min Level) *ConsoleFactory {
	return &ConsoleFactory{
		root: hclog.New(&hclog.LoggerOptions{
			Output: w,
			TimeFn: time.Now,
			Level:  min.hclogLevel(),
			Color:  hclog.ColorOff,
		}),
		min: min,
	}
}

// MinLevel returns the lowest level written.
func (f *ConsoleFactory) MinLevel() Level { return f.min }

func (f *ConsoleFactory) CreateLogger(category string) Logger {
	return &consoleLogger{log: f.root.Named(category), min: f.min}
}

type consoleLogger struct {
	log hclog.Logger
	min Level
}

func (l *consoleLogger) IsEnabled(level Level) bool {
	return level != None && level >= l.min
}

func (l *consoleLogger) Log(level Level, err error, format string, args ...any) {
	if !l.IsEnabled(level) {
		return
	}
	msg := format
	if len(args) > 0 {
		msg = sprintf(format, args...)
	}
	var kv []any
	if level == Critical {
		kv = append(kv, "severity", Critical.String())
	}
	if err != nil {
		kv = append(kv, "error", err)
	}
	l.log.Log(level.hclogLevel(), msg, kv...)
}

// nullFactory hands out loggers that are never enabled.
type nullFactory struct{}

func (nullFactory) CreateLogger(string) Logger { return nullLogger{} }

type nullLogger struct{}

func (nullLogger) IsEnabled(Level) bool             { return false }
func (nullLogger) Log(Level, error, string, ...any) {}

// NullFactory discards every record.
var NullFactory Factory = nullFactory{}
