// Package ormlog routes the ORM's internal diagnostics to the program's
// generic structured logger.
package ormlog

import (
	"reflect"

	"github.com/mickamy/fetchmany-repro/internal/logging"
	"github.com/mickamy/fetchmany-repro/orm"
)

// CategoryPrefix is prepended to the ORM key name to form the logger category.
const CategoryPrefix = "Data.ORM."

// Factory implements orm.LoggerFactory on top of a logging.Factory.
type Factory struct {
	loggers logging.Factory
}

var _ orm.LoggerFactory = (*Factory)(nil)

// NewFactory returns a Factory creating loggers from loggers.
func NewFactory(loggers logging.Factory) *Factory {
	return &Factory{loggers: loggers}
}

func (f *Factory) LoggerFor(keyName string) orm.Logger {
	return New(f.loggers.CreateLogger(CategoryPrefix + keyName))
}

// LoggerForType creates a logger named after t. Pointer types are named
// after their element type.
func (f *Factory) LoggerForType(t reflect.Type) orm.Logger {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return f.LoggerFor(t.Name())
}

// Adapter is an orm.Logger delegating to a logging.Logger. It keeps no
// state and formats nothing itself: format and arguments are handed to
// the delegate as they are.
type Adapter struct {
	log logging.Logger
}

var _ orm.Logger = (*Adapter)(nil)

// New wraps log.
func New(log logging.Logger) *Adapter {
	return &Adapter{log: log}
}

func (a *Adapter) IsEnabled(level orm.LogLevel) bool {
	return a.log.IsEnabled(MapLevel(level))
}

func (a *Adapter) Log(level orm.LogLevel, v orm.LogValues, err error) {
	a.log.Log(MapLevel(level), err, v.Format, v.Args...)
}

// MapLevel converts an ORM level to the generic scale. Unknown levels
// map to Trace.
func MapLevel(level orm.LogLevel) logging.Level {
	switch level {
	case orm.LogTrace:
		return logging.Trace
	case orm.LogDebug:
		return logging.Debug
	case orm.LogInfo:
		return logging.Information
	case orm.LogWarn:
		return logging.Warning
	case orm.LogError:
		return logging.Error
	case orm.LogFatal:
		return logging.Critical
	case orm.LogNone:
		return logging.None
	default:
		return logging.Trace
	}
}
