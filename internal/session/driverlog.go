package session

import (
	"context"
	"fmt"
	"maps"

	"github.com/jackc/pgx/v5/tracelog"

	"github.com/mickamy/fetchmany-repro/internal/logging"
)

// driverLogger adapts a logging.Logger for use with pgx tracelog.
type driverLogger struct {
	log logging.Logger
}

func newDriverLogger(log logging.Logger) *driverLogger {
	return &driverLogger{log: log}
}

// Log implements tracelog.Logger. An "err" entry is attached as the
// record's error; everything else is written with the message.
func (l *driverLogger) Log(_ context.Context, level tracelog.LogLevel, msg string, data map[string]any) {
	if level == tracelog.LogLevelNone {
		return
	}
	target := loggingLevel(level)
	if !l.log.IsEnabled(target) {
		return
	}

	var err error
	if v, ok := data["err"]; ok {
		if e, ok := v.(error); ok {
			err = e
		} else {
			err = fmt.Errorf("%v", v)
		}
		data = maps.Clone(data)
		delete(data, "err")
	}
	if len(data) == 0 {
		l.log.Log(target, err, msg)
		return
	}
	l.log.Log(target, err, "%s %v", msg, data)
}

func loggingLevel(level tracelog.LogLevel) logging.Level {
	switch level {
	case tracelog.LogLevelTrace:
		return logging.Trace
	case tracelog.LogLevelDebug:
		return logging.Debug
	case tracelog.LogLevelInfo:
		return logging.Information
	case tracelog.LogLevelWarn:
		return logging.Warning
	case tracelog.LogLevelError:
		return logging.Error
	default:
		return logging.Information
	}
}

func tracelogLevel(level logging.Level) tracelog.LogLevel {
	switch level {
	case logging.Trace:
		return tracelog.LogLevelTrace
	case logging.Debug:
		return tracelog.LogLevelDebug
	case logging.Information:
		return tracelog.LogLevelInfo
	case logging.Warning:
		return tracelog.LogLevelWarn
	case logging.Error, logging.Critical:
		return tracelog.LogLevelError
	default:
		return tracelog.LogLevelNone
	}
}
