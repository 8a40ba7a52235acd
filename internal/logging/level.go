package logging

import (
	"fmt"
	"strings"

	"github.com/hashicorp/go-hclog"
)

// Level is the severity of a log record.
type Level int

const (
	Trace Level = iota
	Debug
	Information
	Warning
	Error
	Critical
	None
)

var levelNames = map[Level]string{
	Trace:       "Trace",
	Debug:       "Debug",
	Information: "Information",
	Warning:     "Warning",
	Error:       "Error",
	Critical:    "Critical",
	None:        "None",
}

func (l Level) String() string {
	if name, ok := levelNames[l]; ok {
		return name
	}
	return fmt.Sprintf("Level(%d)", int(l))
}

// Levels returns every level from Trace to None.
func Levels() []Level {
	return []Level{Trace, Debug, Information, Warning, Error, Critical, None}
}

// ParseLevel parses a level name case-insensitively. "info" and "warn"
// are accepted as short forms.
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(s) {
	case "trace":
		return Trace, nil
	case "debug":
		return Debug, nil
	case "information", "info":
		return Information, nil
	case "warning", "warn":
		return Warning, nil
	case "error":
		return Error, nil
	case "critical":
		return Critical, nil
	case "none":
		return None, nil
	default:
		return None, fmt.Errorf("logging: unknown level %q", s)
	}
}

// hclogLevel converts l to the closest hclog level. hclog has no
// critical level, so Critical records are written at Error.
func (l Level) hclogLevel() hclog.Level {
	switch l {
	case Trace:
		return hclog.Trace
	case Debug:
		return hclog.Debug
	case Information:
		return hclog.Info
	case Warning:
		return hclog.Warn
	case Error, Critical:
		return hclog.Error
	default:
		return hclog.Off
	}
}
