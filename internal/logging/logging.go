// Package logging is a thin leveled wrapper over the standard library
// logger, matching the "LEVEL: message" convention used throughout the
// cmd/iporg-* binaries (e.g. log.Printf("INFO: ...") / log.Fatalf("ERROR:
// ...")) instead of pulling in a structured logging library: nothing in
// the retrieval pack reaches for one (see DESIGN.md).
package logging

import "log"

// Level is a verbosity threshold, ordered DEBUG < INFO < WARNING < ERROR
// < CRITICAL to match original_source/firewall_autozoner.py's -x flag.
type Level int

const (
	Debug Level = iota
	Info
	Warning
	Error
	Critical
)

func (l Level) String() string {
	switch l {
	case Debug:
		return "DEBUG"
	case Info:
		return "INFO"
	case Warning:
		return "WARNING"
	case Error:
		return "ERROR"
	case Critical:
		return "CRITICAL"
	default:
		return "UNKNOWN"
	}
}

// ParseLevel maps the -x flag's choices (DEBUG, INFO, WARNING, ERROR,
// CRITICAL) to a Level, defaulting to Info on an unrecognized name.
func ParseLevel(s string) Level {
	switch s {
	case "DEBUG":
		return Debug
	case "INFO":
		return Info
	case "WARNING":
		return Warning
	case "ERROR":
		return Error
	case "CRITICAL":
		return Critical
	default:
		return Info
	}
}

// Logger gates log.Printf calls by a minimum Level.
type Logger struct {
	Min Level
}

// New returns a Logger that suppresses anything below min.
func New(min Level) *Logger {
	return &Logger{Min: min}
}

func (lg *Logger) log(l Level, format string, args ...any) {
	if l < lg.Min {
		return
	}
	log.Printf(l.String()+": "+format, args...)
}

func (lg *Logger) Debugf(format string, args ...any)    { lg.log(Debug, format, args...) }
func (lg *Logger) Infof(format string, args ...any)     { lg.log(Info, format, args...) }
func (lg *Logger) Warningf(format string, args ...any)  { lg.log(Warning, format, args...) }
func (lg *Logger) Errorf(format string, args ...any)    { lg.log(Error, format, args...) }
func (lg *Logger) Criticalf(format string, args ...any) { lg.log(Critical, format, args...) }
