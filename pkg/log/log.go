package log

import (
	"fmt"
	"log"
	"os"
	"strings"
)

// A Logger provides leveled, Printf-style logging for one portal component.
// The functions must be safe for concurrent use. A discarded level is silent.
type Logger struct {
	moduleName string
	Verbosef   func(format string, args ...any)
	Infof      func(format string, args ...any)
	Warningf   func(format string, args ...any)
	Errorf     func(format string, args ...any)
}

// Log levels for use with NewLogger.
const (
	LogLevelSilent  = iota // No logging
	LogLevelVerbose        // Debug logging
	LogLevelInfo           // Info logging
	LogLevelWarning        // Warning logging
	LogLevelError          // Error logging
)

// Loglevel is the process-wide default used by components that do not
// carry an explicit level.
var Loglevel = LogLevelInfo

// SetLogLevel sets the process-wide default from its string form.
func SetLogLevel(level string) {
	Loglevel = logLevel(level)
}

func logLevel(level string) int {
	switch strings.ToLower(level) {
	case "error":
		return LogLevelError
	case "verbose":
		return LogLevelVerbose
	case "info":
		return LogLevelInfo
	case "warning":
		return LogLevelWarning
	default:
		return LogLevelSilent
	}
}

// DiscardLogf is a Logger function that drops the line.
func DiscardLogf(format string, args ...any) {}

func (logger *Logger) logf(prefix string) func(string, ...any) {
	return log.New(os.Stdout, fmt.Sprintf("[%s] %s: ", logger.moduleName, prefix), log.Ldate|log.Ltime|log.Lshortfile).Printf
}

// NewLogger constructs a Logger that writes to stdout at the given level
// and above, decorated with the component name, level, date and time.
func NewLogger(level int, moduleName string) *Logger {
	logger := &Logger{moduleName, DiscardLogf, DiscardLogf, DiscardLogf, DiscardLogf}
	logger.set(level)
	return logger
}

func (logger *Logger) SetLogLevel(level string) *Logger {
	return logger.set(logLevel(level))
}

func (logger *Logger) set(level int) *Logger {
	switch level {
	case LogLevelSilent:
		logger.Verbosef = DiscardLogf
		logger.Infof = DiscardLogf
		logger.Warningf = DiscardLogf
		logger.Errorf = DiscardLogf
	case LogLevelVerbose:
		logger.Verbosef = logger.logf("DEBUG")
		logger.Infof = logger.logf("INFO")
		logger.Warningf = logger.logf("WARNING")
		logger.Errorf = logger.logf("ERROR")
	case LogLevelInfo:
		logger.Verbosef = DiscardLogf
		logger.Infof = logger.logf("INFO")
		logger.Warningf = logger.logf("WARNING")
		logger.Errorf = logger.logf("ERROR")
	case LogLevelWarning:
		logger.Verbosef = DiscardLogf
		logger.Infof = DiscardLogf
		logger.Warningf = logger.logf("WARNING")
		logger.Errorf = logger.logf("ERROR")
	case LogLevelError:
		logger.Verbosef = DiscardLogf
		logger.Infof = DiscardLogf
		logger.Warningf = DiscardLogf
		logger.Errorf = logger.logf("ERROR")
	}
	return logger
}
