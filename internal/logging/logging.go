// Package logging builds the logrus loggers handed to discovery and the API
// client. Nothing in the module logs through a package-level logger.
package logging

import (
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// Standard field names for structured logging.
const (
	FieldComponent = "component"
	FieldOperation = "operation"
	FieldRunID     = "run_id"
	FieldPID       = "pid"
	FieldPort      = "port"
	FieldPorts     = "ports"
	FieldURL       = "url"
	FieldDuration  = "duration_ms"
	FieldError     = "error"
	FieldPlatform  = "platform"
)

// Options configures New.
type Options struct {
	// Level is one of debug, info, warn, error. Defaults to warn.
	Level string
	// Format is text, json or auto. Auto picks text on a TTY and JSON
	// otherwise.
	Format string
	// Out defaults to os.Stderr.
	Out io.Writer
}

// New creates a logger from opts.
func New(opts Options) *logrus.Logger {
	logger := logrus.New()

	out := opts.Out
	if out == nil {
		out = os.Stderr
	}
	logger.SetOutput(out)
	logger.SetLevel(ParseLevel(opts.Level))

	text := &logrus.TextFormatter{DisableTimestamp: true}
	jsonFmt := &logrus.JSONFormatter{DisableTimestamp: true}
	switch strings.ToLower(opts.Format) {
	case "json":
		logger.SetFormatter(jsonFmt)
	case "text":
		logger.SetFormatter(text)
	default:
		if isTerminal(out) {
			logger.SetFormatter(text)
		} else {
			logger.SetFormatter(jsonFmt)
		}
	}
	return logger
}

// ParseLevel maps a level name to a logrus level, falling back to warn.
func ParseLevel(level string) logrus.Level {
	switch strings.ToLower(level) {
	case "debug":
		return logrus.DebugLevel
	case "info":
		return logrus.InfoLevel
	case "error":
		return logrus.ErrorLevel
	default:
		return logrus.WarnLevel
	}
}

// Discard returns a logger that drops everything.
func Discard() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

// OrDiscard returns l, or a discarding logger if l is nil.
func OrDiscard(l logrus.FieldLogger) logrus.FieldLogger {
	if l == nil {
		return Discard()
	}
	return l
}

// WithComponent tags l with a component name.
func WithComponent(l logrus.FieldLogger, component string) logrus.FieldLogger {
	return l.WithField(FieldComponent, component)
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	fi, err := f.Stat()
	if err != nil {
		return false
	}
	return (fi.Mode() & os.ModeCharDevice) != 0
}
