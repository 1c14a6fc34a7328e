// Package log provides the emulator's leveled logging. Levels are a bit
// mask so a machine can select an arbitrary subset; FATAL always passes
// the mask and terminates the process after logging, unless a Handler
// has taken over output.
package log

import (
	"fmt"

	"github.com/sirupsen/logrus"
)

// Level is a bit flag identifying the severity of a message.
type Level uint8

const (
	LevelFatal Level = 1 << iota
	LevelError
	LevelWarn
	LevelInfo
	LevelDebug
	// LevelStub marks guest code exercising unimplemented hardware.
	LevelStub

	LevelAll = LevelFatal | LevelError | LevelWarn | LevelInfo | LevelDebug | LevelStub
	// LevelDefault is the mask a freshly created machine logs at.
	LevelDefault = LevelInfo | LevelWarn | LevelError | LevelFatal
)

func (l Level) String() string {
	switch l {
	case LevelFatal:
		return "FATAL"
	case LevelError:
		return "ERROR"
	case LevelWarn:
		return "WARN"
	case LevelInfo:
		return "INFO"
	case LevelDebug:
		return "DEBUG"
	case LevelStub:
		return "STUB"
	}
	return "LOG"
}

// Handler preempts normal output entirely when installed on a Logger.
type Handler func(level Level, message string)

// Logger filters messages against a level mask and forwards the rest to
// a logrus backend.
type Logger struct {
	// Level is the mask of levels that produce output.
	Level Level
	// Handler, when non-nil, receives every message instead of the
	// backend, regardless of the mask.
	Handler Handler

	backend *logrus.Logger
}

// New returns a Logger filtering at the given mask.
func New(mask Level) *Logger {
	l := logrus.New()
	l.SetLevel(logrus.DebugLevel)
	l.Formatter = &logrus.TextFormatter{
		DisableColors:    true,
		DisableTimestamp: true,
		DisableSorting:   true,
		DisableQuote:     true,
	}
	return &Logger{
		Level:   mask,
		backend: l,
	}
}

// Logf routes a message at the given level.
func (l *Logger) Logf(level Level, format string, args ...interface{}) {
	if l.Handler != nil {
		l.Handler(level, fmt.Sprintf(format, args...))
		return
	}
	if level&l.Level == 0 && level != LevelFatal {
		return
	}
	switch level {
	case LevelFatal:
		l.backend.Fatalf(format, args...)
	case LevelError:
		l.backend.Errorf(format, args...)
	case LevelWarn:
		l.backend.Warnf(format, args...)
	case LevelInfo:
		l.backend.Infof(format, args...)
	case LevelStub:
		l.backend.Debugf("stub: "+format, args...)
	default:
		l.backend.Debugf(format, args...)
	}
}

func (l *Logger) Debugf(format string, args ...interface{}) {
	l.Logf(LevelDebug, format, args...)
}

func (l *Logger) Stubf(format string, args ...interface{}) {
	l.Logf(LevelStub, format, args...)
}

func (l *Logger) Infof(format string, args ...interface{}) {
	l.Logf(LevelInfo, format, args...)
}

func (l *Logger) Warnf(format string, args ...interface{}) {
	l.Logf(LevelWarn, format, args...)
}

func (l *Logger) Errorf(format string, args ...interface{}) {
	l.Logf(LevelError, format, args...)
}

// Fatalf logs the message and terminates the process. With a Handler
// installed the handler receives the message and the process continues.
func (l *Logger) Fatalf(format string, args ...interface{}) {
	l.Logf(LevelFatal, format, args...)
}
