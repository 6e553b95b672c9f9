// Package logger provides structured logging for snipcomplete.
package logger

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// Logger wraps logrus logger
type Logger struct {
	log    *logrus.Logger
	fields logrus.Fields
}

// Entry accumulates fields for a single log line
type Entry struct {
	level logrus.Level
	entry *logrus.Entry
}

// New creates a new logger instance writing to output (stderr when nil)
func New(level string, output io.Writer) *Logger {
	if output == nil {
		output = os.Stderr
	}

	log := logrus.New()
	log.SetOutput(output)

	logLevel, err := logrus.ParseLevel(strings.ToLower(level))
	if err != nil {
		logLevel = logrus.InfoLevel
	}
	log.SetLevel(logLevel)

	// Colors only when talking to the terminal
	log.SetFormatter(&logrus.TextFormatter{
		ForceColors:      output == os.Stderr,
		DisableColors:    output != os.Stderr,
		DisableTimestamp: true,
		PadLevelText:     true,
	})

	return &Logger{log: log, fields: logrus.Fields{}}
}

// Discard returns a logger that drops everything
func Discard() *Logger {
	return New("panic", io.Discard)
}

// OrDiscard returns l, or a discarding logger when l is nil
func OrDiscard(l *Logger) *Logger {
	if l == nil {
		return Discard()
	}
	return l
}

// Named returns a child logger tagging every line with component=name
func (l *Logger) Named(name string) *Logger {
	fields := make(logrus.Fields, len(l.fields)+1)
	for k, v := range l.fields {
		fields[k] = v
	}
	fields["component"] = name
	return &Logger{log: l.log, fields: fields}
}

// Enabled reports whether lines at level would be written
func (l *Logger) Enabled(level string) bool {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return false
	}
	return l.log.IsLevelEnabled(lvl)
}

func (l *Logger) at(level logrus.Level) *Entry {
	return &Entry{level: level, entry: l.log.WithFields(l.fields)}
}

// Debug starts a debug entry
func (l *Logger) Debug() *Entry { return l.at(logrus.DebugLevel) }

// Info starts an info entry
func (l *Logger) Info() *Entry { return l.at(logrus.InfoLevel) }

// Warn starts a warning entry
func (l *Logger) Warn() *Entry { return l.at(logrus.WarnLevel) }

// Error starts an error entry
func (l *Logger) Error() *Entry { return l.at(logrus.ErrorLevel) }

// Str adds a string field
func (e *Entry) Str(key, value string) *Entry {
	e.entry = e.entry.WithField(key, value)
	return e
}

// Int adds an int field
func (e *Entry) Int(key string, value int) *Entry {
	e.entry = e.entry.WithField(key, value)
	return e
}

// Bool adds a bool field
func (e *Entry) Bool(key string, value bool) *Entry {
	e.entry = e.entry.WithField(key, value)
	return e
}

// Err adds an error field
func (e *Entry) Err(err error) *Entry {
	if err != nil {
		e.entry = e.entry.WithError(err)
	}
	return e
}

// Dur adds a duration field in milliseconds
func (e *Entry) Dur(key string, duration time.Duration) *Entry {
	ms := float64(duration.Microseconds()) / 1000.0
	e.entry = e.entry.WithField(key, ms)
	return e
}

// Float adds a float field
func (e *Entry) Float(key string, value float64) *Entry {
	e.entry = e.entry.WithField(key, value)
	return e
}

// Msg writes the entry
func (e *Entry) Msg(msg string) {
	e.entry.Log(e.level, msg)
}
