// Package logger is the service-wide levelled logger. The level can be
// changed at runtime (the logLevel feature flag drives it).
package logger

import (
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

var std = newLogger(os.Stdout)

func newLogger(out io.Writer) *logrus.Logger {
	l := logrus.New()
	l.Out = out
	l.Formatter = &logrus.JSONFormatter{
		FieldMap: logrus.FieldMap{
			logrus.FieldKeyTime:  "timestamp",
			logrus.FieldKeyLevel: "severity",
			logrus.FieldKeyMsg:   "message",
		},
	}
	l.Level = logrus.InfoLevel
	return l
}

// Init sets the initial level. Unknown level names fall back to info.
func Init(level string) {
	SetLevel(level)
}

// SetOutput redirects log output, mostly useful in tests.
func SetOutput(w io.Writer) {
	std.SetOutput(w)
}

// SetLevel changes the active level.
func SetLevel(level string) {
	lvl, err := logrus.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil {
		lvl = logrus.InfoLevel
	}
	std.SetLevel(lvl)
}

// GetLevel returns the active level name.
func GetLevel() string {
	return std.GetLevel().String()
}

// WithFields returns an entry carrying the given structured fields.
func WithFields(fields map[string]interface{}) *logrus.Entry {
	return std.WithFields(logrus.Fields(fields))
}

// Debugf logs at debug level.
func Debugf(format string, args ...interface{}) { std.Debugf(format, args...) }

// Infof logs at info level.
func Infof(format string, args ...interface{}) { std.Infof(format, args...) }

// Warnf logs at warn level.
func Warnf(format string, args ...interface{}) { std.Warnf(format, args...) }

// Errorf logs at error level.
func Errorf(format string, args ...interface{}) { std.Errorf(format, args...) }
