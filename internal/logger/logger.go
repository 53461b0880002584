// Package logger owns the process-wide logrus logger. Output always goes to
// stderr so stdout stays free for command results.
package logger

import (
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

var defaultLogger *logrus.Logger

// Setup initialises the default logger. LOG_LEVEL and LOG_FORMAT override the
// given level and format when set. debug forces debug level over both.
func Setup(level, format string, debug bool) *logrus.Logger {
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		level = v
	}
	if debug {
		level = "debug"
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		format = v
	}

	l := logrus.New()
	l.SetOutput(os.Stderr)

	lvl, err := logrus.ParseLevel(strings.ToLower(level))
	if err != nil {
		lvl = logrus.InfoLevel
	}
	l.SetLevel(lvl)

	if strings.ToLower(format) == "json" {
		l.SetFormatter(&logrus.JSONFormatter{})
	} else {
		l.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	}

	defaultLogger = l
	return l
}

// L returns the default logger, setting it up at info level if needed.
func L() *logrus.Logger {
	if defaultLogger == nil {
		return Setup("info", "text", false)
	}
	return defaultLogger
}
