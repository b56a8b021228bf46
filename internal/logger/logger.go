package logger

import (
	"fmt"
	"io"
	"os"
	"runtime/debug"
	"strings"

	"github.com/sirupsen/logrus"
)

// Level represents the severity of a log message
type Level int

const (
	// LevelDebug for detailed troubleshooting
	LevelDebug Level = iota
	// LevelInfo for general operational entries
	LevelInfo
	// LevelWarn for non-critical issues
	LevelWarn
	// LevelError for errors that should be addressed
	LevelError
)

var (
	// Default logger
	logger   = newLogger(os.Stdout)
	logLevel = LevelInfo
)

// Initialize sets up the logger with the specified level
func Initialize(level string) {
	logger = newLogger(os.Stdout)
	setLogLevel(level)
}

// SetOutput redirects log output, mostly useful in tests
func SetOutput(w io.Writer) {
	logger.SetOutput(w)
}

func newLogger(w io.Writer) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(w)
	l.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006/01/02 15:04:05",
		DisableColors:   true,
	})
	// Filtering happens in logMessage so the level can be swapped without
	// rebuilding the logrus instance.
	l.SetLevel(logrus.DebugLevel)
	return l
}

// setLogLevel sets the log level from a string
func setLogLevel(level string) {
	switch strings.ToLower(level) {
	case "debug":
		logLevel = LevelDebug
	case "info":
		logLevel = LevelInfo
	case "warn":
		logLevel = LevelWarn
	case "error":
		logLevel = LevelError
	default:
		logLevel = LevelInfo
	}
}

func (l Level) logrus() logrus.Level {
	switch l {
	case LevelDebug:
		return logrus.DebugLevel
	case LevelWarn:
		return logrus.WarnLevel
	case LevelError:
		return logrus.ErrorLevel
	default:
		return logrus.InfoLevel
	}
}

// logMessage logs a message with the given level
func logMessage(level Level, fields logrus.Fields, format string, v ...interface{}) {
	if level < logLevel {
		return
	}
	entry := logrus.NewEntry(logger)
	if len(fields) > 0 {
		entry = entry.WithFields(fields)
	}
	entry.Log(level.logrus(), fmt.Sprintf(format, v...))
}

// Debug logs a debug message
func Debug(format string, v ...interface{}) {
	logMessage(LevelDebug, nil, format, v...)
}

// Info logs an info message
func Info(format string, v ...interface{}) {
	logMessage(LevelInfo, nil, format, v...)
}

// Warn logs a warning message
func Warn(format string, v ...interface{}) {
	logMessage(LevelWarn, nil, format, v...)
}

// Error logs an error message
func Error(format string, v ...interface{}) {
	logMessage(LevelError, nil, format, v...)
}

// ErrorWithStack logs an error with a stack trace
func ErrorWithStack(err error) {
	if err == nil {
		return
	}
	logMessage(LevelError, nil, "%v\n%s", err, debug.Stack())
}

// RequestLog logs details of an HTTP request
func RequestLog(method, url, userID string, status int) {
	logMessage(LevelDebug, logrus.Fields{
		"method": method,
		"url":    url,
		"user":   userID,
		"status": status,
	}, "HTTP request")
}

// SSEEventLog logs details of an SSE event
func SSEEventLog(kind, resourceID, connID string, data []byte) {
	logMessage(LevelDebug, logrus.Fields{
		"kind":     kind,
		"resource": resourceID,
		"conn":     connID,
		"bytes":    len(data),
	}, "SSE event sent")
}

// StreamLog logs a stream lifecycle transition (opened, closed)
func StreamLog(state, kind, resourceID, connID string) {
	logMessage(LevelInfo, logrus.Fields{
		"kind":     kind,
		"resource": resourceID,
		"conn":     connID,
	}, "SSE stream %s", state)
}
