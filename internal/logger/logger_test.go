package logger

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

// captureOutput captures log output during a test
func captureOutput(f func()) string {
	var buf bytes.Buffer
	oldLogger := logger
	logger = newLogger(&buf)
	defer func() { logger = oldLogger }()

	f()
	return buf.String()
}

func TestSetLogLevel(t *testing.T) {
	tests := []struct {
		level    string
		expected Level
	}{
		{"debug", LevelDebug},
		{"DEBUG", LevelDebug},
		{"info", LevelInfo},
		{"INFO", LevelInfo},
		{"warn", LevelWarn},
		{"WARN", LevelWarn},
		{"error", LevelError},
		{"ERROR", LevelError},
		{"unknown", LevelInfo}, // Default
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			setLogLevel(tt.level)
			assert.Equal(t, tt.expected, logLevel)
		})
	}
}

func TestDebug(t *testing.T) {
	logLevel = LevelDebug
	output := captureOutput(func() {
		Debug("Test debug message: %s", "value")
	})
	assert.Contains(t, output, "level=debug")
	assert.Contains(t, output, "Test debug message: value")

	logLevel = LevelInfo
	output = captureOutput(func() {
		Debug("This should not appear")
	})
	assert.Empty(t, output)
}

func TestInfo(t *testing.T) {
	logLevel = LevelInfo
	output := captureOutput(func() {
		Info("Test info message: %s", "value")
	})
	assert.Contains(t, output, "level=info")
	assert.Contains(t, output, "Test info message: value")

	logLevel = LevelError
	output = captureOutput(func() {
		Info("This should not appear")
	})
	assert.Empty(t, output)
}

func TestWarn(t *testing.T) {
	logLevel = LevelWarn
	output := captureOutput(func() {
		Warn("Test warn message: %s", "value")
	})
	assert.Contains(t, output, "level=warning")
	assert.Contains(t, output, "Test warn message: value")

	logLevel = LevelError
	output = captureOutput(func() {
		Warn("This should not appear")
	})
	assert.Empty(t, output)
}

func TestError(t *testing.T) {
	// Error should always be logged
	logLevel = LevelError
	output := captureOutput(func() {
		Error("Test error message: %s", "value")
	})
	assert.Contains(t, output, "level=error")
	assert.Contains(t, output, "Test error message: value")
}

func TestErrorWithStack(t *testing.T) {
	logLevel = LevelInfo
	err := errors.New("test error")
	output := captureOutput(func() {
		ErrorWithStack(err)
	})
	assert.Contains(t, output, "level=error")
	assert.Contains(t, output, "test error")
	assert.Contains(t, output, "goroutine")
}

func TestStructuredFields(t *testing.T) {
	logLevel = LevelDebug
	defer func() { logLevel = LevelInfo }()

	output := captureOutput(func() {
		SSEEventLog("table", "t1", "conn-1", []byte(`{"status": "scheduled"}`))
	})
	assert.Contains(t, output, "kind=table")
	assert.Contains(t, output, "resource=t1")
	assert.Contains(t, output, "conn=conn-1")

	output = captureOutput(func() {
		StreamLog("closed", "game", "g1", "conn-2")
	})
	assert.Contains(t, output, "SSE stream closed")
	assert.Contains(t, output, "resource=g1")
}

func TestRequestLog(t *testing.T) {
	assert.NotPanics(t, func() {
		RequestLog("POST", "/api/tables", "user123", 201)
	})
}
