package logger

import (
	"sync"
)

// TestLogger captures log entries in memory for assertions in tests.
type TestLogger struct {
	mu      sync.Mutex
	entries []LogEntry
}

type LogEntry struct {
	Level   string
	Message string
	Fields  []Field
}

// NewTestLogger creates a new in-memory test logger.
func NewTestLogger() *TestLogger {
	return &TestLogger{
		entries: make([]LogEntry, 0),
	}
}

func (l *TestLogger) Debug(msg string, fields ...Field) {
	l.log("DEBUG", msg, fields...)
}

func (l *TestLogger) Info(msg string, fields ...Field) {
	l.log("INFO", msg, fields...)
}

func (l *TestLogger) Warn(msg string, fields ...Field) {
	l.log("WARN", msg, fields...)
}

func (l *TestLogger) Error(msg string, fields ...Field) {
	l.log("ERROR", msg, fields...)
}

func (l *TestLogger) Fatal(msg string, fields ...Field) {
	l.log("FATAL", msg, fields...)
}

func (l *TestLogger) With(fields ...Field) Logger {
	return l
}

func (l *TestLogger) Named(name string) Logger {
	return l
}

func (l *TestLogger) Sync() error {
	return nil
}

func (l *TestLogger) log(level, msg string, fields ...Field) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.entries = append(l.entries, LogEntry{
		Level:   level,
		Message: msg,
		Fields:  fields,
	})
}

// GetEntries returns a copy of all recorded entries.
func (l *TestLogger) GetEntries() []LogEntry {
	l.mu.Lock()
	defer l.mu.Unlock()

	entries := make([]LogEntry, len(l.entries))
	copy(entries, l.entries)
	return entries
}

// Clear drops all recorded entries.
func (l *TestLogger) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = l.entries[:0]
}
