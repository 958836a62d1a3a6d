package logsvc

import (
	"fmt"
	"sync"

	"github.com/nicolascodet/canvas-remake/core"
)

// NopLogger discards everything. Tests use it to keep output quiet.
type NopLogger struct{}

var _ core.Logger = NopLogger{}

func (NopLogger) Debug(string, ...interface{}) {}
func (NopLogger) Info(string, ...interface{})  {}
func (NopLogger) Warn(string, ...interface{})  {}
func (NopLogger) Error(string, ...interface{}) {}
func (NopLogger) Fatal(string, ...interface{}) {}

// Entry is one call recorded by a MemoryLogger.
type Entry struct {
	Level   string
	Message string
	Args    []interface{}
}

// MemoryLogger records every entry; Fatal does not exit.
type MemoryLogger struct {
	mu      sync.Mutex
	entries []Entry
}

var _ core.Logger = (*MemoryLogger)(nil)

func (l *MemoryLogger) log(level, msg string, args []interface{}) {
	l.mu.Lock()
	l.entries = append(l.entries, Entry{Level: level, Message: msg, Args: args})
	l.mu.Unlock()
}

func (l *MemoryLogger) Debug(msg string, args ...interface{}) { l.log("DEBUG", msg, args) }
func (l *MemoryLogger) Info(msg string, args ...interface{})  { l.log("INFO", msg, args) }
func (l *MemoryLogger) Warn(msg string, args ...interface{})  { l.log("WARN", msg, args) }
func (l *MemoryLogger) Error(msg string, args ...interface{}) { l.log("ERROR", msg, args) }
func (l *MemoryLogger) Fatal(msg string, args ...interface{}) { l.log("FATAL", msg, args) }

func (l *MemoryLogger) Entries() []Entry {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]Entry(nil), l.entries...)
}

// Messages returns "LEVEL: message" for every entry at level, or every entry when level is empty.
func (l *MemoryLogger) Messages(level string) []string {
	msgs := make([]string, 0)
	for _, e := range l.Entries() {
		if level == "" || e.Level == level {
			msgs = append(msgs, fmt.Sprintf("%s: %s", e.Level, e.Message))
		}
	}
	return msgs
}
