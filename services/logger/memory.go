package logsvc

import (
	"sync"

	"github.com/Chhotu7079/UniCore/core"
	"github.com/Chhotu7079/UniCore/core/auth"
)

// Entry is one call recorded by a MemoryLogger.
type Entry struct {
	Level Level
	Msg   string
	Args  []interface{}
}

// Principal returns the first principal logged with the entry.
func (e Entry) Principal() auth.Principal {
	for _, arg := range e.Args {
		if p, ok := arg.(auth.Principal); ok {
			return p
		}
	}
	return auth.Principal{}
}

// Fields merges the maps logged with the entry.
func (e Entry) Fields() map[string]interface{} {
	flds := make(map[string]interface{})
	for _, arg := range e.Args {
		if m, ok := arg.(map[string]interface{}); ok {
			for k, v := range m {
				flds[k] = v
			}
		}
	}
	return flds
}

func (e Entry) Err() error {
	for _, arg := range e.Args {
		if err, ok := arg.(error); ok {
			return err
		}
	}
	return nil
}

// MemoryLogger keeps every call in memory; Fatal does not exit.
type MemoryLogger struct {
	mu      sync.Mutex
	entries []Entry
}

var _ core.Logger = (*MemoryLogger)(nil)

func NewMemoryLogger() *MemoryLogger {
	return &MemoryLogger{}
}

func (l *MemoryLogger) record(level Level, msg string, args []interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, Entry{Level: level, Msg: msg, Args: args})
}

func (l *MemoryLogger) Entries() []Entry {
	l.mu.Lock()
	defer l.mu.Unlock()
	entries := make([]Entry, len(l.entries))
	copy(entries, l.entries)
	return entries
}

// Find returns the entries logged at level with msg, oldest first.
func (l *MemoryLogger) Find(level Level, msg string) []Entry {
	found := make([]Entry, 0)
	for _, e := range l.Entries() {
		if e.Level == level && e.Msg == msg {
			found = append(found, e)
		}
	}
	return found
}

func (l *MemoryLogger) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = nil
}

func (l *MemoryLogger) Debug(msg string, args ...interface{}) { l.record(LevelDebug, msg, args) }
func (l *MemoryLogger) Info(msg string, args ...interface{})  { l.record(LevelInfo, msg, args) }
func (l *MemoryLogger) Warn(msg string, args ...interface{})  { l.record(LevelWarn, msg, args) }
func (l *MemoryLogger) Error(msg string, args ...interface{}) { l.record(LevelError, msg, args) }
func (l *MemoryLogger) Fatal(msg string, args ...interface{}) { l.record(LevelFatal, msg, args) }
