// internal/logger/buffer.go
package logger

import (
	"sync"
	"time"

	"go.uber.org/zap/zapcore"
)

// Entry is one captured log line for on-screen display.
type Entry struct {
	Timestamp time.Time
	Level     string
	Message   string
}

// RingBuffer keeps the most recent log entries for the interactive UI's
// activity pane. Old entries are overwritten; the file log is the durable
// record.
type RingBuffer struct {
	mu      sync.Mutex
	entries []Entry
	next    int
	wrapped bool
	total   uint64
}

// NewRingBuffer creates a buffer holding up to size entries.
func NewRingBuffer(size int) *RingBuffer {
	return &RingBuffer{entries: make([]Entry, size)}
}

// Add records an entry, evicting the oldest when full.
func (rb *RingBuffer) Add(level, message string) {
	rb.mu.Lock()
	defer rb.mu.Unlock()

	rb.entries[rb.next] = Entry{Timestamp: time.Now(), Level: level, Message: message}
	rb.next = (rb.next + 1) % len(rb.entries)
	if rb.next == 0 && rb.total > 0 {
		rb.wrapped = true
	}
	rb.total++
}

// Recent returns up to limit entries, oldest first.
func (rb *RingBuffer) Recent(limit int) []Entry {
	rb.mu.Lock()
	defer rb.mu.Unlock()

	var ordered []Entry
	if rb.wrapped {
		ordered = append(ordered, rb.entries[rb.next:]...)
		ordered = append(ordered, rb.entries[:rb.next]...)
	} else {
		ordered = append(ordered, rb.entries[:rb.next]...)
	}
	if limit > 0 && len(ordered) > limit {
		ordered = ordered[len(ordered)-limit:]
	}
	return ordered
}

// Total returns how many entries were ever added.
func (rb *RingBuffer) Total() uint64 {
	rb.mu.Lock()
	defer rb.mu.Unlock()
	return rb.total
}

// Core returns a zapcore.Core that mirrors entries at or above enab into the
// buffer. Tee it into a logger with Logger.Attach.
func (rb *RingBuffer) Core(enab zapcore.LevelEnabler) zapcore.Core {
	return &ringCore{LevelEnabler: enab, rb: rb}
}

type ringCore struct {
	zapcore.LevelEnabler
	rb *RingBuffer
}

func (c *ringCore) With([]zapcore.Field) zapcore.Core { return c }

func (c *ringCore) Check(ent zapcore.Entry, ce *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if c.Enabled(ent.Level) {
		return ce.AddCore(ent, c)
	}
	return ce
}

func (c *ringCore) Write(ent zapcore.Entry, _ []zapcore.Field) error {
	c.rb.Add(ent.Level.CapitalString(), ent.Message)
	return nil
}

func (c *ringCore) Sync() error { return nil }
