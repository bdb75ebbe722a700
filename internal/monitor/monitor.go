// Package monitor provides small, explicitly constructed observability
// helpers: a latency recorder, a bounded error log and a TTL cache. None of
// them use package-level state; every instance is created and owned by its
// caller, so tests never depend on hidden globals.
package monitor

import (
	"fmt"
	"strings"
	"sync"
	"time"
)

// Recorder collects duration samples per key.
type Recorder struct {
	mu      sync.Mutex
	samples map[string][]time.Duration
}

// NewRecorder creates an empty recorder.
func NewRecorder() *Recorder {
	return &Recorder{samples: make(map[string][]time.Duration)}
}

// Record adds a duration sample for key. Nil receivers are a no-op so
// callers can hold an optional recorder without nil checks.
func (r *Recorder) Record(key string, d time.Duration) {
	if r == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.samples[key] = append(r.samples[key], d)
}

// Measure runs fn and records its duration under key. Failures are recorded
// under "key:error" so slow failures stay visible separately.
func (r *Recorder) Measure(key string, fn func() error) error {
	start := time.Now()
	err := fn()
	if err != nil {
		r.Record(key+":error", time.Since(start))
		return err
	}
	r.Record(key, time.Since(start))
	return nil
}

// Stats summarizes the samples recorded for one key.
type Stats struct {
	Count int
	Avg   time.Duration
	Min   time.Duration
	Max   time.Duration
}

// StatsFor returns the summary for key, or false if nothing was recorded.
func (r *Recorder) StatsFor(key string) (Stats, bool) {
	if r == nil {
		return Stats{}, false
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	values := r.samples[key]
	if len(values) == 0 {
		return Stats{}, false
	}

	stats := Stats{Count: len(values), Min: values[0], Max: values[0]}
	var sum time.Duration
	for _, v := range values {
		sum += v
		if v < stats.Min {
			stats.Min = v
		}
		if v > stats.Max {
			stats.Max = v
		}
	}
	stats.Avg = sum / time.Duration(len(values))
	return stats, true
}

// AllStats returns summaries for every recorded key.
func (r *Recorder) AllStats() map[string]Stats {
	if r == nil {
		return nil
	}
	r.mu.Lock()
	keys := make([]string, 0, len(r.samples))
	for k := range r.samples {
		keys = append(keys, k)
	}
	r.mu.Unlock()

	out := make(map[string]Stats, len(keys))
	for _, k := range keys {
		if s, ok := r.StatsFor(k); ok {
			out[k] = s
		}
	}
	return out
}

// Reset drops all samples.
func (r *Recorder) Reset() {
	if r == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.samples = make(map[string][]time.Duration)
}

// Level classifies an error log entry.
type Level string

const (
	LevelError Level = "error"
	LevelWarn  Level = "warn"
	LevelInfo  Level = "info"
)

// Entry is one record in the error log.
type Entry struct {
	Timestamp time.Time
	Level     Level
	Message   string
	Context   string
}

// ErrorLog keeps the most recent entries in a bounded ring.
type ErrorLog struct {
	mu      sync.Mutex
	entries []Entry
	max     int
}

// NewErrorLog creates a log keeping at most max entries (100 if max <= 0).
func NewErrorLog(max int) *ErrorLog {
	if max <= 0 {
		max = 100
	}
	return &ErrorLog{max: max}
}

// Error records an error-level entry.
func (l *ErrorLog) Error(message, context string) { l.append(LevelError, message, context) }

// Warn records a warn-level entry.
func (l *ErrorLog) Warn(message, context string) { l.append(LevelWarn, message, context) }

// Info records an info-level entry.
func (l *ErrorLog) Info(message, context string) { l.append(LevelInfo, message, context) }

func (l *ErrorLog) append(level Level, message, context string) {
	if l == nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, Entry{
		Timestamp: time.Now(),
		Level:     level,
		Message:   message,
		Context:   context,
	})
	if len(l.entries) > l.max {
		l.entries = l.entries[len(l.entries)-l.max:]
	}
}

// Entries returns a copy of the retained entries, oldest first. The zero
// level returns everything; a specific level filters.
func (l *ErrorLog) Entries(level Level) []Entry {
	if l == nil {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]Entry, 0, len(l.entries))
	for _, e := range l.entries {
		if level == "" || e.Level == level {
			out = append(out, e)
		}
	}
	return out
}

// Export renders the retained entries as plain text, one block per entry.
func (l *ErrorLog) Export() string {
	entries := l.Entries("")
	blocks := make([]string, 0, len(entries))
	for _, e := range entries {
		line := fmt.Sprintf("[%s] [%s] %s", e.Timestamp.UTC().Format(time.RFC3339), strings.ToUpper(string(e.Level)), e.Message)
		if e.Context != "" {
			line += "\nContext: " + e.Context
		}
		blocks = append(blocks, line)
	}
	return strings.Join(blocks, "\n\n")
}

// Clear drops all entries.
func (l *ErrorLog) Clear() {
	if l == nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = nil
}
