// Package diag provides the diagnostic sinks refinement code reports to.
package diag

import (
	"fmt"
	"io"
	"log"
	"os"
	"sync"
)

// Sink receives diagnostics from refinement stages. Implementations must be
// safe for concurrent use since stages report from worker goroutines.
type Sink interface {
	Infof(unit, format string, args ...any)
	Warnf(unit, format string, args ...any)
}

// LogSink writes diagnostics through a standard logger.
type LogSink struct {
	logger *log.Logger
	closer io.Closer
}

// NewLogSink wraps w. A nil writer means stderr.
func NewLogSink(w io.Writer) *LogSink {
	if w == nil {
		w = os.Stderr
	}
	return &LogSink{logger: log.New(w, "", log.LstdFlags)}
}

// OpenLogFile appends diagnostics to path and mirrors them to stderr, the way
// batch runs keep a per-run refinement log.
func OpenLogFile(path string) (*LogSink, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("error opening log file: %w", err)
	}
	s := NewLogSink(io.MultiWriter(f, os.Stderr))
	s.closer = f
	return s, nil
}

func (s *LogSink) Infof(unit, format string, args ...any) {
	s.logger.Printf("INFO [%s] %s", unit, fmt.Sprintf(format, args...))
}

func (s *LogSink) Warnf(unit, format string, args ...any) {
	s.logger.Printf("WARNING [%s] %s", unit, fmt.Sprintf(format, args...))
}

// Close releases the log file, if any.
func (s *LogSink) Close() error {
	if s.closer == nil {
		return nil
	}
	return s.closer.Close()
}

// Entry is one recorded diagnostic.
type Entry struct {
	Level   string
	Unit    string
	Message string
}

// Recorder keeps diagnostics in memory.
type Recorder struct {
	mu      sync.Mutex
	entries []Entry
}

func (r *Recorder) Infof(unit, format string, args ...any) {
	r.add("info", unit, fmt.Sprintf(format, args...))
}

func (r *Recorder) Warnf(unit, format string, args ...any) {
	r.add("warn", unit, fmt.Sprintf(format, args...))
}

func (r *Recorder) add(level, unit, msg string) {
	r.mu.Lock()
	r.entries = append(r.entries, Entry{Level: level, Unit: unit, Message: msg})
	r.mu.Unlock()
}

// Entries returns a snapshot of everything recorded so far.
func (r *Recorder) Entries() []Entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Entry, len(r.entries))
	copy(out, r.entries)
	return out
}

// Warnings returns only the warning entries.
func (r *Recorder) Warnings() []Entry {
	var out []Entry
	for _, e := range r.Entries() {
		if e.Level == "warn" {
			out = append(out, e)
		}
	}
	return out
}

type discard struct{}

func (discard) Infof(string, string, ...any) {}
func (discard) Warnf(string, string, ...any) {}

// Discard drops every diagnostic.
var Discard Sink = discard{}

type warningsOnly struct{ Sink }

func (warningsOnly) Infof(string, string, ...any) {}

// WarningsOnly forwards warnings to s and drops informational messages.
func WarningsOnly(s Sink) Sink {
	return warningsOnly{s}
}
