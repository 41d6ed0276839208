// Package report collects structured warnings and errors produced while
// processing one document.
//
// Components that tolerate malformed input (the markup parser in
// particular) do not abort on structural problems; they record an event
// here and continue. A Reporter belongs to exactly one document, so
// callers can assert on the collected events in tests or aggregate the
// counters across a corpus.
package report

import (
	"fmt"

	"github.com/emholm/standoff/internal/logging"
)

// Level classifies an event.
type Level int

const (
	// Info is for informational events.
	Info Level = iota
	// Warning is for recoverable problems (overlap, autoclose).
	Warning
	// Error is for dropped input (stray end tags, bad references).
	Error
)

// String returns the lowercase name of the level.
func (l Level) String() string {
	switch l {
	case Warning:
		return "warning"
	case Error:
		return "error"
	default:
		return "info"
	}
}

// Event is one structural problem found at a source position.
type Event struct {
	Level   Level
	Line    int // 1-based source line, 0 if unknown
	Col     int // 0-based source column
	Message string
}

// Reporter accumulates events for one document and forwards them to the
// process logger unless Silent is set.
type Reporter struct {
	// Source names the document, used only for log output.
	Source string
	// Silent suppresses forwarding to the process logger.
	Silent bool

	events   []Event
	warnings int
	errors   int
}

// New returns a Reporter for the named source document.
func New(source string) *Reporter {
	return &Reporter{Source: source}
}

func (r *Reporter) record(level Level, line, col int, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	r.events = append(r.events, Event{Level: level, Line: line, Col: col, Message: msg})
	if !r.Silent {
		var ll logging.Level
		switch level {
		case Warning:
			ll = logging.LevelWarn
		case Error:
			ll = logging.LevelError
		default:
			ll = logging.LevelInfo
		}
		logging.ParseEvent(ll, r.Source, line, col, msg)
	}
}

// Infof records an informational event.
func (r *Reporter) Infof(line, col int, format string, args ...any) {
	r.record(Info, line, col, format, args...)
}

// Warningf records a warning and bumps the warning counter.
func (r *Reporter) Warningf(line, col int, format string, args ...any) {
	r.warnings++
	r.record(Warning, line, col, format, args...)
}

// Errorf records an error and bumps the error counter.
func (r *Reporter) Errorf(line, col int, format string, args ...any) {
	r.errors++
	r.record(Error, line, col, format, args...)
}

// Events returns all recorded events in order.
func (r *Reporter) Events() []Event {
	return r.events
}

// Warnings returns the number of recorded warnings.
func (r *Reporter) Warnings() int {
	return r.warnings
}

// Errors returns the number of recorded errors.
func (r *Reporter) Errors() int {
	return r.errors
}
