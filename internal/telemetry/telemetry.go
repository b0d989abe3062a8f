// Package telemetry provides a JSONL event stream for recording what a
// learner does in a session: catalog loads, searches, selections, progress
// updates and layout rebuilds. Each event is one JSON object per line.
package telemetry

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"
	"time"
)

// Event kinds identify the type of telemetry event.
const (
	KindCatalogLoaded   = "catalog_loaded"
	KindCatalogReloaded = "catalog_reloaded"
	KindSearch          = "search"
	KindSearchFallback  = "search_fallback"
	KindSelection       = "selection"
	KindSelectionClear  = "selection_cleared"
	KindProgressUpdated = "progress_updated"
	KindProgressFailed  = "progress_failed"
	KindLayoutBuilt     = "layout_built"
	KindLayoutSettled   = "layout_settled"
	KindLogin           = "login"
	KindLogout          = "logout"
)

// Event is a single telemetry record. Each event carries a timestamp, a kind
// tag, and optional user and module identifiers along with arbitrary
// structured data.
type Event struct {
	Timestamp time.Time `json:"ts"`
	Kind      string    `json:"kind"`
	UserID    string    `json:"user,omitempty"`
	ModuleID  string    `json:"module,omitempty"`
	Data      any       `json:"data,omitempty"`
}

// Emitter writes telemetry events to a JSONL file. It is safe for concurrent
// use by multiple goroutines. A nil *Emitter is a valid no-op emitter.
type Emitter struct {
	file *os.File
	enc  *json.Encoder
	mu   sync.Mutex
	now  func() time.Time
}

// NewEmitter creates a new Emitter that writes JSONL events to the file at
// path. The file is created if it does not exist, or appended to if it does.
func NewEmitter(path string) (*Emitter, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("telemetry: open %s: %w", path, err)
	}
	return &Emitter{
		file: f,
		enc:  json.NewEncoder(f),
		now:  time.Now,
	}, nil
}

// Emit writes a single event to the JSONL file. A zero timestamp is filled
// with the current time. Calling Emit on a nil Emitter is a no-op.
func (e *Emitter) Emit(evt Event) error {
	if e == nil {
		return nil
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if evt.Timestamp.IsZero() {
		evt.Timestamp = e.now().UTC()
	}
	if err := e.enc.Encode(evt); err != nil {
		return fmt.Errorf("telemetry: encode event: %w", err)
	}
	return nil
}

// Record is Emit for the common case of a kind, a module and some data.
func (e *Emitter) Record(kind, moduleID string, data any) error {
	return e.Emit(Event{Kind: kind, ModuleID: moduleID, Data: data})
}

// Close flushes and closes the underlying file. Calling Close on a nil
// Emitter is a no-op.
func (e *Emitter) Close() error {
	if e == nil {
		return nil
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.file.Close(); err != nil {
		return fmt.Errorf("telemetry: close: %w", err)
	}
	return nil
}

// maxLineSize bounds one encoded event. Event data is caller supplied and
// may exceed the scanner's default token size.
const maxLineSize = 1 << 20

// Decode reads every event from r, skipping blank lines. It stops at the
// first malformed line and reports its 1-based line number.
func Decode(r io.Reader) ([]Event, error) {
	var out []Event
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := sc.Bytes()
		if len(line) == 0 {
			continue
		}
		var evt Event
		if err := json.Unmarshal(line, &evt); err != nil {
			return out, fmt.Errorf("telemetry: decode line %d: %w", lineNo, err)
		}
		out = append(out, evt)
	}
	if err := sc.Err(); err != nil {
		return out, fmt.Errorf("telemetry: read: %w", err)
	}
	return out, nil
}
