package telemetry

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"
)

func TestNewEmitter_CreatesFile(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "events.jsonl")

	em, err := NewEmitter(path)
	if err != nil {
		t.Fatalf("NewEmitter(%q): %v", path, err)
	}
	defer em.Close()

	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected file to exist at %q: %v", path, err)
	}
}

func TestNewEmitter_ErrorOnBadPath(t *testing.T) {
	t.Parallel()
	_, err := NewEmitter("/nonexistent/dir/events.jsonl")
	if err == nil {
		t.Fatal("expected error for bad path, got nil")
	}
	if !strings.Contains(err.Error(), "telemetry: open") {
		t.Errorf("expected wrapped error, got: %v", err)
	}
}

func readEvents(t *testing.T, path string) []Event {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer f.Close()
	events, err := Decode(f)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	return events
}

func TestEmit_WritesValidJSONL(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "events.jsonl")

	em, err := NewEmitter(path)
	if err != nil {
		t.Fatalf("NewEmitter: %v", err)
	}

	events := []Event{
		{Timestamp: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), Kind: KindCatalogLoaded, Data: map[string]int{"modules": 12}},
		{Timestamp: time.Date(2025, 1, 1, 0, 1, 0, 0, time.UTC), Kind: KindSelection, ModuleID: "numpy"},
		{Timestamp: time.Date(2025, 1, 1, 0, 2, 0, 0, time.UTC), Kind: KindProgressUpdated, UserID: "u1", ModuleID: "numpy", Data: map[string]string{"from": "not-started", "to": "in-progress"}},
	}

	for _, evt := range events {
		if err := em.Emit(evt); err != nil {
			t.Fatalf("Emit: %v", err)
		}
	}
	if err := em.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	decoded := readEvents(t, path)
	if len(decoded) != len(events) {
		t.Fatalf("expected %d events, got %d", len(events), len(decoded))
	}
	for i, want := range events {
		got := decoded[i]
		if got.Kind != want.Kind {
			t.Errorf("event[%d].Kind = %q, want %q", i, got.Kind, want.Kind)
		}
		if got.ModuleID != want.ModuleID {
			t.Errorf("event[%d].ModuleID = %q, want %q", i, got.ModuleID, want.ModuleID)
		}
		if got.UserID != want.UserID {
			t.Errorf("event[%d].UserID = %q, want %q", i, got.UserID, want.UserID)
		}
		if !got.Timestamp.Equal(want.Timestamp) {
			t.Errorf("event[%d].Timestamp = %v, want %v", i, got.Timestamp, want.Timestamp)
		}
	}
}

func TestEmit_FillsTimestamp(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "events.jsonl")
	em, err := NewEmitter(path)
	if err != nil {
		t.Fatalf("NewEmitter: %v", err)
	}
	fixed := time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC)
	em.now = func() time.Time { return fixed }

	if err := em.Record(KindSearch, "", map[string]string{"query": "arrays"}); err != nil {
		t.Fatalf("Record: %v", err)
	}
	em.Close()

	got := readEvents(t, path)
	if len(got) != 1 {
		t.Fatalf("expected 1 event, got %d", len(got))
	}
	if !got[0].Timestamp.Equal(fixed) {
		t.Errorf("Timestamp = %v, want %v", got[0].Timestamp, fixed)
	}
}

func TestEmit_ConcurrentSafety(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "events.jsonl")

	em, err := NewEmitter(path)
	if err != nil {
		t.Fatalf("NewEmitter: %v", err)
	}

	const goroutines = 10
	const eventsPerGoroutine = 50

	var wg sync.WaitGroup
	wg.Add(goroutines)
	for g := 0; g < goroutines; g++ {
		go func() {
			defer wg.Done()
			for i := 0; i < eventsPerGoroutine; i++ {
				_ = em.Emit(Event{Kind: KindLayoutBuilt, ModuleID: "m"})
			}
		}()
	}
	wg.Wait()

	if err := em.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	got := readEvents(t, path)
	if want := goroutines * eventsPerGoroutine; len(got) != want {
		t.Errorf("expected %d lines, got %d", want, len(got))
	}
}

func TestNilEmitter_NoOp(t *testing.T) {
	t.Parallel()
	var em *Emitter

	if err := em.Emit(Event{Kind: KindLogin}); err != nil {
		t.Errorf("nil Emit should return nil, got: %v", err)
	}
	if err := em.Record(KindLogout, "", nil); err != nil {
		t.Errorf("nil Record should return nil, got: %v", err)
	}
	if err := em.Close(); err != nil {
		t.Errorf("nil Close should return nil, got: %v", err)
	}
}

func TestNewEmitter_AppendsToExistingFile(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "events.jsonl")

	for i := 0; i < 2; i++ {
		em, err := NewEmitter(path)
		if err != nil {
			t.Fatalf("NewEmitter #%d: %v", i+1, err)
		}
		if err := em.Emit(Event{Kind: KindCatalogLoaded}); err != nil {
			t.Fatalf("Emit #%d: %v", i+1, err)
		}
		em.Close()
	}

	if got := readEvents(t, path); len(got) != 2 {
		t.Errorf("expected 2 lines after append, got %d", len(got))
	}
}

func TestEventKinds_AreDistinct(t *testing.T) {
	t.Parallel()
	kinds := []string{
		KindCatalogLoaded, KindCatalogReloaded,
		KindSearch, KindSearchFallback,
		KindSelection, KindSelectionClear,
		KindProgressUpdated, KindProgressFailed,
		KindLayoutBuilt, KindLayoutSettled,
		KindLogin, KindLogout,
	}
	seen := make(map[string]bool, len(kinds))
	for _, k := range kinds {
		if seen[k] {
			t.Errorf("duplicate event kind: %q", k)
		}
		seen[k] = true
	}
}

func TestEmit_OmitsEmptyFields(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "events.jsonl")

	em, err := NewEmitter(path)
	if err != nil {
		t.Fatalf("NewEmitter: %v", err)
	}
	if err := em.Emit(Event{Timestamp: time.Now(), Kind: KindSelectionClear}); err != nil {
		t.Fatalf("Emit: %v", err)
	}
	em.Close()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	line := string(data)
	for _, field := range []string{`"user"`, `"module"`, `"data"`} {
		if strings.Contains(line, field) {
			t.Errorf("expected %s to be omitted, got: %s", field, line)
		}
	}
}

func TestDecode_SkipsBlankAndStopsOnJunk(t *testing.T) {
	t.Parallel()
	in := `{"ts":"2025-01-01T00:00:00Z","kind":"login"}` + "\n\n" + "not json\n" + `{"kind":"logout"}` + "\n"
	got, err := Decode(strings.NewReader(in))
	if err == nil {
		t.Fatal("expected error on malformed line")
	}
	if len(got) != 1 || got[0].Kind != KindLogin {
		t.Errorf("decoded before error = %+v", got)
	}
	// The blank line still counts toward the reported position.
	if !strings.Contains(err.Error(), "line 3") {
		t.Errorf("error = %v, want it to name line 3", err)
	}
}

func TestDecode_LongLine(t *testing.T) {
	t.Parallel()
	note := strings.Repeat("x", 200*1024)
	in := `{"kind":"login","data":{"note":"` + note + `"}}` + "\n" + `{"kind":"logout"}` + "\n"
	got, err := Decode(strings.NewReader(in))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(got) != 2 || got[1].Kind != KindLogout {
		t.Errorf("decoded = %d events", len(got))
	}
}
