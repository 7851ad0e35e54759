package telemetry

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"
)

func readEvents(t *testing.T, path string) []Event {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer f.Close()

	var events []Event
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var evt Event
		if err := json.Unmarshal(scanner.Bytes(), &evt); err != nil {
			t.Fatalf("invalid JSON line: %v\nline: %s", err, scanner.Text())
		}
		events = append(events, evt)
	}
	if err := scanner.Err(); err != nil {
		t.Fatalf("scanner: %v", err)
	}
	return events
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

func TestEmit_WritesOneLinePerEvent(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "events.jsonl")

	em, err := NewEmitter(path)
	if err != nil {
		t.Fatalf("NewEmitter: %v", err)
	}
	fixed := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	em.now = func() time.Time { return fixed }

	events := []Event{
		{Kind: KindWatchStart, Path: "runs"},
		{Kind: KindDocumentValid, Path: "runs/a.json", Records: 3, Relationships: 1},
		{Kind: KindDocumentInvalid, Path: "runs/b.json", Error: "the field 'type' is required"},
	}
	for _, evt := range events {
		if err := em.Emit(evt); err != nil {
			t.Fatalf("Emit: %v", err)
		}
	}
	if err := em.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	got := readEvents(t, path)
	if len(got) != len(events) {
		t.Fatalf("expected %d events, got %d", len(events), len(got))
	}
	for i, evt := range got {
		if !evt.Timestamp.Equal(fixed) {
			t.Errorf("event %d: ts = %v, want %v", i, evt.Timestamp, fixed)
		}
		evt.Timestamp = time.Time{}
		if evt != events[i] {
			t.Errorf("event %d = %+v, want %+v", i, evt, events[i])
		}
	}
}

func TestEmit_KeepsExplicitTimestamp(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "events.jsonl")

	em, err := NewEmitter(path)
	if err != nil {
		t.Fatalf("NewEmitter: %v", err)
	}
	ts := time.Date(2020, 1, 2, 3, 4, 5, 0, time.UTC)
	if err := em.Emit(Event{Timestamp: ts, Kind: KindWatchStop}); err != nil {
		t.Fatalf("Emit: %v", err)
	}
	em.Close()

	got := readEvents(t, path)
	if len(got) != 1 || !got[0].Timestamp.Equal(ts) {
		t.Errorf("events = %+v, want one event at %v", got, ts)
	}
}

func TestEmit_OmitsZeroFields(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "events.jsonl")

	em, err := NewEmitter(path)
	if err != nil {
		t.Fatalf("NewEmitter: %v", err)
	}
	if err := em.Emit(Event{Kind: KindDocumentRemoved, Path: "x.json"}); err != nil {
		t.Fatalf("Emit: %v", err)
	}
	em.Close()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	for _, key := range []string{"records", "relationships", "error"} {
		if strings.Contains(string(data), `"`+key+`"`) {
			t.Errorf("line contains zero-valued %q: %s", key, data)
		}
	}
}

func TestEmit_ConcurrentSafety(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "concurrent.jsonl")

	em, err := NewEmitter(path)
	if err != nil {
		t.Fatalf("NewEmitter: %v", err)
	}

	const n = 100
	var wg sync.WaitGroup
	for i := range n {
		wg.Go(func() {
			if err := em.Emit(Event{Kind: KindDocumentValid, Records: i + 1}); err != nil {
				t.Errorf("Emit from goroutine %d: %v", i, err)
			}
		})
	}
	wg.Wait()
	if err := em.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	if got := readEvents(t, path); len(got) != n {
		t.Fatalf("expected %d events, got %d", n, len(got))
	}
}

func TestEmit_AppendsToExistingFile(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "append.jsonl")

	for _, kind := range []string{KindWatchStart, KindWatchStop} {
		em, err := NewEmitter(path)
		if err != nil {
			t.Fatalf("NewEmitter: %v", err)
		}
		if err := em.Emit(Event{Kind: kind}); err != nil {
			t.Fatalf("Emit: %v", err)
		}
		em.Close()
	}

	got := readEvents(t, path)
	if len(got) != 2 || got[0].Kind != KindWatchStart || got[1].Kind != KindWatchStop {
		t.Errorf("events = %+v, want start then stop", got)
	}
}

func TestNilEmitter_NoOp(t *testing.T) {
	t.Parallel()
	var em *Emitter

	if err := em.Emit(Event{Kind: KindWatchStart}); err != nil {
		t.Errorf("nil Emit: %v", err)
	}
	if err := em.Close(); err != nil {
		t.Errorf("nil Close: %v", err)
	}
}
