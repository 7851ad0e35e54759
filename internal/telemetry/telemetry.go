// Package telemetry appends a JSONL record of what a watch session saw: every
// document that became valid, broke, disappeared or was archived. The file
// can be tailed or replayed to audit how a run directory evolved.
package telemetry

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"
)

// Event kinds.
const (
	KindWatchStart       = "watch_start"
	KindWatchStop        = "watch_stop"
	KindDocumentValid    = "document_valid"
	KindDocumentInvalid  = "document_invalid"
	KindDocumentRemoved  = "document_removed"
	KindDocumentArchived = "document_archived"
)

// Event is one line of the log. Counts are omitted when zero.
type Event struct {
	Timestamp     time.Time `json:"ts"`
	Kind          string    `json:"kind"`
	Path          string    `json:"path,omitempty"`
	Records       int       `json:"records,omitempty"`
	Relationships int       `json:"relationships,omitempty"`
	Error         string    `json:"error,omitempty"`
}

// Emitter appends events to a JSONL file. It is safe for concurrent use.
// A nil *Emitter is a valid no-op emitter.
type Emitter struct {
	file *os.File
	enc  *json.Encoder
	mu   sync.Mutex
	now  func() time.Time
}

// NewEmitter opens path for appending, creating it if needed.
func NewEmitter(path string) (*Emitter, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("telemetry: open %s: %w", path, err)
	}
	enc := json.NewEncoder(f)
	enc.SetEscapeHTML(false)
	return &Emitter{file: f, enc: enc, now: time.Now}, nil
}

// Emit writes evt as one line, stamping it with the current time when
// Timestamp is zero.
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

// Close closes the underlying file.
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
