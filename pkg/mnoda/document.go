package mnoda

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/papapumpkin/mnoda/internal/fsutil"
)

const (
	recordsKey       = "records"
	relationshipsKey = "relationships"

	documentContext = "document"
)

// Document is the top-level container written to and read from disk: an
// ordered list of records it owns exclusively plus an ordered list of
// relationships. A Document is not safe for concurrent mutation.
type Document struct {
	records       []Entry
	relationships []Relationship
}

// NewDocument returns an empty Document.
func NewDocument() *Document {
	return &Document{}
}

// Add appends a record. The document takes ownership of it.
func (d *Document) Add(e Entry) {
	d.records = append(d.records, e)
}

// AddRelationship appends a relationship.
func (d *Document) AddRelationship(r Relationship) {
	d.relationships = append(d.relationships, r)
}

// Records returns the records in insertion order.
func (d *Document) Records() []Entry { return d.records }

// Relationships returns the relationships in insertion order.
func (d *Document) Relationships() []Relationship { return d.relationships }

// ParseDocument builds a Document from its tree form, using loader to
// rebuild each record. Both the records and relationships keys are optional
// but must be arrays when present. A nil loader means
// NewRecordLoaderWithAllKnownTypes.
func ParseDocument(node map[string]any, loader *RecordLoader) (*Document, error) {
	if loader == nil {
		loader = NewRecordLoaderWithAllKnownTypes()
	}
	doc := NewDocument()

	records, err := optionalList(node, recordsKey)
	if err != nil {
		return nil, err
	}
	for i, raw := range records {
		recNode, ok := raw.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("record %d: %w", i, typeMismatch(recordsKey, documentContext, "an array of objects", raw))
		}
		entry, err := loader.Load(recNode)
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		doc.Add(entry)
	}

	relationships, err := optionalList(node, relationshipsKey)
	if err != nil {
		return nil, err
	}
	for i, raw := range relationships {
		relNode, ok := raw.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("relationship %d: %w", i, typeMismatch(relationshipsKey, documentContext, "an array of objects", raw))
		}
		rel, err := ParseRelationship(relNode)
		if err != nil {
			return nil, fmt.Errorf("relationship %d: %w", i, err)
		}
		doc.AddRelationship(rel)
	}
	return doc, nil
}

func optionalList(node map[string]any, key string) ([]any, error) {
	v, ok := lookup(node, key)
	if !ok {
		return nil, nil
	}
	list, ok := v.([]any)
	if !ok {
		return nil, &FieldError{Context: documentContext, Field: key, Actual: shapeOf(v), Err: ErrInvalidShape}
	}
	return list, nil
}

// ToNode returns the tree form of d. Both records and relationships are
// always present, as empty arrays if need be.
func (d *Document) ToNode() map[string]any {
	records := make([]any, len(d.records))
	for i, e := range d.records {
		records[i] = e.ToNode()
	}
	relationships := make([]any, len(d.relationships))
	for i, r := range d.relationships {
		relationships[i] = r.ToNode()
	}
	return map[string]any{
		recordsKey:       records,
		relationshipsKey: relationships,
	}
}

// Save writes d to path as JSON. The data goes to a temporary file in the
// same directory which is then renamed over path, so a reader of path sees
// either the old document or the new one. On failure path is unchanged and
// the error wraps ErrPersistence.
func (d *Document) Save(path string) error {
	tree := d.ToNode()
	return SaveWith(path, func(w io.Writer) error {
		enc := json.NewEncoder(w)
		enc.SetEscapeHTML(false)
		return enc.Encode(tree)
	})
}

// SaveWith atomically replaces path with whatever encode writes. It is the
// persistence step behind Save, exposed for other encodings.
func SaveWith(path string, encode func(io.Writer) error) error {
	err := fsutil.WriteAtomic(path, 0o644, encode)
	if err == nil {
		return nil
	}
	op := "write"
	var fe *fsutil.Error
	if errors.As(err, &fe) {
		op = fe.Op
		err = fe.Err
	}
	return &PersistenceError{Path: path, Op: op, Err: err}
}

// LoadDocument reads the JSON document at path. A nil loader means
// NewRecordLoaderWithAllKnownTypes.
func LoadDocument(path string, loader *RecordLoader) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading document: %w", err)
	}
	var node map[string]any
	if err := json.Unmarshal(data, &node); err != nil {
		return nil, fmt.Errorf("parsing document %s: %w", path, err)
	}
	doc, err := ParseDocument(node, loader)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return doc, nil
}
