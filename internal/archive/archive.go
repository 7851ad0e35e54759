// Package archive keeps serialized records and relationships in a local
// SQLite database so documents from many runs can be collected in one place.
// Records are stored whole, keyed by their ID; the archive does not index or
// query record contents.
//
// Local IDs only mean something inside one document, so the archive never
// stores them. PutDocument gives every local record a fresh global ID and
// rewrites the document's local relationship endpoints to match.
package archive

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"
	_ "modernc.org/sqlite" // Pure-Go SQLite driver.

	"github.com/papapumpkin/mnoda/internal/logging"
	"github.com/papapumpkin/mnoda/pkg/mnoda"
	"github.com/papapumpkin/mnoda/pkg/mnoda/codec"
)

// ErrNotFound is returned when no record with the requested name is stored.
var ErrNotFound = errors.New("record not found")

// ErrLocalID is returned when a record with a local ID is stored outside of
// a document, or when a relationship names a local ID that no record in its
// document has.
var ErrLocalID = errors.New("local id cannot be archived")

// Identity keys of a serialized record.
const (
	localIDKey  = "local_id"
	globalIDKey = "id"
)

// schema contains the DDL executed on first open. Using IF NOT EXISTS makes
// it safe to run on every startup.
const schema = `
CREATE TABLE IF NOT EXISTS records (
    name       TEXT NOT NULL,
    scope      TEXT NOT NULL,
    type       TEXT NOT NULL,
    body       TEXT NOT NULL,
    updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
    PRIMARY KEY (name, scope)
);

CREATE TABLE IF NOT EXISTS relationships (
    id            INTEGER PRIMARY KEY AUTOINCREMENT,
    subject       TEXT NOT NULL,
    subject_scope TEXT NOT NULL,
    predicate     TEXT NOT NULL,
    object        TEXT NOT NULL,
    object_scope  TEXT NOT NULL,
    UNIQUE(subject, subject_scope, predicate, object, object_scope)
);
`

// Archive is a SQLite-backed store of records and relationships.
type Archive struct {
	db     *sql.DB
	logger *zap.Logger
	newID  func() string // Global names for local records
}

// Open opens (or creates) the archive at path, enables WAL mode and busy
// timeout, and creates the schema tables if they do not exist.
func Open(ctx context.Context, path string, logger *zap.Logger) (*Archive, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("archive: open database: %w", err)
	}

	// SQLite allows a single writer; one connection avoids SQLITE_BUSY
	// between pooled connections.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("archive: enable WAL mode: %w", err)
	}
	if _, err := db.ExecContext(ctx, "PRAGMA busy_timeout=5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("archive: set busy timeout: %w", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("archive: create schema: %w", err)
	}

	return &Archive{db: db, logger: logging.OrNop(logger), newID: uuid.NewString}, nil
}

// Close closes the underlying database.
func (a *Archive) Close() error {
	return a.db.Close()
}

// PutDocument stores every record and relationship of doc in one
// transaction. A record whose global ID is already stored is replaced.
// Records with a local ID are stored under a new UUID, and relationships
// naming them are rewritten to that UUID; doc itself is not modified.
func (a *Archive) PutDocument(ctx context.Context, doc *mnoda.Document) error {
	globals := make(map[string]string)
	for _, e := range doc.Records() {
		if id := e.Base().ID(); id.Scope == mnoda.Local {
			globals[id.Name] = a.newID()
		}
	}
	resolve := func(id mnoda.ID) (mnoda.ID, error) {
		if id.Scope == mnoda.Global {
			return id, nil
		}
		name, ok := globals[id.Name]
		if !ok {
			return id, fmt.Errorf("archive: relationship endpoint %q: %w", id.Name, ErrLocalID)
		}
		return mnoda.GlobalID(name), nil
	}

	tx, err := a.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("archive: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // rollback after commit is a no-op

	for _, e := range doc.Records() {
		name := e.Base().ID().Name
		if global, ok := globals[name]; ok && e.Base().ID().Scope == mnoda.Local {
			name = global
		}
		if err := putRecord(ctx, tx, e, name); err != nil {
			return err
		}
	}

	const q = `
		INSERT INTO relationships (subject, subject_scope, predicate, object, object_scope)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT DO NOTHING`
	for _, rel := range doc.Relationships() {
		s, err := resolve(rel.Subject())
		if err != nil {
			return err
		}
		o, err := resolve(rel.Object())
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, q, s.Name, s.Scope.String(), rel.Predicate(), o.Name, o.Scope.String()); err != nil {
			return fmt.Errorf("archive: insert relationship %s %s %s: %w", s.Name, rel.Predicate(), o.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("archive: commit document: %w", err)
	}
	a.logger.Debug("archived document",
		zap.Int("records", len(doc.Records())),
		zap.Int("local_ids_rewritten", len(globals)),
		zap.Int("relationships", len(doc.Relationships())))
	return nil
}

// PutRecord stores a single record, replacing any record with the same ID.
// The record must have a global ID.
func (a *Archive) PutRecord(ctx context.Context, e mnoda.Entry) error {
	id := e.Base().ID()
	if id.Scope != mnoda.Global {
		return fmt.Errorf("archive: put record %q: %w", id.Name, ErrLocalID)
	}
	return putRecord(ctx, a.db, e, id.Name)
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// putRecord stores e under the global ID name, replacing whichever
// identity key its serialized form carries.
func putRecord(ctx context.Context, db execer, e mnoda.Entry, name string) error {
	node := e.ToNode()
	delete(node, localIDKey)
	node[globalIDKey] = name
	body, err := codec.JSON.Marshal(node)
	if err != nil {
		return fmt.Errorf("archive: encode record %q: %w", name, err)
	}
	const q = `
		INSERT INTO records (name, scope, type, body, updated_at)
		VALUES (?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(name, scope) DO UPDATE SET
			type       = excluded.type,
			body       = excluded.body,
			updated_at = CURRENT_TIMESTAMP`
	if _, err := db.ExecContext(ctx, q, name, mnoda.Global.String(), e.Base().Type(), string(body)); err != nil {
		return fmt.Errorf("archive: put record %q: %w", name, err)
	}
	return nil
}

// Record returns the stored record with the global ID name, rebuilt with
// loader. A nil loader means mnoda.NewRecordLoaderWithAllKnownTypes.
func (a *Archive) Record(ctx context.Context, name string, loader *mnoda.RecordLoader) (mnoda.Entry, error) {
	if loader == nil {
		loader = mnoda.NewRecordLoaderWithAllKnownTypes()
	}
	var body string
	err := a.db.QueryRowContext(ctx,
		`SELECT body FROM records WHERE name = ? AND scope = ?`,
		name, mnoda.Global.String()).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("archive: %q: %w", name, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("archive: get record %q: %w", name, err)
	}
	return decodeRecord(body, loader)
}

func decodeRecord(body string, loader *mnoda.RecordLoader) (mnoda.Entry, error) {
	node, err := codec.JSON.Unmarshal([]byte(body))
	if err != nil {
		return nil, fmt.Errorf("archive: decode record: %w", err)
	}
	e, err := loader.Load(node)
	if err != nil {
		return nil, fmt.Errorf("archive: load record: %w", err)
	}
	return e, nil
}

// IDs returns the IDs of every stored record, ordered by name.
func (a *Archive) IDs(ctx context.Context) ([]mnoda.ID, error) {
	rows, err := a.db.QueryContext(ctx, `SELECT name, scope FROM records ORDER BY name, scope`)
	if err != nil {
		return nil, fmt.Errorf("archive: list ids: %w", err)
	}
	defer rows.Close()

	var ids []mnoda.ID
	for rows.Next() {
		var name, scope string
		if err := rows.Scan(&name, &scope); err != nil {
			return nil, fmt.Errorf("archive: scan id: %w", err)
		}
		ids = append(ids, mnoda.ID{Name: name, Scope: parseScope(scope)})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("archive: iterate ids: %w", err)
	}
	return ids, nil
}

// Relationships returns every stored relationship in insertion order.
func (a *Archive) Relationships(ctx context.Context) ([]mnoda.Relationship, error) {
	rows, err := a.db.QueryContext(ctx,
		`SELECT subject, subject_scope, predicate, object, object_scope FROM relationships ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("archive: list relationships: %w", err)
	}
	defer rows.Close()

	var rels []mnoda.Relationship
	for rows.Next() {
		var subject, subjectScope, predicate, object, objectScope string
		if err := rows.Scan(&subject, &subjectScope, &predicate, &object, &objectScope); err != nil {
			return nil, fmt.Errorf("archive: scan relationship: %w", err)
		}
		rels = append(rels, mnoda.NewRelationship(
			mnoda.ID{Name: subject, Scope: parseScope(subjectScope)},
			predicate,
			mnoda.ID{Name: object, Scope: parseScope(objectScope)}))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("archive: iterate relationships: %w", err)
	}
	return rels, nil
}

// Document rebuilds a single document holding everything in the archive.
func (a *Archive) Document(ctx context.Context, loader *mnoda.RecordLoader) (*mnoda.Document, error) {
	if loader == nil {
		loader = mnoda.NewRecordLoaderWithAllKnownTypes()
	}
	rows, err := a.db.QueryContext(ctx, `SELECT body FROM records ORDER BY name, scope`)
	if err != nil {
		return nil, fmt.Errorf("archive: list records: %w", err)
	}
	var bodies []string
	for rows.Next() {
		var body string
		if err := rows.Scan(&body); err != nil {
			rows.Close()
			return nil, fmt.Errorf("archive: scan record: %w", err)
		}
		bodies = append(bodies, body)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("archive: iterate records: %w", err)
	}

	doc := mnoda.NewDocument()
	for _, body := range bodies {
		e, err := decodeRecord(body, loader)
		if err != nil {
			return nil, err
		}
		doc.Add(e)
	}
	rels, err := a.Relationships(ctx)
	if err != nil {
		return nil, err
	}
	for _, rel := range rels {
		doc.AddRelationship(rel)
	}
	return doc, nil
}

func parseScope(s string) mnoda.Scope {
	if s == mnoda.Global.String() {
		return mnoda.Global
	}
	return mnoda.Local
}
