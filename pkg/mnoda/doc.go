// Package mnoda is an in-process document model for experiment and
// simulation metadata.
//
// A Document holds Records (such as Runs) and the Relationships between
// them. Records carry typed data (Datum), file references (File), curve
// sets, per-library data and free-form user-defined content. Every type
// converts to and from a generic JSON-shaped tree (map[string]any and
// friends) with ToNode and a Parse function, and Document.Save writes the
// whole tree to disk atomically.
//
// Records and relationship endpoints are named by an ID that is either
// local to one document ("local_id", "local_subject", "local_object") or
// globally unique ("id", "subject", "object"). When a tree carries both, the
// global name wins.
//
// Applications register their own record types with a RecordLoader so that
// loading a document rebuilds the right Go type for each record.
package mnoda
