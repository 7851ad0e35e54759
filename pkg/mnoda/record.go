package mnoda

import (
	"fmt"
	"maps"
	"slices"
)

const (
	localIDKey     = "local_id"
	globalIDKey    = "id"
	typeKey        = "type"
	filesKey       = "files"
	userDefinedKey = "user_defined"

	recordContext = "record"
)

// Entry is implemented by *Record and by every record subtype that embeds
// it. A Document holds Entries so that subtypes keep their own fields and
// serialization.
type Entry interface {
	// Base returns the embedded generic record.
	Base() *Record
	// ToNode returns the tree form of the whole entry, subtype fields included.
	ToNode() map[string]any
}

// Record is the unit of stored metadata, such as one simulation run. It
// owns all of its data, files, curve sets and user-defined content.
type Record struct {
	DataHolder

	id          IDField
	typ         string
	files       map[string]File
	userDefined map[string]any
}

// NewRecord returns an empty record of the given type.
func NewRecord(id ID, typ string) *Record {
	return &Record{
		id:  IDField{ID: id, LocalKey: localIDKey, GlobalKey: globalIDKey},
		typ: typ,
	}
}

// ParseRecord builds a generic Record from its tree form. Only the type and
// one of the id keys are required.
func ParseRecord(node map[string]any) (*Record, error) {
	r := &Record{}
	if err := r.parse(node); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *Record) parse(node map[string]any) error {
	id, err := parseIDField(node, localIDKey, globalIDKey, recordContext)
	if err != nil {
		return err
	}
	typ, err := requiredString(node, typeKey, recordContext)
	if err != nil {
		return err
	}
	r.id = id
	r.typ = typ

	if err := r.DataHolder.parse(node, recordContext); err != nil {
		return fmt.Errorf("record %q: %w", id.ID.Name, err)
	}

	files, ok, err := optionalObject(node, filesKey, recordContext)
	if err != nil {
		return err
	}
	if ok {
		for _, uri := range slices.Sorted(maps.Keys(files)) {
			entry, ok := files[uri].(map[string]any)
			if !ok {
				return typeMismatch(uri, fileContext, "an object", files[uri])
			}
			f, err := ParseFile(uri, entry)
			if err != nil {
				return fmt.Errorf("record %q: file %q: %w", id.ID.Name, uri, err)
			}
			r.AddFile(f)
		}
	}

	if v, ok := lookup(node, userDefinedKey); ok {
		ud, ok := v.(map[string]any)
		if !ok {
			return &FieldError{
				Context: recordContext,
				Field:   userDefinedKey,
				Actual:  shapeOf(v),
				Err:     ErrInvalidUserDefined,
			}
		}
		r.userDefined = cloneObject(ud)
	}
	return nil
}

// Base returns r itself.
func (r *Record) Base() *Record { return r }

// ID returns the record's identity.
func (r *Record) ID() ID { return r.id.ID }

// Type returns the record's type tag, e.g. "run".
func (r *Record) Type() string { return r.typ }

// AddFile inserts f, replacing any file with the same URI.
func (r *Record) AddFile(f File) {
	if r.files == nil {
		r.files = make(map[string]File)
	}
	r.files[f.URI] = f
}

// RemoveFile deletes the file with the given URI, if present.
func (r *Record) RemoveFile(uri string) {
	delete(r.files, uri)
}

// File returns the file with the given URI.
func (r *Record) File(uri string) (File, bool) {
	f, ok := r.files[uri]
	return f, ok
}

// Files returns the record's files ordered by URI.
func (r *Record) Files() []File {
	out := make([]File, 0, len(r.files))
	for _, uri := range slices.Sorted(maps.Keys(r.files)) {
		out = append(out, r.files[uri])
	}
	return out
}

// SetUserDefined replaces the user-defined content with a copy of content.
func (r *Record) SetUserDefined(content map[string]any) {
	r.userDefined = cloneObject(content)
}

// UserDefined returns the user-defined content, or nil if there is none.
func (r *Record) UserDefined() map[string]any { return r.userDefined }

// ToNode returns the tree form of r. Sections with no content are omitted,
// so an empty record is just its type and id.
func (r *Record) ToNode() map[string]any {
	node := map[string]any{typeKey: r.typ}
	r.id.addTo(node)
	r.DataHolder.writeTo(node)
	if len(r.files) > 0 {
		files := make(map[string]any, len(r.files))
		for uri, f := range r.files {
			files[uri] = f.ToNode()
		}
		node[filesKey] = files
	}
	if len(r.userDefined) > 0 {
		node[userDefinedKey] = cloneObject(r.userDefined)
	}
	return node
}

func cloneObject(obj map[string]any) map[string]any {
	if obj == nil {
		return nil
	}
	out := make(map[string]any, len(obj))
	for k, v := range obj {
		out[k] = cloneTree(v)
	}
	return out
}

func cloneTree(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return cloneObject(t)
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = cloneTree(e)
		}
		return out
	default:
		return v
	}
}
