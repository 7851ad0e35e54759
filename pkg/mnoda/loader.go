package mnoda

// LoaderFunc builds an Entry of a specific record type from its tree form.
type LoaderFunc func(node map[string]any) (Entry, error)

// RecordLoader maps record type strings to the functions that rebuild them.
// Types with no registered loader are built as generic records.
type RecordLoader struct {
	loaders map[string]LoaderFunc
}

// NewRecordLoader returns a loader with no registered types.
func NewRecordLoader() *RecordLoader {
	return &RecordLoader{loaders: make(map[string]LoaderFunc)}
}

// NewRecordLoaderWithAllKnownTypes returns a loader with every record type
// defined in this package registered.
func NewRecordLoaderWithAllKnownTypes() *RecordLoader {
	loader := NewRecordLoader()
	AddRunLoader(loader)
	return loader
}

// AddTypeLoader registers fn for typ. A later registration for the same type
// replaces the earlier one.
func (l *RecordLoader) AddTypeLoader(typ string, fn LoaderFunc) {
	if l.loaders == nil {
		l.loaders = make(map[string]LoaderFunc)
	}
	l.loaders[typ] = fn
}

// CanLoad reports whether a loader is registered for typ.
func (l *RecordLoader) CanLoad(typ string) bool {
	_, ok := l.loaders[typ]
	return ok
}

// Load builds the Entry described by node using the loader registered for
// its type, falling back to a generic Record.
func (l *RecordLoader) Load(node map[string]any) (Entry, error) {
	typ, err := requiredString(node, typeKey, recordContext)
	if err != nil {
		return nil, err
	}
	if fn, ok := l.loaders[typ]; ok {
		return fn(node)
	}
	r, err := ParseRecord(node)
	if err != nil {
		return nil, err
	}
	return r, nil
}
