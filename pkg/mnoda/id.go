package mnoda

// Scope says whether an ID is only meaningful inside one document or is
// unique across all documents.
type Scope int

const (
	Local  Scope = iota // Temporary name, valid within a single document
	Global              // Globally unique name
)

func (s Scope) String() string {
	if s == Global {
		return "global"
	}
	return "local"
}

// ID is the name of a record or relationship endpoint.
type ID struct {
	Name  string
	Scope Scope
}

// LocalID returns a document-scoped ID.
func LocalID(name string) ID {
	return ID{Name: name, Scope: Local}
}

// GlobalID returns a globally unique ID.
func GlobalID(name string) ID {
	return ID{Name: name, Scope: Global}
}

// IDField binds an ID to the pair of keys it is stored under: one key for
// local IDs and another for global ones. Only one of the two is ever written.
type IDField struct {
	ID        ID
	LocalKey  string
	GlobalKey string
}

// parseIDField reads an IDField from node. The global key wins when both
// keys are present.
func parseIDField(node map[string]any, localKey, globalKey, context string) (IDField, error) {
	field := IDField{LocalKey: localKey, GlobalKey: globalKey}
	if v, ok := lookup(node, globalKey); ok {
		name, ok := v.(string)
		if !ok {
			return field, typeMismatch(globalKey, context, "a string", v)
		}
		field.ID = GlobalID(name)
		return field, nil
	}
	if v, ok := lookup(node, localKey); ok {
		name, ok := v.(string)
		if !ok {
			return field, typeMismatch(localKey, context, "a string", v)
		}
		field.ID = LocalID(name)
		return field, nil
	}
	return field, &FieldError{
		Context: context,
		Field:   localKey + "' or '" + globalKey,
		Err:     ErrMissingField,
	}
}

// addTo writes the ID under the key matching its scope.
func (f IDField) addTo(node map[string]any) {
	if f.ID.Scope == Global {
		node[f.GlobalKey] = f.ID.Name
		return
	}
	node[f.LocalKey] = f.ID.Name
}
