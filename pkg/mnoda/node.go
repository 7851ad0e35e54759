package mnoda

import (
	"encoding/json"
	"fmt"
)

// Trees handled by this package are the generic values produced by decoding
// JSON into an any: map[string]any, []any, string, float64, bool and nil.
// Other numeric kinds are accepted on input so that trees built by hand or
// decoded by other codecs parse the same way.

// lookup returns the value stored under key. A JSON null counts as absent.
func lookup(node map[string]any, key string) (any, bool) {
	v, ok := node[key]
	if !ok || v == nil {
		return nil, false
	}
	return v, true
}

func requiredField(node map[string]any, key, context string) (any, error) {
	v, ok := lookup(node, key)
	if !ok {
		return nil, missingField(key, context)
	}
	return v, nil
}

func requiredString(node map[string]any, key, context string) (string, error) {
	v, err := requiredField(node, key, context)
	if err != nil {
		return "", err
	}
	s, ok := v.(string)
	if !ok {
		return "", typeMismatch(key, context, "a string", v)
	}
	return s, nil
}

// optionalString returns "" when key is absent.
func optionalString(node map[string]any, key, context string) (string, error) {
	v, ok := lookup(node, key)
	if !ok {
		return "", nil
	}
	s, ok := v.(string)
	if !ok {
		return "", typeMismatch(key, context, "a string", v)
	}
	return s, nil
}

// optionalObject returns nil, false when key is absent.
func optionalObject(node map[string]any, key, context string) (map[string]any, bool, error) {
	v, ok := lookup(node, key)
	if !ok {
		return nil, false, nil
	}
	obj, ok := v.(map[string]any)
	if !ok {
		return nil, false, typeMismatch(key, context, "an object", v)
	}
	return obj, true, nil
}

// optionalTags reads an optional array of strings. Any non-string entry is
// an error; nothing is dropped.
func optionalTags(node map[string]any, key, context string) ([]string, error) {
	v, ok := lookup(node, key)
	if !ok {
		return nil, nil
	}
	list, ok := v.([]any)
	if !ok {
		return nil, typeMismatch(key, context, "an array of strings", v)
	}
	tags := make([]string, 0, len(list))
	for _, entry := range list {
		s, ok := entry.(string)
		if !ok {
			return nil, typeMismatch(key, context, "an array of strings", entry)
		}
		tags = append(tags, s)
	}
	return tags, nil
}

// asNumber converts any numeric tree value to float64.
func asNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}

// shapeOf names the tree shape of v for error messages.
func shapeOf(v any) string {
	if v == nil {
		return "null"
	}
	if _, ok := asNumber(v); ok {
		return "number"
	}
	switch v.(type) {
	case string:
		return "string"
	case bool:
		return "boolean"
	case []any:
		return "array"
	case map[string]any:
		return "object"
	default:
		return fmt.Sprintf("%T", v)
	}
}

func stringsToTree(values []string) []any {
	out := make([]any, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}

func numbersToTree(values []float64) []any {
	out := make([]any, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}
