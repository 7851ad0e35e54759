package codec

import (
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
)

// normalizeObject rewrites a decoded tree in place so that every decoder
// yields the same shapes JSON does: string-keyed maps, []any slices and
// float64 numbers.
func normalizeObject(obj map[string]any) map[string]any {
	if obj == nil {
		return map[string]any{}
	}
	for k, v := range obj {
		obj[k] = normalize(v)
	}
	return obj
}

func normalize(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return normalizeObject(t)
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, e := range t {
			out[fmt.Sprint(k)] = normalize(e)
		}
		return out
	case bson.M:
		return normalizeObject(map[string]any(t))
	case bson.D:
		out := make(map[string]any, len(t))
		for _, e := range t {
			out[e.Key] = normalize(e.Value)
		}
		return out
	case []any:
		for i, e := range t {
			t[i] = normalize(e)
		}
		return t
	case bson.A:
		return normalize([]any(t))
	case []map[string]any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = normalizeObject(e)
		}
		return out
	case int:
		return float64(t)
	case int32:
		return float64(t)
	case int64:
		return float64(t)
	case uint64:
		return float64(t)
	case float32:
		return float64(t)
	default:
		return v
	}
}
