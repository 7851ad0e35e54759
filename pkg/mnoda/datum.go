package mnoda

import "slices"

const (
	valueKey = "value"
	unitsKey = "units"
	tagsKey  = "tags"

	dataContext = "data"
)

// ValueType identifies which variant of a Datum is active.
type ValueType int

const (
	TypeString      ValueType = iota // Single string
	TypeScalar                       // Single number
	TypeStringArray                  // List of strings
	TypeScalarArray                  // List of numbers
)

func (t ValueType) String() string {
	switch t {
	case TypeString:
		return "string"
	case TypeScalar:
		return "scalar"
	case TypeStringArray:
		return "string array"
	case TypeScalarArray:
		return "scalar array"
	default:
		return "unknown"
	}
}

// Datum is a single typed value in a record's data section: a string, a
// scalar, an array of strings, or an array of scalars, with optional units
// and tags.
type Datum struct {
	Units string
	Tags  []string

	valueType   ValueType
	str         string
	scalar      float64
	strArray    []string
	scalarArray []float64
}

// NewString returns a string Datum.
func NewString(v string) Datum {
	return Datum{valueType: TypeString, str: v}
}

// NewScalar returns a scalar Datum.
func NewScalar(v float64) Datum {
	return Datum{valueType: TypeScalar, scalar: v}
}

// NewStringArray returns a string-array Datum.
func NewStringArray(v []string) Datum {
	return Datum{valueType: TypeStringArray, strArray: slices.Clone(v)}
}

// NewScalarArray returns a scalar-array Datum.
func NewScalarArray(v []float64) Datum {
	return Datum{valueType: TypeScalarArray, scalarArray: slices.Clone(v)}
}

// Type returns the active variant.
func (d Datum) Type() ValueType { return d.valueType }

// StringValue returns the value of a string Datum, or "" for other variants.
func (d Datum) StringValue() string { return d.str }

// ScalarValue returns the value of a scalar Datum, or 0 for other variants.
func (d Datum) ScalarValue() float64 { return d.scalar }

// StringArrayValue returns the values of a string-array Datum.
func (d Datum) StringArrayValue() []string { return d.strArray }

// ScalarArrayValue returns the values of a scalar-array Datum.
func (d Datum) ScalarArrayValue() []float64 { return d.scalarArray }

// Equal reports whether both Datums hold the same variant, value, units and
// tags. Nil and empty slices compare equal.
func (d Datum) Equal(o Datum) bool {
	if d.valueType != o.valueType || d.Units != o.Units || !slices.Equal(d.Tags, o.Tags) {
		return false
	}
	switch d.valueType {
	case TypeString:
		return d.str == o.str
	case TypeScalar:
		return d.scalar == o.scalar
	case TypeStringArray:
		return slices.Equal(d.strArray, o.strArray)
	default:
		return slices.Equal(d.scalarArray, o.scalarArray)
	}
}

// ParseDatum builds a Datum from its tree form. The shape of the "value"
// field selects the variant. An empty array is a scalar array.
func ParseDatum(node map[string]any) (Datum, error) {
	var d Datum
	raw, ok := lookup(node, valueKey)
	if !ok {
		return d, missingField(valueKey, dataContext)
	}

	switch v := raw.(type) {
	case string:
		d = NewString(v)
	case []any:
		parsed, err := parseArrayValue(v, valueKey, dataContext)
		if err != nil {
			return d, err
		}
		d = parsed
	default:
		n, ok := asNumber(raw)
		if !ok {
			// A value of any other shape is no usable value at all.
			return d, &FieldError{
				Context:  dataContext,
				Field:    valueKey,
				Expected: "a string, number, list of strings, or list of numbers",
				Actual:   shapeOf(raw),
				Err:      ErrMissingField,
			}
		}
		d = NewScalar(n)
	}

	units, err := optionalString(node, unitsKey, dataContext)
	if err != nil {
		return Datum{}, err
	}
	tags, err := optionalTags(node, tagsKey, dataContext)
	if err != nil {
		return Datum{}, err
	}
	d.Units = units
	d.Tags = tags
	return d, nil
}

// parseArrayValue picks the array variant from the first element and
// requires every other element to match it.
func parseArrayValue(list []any, field, context string) (Datum, error) {
	mixed := &FieldError{Context: context, Field: field, Err: ErrMixedArray}
	if len(list) == 0 {
		return Datum{valueType: TypeScalarArray, scalarArray: []float64{}}, nil
	}
	if _, ok := list[0].(string); ok {
		values := make([]string, 0, len(list))
		for _, entry := range list {
			s, ok := entry.(string)
			if !ok {
				return Datum{}, mixed
			}
			values = append(values, s)
		}
		return Datum{valueType: TypeStringArray, strArray: values}, nil
	}
	values := make([]float64, 0, len(list))
	for _, entry := range list {
		n, ok := asNumber(entry)
		if !ok {
			return Datum{}, mixed
		}
		values = append(values, n)
	}
	return Datum{valueType: TypeScalarArray, scalarArray: values}, nil
}

// ToNode returns the tree form of d. Units and tags are omitted when empty.
func (d Datum) ToNode() map[string]any {
	node := make(map[string]any, 3)
	switch d.valueType {
	case TypeString:
		node[valueKey] = d.str
	case TypeScalar:
		node[valueKey] = d.scalar
	case TypeStringArray:
		node[valueKey] = stringsToTree(d.strArray)
	default:
		node[valueKey] = numbersToTree(d.scalarArray)
	}
	if len(d.Tags) > 0 {
		node[tagsKey] = stringsToTree(d.Tags)
	}
	if d.Units != "" {
		node[unitsKey] = d.Units
	}
	return node
}
