package mnoda

import (
	"maps"
	"slices"
)

const (
	independentKey = "independent"
	dependentKey   = "dependent"

	curveContext    = "curve"
	curveSetContext = "curve_set"
)

// Curve is a named series of scalars inside a CurveSet.
type Curve struct {
	Name   string
	Values []float64
	Units  string
	Tags   []string
}

// NewCurve returns a Curve holding a copy of values.
func NewCurve(name string, values []float64) Curve {
	return Curve{Name: name, Values: slices.Clone(values)}
}

// ParseCurve builds a Curve from the tree stored under name. The value must
// be a numeric array; units and tags follow the same rules as a Datum.
func ParseCurve(name string, node map[string]any) (Curve, error) {
	raw, ok := lookup(node, valueKey)
	if !ok {
		return Curve{}, missingField(valueKey, curveContext)
	}
	list, ok := raw.([]any)
	if !ok {
		return Curve{}, typeMismatch(valueKey, curveContext, "a list of numbers", raw)
	}
	parsed, err := parseArrayValue(list, valueKey, curveContext)
	if err != nil {
		return Curve{}, err
	}
	if parsed.Type() != TypeScalarArray {
		return Curve{}, typeMismatch(valueKey, curveContext, "a list of numbers", list[0])
	}
	units, err := optionalString(node, unitsKey, curveContext)
	if err != nil {
		return Curve{}, err
	}
	tags, err := optionalTags(node, tagsKey, curveContext)
	if err != nil {
		return Curve{}, err
	}
	return Curve{Name: name, Values: parsed.ScalarArrayValue(), Units: units, Tags: tags}, nil
}

// ToNode returns the tree stored under the curve's name.
func (c Curve) ToNode() map[string]any {
	node := map[string]any{valueKey: numbersToTree(c.Values)}
	if c.Units != "" {
		node[unitsKey] = c.Units
	}
	if len(c.Tags) > 0 {
		node[tagsKey] = stringsToTree(c.Tags)
	}
	return node
}

// Equal reports whether two curves have the same name, values, units and tags.
func (c Curve) Equal(o Curve) bool {
	return c.Name == o.Name && c.Units == o.Units &&
		slices.Equal(c.Values, o.Values) && slices.Equal(c.Tags, o.Tags)
}

// CurveSet groups independent and dependent curves under one name. The two
// roles are separate namespaces: the same curve name may appear in both.
type CurveSet struct {
	Name string

	independents map[string]Curve
	dependents   map[string]Curve
}

// NewCurveSet returns an empty CurveSet.
func NewCurveSet(name string) CurveSet {
	return CurveSet{
		Name:         name,
		independents: make(map[string]Curve),
		dependents:   make(map[string]Curve),
	}
}

// AddIndependent inserts c, replacing any independent curve with its name.
func (cs *CurveSet) AddIndependent(c Curve) {
	if cs.independents == nil {
		cs.independents = make(map[string]Curve)
	}
	cs.independents[c.Name] = c
}

// AddDependent inserts c, replacing any dependent curve with its name.
func (cs *CurveSet) AddDependent(c Curve) {
	if cs.dependents == nil {
		cs.dependents = make(map[string]Curve)
	}
	cs.dependents[c.Name] = c
}

// Independents returns the independent curves keyed by name.
func (cs CurveSet) Independents() map[string]Curve { return cs.independents }

// Dependents returns the dependent curves keyed by name.
func (cs CurveSet) Dependents() map[string]Curve { return cs.dependents }

// Equal compares names and both curve maps.
func (cs CurveSet) Equal(o CurveSet) bool {
	eq := func(a, b Curve) bool { return a.Equal(b) }
	return cs.Name == o.Name &&
		maps.EqualFunc(cs.independents, o.independents, eq) &&
		maps.EqualFunc(cs.dependents, o.dependents, eq)
}

// ParseCurveSet builds a CurveSet from the tree stored under name.
func ParseCurveSet(name string, node map[string]any) (CurveSet, error) {
	cs := NewCurveSet(name)
	if err := parseCurves(node, independentKey, cs.AddIndependent); err != nil {
		return CurveSet{}, err
	}
	if err := parseCurves(node, dependentKey, cs.AddDependent); err != nil {
		return CurveSet{}, err
	}
	return cs, nil
}

func parseCurves(node map[string]any, key string, add func(Curve)) error {
	curves, ok, err := optionalObject(node, key, curveSetContext)
	if err != nil || !ok {
		return err
	}
	for _, name := range slices.Sorted(maps.Keys(curves)) {
		curveNode, ok := curves[name].(map[string]any)
		if !ok {
			return typeMismatch(name, curveSetContext, "an object", curves[name])
		}
		c, err := ParseCurve(name, curveNode)
		if err != nil {
			return err
		}
		add(c)
	}
	return nil
}

// ToNode always writes both the independent and dependent sections, even
// when one of them is empty.
func (cs CurveSet) ToNode() map[string]any {
	return map[string]any{
		independentKey: curvesToTree(cs.independents),
		dependentKey:   curvesToTree(cs.dependents),
	}
}

func curvesToTree(curves map[string]Curve) map[string]any {
	node := make(map[string]any, len(curves))
	for name, c := range curves {
		node[name] = c.ToNode()
	}
	return node
}
