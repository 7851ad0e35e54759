package mnoda

import (
	"fmt"
	"maps"
	"slices"
)

const (
	dataKey        = "data"
	curveSetsKey   = "curve_sets"
	libraryDataKey = "library_data"
)

// DataHolder carries the data, curve sets and per-library nested data shared
// by records and library data sections.
type DataHolder struct {
	data        map[string]Datum
	curveSets   map[string]CurveSet
	libraryData map[string]*DataHolder
}

// Add inserts d under name, replacing any existing value.
func (h *DataHolder) Add(name string, d Datum) {
	if h.data == nil {
		h.data = make(map[string]Datum)
	}
	h.data[name] = d
}

// AddCurveSet inserts cs, replacing any curve set with the same name.
func (h *DataHolder) AddCurveSet(cs CurveSet) {
	if h.curveSets == nil {
		h.curveSets = make(map[string]CurveSet)
	}
	h.curveSets[cs.Name] = cs
}

// AddLibraryData returns the nested holder for the named library, creating
// it if needed.
func (h *DataHolder) AddLibraryData(name string) *DataHolder {
	if h.libraryData == nil {
		h.libraryData = make(map[string]*DataHolder)
	}
	lib, ok := h.libraryData[name]
	if !ok {
		lib = &DataHolder{}
		h.libraryData[name] = lib
	}
	return lib
}

// Data returns the values keyed by name. Callers must not modify the map.
func (h *DataHolder) Data() map[string]Datum { return h.data }

// Datum returns the value stored under name.
func (h *DataHolder) Datum(name string) (Datum, bool) {
	d, ok := h.data[name]
	return d, ok
}

// CurveSets returns the curve sets keyed by name.
func (h *DataHolder) CurveSets() map[string]CurveSet { return h.curveSets }

// CurveSet returns the curve set with the given name.
func (h *DataHolder) CurveSet(name string) (CurveSet, bool) {
	cs, ok := h.curveSets[name]
	return cs, ok
}

// LibraryData returns the nested holders keyed by library name.
func (h *DataHolder) LibraryData() map[string]*DataHolder { return h.libraryData }

// parse fills h from the data, curve_sets and library_data sections of node.
// Each section is optional.
func (h *DataHolder) parse(node map[string]any, context string) error {
	data, ok, err := optionalObject(node, dataKey, context)
	if err != nil {
		return err
	}
	if ok {
		for _, name := range slices.Sorted(maps.Keys(data)) {
			entry, ok := data[name].(map[string]any)
			if !ok {
				return typeMismatch(name, dataContext, "an object", data[name])
			}
			d, err := ParseDatum(entry)
			if err != nil {
				return fmt.Errorf("data %q: %w", name, err)
			}
			h.Add(name, d)
		}
	}

	curveSets, ok, err := optionalObject(node, curveSetsKey, context)
	if err != nil {
		return err
	}
	if ok {
		for _, name := range slices.Sorted(maps.Keys(curveSets)) {
			entry, ok := curveSets[name].(map[string]any)
			if !ok {
				return typeMismatch(name, curveSetContext, "an object", curveSets[name])
			}
			cs, err := ParseCurveSet(name, entry)
			if err != nil {
				return fmt.Errorf("curve set %q: %w", name, err)
			}
			h.AddCurveSet(cs)
		}
	}

	libraries, ok, err := optionalObject(node, libraryDataKey, context)
	if err != nil {
		return err
	}
	if ok {
		for _, name := range slices.Sorted(maps.Keys(libraries)) {
			entry, ok := libraries[name].(map[string]any)
			if !ok {
				return typeMismatch(name, libraryDataKey, "an object", libraries[name])
			}
			if err := h.AddLibraryData(name).parse(entry, libraryDataKey); err != nil {
				return fmt.Errorf("library %q: %w", name, err)
			}
		}
	}
	return nil
}

// writeTo adds each non-empty section of h to node.
func (h *DataHolder) writeTo(node map[string]any) {
	if len(h.data) > 0 {
		data := make(map[string]any, len(h.data))
		for name, d := range h.data {
			data[name] = d.ToNode()
		}
		node[dataKey] = data
	}
	if len(h.curveSets) > 0 {
		sets := make(map[string]any, len(h.curveSets))
		for name, cs := range h.curveSets {
			sets[name] = cs.ToNode()
		}
		node[curveSetsKey] = sets
	}
	if len(h.libraryData) > 0 {
		libs := make(map[string]any, len(h.libraryData))
		for name, lib := range h.libraryData {
			libNode := make(map[string]any)
			lib.writeTo(libNode)
			libs[name] = libNode
		}
		node[libraryDataKey] = libs
	}
}
