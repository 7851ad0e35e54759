// Package codec converts document trees to and from text and binary
// encodings. JSON is the canonical on-disk format; YAML, TOML and BSON are
// offered for interchange with other tools.
package codec

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	"go.mongodb.org/mongo-driver/bson"
	"gopkg.in/yaml.v3"

	"github.com/papapumpkin/mnoda/pkg/mnoda"
)

// ErrUnknownFormat indicates a format name or file extension with no codec.
var ErrUnknownFormat = errors.New("unknown document format")

// ErrUnrepresentable indicates a tree value the target format cannot encode.
var ErrUnrepresentable = errors.New("value not representable in format")

// Codec encodes and decodes the generic tree form of a document.
type Codec interface {
	// Name is the format name used in configuration, e.g. "json".
	Name() string
	Marshal(tree map[string]any) ([]byte, error)
	// Unmarshal decodes data into a tree whose values are limited to
	// map[string]any, []any, string, float64, bool and nil.
	Unmarshal(data []byte) (map[string]any, error)
}

// Built-in codecs.
var (
	JSON Codec = jsonCodec{}
	YAML Codec = yamlCodec{}
	TOML Codec = tomlCodec{}
	BSON Codec = bsonCodec{}
)

// IndentedJSON writes JSON with two-space indentation.
var IndentedJSON Codec = jsonCodec{indent: "  "}

// ByName returns the codec for a format name.
func ByName(name string) (Codec, error) {
	switch strings.ToLower(name) {
	case "json":
		return JSON, nil
	case "yaml", "yml":
		return YAML, nil
	case "toml":
		return TOML, nil
	case "bson":
		return BSON, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, name)
	}
}

// ForPath returns the codec matching the extension of path.
func ForPath(path string) (Codec, error) {
	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	if ext == "" {
		return nil, fmt.Errorf("%w: %s has no extension", ErrUnknownFormat, path)
	}
	return ByName(ext)
}

// SaveDocument writes doc to path with c, atomically.
func SaveDocument(doc *mnoda.Document, path string, c Codec) error {
	data, err := c.Marshal(doc.ToNode())
	if err != nil {
		return fmt.Errorf("encoding %s: %w", c.Name(), err)
	}
	return mnoda.SaveWith(path, func(w io.Writer) error {
		_, err := w.Write(data)
		return err
	})
}

// LoadDocument reads and parses the document at path with c. A nil loader
// means mnoda.NewRecordLoaderWithAllKnownTypes.
func LoadDocument(path string, c Codec, loader *mnoda.RecordLoader) (*mnoda.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading document: %w", err)
	}
	return Decode(data, c, loader)
}

// Decode parses an encoded document.
func Decode(data []byte, c Codec, loader *mnoda.RecordLoader) (*mnoda.Document, error) {
	tree, err := c.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", c.Name(), err)
	}
	return mnoda.ParseDocument(tree, loader)
}

type jsonCodec struct {
	indent string
}

func (jsonCodec) Name() string { return "json" }

func (c jsonCodec) Marshal(tree map[string]any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if c.indent != "" {
		enc.SetIndent("", c.indent)
	}
	if err := enc.Encode(tree); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (jsonCodec) Unmarshal(data []byte) (map[string]any, error) {
	var tree map[string]any
	if err := json.Unmarshal(data, &tree); err != nil {
		return nil, err
	}
	return normalizeObject(tree), nil
}

type yamlCodec struct{}

func (yamlCodec) Name() string { return "yaml" }

func (yamlCodec) Marshal(tree map[string]any) ([]byte, error) {
	return yaml.Marshal(tree)
}

func (yamlCodec) Unmarshal(data []byte) (map[string]any, error) {
	var tree map[string]any
	if err := yaml.Unmarshal(data, &tree); err != nil {
		return nil, err
	}
	return normalizeObject(tree), nil
}

type tomlCodec struct{}

func (tomlCodec) Name() string { return "toml" }

// Marshal fails on null values. TOML has no null and go-toml would drop
// them from the output.
func (tomlCodec) Marshal(tree map[string]any) ([]byte, error) {
	if path, ok := findNull(tree, ""); ok {
		return nil, fmt.Errorf("%w: toml has no null (at %s)", ErrUnrepresentable, path)
	}
	return toml.Marshal(tree)
}

// findNull returns the dotted path of the first nil in v, visiting object
// keys in sorted order.
func findNull(v any, path string) (string, bool) {
	switch t := v.(type) {
	case nil:
		return path, true
	case map[string]any:
		for _, k := range slices.Sorted(maps.Keys(t)) {
			if p, ok := findNull(t[k], joinPath(path, k)); ok {
				return p, true
			}
		}
	case []any:
		for i, item := range t {
			if p, ok := findNull(item, fmt.Sprintf("%s[%d]", path, i)); ok {
				return p, true
			}
		}
	}
	return "", false
}

func joinPath(path, key string) string {
	if path == "" {
		return key
	}
	return path + "." + key
}

func (tomlCodec) Unmarshal(data []byte) (map[string]any, error) {
	var tree map[string]any
	if err := toml.Unmarshal(data, &tree); err != nil {
		return nil, err
	}
	return normalizeObject(tree), nil
}

type bsonCodec struct{}

func (bsonCodec) Name() string { return "bson" }

func (bsonCodec) Marshal(tree map[string]any) ([]byte, error) {
	return bson.Marshal(tree)
}

func (bsonCodec) Unmarshal(data []byte) (map[string]any, error) {
	var tree map[string]any
	if err := bson.Unmarshal(data, &tree); err != nil {
		return nil, err
	}
	return normalizeObject(tree), nil
}
