package mnoda

import "slices"

const (
	mimeTypeKey = "mimetype"
	fileContext = "File"
)

// File is a reference to an external file, identified by its URI. A record
// holds at most one File per URI.
type File struct {
	URI      string
	MimeType string
	Tags     []string
}

// NewFile returns a File with no mimetype or tags.
func NewFile(uri string) File {
	return File{URI: uri}
}

// ParseFile builds a File from the tree stored under uri in a record's
// files section. The URI itself is the key, not part of node.
func ParseFile(uri string, node map[string]any) (File, error) {
	mimeType, err := optionalString(node, mimeTypeKey, fileContext)
	if err != nil {
		return File{}, err
	}
	tags, err := optionalTags(node, tagsKey, fileContext)
	if err != nil {
		return File{}, err
	}
	return File{URI: uri, MimeType: mimeType, Tags: tags}, nil
}

// ToNode returns the tree stored under the file's URI. Empty fields are
// omitted.
func (f File) ToNode() map[string]any {
	node := make(map[string]any, 2)
	if f.MimeType != "" {
		node[mimeTypeKey] = f.MimeType
	}
	if len(f.Tags) > 0 {
		node[tagsKey] = stringsToTree(f.Tags)
	}
	return node
}

// Equal compares every field, not only the URI.
func (f File) Equal(o File) bool {
	return f.URI == o.URI && f.MimeType == o.MimeType && slices.Equal(f.Tags, o.Tags)
}
