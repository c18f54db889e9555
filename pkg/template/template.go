// Package template provides the in-memory model of a provisioning template.
//
// A Template holds the ordered list of file entries captured into a template
// package together with the Connector that stores their bytes. The model only
// carries metadata; file content lives in the connector's namespace and is
// referenced through each File's Src key.
//
// Files are kept in insertion order. The only identity rule is enforced by
// Upsert: a file is identified by its (Src, Folder) pair and adding a file with
// an existing identity replaces the previous entry instead of merging into it.
package template

import (
	"maps"
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/pseudomuto/provkit/pkg/connector"
)

// DefaultVersion is the version written for templates created by New.
const DefaultVersion = "1.0"

type (
	// Template is the root of a loaded template package.
	Template struct {
		// ID is the provisioning template identifier.
		ID string

		// Version is the template version, kept as text to round-trip exactly.
		Version string

		// Files are the file entries in insertion order.
		Files []*File

		// Extra holds manifest sections this toolkit does not model. They are
		// written back unchanged on save.
		Extra []Section

		// Connector stores the bytes referenced by Files. It is never serialized.
		Connector connector.Connector
	}

	// File describes a single file to provision.
	File struct {
		// Src is the key of the file's bytes within the connector.
		Src string

		// Folder is the destination folder, always using forward slashes.
		Folder string

		// Level is the publishing level applied when provisioning.
		Level FileLevel

		// Overwrite controls whether an existing destination file is replaced.
		Overwrite bool

		// WebParts are embedded components placed on the file when it is a page.
		WebParts []WebPart

		// Properties are tokenized custom metadata values keyed by field name.
		Properties map[string]string
	}

	// WebPart is an embedded component definition carried by a page file.
	WebPart struct {
		// Order is the zero-based slot index within the zone. Duplicates are allowed.
		Order uint

		// Zone identifies the placement zone on the page.
		Zone string

		// Title is the display title of the web part.
		Title string

		// Contents is the (tokenized) serialized definition.
		Contents string
	}

	// Section is an opaque manifest element preserved across load and save.
	Section struct {
		Name     string
		Attrs    []Attr
		InnerXML string

		// BeforeFiles places the section ahead of the Files element on save.
		BeforeFiles bool
	}

	// Attr is an attribute of a preserved Section.
	Attr struct {
		Name  string
		Value string
	}
)

// New creates an empty template with a freshly generated identifier.
func New() *Template {
	id := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))

	return &Template{
		ID:      "TEMPLATE-" + id,
		Version: DefaultVersion,
		Files:   make([]*File, 0),
	}
}

// NewFile creates a file entry with the default level and overwrite settings.
func NewFile(src, folder string) *File {
	return &File{
		Src:       src,
		Folder:    NormalizeFolder(folder),
		Level:     Published,
		Overwrite: true,
	}
}

// Find returns the index and entry matching the (src, folder) identity, or -1
// and nil when no such entry exists.
func (t *Template) Find(src, folder string) (int, *File) {
	for i, f := range t.Files {
		if f.Src == src && f.Folder == folder {
			return i, f
		}
	}

	return -1, nil
}

// Upsert appends f to the template after removing any entry with the same
// (Src, Folder) identity. The removed entry's web parts and properties are
// discarded, not merged. Returns true when an entry was replaced.
func (t *Template) Upsert(f *File) (bool, error) {
	if f == nil {
		return false, errors.New("file cannot be nil")
	}

	i, _ := t.Find(f.Src, f.Folder)
	if i >= 0 {
		t.Files = append(t.Files[:i], t.Files[i+1:]...)
	}

	t.Files = append(t.Files, f)
	return i >= 0, nil
}

// Clone returns a deep copy of the file entry.
func (f *File) Clone() *File {
	c := *f
	if f.WebParts != nil {
		c.WebParts = append([]WebPart(nil), f.WebParts...)
	}
	if f.Properties != nil {
		c.Properties = maps.Clone(f.Properties)
	}

	return &c
}

// NormalizeFolder converts host path separators to forward slashes.
func NormalizeFolder(folder string) string {
	return strings.ReplaceAll(folder, `\`, "/")
}
