// Package manifest serializes templates to and from the provisioning manifest
// XML format.
//
// The manifest is the document stored next to (or inside) a template package
// that lists every file entry together with its destination folder, publishing
// level, overwrite flag, web parts and properties. Sections of the template that
// this toolkit does not model are carried through unchanged so that saving a
// loaded template never drops content.
//
// Example:
//
//	tmpl, err := manifest.Latest.Decode(r)
//	if err != nil {
//		return err
//	}
//
//	err = manifest.Latest.Encode(w, tmpl)
package manifest

import (
	"io"

	"github.com/pseudomuto/provkit/pkg/template"
)

// Formatter reads and writes a manifest schema version.
type Formatter interface {
	Encode(io.Writer, *template.Template) error
	Decode(io.Reader) (*template.Template, error)
}

// Latest is the formatter used whenever a template is written.
var Latest Formatter = &xmlFormatter{namespace: Namespace}
