// Package connector provides the storage abstraction that template packages
// read and write named byte streams through.
//
// Two implementations are available:
//   - Archive: a zip-backed package. Writes are staged in memory and only
//     reach disk when Commit is called, which replaces the archive atomically.
//   - Folder: a directory of loose files. Writes are immediate and Commit is a
//     no-op, so callers never need to check which variant they hold.
//
// Streams are addressed by a (container, name) pair which is flattened into a
// forward-slash key with Key.
package connector

import (
	"io"
	"path"
	"strings"

	"github.com/pkg/errors"
)

// Connector is the capability set shared by all template storage backends.
type Connector interface {
	// Open returns the stream stored under (container, name). Missing streams
	// yield an error satisfying errors.Is(err, fs.ErrNotExist).
	Open(container, name string) (io.ReadCloser, error)

	// Save stores the content of r under (container, name), replacing any
	// previous stream with the same key.
	Save(container, name string, r io.Reader) error

	// Names returns the keys of all stored streams.
	Names() ([]string, error)

	// Commit flushes pending writes. Backends that write immediately return nil.
	Commit() error
}

// Key flattens a (container, name) pair into the stream key. An empty container
// yields the bare name. Keys are cleaned so equivalent spellings such as a//b
// and a/./b address the same stream.
func Key(container, name string) string {
	container = strings.Trim(strings.ReplaceAll(container, `\`, "/"), "/")

	key := name
	if container != "" {
		key = container + "/" + name
	}
	if key == "" {
		return ""
	}

	return path.Clean(key)
}

// validKey reports an error for keys that would escape the connector's root.
func validKey(key string) error {
	if key == "" {
		return errors.New("stream name cannot be empty")
	}

	clean := path.Clean(key)
	if path.IsAbs(clean) || clean == ".." || strings.HasPrefix(clean, "../") {
		return errors.Errorf("invalid stream name: %s", key)
	}

	return nil
}
