package connector

import (
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/pseudomuto/provkit/pkg/consts"
)

// Folder is a connector over a directory of loose files. Writes go straight to
// disk.
type Folder struct {
	root string
}

// NewFolder returns a connector rooted at the given directory. The directory is
// created lazily by the first Save.
func NewFolder(root string) *Folder {
	return &Folder{root: root}
}

// Root returns the directory the connector reads from and writes to.
func (f *Folder) Root() string {
	return f.root
}

// Open opens the file stored under (container, name).
func (f *Folder) Open(container, name string) (io.ReadCloser, error) {
	key := Key(container, name)
	if err := validKey(key); err != nil {
		return nil, err
	}

	file, err := os.Open(f.pathFor(key))
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open stream: %s", key)
	}

	return file, nil
}

// Save writes the content of r to the file for (container, name), creating any
// missing parent directories. The content is written to a temporary file that
// replaces the target only once r is fully read, so a failed write leaves any
// existing file untouched.
func (f *Folder) Save(container, name string, r io.Reader) (err error) {
	key := Key(container, name)
	if err := validKey(key); err != nil {
		return err
	}

	target := f.pathFor(key)
	dir := filepath.Dir(target)
	if err := os.MkdirAll(dir, consts.ModeDir); err != nil {
		return errors.Wrapf(err, "failed to create directory for: %s", key)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(target)+"-*")
	if err != nil {
		return errors.Wrapf(err, "failed to create temporary file in: %s", dir)
	}
	tmpPath := tmp.Name()
	defer func() {
		if err != nil {
			_ = os.Remove(tmpPath)
		}
	}()

	if _, err := io.Copy(tmp, r); err != nil {
		_ = tmp.Close()
		return errors.Wrapf(err, "failed to write file: %s", target)
	}

	if err := tmp.Close(); err != nil {
		return errors.Wrapf(err, "failed to close file: %s", tmpPath)
	}

	if err := os.Chmod(tmpPath, consts.ModeFile); err != nil {
		return errors.Wrapf(err, "failed to set permissions on: %s", tmpPath)
	}

	if err := os.Rename(tmpPath, target); err != nil {
		return errors.Wrapf(err, "failed to replace file: %s", target)
	}

	return nil
}

// Names returns the slash-separated keys of every file below the root, in
// lexical order.
func (f *Folder) Names() ([]string, error) {
	var names []string

	// NB: WalkDir always walks in lexical order
	err := filepath.WalkDir(f.root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if d.IsDir() {
			return nil
		}

		rel, err := filepath.Rel(f.root, p)
		if err != nil {
			return err
		}

		names = append(names, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to list folder: %s", f.root)
	}

	return names, nil
}

// Commit is a no-op; folder writes are immediate.
func (f *Folder) Commit() error {
	return nil
}

func (f *Folder) pathFor(key string) string {
	return filepath.Join(f.root, filepath.FromSlash(key))
}
