package connector

import (
	"bytes"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"

	"github.com/klauspost/compress/zip"
	"github.com/pkg/errors"
	"github.com/pseudomuto/provkit/pkg/consts"
)

// Archive is a zip-backed connector. All streams are held in memory; the
// archive on disk only changes when Commit is called.
type Archive struct {
	path    string
	entries map[string][]byte
	order   []string
}

// NewArchive creates an empty archive connector that will be written to path.
// Nothing touches the filesystem until Commit.
func NewArchive(archivePath string) *Archive {
	return &Archive{
		path:    archivePath,
		entries: make(map[string][]byte),
	}
}

// OpenArchive reads every entry of the zip archive at path into a new
// connector. The file handle is released before returning.
func OpenArchive(archivePath string) (a *Archive, err error) {
	r, err := zip.OpenReader(archivePath)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open archive: %s", archivePath)
	}
	defer func() {
		if closeErr := r.Close(); closeErr != nil && err == nil {
			err = errors.Wrapf(closeErr, "failed to close archive: %s", archivePath)
		}
	}()

	a = NewArchive(archivePath)
	for _, f := range r.File {
		if f.FileInfo().IsDir() {
			continue
		}

		data, err := readEntry(f)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to read archive entry: %s", f.Name)
		}

		a.put(path2key(f.Name), data)
	}

	return a, nil
}

// Path returns the location the archive is committed to.
func (a *Archive) Path() string {
	return a.path
}

// Open returns the staged stream for (container, name).
func (a *Archive) Open(container, name string) (io.ReadCloser, error) {
	key := Key(container, name)
	data, ok := a.entries[key]
	if !ok {
		return nil, errors.Wrapf(fs.ErrNotExist, "stream not found in archive: %s", key)
	}

	return io.NopCloser(bytes.NewReader(data)), nil
}

// Save stages the content of r under (container, name). The archive on disk is
// not modified until Commit.
func (a *Archive) Save(container, name string, r io.Reader) error {
	key := Key(container, name)
	if err := validKey(key); err != nil {
		return err
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return errors.Wrapf(err, "failed to read content for: %s", key)
	}

	a.put(key, data)
	return nil
}

// Names returns the keys of all staged streams in the order they were added.
func (a *Archive) Names() ([]string, error) {
	return append([]string(nil), a.order...), nil
}

// Commit writes every staged stream to the archive path. The archive is built
// in a temporary file next to the destination and renamed over it, so a failed
// commit leaves any previous archive untouched.
func (a *Archive) Commit() (err error) {
	dir := filepath.Dir(a.path)
	if err := os.MkdirAll(dir, consts.ModeDir); err != nil {
		return errors.Wrapf(err, "failed to create directory: %s", dir)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(a.path)+"-*")
	if err != nil {
		return errors.Wrapf(err, "failed to create temporary archive in: %s", dir)
	}
	tmpPath := tmp.Name()
	defer func() {
		if err != nil {
			_ = os.Remove(tmpPath)
		}
	}()

	if err := a.writeTo(tmp); err != nil {
		_ = tmp.Close()
		return errors.Wrapf(err, "failed to write archive: %s", a.path)
	}

	if err := tmp.Close(); err != nil {
		return errors.Wrapf(err, "failed to close temporary archive: %s", tmpPath)
	}

	if err := os.Chmod(tmpPath, consts.ModeFile); err != nil {
		return errors.Wrapf(err, "failed to set permissions on: %s", tmpPath)
	}

	if err := os.Rename(tmpPath, a.path); err != nil {
		return errors.Wrapf(err, "failed to replace archive: %s", a.path)
	}

	return nil
}

func (a *Archive) writeTo(w io.Writer) error {
	zw := zip.NewWriter(w)
	for _, key := range a.order {
		// NB: Modified is left zero so identical content always produces identical bytes.
		fw, err := zw.CreateHeader(&zip.FileHeader{Name: key, Method: zip.Deflate})
		if err != nil {
			return errors.Wrapf(err, "failed to create entry: %s", key)
		}

		if _, err := fw.Write(a.entries[key]); err != nil {
			return errors.Wrapf(err, "failed to write entry: %s", key)
		}
	}

	return zw.Close()
}

func (a *Archive) put(key string, data []byte) {
	if _, ok := a.entries[key]; !ok {
		a.order = append(a.order, key)
	}

	a.entries[key] = data
}

func readEntry(f *zip.File) (data []byte, err error) {
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer func() {
		if closeErr := rc.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	return io.ReadAll(rc)
}

func path2key(name string) string {
	return path.Clean(filepath.ToSlash(name))
}
