// Package provider loads template packages from disk and persists them back.
//
// Two on-disk formats are supported and selected purely by file extension:
//
//   - Packages (".pnp"): a zip archive holding the manifest, named after the
//     archive with an ".xml" extension, next to every stored stream.
//   - Manifests (any other extension): an XML manifest with the referenced
//     files stored loose in the same directory.
//
// Load additionally peeks at the first bytes of a package. Packages written by
// older tooling as a bare XML manifest are translated into an archive-backed
// template so the next Save produces a real archive.
package provider

import (
	"bufio"
	"bytes"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/pseudomuto/provkit/pkg/connector"
	"github.com/pseudomuto/provkit/pkg/consts"
	"github.com/pseudomuto/provkit/pkg/manifest"
	"github.com/pseudomuto/provkit/pkg/template"
)

// IsPackage reports whether path selects the archive-backed format.
func IsPackage(path string) bool {
	return strings.EqualFold(filepath.Ext(path), consts.PackageExt)
}

// ManifestName returns the manifest file name derived from path: its base name
// with the extension replaced by ".xml".
func ManifestName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base)) + consts.ManifestExt
}

// New creates an empty template bound to the connector Save would use for path,
// so assets can be added to it before it is first saved.
func New(path string) *template.Template {
	t := template.New()
	if IsPackage(path) {
		t.Connector = connector.NewArchive(path)
	} else {
		t.Connector = connector.NewFolder(filepath.Dir(path))
	}

	return t
}

// Load reads the template at path. Failures are always reported as
// *InvalidTemplateError and no partially loaded template is returned.
func Load(path string) (*template.Template, error) {
	if IsPackage(path) {
		return loadPackage(path)
	}

	return loadManifest(path)
}

// Save writes t to outputPath, choosing the format from its extension. Archive
// output is committed before Save returns. On success t is re-bound to the
// connector of the written output. Failures are reported as *PersistenceError.
func Save(t *template.Template, outputPath string) error {
	if t == nil {
		return &PersistenceError{Path: outputPath, Err: errors.New("template cannot be nil")}
	}

	var (
		target connector.Connector
		err    error
	)

	if IsPackage(outputPath) {
		target, err = savePackage(t, outputPath)
	} else {
		target, err = saveManifest(t, outputPath)
	}

	if err != nil {
		return &PersistenceError{Path: outputPath, Err: err}
	}

	t.Connector = target
	return nil
}

func loadManifest(path string) (*template.Template, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, invalid(path, "cannot read manifest", err)
	}
	defer func() { _ = f.Close() }()

	t, err := manifest.Latest.Decode(f)
	if err != nil {
		return nil, invalid(path, "malformed manifest", err)
	}

	t.Connector = connector.NewFolder(filepath.Dir(path))
	return t, nil
}

func loadPackage(path string) (*template.Template, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, invalid(path, "cannot read package", err)
	}

	kind, err := probe(path)
	if err != nil {
		slog.Warn("Unable to inspect package, falling back to archive parsing", "path", path, "error", err)
		kind = layoutArchive
	}

	if kind == layoutLegacy {
		return loadLegacy(path)
	}

	archive, err := connector.OpenArchive(path)
	if err != nil {
		return nil, invalid(path, "cannot open archive", err)
	}

	name, err := findManifest(archive, path)
	if err != nil {
		return nil, invalid(path, "manifest not found", err)
	}

	rc, err := archive.Open("", name)
	if err != nil {
		return nil, invalid(path, "cannot read manifest", err)
	}
	defer func() { _ = rc.Close() }()

	t, err := manifest.Latest.Decode(rc)
	if err != nil {
		return nil, invalid(path, "malformed manifest", err)
	}

	t.Connector = archive
	return t, nil
}

// loadLegacy translates a package holding a bare manifest into a template
// backed by the package's directory, where the files it references live. The
// next Save to a package path copies them into a real archive.
func loadLegacy(path string) (*template.Template, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, invalid(path, "cannot read package", err)
	}

	data = bytes.TrimLeft(bytes.TrimPrefix(data, bom), " \t\r\n")
	t, err := manifest.Latest.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, invalid(path, "malformed manifest", err)
	}

	t.Connector = connector.NewFolder(filepath.Dir(path))
	return t, nil
}

// findManifest returns the manifest stream of the archive. The name derived
// from the archive path wins; a renamed package falls back to its only
// root-level manifest.
func findManifest(a *connector.Archive, path string) (string, error) {
	want := ManifestName(path)
	names, err := a.Names()
	if err != nil {
		return "", err
	}

	var candidates []string
	for _, name := range names {
		if name == want {
			return name, nil
		}

		if !strings.Contains(name, "/") && strings.EqualFold(filepath.Ext(name), consts.ManifestExt) {
			candidates = append(candidates, name)
		}
	}

	if len(candidates) == 1 {
		return candidates[0], nil
	}

	return "", errors.Wrap(fs.ErrNotExist, want)
}

func savePackage(t *template.Template, outputPath string) (connector.Connector, error) {
	target := connector.NewArchive(outputPath)
	if src, ok := t.Connector.(*connector.Archive); ok && samePath(src.Path(), outputPath) {
		target = src
	} else if err := copyStreams(t, target); err != nil {
		return nil, err
	}

	if err := writeManifest(t, target, ManifestName(outputPath)); err != nil {
		return nil, err
	}

	if err := target.Commit(); err != nil {
		return nil, errors.Wrap(err, "failed to commit archive")
	}

	return target, nil
}

func saveManifest(t *template.Template, outputPath string) (connector.Connector, error) {
	dir := filepath.Dir(outputPath)
	target := connector.NewFolder(dir)

	src, ok := t.Connector.(*connector.Folder)
	if !ok || !samePath(src.Root(), dir) {
		if err := copyStreams(t, target); err != nil {
			return nil, err
		}
	}

	if err := writeManifest(t, target, ManifestName(outputPath)); err != nil {
		return nil, err
	}

	return target, nil
}

func writeManifest(t *template.Template, target connector.Connector, name string) error {
	var buf bytes.Buffer
	if err := manifest.Latest.Encode(&buf, t); err != nil {
		return err
	}

	return errors.Wrapf(target.Save("", name, &buf), "failed to write manifest: %s", name)
}

// copyStreams copies the streams of t's current connector into target. Archive
// sources contribute every stream except their own manifest; other sources
// contribute the streams referenced by the template's files.
func copyStreams(t *template.Template, target connector.Connector) error {
	keys, err := streamKeys(t)
	if err != nil {
		return err
	}

	for _, key := range keys {
		err := copyStream(t.Connector, target, key)
		if errors.Is(err, fs.ErrNotExist) {
			slog.Warn("Skipping missing template file", "src", key)
			continue
		}

		if err != nil {
			return err
		}
	}

	return nil
}

func streamKeys(t *template.Template) ([]string, error) {
	switch c := t.Connector.(type) {
	case nil:
		return nil, nil
	case *connector.Archive:
		names, err := c.Names()
		if err != nil {
			return nil, err
		}

		skip := ManifestName(c.Path())
		keys := make([]string, 0, len(names))
		for _, name := range names {
			if name != skip {
				keys = append(keys, name)
			}
		}
		return keys, nil
	default:
		seen := make(map[string]struct{}, len(t.Files))
		keys := make([]string, 0, len(t.Files))
		for _, f := range t.Files {
			if _, ok := seen[f.Src]; ok {
				continue
			}

			seen[f.Src] = struct{}{}
			keys = append(keys, f.Src)
		}
		return keys, nil
	}
}

func copyStream(src, dst connector.Connector, key string) (err error) {
	rc, err := src.Open("", key)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := rc.Close(); closeErr != nil && err == nil {
			err = errors.Wrapf(closeErr, "failed to close stream: %s", key)
		}
	}()

	return dst.Save("", key, rc)
}

type layout int

const (
	layoutArchive layout = iota
	layoutLegacy
)

var (
	bom          = []byte("\xef\xbb\xbf")
	zipSignature = [][]byte{[]byte("PK\x03\x04"), []byte("PK\x05\x06")}
)

// probe inspects the leading bytes of a package to tell a zip archive from a
// bare manifest written by older tooling.
func probe(path string) (l layout, err error) {
	f, err := os.Open(path)
	if err != nil {
		return layoutArchive, err
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	head, err := bufio.NewReader(f).Peek(512)
	if err != nil && !errors.Is(err, io.EOF) {
		return layoutArchive, err
	}

	for _, sig := range zipSignature {
		if bytes.HasPrefix(head, sig) {
			return layoutArchive, nil
		}
	}

	head = bytes.TrimLeft(bytes.TrimPrefix(head, bom), " \t\r\n")
	if bytes.HasPrefix(head, []byte("<")) {
		return layoutLegacy, nil
	}

	return layoutArchive, nil
}

func samePath(a, b string) bool {
	absA, errA := filepath.Abs(a)
	absB, errB := filepath.Abs(b)
	if errA != nil || errB != nil {
		return filepath.Clean(a) == filepath.Clean(b)
	}

	return absA == absB
}
