package connector_test

import (
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/pkg/errors"
	. "github.com/pseudomuto/provkit/pkg/connector"
	"github.com/stretchr/testify/require"
)

func TestKey(t *testing.T) {
	tests := []struct {
		container string
		name      string
		want      string
	}{
		{"", "a.txt", "a.txt"},
		{"lib", "x.txt", "lib/x.txt"},
		{"/lib/", "x.txt", "lib/x.txt"},
		{`sub\dir`, "x.txt", "sub/dir/x.txt"},
		{"a//b", "x.txt", "a/b/x.txt"},
		{"a/./b", "x.txt", "a/b/x.txt"},
		{"", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			require.Equal(t, tt.want, Key(tt.container, tt.name))
		})
	}
}

func TestArchive(t *testing.T) {
	t.Run("uncommitted archive is not on disk", func(t *testing.T) {
		archivePath := filepath.Join(t.TempDir(), "t.pnp")
		a := NewArchive(archivePath)
		require.NoError(t, a.Save("lib", "x.txt", strings.NewReader("hello")))

		_, err := os.Stat(archivePath)
		require.True(t, os.IsNotExist(err))
	})

	t.Run("commit and reopen", func(t *testing.T) {
		archivePath := filepath.Join(t.TempDir(), "nested", "t.pnp")
		a := NewArchive(archivePath)
		require.NoError(t, a.Save("lib", "x.txt", strings.NewReader("hello")))
		require.NoError(t, a.Save("", "t.xml", strings.NewReader("<Provisioning/>")))
		require.NoError(t, a.Save("lib", "x.txt", strings.NewReader("hello again")))
		require.NoError(t, a.Commit())

		reopened, err := OpenArchive(archivePath)
		require.NoError(t, err)
		require.Equal(t, archivePath, reopened.Path())

		names, err := reopened.Names()
		require.NoError(t, err)
		require.Equal(t, []string{"lib/x.txt", "t.xml"}, names)
		require.Equal(t, "hello again", readAll(t, reopened, "lib", "x.txt"))
	})

	t.Run("equivalent keys survive a reopen", func(t *testing.T) {
		archivePath := filepath.Join(t.TempDir(), "t.pnp")
		a := NewArchive(archivePath)
		require.NoError(t, a.Save("a//b", "x.txt", strings.NewReader("hello")))
		require.NoError(t, a.Commit())

		reopened, err := OpenArchive(archivePath)
		require.NoError(t, err)
		require.Equal(t, "hello", readAll(t, reopened, "a//b", "x.txt"))
		require.Equal(t, "hello", readAll(t, reopened, "a/b", "x.txt"))
	})

	t.Run("commit is deterministic", func(t *testing.T) {
		dir := t.TempDir()
		for _, name := range []string{"one.pnp", "two.pnp"} {
			a := NewArchive(filepath.Join(dir, name))
			require.NoError(t, a.Save("lib", "x.txt", strings.NewReader("hello")))
			require.NoError(t, a.Commit())
		}

		one, err := os.ReadFile(filepath.Join(dir, "one.pnp"))
		require.NoError(t, err)
		two, err := os.ReadFile(filepath.Join(dir, "two.pnp"))
		require.NoError(t, err)
		require.Equal(t, one, two)
	})

	t.Run("commit leaves no temporary files", func(t *testing.T) {
		dir := t.TempDir()
		a := NewArchive(filepath.Join(dir, "t.pnp"))
		require.NoError(t, a.Commit())

		entries, err := os.ReadDir(dir)
		require.NoError(t, err)
		require.Len(t, entries, 1)
		require.Equal(t, "t.pnp", entries[0].Name())
	})

	t.Run("missing stream", func(t *testing.T) {
		_, err := NewArchive("t.pnp").Open("lib", "nope.txt")
		require.Error(t, err)
		require.True(t, errors.Is(err, fs.ErrNotExist))
	})

	t.Run("invalid names", func(t *testing.T) {
		a := NewArchive("t.pnp")
		require.Error(t, a.Save("", "", strings.NewReader("x")))
		require.Error(t, a.Save("..", "x.txt", strings.NewReader("x")))
	})

	t.Run("not an archive", func(t *testing.T) {
		p := filepath.Join(t.TempDir(), "t.pnp")
		require.NoError(t, os.WriteFile(p, []byte("definitely not a zip"), 0o644))

		_, err := OpenArchive(p)
		require.Error(t, err)
	})
}

func TestFolder(t *testing.T) {
	t.Run("save, open and list", func(t *testing.T) {
		root := t.TempDir()
		f := NewFolder(root)
		require.Equal(t, root, f.Root())

		require.NoError(t, f.Save("lib/sub", "b.txt", strings.NewReader("b")))
		require.NoError(t, f.Save("lib", "a.txt", strings.NewReader("a")))
		require.NoError(t, f.Save("", "top.txt", strings.NewReader("top")))
		require.NoError(t, f.Commit())

		require.FileExists(t, filepath.Join(root, "lib", "sub", "b.txt"))
		require.Equal(t, "a", readAll(t, f, "lib", "a.txt"))

		names, err := f.Names()
		require.NoError(t, err)
		require.Equal(t, []string{"lib/a.txt", "lib/sub/b.txt", "top.txt"}, names)
	})

	t.Run("save overwrites", func(t *testing.T) {
		f := NewFolder(t.TempDir())
		require.NoError(t, f.Save("", "a.txt", strings.NewReader("first content")))
		require.NoError(t, f.Save("", "a.txt", strings.NewReader("second")))
		require.Equal(t, "second", readAll(t, f, "", "a.txt"))
	})

	t.Run("failed save keeps existing content", func(t *testing.T) {
		root := t.TempDir()
		f := NewFolder(root)
		require.NoError(t, f.Save("docs", "a.txt", strings.NewReader("good content")))

		r := io.MultiReader(strings.NewReader("par"), iotest.ErrReader(errors.New("connection reset")))
		err := f.Save("docs", "a.txt", r)
		require.Error(t, err)
		require.Contains(t, err.Error(), "connection reset")
		require.Equal(t, "good content", readAll(t, f, "docs", "a.txt"))

		entries, err := os.ReadDir(filepath.Join(root, "docs"))
		require.NoError(t, err)
		require.Len(t, entries, 1)
	})

	t.Run("missing stream", func(t *testing.T) {
		_, err := NewFolder(t.TempDir()).Open("lib", "nope.txt")
		require.Error(t, err)
		require.True(t, errors.Is(err, fs.ErrNotExist))
	})

	t.Run("escaping names are rejected", func(t *testing.T) {
		f := NewFolder(t.TempDir())
		require.Error(t, f.Save("../outside", "x.txt", strings.NewReader("x")))
	})
}

func readAll(t *testing.T, c Connector, container, name string) string {
	t.Helper()

	rc, err := c.Open(container, name)
	require.NoError(t, err)
	defer func() { _ = rc.Close() }()

	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	return string(data)
}
