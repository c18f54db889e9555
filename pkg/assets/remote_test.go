package assets_test

import (
	"io"
	"strings"
	"testing"

	"github.com/pkg/errors"
	. "github.com/pseudomuto/provkit/pkg/assets"
	"github.com/pseudomuto/provkit/pkg/template"
	"github.com/pseudomuto/provkit/pkg/tokenizer"
	"github.com/stretchr/testify/require"
)

const webPartDefinition = `<WebPart xmlns="http://schemas.microsoft.com/WebPart/v2"><ContentLink>/sites/a/SiteAssets/x.html</ContentLink></WebPart>`

type fakeRemote struct {
	files    map[string][]RemoteFile
	folders  map[string][]string
	content  map[string]string
	webParts map[string][]RemoteWebPart
	broken   map[string]bool
}

func (f *fakeRemote) Open(fileURL string) (io.ReadCloser, error) {
	if f.broken[fileURL] {
		return nil, errors.Errorf("connection reset while reading %s", fileURL)
	}

	content, ok := f.content[fileURL]
	if !ok {
		return nil, errors.Errorf("not found: %s", fileURL)
	}

	return io.NopCloser(strings.NewReader(content)), nil
}

func (f *fakeRemote) Files(folderURL string) ([]RemoteFile, error) {
	if f.broken[folderURL] {
		return nil, errors.Errorf("access denied: %s", folderURL)
	}

	return f.files[folderURL], nil
}

func (f *fakeRemote) Folders(folderURL string) ([]string, error) {
	return f.folders[folderURL], nil
}

func (f *fakeRemote) WebParts(pageURL string) ([]RemoteWebPart, error) {
	return f.webParts[pageURL], nil
}

func newRemote() *fakeRemote {
	return &fakeRemote{
		files: map[string][]RemoteFile{
			"/sites/a/SiteAssets": {
				{Name: "c.txt", ServerRelativeURL: "/sites/a/SiteAssets/c.txt"},
				{Name: "b.txt", ServerRelativeURL: "/sites/a/SiteAssets/b.txt"},
			},
			"/sites/a/SiteAssets/My%20Docs": {
				{Name: "a.txt", ServerRelativeURL: "/sites/a/SiteAssets/My%20Docs/a.txt"},
			},
			"/sites/a/SitePages": {
				{Name: "Home.aspx", ServerRelativeURL: "/sites/a/SitePages/Home.aspx"},
			},
		},
		folders: map[string][]string{
			"/sites/a/SiteAssets": {"/sites/a/SiteAssets/My%20Docs", "/sites/a/SiteAssets/Locked"},
		},
		content: map[string]string{
			"/sites/a/SiteAssets/b.txt":           "b",
			"/sites/a/SiteAssets/c.txt":           "c",
			"/sites/a/SiteAssets/My%20Docs/a.txt": "a",
			"/sites/a/SitePages/Home.aspx":        "<html></html>",
			"/sites/a/root.txt":                   "root",
		},
		webParts: map[string][]RemoteWebPart{
			"/sites/a/SitePages/Home.aspx": {
				{Title: "Intro", Zone: "Main", ZoneIndex: 1, Definition: webPartDefinition},
				{Title: "Broken", Zone: "Main", ZoneIndex: 1, Definition: "/sites/a <not xml"},
			},
		},
		broken: map[string]bool{
			"/sites/a/SiteAssets/Locked": true,
		},
	}
}

func TestServerRelativeURL(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"https://x/sites/a/SitePages/Home.aspx", "/sites/a/SitePages/Home.aspx"},
		{"/sites/b/Docs/x.txt", "/sites/b/Docs/x.txt"},
		{"SitePages/Home.aspx", "/sites/a/SitePages/Home.aspx"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			require.Equal(t, tt.want, ServerRelativeURL("/sites/a/", tt.in))
		})
	}
}

func TestAddRemoteFile(t *testing.T) {
	t.Run("page with web parts", func(t *testing.T) {
		tok, err := tokenizer.New(tokenizer.Context{SiteURL: "https://x/sites/a"})
		require.NoError(t, err)

		opts := DefaultOptions()
		opts.Tokenizer = tok

		tmpl := newTemplate(t)
		require.NoError(t, New(opts).AddRemoteFile(tmpl, newRemote(), "/sites/a", "https://x/sites/a/SitePages/Home.aspx"))

		require.Len(t, tmpl.Files, 1)
		f := tmpl.Files[0]
		require.Equal(t, "SitePages/Home.aspx", f.Src)
		require.Equal(t, "SitePages", f.Folder)
		require.Equal(t, []template.WebPart{
			{
				Order:    1,
				Zone:     "Main",
				Title:    "Intro",
				Contents: `<WebPart xmlns="http://schemas.microsoft.com/WebPart/v2"><ContentLink>{site}/SiteAssets/x.html</ContentLink></WebPart>`,
			},
			{Order: 1, Zone: "Main", Title: "Broken", Contents: "{site} <not xml"},
		}, f.WebParts)
	})

	t.Run("web parts can be skipped", func(t *testing.T) {
		opts := DefaultOptions()
		opts.ExtractWebParts = false

		tmpl := newTemplate(t)
		require.NoError(t, New(opts).AddRemoteFile(tmpl, newRemote(), "/sites/a", "SitePages/Home.aspx"))
		require.Empty(t, tmpl.Files[0].WebParts)
	})

	t.Run("file at the web root", func(t *testing.T) {
		tmpl := newTemplate(t)
		require.NoError(t, New(nil).AddRemoteFile(tmpl, newRemote(), "/sites/a", "root.txt"))
		require.Equal(t, "root.txt", tmpl.Files[0].Src)
		require.Equal(t, "", tmpl.Files[0].Folder)
	})

	t.Run("fetch failure is a warning", func(t *testing.T) {
		tmpl := newTemplate(t)
		engine := New(nil)
		require.NoError(t, engine.AddRemoteFile(tmpl, newRemote(), "/sites/a", "/sites/a/missing.txt"))
		require.Empty(t, tmpl.Files)
		require.Len(t, engine.Warnings(), 1)
	})

	t.Run("nil remote", func(t *testing.T) {
		err := New(nil).AddRemoteFile(newTemplate(t), nil, "/sites/a", "x.txt")

		var argErr *ArgumentError
		require.True(t, errors.As(err, &argErr))
	})
}

func TestAddRemoteFolder(t *testing.T) {
	t.Run("depth first and sorted", func(t *testing.T) {
		tmpl := newTemplate(t)
		engine := New(nil)
		require.NoError(t, engine.AddRemoteFolder(tmpl, newRemote(), "/sites/a", "SiteAssets"))

		require.Equal(t, []string{
			"SiteAssets/My Docs/a.txt",
			"SiteAssets/b.txt",
			"SiteAssets/c.txt",
		}, srcs(tmpl))
		require.Equal(t, "SiteAssets/My Docs", tmpl.Files[0].Folder)

		// the locked sub-folder cannot be listed
		require.Len(t, engine.Warnings(), 1)
	})

	t.Run("partial failure continues", func(t *testing.T) {
		remote := newRemote()
		remote.broken["/sites/a/SiteAssets/b.txt"] = true

		tmpl := newTemplate(t)
		engine := New(nil)
		require.NoError(t, engine.AddRemoteFolder(tmpl, remote, "/sites/a", "/sites/a/SiteAssets/"))

		require.Equal(t, []string{"SiteAssets/My Docs/a.txt", "SiteAssets/c.txt"}, srcs(tmpl))
		require.Len(t, engine.Warnings(), 2)

		var fetchErr *FetchError
		require.True(t, errors.As(engine.Warnings()[1], &fetchErr))
		require.Equal(t, "/sites/a/SiteAssets/b.txt", fetchErr.Source)
	})

	t.Run("unreadable root folder", func(t *testing.T) {
		err := New(nil).AddRemoteFolder(newTemplate(t), newRemote(), "/sites/a", "SiteAssets/Locked")
		require.Error(t, err)
	})
}
