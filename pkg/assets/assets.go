// Package assets adds files to templates.
//
// The Engine stores an asset's bytes through the template's connector and
// records a file entry for it. A file entry is identified by its source key and
// destination folder; adding an asset with an identity that already exists
// replaces the previous entry along with its web parts and properties. Nothing
// is persisted by the Engine: callers add any number of assets and then save
// the template once with the provider package.
//
// Assets can come from an in-memory stream (Add), the local filesystem
// (AddLocalFile, AddFolder) or a remote site (AddRemoteFile, AddRemoteFolder).
// Failures to obtain a single asset's bytes are logged, recorded as warnings
// and skipped so bulk operations make progress. Invalid arguments fail
// immediately.
//
// Example:
//
//	engine := assets.New(nil)
//	err := engine.AddFolder(tmpl, assets.FolderOptions{
//		Source:    "./site-assets",
//		Folder:    "SiteAssets",
//		Recursive: true,
//	})
//	if err != nil {
//		return err
//	}
//
//	for _, w := range engine.Warnings() {
//		fmt.Println(w)
//	}
//
//	err = provider.Save(tmpl, "template.pnp")
package assets

import (
	"io"
	"log/slog"

	"github.com/pkg/errors"
	"github.com/pseudomuto/provkit/pkg/connector"
	"github.com/pseudomuto/provkit/pkg/template"
	"github.com/pseudomuto/provkit/pkg/tokenizer"
)

type (
	// Options controls how the Engine records file entries.
	Options struct {
		// Level is used for assets that do not specify one.
		Level template.FileLevel

		// Overwrite is used for assets that do not specify one.
		Overwrite bool

		// ExtractWebParts includes the web parts of remote pages.
		ExtractWebParts bool

		// Tokenizer rewrites web part definitions and page properties. When nil,
		// captured content is recorded as is.
		Tokenizer *tokenizer.Tokenizer

		// Progress receives progress notifications. Defaults to NopProgress.
		Progress Progress

		// Logger receives warnings for skipped assets. Defaults to slog.Default().
		Logger *slog.Logger
	}

	// Asset is a single file to add to a template.
	Asset struct {
		// Content is the file's bytes.
		Content io.Reader

		// Folder is the destination folder.
		Folder string

		// Name is the file name.
		Name string

		// Container is the connector container the bytes are stored in.
		Container string

		// Level overrides the engine's default level when set.
		Level *template.FileLevel

		// Overwrite overrides the engine's default overwrite flag when set.
		Overwrite *bool

		WebParts   []template.WebPart
		Properties map[string]string
	}

	// Engine adds assets to templates.
	Engine struct {
		opts     Options
		warnings []error
	}
)

// DefaultOptions returns options that record published, overwriting entries
// with web parts and no tokenization.
func DefaultOptions() *Options {
	return &Options{
		Level:           template.Published,
		Overwrite:       true,
		ExtractWebParts: true,
	}
}

// New creates an Engine with the given options. A nil value uses
// DefaultOptions.
func New(opts *Options) *Engine {
	if opts == nil {
		opts = DefaultOptions()
	}

	e := &Engine{opts: *opts}
	if e.opts.Progress == nil {
		e.opts.Progress = NopProgress
	}
	if e.opts.Logger == nil {
		e.opts.Logger = slog.Default()
	}

	return e
}

// Warnings returns the recoverable failures recorded so far, in order.
func (e *Engine) Warnings() []error {
	return append([]error(nil), e.warnings...)
}

// Add stores a's content in the template's connector and records a file entry
// for it, replacing any entry with the same source and folder. For archive
// backed templates the bytes are staged until the template is saved.
func (e *Engine) Add(t *template.Template, a Asset) error {
	switch {
	case t == nil:
		return &ArgumentError{Name: "template", Reason: "cannot be nil"}
	case t.Connector == nil:
		return &ArgumentError{Name: "template", Reason: "has no connector"}
	case a.Content == nil:
		return &ArgumentError{Name: "content", Reason: "cannot be nil"}
	case a.Name == "":
		return &ArgumentError{Name: "name", Reason: "cannot be empty"}
	}

	container := template.NormalizeFolder(a.Container)
	if err := t.Connector.Save(container, a.Name, a.Content); err != nil {
		return errors.Wrapf(err, "failed to store %s", connector.Key(container, a.Name))
	}

	f := template.NewFile(connector.Key(container, a.Name), a.Folder)
	f.Level = e.opts.Level
	if a.Level != nil {
		f.Level = *a.Level
	}

	f.Overwrite = e.opts.Overwrite
	if a.Overwrite != nil {
		f.Overwrite = *a.Overwrite
	}

	if len(a.WebParts) > 0 {
		f.WebParts = a.WebParts
	}
	if len(a.Properties) > 0 {
		f.Properties = a.Properties
	}

	_, err := t.Upsert(f.Clone())
	return err
}

// warn records a recoverable failure.
func (e *Engine) warn(err error) {
	e.opts.Logger.Warn("Skipping asset", "error", err)
	e.warnings = append(e.warnings, err)
}

// addRecovering adds a and downgrades every failure except argument errors to
// a warning for source.
func (e *Engine) addRecovering(t *template.Template, source string, a Asset) error {
	err := e.Add(t, a)
	if err == nil {
		return nil
	}

	var argErr *ArgumentError
	if errors.As(err, &argErr) {
		return err
	}

	e.warn(&FetchError{Source: source, Err: err})
	return nil
}

func (e *Engine) tokenize(s string) string {
	if e.opts.Tokenizer == nil {
		return s
	}

	return e.opts.Tokenizer.Tokenize(s)
}
