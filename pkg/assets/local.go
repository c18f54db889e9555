package assets

import (
	"bytes"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pkg/errors"
	"github.com/pseudomuto/provkit/pkg/consts"
	"github.com/pseudomuto/provkit/pkg/pagedata"
	"github.com/pseudomuto/provkit/pkg/template"
)

// FolderOptions describes a local folder to add to a template.
type FolderOptions struct {
	// Source is the local directory to read files from.
	Source string

	// Folder is the destination root. Files in sub-directories of Source are
	// placed in matching sub-folders of Folder.
	Folder string

	// Container overrides the connector container for every file. When empty
	// each file is stored under its destination folder.
	Container string

	// Recursive includes files in sub-directories of Source.
	Recursive bool
}

// AddLocalFile adds the file at filePath to the template under folder. The
// container defaults to the folder. A file that cannot be read is recorded as a
// warning and skipped.
func (e *Engine) AddLocalFile(t *template.Template, filePath, folder, container string) error {
	if t == nil {
		return &ArgumentError{Name: "template", Reason: "cannot be nil"}
	}
	if filePath == "" {
		return &ArgumentError{Name: "path", Reason: "cannot be empty"}
	}

	folder = template.NormalizeFolder(folder)
	if container == "" {
		container = folder
	}

	e.opts.Progress.Report("Adding file "+filePath, 0)
	defer e.opts.Progress.Report("Adding file "+filePath, 100)

	data, err := os.ReadFile(filePath)
	if err != nil {
		e.warn(&FetchError{Source: filePath, Err: err})
		return nil
	}

	return e.addRecovering(t, filePath, Asset{
		Content:    bytes.NewReader(data),
		Folder:     folder,
		Name:       filepath.Base(filePath),
		Container:  container,
		Properties: e.pageProperties(filePath, data),
	})
}

// AddFolder adds every file below opts.Source to the template. Files are added
// in lexical order of their full path so the resulting entries do not depend on
// the order the filesystem lists them in. Failures for individual files are
// recorded as warnings.
func (e *Engine) AddFolder(t *template.Template, opts FolderOptions) error {
	if t == nil {
		return &ArgumentError{Name: "template", Reason: "cannot be nil"}
	}
	if opts.Source == "" {
		return &ArgumentError{Name: "source", Reason: "cannot be empty"}
	}

	info, err := os.Stat(opts.Source)
	if err != nil {
		return &ArgumentError{Name: "source", Reason: "folder not found: " + opts.Source}
	}
	if !info.IsDir() {
		return &ArgumentError{Name: "source", Reason: "not a folder: " + opts.Source}
	}

	const activity = "Extracting files"

	e.opts.Progress.Report("Enumerating folder "+opts.Source, 0)
	files, err := listFiles(opts.Source, opts.Recursive)
	if err != nil {
		return err
	}

	root := template.NormalizeFolder(opts.Folder)
	for i, file := range files {
		e.opts.Progress.Report(activity, percent(i, len(files)))

		rel, err := filepath.Rel(opts.Source, filepath.Dir(file))
		if err != nil {
			e.warn(&FetchError{Source: file, Err: err})
			continue
		}

		folder := root
		if rel != "." {
			folder = strings.TrimPrefix(path.Join(root, filepath.ToSlash(rel)), "/")
		}

		if err := e.AddLocalFile(t, file, folder, opts.Container); err != nil {
			return err
		}
	}

	e.opts.Progress.Report(activity, 100)
	return nil
}

// listFiles returns every non-directory entry below root, sorted. Directories
// are traversed with an explicit stack.
func listFiles(root string, recursive bool) ([]string, error) {
	var (
		files []string
		dirs  = []string{root}
	)

	for len(dirs) > 0 {
		dir := dirs[len(dirs)-1]
		dirs = dirs[:len(dirs)-1]

		entries, err := os.ReadDir(dir)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to read folder: %s", dir)
		}

		for _, entry := range entries {
			full := filepath.Join(dir, entry.Name())
			if entry.IsDir() {
				if recursive {
					dirs = append(dirs, full)
				}
				continue
			}

			files = append(files, full)
		}
	}

	sort.Strings(files)
	return files, nil
}

// pageProperties extracts the tokenized page properties of .aspx content. Other
// files, and pages without page data, have no properties.
func (e *Engine) pageProperties(name string, content []byte) map[string]string {
	if !strings.EqualFold(filepath.Ext(name), consts.PageExt) {
		return nil
	}

	props, err := pagedata.ExtractProperties(string(content))
	if err != nil {
		if !errors.Is(err, pagedata.ErrNoPageData) {
			e.opts.Logger.Debug("Ignoring unreadable page data", "file", name, "error", err)
		}
		return nil
	}

	for k, v := range props {
		props[k] = e.tokenize(v)
	}

	return props
}
