package assets

import (
	"bytes"
	"io"
	"net/url"
	"path"
	"sort"
	"strings"

	"github.com/pkg/errors"
	"github.com/pseudomuto/provkit/pkg/consts"
	"github.com/pseudomuto/provkit/pkg/template"
)

type (
	// Remote gives access to the files of a remote site. URLs are
	// server-relative.
	Remote interface {
		// Open returns the content of the file at fileURL.
		Open(fileURL string) (io.ReadCloser, error)

		// Files lists the files directly inside folderURL.
		Files(folderURL string) ([]RemoteFile, error)

		// Folders lists the server-relative URLs of the folders directly inside
		// folderURL.
		Folders(folderURL string) ([]string, error)

		// WebParts returns the web parts placed on the page at pageURL.
		WebParts(pageURL string) ([]RemoteWebPart, error)
	}

	// RemoteFile is a file listed by a Remote.
	RemoteFile struct {
		Name              string
		ServerRelativeURL string
	}

	// RemoteWebPart is a web part placed on a remote page.
	RemoteWebPart struct {
		Title      string
		Zone       string
		ZoneIndex  int
		Definition string
	}
)

// ServerRelativeURL normalizes u against the web at webURL, a server-relative
// URL. Absolute URLs are reduced to their path, "/"-prefixed URLs are kept and
// anything else is taken as relative to the web.
func ServerRelativeURL(webURL, u string) string {
	if parsed, err := url.Parse(u); err == nil && parsed.IsAbs() {
		return parsed.Path
	}

	if strings.HasPrefix(u, "/") {
		return u
	}

	return strings.TrimRight(webURL, "/") + "/" + u
}

// AddRemoteFile adds the remote file at fileURL to the template. The file is
// placed in, and stored under, its folder relative to the web at webURL.
// Failures to fetch the file or its web parts are recorded as warnings.
func (e *Engine) AddRemoteFile(t *template.Template, r Remote, webURL, fileURL string) error {
	if t == nil {
		return &ArgumentError{Name: "template", Reason: "cannot be nil"}
	}
	if r == nil {
		return &ArgumentError{Name: "remote", Reason: "cannot be nil"}
	}
	if fileURL == "" {
		return &ArgumentError{Name: "url", Reason: "cannot be empty"}
	}

	serverRel := ServerRelativeURL(webURL, fileURL)
	return e.addRemote(t, r, webURL, RemoteFile{
		Name:              path.Base(serverRel),
		ServerRelativeURL: serverRel,
	})
}

// AddRemoteFolder adds every file below the remote folder at folderURL. The
// folder tree is walked depth-first and the files are added in order of their
// server-relative URL. A folder that cannot be listed, other than the root, is
// recorded as a warning and skipped.
func (e *Engine) AddRemoteFolder(t *template.Template, r Remote, webURL, folderURL string) error {
	if t == nil {
		return &ArgumentError{Name: "template", Reason: "cannot be nil"}
	}
	if r == nil {
		return &ArgumentError{Name: "remote", Reason: "cannot be nil"}
	}

	root := strings.TrimRight(ServerRelativeURL(webURL, folderURL), "/")

	e.opts.Progress.Report("Enumerating folder "+root, 0)
	files, err := e.remoteFiles(r, root)
	if err != nil {
		return err
	}

	const activity = "Extracting files"
	for i, file := range files {
		e.opts.Progress.Report(activity, percent(i, len(files)))
		if err := e.addRemote(t, r, webURL, file); err != nil {
			return err
		}
	}

	e.opts.Progress.Report(activity, 100)
	return nil
}

// remoteFiles walks the folder tree below root with an explicit stack and
// returns its files sorted by server-relative URL.
func (e *Engine) remoteFiles(r Remote, root string) ([]RemoteFile, error) {
	var (
		files   []RemoteFile
		folders = []string{root}
	)

	for len(folders) > 0 {
		folder := folders[len(folders)-1]
		folders = folders[:len(folders)-1]

		listed, err := r.Files(folder)
		if err == nil {
			var subs []string
			subs, err = r.Folders(folder)

			// NB: pushed in reverse so the first sub-folder is visited first
			for i := len(subs) - 1; i >= 0; i-- {
				folders = append(folders, subs[i])
			}
		}

		if err != nil {
			if folder == root {
				return nil, errors.Wrapf(err, "failed to list remote folder: %s", root)
			}

			e.warn(&FetchError{Source: folder, Err: err})
			continue
		}

		files = append(files, listed...)
	}

	sort.SliceStable(files, func(i, j int) bool {
		return files[i].ServerRelativeURL < files[j].ServerRelativeURL
	})

	return files, nil
}

func (e *Engine) addRemote(t *template.Template, r Remote, webURL string, file RemoteFile) error {
	activity := "Extracting file " + file.ServerRelativeURL
	e.opts.Progress.Report(activity, 0)
	defer e.opts.Progress.Report(activity, 100)

	folder := webRelativeFolder(webURL, file)

	var webParts []template.WebPart
	if e.opts.ExtractWebParts && isPage(file.Name) {
		parts, err := r.WebParts(file.ServerRelativeURL)
		if err != nil {
			e.warn(&FetchError{Source: file.ServerRelativeURL, Err: err})
			return nil
		}

		webParts = e.webParts(parts)
		e.opts.Progress.Report(activity, 25)
	}

	data, err := readRemote(r, file.ServerRelativeURL)
	if err != nil {
		e.warn(&FetchError{Source: file.ServerRelativeURL, Err: err})
		return nil
	}
	e.opts.Progress.Report(activity, 50)

	return e.addRecovering(t, file.ServerRelativeURL, Asset{
		Content:    bytes.NewReader(data),
		Folder:     folder,
		Name:       file.Name,
		Container:  folder,
		WebParts:   webParts,
		Properties: e.pageProperties(file.Name, data),
	})
}

func (e *Engine) webParts(parts []RemoteWebPart) []template.WebPart {
	out := make([]template.WebPart, 0, len(parts))
	for _, p := range parts {
		order := uint(0)
		if p.ZoneIndex > 0 {
			order = uint(p.ZoneIndex)
		}

		out = append(out, template.WebPart{
			Order:    order,
			Zone:     p.Zone,
			Title:    p.Title,
			Contents: e.tokenizeWebPart(p.Definition),
		})
	}

	return out
}

func (e *Engine) tokenizeWebPart(def string) string {
	if e.opts.Tokenizer == nil {
		return def
	}

	tokenized, err := e.opts.Tokenizer.TokenizeWebPart(def)
	if err != nil {
		e.opts.Logger.Debug("Web part definition is not valid XML, tokenizing as text", "error", err)
		return e.opts.Tokenizer.Tokenize(def)
	}

	return tokenized
}

// webRelativeFolder returns the decoded folder of file relative to the web.
func webRelativeFolder(webURL string, file RemoteFile) string {
	folder := strings.TrimSuffix(file.ServerRelativeURL, file.Name)
	folder = strings.TrimSuffix(folder, "/")

	web := strings.TrimRight(webURL, "/")
	if strings.HasPrefix(folder, web) {
		folder = folder[len(web):]
	}
	folder = strings.TrimPrefix(folder, "/")

	if decoded, err := url.PathUnescape(folder); err == nil {
		return decoded
	}

	return folder
}

func readRemote(r Remote, fileURL string) (data []byte, err error) {
	rc, err := r.Open(fileURL)
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

func isPage(name string) bool {
	return strings.EqualFold(path.Ext(name), consts.PageExt)
}
