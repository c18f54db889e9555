// Package tokenizer rewrites environment specific references in captured
// content into portable placeholder tokens.
//
// A Tokenizer is built once from a Context describing the site the content was
// captured from. Replacement rules are applied in a fixed priority order, each
// as a separate case-insensitive pass over the current text:
//
//  1. For every list outside the system catalog: the list id becomes
//     {listid:<Title>} and, when enabled with WithListURLs, the list's absolute
//     and server-relative URLs become {listurl:<Title>}.
//  2. The site URL and server-relative URL become {site}, the site id becomes
//     {siteid}, the site collection URLs become {sitecollection} and the
//     collection id becomes {sitecollectionid}.
//
// List titles are inserted as is. Titles containing token delimiters produce
// tokens that cannot be told apart from their surroundings.
package tokenizer

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/pseudomuto/provkit/pkg/consts"
)

type (
	// Context is a snapshot of the identifiers that may appear in captured
	// content.
	Context struct {
		SiteURL                     string
		SiteServerRelativeURL       string
		SiteID                      string
		CollectionURL               string
		CollectionServerRelativeURL string
		CollectionID                string
		Lists                       []List
	}

	// List identifies a list or library known at capture time.
	List struct {
		ID    string
		Title string

		// ServerRelativeURL is the root folder of the list. Absolute URLs are
		// accepted and reduced to their path.
		ServerRelativeURL string
	}

	// Option customizes a Tokenizer.
	Option func(*Tokenizer)

	// Tokenizer applies the replacement rules derived from a Context.
	Tokenizer struct {
		listURLs bool
		rules    []rule
	}

	rule struct {
		token string
		re    *regexp.Regexp
	}
)

// WithListURLs enables replacing list URLs with {listurl:<Title>} tokens.
func WithListURLs() Option {
	return func(t *Tokenizer) {
		t.listURLs = true
	}
}

// New builds a Tokenizer for ctx. Identifiers are canonicalized before use and
// an error is returned when one of them is not a valid GUID.
func New(ctx Context, opts ...Option) (*Tokenizer, error) {
	t := &Tokenizer{}
	for _, opt := range opts {
		opt(t)
	}

	siteURL := strings.TrimRight(ctx.SiteURL, "/")
	siteRel := ctx.SiteServerRelativeURL
	if siteRel == "" {
		siteRel = urlPath(siteURL)
	}
	siteRel = strings.TrimRight(siteRel, "/")

	collectionURL := strings.TrimRight(ctx.CollectionURL, "/")
	collectionRel := ctx.CollectionServerRelativeURL
	if collectionRel == "" {
		collectionRel = urlPath(collectionURL)
	}

	for _, list := range ctx.Lists {
		listRel := urlPath(list.ServerRelativeURL)
		webRel := strings.TrimPrefix(strings.TrimPrefix(listRel, siteRel), "/")
		if strings.HasPrefix(webRel, consts.SystemCatalogPrefix) {
			continue
		}

		id, err := canonicalID(list.ID)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid id for list: %s", list.Title)
		}

		t.add(id, consts.TokenListIDPrefix+list.Title+"}")
		if t.listURLs && webRel != "" {
			t.add(siteURL+"/"+webRel, consts.TokenListURLPrefix+list.Title+"}")
			t.add(listRel, consts.TokenListURLPrefix+list.Title+"}")
		}
	}

	siteID, err := canonicalID(ctx.SiteID)
	if err != nil {
		return nil, errors.Wrap(err, "invalid site id")
	}

	collectionID, err := canonicalID(ctx.CollectionID)
	if err != nil {
		return nil, errors.Wrap(err, "invalid site collection id")
	}

	t.add(siteURL, consts.TokenSite)
	t.add(siteRel, consts.TokenSite)
	t.add(siteID, consts.TokenSiteID)
	t.add(strings.TrimRight(collectionRel, "/"), consts.TokenSiteCollection)
	t.add(collectionID, consts.TokenSiteCollectionID)
	t.add(collectionURL, consts.TokenSiteCollection)

	return t, nil
}

// Tokenize applies every rule to s in priority order. Empty input is returned
// unchanged.
func (t *Tokenizer) Tokenize(s string) string {
	if s == "" {
		return s
	}

	for _, r := range t.rules {
		s = r.re.ReplaceAllLiteralString(s, r.token)
	}

	return s
}

func (t *Tokenizer) add(value, token string) {
	// NB: a bare root path would match every server-relative URL.
	if value == "" || value == "/" {
		return
	}

	t.rules = append(t.rules, rule{
		token: token,
		re:    regexp.MustCompile("(?i)" + regexp.QuoteMeta(value)),
	})
}

func canonicalID(id string) (string, error) {
	if strings.TrimSpace(id) == "" {
		return "", nil
	}

	parsed, err := uuid.Parse(strings.TrimSpace(id))
	if err != nil {
		return "", err
	}

	return parsed.String(), nil
}

// urlPath returns the path of an absolute URL, or s itself when it is not one.
func urlPath(s string) string {
	u, err := url.Parse(s)
	if err != nil || !u.IsAbs() {
		return s
	}

	return u.Path
}
