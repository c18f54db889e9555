package consts

import "os"

const (
	// ModeDir is the standard file mode for creating directories
	ModeDir = os.FileMode(0o755)

	// ModeFile is the standard file mode for creating files
	ModeFile = os.FileMode(0o644)
)

const (
	// PackageExt is the extension that selects the archive-backed template format
	PackageExt = ".pnp"

	// ManifestExt is the extension of the XML manifest, both inside packages and on disk
	ManifestExt = ".xml"

	// ConfigFile is the name of the project configuration file
	ConfigFile = "provkit.yaml"

	// DefaultTemplate is the template path written by `provkit init`
	DefaultTemplate = "template.pnp"

	// SystemCatalogPrefix marks lists that are never tokenized (master pages, web part gallery, ...)
	SystemCatalogPrefix = "_catalogs"

	// PageExt is the extension of pages that carry web parts and page properties
	PageExt = ".aspx"
)

// Token placeholders written by the tokenizer.
const (
	TokenSite             = "{site}"
	TokenSiteID           = "{siteid}"
	TokenSiteCollection   = "{sitecollection}"
	TokenSiteCollectionID = "{sitecollectionid}"
	TokenListIDPrefix     = "{listid:"
	TokenListURLPrefix    = "{listurl:"
)
