package config

import (
	"io"
	"os"

	"github.com/pkg/errors"
	"github.com/pseudomuto/provkit/pkg/assets"
	"github.com/pseudomuto/provkit/pkg/consts"
	"github.com/pseudomuto/provkit/pkg/template"
	"github.com/pseudomuto/provkit/pkg/tokenizer"
	"gopkg.in/yaml.v3"
)

type (
	// Config represents the provkit.yaml project configuration.
	Config struct {
		// Template is the template package commands operate on when none is given
		// on the command line.
		Template string `yaml:"template"`

		// Defaults are applied to every file entry added by the CLI.
		Defaults Defaults `yaml:"defaults"`

		// Tokenize controls how captured content is tokenized.
		Tokenize Tokenize `yaml:"tokenize"`

		// Site describes the site content was captured from. Without it captured
		// content is recorded as is.
		Site *Site `yaml:"site,omitempty"`
	}

	// Defaults are the entry settings used when a command does not override them.
	Defaults struct {
		// Level is the publishing level (Draft, Published or Checkout).
		Level string `yaml:"level,omitempty"`

		// Overwrite controls whether provisioning replaces existing files. Defaults
		// to true.
		Overwrite *bool `yaml:"overwrite,omitempty"`

		// Container is the connector container for added files. When empty files
		// are stored under their destination folder.
		Container string `yaml:"container,omitempty"`
	}

	// Tokenize holds the tokenization switches.
	Tokenize struct {
		// ListURLs replaces list URLs with {listurl:<Title>} tokens.
		ListURLs bool `yaml:"list_urls,omitempty"`

		// WebParts captures the web parts of pages. Defaults to true.
		WebParts *bool `yaml:"web_parts,omitempty"`
	}

	// Site is the site snapshot used to build the tokenizer.
	Site struct {
		URL               string     `yaml:"url"`
		ServerRelativeURL string     `yaml:"server_relative_url,omitempty"`
		ID                string     `yaml:"id,omitempty"`
		Collection        Collection `yaml:"collection,omitempty"`
		Lists             []List     `yaml:"lists,omitempty"`
	}

	// Collection identifies the site collection the site belongs to.
	Collection struct {
		URL               string `yaml:"url,omitempty"`
		ServerRelativeURL string `yaml:"server_relative_url,omitempty"`
		ID                string `yaml:"id,omitempty"`
	}

	// List is a list or library known at capture time.
	List struct {
		ID    string `yaml:"id"`
		Title string `yaml:"title"`
		URL   string `yaml:"url,omitempty"`
	}
)

// Default returns the configuration used when a project has no provkit.yaml.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// LoadConfig parses a project configuration from the provided io.Reader.
//
// Unset values are filled in after decoding: the template defaults to
// template.pnp, the level to Published, and both overwrite and web part capture
// to true. An unknown level is reported as an error.
//
// Example:
//
//	yamlData := `
//	template: site.pnp
//	defaults:
//	  level: Draft
//	site:
//	  url: https://contoso.sharepoint.com/sites/marketing
//	`
//
//	cfg, err := config.LoadConfig(strings.NewReader(yamlData))
//	if err != nil {
//		panic(err)
//	}
//
//	fmt.Printf("Template: %s\n", cfg.Template)
func LoadConfig(r io.Reader) (*Config, error) {
	var cfg Config
	if err := yaml.NewDecoder(r).Decode(&cfg); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal provkit config")
	}

	cfg.applyDefaults()
	if _, err := cfg.FileLevel(); err != nil {
		return nil, errors.Wrap(err, "invalid defaults")
	}

	return &cfg, nil
}

// LoadConfigFile loads a project configuration from the specified file path.
// This is a convenience function that opens the file and calls LoadConfig.
func LoadConfigFile(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open file: %s", path)
	}
	defer func() { _ = f.Close() }()

	return LoadConfig(f)
}

// FileLevel returns the parsed default publishing level.
func (c *Config) FileLevel() (template.FileLevel, error) {
	return template.ParseFileLevel(c.Defaults.Level)
}

// FileOverwrite returns the default overwrite flag.
func (c *Config) FileOverwrite() bool {
	return c.Defaults.Overwrite == nil || *c.Defaults.Overwrite
}

// Tokenizer builds a tokenizer for the configured site. A nil Tokenizer is
// returned when no site is configured.
func (c *Config) Tokenizer() (*tokenizer.Tokenizer, error) {
	if c.Site == nil {
		return nil, nil
	}

	ctx := tokenizer.Context{
		SiteURL:                     c.Site.URL,
		SiteServerRelativeURL:       c.Site.ServerRelativeURL,
		SiteID:                      c.Site.ID,
		CollectionURL:               c.Site.Collection.URL,
		CollectionServerRelativeURL: c.Site.Collection.ServerRelativeURL,
		CollectionID:                c.Site.Collection.ID,
	}

	for _, l := range c.Site.Lists {
		ctx.Lists = append(ctx.Lists, tokenizer.List{
			ID:                l.ID,
			Title:             l.Title,
			ServerRelativeURL: l.URL,
		})
	}

	var opts []tokenizer.Option
	if c.Tokenize.ListURLs {
		opts = append(opts, tokenizer.WithListURLs())
	}

	tok, err := tokenizer.New(ctx, opts...)
	if err != nil {
		return nil, errors.Wrap(err, "invalid site configuration")
	}

	return tok, nil
}

// AssetOptions returns the asset engine options described by the
// configuration.
func (c *Config) AssetOptions() (*assets.Options, error) {
	level, err := c.FileLevel()
	if err != nil {
		return nil, err
	}

	tok, err := c.Tokenizer()
	if err != nil {
		return nil, err
	}

	opts := assets.DefaultOptions()
	opts.Level = level
	opts.Overwrite = c.FileOverwrite()
	opts.ExtractWebParts = c.Tokenize.WebParts == nil || *c.Tokenize.WebParts
	opts.Tokenizer = tok
	return opts, nil
}

func (c *Config) applyDefaults() {
	if c.Template == "" {
		c.Template = consts.DefaultTemplate
	}
	if c.Defaults.Level == "" {
		c.Defaults.Level = template.Published.String()
	}
}
