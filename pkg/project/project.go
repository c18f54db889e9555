package project

import (
	"bytes"
	_ "embed"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/pseudomuto/provkit/pkg/config"
	"github.com/pseudomuto/provkit/pkg/consts"
	"github.com/pseudomuto/provkit/pkg/provider"
	"gopkg.in/yaml.v3"
)

//go:embed embed/provkit.yaml
var defaultConfig []byte

type (
	// InitOptions contains options for project initialization.
	InitOptions struct {
		// Template sets the template package recorded in provkit.yaml. When empty
		// the configured (or default) template is kept.
		Template string
	}

	Project struct {
		root   string
		config *config.Config
	}
)

// New creates a Project rooted at dir. Nothing is read until the configuration
// is first needed.
func New(dir string) *Project {
	return &Project{root: dir}
}

// Root returns the project directory.
func (p *Project) Root() string {
	return p.root
}

// ConfigPath returns the path of the project's provkit.yaml.
func (p *Project) ConfigPath() string {
	return filepath.Join(p.root, consts.ConfigFile)
}

// Config returns the project configuration, loading it on first use. Projects
// without a provkit.yaml use config.Default.
func (p *Project) Config() (*config.Config, error) {
	if p.config != nil {
		return p.config, nil
	}

	cfg, err := config.LoadConfigFile(p.ConfigPath())
	if err != nil {
		if !os.IsNotExist(errors.Cause(err)) {
			return nil, err
		}

		cfg = config.Default()
	}

	p.config = cfg
	return cfg, nil
}

// TemplatePath resolves the template package to operate on. An explicit path
// wins over the configured one. Relative configured paths are resolved against
// the project root.
func (p *Project) TemplatePath(path string) (string, error) {
	if path != "" {
		return path, nil
	}

	cfg, err := p.Config()
	if err != nil {
		return "", err
	}

	if filepath.IsAbs(cfg.Template) {
		return cfg.Template, nil
	}

	return filepath.Join(p.root, cfg.Template), nil
}

// Initialize creates the project configuration and an empty template package
// when they are missing. Existing files are preserved; only the template key of
// an existing configuration is updated when InitOptions.Template is set.
//
// Example:
//
//	proj := project.New("/path/to/my/project")
//	if err := proj.Initialize(project.InitOptions{Template: "site.pnp"}); err != nil {
//		log.Fatal("Failed to initialize project:", err)
//	}
func (p *Project) Initialize(options InitOptions) error {
	if err := p.ensureDirectory(); err != nil {
		return err
	}

	if err := p.writeConfig(options); err != nil {
		return err
	}

	p.config = nil
	path, err := p.TemplatePath("")
	if err != nil {
		return errors.Wrapf(err, "failed to load %s", consts.ConfigFile)
	}

	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !os.IsNotExist(err) {
		return errors.Wrapf(err, "failed to stat %s", path)
	}

	if err := os.MkdirAll(filepath.Dir(path), consts.ModeDir); err != nil {
		return errors.Wrapf(err, "failed to create directory %s", filepath.Dir(path))
	}

	return provider.Save(provider.New(path), path)
}

func (p *Project) writeConfig(options InitOptions) error {
	path := p.ConfigPath()

	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		data = defaultConfig
	case err != nil:
		return errors.Wrapf(err, "failed to read %s", path)
	case options.Template == "":
		return nil
	}

	if options.Template != "" {
		if data, err = setTemplate(data, options.Template); err != nil {
			return errors.Wrapf(err, "failed to update %s", path)
		}
	}

	if err := os.WriteFile(path, data, consts.ModeFile); err != nil {
		return errors.Wrapf(err, "failed to write file %s", path)
	}

	return nil
}

// setTemplate rewrites the template key of a configuration document. The node
// API keeps the document's comments and key order intact.
func setTemplate(data []byte, path string) ([]byte, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}

	if len(doc.Content) == 0 || doc.Content[0].Kind != yaml.MappingNode {
		return nil, errors.New("configuration is not a mapping")
	}

	root := doc.Content[0]
	found := false
	for i := 0; i+1 < len(root.Content); i += 2 {
		if root.Content[i].Value == "template" {
			root.Content[i+1].SetString(path)
			found = true
		}
	}

	if !found {
		root.Content = append(
			[]*yaml.Node{
				{Kind: yaml.ScalarNode, Tag: "!!str", Value: "template"},
				{Kind: yaml.ScalarNode, Tag: "!!str", Value: path},
			},
			root.Content...,
		)
	}

	var buf bytes.Buffer
	encoder := yaml.NewEncoder(&buf)
	encoder.SetIndent(2)
	if err := encoder.Encode(&doc); err != nil {
		return nil, err
	}
	if err := encoder.Close(); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

func (p *Project) ensureDirectory() error {
	dir, err := os.Stat(p.root)
	if err != nil {
		return errors.Wrapf(err, "failed to stat dir: %s", p.root)
	}

	if !dir.IsDir() {
		return errors.Errorf("%s is not a directory", p.root)
	}

	return nil
}
