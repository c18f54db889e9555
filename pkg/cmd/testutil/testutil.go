package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/pseudomuto/provkit/pkg/config"
	"github.com/pseudomuto/provkit/pkg/consts"
	"github.com/pseudomuto/provkit/pkg/project"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

// ProjectFixture represents a test project environment with all necessary dependencies
type ProjectFixture struct {
	Dir     string
	Config  *config.Config
	Project *project.Project
	t       *testing.T
}

// TestProject creates an isolated temp directory with an initialized provkit project
func TestProject(t *testing.T) *ProjectFixture {
	t.Helper()

	tmpDir := t.TempDir()
	proj := project.New(tmpDir)

	err := proj.Initialize(project.InitOptions{})
	require.NoError(t, err, "Failed to initialize test project")

	cfg, err := proj.Config()
	require.NoError(t, err, "Failed to load config file")

	return &ProjectFixture{
		Dir:     tmpDir,
		Config:  cfg,
		Project: proj,
		t:       t,
	}
}

// WithConfig writes cfg to the project's provkit.yaml. The project is
// recreated so the new configuration is picked up.
func (p *ProjectFixture) WithConfig(cfg *config.Config) *ProjectFixture {
	p.t.Helper()

	data, err := yaml.Marshal(cfg)
	require.NoError(p.t, err, "Failed to marshal config")
	require.NoError(p.t, os.WriteFile(p.ConfigPath(), data, consts.ModeFile), "Failed to write config")

	p.Config = cfg
	p.Project = project.New(p.Dir)
	return p
}

// WithSite configures the site used for tokenization
func (p *ProjectFixture) WithSite(site config.Site) *ProjectFixture {
	p.t.Helper()

	cfg := *p.Config
	cfg.Site = &site
	return p.WithConfig(&cfg)
}

// WithFiles writes source files relative to the project directory
func (p *ProjectFixture) WithFiles(files map[string]string) *ProjectFixture {
	p.t.Helper()

	for path, content := range files {
		fullPath := p.Path(path)

		err := os.MkdirAll(filepath.Dir(fullPath), consts.ModeDir)
		require.NoError(p.t, err, "Failed to create directory for: %s", path)

		err = os.WriteFile(fullPath, []byte(content), consts.ModeFile)
		require.NoError(p.t, err, "Failed to write file: %s", path)
	}

	return p
}

// Path returns the absolute path of a project relative path
func (p *ProjectFixture) Path(rel string) string {
	return filepath.Join(p.Dir, filepath.FromSlash(rel))
}

// ConfigPath returns the path to the provkit.yaml file
func (p *ProjectFixture) ConfigPath() string {
	return filepath.Join(p.Dir, consts.ConfigFile)
}

// TemplatePath returns the path of the project's template package
func (p *ProjectFixture) TemplatePath() string {
	p.t.Helper()

	path, err := p.Project.TemplatePath("")
	require.NoError(p.t, err)
	return path
}
