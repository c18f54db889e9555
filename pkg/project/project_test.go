package project_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/pseudomuto/provkit/pkg/config"
	"github.com/pseudomuto/provkit/pkg/consts"
	"github.com/pseudomuto/provkit/pkg/project"
	"github.com/pseudomuto/provkit/pkg/provider"
	"github.com/stretchr/testify/require"
	"gotest.tools/v3/fs"
)

func TestProjectInitialize(t *testing.T) {
	t.Run("creates config and template", func(t *testing.T) {
		tmpDir := t.TempDir()

		proj := project.New(tmpDir)
		require.NoError(t, proj.Initialize(project.InitOptions{}))

		require.FileExists(t, filepath.Join(tmpDir, consts.ConfigFile))
		require.FileExists(t, filepath.Join(tmpDir, consts.DefaultTemplate))

		cfg, err := config.LoadConfigFile(filepath.Join(tmpDir, consts.ConfigFile))
		require.NoError(t, err)
		require.Equal(t, consts.DefaultTemplate, cfg.Template)
		require.Nil(t, cfg.Site)

		tmpl, err := provider.Load(filepath.Join(tmpDir, consts.DefaultTemplate))
		require.NoError(t, err)
		require.Empty(t, tmpl.Files)
	})

	t.Run("custom template path", func(t *testing.T) {
		tmpDir := t.TempDir()

		proj := project.New(tmpDir)
		require.NoError(t, proj.Initialize(project.InitOptions{Template: "out/site.xml"}))
		require.FileExists(t, filepath.Join(tmpDir, "out", "site.xml"))
		require.NoFileExists(t, filepath.Join(tmpDir, consts.DefaultTemplate))

		cfg, err := proj.Config()
		require.NoError(t, err)
		require.Equal(t, "out/site.xml", cfg.Template)

		// comments survive the rewrite
		data, err := os.ReadFile(proj.ConfigPath())
		require.NoError(t, err)
		require.Contains(t, string(data), "# The template package")
	})

	t.Run("preserves existing files", func(t *testing.T) {
		existing := "template: mine.pnp\ndefaults:\n  level: Draft\n"
		dir := fs.NewDir(t, "project",
			fs.WithFile(consts.ConfigFile, existing),
			fs.WithFile("mine.pnp", "not touched"),
		)

		require.NoError(t, project.New(dir.Path()).Initialize(project.InitOptions{}))

		content, err := os.ReadFile(dir.Join(consts.ConfigFile))
		require.NoError(t, err)
		require.Equal(t, existing, string(content))

		content, err = os.ReadFile(dir.Join("mine.pnp"))
		require.NoError(t, err)
		require.Equal(t, "not touched", string(content))
	})

	t.Run("updates the template of an existing config", func(t *testing.T) {
		dir := fs.NewDir(t, "project", fs.WithFile(consts.ConfigFile, "defaults:\n  level: Draft\n"))

		proj := project.New(dir.Path())
		require.NoError(t, proj.Initialize(project.InitOptions{Template: "site.pnp"}))
		require.FileExists(t, dir.Join("site.pnp"))

		cfg, err := proj.Config()
		require.NoError(t, err)
		require.Equal(t, "site.pnp", cfg.Template)
		require.Equal(t, "Draft", cfg.Defaults.Level)
	})

	t.Run("missing directory", func(t *testing.T) {
		err := project.New(filepath.Join(t.TempDir(), "nope")).Initialize(project.InitOptions{})
		require.Error(t, err)
		require.Contains(t, err.Error(), "failed to stat dir")
	})

	t.Run("root is a file", func(t *testing.T) {
		dir := fs.NewDir(t, "project", fs.WithFile("file", ""))

		err := project.New(dir.Join("file")).Initialize(project.InitOptions{})
		require.Error(t, err)
		require.Contains(t, err.Error(), "is not a directory")
	})
}

func TestProjectConfig(t *testing.T) {
	t.Run("defaults without provkit.yaml", func(t *testing.T) {
		cfg, err := project.New(t.TempDir()).Config()
		require.NoError(t, err)
		require.Equal(t, config.Default(), cfg)
	})

	t.Run("invalid provkit.yaml", func(t *testing.T) {
		dir := fs.NewDir(t, "project", fs.WithFile(consts.ConfigFile, "defaults:\n  level: final\n"))

		_, err := project.New(dir.Path()).Config()
		require.Error(t, err)
	})
}

func TestProjectTemplatePath(t *testing.T) {
	dir := fs.NewDir(t, "project", fs.WithFile(consts.ConfigFile, "template: site/t.pnp\n"))
	proj := project.New(dir.Path())

	path, err := proj.TemplatePath("")
	require.NoError(t, err)
	require.Equal(t, dir.Join("site", "t.pnp"), path)

	path, err = proj.TemplatePath("other.xml")
	require.NoError(t, err)
	require.Equal(t, "other.xml", path)
}
