package cmd

import (
	"path/filepath"
	"testing"

	"github.com/pseudomuto/provkit/pkg/cmd/testutil"
	"github.com/pseudomuto/provkit/pkg/config"
	"github.com/pseudomuto/provkit/pkg/consts"
	"github.com/pseudomuto/provkit/pkg/project"
	"github.com/stretchr/testify/require"
)

func TestInitCommand(t *testing.T) {
	t.Run("basic initialization", func(t *testing.T) {
		tmpDir := t.TempDir()

		out, err := testutil.RunCommandWithOutput(t, initCmd(project.New(tmpDir)), "", nil)
		require.NoError(t, err)
		require.Contains(t, out, "Initialized project with template")

		cfg, err := config.LoadConfigFile(filepath.Join(tmpDir, consts.ConfigFile))
		require.NoError(t, err)
		require.Equal(t, consts.DefaultTemplate, cfg.Template)

		testutil.RequireTemplateFiles(t, filepath.Join(tmpDir, consts.DefaultTemplate))
	})

	t.Run("custom template", func(t *testing.T) {
		tmpDir := t.TempDir()

		err := testutil.RunCommand(t, initCmd(project.New(tmpDir)), []string{"--template", "site.xml"})
		require.NoError(t, err)

		testutil.RequireFileExists(t,
			filepath.Join(tmpDir, consts.ConfigFile),
			testutil.RequireFileContains(t, "template: site.xml"),
		)
		testutil.RequireTemplateFiles(t, filepath.Join(tmpDir, "site.xml"))
		testutil.RequireNoFile(t, filepath.Join(tmpDir, consts.DefaultTemplate))
	})

	t.Run("existing project", func(t *testing.T) {
		fixture := testutil.TestProject(t)

		err := testutil.RunCommand(t, initCmd(fixture.Project), nil)
		require.NoError(t, err)
		testutil.RequireValidProject(t, fixture)
	})
}
