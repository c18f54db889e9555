package cmd

import (
	"testing"

	"github.com/pseudomuto/provkit/pkg/cmd/testutil"
	"github.com/pseudomuto/provkit/pkg/provider"
	"github.com/pseudomuto/provkit/pkg/template"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestShowCommand(t *testing.T) {
	t.Run("prints entries in order", func(t *testing.T) {
		fixture := testutil.TestProject(t).WithFiles(map[string]string{"b.txt": "b", "a.txt": "a"})

		for _, name := range []string{"b.txt", "a.txt"} {
			err := testutil.RunCommand(t, addFile(fixture.Project), []string{
				"--source", fixture.Path(name),
				"--folder", "lib",
			})
			require.NoError(t, err)
		}

		out, err := testutil.RunCommandWithOutput(t, show(fixture.Project), "", nil)
		require.NoError(t, err)

		var summary templateSummary
		require.NoError(t, yaml.Unmarshal([]byte(out), &summary))
		require.Equal(t, []fileSummary{
			{Src: "lib/b.txt", Folder: "lib", Level: "Published", Overwrite: true},
			{Src: "lib/a.txt", Folder: "lib", Level: "Published", Overwrite: true},
		}, summary.Files)
	})

	t.Run("summarizes web parts and properties", func(t *testing.T) {
		fixture := testutil.TestProject(t)
		path := fixture.TemplatePath()

		tmpl := testutil.RequireTemplate(t, path)
		f := template.NewFile("SitePages/Home.aspx", "SitePages")
		f.Level = template.Draft
		f.Properties = map[string]string{"PublishingPageLayout": "{site}/layout.aspx"}
		f.WebParts = []template.WebPart{{Order: 2, Zone: "Main", Title: "Intro", Contents: "<x/>"}}
		_, err := tmpl.Upsert(f)
		require.NoError(t, err)
		require.NoError(t, provider.Save(tmpl, path))

		out, err := testutil.RunCommandWithOutput(t, show(fixture.Project), "", []string{path})
		require.NoError(t, err)
		require.NotContains(t, out, "<x/>")

		var summary templateSummary
		require.NoError(t, yaml.Unmarshal([]byte(out), &summary))
		require.Equal(t, tmpl.ID, summary.ID)
		require.Equal(t, []fileSummary{{
			Src:        "SitePages/Home.aspx",
			Folder:     "SitePages",
			Level:      "Draft",
			Overwrite:  true,
			WebParts:   []webPartSummary{{Title: "Intro", Zone: "Main", Order: 2}},
			Properties: map[string]string{"PublishingPageLayout": "{site}/layout.aspx"},
		}}, summary.Files)
	})

	t.Run("missing template", func(t *testing.T) {
		fixture := testutil.TestProject(t)

		_, err := testutil.RunCommandWithOutput(t, show(fixture.Project), "", []string{fixture.Path("nope.pnp")})
		require.Error(t, err)
	})
}
