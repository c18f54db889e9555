package cmd

import (
	"context"

	"github.com/pkg/errors"
	"github.com/pseudomuto/provkit/pkg/project"
	"github.com/pseudomuto/provkit/pkg/provider"
	"github.com/pseudomuto/provkit/pkg/template"
	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"
)

type (
	templateSummary struct {
		ID      string        `yaml:"id"`
		Version string        `yaml:"version"`
		Files   []fileSummary `yaml:"files"`
	}

	fileSummary struct {
		Src        string            `yaml:"src"`
		Folder     string            `yaml:"folder"`
		Level      string            `yaml:"level"`
		Overwrite  bool              `yaml:"overwrite"`
		WebParts   []webPartSummary  `yaml:"web_parts,omitempty"`
		Properties map[string]string `yaml:"properties,omitempty"`
	}

	webPartSummary struct {
		Title string `yaml:"title"`
		Zone  string `yaml:"zone"`
		Order uint   `yaml:"order"`
	}
)

// show returns a CLI command that prints the file entries of a template as
// YAML, in the order they are stored. Web part definitions are summarized by
// their placement.
//
// Example usage:
//
//	provkit show
//	provkit show site.xml
func show(proj *project.Project) *cli.Command {
	return &cli.Command{
		Name:      "show",
		Usage:     "Print the file entries of a template",
		ArgsUsage: "[template]",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			path, err := proj.TemplatePath(cmd.Args().First())
			if err != nil {
				return err
			}

			tmpl, err := provider.Load(path)
			if err != nil {
				return err
			}

			encoder := yaml.NewEncoder(cmd.Root().Writer)
			encoder.SetIndent(2)
			if err := encoder.Encode(summarize(tmpl)); err != nil {
				return errors.Wrap(err, "failed to write template summary")
			}

			return encoder.Close()
		},
	}
}

func summarize(t *template.Template) templateSummary {
	summary := templateSummary{
		ID:      t.ID,
		Version: t.Version,
		Files:   make([]fileSummary, 0, len(t.Files)),
	}

	for _, f := range t.Files {
		file := fileSummary{
			Src:        f.Src,
			Folder:     f.Folder,
			Level:      f.Level.String(),
			Overwrite:  f.Overwrite,
			Properties: f.Properties,
		}

		for _, wp := range f.WebParts {
			file.WebParts = append(file.WebParts, webPartSummary{
				Title: wp.Title,
				Zone:  wp.Zone,
				Order: wp.Order,
			})
		}

		summary.Files = append(summary.Files, file)
	}

	return summary
}
