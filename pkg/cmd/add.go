package cmd

import (
	"context"

	"github.com/pseudomuto/provkit/pkg/assets"
	"github.com/pseudomuto/provkit/pkg/project"
	"github.com/pseudomuto/provkit/pkg/template"
	"github.com/urfave/cli/v3"
)

// addFile returns a CLI command that adds a single local file to a template.
//
// The template defaults to the one configured in provkit.yaml and is created
// when it does not exist. Adding a file with the same source and folder as an
// existing entry replaces that entry. Pages (.aspx) get their page properties
// extracted and tokenized when a site is configured.
//
// Example usage:
//
//	provkit add-file --source ./home.aspx --folder SitePages
//	provkit add-file --source ./logo.png --folder SiteAssets --level draft site.xml
func addFile(proj *project.Project) *cli.Command {
	return &cli.Command{
		Name:      "add-file",
		Usage:     "Add a local file to a template",
		ArgsUsage: "[template]",
		Flags:     entryFlags(),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			engine, cfg, err := newEngine(cmd, proj)
			if err != nil {
				return err
			}

			return updateTemplate(cmd, proj, engine, func(t *template.Template) error {
				return engine.AddLocalFile(t, cmd.String("source"), cmd.String("folder"), containerFor(cmd, cfg))
			})
		},
	}
}

// addFolder returns a CLI command that adds the files of a local folder to a
// template. Sub-folders are included unless --recursive=false is given, with
// each file placed in the matching sub-folder of --folder. Files are added in
// lexical order of their path; files that cannot be read are skipped.
//
// Example usage:
//
//	provkit add-folder --source ./assets --folder SiteAssets
//	provkit add-folder --source ./assets --folder SiteAssets --container files --recursive=false
func addFolder(proj *project.Project) *cli.Command {
	flags := append(entryFlags(), &cli.BoolFlag{
		Name:    "recursive",
		Aliases: []string{"r"},
		Usage:   "Include files in sub-folders",
		Value:   true,
	})

	return &cli.Command{
		Name:      "add-folder",
		Usage:     "Add the files of a local folder to a template",
		ArgsUsage: "[template]",
		Flags:     flags,
		Action: func(ctx context.Context, cmd *cli.Command) error {
			engine, cfg, err := newEngine(cmd, proj)
			if err != nil {
				return err
			}

			return updateTemplate(cmd, proj, engine, func(t *template.Template) error {
				return engine.AddFolder(t, assets.FolderOptions{
					Source:    cmd.String("source"),
					Folder:    cmd.String("folder"),
					Container: containerFor(cmd, cfg),
					Recursive: cmd.Bool("recursive"),
				})
			})
		},
	}
}
