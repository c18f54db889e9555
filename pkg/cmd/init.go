package cmd

import (
	"context"
	"fmt"

	"github.com/pseudomuto/provkit/pkg/project"
	"github.com/urfave/cli/v3"
)

// initCmd returns a CLI command that initializes a provkit project in the
// project directory. It writes a commented provkit.yaml and an empty template
// package when they are missing; existing files are left untouched.
//
// Example usage:
//
//	provkit init
//	provkit --dir ./site init --template site.xml
func initCmd(proj *project.Project) *cli.Command {
	return &cli.Command{
		Name:  "init",
		Usage: "Initialize a new provkit project",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "template",
				Aliases:     []string{"t"},
				Usage:       "Template package to create (.pnp or .xml)",
				DefaultText: "template.pnp",
				Config: cli.StringConfig{
					TrimSpace: true,
				},
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if err := proj.Initialize(project.InitOptions{Template: cmd.String("template")}); err != nil {
				return err
			}

			path, err := proj.TemplatePath("")
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.Root().Writer, "Initialized project with template %s\n", path)
			return nil
		},
	}
}
