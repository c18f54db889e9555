package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/pkg/errors"
	"github.com/pseudomuto/provkit/pkg/assets"
	"github.com/pseudomuto/provkit/pkg/config"
	"github.com/pseudomuto/provkit/pkg/project"
	"github.com/pseudomuto/provkit/pkg/provider"
	"github.com/pseudomuto/provkit/pkg/template"
	"github.com/urfave/cli/v3"
)

// entryFlags returns the flags shared by the commands that add files.
func entryFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:     "source",
			Aliases:  []string{"s"},
			Usage:    "Local path to read from",
			Required: true,
			Config: cli.StringConfig{
				TrimSpace: true,
			},
		},
		&cli.StringFlag{
			Name:    "folder",
			Aliases: []string{"f"},
			Usage:   "Destination folder of the added files",
		},
		&cli.StringFlag{
			Name:        "container",
			Aliases:     []string{"c"},
			Usage:       "Container the file contents are stored under",
			DefaultText: "defaults.container, else the destination folder",
		},
		&cli.StringFlag{
			Name:        "level",
			Aliases:     []string{"l"},
			Usage:       "Publishing level (Draft, Published or Checkout)",
			DefaultText: "defaults.level",
		},
		&cli.BoolFlag{
			Name:        "overwrite",
			Usage:       "Replace existing files when provisioning",
			DefaultText: "defaults.overwrite",
		},
	}
}

// newEngine creates an asset engine from the project configuration and the
// command's overrides.
func newEngine(cmd *cli.Command, proj *project.Project) (*assets.Engine, *config.Config, error) {
	cfg, err := proj.Config()
	if err != nil {
		return nil, nil, err
	}

	opts, err := cfg.AssetOptions()
	if err != nil {
		return nil, nil, err
	}

	if cmd.IsSet("level") {
		if opts.Level, err = template.ParseFileLevel(cmd.String("level")); err != nil {
			return nil, nil, err
		}
	}

	if cmd.IsSet("overwrite") {
		opts.Overwrite = cmd.Bool("overwrite")
	}

	opts.Progress = assets.ProgressFunc(func(activity string, percent int) {
		slog.Debug("Progress", "activity", activity, "percent", percent)
	})

	return assets.New(opts), cfg, nil
}

func containerFor(cmd *cli.Command, cfg *config.Config) string {
	if cmd.IsSet("container") {
		return cmd.String("container")
	}

	return cfg.Defaults.Container
}

// updateTemplate loads the template named by the command's first argument (or
// the project's template), applies fn and saves the result once. A template
// that does not exist yet starts out empty.
func updateTemplate(cmd *cli.Command, proj *project.Project, engine *assets.Engine, fn func(*template.Template) error) error {
	path, err := proj.TemplatePath(cmd.Args().First())
	if err != nil {
		return err
	}

	tmpl, err := loadOrCreate(path)
	if err != nil {
		return err
	}

	if err := fn(tmpl); err != nil {
		return err
	}

	if err := provider.Save(tmpl, path); err != nil {
		return err
	}

	w := cmd.Root().Writer
	fmt.Fprintf(w, "Saved %d file(s) to %s\n", len(tmpl.Files), path)
	if n := len(engine.Warnings()); n > 0 {
		fmt.Fprintf(w, "Skipped %d file(s), see warnings above\n", n)
	}

	return nil
}

func loadOrCreate(path string) (*template.Template, error) {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return provider.New(path), nil
		}

		return nil, errors.Wrapf(err, "failed to stat template: %s", path)
	}

	return provider.Load(path)
}
