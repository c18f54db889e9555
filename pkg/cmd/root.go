package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/urfave/cli/v3"
	"go.uber.org/fx"
)

type (
	Params struct {
		fx.In

		Args       []string
		Commands   []*cli.Command `group:"commands"`
		Ctx        context.Context
		Lifecycle  fx.Lifecycle
		Shutdowner fx.Shutdowner
		Version    *Version
	}

	Version struct {
		Version   string
		Commit    string
		Timestamp string
	}
)

// Run creates and executes the main provkit CLI application with the
// registered commands. The application is started from an fx start hook and
// shuts the fx application down with the command's exit code once it returns.
//
// Global Flags:
//   - --dir, -d: Project directory (defaults to current directory)
//
// The working directory is changed to --dir before any command runs, so
// relative paths given to commands, and the project's provkit.yaml, are
// resolved against it.
func Run(p Params) {
	app := App(p.Version, p.Commands)

	p.Lifecycle.Append(fx.StartHook(func() {
		if err := app.Run(p.Ctx, p.Args); err != nil {
			slog.Error("Error running command", "err", err)
			_ = p.Shutdowner.Shutdown(fx.ExitCode(1))
			return
		}

		_ = p.Shutdowner.Shutdown(fx.ExitCode(0))
	}))
}

// App builds the root command.
func App(version *Version, commands []*cli.Command) *cli.Command {
	if version == nil {
		version = &Version{Version: "dev"}
	}

	cli.VersionPrinter = func(cmd *cli.Command) {
		fmt.Fprintln(cmd.Root().Writer, "Version:", version.Version)
		fmt.Fprintln(cmd.Root().Writer, "Commit:", version.Commit)
		fmt.Fprintln(cmd.Root().Writer, "Date:", version.Timestamp)
	}

	return &cli.Command{
		Name:  "provkit",
		Usage: "A tool for packaging provisioning templates",
		Description: `provkit captures files, pages and their web parts into provisioning
template packages (.pnp archives or XML manifests with loose files), replacing
site specific references with portable tokens along the way.`,
		Version: version.Version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "dir",
				Aliases:     []string{"d"},
				Usage:       "the project directory",
				Value:       ".",
				DefaultText: "Current directory",
				Config: cli.StringConfig{
					TrimSpace: true,
				},
			},
		},
		Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			return ctx, os.Chdir(cmd.String("dir"))
		},
		Commands: commands,
	}
}
