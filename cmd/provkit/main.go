package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/pseudomuto/provkit/pkg/cmd"
	"github.com/pseudomuto/provkit/pkg/project"
	"go.uber.org/fx"
)

// NB: These are set by GoReleaser during a build.
var (
	version string
	commit  string
	date    string
)

func main() {
	level := slog.LevelInfo
	if os.Getenv("PROVKIT_DEBUG") != "" {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	ctx := context.Background()
	app := fx.New(
		fx.NopLogger,
		fx.Supply(
			os.Args,
			&cmd.Version{Version: version, Commit: commit, Timestamp: date},
		),
		fx.Provide(func() context.Context { return ctx }),
		project.Module,
		cmd.Module,
	)

	if err := app.Start(ctx); err != nil {
		slog.Error("Failed to start", "err", err)
		os.Exit(1)
	}

	sig := <-app.Wait()
	if err := app.Stop(ctx); err != nil {
		slog.Warn("Failed to stop cleanly", "err", err)
	}

	os.Exit(sig.ExitCode)
}
