package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v3"
	"go.uber.org/fx"
	"go.uber.org/fx/fxtest"
)

func TestApp(t *testing.T) {
	t.Run("changes to the project directory", func(t *testing.T) {
		chdir(t, t.TempDir())
		target := t.TempDir()

		var cwd string
		app := App(nil, []*cli.Command{{
			Name: "pwd",
			Action: func(ctx context.Context, cmd *cli.Command) error {
				var err error
				cwd, err = os.Getwd()
				return err
			},
		}})

		require.NoError(t, app.Run(context.Background(), []string{"provkit", "--dir", target, "pwd"}))

		want, err := filepath.EvalSymlinks(target)
		require.NoError(t, err)
		got, err := filepath.EvalSymlinks(cwd)
		require.NoError(t, err)
		require.Equal(t, want, got)
	})

	t.Run("version", func(t *testing.T) {
		var buf bytes.Buffer
		app := App(&Version{Version: "1.2.3", Commit: "abc", Timestamp: "today"}, nil)
		app.Writer = &buf

		require.NoError(t, app.Run(context.Background(), []string{"provkit", "--version"}))
		require.Contains(t, buf.String(), "Version: 1.2.3")
		require.Contains(t, buf.String(), "Commit: abc")
	})
}

func TestRun(t *testing.T) {
	tests := map[string]struct {
		action   func(context.Context, *cli.Command) error
		exitCode int
	}{
		"success": {
			action:   func(context.Context, *cli.Command) error { return nil },
			exitCode: 0,
		},
		"failure": {
			action:   func(context.Context, *cli.Command) error { return errors.New("boom") },
			exitCode: 1,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			chdir(t, t.TempDir())

			app := fxtest.New(t,
				fx.Supply(
					[]string{"provkit", "ping"},
					&Version{Version: "test"},
				),
				fx.Provide(
					func() context.Context { return context.Background() },
					fx.Annotate(
						func() *cli.Command { return &cli.Command{Name: "ping", Action: tt.action} },
						fx.ResultTags(`group:"commands"`),
					),
				),
				fx.Invoke(Run),
			)

			app.RequireStart()
			sig := <-app.Wait()
			app.RequireStop()

			require.Equal(t, tt.exitCode, sig.ExitCode)
		})
	}
}

// chdir changes the working directory for the duration of the test and
// restores it on cleanup (equivalent to testing.T.Chdir from Go 1.24).
func chdir(t *testing.T, dir string) {
	t.Helper()

	prev, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { require.NoError(t, os.Chdir(prev)) })
}
