package testutil

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"github.com/urfave/cli/v3"
)

// RunCommand executes a command with test context
func RunCommand(t *testing.T, command *cli.Command, args []string) error {
	t.Helper()

	_, err := RunCommandWithOutput(t, command, "", args)
	return err
}

// RunCommandWithOutput executes a command with input as its standard input and
// returns everything the command wrote
func RunCommandWithOutput(t *testing.T, command *cli.Command, input string, args []string) (string, error) {
	t.Helper()

	return RunCommandWithContext(context.Background(), t, command, strings.NewReader(input), args)
}

// RunCommandWithContext executes a command with a custom context and input
func RunCommandWithContext(ctx context.Context, t *testing.T, command *cli.Command, input io.Reader, args []string) (string, error) {
	t.Helper()

	var out bytes.Buffer
	app := &cli.Command{
		Name:     "test",
		Commands: []*cli.Command{command},
		Reader:   input,
		Writer:   &out,
	}

	// Prepend command name to args
	fullArgs := append([]string{"test", command.Name}, args...)

	err := app.Run(ctx, fullArgs)
	return out.String(), err
}
