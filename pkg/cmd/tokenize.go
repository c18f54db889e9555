package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/pkg/errors"
	"github.com/pseudomuto/provkit/pkg/consts"
	"github.com/pseudomuto/provkit/pkg/project"
	"github.com/urfave/cli/v3"
)

// tokenizeCmd returns a CLI command that replaces the references to the
// configured site in a file, or standard input, with portable tokens.
//
// The site is read from the site section of provkit.yaml. With --webpart the
// input is treated as a web part definition and only its property values are
// rewritten, leaving the rest of the markup byte for byte intact.
//
// Example usage:
//
//	provkit tokenize page.html
//	cat part.webpart | provkit tokenize --webpart --list-urls
func tokenizeCmd(proj *project.Project) *cli.Command {
	return &cli.Command{
		Name:      "tokenize",
		Usage:     "Replace site specific references with tokens",
		ArgsUsage: "[file]",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "list-urls",
				Usage: "Also replace list URLs with {listurl:<Title>} tokens",
			},
			&cli.BoolFlag{
				Name:    "webpart",
				Aliases: []string{"w"},
				Usage:   "Treat the input as a web part definition",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg, err := proj.Config()
			if err != nil {
				return err
			}

			if cfg.Site == nil {
				return errors.Errorf("no site configured in %s", consts.ConfigFile)
			}

			site := *cfg
			if cmd.Bool("list-urls") {
				site.Tokenize.ListURLs = true
			}

			tok, err := site.Tokenizer()
			if err != nil {
				return err
			}

			input, err := readInput(cmd)
			if err != nil {
				return err
			}

			out := input
			if cmd.Bool("webpart") {
				if out, err = tok.TokenizeWebPart(input); err != nil {
					return err
				}
			} else {
				out = tok.Tokenize(input)
			}

			_, err = fmt.Fprint(cmd.Root().Writer, out)
			return err
		},
	}
}

func readInput(cmd *cli.Command) (string, error) {
	if path := cmd.Args().First(); path != "" && path != "-" {
		data, err := os.ReadFile(path)
		if err != nil {
			return "", errors.Wrapf(err, "failed to read file: %s", path)
		}

		return string(data), nil
	}

	data, err := io.ReadAll(cmd.Root().Reader)
	if err != nil {
		return "", errors.Wrap(err, "failed to read input")
	}

	return string(data), nil
}
