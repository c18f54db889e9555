// Package cmd provides CLI commands for the provkit tool.
//
// Each command is implemented as a separate function that returns a
// *cli.Command, following the urfave/cli/v3 pattern. Commands receive their
// dependencies as arguments and are registered with the application through
// the fx Module.
//
// # Available Commands
//
//   - init: Create provkit.yaml and an empty template package
//   - show: Print the file entries of a template
//   - add-file: Add a single local file to a template
//   - add-folder: Add the files of a local folder to a template
//   - tokenize: Replace site specific references with tokens
//
// Commands that modify a template load it once, apply every change, and save
// it exactly once.
//
// # Global Options
//
// All commands support global flags:
//   - --dir, -d: Specify project directory (defaults to current directory)
//   - --help, -h: Display command help
//   - --version: Display version information
//
// # Example Usage
//
//	provkit init --template site.pnp
//	provkit add-folder --source ./assets --folder SiteAssets
//	provkit add-file --source ./home.aspx --folder SitePages --level draft site.xml
//	provkit show
//	provkit tokenize --webpart part.xml
package cmd
