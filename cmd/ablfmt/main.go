// Package main is the entry point for the ablfmt CLI.
package main

import (
	"errors"
	"os"

	"github.com/oxhq/ablfmt/internal/cli"
	"github.com/oxhq/ablfmt/internal/logging"
)

// Set through -ldflags at release time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	rootCmd := cli.NewRootCommand(cli.BuildInfo{
		Version: version,
		Commit:  commit,
		Date:    date,
	})
	rootCmd.SetArgs(args)

	if err := rootCmd.Execute(); err != nil {
		if !errors.Is(err, cli.ErrUnformatted) && !errors.Is(err, cli.ErrUnstable) {
			logging.Default().Error("command failed", logging.FieldError, err)
		}
		return 1
	}
	return 0
}
