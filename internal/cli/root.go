// Package cli provides the Cobra command structure for ablfmt.
package cli

import (
	"errors"
	"os"

	"github.com/spf13/cobra"

	"github.com/oxhq/ablfmt/config"
	"github.com/oxhq/ablfmt/internal/logging"
)

var (
	// ErrUnformatted is returned by --check when a file would change.
	ErrUnformatted = errors.New("files are not formatted")
	// ErrUnstable is returned by check when a stability check fails.
	ErrUnstable = errors.New("formatting is not stable")
)

// BuildInfo holds build-time version information.
type BuildInfo struct {
	Version string
	Commit  string
	Date    string
}

type globalFlags struct {
	debug      bool
	logLevel   string
	configPath string
	color      string
}

// NewRootCommand creates the root ablfmt command with all subcommands.
func NewRootCommand(info BuildInfo) *cobra.Command {
	flags := &globalFlags{}

	rootCmd := &cobra.Command{
		Use:   "ablfmt",
		Short: "Formatter for OpenEdge ABL source",
		Long: `ablfmt rewrites OpenEdge ABL source into a canonical layout.

Formatting rules are configured per rule in .ablfmt.yaml; a file may
override them with a settings comment on its second line.`,
		Version: info.Version,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			if err := config.LoadDotEnv(); err != nil {
				return err
			}
			level := flags.logLevel
			if level == "" {
				level = os.Getenv(config.EnvLogLevel)
			}
			if flags.debug {
				level = "debug"
			}
			logging.SetLevel(level)
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().BoolVar(&flags.debug, "debug", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&flags.logLevel, "log-level", "", "log level: debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&flags.configPath, "config", "", "path to config file")
	rootCmd.PersistentFlags().StringVar(&flags.color, "color", "auto", "colorize output: auto, always, never")

	rootCmd.AddCommand(newFormatCommand(flags))
	rootCmd.AddCommand(newCheckCommand(flags))
	rootCmd.AddCommand(newParseCommand(flags))
	rootCmd.AddCommand(newWorkerCommand(flags))
	rootCmd.AddCommand(newHistoryCommand(flags))

	return rootCmd
}

// loadConfig reads the config file and layers ABLFMT_* variables on top.
func loadConfig(flags *globalFlags) (*config.File, error) {
	file, err := config.Load(flags.configPath)
	if err != nil {
		return nil, err
	}
	if err := file.ApplyEnv(); err != nil {
		return nil, err
	}
	return file, nil
}
