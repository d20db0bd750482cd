package cli

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/oxhq/ablfmt/abl"
	"github.com/oxhq/ablfmt/internal/logging"
	"github.com/oxhq/ablfmt/worker"
)

func newWorkerCommand(global *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "worker",
		Short: "Serve format requests on stdin and stdout",
		Long: `Run as a worker process. Requests and responses are JSON objects, one
per line. Logs go to stderr so stdout carries protocol messages only.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			file, err := loadConfig(global)
			if err != nil {
				return err
			}
			return worker.Serve(ctx, cmd.InOrStdin(), cmd.OutOrStdout(), worker.ServeOptions{
				Parser:   abl.NewParser(),
				Settings: file.Settings,
				Logger:   logging.NewWriter(os.Stderr, logging.Default().GetLevel().String()),
			})
		},
	}
}
