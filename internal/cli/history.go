package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/oxhq/ablfmt/db"
	"github.com/oxhq/ablfmt/models"
)

func newHistoryCommand(global *globalFlags) *cobra.Command {
	var dsn string
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent format runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			file, err := loadConfig(global)
			if err != nil {
				return err
			}
			if dsn != "" {
				file.History = dsn
			}
			if file.History == "" {
				return errors.New("no history database: pass --history or set history in the config file")
			}

			store, err := db.Open(file.History, global.debug)
			if err != nil {
				return err
			}
			defer store.Close()

			runs, err := store.Recent(ctx, limit)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			printRuns(out, newStyles(colorEnabled(global.color, out)), runs)
			return nil
		},
	}

	cmd.Flags().StringVar(&dsn, "history", "", "history database (file path or libsql URL)")
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "number of runs to show, 0 for all")

	return cmd
}

func printRuns(out io.Writer, st *styles, runs []models.Run) {
	if len(runs) == 0 {
		fmt.Fprintln(out, st.Dim.Render("no runs recorded"))
		return
	}
	fmt.Fprintln(out, st.Header.Render(fmt.Sprintf("%-19s  %-9s  %5s  %8s  %s", "TIME", "STATUS", "EDITS", "DURATION", "PATH")))
	for _, r := range runs {
		status := fmt.Sprintf("%-9s", r.Status)
		switch r.Status {
		case models.StatusFormatted:
			status = st.Success.Render(status)
		case models.StatusFailed:
			status = st.Failure.Render(status)
		default:
			status = st.Dim.Render(status)
		}
		fmt.Fprintf(out, "%s  %s  %5d  %8s  %s\n",
			r.CreatedAt.Local().Format(time.DateTime), status, r.Edits,
			r.Duration.Round(time.Millisecond), r.Path)
		if r.Error != "" {
			fmt.Fprintf(out, "    %s\n", st.Detail.Render(r.Error))
		}
	}
}
