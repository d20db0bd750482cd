package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/oxhq/ablfmt/abl"
	"github.com/oxhq/ablfmt/config"
	"github.com/oxhq/ablfmt/engine"
	"github.com/oxhq/ablfmt/internal/fileio"
	"github.com/oxhq/ablfmt/internal/logging"
	"github.com/oxhq/ablfmt/internal/stability"
)

func newCheckCommand(global *globalFlags) *cobra.Command {
	var showDiff bool
	var jobs int

	cmd := &cobra.Command{
		Use:   "check [paths...]",
		Short: "Verify that formatting is stable",
		Long: `Format every file twice and verify that the second pass changes nothing,
that the tree is equivalent to the original, that no visible character was
added or lost and that no parse error was introduced.`,
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(cmd, args, global, jobs, showDiff)
		},
	}

	cmd.Flags().BoolVarP(&showDiff, "diff", "d", false, "show the diff of unstable files")
	cmd.Flags().IntVarP(&jobs, "jobs", "j", 0, "files checked in parallel, 0 means the config value")

	return cmd
}

func runCheck(cmd *cobra.Command, args []string, global *globalFlags, jobs int, showDiff bool) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	file, err := loadConfig(global)
	if err != nil {
		return err
	}
	if jobs > 0 {
		file.Jobs = jobs
	}
	if len(args) == 0 {
		args = []string{"."}
	}
	files, err := fileio.NewWalker(file.Include, file.Exclude).Discover(ctx, args...)
	if err != nil {
		return err
	}

	settings := file.Manager().Settings()
	reports := fileio.Map(ctx, files, file.Jobs, func(ctx context.Context, path string) *stability.Report {
		data, err := os.ReadFile(path)
		if err != nil {
			return &stability.Report{Path: path, Err: err}
		}
		parser := abl.NewParser()
		e := engine.New(parser, config.New(settings), engine.WithLogger(logging.Default()))
		return stability.NewChecker(parser, e).Check(ctx, path, string(data))
	})
	if err := ctx.Err(); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	failed := printReports(out, newStyles(colorEnabled(global.color, out)), reports, showDiff)
	if failed > 0 {
		return ErrUnstable
	}
	return nil
}

// printReports writes one line per file and a summary, returning how many
// files failed.
func printReports(out io.Writer, st *styles, reports []*stability.Report, showDiff bool) int {
	failed := 0
	for _, r := range reports {
		if r.OK() {
			fmt.Fprintf(out, "%s %s\n", st.Success.Render("✓"), st.Path.Render(r.Path))
			continue
		}
		failed++
		fmt.Fprintf(out, "%s %s\n", st.Failure.Render("✗"), st.Path.Render(r.Path))
		for _, f := range r.Failures() {
			fmt.Fprintf(out, "    %s\n", st.Detail.Render(f))
		}
		if showDiff && r.Diff != "" {
			fmt.Fprint(out, indent(st.diff(r.Diff), "    "))
		}
	}

	summary := fmt.Sprintf("%d files, %d stable, %d unstable", len(reports), len(reports)-failed, failed)
	if failed > 0 {
		fmt.Fprintln(out, st.Failure.Render(summary))
	} else {
		fmt.Fprintln(out, st.Success.Render(summary))
	}
	return failed
}

func indent(text, prefix string) string {
	lines := strings.SplitAfter(text, "\n")
	var b strings.Builder
	for _, line := range lines {
		if line != "" {
			b.WriteString(prefix)
			b.WriteString(line)
		}
	}
	return b.String()
}
