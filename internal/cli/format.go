package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/oxhq/ablfmt/abl"
	"github.com/oxhq/ablfmt/config"
	"github.com/oxhq/ablfmt/core"
	"github.com/oxhq/ablfmt/db"
	"github.com/oxhq/ablfmt/engine"
	"github.com/oxhq/ablfmt/internal/fileio"
	"github.com/oxhq/ablfmt/internal/logging"
	"github.com/oxhq/ablfmt/internal/stability"
	"github.com/oxhq/ablfmt/models"
	"github.com/oxhq/ablfmt/worker"
)

const stdinPath = "-"

type formatFlags struct {
	write     bool
	check     bool
	diff      bool
	include   []string
	exclude   []string
	eol       string
	history   string
	jobs      int
	useWorker bool
}

func newFormatCommand(global *globalFlags) *cobra.Command {
	flags := &formatFlags{}

	cmd := &cobra.Command{
		Use:   "format [paths...]",
		Short: "Format ABL files",
		Long:  formatLongDescription,
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFormat(cmd, args, global, flags)
		},
	}

	cmd.Flags().BoolVarP(&flags.write, "write", "w", false, "write results back to the source files")
	cmd.Flags().BoolVar(&flags.check, "check", false, "list files whose formatting differs and fail")
	cmd.Flags().BoolVarP(&flags.diff, "diff", "d", false, "print a unified diff instead of the formatted text")
	cmd.Flags().StringSliceVar(&flags.include, "include", nil, "include file patterns (glob)")
	cmd.Flags().StringSliceVar(&flags.exclude, "exclude", nil, "exclude file patterns (glob)")
	cmd.Flags().StringVar(&flags.eol, "eol", "", "line endings: auto, lf, crlf, cr")
	cmd.Flags().StringVar(&flags.history, "history", "", "record runs in this database (file path or libsql URL)")
	cmd.Flags().IntVarP(&flags.jobs, "jobs", "j", 0, "files formatted in parallel, 0 means the config value")
	cmd.Flags().BoolVar(&flags.useWorker, "worker", false, "format through a worker subprocess")
	cmd.MarkFlagsMutuallyExclusive("write", "check")

	return cmd
}

const formatLongDescription = `Format ABL source files.

Paths may be files or directories; directories are searched for files
matching the include patterns. With no paths the current directory is
used, and "-" formats standard input.

Examples:
  ablfmt format src/ --write       # Rewrite files in place
  ablfmt format --check .          # List unformatted files, exit 1 if any
  ablfmt format --diff main.p      # Show what would change
  ablfmt format - < main.p         # Format stdin to stdout`

// fileResult is the outcome of formatting one file.
type fileResult struct {
	path     string
	before   string
	after    string
	edits    int
	status   string
	err      error
	duration time.Duration
}

func (r *fileResult) changed() bool { return r.status == models.StatusFormatted }

// textFormatter formats one document. eol is "auto" or a ParseEOL name.
type textFormatter interface {
	Format(ctx context.Context, text, eol string) (string, int, error)
}

type localFormatter struct {
	settings map[string]any
	logger   *log.Logger
}

func (f localFormatter) Format(ctx context.Context, text, eolMode string) (string, int, error) {
	eol, err := resolveEOL(eolMode, text)
	if err != nil {
		return "", 0, err
	}
	e := engine.New(abl.NewParser(), config.New(f.settings), engine.WithLogger(f.logger))
	out, err := e.FormatTextContext(ctx, text, eol)
	return out, e.Edits(), err
}

type remoteFormatter struct {
	client   *worker.Client
	settings map[string]any
}

func (f remoteFormatter) Format(ctx context.Context, text, eolMode string) (string, int, error) {
	opts := &worker.Options{Settings: f.settings}
	if eolMode != "auto" {
		opts.EOL = eolMode
	}
	out, err := f.client.Format(ctx, text, opts)
	return out, 0, err
}

// resolveEOL picks the line ending for text under mode.
func resolveEOL(mode, text string) (core.EOL, error) {
	if mode == "" || mode == "auto" {
		return core.DetectEOL(text), nil
	}
	return core.ParseEOL(mode)
}

func newTextFormatter(ctx context.Context, useWorker bool, settings map[string]any) (textFormatter, func(), error) {
	logger := logging.Default()
	if !useWorker {
		return localFormatter{settings: settings, logger: logger}, func() {}, nil
	}
	exe, err := os.Executable()
	if err != nil {
		return nil, nil, fmt.Errorf("locating executable: %w", err)
	}
	client, err := worker.Spawn(ctx, exe, "worker", "--log-level", logger.GetLevel().String())
	if err != nil {
		return nil, nil, err
	}
	if err := client.Ready(ctx); err != nil {
		client.Close()
		return nil, nil, fmt.Errorf("worker not ready: %w", err)
	}
	logger.Debug("worker started", "path", exe)
	closeFn := func() {
		if err := client.Close(); err != nil {
			logger.Warn("worker shutdown", logging.FieldError, err)
		}
	}
	return remoteFormatter{client: client, settings: settings}, closeFn, nil
}

// applyFormatFlags lets explicit flags win over the config file.
func applyFormatFlags(cmd *cobra.Command, file *config.File, flags *formatFlags) error {
	if cmd.Flags().Changed("include") {
		file.Include = flags.include
	}
	if cmd.Flags().Changed("exclude") {
		file.Exclude = flags.exclude
	}
	if flags.eol != "" {
		file.EOL = flags.eol
	}
	if flags.history != "" {
		file.History = flags.history
	}
	if flags.jobs > 0 {
		file.Jobs = flags.jobs
	}
	if file.EOL != "" && file.EOL != "auto" {
		if _, err := core.ParseEOL(file.EOL); err != nil {
			return err
		}
	}
	return fileio.ValidatePatterns(append(append([]string{}, file.Include...), file.Exclude...)...)
}

func runFormat(cmd *cobra.Command, args []string, global *globalFlags, flags *formatFlags) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	logger := logging.Default()

	file, err := loadConfig(global)
	if err != nil {
		return err
	}
	if err := applyFormatFlags(cmd, file, flags); err != nil {
		return err
	}

	var files []string
	switch {
	case len(args) == 1 && args[0] == stdinPath:
		files = []string{stdinPath}
	default:
		if len(args) == 0 {
			args = []string{"."}
		}
		files, err = fileio.NewWalker(file.Include, file.Exclude).Discover(ctx, args...)
		if err != nil {
			return err
		}
	}
	logger.Debug("discovered", logging.FieldFiles, len(files), logging.FieldJobs, file.Jobs)

	settings := file.Manager().Settings()
	settingsJSON, settingsDigest, err := db.SettingsJSON(settings)
	if err != nil {
		return err
	}

	var store *db.Store
	if file.History != "" {
		if store, err = db.Open(file.History, global.debug); err != nil {
			return err
		}
		defer store.Close()
	}

	formatter, closeFormatter, err := newTextFormatter(ctx, flags.useWorker, settings)
	if err != nil {
		return err
	}
	defer closeFormatter()

	writer := fileio.NewWriter(fileio.DefaultWriterConfig())
	defer writer.Cleanup()

	stdin := cmd.InOrStdin()
	results := fileio.Map(ctx, files, file.Jobs, func(ctx context.Context, path string) *fileResult {
		r := formatFile(ctx, path, stdin, formatter, file.EOL, store, settingsDigest)
		if r.err == nil && flags.write && r.changed() && path != stdinPath {
			if err := writer.WriteFile(path, []byte(r.after)); err != nil {
				r.err = err
				r.status = models.StatusFailed
			}
		}
		return r
	})
	if err := ctx.Err(); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	st := newStyles(colorEnabled(global.color, out))
	var changed, failed int
	for _, r := range results {
		if store != nil {
			recordRun(ctx, store, r, settingsJSON, settingsDigest)
		}
		switch {
		case r.err != nil:
			failed++
			logger.Error("format failed", logging.FieldPath, r.path, logging.FieldError, r.err)
			continue
		case r.changed():
			changed++
		}
		report(out, st, r, flags)
	}

	logger.Info("done", logging.FieldFiles, len(results), "changed", changed, "failed", failed)
	if failed > 0 {
		return fmt.Errorf("%d of %d files failed to format", failed, len(results))
	}
	if flags.check && changed > 0 {
		return ErrUnformatted
	}
	return nil
}

func formatFile(ctx context.Context, path string, stdin io.Reader, f textFormatter, eol string, store *db.Store, settingsDigest string) *fileResult {
	start := time.Now()
	r := &fileResult{path: path}
	defer func() { r.duration = time.Since(start) }()

	var data []byte
	var err error
	if path == stdinPath {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		r.err, r.status = err, models.StatusFailed
		return r
	}
	r.before = string(data)

	if store != nil && path != stdinPath {
		done, err := store.Formatted(ctx, db.Digest(data), settingsDigest)
		if err != nil {
			logging.Default().Warn("history lookup", logging.FieldPath, path, logging.FieldError, err)
		}
		if done {
			r.after, r.status = r.before, models.StatusSkipped
			return r
		}
	}

	r.after, r.edits, err = f.Format(ctx, r.before, eol)
	var fe *engine.FormatError
	switch {
	case errors.As(err, &fe):
		r.err = fmt.Errorf("%s at offset %d: %w", fe.Label, fe.Offset, fe.Cause)
		r.status = models.StatusFailed
	case err != nil:
		r.err, r.status = err, models.StatusFailed
	case r.after == r.before:
		r.status = models.StatusUnchanged
	default:
		r.status = models.StatusFormatted
	}
	return r
}

func report(out io.Writer, st *styles, r *fileResult, flags *formatFlags) {
	switch {
	case flags.check:
		if r.changed() {
			fmt.Fprintln(out, st.Path.Render(r.path))
		}
	case flags.diff:
		if r.changed() {
			fmt.Fprint(out, st.diff(stability.Diff(r.before, r.after, r.path, r.path+" (formatted)")))
		}
	case flags.write && r.path != stdinPath:
		if r.changed() {
			logging.Default().Info("formatted", logging.FieldPath, r.path, logging.FieldEdits, r.edits)
		}
	default:
		fmt.Fprint(out, r.after)
	}
}

func recordRun(ctx context.Context, store *db.Store, r *fileResult, settings []byte, settingsDigest string) {
	run := &models.Run{
		Path:           r.path,
		BaseDigest:     db.Digest([]byte(r.before)),
		SettingsDigest: settingsDigest,
		Settings:       settings,
		Edits:          r.edits,
		Status:         r.status,
		Duration:       r.duration,
	}
	if r.err == nil {
		run.AfterDigest = db.Digest([]byte(r.after))
	} else {
		run.Error = r.err.Error()
	}
	if err := store.Record(ctx, run); err != nil {
		logging.Default().Warn("history record", logging.FieldPath, r.path, logging.FieldError, err)
	}
}
