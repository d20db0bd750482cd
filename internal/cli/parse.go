package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/oxhq/ablfmt/abl"
	"github.com/oxhq/ablfmt/core"
	"github.com/oxhq/ablfmt/worker"
)

func newParseCommand(_ *globalFlags) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "parse <file>",
		Short: "Print the syntax tree of a file",
		Long: `Print the syntax tree of a file as an S-expression followed by the
ranges of any parse errors. With --json the tree is printed in the worker's
wire format. Use "-" to read standard input.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			var data []byte
			var err error
			if args[0] == stdinPath {
				data, err = io.ReadAll(cmd.InOrStdin())
			} else {
				data, err = os.ReadFile(args[0])
			}
			if err != nil {
				return err
			}
			return printTree(ctx, cmd.OutOrStdout(), string(data), asJSON)
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print the tree as JSON")

	return cmd
}

func printTree(ctx context.Context, out io.Writer, text string, asJSON bool) error {
	result, err := abl.NewParser().Parse(ctx, text, nil)
	if err != nil {
		return err
	}
	tree := result.Tree

	if asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(worker.Response{
			Type:        worker.TypeParseResult,
			Success:     true,
			Tree:        worker.SerializeTree(tree),
			ErrorRanges: tree.ErrorRanges(),
			EOL:         core.DetectEOL(text).Delimiter(),
		})
	}

	fmt.Fprintln(out, tree.Root().String())
	for _, r := range tree.ErrorRanges() {
		fmt.Fprintf(out, "error %s-%s\n", r.StartPosition, r.EndPosition)
	}
	return nil
}
