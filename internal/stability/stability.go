// Package stability checks that formatting is safe to apply: the output
// must format to itself, keep the tree equivalent, keep every visible
// character and introduce no new parse errors.
package stability

import (
	"context"
	"fmt"

	"github.com/pmezard/go-difflib/difflib"

	"github.com/oxhq/ablfmt/core"
	"github.com/oxhq/ablfmt/engine"
	"github.com/oxhq/ablfmt/syntax"
)

// Report is the outcome of checking one source.
type Report struct {
	Path string

	Idempotent bool
	// Diff between the first and second formatting when not idempotent.
	Diff string

	TreeEqual bool
	Mismatch  string

	SymbolsBefore int
	SymbolsAfter  int

	ErrorsBefore int
	ErrorsAfter  int

	Err error
}

// OK reports whether every check passed.
func (r *Report) OK() bool {
	return r.Err == nil && r.Idempotent && r.TreeEqual &&
		r.SymbolsBefore == r.SymbolsAfter && r.ErrorsAfter <= r.ErrorsBefore
}

// Failures names the checks that did not pass.
func (r *Report) Failures() []string {
	var out []string
	if r.Err != nil {
		return []string{r.Err.Error()}
	}
	if !r.Idempotent {
		out = append(out, "not idempotent")
	}
	if !r.TreeEqual {
		out = append(out, "tree changed: "+r.Mismatch)
	}
	if r.SymbolsBefore != r.SymbolsAfter {
		out = append(out, fmt.Sprintf("symbol count %d -> %d", r.SymbolsBefore, r.SymbolsAfter))
	}
	if r.ErrorsAfter > r.ErrorsBefore {
		out = append(out, fmt.Sprintf("parse errors %d -> %d", r.ErrorsBefore, r.ErrorsAfter))
	}
	return out
}

// Checker runs the stability checks with one engine.
type Checker struct {
	engine *engine.Engine
	parser syntax.Parser
}

func NewChecker(parser syntax.Parser, eng *engine.Engine) *Checker {
	return &Checker{engine: eng, parser: parser}
}

// Check formats source twice and compares the results.
func (c *Checker) Check(ctx context.Context, path, source string) *Report {
	r := &Report{Path: path}
	eol := core.DetectEOL(source)

	first, err := c.engine.FormatTextContext(ctx, source, eol)
	if err != nil {
		r.Err = fmt.Errorf("format: %w", err)
		return r
	}
	second, err := c.engine.FormatTextContext(ctx, first, eol)
	if err != nil {
		r.Err = fmt.Errorf("reformat: %w", err)
		return r
	}
	r.Idempotent = first == second
	if !r.Idempotent {
		r.Diff = Diff(first, second, path+" (formatted)", path+" (reformatted)")
	}

	mismatch, err := c.engine.CompareTextsContext(ctx, source, first)
	if err != nil {
		r.Err = fmt.Errorf("compare: %w", err)
		return r
	}
	r.TreeEqual = mismatch == nil
	if mismatch != nil {
		r.Mismatch = mismatch.String()
	}

	r.SymbolsBefore = Symbols(source)
	r.SymbolsAfter = Symbols(first)

	if r.ErrorsBefore, err = c.errors(ctx, source); err != nil {
		r.Err = err
		return r
	}
	if r.ErrorsAfter, err = c.errors(ctx, first); err != nil {
		r.Err = err
	}
	return r
}

func (c *Checker) errors(ctx context.Context, text string) (int, error) {
	result, err := c.parser.Parse(ctx, text, nil)
	if err != nil {
		return 0, fmt.Errorf("parse: %w", err)
	}
	return Errors(result.Tree.Root()), nil
}

// Symbols counts the characters that are not spaces, tabs or line breaks.
func Symbols(text string) int {
	n := 0
	for _, r := range text {
		if r != ' ' && r != '\t' && r != '\n' && r != '\r' {
			n++
		}
	}
	return n
}

// Errors counts ERROR nodes below root.
func Errors(root *syntax.Node) int {
	n := 0
	syntax.PostOrder(root, func(node *syntax.Node) {
		if node != root && node.IsError() {
			n++
		}
	})
	return n
}

// Diff renders a unified diff of a and b, empty when they are equal.
func Diff(a, b, fromName, toName string) string {
	if a == b {
		return ""
	}
	text, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(a),
		B:        difflib.SplitLines(b),
		FromFile: fromName,
		ToFile:   toName,
		Context:  3,
	})
	if err != nil {
		return ""
	}
	return text
}
