package stability

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oxhq/ablfmt/abl"
	"github.com/oxhq/ablfmt/config"
	"github.com/oxhq/ablfmt/core"
	"github.com/oxhq/ablfmt/engine"
	"github.com/oxhq/ablfmt/formatter"
	"github.com/oxhq/ablfmt/formatters"
	"github.com/oxhq/ablfmt/syntax"
)

// growing appends a digit to every number, so its output never settles.
type growing struct {
	formatter.Base
}

func (*growing) Label() string             { return "DEBUG-grow" }
func (*growing) Match(n *syntax.Node) bool { return n.Type() == abl.NumberLiteral }
func (f *growing) Parse(n *syntax.Node, ft *core.FullText) []core.Edit {
	return f.Replace(n, ft, ft.CurrentText(n)+"0")
}

func newChecker(catalog ...formatter.Constructor) *Checker {
	parser := abl.NewParser()
	opts := []engine.Option{}
	if len(catalog) > 0 {
		opts = append(opts, engine.WithCatalog(append(catalog, formatters.Catalog()...)))
	}
	return NewChecker(parser, engine.New(parser, config.New(nil), opts...))
}

func TestCheck(t *testing.T) {
	tests := []struct {
		name   string
		source string
	}{
		{name: "spacing", source: "x  =  a+b.\ndisplay   x."},
		{name: "blocks", source: "do:\nif a then x = 1. else x = 2.\nend."},
		{name: "using", source: "USING b.\nUSING a.\n"},
		{name: "crlf", source: "do:\r\nx  =  1.\r\nend."},
		{name: "parse errors", source: "x  =  1.\nthen ) (.\ny  =  2."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newChecker().Check(context.Background(), tt.name+".p", tt.source)
			require.NoError(t, r.Err)
			assert.True(t, r.OK(), "failures: %v", r.Failures())
			assert.Empty(t, r.Failures())
			assert.Empty(t, r.Diff)
			assert.Equal(t, Symbols(tt.source), r.SymbolsAfter)
		})
	}
}

func TestCheckDetectsUnstableFormatter(t *testing.T) {
	c := newChecker(formatter.Constructor{
		Label: "DEBUG-grow",
		New:   func(formatter.Configuration) formatter.Formatter { return &growing{} },
	})

	r := c.Check(context.Background(), "main.p", "x = 1.")
	require.NoError(t, r.Err)
	assert.False(t, r.OK())
	assert.False(t, r.Idempotent)
	assert.False(t, r.TreeEqual)
	assert.Equal(t, 4, r.SymbolsBefore)
	assert.Equal(t, 5, r.SymbolsAfter)
	assert.Contains(t, r.Diff, "-x = 10.")
	assert.Contains(t, r.Diff, "+x = 100.")
	assert.Len(t, r.Failures(), 3)
}

func TestSymbols(t *testing.T) {
	assert.Equal(t, 0, Symbols(" \t\r\n"))
	assert.Equal(t, 4, Symbols("x = 1."))
	assert.Equal(t, 4, Symbols("x=\r\n\t1."))
}

func TestErrors(t *testing.T) {
	assert.Zero(t, Errors(abl.Parse("x = 1.").Root()))
	assert.Positive(t, Errors(abl.Parse("x = 1.\nthen ) (.").Root()))
}

func TestDiff(t *testing.T) {
	assert.Empty(t, Diff("a\n", "a\n", "a", "b"))

	d := Diff("x=1.\ny = 2.\n", "x = 1.\ny = 2.\n", "main.p", "main.p (formatted)")
	assert.Contains(t, d, "--- main.p\n")
	assert.Contains(t, d, "+++ main.p (formatted)\n")
	assert.Contains(t, d, "-x=1.\n")
	assert.Contains(t, d, "+x = 1.\n")
}
