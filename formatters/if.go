package formatters

import (
	"github.com/oxhq/ablfmt/abl"
	"github.com/oxhq/ablfmt/config"
	"github.com/oxhq/ablfmt/core"
	"github.com/oxhq/ablfmt/formatter"
	"github.com/oxhq/ablfmt/syntax"
)

// If places THEN, the branches and the ELSE parts of IF statements. Every
// ELSE and ELSE IF starts a line aligned with its IF.
type If struct {
	formatter.Base
}

func NewIf(cfg formatter.Configuration) formatter.Formatter {
	return &If{Base: formatter.Base{Config: cfg}}
}

func (*If) Label() string { return config.IfFormatting }

func (*If) Match(n *syntax.Node) bool { return n.Type() == abl.IfStatement }

func (f *If) Parse(n *syntax.Node, ft *core.FullText) []core.Edit {
	col := int(n.StartPosition().Column)
	plan := f.plan(n, col)
	for i, c := range n.Children() {
		if c.Type() == abl.ElseIfStatement || c.Type() == abl.ElseStatement {
			plan.Break(i, col)
			// else parts are laid out for the column they end up on
			plan.Render(i, f.LayoutAt(c, ft, col, f.plan(c, col)))
		}
	}
	return f.Replace(n, ft, f.Layout(n, ft, plan))
}

func (f *If) plan(n *syntax.Node, col int) *formatter.Plan {
	plan := &formatter.Plan{}
	for i, c := range n.Children() {
		switch {
		case c.Type() == "THEN":
			if formatter.Is(f.Config, config.IfThenLocation, "New") {
				plan.Break(i, col)
			}
		case isBranch(n, i):
			if c.Type() == abl.DoBlock {
				if formatter.Is(f.Config, config.IfDoLocation, "New") {
					plan.Break(i, col)
				}
			} else if formatter.Is(f.Config, config.IfStatementLocation, "New") {
				plan.Break(i, col+f.Tab())
			}
		}
	}
	return plan
}

// isBranch reports whether child i of n is the statement run by a THEN or
// ELSE keyword.
func isBranch(n *syntax.Node, i int) bool {
	c := n.Child(i)
	if !c.IsNamed() || formatter.IsComment(c) {
		return false
	}
	for j := i - 1; j >= 0; j-- {
		prev := n.Child(j)
		if formatter.IsComment(prev) {
			continue
		}
		return prev.Type() == "THEN" || (prev.Type() == "ELSE" && n.Type() == abl.ElseStatement)
	}
	return false
}
