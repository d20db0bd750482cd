package formatters

import (
	"strings"

	"github.com/oxhq/ablfmt/abl"
	"github.com/oxhq/ablfmt/config"
	"github.com/oxhq/ablfmt/core"
	"github.com/oxhq/ablfmt/formatter"
	"github.com/oxhq/ablfmt/syntax"
)

// Assign lays out ASSIGN statements one assignment per line, optionally
// aligning the right-hand sides.
type Assign struct {
	formatter.Base
}

func NewAssign(cfg formatter.Configuration) formatter.Formatter {
	return &Assign{Base: formatter.Base{Config: cfg}}
}

func (*Assign) Label() string { return config.AssignFormatting }

func (*Assign) Match(n *syntax.Node) bool { return n.Type() == abl.AssignStatement }

func (f *Assign) Parse(n *syntax.Node, ft *core.FullText) []core.Edit {
	col := int(n.StartPosition().Column)
	newLine := formatter.Is(f.Config, config.AssignLocation, "New")
	indent := col + len("ASSIGN ")
	if newLine {
		indent = col + f.Tab()
	}

	width := 0
	if formatter.Bool(f.Config, config.AssignAlignRightExpression) {
		for _, c := range n.Children() {
			if c.Type() == abl.Assignment && c.ChildCount() > 0 {
				width = max(width, len(f.Child(c.Child(0), ft)))
			}
		}
	}

	plan := &formatter.Plan{}
	first := true
	last := n.ChildCount() - 1
	for i, c := range n.Children() {
		afterLineComment := i > 0 && formatter.IsLineComment(n.Child(i-1), ft)
		switch {
		case c.Type() == abl.Assignment:
			plan.Render(i, f.assignment(c, ft, indent, width))
			if newLine || !first || afterLineComment {
				plan.Break(i, indent)
			}
			first = false
		case c.Type() == "." && i == last:
			switch strings.ToLower(formatter.String(f.Config, config.AssignEndDotLocation)) {
			case "new":
				plan.Break(i, col)
			case "new aligned":
				plan.Break(i, indent)
			}
		case formatter.IsComment(c) && formatter.StartsLine(c, ft), afterLineComment:
			plan.Break(i, indent)
		}
	}
	return f.Replace(n, ft, f.Layout(n, ft, plan))
}

// assignment renders `lhs = rhs` starting at indent, padding lhs to width.
func (f *Assign) assignment(a *syntax.Node, ft *core.FullText, indent, width int) string {
	if a.ChildCount() != 3 || hasComment(a) {
		return f.LayoutAt(a, ft, indent, nil)
	}
	lhs := f.Child(a.Child(0), ft)
	prefix := lhs + formatter.Spaces(width-len(lhs)) + " " + f.Child(a.Child(1), ft) + " "
	rhs := a.Child(2)
	text := formatter.Shift(rhs, f.Child(rhs, ft), indent+len(prefix)-int(rhs.StartPosition().Column), ft.Delimiter())
	return prefix + text
}

func hasComment(n *syntax.Node) bool {
	for _, c := range n.Children() {
		if formatter.IsComment(c) {
			return true
		}
	}
	return false
}
