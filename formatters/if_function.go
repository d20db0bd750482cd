package formatters

import (
	"github.com/oxhq/ablfmt/abl"
	"github.com/oxhq/ablfmt/config"
	"github.com/oxhq/ablfmt/core"
	"github.com/oxhq/ablfmt/formatter"
	"github.com/oxhq/ablfmt/syntax"
)

// IfFunction lays out `IF cond THEN a ELSE b` expressions.
type IfFunction struct {
	formatter.Base
}

func NewIfFunction(cfg formatter.Configuration) formatter.Formatter {
	return &IfFunction{Base: formatter.Base{Config: cfg}}
}

func (*IfFunction) Label() string { return config.IfFunctionFormatting }

func (*IfFunction) Match(n *syntax.Node) bool { return n.Type() == abl.TernaryExpression }

func (f *IfFunction) Parse(n *syntax.Node, ft *core.FullText) []core.Edit {
	plan := &formatter.Plan{}
	if formatter.Is(f.Config, config.IfFunctionElseLocation, "New") {
		for i, c := range n.Children() {
			if c.Type() == "ELSE" {
				plan.Break(i, int(n.StartPosition().Column))
			}
		}
	}
	return f.Replace(n, ft, f.Layout(n, ft, plan))
}
