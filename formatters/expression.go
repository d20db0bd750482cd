package formatters

import (
	"github.com/oxhq/ablfmt/abl"
	"github.com/oxhq/ablfmt/config"
	"github.com/oxhq/ablfmt/core"
	"github.com/oxhq/ablfmt/formatter"
	"github.com/oxhq/ablfmt/syntax"
)

var expressionTypes = map[string]bool{
	abl.LogicalExpression:        true,
	abl.ComparisonExpression:     true,
	abl.AdditiveExpression:       true,
	abl.MultiplicativeExpression: true,
	abl.UnaryExpression:          true,
	abl.ParenthesizedExpression:  true,
	abl.Arguments:                true,
}

// Expression normalizes operator and parenthesis spacing. With
// expressionFormattingLogicalLocation=New the right operand of AND/OR
// starts a new line aligned with the expression.
type Expression struct {
	formatter.Base
}

func NewExpression(cfg formatter.Configuration) formatter.Formatter {
	return &Expression{Base: formatter.Base{Config: cfg}}
}

func (*Expression) Label() string { return config.ExpressionFormatting }

func (*Expression) Match(n *syntax.Node) bool { return expressionTypes[n.Type()] }

func (f *Expression) Parse(n *syntax.Node, ft *core.FullText) []core.Edit {
	plan := &formatter.Plan{}
	if n.Type() == abl.LogicalExpression && formatter.Is(f.Config, config.ExpressionLogicalLocation, "New") {
		for i, c := range n.Children() {
			if c.IsNamed() && i > 0 && isLogicalOperator(n.Child(i-1)) {
				plan.Break(i, int(n.StartPosition().Column))
			}
		}
	}
	return f.Replace(n, ft, f.Layout(n, ft, plan))
}

func isLogicalOperator(n *syntax.Node) bool {
	return n != nil && (n.Type() == "AND" || n.Type() == "OR")
}
