package formatters

import (
	"github.com/oxhq/ablfmt/abl"
	"github.com/oxhq/ablfmt/config"
	"github.com/oxhq/ablfmt/core"
	"github.com/oxhq/ablfmt/formatter"
	"github.com/oxhq/ablfmt/syntax"
)

// VariableAssignment normalizes `name = value` statements.
type VariableAssignment struct {
	formatter.Base
}

func NewVariableAssignment(cfg formatter.Configuration) formatter.Formatter {
	return &VariableAssignment{Base: formatter.Base{Config: cfg}}
}

func (*VariableAssignment) Label() string { return config.VariableAssignmentFormatting }

func (*VariableAssignment) Match(n *syntax.Node) bool {
	return n.Type() == abl.Assignment && n.Parent() != nil && n.Parent().Type() == abl.VariableAssignment
}

func (f *VariableAssignment) Parse(n *syntax.Node, ft *core.FullText) []core.Edit {
	return f.Replace(n, ft, f.Layout(n, ft, nil))
}
