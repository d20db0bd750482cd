package formatters

import (
	"github.com/oxhq/ablfmt/abl"
	"github.com/oxhq/ablfmt/config"
	"github.com/oxhq/ablfmt/core"
	"github.com/oxhq/ablfmt/formatter"
	"github.com/oxhq/ablfmt/syntax"
)

// Statement single-spaces generic one-line statements and applies keyword
// casing. Statements spanning several lines are left as written.
type Statement struct {
	formatter.Base
}

func NewStatement(cfg formatter.Configuration) formatter.Formatter {
	return &Statement{Base: formatter.Base{Config: cfg}}
}

func (*Statement) Label() string { return config.StatementFormatting }

func (*Statement) Match(n *syntax.Node) bool {
	return n.Type() == abl.AblStatement || n.Type() == abl.ReturnStatement
}

func (f *Statement) Parse(n *syntax.Node, ft *core.FullText) []core.Edit {
	if n.StartPosition().Row != n.EndPosition().Row {
		return nil
	}
	return f.Replace(n, ft, f.Layout(n, ft, nil))
}
