package formatter

import (
	"strings"

	"github.com/oxhq/ablfmt/core"
	"github.com/oxhq/ablfmt/syntax"
)

// DebugPrefix marks formatters that are always enabled.
const DebugPrefix = "DEBUG-"

// DefaultLabel is the label of the formatter every registry starts with.
const DefaultLabel = "defaultFormatting"

// Constructor declares a formatter that Build may instantiate.
type Constructor struct {
	Label string
	New   func(cfg Configuration) Formatter
}

// Build returns the default formatter followed by every declared formatter
// that cfg enables, in declaration order.
func Build(cfg Configuration, ctors []Constructor) []Formatter {
	out := []Formatter{NewDefault(cfg)}
	for _, c := range ctors {
		if strings.HasPrefix(c.Label, DebugPrefix) || Bool(cfg, c.Label) {
			out = append(out, c.New(cfg))
		}
	}
	return out
}

// Default never matches a real node and never edits. It supplies the
// baseline Compare.
type Default struct {
	Base
}

func NewDefault(cfg Configuration) *Default {
	return &Default{Base: Base{Config: cfg}}
}

func (*Default) Label() string { return DefaultLabel }

func (*Default) Match(n *syntax.Node) bool { return n.Type() == "default" }

func (*Default) Parse(*syntax.Node, *core.FullText) []core.Edit { return nil }
