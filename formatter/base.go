package formatter

import (
	"strings"

	"github.com/oxhq/ablfmt/abl"
	"github.com/oxhq/ablfmt/core"
	"github.com/oxhq/ablfmt/syntax"
)

// Base carries the configuration and the behaviour shared by all formatters.
type Base struct {
	Config Configuration
}

// Compare is the structural equality used unless a formatter knows better:
// same type, same child counts, and for leaves the same text once
// whitespace is collapsed. Keyword leaves compare case-insensitively since
// casing is a formatting choice. Nodes inside an unordered group compare
// equal; the group owner decides.
func (Base) Compare(a, b *syntax.Node) bool {
	if inUnorderedGroup(a) || inUnorderedGroup(b) {
		return true
	}
	if a.Type() != b.Type() {
		return false
	}
	if a.ChildCount() != b.ChildCount() || a.NamedChildCount() != b.NamedChildCount() {
		return false
	}
	if a.ChildCount() > 0 {
		return true
	}
	ta, tb := Normalize(a.Text()), Normalize(b.Text())
	if !a.IsNamed() {
		return strings.EqualFold(ta, tb)
	}
	return ta == tb
}

func inUnorderedGroup(n *syntax.Node) bool {
	return n.HasAncestor(abl.UsingStatement)
}

// Replace returns the edit that rewrites n to text, or nil when text is
// what the buffer already holds.
func (Base) Replace(n *syntax.Node, ft *core.FullText, text string) []core.Edit {
	if ft.Slice(n) == text {
		return nil
	}
	return []core.Edit{core.EditNode(n, text, ft.Delimiter())}
}

// Keyword returns the current text of a keyword leaf with casing applied.
func (b Base) Keyword(n *syntax.Node, ft *core.FullText) string {
	text := ft.CurrentText(n)
	if b.Config == nil || !IsKeyword(n) {
		return text
	}
	return b.Config.Casing().Apply(text)
}

// Child returns the current text of a child: verbatim for ERROR nodes,
// cased for keywords, trimmed otherwise.
func (b Base) Child(n *syntax.Node, ft *core.FullText) string {
	switch {
	case n.IsError():
		return ft.CurrentText(n)
	case IsKeyword(n):
		return b.Keyword(n, ft)
	default:
		return strings.TrimSpace(ft.CurrentText(n))
	}
}

// Tab returns the configured indentation width.
func (b Base) Tab() int {
	if b.Config == nil || b.Config.TabSize() <= 0 {
		return 4
	}
	return b.Config.TabSize()
}
