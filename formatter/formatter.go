// Package formatter defines the contract every formatting rule implements
// and the registry that assembles the active rule set.
package formatter

import (
	"github.com/oxhq/ablfmt/core"
	"github.com/oxhq/ablfmt/syntax"
)

// Formatter rewrites one kind of node.
//
// Parse builds the node's new text from the current text of its children
// and returns the edits that install it: nil when nothing changes, one edit
// for a contiguous replacement, several for disjoint spans. Formatters are
// stateless; anything needed during a call lives in locals of Parse.
type Formatter interface {
	// Label is the configuration key that enables the formatter.
	Label() string
	Match(n *syntax.Node) bool
	Parse(n *syntax.Node, ft *core.FullText) []core.Edit
	// Compare reports whether two nodes are equivalent under this
	// formatter's rewrite rules.
	Compare(a, b *syntax.Node) bool
}

// Configuration is the read-only view of settings formatters consume.
type Configuration interface {
	Get(name string) any
	TabSize() int
	Casing() Casing
}

// First returns the first formatter that matches n, or nil.
func First(formatters []Formatter, n *syntax.Node) Formatter {
	for _, f := range formatters {
		if f.Match(n) {
			return f
		}
	}
	return nil
}
