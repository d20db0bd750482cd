package core

import "github.com/oxhq/ablfmt/syntax"

// FullText is the document being formatted.
type FullText struct {
	Text string
	EOL  EOL

	// replacement text recorded per node while edits are being collected
	// instead of applied
	formatted map[uint64]string
}

// NewFullText wraps text with its line ending convention.
func NewFullText(text string, eol EOL) *FullText {
	return &FullText{Text: text, EOL: eol}
}

// Delimiter is shorthand for ft.EOL.Delimiter().
func (ft *FullText) Delimiter() string { return ft.EOL.Delimiter() }

// Slice returns the buffer bytes currently covered by n.
func (ft *FullText) Slice(n *syntax.Node) string {
	start, end := int(n.StartIndex()), int(n.EndIndex())
	if end > len(ft.Text) {
		end = len(ft.Text)
	}
	if start > end {
		return ""
	}
	return ft.Text[start:end]
}

// CurrentText returns the rewritten text of n when one was remembered,
// otherwise the buffer slice.
func (ft *FullText) CurrentText(n *syntax.Node) string {
	if text, ok := ft.formatted[n.ID()]; ok {
		return text
	}
	return ft.Slice(n)
}

// Remember records text as the rewritten form of n.
func (ft *FullText) Remember(n *syntax.Node, text string) {
	if ft.formatted == nil {
		ft.formatted = make(map[uint64]string)
	}
	ft.formatted[n.ID()] = text
}

// Forget clears remembered node texts. Called whenever the tree is replaced.
func (ft *FullText) Forget() {
	ft.formatted = nil
}
