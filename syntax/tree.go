package syntax

import "context"

// Parser turns source text into a Tree. When previous is non-nil it is the
// edited tree of the last parse and may be used as an incremental seed.
type Parser interface {
	Parse(ctx context.Context, text string, previous *Tree) (*ParseResult, error)
}

// Releaser is implemented by parsers that hold resources per tree. Callers
// release a tree once no further parse will use it as a seed.
type Releaser interface {
	Release(t *Tree)
}

// ParseResult is the outcome of a parse.
type ParseResult struct {
	Tree *Tree
	// ChangedRanges lists regions that differ from the previous tree.
	// Empty on a first parse.
	ChangedRanges []Range
}

// InputEdit describes a text replacement in terms the tree understands.
type InputEdit struct {
	StartIndex     uint32
	OldEndIndex    uint32
	NewEndIndex    uint32
	StartPosition  Point
	OldEndPosition Point
	NewEndPosition Point
}

// Tree owns a root node and the source it was parsed from.
type Tree struct {
	root   *Node
	source string
	edits  []InputEdit
}

// NewTree links root's subtree (parents, sibling indexes) and binds it to source.
func NewTree(root *Node, source string) *Tree {
	t := &Tree{root: root, source: source}
	root.parent = nil
	root.index = 0
	stack := []*Node{root}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		n.tree = t
		for i, c := range n.children {
			c.parent = n
			c.index = i
			stack = append(stack, c)
		}
	}
	return t
}

func (t *Tree) Root() *Node { return t.root }

// Source is the text the tree was parsed from.
func (t *Tree) Source() string { return t.source }

// Edits returns the edits applied since the tree was parsed, oldest first.
func (t *Tree) Edits() []InputEdit { return t.edits }

// Walk returns a cursor positioned on the root.
func (t *Tree) Walk() *Cursor { return NewCursor(t.root) }

// Edit repositions every node affected by a text replacement. Nodes that
// lay strictly inside the replaced span collapse to its new end and are
// marked stale.
func (t *Tree) Edit(e InputEdit) {
	t.edits = append(t.edits, e)
	stack := []*Node{t.root}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if n.span.EndIndex < e.StartIndex {
			continue
		}
		start, end := n.span.StartIndex, n.span.EndIndex
		if start >= e.StartIndex && end <= e.OldEndIndex && (start != e.StartIndex || end != e.OldEndIndex) {
			n.stale = true
		}
		n.span.StartIndex, n.span.StartPosition = shift(start, n.span.StartPosition, e)
		n.span.EndIndex, n.span.EndPosition = shift(end, n.span.EndPosition, e)
		stack = append(stack, n.children...)
	}
}

func shift(index uint32, pos Point, e InputEdit) (uint32, Point) {
	switch {
	case index >= e.OldEndIndex:
		index = index - e.OldEndIndex + e.NewEndIndex
		if pos.Row == e.OldEndPosition.Row {
			pos = Point{Row: e.NewEndPosition.Row, Column: e.NewEndPosition.Column + pos.Column - e.OldEndPosition.Column}
		} else {
			pos.Row = pos.Row - e.OldEndPosition.Row + e.NewEndPosition.Row
		}
	case index > e.StartIndex:
		index = e.NewEndIndex
		pos = e.NewEndPosition
	}
	return index, pos
}

// ErrorRanges lists the spans of error and missing nodes.
func (t *Tree) ErrorRanges() []Range {
	var ranges []Range
	stack := []*Node{t.root}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if n.IsError() || n.missing {
			ranges = append(ranges, n.span)
			continue
		}
		for i := len(n.children) - 1; i >= 0; i-- {
			stack = append(stack, n.children[i])
		}
	}
	return ranges
}

// ChangedRanges compares the top-level statements of an edited previous tree
// with a freshly parsed one and returns the spans of the new tree that differ.
func ChangedRanges(previous, current *Tree) []Range {
	if previous == nil || current == nil {
		return nil
	}
	old, cur := previous.root.children, current.root.children
	var ranges []Range
	for i, n := range cur {
		if i < len(old) && sameShape(old[i], n) {
			continue
		}
		ranges = append(ranges, n.span)
	}
	return ranges
}

func sameShape(a, b *Node) bool {
	if a.kind != b.kind || a.span.StartIndex != b.span.StartIndex || a.span.EndIndex != b.span.EndIndex {
		return false
	}
	if len(a.children) != len(b.children) {
		return false
	}
	for i := range a.children {
		if a.children[i].kind != b.children[i].kind {
			return false
		}
	}
	return true
}
