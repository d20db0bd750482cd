// Package syntax holds the edit-aware syntax tree the formatting engine works on.
//
// Trees are produced by a Parser (the built-in ABL parser or the tree-sitter
// adapter) and are mutated in place by Tree.Edit, which shifts node offsets
// the same way tree-sitter does so that positions stay valid while the
// underlying text is being rewritten.
package syntax

import (
	"fmt"
	"strings"
	"sync/atomic"
)

// ErrorType is the node type parsers use for unparseable input.
const ErrorType = "ERROR"

var nextID atomic.Uint64

// Point is a 0-based row/column position. Columns count bytes.
type Point struct {
	Row    uint32 `json:"row"`
	Column uint32 `json:"column"`
}

func (p Point) String() string {
	return fmt.Sprintf("%d:%d", p.Row, p.Column)
}

// Less reports whether p comes before o.
func (p Point) Less(o Point) bool {
	return p.Row < o.Row || (p.Row == o.Row && p.Column < o.Column)
}

// Range is a byte span together with its row/column endpoints.
type Range struct {
	StartIndex    uint32 `json:"startIndex"`
	EndIndex      uint32 `json:"endIndex"`
	StartPosition Point  `json:"startPosition"`
	EndPosition   Point  `json:"endPosition"`
}

// Node is a single syntax tree node.
type Node struct {
	id      uint64
	kind    string
	named   bool
	missing bool
	stale   bool

	span Range
	// text offsets at parse time; span moves with edits, these do not
	srcStart, srcEnd uint32

	tree     *Tree
	parent   *Node
	index    int
	children []*Node
}

// NewNode creates a detached node with an explicit span.
func NewNode(kind string, named bool, span Range) *Node {
	return &Node{
		id:       nextID.Add(1),
		kind:     kind,
		named:    named,
		span:     span,
		srcStart: span.StartIndex,
		srcEnd:   span.EndIndex,
	}
}

// Enclose creates a node spanning its children. At least one child is required.
func Enclose(kind string, named bool, children ...*Node) *Node {
	first, last := children[0], children[len(children)-1]
	n := NewNode(kind, named, Range{
		StartIndex:    first.span.StartIndex,
		EndIndex:      last.span.EndIndex,
		StartPosition: first.span.StartPosition,
		EndPosition:   last.span.EndPosition,
	})
	n.children = children
	return n
}

// Append adds children to a node built with NewNode.
func (n *Node) Append(children ...*Node) {
	n.children = append(n.children, children...)
}

// SetMissing marks a node inserted by error recovery.
func (n *Node) SetMissing(missing bool) { n.missing = missing }

// ID is unique for the lifetime of the process.
func (n *Node) ID() uint64 { return n.id }

func (n *Node) Type() string { return n.kind }

func (n *Node) IsNamed() bool { return n.named }

func (n *Node) IsError() bool { return n.kind == ErrorType }

func (n *Node) IsMissing() bool { return n.missing }

// IsStale reports whether the node lay strictly inside a replaced span.
// Offsets of stale nodes are meaningless.
func (n *Node) IsStale() bool { return n.stale }

// HasError reports whether the node or any descendant is an error or missing node.
func (n *Node) HasError() bool {
	stack := []*Node{n}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if cur.IsError() || cur.missing {
			return true
		}
		stack = append(stack, cur.children...)
	}
	return false
}

func (n *Node) StartIndex() uint32 { return n.span.StartIndex }

func (n *Node) EndIndex() uint32 { return n.span.EndIndex }

func (n *Node) StartPosition() Point { return n.span.StartPosition }

func (n *Node) EndPosition() Point { return n.span.EndPosition }

func (n *Node) Range() Range { return n.span }

func (n *Node) Parent() *Node { return n.parent }

func (n *Node) Tree() *Tree { return n.tree }

func (n *Node) ChildCount() int { return len(n.children) }

// Child returns the i-th child or nil when out of range.
func (n *Node) Child(i int) *Node {
	if i < 0 || i >= len(n.children) {
		return nil
	}
	return n.children[i]
}

// Children returns the node's children. The slice must not be modified.
func (n *Node) Children() []*Node { return n.children }

func (n *Node) NamedChildCount() int {
	count := 0
	for _, c := range n.children {
		if c.named {
			count++
		}
	}
	return count
}

// NamedChildren returns only the named children.
func (n *Node) NamedChildren() []*Node {
	var named []*Node
	for _, c := range n.children {
		if c.named {
			named = append(named, c)
		}
	}
	return named
}

// IndexInParent is the node's position among its parent's children.
func (n *Node) IndexInParent() int { return n.index }

func (n *Node) NextSibling() *Node {
	if n.parent == nil {
		return nil
	}
	return n.parent.Child(n.index + 1)
}

func (n *Node) PrevSibling() *Node {
	if n.parent == nil {
		return nil
	}
	return n.parent.Child(n.index - 1)
}

func (n *Node) NextNamedSibling() *Node {
	for s := n.NextSibling(); s != nil; s = s.NextSibling() {
		if s.named {
			return s
		}
	}
	return nil
}

func (n *Node) PrevNamedSibling() *Node {
	for s := n.PrevSibling(); s != nil; s = s.PrevSibling() {
		if s.named {
			return s
		}
	}
	return nil
}

// HasAncestor reports whether any ancestor has the given type.
func (n *Node) HasAncestor(kind string) bool {
	for p := n.parent; p != nil; p = p.parent {
		if p.kind == kind {
			return true
		}
	}
	return false
}

// Text is the node's text as it was when the tree was parsed. It does not
// reflect later edits; formatters read current text from the text buffer.
func (n *Node) Text() string {
	if n.tree == nil {
		return ""
	}
	src := n.tree.source
	if int(n.srcEnd) > len(src) || n.srcStart > n.srcEnd {
		return ""
	}
	return src[n.srcStart:n.srcEnd]
}

// String renders the named structure as an S-expression.
func (n *Node) String() string {
	var b strings.Builder
	n.writeSExpr(&b)
	return b.String()
}

func (n *Node) writeSExpr(b *strings.Builder) {
	if n.missing {
		b.WriteString("(MISSING ")
		b.WriteString(n.kind)
		b.WriteString(")")
		return
	}
	b.WriteString("(")
	b.WriteString(n.kind)
	for _, c := range n.children {
		if !c.named && !c.IsError() {
			continue
		}
		b.WriteString(" ")
		c.writeSExpr(b)
	}
	b.WriteString(")")
}

// RootChildIndex returns the index of the top-level statement that contains
// n, or -1 when n is the root. It is computed from parent links on every call.
func RootChildIndex(n *Node) int {
	if n == nil || n.parent == nil {
		return -1
	}
	cur := n
	for cur.parent.parent != nil {
		cur = cur.parent
	}
	return cur.index
}
