package formatter

import (
	"strings"

	"github.com/oxhq/ablfmt/abl"
	"github.com/oxhq/ablfmt/core"
	"github.com/oxhq/ablfmt/syntax"
)

// Exclusion sentinels after normalization.
const (
	ExcludeStart = "ABLFORMATTEREXCLUDESTART"
	ExcludeEnd   = "ABLFORMATTEREXCLUDEEND"
)

// BlockContainers are formatted only by the block indentation pass.
var BlockContainers = map[string]bool{
	abl.Body:     true,
	"case_body":  true,
	"class_body": true,
}

// IsBlockContainer reports whether kind is a block body type.
func IsBlockContainer(kind string) bool { return BlockContainers[kind] }

// Normalize collapses whitespace runs into single spaces.
func Normalize(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Spaces returns n spaces; negative n yields "".
func Spaces(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.Repeat(" ", n)
}

// IsKeyword reports whether n is an anonymous word leaf such as IF or THEN.
func IsKeyword(n *syntax.Node) bool {
	if n.IsNamed() || n.ChildCount() > 0 || n.IsMissing() {
		return false
	}
	kind := n.Type()
	if kind == "" {
		return false
	}
	c := kind[0]
	return (c >= 'A' && c <= 'Z') || c == '_'
}

// IsComment reports whether n is a comment node.
func IsComment(n *syntax.Node) bool { return n.Type() == abl.Comment }

// LineStart returns the offset of the first byte of the line containing offset.
func LineStart(text string, offset int) int {
	if offset > len(text) {
		offset = len(text)
	}
	return strings.LastIndexAny(text[:offset], "\r\n") + 1
}

// LineIndentation returns the width of the leading whitespace of the line
// containing offset, counting a tab as tab columns.
func LineIndentation(text string, offset, tab int) int {
	width := 0
	for i := LineStart(text, offset); i < len(text); i++ {
		switch text[i] {
		case ' ':
			width++
		case '\t':
			width += tab
		default:
			return width
		}
	}
	return width
}

// StartsLine reports whether only whitespace precedes n on its line.
func StartsLine(n *syntax.Node, ft *core.FullText) bool {
	start := int(n.StartIndex())
	if start > len(ft.Text) {
		return false
	}
	return strings.TrimSpace(ft.Text[LineStart(ft.Text, start):start]) == ""
}

// ShiftLines moves every line after the first by delta columns. Negative
// deltas only remove whitespace.
func ShiftLines(text string, delta int, eol string) string {
	return shiftLines(text, delta, eol, nil)
}

func shiftLines(text string, delta int, eol string, protected map[int]bool) string {
	if delta == 0 || !strings.Contains(text, eol) {
		return text
	}
	lines := strings.Split(text, eol)
	for i := 1; i < len(lines); i++ {
		line := lines[i]
		if protected[i] || strings.TrimSpace(line) == "" {
			continue
		}
		if delta > 0 {
			lines[i] = Spaces(delta) + line
			continue
		}
		trim := 0
		for trim < -delta && trim < len(line) && (line[trim] == ' ' || line[trim] == '\t') {
			trim++
		}
		lines[i] = line[trim:]
	}
	return strings.Join(lines, eol)
}

// ProtectedRows returns the rows inside n whose leading whitespace belongs
// to a multi-line string or an ERROR node and must not change. Stale nodes
// are skipped; their spans no longer describe their text.
func ProtectedRows(n *syntax.Node) map[uint32]bool {
	var rows map[uint32]bool
	stack := []*syntax.Node{n}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if cur.IsStale() {
			continue
		}
		start, end := cur.StartPosition().Row, cur.EndPosition().Row
		if start < end && (cur.IsError() || cur.Type() == abl.StringLiteral) {
			if rows == nil {
				rows = make(map[uint32]bool)
			}
			for r := start + 1; r <= end; r++ {
				rows[r] = true
			}
			continue
		}
		stack = append(stack, cur.Children()...)
	}
	return rows
}

// Shift moves the continuation lines of a child's text by delta, leaving
// the inside of multi-line strings and ERROR nodes alone. Strings are found
// in text itself since the spans below an edited node are stale.
func Shift(n *syntax.Node, text string, delta int, eol string) string {
	if n.IsError() || delta == 0 {
		return text
	}
	protected := abl.StringRows(text)
	first := n.StartPosition().Row
	for row := range ProtectedRows(n) {
		if protected == nil {
			protected = make(map[int]bool)
		}
		protected[int(row-first)] = true
	}
	return shiftLines(text, delta, eol, protected)
}

// Plan adjusts how Layout places children.
type Plan struct {
	// Breaks maps a child index to the column it starts on after a line break.
	Breaks map[int]int
	// Texts holds pre-rendered child texts, already shaped for the column
	// they land on.
	Texts map[int]string
}

// Break starts child i on a new line at col.
func (p *Plan) Break(i, col int) {
	if p.Breaks == nil {
		p.Breaks = make(map[int]int)
	}
	p.Breaks[i] = col
}

// Render places text for child i instead of its current text.
func (p *Plan) Render(i int, text string) {
	if p.Texts == nil {
		p.Texts = make(map[int]string)
	}
	p.Texts[i] = text
}

func (p *Plan) lookup(i int) (col int, broken bool, text string, rendered bool) {
	if p == nil {
		return 0, false, "", false
	}
	col, broken = p.Breaks[i]
	text, rendered = p.Texts[i]
	return col, broken, text, rendered
}

// Layout joins the children of n single-spaced, starting at the column of
// n. Multi-line children keep their shape relative to their first line; a
// line comment always ends its line. plan may be nil.
func (b Base) Layout(n *syntax.Node, ft *core.FullText, plan *Plan) string {
	return b.LayoutAt(n, ft, int(n.StartPosition().Column), plan)
}

// LayoutAt is Layout for a node that will start at column col.
func (b Base) LayoutAt(n *syntax.Node, ft *core.FullText, col int, plan *Plan) string {
	eol := ft.Delimiter()
	var out strings.Builder
	var prev *syntax.Node
	for i, c := range n.Children() {
		indent, broken, text, rendered := plan.lookup(i)
		if !rendered {
			text = b.Child(c, ft)
		}
		if text == "" {
			continue
		}
		if prev != nil {
			switch {
			case broken:
				out.WriteString(eol + Spaces(indent))
				col = indent
			case IsLineComment(prev, ft):
				indent = LineIndentation(ft.Text, int(n.StartIndex()), b.Tab()) + b.Tab()
				out.WriteString(eol + Spaces(indent))
				col = indent
			case !glue(n, prev, c):
				out.WriteString(" ")
				col++
			}
		}
		if !rendered {
			text = Shift(c, text, col-int(c.StartPosition().Column), eol)
		}
		out.WriteString(text)
		col = Advance(col, text, eol)
		prev = c
	}
	return out.String()
}

// Advance returns the column after writing text at col.
func Advance(col int, text, eol string) int {
	if i := strings.LastIndex(text, eol); i >= 0 {
		return len(text) - i - len(eol)
	}
	return col + len(text)
}

// IsLineComment reports whether n is a // comment.
func IsLineComment(n *syntax.Node, ft *core.FullText) bool {
	return IsComment(n) && strings.HasPrefix(ft.CurrentText(n), "//")
}

func glue(parent, prev, next *syntax.Node) bool {
	switch next.Type() {
	case ")", "]", ",", ".", ":", abl.Arguments:
		return true
	case "[":
		return parent.Type() == abl.ArrayAccess
	}
	switch prev.Type() {
	case "(", "[":
		return true
	case "-", "+":
		return parent.Type() == abl.UnaryExpression
	}
	return false
}

// ExclusionMarker classifies an annotation as an exclusion start or end.
func ExclusionMarker(n *syntax.Node, ft *core.FullText) (start, end bool) {
	if n.Type() != abl.Annotation {
		return false, false
	}
	key := strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\t', '\r', '\n', '.', '@', '"':
			return -1
		}
		return r
	}, ft.CurrentText(n))
	key = strings.ToUpper(key)
	return key == ExcludeStart, key == ExcludeEnd
}

// RowRange is an inclusive range of rows.
type RowRange struct {
	Start, End uint32
}

// Contains reports whether row lies in the range.
func (r RowRange) Contains(row uint32) bool {
	return row >= r.Start && row <= r.End
}

// ExcludedRows returns the row ranges enclosed by exclusion annotations.
// A start without an end runs to the last row; an end without a start
// excludes its own row.
func ExcludedRows(root *syntax.Node, ft *core.FullText) []RowRange {
	return ExclusionRegions(ExclusionMarkers(root, ft), ft, root.EndPosition().Row)
}

// ExclusionMarkers lists the exclusion annotations below root in document
// order.
func ExclusionMarkers(root *syntax.Node, ft *core.FullText) []*syntax.Node {
	var out []*syntax.Node
	syntax.PostOrder(root, func(n *syntax.Node) {
		if start, end := ExclusionMarker(n, ft); start || end {
			out = append(out, n)
		}
	})
	return out
}

// ExclusionRegions folds markers into row ranges using their current
// positions. An open region ends at last.
func ExclusionRegions(markers []*syntax.Node, ft *core.FullText, last uint32) []RowRange {
	var ranges []RowRange
	open := false
	var from uint32
	for _, n := range markers {
		start, _ := ExclusionMarker(n, ft)
		switch {
		case start && !open:
			open, from = true, n.StartPosition().Row
		case start:
		case open:
			open = false
			ranges = append(ranges, RowRange{Start: from, End: n.EndPosition().Row})
		default:
			ranges = append(ranges, RowRange{Start: n.StartPosition().Row, End: n.EndPosition().Row})
		}
	}
	if open {
		ranges = append(ranges, RowRange{Start: from, End: last})
	}
	return ranges
}

// Excluded reports whether row falls in any of the ranges.
func Excluded(ranges []RowRange, row uint32) bool {
	for _, r := range ranges {
		if r.Contains(row) {
			return true
		}
	}
	return false
}
