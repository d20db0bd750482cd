// Package core holds the text buffer and edit model shared by formatters
// and the formatting engine.
package core

import (
	"sort"
	"strings"

	"github.com/oxhq/ablfmt/syntax"
)

// Edit replaces the bytes [StartIndex, OldEndIndex) with Text.
// NewEndIndex is always StartIndex + len(Text).
type Edit struct {
	Text           string
	StartIndex     uint32
	OldEndIndex    uint32
	NewEndIndex    uint32
	StartPosition  syntax.Point
	OldEndPosition syntax.Point
	NewEndPosition syntax.Point
}

// NewEdit builds an edit and derives its new end from text, counting eol
// occurrences to find the new end row and column.
func NewEdit(start, oldEnd uint32, startPos, oldEndPos syntax.Point, text, eol string) Edit {
	return Edit{
		Text:           text,
		StartIndex:     start,
		OldEndIndex:    oldEnd,
		NewEndIndex:    start + uint32(len(text)),
		StartPosition:  startPos,
		OldEndPosition: oldEndPos,
		NewEndPosition: endPosition(startPos, text, eol),
	}
}

// EditNode replaces the full span of n.
func EditNode(n *syntax.Node, text, eol string) Edit {
	return NewEdit(n.StartIndex(), n.EndIndex(), n.StartPosition(), n.EndPosition(), text, eol)
}

func endPosition(start syntax.Point, text, eol string) syntax.Point {
	if eol == "" {
		eol = "\n"
	}
	lines := strings.Count(text, eol)
	if lines == 0 {
		return syntax.Point{Row: start.Row, Column: start.Column + uint32(len(text))}
	}
	last := strings.LastIndex(text, eol) + len(eol)
	return syntax.Point{Row: start.Row + uint32(lines), Column: uint32(len(text) - last)}
}

// Input converts the edit into the tree's edit descriptor.
func (e Edit) Input() syntax.InputEdit {
	return syntax.InputEdit{
		StartIndex:     e.StartIndex,
		OldEndIndex:    e.OldEndIndex,
		NewEndIndex:    e.NewEndIndex,
		StartPosition:  e.StartPosition,
		OldEndPosition: e.OldEndPosition,
		NewEndPosition: e.NewEndPosition,
	}
}

// contains reports whether o lies within e.
func (e Edit) contains(o Edit) bool {
	return e.StartIndex <= o.StartIndex && o.OldEndIndex <= e.OldEndIndex
}

func (e Edit) sameSpan(o Edit) bool {
	return e.StartIndex == o.StartIndex && e.OldEndIndex == o.OldEndIndex
}

// SortDescending orders edits by descending start offset so that applying
// them in order never invalidates the offsets of edits still to come.
func SortDescending(edits []Edit) {
	sort.SliceStable(edits, func(i, j int) bool {
		return edits[i].StartIndex > edits[j].StartIndex
	})
}

// Dedupe drops every edit strictly contained in another one. Of several
// edits with the same span only the last survives.
func Dedupe(edits []Edit) []Edit {
	var out []Edit
	for i, e := range edits {
		keep := true
		for j, o := range edits {
			if i == j {
				continue
			}
			if e.sameSpan(o) {
				if j > i {
					keep = false
					break
				}
				continue
			}
			if o.contains(e) {
				keep = false
				break
			}
		}
		if keep {
			out = append(out, e)
		}
	}
	return out
}

// ApplyToTree repositions the tree's nodes for e.
func ApplyToTree(tree *syntax.Tree, e Edit) {
	tree.Edit(e.Input())
}

// ApplyToText splices e into the buffer.
func ApplyToText(ft *FullText, e Edit) {
	ft.Text = ft.Text[:e.StartIndex] + e.Text + ft.Text[e.OldEndIndex:]
}

// Apply mirrors one edit into both tree and buffer.
func Apply(tree *syntax.Tree, ft *FullText, e Edit) {
	ApplyToTree(tree, e)
	ApplyToText(ft, e)
}

// ApplyAll applies edits in descending start order and returns how many
// were applied.
func ApplyAll(tree *syntax.Tree, ft *FullText, edits []Edit) int {
	sorted := append([]Edit(nil), edits...)
	SortDescending(sorted)
	for _, e := range sorted {
		Apply(tree, ft, e)
	}
	return len(sorted)
}
