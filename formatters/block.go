package formatters

import (
	"github.com/oxhq/ablfmt/config"
	"github.com/oxhq/ablfmt/core"
	"github.com/oxhq/ablfmt/formatter"
	"github.com/oxhq/ablfmt/syntax"
)

// Block indents the statements of a block body one tab past the line that
// opens the block and lines END up with that line. It only ever touches
// leading whitespace, one edit per line.
type Block struct {
	formatter.Base
}

func NewBlock(cfg formatter.Configuration) formatter.Formatter {
	return &Block{Base: formatter.Base{Config: cfg}}
}

func (*Block) Label() string { return config.BlockFormatting }

func (*Block) Match(n *syntax.Node) bool { return formatter.IsBlockContainer(n.Type()) }

func (f *Block) Parse(n *syntax.Node, ft *core.FullText) []core.Edit {
	parent := n.Parent()
	if parent == nil {
		return nil
	}
	tab := f.Tab()
	outer := formatter.LineIndentation(ft.Text, int(parent.StartIndex()), tab)
	r := &reindenter{
		ft:        ft,
		tab:       tab,
		lines:     lineStarts(ft.Text),
		protected: formatter.ProtectedRows(n),
		excluded:  formatter.ExcludedRows(n.Tree().Root(), ft),
		seen:      make(map[uint32]bool),
	}

	delta := 0
	for _, c := range n.Children() {
		first, last := c.StartPosition().Row, c.EndPosition().Row
		if formatter.StartsLine(c, ft) {
			delta = outer + tab - r.indentation(first)
			r.set(first, outer+tab)
		}
		for row := first + 1; row <= last; row++ {
			r.set(row, r.indentation(row)+delta)
		}
	}
	for _, c := range parent.Children() {
		if c.Type() == "END" && !c.IsMissing() && c.StartIndex() >= n.EndIndex() && formatter.StartsLine(c, ft) {
			r.set(c.StartPosition().Row, outer)
		}
	}
	return r.edits
}

type reindenter struct {
	ft        *core.FullText
	tab       int
	lines     []int
	protected map[uint32]bool
	excluded  []formatter.RowRange
	seen      map[uint32]bool
	edits     []core.Edit
}

func (r *reindenter) indentation(row uint32) int {
	if int(row) >= len(r.lines) {
		return 0
	}
	return formatter.LineIndentation(r.ft.Text, r.lines[row], r.tab)
}

// set rewrites the leading whitespace of row to width spaces. Blank lines,
// rows already handled and rows whose whitespace is content are skipped.
func (r *reindenter) set(row uint32, width int) {
	if r.seen[row] || int(row) >= len(r.lines) {
		return
	}
	r.seen[row] = true
	if r.protected[row] || formatter.Excluded(r.excluded, row) {
		return
	}
	text := r.ft.Text
	start := r.lines[row]
	end := start
	for end < len(text) && (text[end] == ' ' || text[end] == '\t') {
		end++
	}
	if end == len(text) || text[end] == '\n' || text[end] == '\r' {
		return
	}
	want := formatter.Spaces(width)
	if text[start:end] == want {
		return
	}
	r.edits = append(r.edits, core.NewEdit(
		uint32(start), uint32(end),
		syntax.Point{Row: row},
		syntax.Point{Row: row, Column: uint32(end - start)},
		want, r.ft.Delimiter(),
	))
}

// lineStarts returns the offset of every line, treating LF, CRLF and a lone
// CR as line breaks.
func lineStarts(text string) []int {
	starts := []int{0}
	for i := 0; i < len(text); i++ {
		switch text[i] {
		case '\n':
			starts = append(starts, i+1)
		case '\r':
			if i+1 < len(text) && text[i+1] == '\n' {
				i++
			}
			starts = append(starts, i+1)
		}
	}
	return starts
}
