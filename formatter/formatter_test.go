package formatter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oxhq/ablfmt/abl"
	"github.com/oxhq/ablfmt/core"
	"github.com/oxhq/ablfmt/syntax"
)

type mapConfig map[string]any

func (m mapConfig) Get(name string) any { return m[name] }
func (m mapConfig) TabSize() int       { return 4 }
func (m mapConfig) Casing() Casing {
	c, _ := ParseCasing(String(m, "casing"))
	return c
}

type stubFormatter struct {
	Base
	label string
	kind  string
}

func (s *stubFormatter) Label() string                                  { return s.label }
func (s *stubFormatter) Match(n *syntax.Node) bool                      { return n.Type() == s.kind }
func (s *stubFormatter) Parse(*syntax.Node, *core.FullText) []core.Edit { return nil }

func stub(label, kind string) Constructor {
	return Constructor{Label: label, New: func(cfg Configuration) Formatter {
		return &stubFormatter{Base: Base{Config: cfg}, label: label, kind: kind}
	}}
}

func TestBuild(t *testing.T) {
	ctors := []Constructor{
		stub("assignFormatting", abl.AssignStatement),
		stub("ifFormatting", abl.IfStatement),
		stub("DEBUG-trace", abl.Comment),
		stub("usingFormatting", abl.UsingStatement),
	}
	cfg := mapConfig{"ifFormatting": true, "usingFormatting": "true", "assignFormatting": false}

	got := Build(cfg, ctors)
	var labels []string
	for _, f := range got {
		labels = append(labels, f.Label())
	}
	assert.Equal(t, []string{DefaultLabel, "ifFormatting", "DEBUG-trace", "usingFormatting"}, labels)

	tree := abl.Parse("IF a THEN b = 1.")
	assert.Equal(t, "ifFormatting", First(got, tree.Root().Child(0)).Label())
	assert.Nil(t, First(got, tree.Root()))

	only := Build(mapConfig{}, ctors)
	require.Len(t, only, 2)
	assert.Equal(t, DefaultLabel, only[0].Label())
}

func TestBaseCompare(t *testing.T) {
	a := abl.Parse("IF a  EQ b THEN RETURN.").Root()
	b := abl.Parse("if a eq b\nthen return.").Root()
	c := abl.Parse("IF a EQ c THEN RETURN.").Root()

	base := Base{}
	leafA := a.Child(0).Child(1).Child(1) // EQ
	leafB := b.Child(0).Child(1).Child(1)
	assert.True(t, base.Compare(leafA, leafB))
	assert.True(t, base.Compare(a.Child(0), b.Child(0)))

	right := a.Child(0).Child(1).Child(2)
	assert.False(t, base.Compare(right, c.Child(0).Child(1).Child(2)))
	assert.False(t, base.Compare(a.Child(0), a.Child(0).Child(1)))

	u1 := abl.Parse("USING A.B.").Root().Child(0).Child(1)
	u2 := abl.Parse("USING C.D.").Root().Child(0).Child(1)
	assert.True(t, base.Compare(u1, u2))
}

func TestBaseReplaceAndKeyword(t *testing.T) {
	src := "if a then return."
	tree := abl.Parse(src)
	ft := core.NewFullText(src, core.LF)
	stmt := tree.Root().Child(0)

	base := Base{Config: mapConfig{"casing": "upper"}}
	assert.Nil(t, base.Replace(stmt, ft, src))
	edits := base.Replace(stmt, ft, "IF a THEN RETURN.")
	require.Len(t, edits, 1)
	assert.Equal(t, uint32(0), edits[0].StartIndex)
	assert.Equal(t, uint32(len(src)), edits[0].OldEndIndex)

	assert.Equal(t, "IF", base.Keyword(stmt.Child(0), ft))
	assert.Equal(t, "a", base.Keyword(stmt.Child(1), ft))
	assert.Equal(t, 4, base.Tab())
}

func TestLayout(t *testing.T) {
	src := "x = f( a ,1 ) +  ( b*2 )."
	tree := abl.Parse(src)
	ft := core.NewFullText(src, core.LF)
	rhs := tree.Root().Child(0).Child(0).Child(2)
	require.Equal(t, abl.AdditiveExpression, rhs.Type())

	base := Base{Config: mapConfig{}}
	assert.Equal(t, "f( a ,1 ) + ( b*2 )", base.Layout(rhs, ft, nil))
	assert.Equal(t, "(a, 1)", base.Layout(rhs.Child(0).Child(1), ft, nil))
	assert.Equal(t, "(b*2)", base.Layout(rhs.Child(2), ft, nil))

	neg := abl.Parse("y = - 1.").Root().Child(0).Child(0).Child(2)
	assert.Equal(t, "-1", base.Layout(neg, core.NewFullText("y = - 1.", core.LF), nil))
}

func TestLayoutBreaksAndComments(t *testing.T) {
	src := "if a then return."
	tree := abl.Parse(src)
	ft := core.NewFullText(src, core.LF)
	base := Base{Config: mapConfig{"casing": "upper"}}
	assert.Equal(t, "IF a\nTHEN return.", base.Layout(tree.Root().Child(0), ft, &Plan{Breaks: map[int]int{2: 0}}))

	src = "x = // note\n 1."
	tree = abl.Parse(src)
	ft = core.NewFullText(src, core.LF)
	assignment := tree.Root().Child(0).Child(0)
	assert.Equal(t, "x = // note\n    1", base.Layout(assignment, ft, nil))

	src = "x = 1."
	tree = abl.Parse(src)
	ft = core.NewFullText(src, core.LF)
	plan := &Plan{}
	plan.Render(2, "<rhs>")
	plan.Break(2, 2)
	assert.Equal(t, "x =\n  <rhs>", base.LayoutAt(tree.Root().Child(0).Child(0), ft, 0, plan))
}

func TestShiftKeepsMultiLineStrings(t *testing.T) {
	src := "DISPLAY \"a\n  b\"\n  c."
	tree := abl.Parse(src)
	stmt := tree.Root().Child(0)
	rows := ProtectedRows(stmt)
	assert.Equal(t, map[uint32]bool{1: true}, rows)
	assert.Equal(t, "DISPLAY \"a\n  b\"\n    c.", Shift(stmt, src, 2, "\n"))
}

func TestShiftAfterEdit(t *testing.T) {
	src := "x = \"a\" +\n  b."
	tree := abl.Parse(src)
	ft := core.NewFullText(src, core.LF)
	rhs := tree.Root().Child(0).Child(0).Child(2)
	require.Equal(t, abl.AdditiveExpression, rhs.Type())

	// rewriting the whole node leaves its children with collapsed spans
	core.Apply(tree, ft, core.EditNode(rhs, ft.Slice(rhs), "\n"))
	require.True(t, rhs.Child(0).IsStale())

	text := ft.CurrentText(rhs)
	assert.Equal(t, "\"a\" +\nb", Shift(rhs, text, -2, "\n"))
	assert.Equal(t, "\"a\" +\n    b", Shift(rhs, text, 2, "\n"))
	assert.Equal(t, "\"a\n  b\"", Shift(rhs, "\"a\n  b\"", -2, "\n"))
}

func TestSettingsHelpers(t *testing.T) {
	cfg := mapConfig{"a": "Yes", "b": 1.0, "c": "New", "d": false}
	assert.True(t, Bool(cfg, "a"))
	assert.True(t, Bool(cfg, "b"))
	assert.False(t, Bool(cfg, "d"))
	assert.False(t, Bool(cfg, "missing"))
	assert.True(t, Is(cfg, "c", "new"))
	assert.Equal(t, "", String(cfg, "missing"))

	c, err := ParseCasing("LOWER")
	require.NoError(t, err)
	assert.Equal(t, "then", c.Apply("THEN"))
	assert.Equal(t, "lower", c.String())
	_, err = ParseCasing("title")
	assert.Error(t, err)
}

func TestLineHelpers(t *testing.T) {
	text := "a\n    b\n\tc"
	assert.Equal(t, 2, LineStart(text, 5))
	assert.Equal(t, 4, LineIndentation(text, 6, 4))
	assert.Equal(t, 4, LineIndentation(text, 9, 4))

	assert.Equal(t, "x\n  y\n\n  z", ShiftLines("x\ny\n\nz", 2, "\n"))
	assert.Equal(t, 7, Advance(3, "abcd", "\n"))
	assert.Equal(t, 2, Advance(3, "ab\ncd", "\n"))
	assert.Equal(t, "x\ny\n z", ShiftLines("x\n  y\n   z", -2, "\n"))
	assert.Equal(t, "x", ShiftLines("x", 3, "\n"))
}

func TestExcludedRows(t *testing.T) {
	src := "x = 1.\n@AblFormatterExcludeStart.\ny  =  2.\n@AblFormatterExcludeEnd.\nz = 3.\n@AblFormatterExcludeEnd."
	tree := abl.Parse(src)
	ft := core.NewFullText(src, core.LF)

	start, end := ExclusionMarker(tree.Root().Child(1), ft)
	assert.True(t, start)
	assert.False(t, end)

	ranges := ExcludedRows(tree.Root(), ft)
	assert.Equal(t, []RowRange{{Start: 1, End: 3}, {Start: 5, End: 5}}, ranges)
	assert.True(t, Excluded(ranges, 2))
	assert.False(t, Excluded(ranges, 4))
}

func TestExclusionRegionsFollowEdits(t *testing.T) {
	src := "x = 1.\n@AblFormatterExcludeStart.\ny = 2.\n@AblFormatterExcludeEnd."
	tree := abl.Parse(src)
	ft := core.NewFullText(src, core.LF)
	markers := ExclusionMarkers(tree.Root(), ft)
	require.Len(t, markers, 2)

	first := tree.Root().Child(0)
	core.Apply(tree, ft, core.EditNode(first, "x =\n    1.", "\n"))
	last := tree.Root().EndPosition().Row
	assert.Equal(t, []RowRange{{Start: 2, End: 4}}, ExclusionRegions(markers, ft, last))
	assert.Equal(t, []RowRange{{Start: 2, End: 4}}, ExcludedRows(tree.Root(), ft))
}
