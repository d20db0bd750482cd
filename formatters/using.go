package formatters

import (
	"slices"
	"strings"

	"github.com/oxhq/ablfmt/abl"
	"github.com/oxhq/ablfmt/config"
	"github.com/oxhq/ablfmt/core"
	"github.com/oxhq/ablfmt/formatter"
	"github.com/oxhq/ablfmt/syntax"
)

// Using sorts each run of adjacent USING statements alphabetically,
// ignoring case. The first statement of a run rewrites the whole run.
type Using struct {
	formatter.Base
}

func NewUsing(cfg formatter.Configuration) formatter.Formatter {
	return &Using{Base: formatter.Base{Config: cfg}}
}

func (*Using) Label() string { return config.UsingFormatting }

func (*Using) Match(n *syntax.Node) bool { return n.Type() == abl.UsingStatement }

func (f *Using) Parse(n *syntax.Node, ft *core.FullText) []core.Edit {
	if prev := n.PrevSibling(); prev != nil && prev.Type() == abl.UsingStatement {
		return nil
	}
	run := usingRun(n)
	texts := make([]string, len(run))
	for i, s := range run {
		texts[i] = f.Layout(s, ft, nil)
	}
	sorted := slices.Clone(texts)
	slices.SortStableFunc(sorted, func(a, b string) int {
		return strings.Compare(strings.ToUpper(a), strings.ToUpper(b))
	})

	var edits []core.Edit
	for i, s := range run {
		if ft.Slice(s) != sorted[i] {
			edits = append(edits, core.EditNode(s, sorted[i], ft.Delimiter()))
		}
	}
	return edits
}

// Compare treats a run of USING statements as an unordered set.
func (f *Using) Compare(a, b *syntax.Node) bool {
	if a.Type() != abl.UsingStatement || b.Type() != abl.UsingStatement {
		return f.Base.Compare(a, b)
	}
	return slices.Equal(usingKeys(a), usingKeys(b))
}

// usingRun returns n and the USING statements directly following it.
func usingRun(n *syntax.Node) []*syntax.Node {
	run := []*syntax.Node{n}
	for s := n.NextSibling(); s != nil && s.Type() == abl.UsingStatement; s = s.NextSibling() {
		run = append(run, s)
	}
	return run
}

// usingKeys returns the sorted token sequences of the run containing n.
func usingKeys(n *syntax.Node) []string {
	head := n
	for prev := head.PrevSibling(); prev != nil && prev.Type() == abl.UsingStatement; prev = prev.PrevSibling() {
		head = prev
	}
	var keys []string
	for _, s := range usingRun(head) {
		var leaves []string
		syntax.PostOrder(s, func(l *syntax.Node) {
			if l.ChildCount() == 0 && !formatter.IsComment(l) {
				leaves = append(leaves, strings.ToUpper(formatter.Normalize(l.Text())))
			}
		})
		keys = append(keys, strings.Join(leaves, " "))
	}
	slices.Sort(keys)
	return keys
}
