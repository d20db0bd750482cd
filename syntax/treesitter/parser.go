// Package treesitter adapts go-tree-sitter grammars to the syntax.Parser interface.
package treesitter

import (
	"context"
	"fmt"
	"sync"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/oxhq/ablfmt/syntax"
)

// Parser materializes tree-sitter trees into syntax trees. The sitter tree of
// each result is retained so the next parse can reuse it incrementally.
type Parser struct {
	mu     sync.Mutex
	parser *sitter.Parser
	trees  map[*syntax.Tree]*sitter.Tree
}

// New creates a parser for the given grammar.
func New(lang *sitter.Language) *Parser {
	parser := sitter.NewParser()
	parser.SetLanguage(lang)
	return &Parser{
		parser: parser,
		trees:  make(map[*syntax.Tree]*sitter.Tree),
	}
}

// Parse parses text. When previous came from this parser, the edits recorded
// on it are replayed onto its sitter tree and that tree seeds the parse.
func (p *Parser) Parse(ctx context.Context, text string, previous *syntax.Tree) (*syntax.ParseResult, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	var old *sitter.Tree
	if previous != nil {
		if st, ok := p.trees[previous]; ok {
			for _, e := range previous.Edits() {
				st.Edit(toEditInput(e))
			}
			old = st
			delete(p.trees, previous)
		}
	}

	st, err := p.parser.ParseCtx(ctx, old, []byte(text))
	if old != nil {
		old.Close()
	}
	if err != nil {
		return nil, fmt.Errorf("tree-sitter parse failed: %w", err)
	}
	if st == nil {
		return nil, fmt.Errorf("tree-sitter returned no tree")
	}

	tree := syntax.NewTree(convert(st.RootNode()), text)
	p.trees[tree] = st

	return &syntax.ParseResult{
		Tree:          tree,
		ChangedRanges: syntax.ChangedRanges(previous, tree),
	}, nil
}

// Release frees the sitter tree retained for t.
func (p *Parser) Release(t *syntax.Tree) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if st, ok := p.trees[t]; ok {
		st.Close()
		delete(p.trees, t)
	}
}

// Close frees every retained tree and the parser.
func (p *Parser) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	for t, st := range p.trees {
		st.Close()
		delete(p.trees, t)
	}
	p.parser.Close()
}

type frame struct {
	src *sitter.Node
	dst *syntax.Node
}

// convert copies a sitter subtree without recursion.
func convert(root *sitter.Node) *syntax.Node {
	out := newNode(root)
	stack := []frame{{src: root, dst: out}}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		count := int(f.src.ChildCount())
		for i := 0; i < count; i++ {
			child := f.src.Child(i)
			if child == nil {
				continue
			}
			n := newNode(child)
			f.dst.Append(n)
			stack = append(stack, frame{src: child, dst: n})
		}
	}
	return out
}

func newNode(n *sitter.Node) *syntax.Node {
	out := syntax.NewNode(n.Type(), n.IsNamed(), syntax.Range{
		StartIndex:    n.StartByte(),
		EndIndex:      n.EndByte(),
		StartPosition: fromPoint(n.StartPoint()),
		EndPosition:   fromPoint(n.EndPoint()),
	})
	out.SetMissing(n.IsMissing())
	return out
}

func fromPoint(p sitter.Point) syntax.Point {
	return syntax.Point{Row: p.Row, Column: p.Column}
}

func toPoint(p syntax.Point) sitter.Point {
	return sitter.Point{Row: p.Row, Column: p.Column}
}

func toEditInput(e syntax.InputEdit) sitter.EditInput {
	return sitter.EditInput{
		StartIndex:  e.StartIndex,
		OldEndIndex: e.OldEndIndex,
		NewEndIndex: e.NewEndIndex,
		StartPoint:  toPoint(e.StartPosition),
		OldEndPoint: toPoint(e.OldEndPosition),
		NewEndPoint: toPoint(e.NewEndPosition),
	}
}
