package engine

import (
	"context"
	"fmt"

	"github.com/oxhq/ablfmt/formatter"
	"github.com/oxhq/ablfmt/syntax"
)

// Mismatch describes the first pair of nodes two trees disagree on.
type Mismatch struct {
	A, B *syntax.Node
	// Label of the formatter whose Compare rejected the pair.
	Label string
}

func (m *Mismatch) String() string {
	return fmt.Sprintf("%s: %s at %s differs from %s at %s",
		m.Label, m.A.Type(), m.A.StartPosition(), m.B.Type(), m.B.StartPosition())
}

// Equal walks a and b side by side and returns the first pair the
// formatters consider different, or nil when the trees are equivalent.
// Each pair is judged by the first formatter matching the node of a.
func Equal(a, b *syntax.Node, formatters []formatter.Formatter) *Mismatch {
	fallback := formatter.Formatter(formatter.NewDefault(nil))
	type pair struct{ a, b *syntax.Node }
	stack := []pair{{a, b}}
	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		f := formatter.First(formatters, p.a)
		if f == nil {
			f = fallback
		}
		if !f.Compare(p.a, p.b) {
			return &Mismatch{A: p.a, B: p.b, Label: f.Label()}
		}
		// unordered groups may pair nodes with different shapes; their
		// owner already vouched for them
		if p.a.ChildCount() != p.b.ChildCount() {
			continue
		}
		for i := p.a.ChildCount() - 1; i >= 0; i-- {
			stack = append(stack, pair{p.a.Child(i), p.b.Child(i)})
		}
	}
	return nil
}

// CompareTexts parses both texts and compares them with the formatters the
// engine's configuration enables.
func (e *Engine) CompareTexts(a, b string) (*Mismatch, error) {
	return e.CompareTextsContext(context.Background(), a, b)
}

// CompareTextsContext is CompareTexts with a context bounding both parses.
func (e *Engine) CompareTextsContext(ctx context.Context, a, b string) (*Mismatch, error) {
	if e.parser == nil {
		return nil, ErrNoParser
	}
	ra, err := e.parser.Parse(ctx, a, nil)
	if err != nil {
		return nil, fmt.Errorf("parse first text: %w", err)
	}
	defer e.release(ra.Tree)
	rb, err := e.parser.Parse(ctx, b, nil)
	if err != nil {
		return nil, fmt.Errorf("parse second text: %w", err)
	}
	defer e.release(rb.Tree)
	return Equal(ra.Tree.Root(), rb.Tree.Root(), formatter.Build(e.config, e.catalog)), nil
}
