// Package abl is a recursive-descent parser for the subset of OpenEdge ABL
// the formatters understand. Anything else is kept as generic statements or
// ERROR nodes so the formatter can pass it through untouched.
package abl

import (
	"context"

	"github.com/oxhq/ablfmt/syntax"
)

// Parser implements syntax.Parser. It holds no state and is safe for
// concurrent use.
type Parser struct{}

// NewParser returns an ABL parser.
func NewParser() *Parser { return &Parser{} }

// Parse parses text. The previous tree is only used to report changed ranges.
func (p *Parser) Parse(ctx context.Context, text string, previous *syntax.Tree) (*syntax.ParseResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	tree := Parse(text)
	return &syntax.ParseResult{
		Tree:          tree,
		ChangedRanges: syntax.ChangedRanges(previous, tree),
	}, nil
}

// Parse builds a syntax tree for text. It never fails; unparseable input
// becomes ERROR nodes.
func Parse(text string) *syntax.Tree {
	p := &parser{toks: lex(text)}
	stmts := p.statements(func(token) bool { return false })
	eof := p.toks[len(p.toks)-1].span

	root := syntax.NewNode(SourceCode, true, syntax.Range{
		EndIndex:    eof.EndIndex,
		EndPosition: eof.EndPosition,
	})
	root.Append(stmts...)
	return syntax.NewTree(root, text)
}

type parser struct {
	toks []token
	pos  int
	// comments seen by peek that no node has claimed yet
	pending []*syntax.Node
}

// peek returns the next significant token, parking comments in pending.
func (p *parser) peek() token {
	for p.toks[p.pos].kind == tokComment {
		p.pending = append(p.pending, p.leaf(p.toks[p.pos], Comment, true))
		p.pos++
	}
	return p.toks[p.pos]
}

// lookahead returns the n-th significant token after the next one without
// touching pending comments.
func (p *parser) lookahead(n int) token {
	i := p.pos
	for {
		for p.toks[i].kind == tokComment {
			i++
		}
		if n == 0 || p.toks[i].kind == tokEOF {
			return p.toks[i]
		}
		n--
		i++
	}
}

func (p *parser) leaf(t token, kind string, named bool) *syntax.Node {
	return syntax.NewNode(kind, named, t.span)
}

// take consumes the next significant token as a leaf.
func (p *parser) take(kind string, named bool) *syntax.Node {
	t := p.peek()
	p.pos++
	return p.leaf(t, kind, named)
}

// keyword consumes a word as an anonymous keyword leaf.
func (p *parser) keyword() *syntax.Node {
	t := p.peek()
	p.pos++
	return p.leaf(t, upper(t.text), false)
}

// punct consumes a punctuation token as an anonymous leaf.
func (p *parser) punct() *syntax.Node {
	t := p.peek()
	p.pos++
	return p.leaf(t, t.text, false)
}

// missing creates a zero-width placeholder where a token was expected. It
// sits right after the last token already placed in the tree, so the
// enclosing node never ends in whitespace.
func (p *parser) missing(kind string) *syntax.Node {
	at := p.peek().span
	idx, pos := at.StartIndex, at.StartPosition
	for i := p.pos - 1; i >= 0; i-- {
		if p.parked(p.toks[i]) {
			continue
		}
		idx, pos = p.toks[i].span.EndIndex, p.toks[i].span.EndPosition
		break
	}
	n := syntax.NewNode(kind, false, syntax.Range{
		StartIndex: idx, EndIndex: idx,
		StartPosition: pos, EndPosition: pos,
	})
	n.SetMissing(true)
	return n
}

// parked reports whether t is a comment still waiting in pending.
func (p *parser) parked(t token) bool {
	if t.kind != tokComment {
		return false
	}
	for _, c := range p.pending {
		if c.StartIndex() == t.span.StartIndex {
			return true
		}
	}
	return false
}

type builder struct {
	p    *parser
	kids []*syntax.Node
}

func (p *parser) build() *builder { return &builder{p: p} }

// add appends n after any pending comments that precede it.
func (b *builder) add(n *syntax.Node) {
	if n == nil {
		return
	}
	rest := b.p.pending[:0]
	for _, c := range b.p.pending {
		if c.StartIndex() < n.StartIndex() || (n.IsMissing() && c.StartIndex() <= n.StartIndex()) {
			b.kids = append(b.kids, c)
		} else {
			rest = append(rest, c)
		}
	}
	b.p.pending = rest
	b.kids = append(b.kids, n)
}

func (b *builder) node(kind string) *syntax.Node {
	return syntax.Enclose(kind, true, b.kids...)
}

// statements parses until EOF or stop reports true for the next token.
func (p *parser) statements(stop func(token) bool) []*syntax.Node {
	var out []*syntax.Node
	for {
		t := p.peek()
		out = append(out, p.pending...)
		p.pending = nil
		if t.kind == tokEOF || stop(t) {
			return out
		}
		out = append(out, p.statement())
	}
}

func (p *parser) statement() *syntax.Node {
	t := p.peek()
	switch t.kind {
	case tokAnnotation:
		return p.annotation()
	case tokWord:
	default:
		return p.errorStatement()
	}

	word := upper(t.text)
	if kind, ok := blockKeywords[word]; ok {
		return p.block(kind)
	}
	switch word {
	case "IF":
		return p.ifStatement()
	case "ASSIGN":
		return p.assignStatement()
	case "RETURN":
		return p.returnStatement()
	case "USING":
		return p.usingStatement()
	case "END", "THEN", "ELSE":
		return p.errorStatement()
	}
	if p.assignmentAhead() {
		return p.variableAssignment()
	}
	return p.genericStatement()
}

// assignmentAhead reports whether the next tokens read `name =` or `name[...] =`.
func (p *parser) assignmentAhead() bool {
	if p.peek().kind != tokWord {
		return false
	}
	next := p.lookahead(1)
	if next.is("=") {
		return true
	}
	if !next.is("[") {
		return false
	}
	for i := 2; ; i++ {
		t := p.lookahead(i)
		switch {
		case t.kind == tokEOF || t.terminator():
			return false
		case t.is("]"):
			return p.lookahead(i + 1).is("=")
		}
	}
}

// terminate appends the statement's trailing words and its period.
func (p *parser) terminate(b *builder) {
	for {
		t := p.peek()
		switch {
		case t.terminator():
			b.add(p.punct())
			return
		case t.kind == tokEOF:
			return
		case t.kind == tokWord:
			b.add(p.keyword())
		default:
			b.add(p.punct())
		}
	}
}

func (p *parser) errorStatement() *syntax.Node {
	b := p.build()
	for {
		t := p.peek()
		if t.kind == tokEOF {
			break
		}
		switch t.kind {
		case tokWord:
			b.add(p.take(Identifier, true))
		case tokNumber:
			b.add(p.take(NumberLiteral, true))
		case tokString:
			b.add(p.take(StringLiteral, true))
		default:
			b.add(p.punct())
		}
		if t.terminator() {
			break
		}
	}
	return b.node(syntax.ErrorType)
}

func (p *parser) annotation() *syntax.Node {
	b := p.build()
	b.add(p.take(AnnotationName, true))
	for {
		t := p.peek()
		if t.kind == tokEOF {
			break
		}
		if t.terminator() {
			b.add(p.punct())
			break
		}
		if e := p.expression(); e != nil {
			b.add(e)
		} else {
			b.add(p.punct())
		}
	}
	return b.node(Annotation)
}

func (p *parser) ifStatement() *syntax.Node {
	b := p.build()
	b.add(p.keyword())
	p.condition(b)
	for p.peek().wordIs("ELSE") && p.lookahead(1).wordIs("IF") {
		eb := p.build()
		eb.add(p.keyword())
		eb.add(p.keyword())
		p.condition(eb)
		b.add(eb.node(ElseIfStatement))
	}
	if p.peek().wordIs("ELSE") {
		eb := p.build()
		eb.add(p.keyword())
		eb.add(p.branch())
		b.add(eb.node(ElseStatement))
	}
	return b.node(IfStatement)
}

// condition parses `expr THEN statement` into b.
func (p *parser) condition(b *builder) {
	b.add(p.expression())
	if p.peek().wordIs("THEN") {
		b.add(p.keyword())
	} else {
		b.add(p.missing("THEN"))
	}
	b.add(p.branch())
}

func (p *parser) branch() *syntax.Node {
	if t := p.peek(); t.kind == tokEOF {
		return p.missing(AblStatement)
	}
	return p.statement()
}

func (p *parser) block(kind string) *syntax.Node {
	b := p.build()
	b.add(p.keyword())
	for {
		t := p.peek()
		if t.kind == tokEOF || t.terminator() {
			// a block header without ':' is not a block
			p.terminate(b)
			return b.node(syntax.ErrorType)
		}
		if t.is(":") {
			b.add(p.punct())
			break
		}
		p.item(b)
	}

	stmts := p.statements(func(t token) bool { return t.wordIs("END") })
	if len(stmts) > 0 {
		b.add(syntax.Enclose(Body, true, stmts...))
	}
	if p.peek().kind == tokEOF {
		b.add(p.missing("END"))
		return b.node(kind)
	}
	b.add(p.keyword())
	p.terminate(b)
	return b.node(kind)
}

// item parses one element of a generic statement or block header.
func (p *parser) item(b *builder) {
	t := p.peek()
	if t.kind == tokPunct && (t.text == "," || t.text == ":") {
		b.add(p.punct())
		return
	}
	if e := p.expression(); e != nil {
		b.add(e)
		return
	}
	if t.kind == tokWord {
		b.add(p.keyword())
		return
	}
	b.add(p.punct())
}

func (p *parser) assignStatement() *syntax.Node {
	b := p.build()
	b.add(p.keyword())
	for {
		t := p.peek()
		if t.kind == tokEOF || t.terminator() {
			break
		}
		if p.assignmentAhead() {
			b.add(p.assignment())
			continue
		}
		if t.kind == tokWord {
			b.add(p.keyword())
		} else {
			b.add(p.punct())
		}
	}
	p.terminate(b)
	return b.node(AssignStatement)
}

func (p *parser) assignment() *syntax.Node {
	b := p.build()
	b.add(p.postfix(p.take(Identifier, true)))
	b.add(p.punct())
	if e := p.expression(); e != nil {
		b.add(e)
	} else {
		b.add(p.missing(Identifier))
	}
	return b.node(Assignment)
}

func (p *parser) variableAssignment() *syntax.Node {
	b := p.build()
	b.add(p.assignment())
	p.terminate(b)
	return b.node(VariableAssignment)
}

func (p *parser) returnStatement() *syntax.Node {
	b := p.build()
	b.add(p.keyword())
	for {
		t := p.peek()
		if t.kind == tokEOF || t.terminator() {
			break
		}
		p.item(b)
	}
	p.terminate(b)
	return b.node(ReturnStatement)
}

func (p *parser) usingStatement() *syntax.Node {
	b := p.build()
	b.add(p.keyword())
	if p.peek().kind == tokWord {
		b.add(p.take(QualifiedName, true))
	}
	p.terminate(b)
	return b.node(UsingStatement)
}

func (p *parser) genericStatement() *syntax.Node {
	b := p.build()
	b.add(p.keyword())
	for {
		t := p.peek()
		if t.kind == tokEOF || t.terminator() {
			break
		}
		p.item(b)
	}
	p.terminate(b)
	return b.node(AblStatement)
}
