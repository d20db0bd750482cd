package abl

import "github.com/oxhq/ablfmt/syntax"

// expression parses an expression or returns nil when the next token
// cannot start one. Nothing is consumed in that case.
func (p *parser) expression() *syntax.Node {
	return p.or()
}

func (p *parser) binary(kind string, operand func() *syntax.Node, isOp func(token) bool) *syntax.Node {
	left := operand()
	if left == nil {
		return nil
	}
	for isOp(p.peek()) {
		b := p.build()
		b.add(left)
		if p.peek().kind == tokWord {
			b.add(p.keyword())
		} else {
			b.add(p.punct())
		}
		if right := operand(); right != nil {
			b.add(right)
		} else {
			b.add(p.missing(Identifier))
		}
		left = b.node(kind)
	}
	return left
}

func (p *parser) or() *syntax.Node {
	return p.binary(LogicalExpression, p.and, func(t token) bool { return t.wordIs("OR") })
}

func (p *parser) and() *syntax.Node {
	return p.binary(LogicalExpression, p.not, func(t token) bool { return t.wordIs("AND") })
}

func (p *parser) not() *syntax.Node {
	if !p.peek().wordIs("NOT") {
		return p.comparison()
	}
	b := p.build()
	b.add(p.keyword())
	if operand := p.not(); operand != nil {
		b.add(operand)
	} else {
		b.add(p.missing(Identifier))
	}
	return b.node(UnaryExpression)
}

func (p *parser) comparison() *syntax.Node {
	return p.binary(ComparisonExpression, p.additive, func(t token) bool {
		return (t.kind == tokWord || t.kind == tokPunct) && comparisonOperators[upper(t.text)]
	})
}

func (p *parser) additive() *syntax.Node {
	return p.binary(AdditiveExpression, p.multiplicative, func(t token) bool {
		return t.is("+") || t.is("-")
	})
}

func (p *parser) multiplicative() *syntax.Node {
	return p.binary(MultiplicativeExpression, p.unary, func(t token) bool {
		return t.is("*") || t.is("/") || t.wordIs("MODULO")
	})
}

func (p *parser) unary() *syntax.Node {
	t := p.peek()
	if !t.is("-") && !t.is("+") {
		return p.primary()
	}
	b := p.build()
	b.add(p.punct())
	if operand := p.unary(); operand != nil {
		b.add(operand)
	} else {
		b.add(p.missing(Identifier))
	}
	return b.node(UnaryExpression)
}

func (p *parser) primary() *syntax.Node {
	t := p.peek()
	switch t.kind {
	case tokNumber:
		return p.take(NumberLiteral, true)
	case tokString:
		return p.take(StringLiteral, true)
	case tokWord:
		switch {
		case t.wordIs("IF"):
			return p.ternary()
		case booleanWords[upper(t.text)]:
			return p.take(BooleanLiteral, true)
		case isReserved(t):
			return nil
		}
		return p.postfix(p.take(Identifier, true))
	case tokPunct:
		switch t.text {
		case "?":
			return p.take(NullLiteral, true)
		case "(":
			return p.parenthesized()
		}
	}
	return nil
}

// isReserved lists words that end an expression instead of starting one.
func isReserved(t token) bool {
	switch upper(t.text) {
	case "THEN", "ELSE", "DO", "END", "OR", "AND", "MODULO":
		return true
	}
	return comparisonOperators[upper(t.text)]
}

// postfix wraps name in function calls and array subscripts written directly
// after it.
func (p *parser) postfix(name *syntax.Node) *syntax.Node {
	for {
		t := p.peek()
		if t.span.StartIndex != name.EndIndex() {
			return name
		}
		switch {
		case t.is("("):
			b := p.build()
			b.add(name)
			b.add(p.arguments())
			name = b.node(FunctionCall)
		case t.is("["):
			b := p.build()
			b.add(name)
			b.add(p.punct())
			b.add(p.expression())
			p.expect(b, "]")
			name = b.node(ArrayAccess)
		default:
			return name
		}
	}
}

func (p *parser) arguments() *syntax.Node {
	b := p.build()
	b.add(p.punct())
	for {
		t := p.peek()
		if t.is(")") || t.kind == tokEOF || t.terminator() {
			break
		}
		if t.is(",") {
			b.add(p.punct())
			continue
		}
		if e := p.expression(); e != nil {
			b.add(e)
			continue
		}
		if t.kind == tokWord {
			b.add(p.keyword())
		} else {
			b.add(p.punct())
		}
	}
	p.expect(b, ")")
	return b.node(Arguments)
}

func (p *parser) parenthesized() *syntax.Node {
	b := p.build()
	b.add(p.punct())
	if e := p.expression(); e != nil {
		b.add(e)
	} else {
		b.add(p.missing(Identifier))
	}
	p.expect(b, ")")
	return b.node(ParenthesizedExpression)
}

func (p *parser) ternary() *syntax.Node {
	b := p.build()
	b.add(p.keyword())
	b.add(p.operand())
	p.expectWord(b, "THEN")
	b.add(p.operand())
	p.expectWord(b, "ELSE")
	b.add(p.operand())
	return b.node(TernaryExpression)
}

func (p *parser) operand() *syntax.Node {
	if e := p.expression(); e != nil {
		return e
	}
	return p.missing(Identifier)
}

func (p *parser) expect(b *builder, punct string) {
	if p.peek().is(punct) {
		b.add(p.punct())
		return
	}
	b.add(p.missing(punct))
}

func (p *parser) expectWord(b *builder, word string) {
	if p.peek().wordIs(word) {
		b.add(p.keyword())
		return
	}
	b.add(p.missing(word))
}
