package abl

import (
	"github.com/oxhq/ablfmt/syntax"
)

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokWord
	tokNumber
	tokString
	tokPunct
	tokComment
	tokAnnotation
)

type token struct {
	kind tokenKind
	text string
	span syntax.Range
}

// terminator reports whether the token ends a statement.
func (t token) terminator() bool {
	return t.kind == tokPunct && t.text == "."
}

func (t token) is(text string) bool {
	return t.kind == tokPunct && t.text == text
}

type lexer struct {
	src string
	off int
	row uint32
	col uint32
}

// StringRows returns the rows of text, counted from zero, that continue a
// string literal opened on an earlier row. Their leading whitespace is part
// of the string.
func StringRows(text string) map[int]bool {
	var rows map[int]bool
	for _, t := range lex(text) {
		if t.kind != tokString || t.span.StartPosition.Row == t.span.EndPosition.Row {
			continue
		}
		if rows == nil {
			rows = make(map[int]bool)
		}
		for r := t.span.StartPosition.Row + 1; r <= t.span.EndPosition.Row; r++ {
			rows[int(r)] = true
		}
	}
	return rows
}

func lex(src string) []token {
	l := &lexer{src: src}
	var toks []token
	for {
		l.skipSpace()
		if l.off >= len(l.src) {
			p := l.point()
			toks = append(toks, token{kind: tokEOF, span: syntax.Range{
				StartIndex: uint32(l.off), EndIndex: uint32(l.off), StartPosition: p, EndPosition: p,
			}})
			return toks
		}
		toks = append(toks, l.next())
	}
}

func (l *lexer) point() syntax.Point {
	return syntax.Point{Row: l.row, Column: l.col}
}

func (l *lexer) peekByte(ahead int) byte {
	if l.off+ahead >= len(l.src) {
		return 0
	}
	return l.src[l.off+ahead]
}

// advance moves one byte forward, tracking rows for LF, CRLF and lone CR.
func (l *lexer) advance() {
	c := l.src[l.off]
	l.off++
	switch {
	case c == '\n':
		l.row++
		l.col = 0
	case c == '\r' && l.peekByte(0) != '\n':
		l.row++
		l.col = 0
	case c == '\r':
		l.col++
	default:
		l.col++
	}
}

func (l *lexer) skipSpace() {
	for l.off < len(l.src) && isSpace(l.src[l.off]) {
		l.advance()
	}
}

func (l *lexer) next() token {
	start, startPos := l.off, l.point()
	kind := l.scan()
	return token{
		kind: kind,
		text: l.src[start:l.off],
		span: syntax.Range{
			StartIndex:    uint32(start),
			EndIndex:      uint32(l.off),
			StartPosition: startPos,
			EndPosition:   l.point(),
		},
	}
}

func (l *lexer) scan() tokenKind {
	c := l.src[l.off]
	switch {
	case c == '/' && l.peekByte(1) == '*':
		l.blockComment()
		return tokComment
	case c == '/' && l.peekByte(1) == '/':
		for l.off < len(l.src) && l.src[l.off] != '\n' && l.src[l.off] != '\r' {
			l.advance()
		}
		return tokComment
	case c == '"' || c == '\'':
		l.str(c)
		return tokString
	case c == '@' && isWordStart(l.peekByte(1)):
		l.advance()
		l.word()
		return tokAnnotation
	case isDigit(c):
		l.number()
		return tokNumber
	case isWordStart(c):
		l.word()
		return tokWord
	}
	l.advance()
	switch c {
	case '<':
		if n := l.peekByte(0); n == '=' || n == '>' {
			l.advance()
		}
	case '>':
		if l.peekByte(0) == '=' {
			l.advance()
		}
	}
	return tokPunct
}

// blockComment consumes a possibly nested /* */ comment.
func (l *lexer) blockComment() {
	depth := 0
	for l.off < len(l.src) {
		switch {
		case l.src[l.off] == '/' && l.peekByte(1) == '*':
			depth++
			l.advance()
			l.advance()
		case l.src[l.off] == '*' && l.peekByte(1) == '/':
			depth--
			l.advance()
			l.advance()
			if depth == 0 {
				return
			}
		default:
			l.advance()
		}
	}
}

func (l *lexer) str(quote byte) {
	l.advance()
	for l.off < len(l.src) {
		c := l.src[l.off]
		l.advance()
		if c == '~' && l.off < len(l.src) {
			l.advance()
			continue
		}
		if c == quote {
			if l.peekByte(0) == quote {
				l.advance()
				continue
			}
			break
		}
	}
	// string attributes such as "text":U
	if l.peekByte(0) == ':' && isLetter(l.peekByte(1)) {
		l.advance()
		for l.off < len(l.src) && isWordChar(l.src[l.off]) {
			l.advance()
		}
	}
}

func (l *lexer) number() {
	for l.off < len(l.src) && isDigit(l.src[l.off]) {
		l.advance()
	}
	if l.peekByte(0) == '.' && isDigit(l.peekByte(1)) {
		l.advance()
		for l.off < len(l.src) && isDigit(l.src[l.off]) {
			l.advance()
		}
	}
}

// word consumes an identifier or keyword. Qualified names continue across
// '.' and ':' when the next byte still belongs to a word; a trailing ".*"
// closes a wildcard package name.
func (l *lexer) word() {
	for l.off < len(l.src) {
		c := l.src[l.off]
		switch {
		case isWordChar(c):
			l.advance()
		case (c == '.' || c == ':') && isWordStart(l.peekByte(1)):
			l.advance()
		case c == '.' && l.peekByte(1) == '*':
			l.advance()
			l.advance()
			return
		default:
			return
		}
	}
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\f' || c == '\v'
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isWordStart(c byte) bool {
	return isLetter(c) || c == '_' || c == '&'
}

func isWordChar(c byte) bool {
	return isWordStart(c) || isDigit(c) || c == '-' || c == '#' || c == '$' || c == '%'
}
