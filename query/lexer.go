package query

import (
	"fmt"
	"strconv"
)

type tokKind int

const (
	tokEOF tokKind = iota
	tokIdent
	tokInt
	tokString
	// symbols
	tokDot    // .
	tokLBrack // [
	tokRBrack // ]
)

func (k tokKind) String() string {
	switch k {
	case tokEOF:
		return "end of expression"
	case tokIdent:
		return "identifier"
	case tokInt:
		return "index"
	case tokString:
		return "quoted string"
	case tokDot:
		return "'.'"
	case tokLBrack:
		return "'['"
	case tokRBrack:
		return "']'"
	default:
		return fmt.Sprintf("token(%d)", int(k))
	}
}

type token struct {
	kind tokKind
	lit  string
	off  int
}

type lexer struct {
	src string
	off int
	cur token
	err error
}

func newLexer(src string) *lexer { return &lexer{src: src} }

func (lx *lexer) next() {
	for lx.off < len(lx.src) && isSpace(lx.src[lx.off]) {
		lx.off++
	}
	start := lx.off
	if lx.off >= len(lx.src) {
		lx.cur = token{kind: tokEOF, off: start}
		return
	}
	b := lx.src[lx.off]
	switch {
	case b == '.':
		lx.off++
		lx.cur = token{kind: tokDot, lit: ".", off: start}
	case b == '[':
		lx.off++
		lx.cur = token{kind: tokLBrack, lit: "[", off: start}
	case b == ']':
		lx.off++
		lx.cur = token{kind: tokRBrack, lit: "]", off: start}
	case b == '"':
		lx.lexString()
	case isIdentPart(b):
		for lx.off < len(lx.src) && isIdentPart(lx.src[lx.off]) {
			lx.off++
		}
		lit := lx.src[start:lx.off]
		if _, err := strconv.Atoi(lit); err == nil {
			lx.cur = token{kind: tokInt, lit: lit, off: start}
		} else {
			lx.cur = token{kind: tokIdent, lit: lit, off: start}
		}
	default:
		lx.fail(start, "unexpected character %q", b)
	}
}

// lexString scans a Go-syntax double-quoted string.
func (lx *lexer) lexString() {
	start := lx.off
	lx.off++
	for lx.off < len(lx.src) {
		switch lx.src[lx.off] {
		case '\\':
			lx.off += 2
			continue
		case '"':
			lx.off++
			s, err := strconv.Unquote(lx.src[start:lx.off])
			if err != nil {
				lx.fail(start, "bad quoted string %s", lx.src[start:lx.off])
				return
			}
			lx.cur = token{kind: tokString, lit: s, off: start}
			return
		}
		lx.off++
	}
	lx.fail(start, "unterminated string")
}

func (lx *lexer) fail(off int, format string, args ...any) {
	if lx.err == nil {
		lx.err = fmt.Errorf("offset %d: %s", off, fmt.Sprintf(format, args...))
	}
	lx.off = len(lx.src)
	lx.cur = token{kind: tokEOF, off: off}
}

func isSpace(b byte) bool { return b == ' ' || b == '\t' || b == '\n' || b == '\r' }
func isDigit(b byte) bool { return b >= '0' && b <= '9' }

// Save keys are mostly snake_case. Bare words made only of digits lex
// as integers; the parser accepts them as field names after a dot.
func isIdentPart(b byte) bool {
	return b == '_' || b == '-' || isDigit(b) || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || b >= 0x80
}
