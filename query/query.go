// Package query selects values from a decoded save tree with simple path
// expressions such as
//
//	player.inventory[2].name
//	.settings."audio volume"
//	outfits["blue"][0]
//
// Field steps are identifiers, bare integers or Go-quoted strings after
// a dot; index steps are integers in brackets. A quoted string in
// brackets is a field step. The empty expression and "." select the
// root.
package query

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/dadrian/hcsave"
)

// Step is one field or index selection.
type Step struct {
	Field   string
	Index   int
	IsIndex bool
}

func (s Step) String() string {
	if s.IsIndex {
		return "[" + strconv.Itoa(s.Index) + "]"
	}
	if isBareName(s.Field) {
		return "." + s.Field
	}
	return "." + strconv.Quote(s.Field)
}

// Path is a parsed expression.
type Path struct {
	steps []Step
}

// Steps returns the steps of p.
func (p *Path) Steps() []Step { return p.steps }

func (p *Path) String() string { return formatSteps(p.steps) }

func formatSteps(steps []Step) string {
	if len(steps) == 0 {
		return "."
	}
	var sb strings.Builder
	for _, s := range steps {
		sb.WriteString(s.String())
	}
	return sb.String()
}

func isBareName(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if !isIdentPart(s[i]) {
			return false
		}
	}
	_, err := strconv.Atoi(s)
	return err != nil
}

// Parse parses expr.
func Parse(expr string) (*Path, error) {
	p := &parser{lx: newLexer(expr)}
	p.lx.next()
	steps, err := p.parse()
	if err != nil {
		return nil, fmt.Errorf("query %q: %w", expr, err)
	}
	return &Path{steps: steps}, nil
}

// Select parses expr and evaluates it against tree.
func Select(tree any, expr string) (any, error) {
	p, err := Parse(expr)
	if err != nil {
		return nil, err
	}
	return p.Eval(tree)
}

// Eval walks tree along p. Objects and arrays may be hcsave types or the
// plain map[string]any and []any produced by encoding/json.
func (p *Path) Eval(tree any) (any, error) {
	cur := tree
	for i, s := range p.steps {
		at := formatSteps(p.steps[:i+1])
		if s.IsIndex {
			arr, ok := hcsave.AsArray(cur)
			if !ok {
				return nil, fmt.Errorf("%s: not an array (found %s): %w", at, hcsave.TypeName(cur), hcsave.ErrWrongKind)
			}
			v, err := arr.At(s.Index)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", at, err)
			}
			cur = v
			continue
		}
		obj, ok := hcsave.AsObject(cur)
		if !ok {
			return nil, fmt.Errorf("%s: not an object (found %s): %w", at, hcsave.TypeName(cur), hcsave.ErrWrongKind)
		}
		v, err := obj.Get(s.Field)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", at, err)
		}
		cur = v
	}
	return cur, nil
}

type parser struct {
	lx *lexer
}

func (p *parser) parse() ([]Step, error) {
	var steps []Step
	switch p.lx.cur.kind {
	case tokIdent, tokString, tokInt:
		steps = append(steps, Step{Field: p.lx.cur.lit})
		p.lx.next()
	case tokDot:
		// "." alone selects the root.
		p.lx.next()
		if p.lx.cur.kind == tokEOF {
			return nil, p.lx.err
		}
		name, err := p.fieldName()
		if err != nil {
			return nil, err
		}
		steps = append(steps, Step{Field: name})
	}
	for {
		switch p.lx.cur.kind {
		case tokEOF:
			if p.lx.err != nil {
				return nil, p.lx.err
			}
			return steps, nil
		case tokDot:
			p.lx.next()
			name, err := p.fieldName()
			if err != nil {
				return nil, err
			}
			steps = append(steps, Step{Field: name})
		case tokLBrack:
			p.lx.next()
			s, err := p.bracket()
			if err != nil {
				return nil, err
			}
			steps = append(steps, s)
		default:
			return nil, p.unexpected("'.' or '['")
		}
	}
}

// fieldName consumes the name after a dot.
func (p *parser) fieldName() (string, error) {
	switch t := p.lx.cur; t.kind {
	case tokIdent, tokString, tokInt:
		p.lx.next()
		return t.lit, nil
	default:
		return "", p.unexpected("field name")
	}
}

// bracket consumes the contents of [...] after the opening bracket.
func (p *parser) bracket() (Step, error) {
	var s Step
	switch t := p.lx.cur; t.kind {
	case tokInt:
		n, err := strconv.Atoi(t.lit)
		if err != nil || n < 0 {
			return Step{}, fmt.Errorf("offset %d: bad index %s", t.off, t.lit)
		}
		s = Step{Index: n, IsIndex: true}
	case tokString:
		s = Step{Field: t.lit}
	default:
		return Step{}, p.unexpected("index or quoted field name")
	}
	p.lx.next()
	if p.lx.cur.kind != tokRBrack {
		return Step{}, p.unexpected("']'")
	}
	p.lx.next()
	return s, nil
}

func (p *parser) unexpected(want string) error {
	if p.lx.err != nil {
		return p.lx.err
	}
	t := p.lx.cur
	if t.kind == tokEOF {
		return fmt.Errorf("offset %d: expected %s, got %v", t.off, want, t.kind)
	}
	return fmt.Errorf("offset %d: expected %s, got %v %q", t.off, want, t.kind, t.lit)
}
