package airtabletest

import (
	"fmt"
	"strconv"
	"strings"
)

// Recursive-descent evaluator for the formula grammar the repositories build
// with the airtable package helpers:
//
//	expr    := AND(expr, ...) | OR(expr, ...) | equals | search
//	equals  := {Field}='value'
//	search  := SEARCH('value', ARRAYJOIN({Field}))
//
// Anything outside that grammar is rejected, which keeps accidental drift
// between the repositories and this fake loud in tests.

type expr interface {
	eval(fields map[string]any) bool
}

type andExpr struct{ args []expr }

func (e andExpr) eval(f map[string]any) bool {
	for _, a := range e.args {
		if !a.eval(f) {
			return false
		}
	}
	return true
}

type orExpr struct{ args []expr }

func (e orExpr) eval(f map[string]any) bool {
	for _, a := range e.args {
		if a.eval(f) {
			return true
		}
	}
	return false
}

type equalsExpr struct {
	field string
	value string
}

func (e equalsExpr) eval(f map[string]any) bool {
	return stringify(f[e.field]) == e.value
}

type searchExpr struct {
	needle string
	field  string
}

func (e searchExpr) eval(f map[string]any) bool {
	list, ok := f[e.field].([]any)
	if !ok {
		return false
	}
	parts := make([]string, len(list))
	for i, v := range list {
		parts[i] = stringify(v)
	}
	return strings.Contains(strings.Join(parts, ","), e.needle)
}

func stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case bool:
		if t {
			return "1"
		}
		return "0"
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		return fmt.Sprintf("%v", t)
	}
}

func parseFormula(s string) (expr, error) {
	p := &parser{input: s}
	e, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	p.skipSpace()
	if p.pos != len(p.input) {
		return nil, fmt.Errorf("trailing input at %d in %q", p.pos, s)
	}
	return e, nil
}

type parser struct {
	input string
	pos   int
}

func (p *parser) parseExpr() (expr, error) {
	p.skipSpace()
	switch {
	case p.consume("AND("):
		args, err := p.parseArgs()
		if err != nil {
			return nil, err
		}
		return andExpr{args: args}, nil
	case p.consume("OR("):
		args, err := p.parseArgs()
		if err != nil {
			return nil, err
		}
		return orExpr{args: args}, nil
	case p.consume("SEARCH("):
		needle, err := p.parseString()
		if err != nil {
			return nil, err
		}
		if err := p.expect(","); err != nil {
			return nil, err
		}
		p.skipSpace()
		if err := p.expect("ARRAYJOIN("); err != nil {
			return nil, err
		}
		field, err := p.parseField()
		if err != nil {
			return nil, err
		}
		if err := p.expect(")"); err != nil {
			return nil, err
		}
		if err := p.expect(")"); err != nil {
			return nil, err
		}
		return searchExpr{needle: needle, field: field}, nil
	case p.peek() == '{':
		field, err := p.parseField()
		if err != nil {
			return nil, err
		}
		if err := p.expect("="); err != nil {
			return nil, err
		}
		value, err := p.parseString()
		if err != nil {
			return nil, err
		}
		return equalsExpr{field: field, value: value}, nil
	default:
		return nil, fmt.Errorf("unexpected input at %d in %q", p.pos, p.input)
	}
}

func (p *parser) parseArgs() ([]expr, error) {
	var args []expr
	for {
		e, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		args = append(args, e)
		p.skipSpace()
		if p.consume(",") {
			continue
		}
		if p.consume(")") {
			return args, nil
		}
		return nil, fmt.Errorf("expected ',' or ')' at %d in %q", p.pos, p.input)
	}
}

func (p *parser) parseField() (string, error) {
	p.skipSpace()
	if !p.consume("{") {
		return "", fmt.Errorf("expected '{' at %d in %q", p.pos, p.input)
	}
	end := strings.IndexByte(p.input[p.pos:], '}')
	if end < 0 {
		return "", fmt.Errorf("unterminated field reference in %q", p.input)
	}
	field := p.input[p.pos : p.pos+end]
	p.pos += end + 1
	return field, nil
}

func (p *parser) parseString() (string, error) {
	p.skipSpace()
	if !p.consume("'") {
		return "", fmt.Errorf("expected string at %d in %q", p.pos, p.input)
	}
	var b strings.Builder
	for p.pos < len(p.input) {
		c := p.input[p.pos]
		p.pos++
		switch c {
		case '\\':
			if p.pos < len(p.input) {
				b.WriteByte(p.input[p.pos])
				p.pos++
			}
		case '\'':
			return b.String(), nil
		default:
			b.WriteByte(c)
		}
	}
	return "", fmt.Errorf("unterminated string in %q", p.input)
}

func (p *parser) skipSpace() {
	for p.pos < len(p.input) && (p.input[p.pos] == ' ' || p.input[p.pos] == '\t') {
		p.pos++
	}
}

func (p *parser) peek() byte {
	if p.pos >= len(p.input) {
		return 0
	}
	return p.input[p.pos]
}

func (p *parser) consume(prefix string) bool {
	if strings.HasPrefix(p.input[p.pos:], prefix) {
		p.pos += len(prefix)
		return true
	}
	return false
}

func (p *parser) expect(token string) error {
	p.skipSpace()
	if !p.consume(token) {
		return fmt.Errorf("expected %q at %d in %q", token, p.pos, p.input)
	}
	return nil
}
