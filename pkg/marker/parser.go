package marker

import (
	"fmt"
)

// Marker is a parsed environment marker expression.
type Marker struct {
	expr Expr
	raw  string
}

// ParseError is a positioned marker syntax error.
type ParseError struct {
	Msg    string
	Column int
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("marker syntax error at column %d: %s", e.Column, e.Msg)
}

// parser is a recursive-descent parser over the token stream.
type parser struct {
	lexer *Lexer
	cur   Token
	peek  Token
}

// Parse parses a marker expression. Variable names are validated against
// the known marker variables at parse time.
func Parse(input string) (*Marker, error) {
	p := &parser{lexer: NewLexer(input)}
	p.advance()
	p.advance()

	expr, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	if p.cur.Type != EOF {
		return nil, p.errorf("unexpected %q after expression", p.cur.Literal)
	}

	return &Marker{expr: expr, raw: input}, nil
}

// MustParse parses a marker and panics on error. Intended for literals in
// tests and rule tables.
func MustParse(input string) *Marker {
	m, err := Parse(input)
	if err != nil {
		panic(err)
	}
	return m
}

// Eval evaluates the marker against an environment.
func (m *Marker) Eval(env Environment) (bool, error) {
	return m.expr.Eval(env)
}

// Expr returns the root of the parsed expression tree.
func (m *Marker) Expr() Expr {
	return m.expr
}

// String renders the marker in canonical form.
func (m *Marker) String() string {
	return m.expr.String()
}

func (p *parser) advance() {
	p.cur = p.peek
	p.peek = p.lexer.NextToken()
}

func (p *parser) errorf(format string, args ...any) error {
	return &ParseError{Msg: fmt.Sprintf(format, args...), Column: p.cur.Pos.Column}
}

// parseOr handles the lowest-precedence level: expr ("or" expr)*.
func (p *parser) parseOr() (Expr, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for p.cur.Type == OR {
		p.advance()
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = &OrExpr{Left: left, Right: right}
	}
	return left, nil
}

// parseAnd handles expr ("and" expr)*.
func (p *parser) parseAnd() (Expr, error) {
	left, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	for p.cur.Type == AND {
		p.advance()
		right, err := p.parsePrimary()
		if err != nil {
			return nil, err
		}
		left = &AndExpr{Left: left, Right: right}
	}
	return left, nil
}

// parsePrimary handles a parenthesized group or a single comparison.
func (p *parser) parsePrimary() (Expr, error) {
	if p.cur.Type == LPAREN {
		p.advance()
		expr, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		if p.cur.Type != RPAREN {
			return nil, p.errorf("expected ), got %q", p.cur.Literal)
		}
		p.advance()
		return expr, nil
	}
	return p.parseComparison()
}

// parseComparison handles value op value.
func (p *parser) parseComparison() (Expr, error) {
	lhs, err := p.parseValue()
	if err != nil {
		return nil, err
	}

	op, err := p.parseOperator()
	if err != nil {
		return nil, err
	}

	rhs, err := p.parseValue()
	if err != nil {
		return nil, err
	}

	// At least one side must be a variable; comparing two literals is
	// almost always a typo in the source manifest.
	if lhs.Literal && rhs.Literal {
		return nil, &ParseError{
			Msg:    fmt.Sprintf("comparison %q %s %q has no marker variable", lhs.Text, op, rhs.Text),
			Column: lhs.Pos.Column,
		}
	}

	return &Comparison{Lhs: lhs, Op: op, Rhs: rhs}, nil
}

func (p *parser) parseValue() (Value, error) {
	switch p.cur.Type {
	case STRING:
		v := Value{Text: p.cur.Literal, Literal: true, Pos: p.cur.Pos}
		p.advance()
		return v, nil
	case IDENT:
		name := normalizeVariable(p.cur.Literal)
		if !IsKnownVariable(name) {
			return Value{}, p.errorf("unknown marker variable %q", p.cur.Literal)
		}
		v := Value{Text: name, Pos: p.cur.Pos}
		p.advance()
		return v, nil
	default:
		return Value{}, p.errorf("expected variable or quoted string, got %q", p.cur.Literal)
	}
}

// parseOperator consumes a comparison operator, including the two-token
// "not in" form.
func (p *parser) parseOperator() (string, error) {
	switch p.cur.Type {
	case LT, LE, GT, GE, EQ, NE, COMPATIBLE, ARBITRARY:
		op := p.cur.Literal
		p.advance()
		return op, nil
	case IN:
		p.advance()
		return "in", nil
	case NOT:
		p.advance()
		if p.cur.Type != IN {
			return "", p.errorf("expected 'in' after 'not', got %q", p.cur.Literal)
		}
		p.advance()
		return "not in", nil
	default:
		return "", p.errorf("expected comparison operator, got %q", p.cur.Literal)
	}
}
