package marker

import (
	"fmt"
	"strings"

	"github.com/wheelhouse-labs/wheelhouse/pkg/pep440"
)

// Expr is a node in a parsed marker expression.
type Expr interface {
	// Eval evaluates the node against an environment.
	Eval(env Environment) (bool, error)
	// String renders the node in canonical form.
	String() string
}

// OrExpr is a disjunction of two sub-expressions.
type OrExpr struct {
	Left, Right Expr
}

// AndExpr is a conjunction of two sub-expressions.
type AndExpr struct {
	Left, Right Expr
}

// Value is one side of a comparison: either a marker variable or a quoted
// literal.
type Value struct {
	// Text is the variable name or the literal content.
	Text string
	// Literal is true for quoted strings, false for variables.
	Literal bool
	// Pos is the value's position in the expression.
	Pos Position
}

// Comparison compares two values with an operator ("<", "<=", ">", ">=",
// "==", "!=", "~=", "===", "in", "not in").
type Comparison struct {
	Lhs Value
	Op  string
	Rhs Value
}

// Eval for OrExpr short-circuits on the first true operand.
func (e *OrExpr) Eval(env Environment) (bool, error) {
	left, err := e.Left.Eval(env)
	if err != nil {
		return false, err
	}
	if left {
		return true, nil
	}
	return e.Right.Eval(env)
}

func (e *OrExpr) String() string {
	return fmt.Sprintf("%s or %s", e.Left, e.Right)
}

// Eval for AndExpr short-circuits on the first false operand.
func (e *AndExpr) Eval(env Environment) (bool, error) {
	left, err := e.Left.Eval(env)
	if err != nil {
		return false, err
	}
	if !left {
		return false, nil
	}
	return e.Right.Eval(env)
}

func (e *AndExpr) String() string {
	return fmt.Sprintf("%s and %s", e.Left, e.Right)
}

// resolve returns the concrete string for the value under env.
func (v Value) resolve(env Environment) (string, error) {
	if v.Literal {
		return v.Text, nil
	}
	s, ok := env[v.Text]
	if !ok {
		return "", fmt.Errorf("marker variable %q is not set in the environment", v.Text)
	}
	return s, nil
}

func (v Value) String() string {
	if v.Literal {
		return fmt.Sprintf("%q", v.Text)
	}
	return v.Text
}

// Eval resolves both sides and compares them. When the right-hand side
// combines with the operator into a valid version constraint and the left
// side parses as a version, the comparison uses version ordering;
// otherwise it falls back to string comparison. "in"/"not in" are
// substring tests.
func (e *Comparison) Eval(env Environment) (bool, error) {
	lhs, err := e.Lhs.resolve(env)
	if err != nil {
		return false, err
	}
	rhs, err := e.Rhs.resolve(env)
	if err != nil {
		return false, err
	}

	switch e.Op {
	case "in":
		return strings.Contains(rhs, lhs), nil
	case "not in":
		return !strings.Contains(rhs, lhs), nil
	}

	// Version-aware path: op+rhs must form a valid specifier and lhs must
	// be a version. Pre-releases always participate here.
	if spec, err := pep440.ParseSpecifier(e.Op + rhs); err == nil {
		if v, err := pep440.Parse(lhs); err == nil {
			return spec.Match(v), nil
		}
	}

	switch e.Op {
	case "<":
		return lhs < rhs, nil
	case "<=":
		return lhs <= rhs, nil
	case ">":
		return lhs > rhs, nil
	case ">=":
		return lhs >= rhs, nil
	case "==":
		return lhs == rhs, nil
	case "!=":
		return lhs != rhs, nil
	case "===":
		return lhs == rhs, nil
	case "~=":
		return false, fmt.Errorf("~= requires version operands, got %q and %q", lhs, rhs)
	default:
		return false, fmt.Errorf("unsupported marker operator %q", e.Op)
	}
}

func (e *Comparison) String() string {
	return fmt.Sprintf("%s %s %s", e.Lhs, e.Op, e.Rhs)
}
