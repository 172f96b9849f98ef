// Package marker implements parsing and evaluation of environment markers,
// the predicate expressions that gate a dependency on properties of the
// installing interpreter and platform, e.g.
//
//	python_version >= "3.8" and sys_platform != "win32"
//
// The grammar is a small boolean expression language: comparisons between
// marker variables and quoted strings, combined with "and"/"or" and
// parentheses. Version-valued comparisons order operands with pkg/pep440;
// everything else compares as strings.
package marker

import "fmt"

// TokenType identifies a lexical token class.
type TokenType int

const (
	EOF TokenType = iota
	ILLEGAL

	IDENT  // marker variable or keyword
	STRING // quoted literal

	LPAREN
	RPAREN

	// Comparison operators
	LT
	LE
	GT
	GE
	EQ
	NE
	COMPATIBLE // ~=
	ARBITRARY  // ===

	// Keywords
	AND
	OR
	IN
	NOT
)

// Position is a location within the marker expression (1-based column).
type Position struct {
	Column int
	Offset int
}

// Token is a lexical token with its source position.
type Token struct {
	Type    TokenType
	Literal string
	Pos     Position
}

// keywords maps reserved identifiers to their token types.
var keywords = map[string]TokenType{
	"and": AND,
	"or":  OR,
	"in":  IN,
	"not": NOT,
}

// operatorLiterals maps comparison token types back to their spelling.
var operatorLiterals = map[TokenType]string{
	LT:         "<",
	LE:         "<=",
	GT:         ">",
	GE:         ">=",
	EQ:         "==",
	NE:         "!=",
	COMPATIBLE: "~=",
	ARBITRARY:  "===",
}

func (t TokenType) String() string {
	switch t {
	case EOF:
		return "EOF"
	case ILLEGAL:
		return "ILLEGAL"
	case IDENT:
		return "IDENT"
	case STRING:
		return "STRING"
	case LPAREN:
		return "("
	case RPAREN:
		return ")"
	case AND:
		return "and"
	case OR:
		return "or"
	case IN:
		return "in"
	case NOT:
		return "not"
	default:
		if lit, ok := operatorLiterals[t]; ok {
			return lit
		}
		return fmt.Sprintf("TokenType(%d)", int(t))
	}
}
