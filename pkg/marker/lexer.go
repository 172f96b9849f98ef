package marker

// Lexer tokenizes a marker expression.
type Lexer struct {
	input   string
	pos     int  // current position in input
	readPos int  // reading position (after current char)
	ch      byte // current char under examination
	col     int  // current column number (1-based)
}

// NewLexer creates a new Lexer for the given input.
func NewLexer(input string) *Lexer {
	l := &Lexer{input: input}
	l.readChar()
	return l
}

// readChar advances to the next character.
func (l *Lexer) readChar() {
	if l.readPos >= len(l.input) {
		l.ch = 0 // ASCII NUL = EOF
	} else {
		l.ch = l.input[l.readPos]
	}
	l.pos = l.readPos
	l.readPos++
	l.col++
}

// peekChar returns the next character without advancing.
func (l *Lexer) peekChar() byte {
	if l.readPos >= len(l.input) {
		return 0
	}
	return l.input[l.readPos]
}

func (l *Lexer) currentPos() Position {
	return Position{Column: l.col, Offset: l.pos}
}

func (l *Lexer) skipWhitespace() {
	for l.ch == ' ' || l.ch == '\t' {
		l.readChar()
	}
}

// NextToken returns the next token.
func (l *Lexer) NextToken() Token {
	l.skipWhitespace()

	pos := l.currentPos()

	switch l.ch {
	case 0:
		return Token{Type: EOF, Pos: pos}
	case '(':
		l.readChar()
		return Token{Type: LPAREN, Literal: "(", Pos: pos}
	case ')':
		l.readChar()
		return Token{Type: RPAREN, Literal: ")", Pos: pos}
	case '\'', '"':
		return l.readString(pos)
	case '<':
		if l.peekChar() == '=' {
			l.readChar()
			l.readChar()
			return Token{Type: LE, Literal: "<=", Pos: pos}
		}
		l.readChar()
		return Token{Type: LT, Literal: "<", Pos: pos}
	case '>':
		if l.peekChar() == '=' {
			l.readChar()
			l.readChar()
			return Token{Type: GE, Literal: ">=", Pos: pos}
		}
		l.readChar()
		return Token{Type: GT, Literal: ">", Pos: pos}
	case '=':
		return l.readEquals(pos)
	case '!':
		if l.peekChar() == '=' {
			l.readChar()
			l.readChar()
			return Token{Type: NE, Literal: "!=", Pos: pos}
		}
		l.readChar()
		return Token{Type: ILLEGAL, Literal: "!", Pos: pos}
	case '~':
		if l.peekChar() == '=' {
			l.readChar()
			l.readChar()
			return Token{Type: COMPATIBLE, Literal: "~=", Pos: pos}
		}
		l.readChar()
		return Token{Type: ILLEGAL, Literal: "~", Pos: pos}
	}

	if isIdentStart(l.ch) {
		lit := l.readIdent()
		if typ, ok := keywords[lit]; ok {
			return Token{Type: typ, Literal: lit, Pos: pos}
		}
		return Token{Type: IDENT, Literal: lit, Pos: pos}
	}

	ch := l.ch
	l.readChar()
	return Token{Type: ILLEGAL, Literal: string(ch), Pos: pos}
}

// readEquals disambiguates ==, ===, and a lone = (illegal).
func (l *Lexer) readEquals(pos Position) Token {
	if l.peekChar() != '=' {
		l.readChar()
		return Token{Type: ILLEGAL, Literal: "=", Pos: pos}
	}
	l.readChar() // second =
	if l.peekChar() == '=' {
		l.readChar()
		l.readChar()
		return Token{Type: ARBITRARY, Literal: "===", Pos: pos}
	}
	l.readChar()
	return Token{Type: EQ, Literal: "==", Pos: pos}
}

// readString reads a quoted literal. Both quote styles are accepted; the
// closing quote must match the opening one.
func (l *Lexer) readString(pos Position) Token {
	quote := l.ch
	l.readChar()

	start := l.pos
	for l.ch != quote && l.ch != 0 {
		l.readChar()
	}
	if l.ch == 0 {
		return Token{Type: ILLEGAL, Literal: l.input[start:], Pos: pos}
	}

	lit := l.input[start:l.pos]
	l.readChar() // consume closing quote
	return Token{Type: STRING, Literal: lit, Pos: pos}
}

func (l *Lexer) readIdent() string {
	start := l.pos
	for isIdentPart(l.ch) {
		l.readChar()
	}
	return l.input[start:l.pos]
}

func isIdentStart(ch byte) bool {
	return ch == '_' || (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')
}

func isIdentPart(ch byte) bool {
	return isIdentStart(ch) || (ch >= '0' && ch <= '9') || ch == '.'
}
