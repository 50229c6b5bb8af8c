package cnd

import "strings"

// lexer produces the token stream for the parser. It tracks the 1-based
// line and column of every token for error reporting.
type lexer struct {
	input []byte
	pos   int
	line  int
	col   int
}

func newLexer(input []byte) *lexer {
	return &lexer{input: input, line: 1, col: 1}
}

// position returns the lexer's current source position.
func (l *lexer) position() Position {
	return Position{Line: l.line, Column: l.col}
}

// advance consumes one byte, updating line and column counters.
func (l *lexer) advance() byte {
	c := l.input[l.pos]
	l.pos++

	if c == '\n' {
		l.line++
		l.col = 1
	} else {
		l.col++
	}

	return c
}

// peek returns the next byte without consuming it, or 0 at end of input.
func (l *lexer) peek() byte {
	if l.pos >= len(l.input) {
		return 0
	}

	return l.input[l.pos]
}

// peekAt returns the byte at offset from the current position, or 0 when
// past the end of input.
func (l *lexer) peekAt(offset int) byte {
	if l.pos+offset >= len(l.input) {
		return 0
	}

	return l.input[l.pos+offset]
}

// next returns the next token. At end of input it returns a TokenEOF token;
// it never returns a valid token alongside a non-nil error.
func (l *lexer) next() (Token, error) {
	if err := l.skipSpaceAndComments(); err != nil {
		return Token{}, err
	}

	pos := l.position()

	if l.pos >= len(l.input) {
		return Token{Kind: TokenEOF, Pos: pos}, nil
	}

	c := l.peek()

	switch {
	case c == '\'':
		return l.lexQuoted(pos)

	case isWordByte(c):
		return l.lexWord(pos), nil

	default:
		if kind, ok := symbolKind[c]; ok {
			l.advance()

			return Token{Kind: kind, Text: string(c), Pos: pos}, nil
		}

		return Token{}, newErrorf(ErrLex,
			"unexpected character '%c'", c).WithPosition(pos)
	}
}

// skipSpaceAndComments discards whitespace, "//" line comments, and
// "/* ... */" block comments. An unterminated block comment is an error.
func (l *lexer) skipSpaceAndComments() error {
	for l.pos < len(l.input) {
		switch c := l.peek(); {
		case c == ' ' || c == '\t' || c == '\r' || c == '\n':
			l.advance()

		case c == '/' && l.peekAt(1) == '/':
			for l.pos < len(l.input) && l.peek() != '\n' {
				l.advance()
			}

		case c == '/' && l.peekAt(1) == '*':
			pos := l.position()
			l.advance() // '/'
			l.advance() // '*'

			for {
				if l.pos >= len(l.input) {
					return newError(ErrLex,
						"unterminated comment").WithPosition(pos)
				}

				if l.advance() == '*' && l.peek() == '/' {
					l.advance()

					break
				}
			}

		default:
			return nil
		}
	}

	return nil
}

// lexQuoted consumes a single-quoted string. A backslash escapes the
// following byte, so quotes and backslashes can appear in the value.
func (l *lexer) lexQuoted(pos Position) (Token, error) {
	l.advance() // opening quote

	var text strings.Builder

	for {
		if l.pos >= len(l.input) {
			return Token{}, newError(ErrLex,
				"unterminated string").WithPosition(pos)
		}

		c := l.advance()

		switch c {
		case '\'':
			return Token{
				Kind:   TokenString,
				Text:   text.String(),
				Quoted: true,
				Pos:    pos,
			}, nil

		case '\\':
			if l.pos >= len(l.input) {
				return Token{}, newError(ErrLex,
					"unterminated string").WithPosition(pos)
			}

			text.WriteByte(l.advance())

		default:
			text.WriteByte(c)
		}
	}
}

// lexWord consumes a maximal run of word bytes as an unquoted string.
func (l *lexer) lexWord(pos Position) Token {
	start := l.pos
	for l.pos < len(l.input) && isWordByte(l.peek()) {
		l.advance()
	}

	return Token{
		Kind: TokenString,
		Text: string(l.input[start:l.pos]),
		Pos:  pos,
	}
}

// isWordByte reports whether c may appear in an unquoted string.
func isWordByte(c byte) bool {
	switch {
	case c >= 'a' && c <= 'z':
		return true
	case c >= 'A' && c <= 'Z':
		return true
	case c >= '0' && c <= '9':
		return true
	case c == ':' || c == '_':
		return true
	default:
		return false
	}
}
