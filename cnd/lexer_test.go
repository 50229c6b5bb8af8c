package cnd

import (
	"errors"
	"testing"
)

func lexAll(t *testing.T, input string) []Token {
	t.Helper()

	lex := newLexer([]byte(input))

	var toks []Token

	for {
		tok, err := lex.next()
		if err != nil {
			t.Fatalf("lex error: %v", err)
		}

		toks = append(toks, tok)

		if tok.Kind == TokenEOF {
			return toks
		}
	}
}

func TestLexer_Symbols(t *testing.T) {
	toks := lexAll(t, "< > = [ ] - + ( ) , * !")

	want := []TokenKind{
		TokenLAngle, TokenRAngle, TokenEquals, TokenLBracket, TokenRBracket,
		TokenDash, TokenPlus, TokenLParen, TokenRParen, TokenComma,
		TokenStar, TokenBang, TokenEOF,
	}

	if len(toks) != len(want) {
		t.Fatalf("expected %d tokens, got %d", len(want), len(toks))
	}

	for i, kind := range want {
		if toks[i].Kind != kind {
			t.Errorf("token %d: expected %v, got %v", i, kind, toks[i].Kind)
		}
	}
}

func TestLexer_Strings(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		want   string
		quoted bool
	}{
		{name: "unquoted word", input: "orderable", want: "orderable"},
		{name: "prefixed name", input: "nt:file", want: "nt:file"},
		{name: "underscore and digits", input: "my_type_2", want: "my_type_2"},
		{name: "quoted", input: "'hello world'", want: "hello world", quoted: true},
		{name: "quoted empty", input: "''", want: "", quoted: true},
		{name: "escaped quote", input: `'it\'s'`, want: "it's", quoted: true},
		{name: "escaped backslash", input: `'a\\b'`, want: `a\b`, quoted: true},
		{name: "quoted uri", input: "'http://example.com/ns'", want: "http://example.com/ns", quoted: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			toks := lexAll(t, tt.input)
			if len(toks) != 2 {
				t.Fatalf("expected 2 tokens, got %d", len(toks))
			}

			tok := toks[0]
			if tok.Kind != TokenString {
				t.Fatalf("expected string token, got %v", tok.Kind)
			}

			if tok.Text != tt.want {
				t.Errorf("expected text %q, got %q", tt.want, tok.Text)
			}

			if tok.Quoted != tt.quoted {
				t.Errorf("expected quoted=%v, got %v", tt.quoted, tok.Quoted)
			}
		})
	}
}

func TestLexer_Comments(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{name: "line comment", input: "// a comment\nfoo"},
		{name: "block comment", input: "/* a\nmultiline\ncomment */ foo"},
		{name: "comment between tokens", input: "/**/foo// trailing"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			toks := lexAll(t, tt.input)
			if len(toks) != 2 {
				t.Fatalf("expected 2 tokens, got %d", len(toks))
			}

			if toks[0].Kind != TokenString || toks[0].Text != "foo" {
				t.Errorf("expected string 'foo', got %v %q", toks[0].Kind, toks[0].Text)
			}
		})
	}
}

func TestLexer_Positions(t *testing.T) {
	toks := lexAll(t, "foo\n  bar")

	if toks[0].Pos != (Position{Line: 1, Column: 1}) {
		t.Errorf("expected 1:1, got %v", toks[0].Pos)
	}

	if toks[1].Pos != (Position{Line: 2, Column: 3}) {
		t.Errorf("expected 2:3, got %v", toks[1].Pos)
	}
}

func TestLexer_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{name: "unterminated string", input: "'never closed"},
		{name: "unterminated escape", input: `'trailing\`},
		{name: "unterminated comment", input: "/* never closed"},
		{name: "illegal character", input: "foo @ bar"},
		{name: "illegal semicolon", input: ";"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lex := newLexer([]byte(tt.input))

			var err error
			for err == nil {
				var tok Token

				tok, err = lex.next()
				if err == nil && tok.Kind == TokenEOF {
					t.Fatal("expected a lex error, got EOF")
				}
			}

			if !errors.Is(err, ErrLex) {
				t.Errorf("expected ErrLex, got %v", err)
			}
		})
	}
}
