package cnd

import (
	"context"
	"errors"
	"testing"
	"unicode/utf8"
)

// FuzzLexer tests the lexer with random inputs to find edge cases.
func FuzzLexer(f *testing.F) {
	// Seed corpus with known valid inputs
	f.Add("foo")
	f.Add("nt:file")
	f.Add("'quoted string'")
	f.Add(`'escaped \' quote'`)
	f.Add("// comment\n")
	f.Add("/* block */")
	f.Add("< > = [ ] - + ( ) , * !")
	f.Add("[nt:file] > nt:base")
	f.Add("''")

	f.Fuzz(func(t *testing.T, input string) {
		// Skip invalid UTF-8
		if !utf8.ValidString(input) {
			t.Skip("invalid UTF-8")
		}

		// Lexer should not panic on any input
		defer func() {
			if r := recover(); r != nil {
				t.Errorf("lexer panicked on input %q: %v", input, r)
			}
		}()

		lex := newLexer([]byte(input))

		for {
			tok, err := lex.next()
			if err != nil {
				// Lex errors must carry the sentinel and a position.
				if !errors.Is(err, ErrLex) {
					t.Errorf("unclassified lex error on %q: %v", input, err)
				}

				return
			}

			if tok.Kind == TokenEOF {
				return
			}

			if tok.Pos.Line < 1 || tok.Pos.Column < 1 {
				t.Errorf("token %v has invalid position %v", tok.Kind, tok.Pos)
			}
		}
	})
}

// FuzzParseString tests the parser with random inputs to find edge cases.
func FuzzParseString(f *testing.F) {
	// Seed corpus with known valid syntax
	f.Add("")
	f.Add("[nt:file]")
	f.Add("<ex='http://example.com/ns'>")
	f.Add("[nt:file] > nt:base, mix:referenceable orderable mixin")
	f.Add("[nt:a] - nt:p (String) = 'x' mandatory < '.*'")
	f.Add("[nt:a] - * (*) multiple")
	f.Add("[nt:a] + nt:child (nt:base) = nt:unstructured ! VERSION")
	f.Add("[nt:a] - nt:p (Long) = 1, 2, 3")
	f.Add("[nt:a] - nt:p (Date) = '2011-01-01T00:00:00Z'")
	f.Add("// comment\n[nt:a]")

	f.Fuzz(func(t *testing.T, input string) {
		// Skip invalid UTF-8
		if !utf8.ValidString(input) {
			t.Skip("invalid UTF-8")
		}

		// Parser should not panic on any input
		defer func() {
			if r := recover(); r != nil {
				t.Errorf("parser panicked on input %q: %v", input, r)
			}
		}()

		res, err := ParseString(context.Background(), input)

		// It's OK for parsing to fail, but every failure must be one of
		// the classified kinds.
		if err != nil {
			classified := errors.Is(err, ErrLex) ||
				errors.Is(err, ErrGrammar) ||
				errors.Is(err, ErrResolve) ||
				errors.Is(err, ErrValue) ||
				errors.Is(err, ErrSemantic)
			if !classified {
				t.Errorf("unclassified error on %q: %v", input, err)
			}

			return
		}

		// A successful parse always yields a usable prefix table.
		if res.Namespaces == nil {
			t.Fatal("successful parse returned nil namespaces")
		}
	})
}
