package lexer

import (
	"testing"

	"github.com/altolang/alto/internal/token"
)

func TestLexerBasicTokens(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want []token.Kind
	}{
		{"empty", "", []token.Kind{token.End}},
		{"ident", "foo bar_2", []token.Kind{token.Word, token.Word, token.End}},
		{"number", "42 3.14 1e10 2.5e-3", []token.Kind{token.Number, token.Number, token.Number, token.Number, token.End}},
		{"string", `"hi" 'there'`, []token.Kind{token.String, token.String, token.End}},
		{"punct", "... => == != <= >= && ||", []token.Kind{
			token.Punctuation, token.Punctuation, token.Punctuation, token.Punctuation,
			token.Punctuation, token.Punctuation, token.Punctuation, token.Punctuation, token.End,
		}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			toks := New(tc.src).Tokens()
			if len(toks) != len(tc.want) {
				t.Fatalf("got %d tokens, want %d: %+v", len(toks), len(tc.want), toks)
			}
			for i, k := range tc.want {
				if toks[i].Kind != k {
					t.Errorf("token %d: got %v, want %v", i, toks[i].Kind, k)
				}
			}
		})
	}
}

func TestLexerShebangSkipped(t *testing.T) {
	toks := New("#!/usr/bin/alto\nvar x = 1").Tokens()
	if toks[0].Kind != token.Word || toks[0].Text != "var" {
		t.Fatalf("expected 'var' first, got %+v", toks[0])
	}
}

func TestLexerLineComment(t *testing.T) {
	toks := New("1 // comment\n2").Tokens()
	if len(toks) != 3 || toks[0].Number != 1 || toks[1].Number != 2 {
		t.Fatalf("unexpected tokens: %+v", toks)
	}
}

func TestLexerStringEscapes(t *testing.T) {
	toks := New(`"a\nb\"c\\d"`).Tokens()
	want := "a\nb\"c\\d"
	if toks[0].Text != want {
		t.Fatalf("got %q, want %q", toks[0].Text, want)
	}
}

func TestLexerPositions(t *testing.T) {
	toks := New("var\nfoo").Tokens()
	if toks[0].Pos.Line != 1 || toks[0].Pos.Column != 1 {
		t.Fatalf("bad position for 'var': %+v", toks[0].Pos)
	}
	if toks[1].Pos.Line != 2 || toks[1].Pos.Column != 1 {
		t.Fatalf("bad position for 'foo': %+v", toks[1].Pos)
	}
}

func TestLexerIllegalCharacter(t *testing.T) {
	l := New("1 @ 2")
	toks := l.Tokens()
	if len(l.Errors()) != 1 {
		t.Fatalf("expected 1 lex error, got %d", len(l.Errors()))
	}
	foundIllegal := false
	for _, tok := range toks {
		if tok.Kind == token.Illegal {
			foundIllegal = true
		}
	}
	if !foundIllegal {
		t.Fatalf("expected an Illegal token in %+v", toks)
	}
}

func TestLexerUnicodeColumns(t *testing.T) {
	toks := New("var Δ = 1").Tokens()
	// v a r _ Δ -> Δ starts at column 5
	if toks[1].Text != "Δ" || toks[1].Pos.Column != 5 {
		t.Fatalf("got %+v", toks[1])
	}
}

func TestLexerCRLFAndLoneCR(t *testing.T) {
	for _, src := range []string{"a\r\nb", "a\nb", "a\rb"} {
		toks := New(src).Tokens()
		if toks[1].Pos.Line != 2 {
			t.Fatalf("src %q: expected line 2 for second token, got %+v", src, toks[1].Pos)
		}
	}
}
