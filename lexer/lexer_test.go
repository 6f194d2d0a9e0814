package lexer

import (
	"testing"

	"holybpf/token"
)

func kinds(toks []token.Token) []token.Kind {
	out := make([]token.Kind, len(toks))
	for i, t := range toks {
		out[i] = t.Kind
	}
	return out
}

func TestScanSimpleFunction(t *testing.T) {
	src := []byte("U0 main() { return 0; }")
	toks, err := New(src).Scan()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []token.Kind{token.U0, token.IDENTIFIER, token.LPAREN, token.RPAREN,
		token.LBRACE, token.RETURN, token.INT, token.SEMI, token.RBRACE, token.EOF}
	got := kinds(toks)
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("token %d = %s, want %s", i, got[i], want[i])
		}
	}
}

func TestScanHexAndComments(t *testing.T) {
	src := []byte("U64 x = 0xFF; // comment\n/* block */ U64 y = 10;")
	toks, err := New(src).Scan()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if toks[0].Kind != token.U64 {
		t.Fatalf("expected U64 first, got %s", toks[0].Kind)
	}
	found := false
	for _, tk := range toks {
		if tk.Kind == token.INT && tk.Literal == uint64(0xFF) {
			found = true
		}
	}
	if !found {
		t.Error("expected hex literal 0xFF to be parsed")
	}
}

func TestScanStringAndCharEscapes(t *testing.T) {
	src := []byte(`"a\nb" '\t'`)
	toks, err := New(src).Scan()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if toks[0].Literal != "a\nb" {
		t.Errorf("got %q, want %q", toks[0].Literal, "a\nb")
	}
	if toks[1].Literal != uint64('\t') {
		t.Errorf("got %v, want tab", toks[1].Literal)
	}
}

func TestUnterminatedString(t *testing.T) {
	_, err := New([]byte(`U0 main() { "unterminated ; }`)).Scan()
	if err == nil {
		t.Fatal("expected an error")
	}
	if err.Kind != "LexUnterminatedString" {
		t.Errorf("got kind %v", err.Kind)
	}
}

func TestUnterminatedComment(t *testing.T) {
	_, err := New([]byte("/* never closed")).Scan()
	if err == nil || err.Kind != "LexUnterminatedComment" {
		t.Fatalf("expected LexUnterminatedComment, got %v", err)
	}
}

func TestOverflowingIntegerLiteral(t *testing.T) {
	_, err := New([]byte("99999999999999999999")).Scan()
	if err == nil || err.Kind != "LexOverflow" {
		t.Fatalf("expected LexOverflow, got %v", err)
	}
}

func TestUnexpectedChar(t *testing.T) {
	_, err := New([]byte("U0 main() { $ }")).Scan()
	if err == nil || err.Kind != "LexUnexpectedChar" {
		t.Fatalf("expected LexUnexpectedChar, got %v", err)
	}
}

func TestMultiCharOperatorsTakePrecedence(t *testing.T) {
	toks, err := New([]byte("a <= b && c != d")).Scan()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []token.Kind{token.IDENTIFIER, token.LT_EQ, token.IDENTIFIER,
		token.AND_AND, token.IDENTIFIER, token.NOT_EQ, token.IDENTIFIER, token.EOF}
	got := kinds(toks)
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("token %d = %s, want %s", i, got[i], want[i])
		}
	}
}

// fuzz-ish totality check: the lexer always either succeeds ending in EOF
// or fails with a Lex* diagnostic, never panics.
func TestLexerTotality(t *testing.T) {
	inputs := []string{
		"", " ", "\n\n", "{{{}}}", "0x", "'", "\"", "/*", "//", "1.2.3",
		"U0 export struct class enum switch case default PrintF True False NULL",
	}
	for _, in := range inputs {
		toks, err := New([]byte(in)).Scan()
		if err == nil {
			if len(toks) == 0 || toks[len(toks)-1].Kind != token.EOF {
				t.Errorf("input %q: expected EOF-terminated stream, got %v", in, toks)
			}
		}
	}
}
