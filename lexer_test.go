package starlang

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func lex(t *testing.T, src string) []Token {
	t.Helper()
	toks, err := NewLexer(src, "test.star").Scan()
	if err != nil {
		t.Fatalf("lex %q: %v", src, err)
	}
	return toks
}

func tokenTypes(toks []Token) []TokenType {
	out := make([]TokenType, len(toks))
	for i, tk := range toks {
		out[i] = tk.Type
	}
	return out
}

func TestIndentDedentBalance(t *testing.T) {
	sources := []string{
		"let x = 1\n",
		"fn f(x):\n  return x\n",
		"fn f(x):\n  if x:\n    return 1\n  return 2\n",
		// No trailing newline: dedents must still close at end of input.
		"if a:\n  if b:\n    if c:\n      print(c)",
		"while x:\n  set x: x - 1\n\nprint(x)\n",
		// Blank and comment-only lines do not affect indentation.
		"fn f():\n  # comment\n\n  return 1\n",
	}
	for _, src := range sources {
		indents, dedents := 0, 0
		for _, tk := range lex(t, src) {
			switch tk.Type {
			case INDENT:
				indents++
			case DEDENT:
				dedents++
			}
		}
		if indents != dedents {
			t.Errorf("source %q: %d indents vs %d dedents", src, indents, dedents)
		}
	}
}

func TestTokenSequence(t *testing.T) {
	got := tokenTypes(lex(t, "let x = 1 + 2\n"))
	want := []TokenType{LET, ID, ASSIGN, NUMBER, PLUS, NUMBER, NEWLINE, EOF}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("token mismatch (-want +got):\n%s", diff)
	}
}

func TestBlockTokens(t *testing.T) {
	got := tokenTypes(lex(t, "fn f(x):\n  return x\n"))
	want := []TokenType{
		FN, ID, LPAREN, ID, RPAREN, COLON, NEWLINE,
		INDENT, RETURN, ID, NEWLINE, DEDENT, EOF,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("token mismatch (-want +got):\n%s", diff)
	}
}

func TestNegativeNumberVsSubtraction(t *testing.T) {
	// After an operand, '-' is subtraction.
	toks := lex(t, "let a = 1 - 2\n")
	want := []TokenType{LET, ID, ASSIGN, NUMBER, MINUS, NUMBER, NEWLINE, EOF}
	if diff := cmp.Diff(want, tokenTypes(toks)); diff != "" {
		t.Errorf("subtraction (-want +got):\n%s", diff)
	}

	// After '[' or ',' it signs the literal.
	toks = lex(t, "let a = [-1, -2]\n")
	want = []TokenType{LET, ID, ASSIGN, LSQUARE, NUMBER, COMMA, NUMBER, RSQUARE, NEWLINE, EOF}
	if diff := cmp.Diff(want, tokenTypes(toks)); diff != "" {
		t.Errorf("signed literal (-want +got):\n%s", diff)
	}
	if got := toks[4].Literal.(float64); got != -1 {
		t.Errorf("literal = %v, want -1", got)
	}
}

func TestColorLiteralAndComment(t *testing.T) {
	toks := lex(t, "let c = #ff8800  # orange\n")
	want := []TokenType{LET, ID, ASSIGN, COLOR, NEWLINE, EOF}
	if diff := cmp.Diff(want, tokenTypes(toks)); diff != "" {
		t.Fatalf("token mismatch (-want +got):\n%s", diff)
	}
	if got := toks[3].Literal.(string); got != "#ff8800" {
		t.Errorf("color literal = %q, want %q", got, "#ff8800")
	}
}

func TestStringEscapes(t *testing.T) {
	toks := lex(t, `let s = "a\n\tb\"c"`+"\n")
	if toks[3].Type != STRING {
		t.Fatalf("token 3 = %v, want STRING", toks[3].Type)
	}
	if got, want := toks[3].Literal.(string), "a\n\tb\"c"; got != want {
		t.Errorf("string literal = %q, want %q", got, want)
	}
}

func TestNewlinesInsideBracketsInsignificant(t *testing.T) {
	toks := lex(t, "let a = [1,\n  2,\n  3]\n")
	for _, tk := range toks {
		if tk.Type == INDENT || tk.Type == DEDENT {
			t.Fatalf("unexpected %v inside bracketed expression", tk.Type)
		}
	}
}

func TestTabsCountAsTwoSpaces(t *testing.T) {
	spaces := tokenTypes(lex(t, "if a:\n  print(a)\n"))
	tabs := tokenTypes(lex(t, "if a:\n\tprint(a)\n"))
	if diff := cmp.Diff(spaces, tabs); diff != "" {
		t.Errorf("tab indentation differs from spaces (-spaces +tabs):\n%s", diff)
	}
}

func TestDedentMismatchIsLexError(t *testing.T) {
	_, err := NewLexer("if a:\n    print(a)\n  print(a)\n", "test.star").Scan()
	if err == nil {
		t.Fatal("expected a lex error for inconsistent dedent")
	}
	le, ok := err.(*LexError)
	if !ok {
		t.Fatalf("error type = %T, want *LexError", err)
	}
	if le.Line != 3 {
		t.Errorf("error line = %d, want 3", le.Line)
	}
}

func TestUnterminatedString(t *testing.T) {
	_, err := NewLexer(`let s = "oops`+"\n", "test.star").Scan()
	if err == nil {
		t.Fatal("expected a lex error for unterminated string")
	}
	if !strings.Contains(err.Error(), "string") {
		t.Errorf("error %q does not mention the string", err)
	}
}
