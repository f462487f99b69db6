package parser

import (
	"strings"
	"testing"
)

func tokenize(t *testing.T, source string) []Token {
	t.Helper()
	tokens, err := Tokenize(source)
	if err != nil {
		t.Fatalf("Tokenize(%q): %v", source, err)
	}
	return tokens
}

func wantTokens(t *testing.T, got []Token, want ...Token) {
	t.Helper()
	if len(got) != len(want)+1 {
		t.Fatalf("got %d tokens, want %d plus EOF: %v", len(got), len(want), got)
	}
	for idx, w := range want {
		if got[idx].Type != w.Type || got[idx].Text != w.Text {
			t.Fatalf("token %d = {%v %q}, want {%v %q}",
				idx, got[idx].Type, got[idx].Text, w.Type, w.Text)
		}
	}
	if got[len(got)-1].Type != EOF {
		t.Fatalf("missing trailing EOF token")
	}
}

func TestTokenizeDeclaration(t *testing.T) {
	wantTokens(t, tokenize(t, `let x = 42`),
		Token{Type: KEYWORD, Text: "let"},
		Token{Type: IDENT, Text: "x"},
		Token{Type: OP, Text: "="},
		Token{Type: NUMBER, Text: "42"},
	)
}

func TestTokenizeKeywordsVersusIdents(t *testing.T) {
	tokens := tokenize(t, "learn teach lettuce forge")
	wantTokens(t, tokens,
		Token{Type: KEYWORD, Text: "learn"},
		Token{Type: KEYWORD, Text: "teach"},
		Token{Type: IDENT, Text: "lettuce"},
		Token{Type: IDENT, Text: "forge"},
	)
}

func TestTokenizeTwoCharOperators(t *testing.T) {
	wantTokens(t, tokenize(t, "=> -> == != <= >= && || << >>"),
		Token{Type: OP, Text: "=>"},
		Token{Type: OP, Text: "->"},
		Token{Type: OP, Text: "=="},
		Token{Type: OP, Text: "!="},
		Token{Type: OP, Text: "<="},
		Token{Type: OP, Text: ">="},
		Token{Type: OP, Text: "&&"},
		Token{Type: OP, Text: "||"},
		Token{Type: OP, Text: "<<"},
		Token{Type: OP, Text: ">>"},
	)
}

func TestTokenizeNumberWithSeparators(t *testing.T) {
	wantTokens(t, tokenize(t, "1_000_000 3.14"),
		Token{Type: NUMBER, Text: "1000000"},
		Token{Type: NUMBER, Text: "3.14"},
	)
}

func TestTokenizeDotAfterNumberIsMemberAccess(t *testing.T) {
	wantTokens(t, tokenize(t, "3.sqrt"),
		Token{Type: NUMBER, Text: "3"},
		Token{Type: OP, Text: "."},
		Token{Type: IDENT, Text: "sqrt"},
	)
}

func TestTokenizeStringEscapes(t *testing.T) {
	wantTokens(t, tokenize(t, `"a\nb\"c"`),
		Token{Type: STRING, Text: "a\nb\"c"},
	)
}

func TestTokenizeComments(t *testing.T) {
	wantTokens(t, tokenize(t, "1 // line\n/* block\nstill */ 2"),
		Token{Type: NUMBER, Text: "1"},
		Token{Type: NUMBER, Text: "2"},
	)
}

func TestTokenizeTemplate(t *testing.T) {
	wantTokens(t, tokenize(t, "`n=${x}!`"),
		Token{Type: TEMPLATE_START, Text: "`"},
		Token{Type: TEMPLATE_TEXT, Text: "n="},
		Token{Type: TEMPLATE_EXPR_START, Text: "${"},
		Token{Type: IDENT, Text: "x"},
		Token{Type: TEMPLATE_EXPR_END, Text: "}"},
		Token{Type: TEMPLATE_TEXT, Text: "!"},
		Token{Type: TEMPLATE_END, Text: "`"},
	)
}

func TestTokenizeTemplateExprWithBraces(t *testing.T) {
	// Braces inside ${...} nest; only the balancing '}' closes the
	// interpolation.
	wantTokens(t, tokenize(t, "`${ {x: 1} }`"),
		Token{Type: TEMPLATE_START, Text: "`"},
		Token{Type: TEMPLATE_EXPR_START, Text: "${"},
		Token{Type: PUNCT, Text: "{"},
		Token{Type: IDENT, Text: "x"},
		Token{Type: PUNCT, Text: ":"},
		Token{Type: NUMBER, Text: "1"},
		Token{Type: PUNCT, Text: "}"},
		Token{Type: TEMPLATE_EXPR_END, Text: "}"},
		Token{Type: TEMPLATE_END, Text: "`"},
	)
}

func TestTokenizeErrors(t *testing.T) {
	cases := []struct {
		source string
		want   string
	}{
		{`"open`, "unterminated string literal"},
		{"`open", "unterminated template literal"},
		{"/* open", "unterminated block comment"},
		{"let @ = 1", "unexpected character '@'"},
	}
	for _, tc := range cases {
		_, err := Tokenize(tc.source)
		if err == nil || !strings.Contains(err.Error(), tc.want) {
			t.Fatalf("Tokenize(%q) error = %v, want %q", tc.source, err, tc.want)
		}
	}
}

func TestTokenizeErrorCarriesPosition(t *testing.T) {
	_, err := Tokenize("let x =\n  @")
	if err == nil || !strings.HasPrefix(err.Error(), "2:3:") {
		t.Fatalf("error = %v, want 2:3 prefix", err)
	}
}
