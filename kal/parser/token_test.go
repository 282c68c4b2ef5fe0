package parser

import (
	"testing"
)

func TestTokenKindString(t *testing.T) {
	tests := []struct {
		kind TokenKind
		want string
	}{
		{TokenEOF, "EOF"},
		{TokenIdent, "Identifier"},
		{TokenNumber, "Number"},
		{TokenOperator, "Operator"},
		{TokenFunction, "function"},
		{TokenBinary, "binary"},
		{TokenLParen, "("},
		{TokenRBrace, "}"},
		{TokenDelimiter, ";"},
		{TokenKind(9999), "Unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := tt.kind.String(); got != tt.want {
				t.Errorf("TokenKind(%d).String() = %q, want %q", tt.kind, got, tt.want)
			}
		})
	}
}

func TestTokenString(t *testing.T) {
	tests := []struct {
		tok  Token
		want string
	}{
		{Ident("foo"), `identifier "foo"`},
		{Number(2.5), "number 2.5"},
		{Operator("|"), `operator "|"`},
		{Plain(TokenIn), "'in'"},
		{Plain(TokenComma), "','"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := tt.tok.String(); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestLookupKeyword(t *testing.T) {
	for _, kw := range Keywords() {
		if LookupKeyword(kw) == TokenIdent {
			t.Errorf("LookupKeyword(%q) = Identifier, want a keyword", kw)
		}
	}
	for _, ident := range []string{"fn", "while", "Function", "lets"} {
		if got := LookupKeyword(ident); got != TokenIdent {
			t.Errorf("LookupKeyword(%q) = %v, want Identifier", ident, got)
		}
	}
}
