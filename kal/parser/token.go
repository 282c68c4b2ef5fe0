package parser

import (
	"fmt"
	"strconv"
)

type Position struct {
	File   string
	Offset int
	Line   int
	Column int
}

func (p Position) String() string {
	if p.File != "" {
		return fmt.Sprintf("%s:%d:%d", p.File, p.Line, p.Column)
	}
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

type Span struct {
	Start Position
	End   Position
}

type TokenKind int

const (
	TokenEOF TokenKind = iota
	TokenError
	TokenWhitespace
	TokenComment
	TokenLineComment

	// Data-carrying
	TokenIdent
	TokenNumber
	TokenOperator

	// Keywords
	TokenFunction
	TokenExtern
	TokenIf
	TokenThen
	TokenElse
	TokenFor
	TokenIn
	TokenLet
	TokenUnary
	TokenBinary

	// Punctuation
	TokenLParen
	TokenRParen
	TokenLBrace
	TokenRBrace
	TokenComma
	TokenDelimiter
)

var tokenKindNames = map[TokenKind]string{
	TokenEOF:         "EOF",
	TokenError:       "Error",
	TokenWhitespace:  "Whitespace",
	TokenComment:     "Comment",
	TokenLineComment: "LineComment",
	TokenIdent:       "Identifier",
	TokenNumber:      "Number",
	TokenOperator:    "Operator",
	TokenFunction:    "function",
	TokenExtern:      "extern",
	TokenIf:          "if",
	TokenThen:        "then",
	TokenElse:        "else",
	TokenFor:         "for",
	TokenIn:          "in",
	TokenLet:         "let",
	TokenUnary:       "unary",
	TokenBinary:      "binary",
	TokenLParen:      "(",
	TokenRParen:      ")",
	TokenLBrace:      "{",
	TokenRBrace:      "}",
	TokenComma:       ",",
	TokenDelimiter:   ";",
}

func (k TokenKind) String() string {
	if name, ok := tokenKindNames[k]; ok {
		return name
	}
	return "Unknown"
}

// Token is a single lexical token. Identifiers and operators carry their
// text in Literal; numbers carry both the source text and the parsed Value.
type Token struct {
	Kind    TokenKind
	Literal string
	Value   float64
	Span    Span
}

func (t Token) String() string {
	switch t.Kind {
	case TokenIdent:
		return fmt.Sprintf("identifier %q", t.Literal)
	case TokenNumber:
		return "number " + strconv.FormatFloat(t.Value, 'g', -1, 64)
	case TokenOperator:
		return fmt.Sprintf("operator %q", t.Literal)
	}
	return fmt.Sprintf("'%s'", t.Kind)
}

// Ident, Number, Operator and Plain build position-less tokens. They are
// what a tokenizer-less caller (tests, synthesized input) feeds the parser.
func Ident(name string) Token {
	return Token{Kind: TokenIdent, Literal: name}
}

func Number(value float64) Token {
	return Token{Kind: TokenNumber, Literal: strconv.FormatFloat(value, 'f', -1, 64), Value: value}
}

func Operator(symbol string) Token {
	return Token{Kind: TokenOperator, Literal: symbol}
}

func Plain(kind TokenKind) Token {
	return Token{Kind: kind, Literal: kind.String()}
}

var keywords = map[string]TokenKind{
	"function": TokenFunction,
	"extern":   TokenExtern,
	"if":       TokenIf,
	"then":     TokenThen,
	"else":     TokenElse,
	"for":      TokenFor,
	"in":       TokenIn,
	"let":      TokenLet,
	"unary":    TokenUnary,
	"binary":   TokenBinary,
}

func LookupKeyword(ident string) TokenKind {
	if kind, ok := keywords[ident]; ok {
		return kind
	}
	return TokenIdent
}

// Keywords returns the reserved words in declaration order.
func Keywords() []string {
	return []string{"function", "extern", "if", "then", "else", "for", "in", "let", "unary", "binary"}
}
