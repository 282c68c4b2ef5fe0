package grammar

import (
	"strings"
	"testing"

	"github.com/dhamidi/kaleido/kal/parser"
)

func mustKalRecognizer(t *testing.T) *Recognizer {
	t.Helper()
	r, err := NewKalRecognizer()
	if err != nil {
		t.Fatalf("NewKalRecognizer: %v", err)
	}
	return r
}

func tokenize(t *testing.T, src string) []parser.Token {
	t.Helper()
	tokens, err := parser.Tokenize([]byte(src), "")
	if err != nil {
		t.Fatalf("tokenize %q: %v", src, err)
	}
	return tokens
}

var acceptedPrograms = []string{
	"",
	";;",
	"1",
	"extern sin(x);",
	"function fib(n) if n < 3 then 1 else fib(n-1) + fib(n-2);",
	"function f(a, b c) a*b+c; f(1, 2 3)",
	"function unary ! (v) if v then 0 else 1; !1",
	"function binary | 5 (a b) a; 1 | 2",
	"function binary : (a b) b;",
	"for i = 1, 2 i < 10 in f(i)",
	"for i = 1 in i",
	"for i = 1, 2 in i",
	"let a = 1, b in a + b",
	"-(1 + 2) * --x",
	"g()",
}

func TestRecognize(t *testing.T) {
	r := mustKalRecognizer(t)

	for _, src := range acceptedPrograms {
		t.Run(src, func(t *testing.T) {
			if err := r.Recognize(tokenize(t, src)); err != nil {
				t.Errorf("Recognize(%q) = %v, want nil", src, err)
			}
		})
	}

	rejected := []struct {
		src  string
		want string
	}{
		{src: "1 + )", want: "')' is not allowed"},
		{src: "extern ();", want: "'(' is not allowed"},
		{src: "let in x", want: "'in' is not allowed"},
		{src: "function f(x)", want: "unexpected end of input"},
		{src: "if 1 then 2", want: "unexpected end of input"},
		{src: "(1", want: "unexpected end of input"},
		{src: "x { }", want: "'{' is not allowed"},
	}
	for _, tt := range rejected {
		t.Run(tt.src, func(t *testing.T) {
			err := r.Recognize(tokenize(t, tt.src))
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Recognize(%q) = %v, want error containing %q", tt.src, err, tt.want)
			}
		})
	}
}

// Everything the parser accepts must be derivable from the grammar.
func TestRecognizeAgreesWithParser(t *testing.T) {
	r := mustKalRecognizer(t)

	for _, src := range acceptedPrograms {
		tokens := tokenize(t, src)
		_, leftover, err := parser.Parse(tokens, nil)
		if err != nil || len(leftover) > 0 {
			t.Errorf("parser rejected %q: err=%v leftover=%v", src, err, leftover)
			continue
		}
		if err := r.Recognize(tokens); err != nil {
			t.Errorf("parser accepted %q but the grammar did not: %v", src, err)
		}
	}
}

func TestNewRecognizer(t *testing.T) {
	tests := []struct {
		name  string
		src   string
		start string
		want  string
	}{
		{name: "missing start", src: `A = "a" .`, start: "B", want: `"B" not found`},
		{name: "range outside lexical production", src: `A = "a" … "z" .`, start: "A", want: "character range"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, err := Check("test.ebnf", strings.NewReader(tt.src), "")
			if err != nil {
				t.Fatalf("Check: %v", err)
			}
			_, err = NewRecognizer(g, tt.start)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("err = %v, want it to contain %q", err, tt.want)
			}
		})
	}
}

func TestRecognizer_Rules(t *testing.T) {
	g, err := Check("test.ebnf", strings.NewReader(`S = "a" [ "b" ] { S } .`), "S")
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	r, err := NewRecognizer(g, "S")
	if err != nil {
		t.Fatalf("NewRecognizer: %v", err)
	}
	want := []string{
		`S#1 = "b" .`,
		`S#1 = .`,
		`S#2 = S S#2 .`,
		`S#2 = .`,
		`S = "a" S#1 S#2 .`,
	}
	got := r.Rules()
	if strings.Join(got, "\n") != strings.Join(want, "\n") {
		t.Errorf("Rules() =\n%s\nwant\n%s", strings.Join(got, "\n"), strings.Join(want, "\n"))
	}

	for _, tt := range []struct {
		src string
		ok  bool
	}{
		{"a", true},
		{"a b a a b", true},
		{"b", false},
	} {
		var tokens []parser.Token
		for _, f := range strings.Fields(tt.src) {
			tokens = append(tokens, parser.Operator(f))
		}
		if err := r.Recognize(tokens); (err == nil) != tt.ok {
			t.Errorf("Recognize(%q) = %v, want ok=%v", tt.src, err, tt.ok)
		}
	}
}
