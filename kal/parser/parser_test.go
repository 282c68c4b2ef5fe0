package parser

import (
	"errors"
	"reflect"
	"strings"
	"testing"
)

func lex(t *testing.T, src string) []Token {
	t.Helper()
	tokens, err := Tokenize([]byte(src), "")
	if err != nil {
		t.Fatalf("tokenize %q: %v", src, err)
	}
	return tokens
}

func num(v float64) Expr { return &LiteralExpr{Value: v} }
func ref(name string) Expr { return &VariableExpr{Name: name} }
func bin(op string, l, r Expr) Expr { return &BinaryExpr{Op: op, Left: l, Right: r} }
func unary(op string, operand Expr) Expr { return &UnaryExpr{Op: op, Operand: operand} }

func TestParseExpression(t *testing.T) {
	tests := []struct {
		input string
		want  Expr
	}{
		{"42", num(42)},
		{"x", ref("x")},
		{"1 + 2 * 3", bin("+", num(1), bin("*", num(2), num(3)))},
		{"1 - 2 - 3", bin("-", bin("-", num(1), num(2)), num(3))},
		{"a * b + c", bin("+", bin("*", ref("a"), ref("b")), ref("c"))},
		{"(1 + 2) * 3", bin("*", bin("+", num(1), num(2)), num(3))},
		{"a < b + 1 * c", bin("<", ref("a"), bin("+", ref("b"), bin("*", num(1), ref("c"))))},
		{"x = y = 1", bin("=", bin("=", ref("x"), ref("y")), num(1))},
		{"-x * 2", bin("*", unary("-", ref("x")), num(2))},
		{"!!x", unary("!", unary("!", ref("x")))},
		{"f()", &CallExpr{Callee: "f"}},
		{"f(1, x + 2)", &CallExpr{Callee: "f", Args: []Expr{num(1), bin("+", ref("x"), num(2))}}},
		{"f(1 2)", &CallExpr{Callee: "f", Args: []Expr{num(1), num(2)}}},
		{"if x < 1 then 0 else x", &ConditionalExpr{Cond: bin("<", ref("x"), num(1)), Then: num(0), Else: ref("x")}},
		{"for i = 1 in i", &LoopExpr{Var: "i", Start: num(1), End: num(0), Step: num(1), Body: ref("i")}},
		{"for i = 1 n in i", &LoopExpr{Var: "i", Start: num(1), End: ref("n"), Step: num(1), Body: ref("i")}},
		{"for i = 0, 2 i < n in f(i)", &LoopExpr{
			Var:   "i",
			Start: num(0),
			Step:  num(2),
			End:   bin("<", ref("i"), ref("n")),
			Body:  &CallExpr{Callee: "f", Args: []Expr{ref("i")}},
		}},
		{"let x = 1 in x", &LetExpr{Bindings: []Binding{{Name: "x", Init: num(1)}}, Body: ref("x")}},
		{"let a, b = 2 in a * b", &LetExpr{
			Bindings: []Binding{{Name: "a", Init: num(1)}, {Name: "b", Init: num(2)}},
			Body:     bin("*", ref("a"), ref("b")),
		}},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			tokens := lex(t, tt.input)
			got, rest, err := ParseExpression(tokens, NewOperatorTable())
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(rest) != 0 {
				t.Errorf("got %d leftover tokens, want 0", len(rest))
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("got %#v, want %#v", got, tt.want)
			}
		})
	}
}

func TestParseTopLevel(t *testing.T) {
	src := `
		extern sin(x);
		function add(a, b) a + b;
		add(1, 2);
	`
	items, rest, err := Parse(lex(t, src), NewOperatorTable())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rest) != 0 {
		t.Fatalf("got %d leftover tokens, want 0", len(rest))
	}
	if len(items) != 3 {
		t.Fatalf("got %d items, want 3", len(items))
	}

	ext, ok := items[0].(*ExternDecl)
	if !ok {
		t.Fatalf("item 0: got %T, want *ExternDecl", items[0])
	}
	if want := (&Prototype{Name: "sin", Kind: KindNormal, Params: []string{"x"}}); !reflect.DeepEqual(ext.Proto, want) {
		t.Errorf("extern prototype: got %#v, want %#v", ext.Proto, want)
	}

	fn, ok := items[1].(*FunctionDef)
	if !ok {
		t.Fatalf("item 1: got %T, want *FunctionDef", items[1])
	}
	if fn.Proto.Name != "add" || !reflect.DeepEqual(fn.Proto.Params, []string{"a", "b"}) {
		t.Errorf("function prototype: got %#v", fn.Proto)
	}
	if !reflect.DeepEqual(fn.Body, bin("+", ref("a"), ref("b"))) {
		t.Errorf("function body: got %#v", fn.Body)
	}

	anon, ok := items[2].(*FunctionDef)
	if !ok {
		t.Fatalf("item 2: got %T, want *FunctionDef", items[2])
	}
	if !anon.Proto.IsAnonymous() {
		t.Errorf("bare expression should be wrapped in an anonymous prototype, got %#v", anon.Proto)
	}
}

func TestParseOperatorDefinition(t *testing.T) {
	ops := NewOperatorTable()
	items, _, err := Parse(lex(t, "function binary | 5 (a b) a + b; 1 | 2 + 3"), ops)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if prec, ok := ops.Lookup("|"); !ok || prec != 5 {
		t.Errorf("Lookup(|) = %d, %v, want 5, true", prec, ok)
	}
	if len(items) != 2 {
		t.Fatalf("got %d items, want 2", len(items))
	}

	def := items[0].(*FunctionDef)
	want := &Prototype{Name: "binary|", Kind: KindBinaryOp, Operator: "|", Precedence: 5, Params: []string{"a", "b"}}
	if !reflect.DeepEqual(def.Proto, want) {
		t.Errorf("prototype: got %#v, want %#v", def.Proto, want)
	}

	use := items[1].(*FunctionDef)
	if want := bin("|", num(1), bin("+", num(2), num(3))); !reflect.DeepEqual(use.Body, want) {
		t.Errorf("body: got %#v, want %#v", use.Body, want)
	}
}

func TestParseOperatorRedefinesBuiltin(t *testing.T) {
	ops := NewOperatorTable()
	items, _, err := Parse(lex(t, "function binary + 50 (a b) a; 1 * 2 + 3"), ops)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	use := items[1].(*FunctionDef)
	if want := bin("*", num(1), bin("+", num(2), num(3))); !reflect.DeepEqual(use.Body, want) {
		t.Errorf("body: got %#v, want %#v", use.Body, want)
	}
}

func TestParseOperatorUsableInOwnBody(t *testing.T) {
	ops := NewOperatorTable()
	_, _, err := Parse(lex(t, "function binary : 1 (x y) if x then x : y else y;"), ops)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestParseOperatorDefaultPrecedence(t *testing.T) {
	tests := []struct {
		input string
		want  int
	}{
		{"function binary & (a b) a;", DefaultPrecedence},
		{"function binary & 1 (a b) a;", 1},
		{"function binary & 100 (a b) a;", 100},
		{"function binary & 7.9 (a b) a;", 7},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			ops := NewOperatorTable()
			if _, _, err := Parse(lex(t, tt.input), ops); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got, _ := ops.Lookup("&"); got != tt.want {
				t.Errorf("precedence: got %d, want %d", got, tt.want)
			}
		})
	}
}

func TestParseFailure(t *testing.T) {
	tests := []struct {
		input string
		msg   string
	}{
		{"extern unary ! (a b)", "invalid number of operands for unary operator"},
		{"extern binary % (a)", "invalid number of operands for binary operator"},
		{"function binary ~ 150 (a b) a", "invalid precedence"},
		{"function binary ~ 0 (a b) a", "invalid precedence"},
		{"extern 5 (a)", "expected function name in prototype"},
		{"extern unary x (a)", "expected unary operator"},
		{"extern foo a", "expected '(' in prototype"},
		{"extern foo (a 1)", "expected ')' in prototype"},
		{"1 ! 2", `unknown operator "!"`},
		{"{", "unexpected '{' when expecting an expression"},
		{"(1 + 2 ;", "expected ')'"},
		{"if x 1 else 2", "expected 'then'"},
		{"if x then 1 2", "expected 'else'"},
		{"for 1 = 2 in x", "expected identifier after 'for'"},
		{"for i + 1 in x", "expected '=' after 'for'"},
		{"for i = 1, 2 3 x", "expected 'in' after 'for'"},
		{"let 1 in x", "expected identifier list after 'let'"},
		{"let x + 1 in x", "expected '=' in variable initialization"},
		{"let x = 1 x", "expected 'in' after 'let'"},
		{"1; 2; )", "unexpected ')'"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			items, rest, err := Parse(lex(t, tt.input), NewOperatorTable())
			if StateOf(err) != Failure {
				t.Fatalf("got state %v (err %v), want Failure", StateOf(err), err)
			}
			var syntaxErr *SyntaxError
			if !errors.As(err, &syntaxErr) {
				t.Fatalf("got %T, want *SyntaxError", err)
			}
			if !strings.Contains(err.Error(), tt.msg) {
				t.Errorf("error %q does not mention %q", err, tt.msg)
			}
			if items != nil || rest != nil {
				t.Errorf("failure returned %d items and %d tokens, want none", len(items), len(rest))
			}
		})
	}
}

func TestSyntaxErrorPosition(t *testing.T) {
	_, _, err := Parse(lex(t, "1 +\n  {"), NewOperatorTable())
	var syntaxErr *SyntaxError
	if !errors.As(err, &syntaxErr) {
		t.Fatalf("got %v, want *SyntaxError", err)
	}
	if syntaxErr.Token == nil {
		t.Fatal("expected offending token")
	}
	if pos := syntaxErr.Token.Span.Start; pos.Line != 2 || pos.Column != 3 {
		t.Errorf("got position %s, want 2:3", pos)
	}
	if !strings.HasPrefix(err.Error(), "2:3: ") {
		t.Errorf("error %q should start with its position", err)
	}
}

func TestParseIncomplete(t *testing.T) {
	tests := []string{
		"let x = 1 in",
		"let x =",
		"1 +",
		"(1 + 2",
		"f(1, 2",
		"if x then",
		"if x then 1 else",
		"for i = 1",
		"for i = 1, 2 3 in",
		"extern",
		"extern binary",
		"extern binary |",
		"function foo(a",
		"function foo(a b)",
		"function binary | 5 (a b)",
		"-",
	}

	for _, input := range tests {
		t.Run(input, func(t *testing.T) {
			tokens := lex(t, input)
			items, rest, err := Parse(tokens, NewOperatorTable())
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(items) != 0 {
				t.Errorf("got %d items, want 0", len(items))
			}
			if !reflect.DeepEqual(rest, tokens) {
				t.Errorf("leftover %v, want the input unchanged %v", rest, tokens)
			}
		})
	}
}

func TestParseKeepsCompleteItemsBeforeIncompleteTail(t *testing.T) {
	tokens := lex(t, "1; 2 +")
	items, rest, err := Parse(tokens, NewOperatorTable())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("got %d items, want 1", len(items))
	}
	if !reflect.DeepEqual(rest, tokens[2:]) {
		t.Errorf("leftover %v, want %v", rest, tokens[2:])
	}
}

func TestParseResumesAfterIncomplete(t *testing.T) {
	ops := NewOperatorTable()
	tokens := lex(t, "let x = 1 in")

	items, rest, err := Parse(tokens, ops)
	if err != nil || len(items) != 0 {
		t.Fatalf("first pass: got %d items, err %v", len(items), err)
	}

	items, rest, err = Parse(append(rest, Ident("x")), ops)
	if err != nil {
		t.Fatalf("second pass: unexpected error: %v", err)
	}
	if len(rest) != 0 {
		t.Errorf("got %d leftover tokens, want 0", len(rest))
	}
	if len(items) != 1 {
		t.Fatalf("got %d items, want 1", len(items))
	}
	want := &LetExpr{Bindings: []Binding{{Name: "x", Init: num(1)}}, Body: ref("x")}
	if got := items[0].(*FunctionDef).Body; !reflect.DeepEqual(got, want) {
		t.Errorf("got %#v, want %#v", got, want)
	}
}

func TestParseOperationsRestoreBuffer(t *testing.T) {
	tests := []struct {
		input string
		state State
	}{
		{"let x = 1 in", Incomplete},
		{"for i = 1, 2", Incomplete},
		{"1 + (2 * 3", Incomplete},
		{"1 + (2 * 3 ;", Failure},
		{"if a then b c", Failure},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			tokens := lex(t, tt.input)
			p := newParser(tokens, NewOperatorTable())
			_, err := p.parseExpr()
			if got := StateOf(err); got != tt.state {
				t.Fatalf("got state %v, want %v", got, tt.state)
			}
			if p.tokens.len() != len(tokens) {
				t.Errorf("buffer holds %d tokens after %v, want %d", p.tokens.len(), tt.state, len(tokens))
			}
			if !reflect.DeepEqual(p.tokens.drain(), tokens) {
				t.Error("buffer order changed")
			}
		})
	}
}

func TestParsePrototypeWithoutDriver(t *testing.T) {
	tests := []struct {
		input string
		want  *Prototype
	}{
		{"foo()", &Prototype{Name: "foo", Kind: KindNormal, Params: []string{}}},
		{"unary - (v)", &Prototype{Name: "unary-", Kind: KindUnaryOp, Operator: "-", Params: []string{"v"}}},
		{"binary > 10 (a, b)", &Prototype{Name: "binary>", Kind: KindBinaryOp, Operator: ">", Precedence: 10, Params: []string{"a", "b"}}},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			p := newParser(lex(t, tt.input), NewOperatorTable())
			got, err := p.parsePrototype()
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("got %#v, want %#v", got, tt.want)
			}
		})
	}
}

func TestParseCompleteProgramLeavesNoTokens(t *testing.T) {
	program := `
		// user-defined operators
		function unary ! (v) if v then 0 else 1;
		function binary | 5 (a b) if a then 1 else if b then 1 else 0;
		function binary > 10 (a b) b < a;

		extern putchard(c);

		function fib(n)
			if n < 3 then 1 else fib(n - 1) + fib(n - 2);

		function count(n)
			let acc = 0 in
				(for i = 1, 1 i < n in acc = acc + i) | acc;

		fib(10) > 50 | !count(3);
	`
	items, rest, err := Parse(lex(t, program), NewOperatorTable())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rest) != 0 {
		t.Errorf("got %d leftover tokens, want 0", len(rest))
	}
	if len(items) != 7 {
		t.Errorf("got %d items, want 7", len(items))
	}
}
