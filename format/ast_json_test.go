package format

import (
	"bytes"
	"encoding/json"
	"reflect"
	"testing"

	"github.com/dhamidi/kaleido/kal/parser"
)

func TestASTJSONEncoder(t *testing.T) {
	var buf bytes.Buffer
	items := parseSource(t, "extern sin(x); function binary | 5 (a b) a; f(1 + y)")
	if err := NewASTJSONEncoder(&buf).Encode(items); err != nil {
		t.Fatalf("Encode: %v", err)
	}

	var got []map[string]any
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, buf.String())
	}
	if len(got) != 3 {
		t.Fatalf("got %d items, want 3", len(got))
	}

	kinds := []string{got[0]["kind"].(string), got[1]["kind"].(string), got[2]["kind"].(string)}
	if want := []string{"Extern", "Function", "Function"}; !reflect.DeepEqual(kinds, want) {
		t.Errorf("item kinds = %v, want %v", kinds, want)
	}

	op := got[1]["prototype"].(map[string]any)
	if op["name"] != "binary|" || op["kind"] != "BinaryOperator" || op["precedence"] != 5.0 {
		t.Errorf("operator prototype = %v", op)
	}

	anon := got[2]["prototype"].(map[string]any)
	if params, ok := anon["params"].([]any); !ok || len(params) != 0 {
		t.Errorf("anonymous prototype params = %v, want []", anon["params"])
	}

	body := got[2]["body"].(map[string]any)
	if body["kind"] != "Call" || body["callee"] != "f" {
		t.Fatalf("body = %v, want call of f", body)
	}
	arg := body["args"].([]any)[0].(map[string]any)
	if arg["kind"] != "Binary" || arg["op"] != "+" {
		t.Errorf("argument = %v, want binary +", arg)
	}
}

func TestMarshalExpr(t *testing.T) {
	tests := []struct {
		name string
		expr parser.Expr
		want map[string]any
	}{
		{
			name: "zero literal keeps its value",
			expr: &parser.LiteralExpr{Value: 0},
			want: map[string]any{"kind": "Literal", "value": 0.0},
		},
		{
			name: "variable",
			expr: &parser.VariableExpr{Name: "x"},
			want: map[string]any{"kind": "Variable", "name": "x"},
		},
		{
			name: "unary",
			expr: &parser.UnaryExpr{Op: "!", Operand: &parser.VariableExpr{Name: "x"}},
			want: map[string]any{
				"kind":    "Unary",
				"op":      "!",
				"operand": map[string]any{"kind": "Variable", "name": "x"},
			},
		},
		{
			name: "let",
			expr: &parser.LetExpr{
				Bindings: []parser.Binding{{Name: "a", Init: &parser.LiteralExpr{Value: 1}}},
				Body:     &parser.VariableExpr{Name: "a"},
			},
			want: map[string]any{
				"kind": "Let",
				"bindings": []any{
					map[string]any{"name": "a", "init": map[string]any{"kind": "Literal", "value": 1.0}},
				},
				"body": map[string]any{"kind": "Variable", "name": "a"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			text, err := MarshalExpr(tt.expr)
			if err != nil {
				t.Fatalf("MarshalExpr: %v", err)
			}
			var got map[string]any
			if err := json.Unmarshal(text, &got); err != nil {
				t.Fatalf("Unmarshal: %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("MarshalExpr = %v, want %v", got, tt.want)
			}
		})
	}
}
