package format

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/dhamidi/kaleido/kal/parser"
)

type ASTJSONEncoder struct {
	w     io.Writer
	items []parser.TopLevelItem
}

func NewASTJSONEncoder(w io.Writer) *ASTJSONEncoder {
	return &ASTJSONEncoder{w: w}
}

func (e *ASTJSONEncoder) Encode(items []parser.TopLevelItem) error {
	e.items = items
	text, err := e.MarshalText()
	if err != nil {
		return err
	}
	_, err = e.w.Write(append(text, '\n'))
	return err
}

func (e *ASTJSONEncoder) MarshalText() ([]byte, error) {
	out := make([]*astJSONItem, 0, len(e.items))
	for _, item := range e.items {
		jn, err := itemToJSON(item)
		if err != nil {
			return nil, err
		}
		out = append(out, jn)
	}
	return json.MarshalIndent(out, "", "  ")
}

// MarshalExpr renders a single expression tree.
func MarshalExpr(expr parser.Expr) ([]byte, error) {
	jn, err := exprToJSON(expr)
	if err != nil {
		return nil, err
	}
	return json.MarshalIndent(jn, "", "  ")
}

type astJSONItem struct {
	Kind      string            `json:"kind"`
	Prototype *astJSONPrototype `json:"prototype"`
	Body      *astJSONNode      `json:"body,omitempty"`
}

type astJSONPrototype struct {
	Name       string   `json:"name"`
	Kind       string   `json:"kind"`
	Operator   string   `json:"operator,omitempty"`
	Precedence int      `json:"precedence,omitempty"`
	Params     []string `json:"params"`
}

type astJSONNode struct {
	Kind     string            `json:"kind"`
	Value    *float64          `json:"value,omitempty"`
	Name     string            `json:"name,omitempty"`
	Op       string            `json:"op,omitempty"`
	Operand  *astJSONNode      `json:"operand,omitempty"`
	Left     *astJSONNode      `json:"left,omitempty"`
	Right    *astJSONNode      `json:"right,omitempty"`
	Cond     *astJSONNode      `json:"cond,omitempty"`
	Then     *astJSONNode      `json:"then,omitempty"`
	Else     *astJSONNode      `json:"else,omitempty"`
	Start    *astJSONNode      `json:"start,omitempty"`
	End      *astJSONNode      `json:"end,omitempty"`
	Step     *astJSONNode      `json:"step,omitempty"`
	Bindings []*astJSONBinding `json:"bindings,omitempty"`
	Body     *astJSONNode      `json:"body,omitempty"`
	Callee   string            `json:"callee,omitempty"`
	Args     []*astJSONNode    `json:"args,omitempty"`
}

type astJSONBinding struct {
	Name string       `json:"name"`
	Init *astJSONNode `json:"init"`
}

func itemToJSON(item parser.TopLevelItem) (*astJSONItem, error) {
	proto := item.Signature()
	jp := &astJSONPrototype{
		Name:       proto.Name,
		Kind:       proto.Kind.String(),
		Operator:   proto.Operator,
		Precedence: proto.Precedence,
		Params:     proto.Params,
	}
	if jp.Params == nil {
		jp.Params = []string{}
	}

	switch it := item.(type) {
	case *parser.ExternDecl:
		return &astJSONItem{Kind: "Extern", Prototype: jp}, nil
	case *parser.FunctionDef:
		body, err := exprToJSON(it.Body)
		if err != nil {
			return nil, err
		}
		return &astJSONItem{Kind: "Function", Prototype: jp, Body: body}, nil
	default:
		return nil, fmt.Errorf("format: unsupported item %T", item)
	}
}

func exprToJSON(expr parser.Expr) (*astJSONNode, error) {
	var err error
	sub := func(e parser.Expr) *astJSONNode {
		if err != nil {
			return nil
		}
		var jn *astJSONNode
		jn, err = exprToJSON(e)
		return jn
	}

	var jn *astJSONNode
	switch e := expr.(type) {
	case *parser.LiteralExpr:
		v := e.Value
		jn = &astJSONNode{Kind: "Literal", Value: &v}
	case *parser.VariableExpr:
		jn = &astJSONNode{Kind: "Variable", Name: e.Name}
	case *parser.UnaryExpr:
		jn = &astJSONNode{Kind: "Unary", Op: e.Op, Operand: sub(e.Operand)}
	case *parser.BinaryExpr:
		jn = &astJSONNode{Kind: "Binary", Op: e.Op, Left: sub(e.Left), Right: sub(e.Right)}
	case *parser.ConditionalExpr:
		jn = &astJSONNode{Kind: "Conditional", Cond: sub(e.Cond), Then: sub(e.Then), Else: sub(e.Else)}
	case *parser.LoopExpr:
		jn = &astJSONNode{
			Kind:  "Loop",
			Name:  e.Var,
			Start: sub(e.Start),
			End:   sub(e.End),
			Step:  sub(e.Step),
			Body:  sub(e.Body),
		}
	case *parser.LetExpr:
		jn = &astJSONNode{Kind: "Let", Body: sub(e.Body)}
		for _, b := range e.Bindings {
			jn.Bindings = append(jn.Bindings, &astJSONBinding{Name: b.Name, Init: sub(b.Init)})
		}
	case *parser.CallExpr:
		jn = &astJSONNode{Kind: "Call", Callee: e.Callee}
		for _, arg := range e.Args {
			jn.Args = append(jn.Args, sub(arg))
		}
	default:
		return nil, fmt.Errorf("format: unsupported expression %T", expr)
	}
	if err != nil {
		return nil, err
	}
	return jn, nil
}
