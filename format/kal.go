package format

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/dhamidi/kaleido/kal/parser"
)

// KalEncoder prints top-level items back to Kaleidoscope source. Every
// compound expression is parenthesized, so the output parses to the same
// tree regardless of the operator table in effect.
type KalEncoder struct {
	w     io.Writer
	items []parser.TopLevelItem
}

func NewKalEncoder(w io.Writer) *KalEncoder {
	return &KalEncoder{w: w}
}

func (e *KalEncoder) Encode(items []parser.TopLevelItem) error {
	e.items = items
	text, err := e.MarshalText()
	if err != nil {
		return err
	}
	_, err = e.w.Write(text)
	return err
}

func (e *KalEncoder) MarshalText() ([]byte, error) {
	var sb strings.Builder
	for _, item := range e.items {
		switch it := item.(type) {
		case *parser.ExternDecl:
			sb.WriteString("extern ")
			writePrototype(&sb, it.Proto)
		case *parser.FunctionDef:
			if !it.Proto.IsAnonymous() {
				sb.WriteString("function ")
				writePrototype(&sb, it.Proto)
				sb.WriteByte(' ')
			}
			if err := writeExpr(&sb, it.Body); err != nil {
				return nil, err
			}
		default:
			return nil, fmt.Errorf("format: unsupported item %T", item)
		}
		sb.WriteString(";\n")
	}
	return []byte(sb.String()), nil
}

// FormatExpr renders a single expression as source text.
func FormatExpr(expr parser.Expr) (string, error) {
	var sb strings.Builder
	if err := writeExpr(&sb, expr); err != nil {
		return "", err
	}
	return sb.String(), nil
}

func writePrototype(sb *strings.Builder, proto *parser.Prototype) {
	switch proto.Kind {
	case parser.KindUnaryOp:
		fmt.Fprintf(sb, "unary %s ", proto.Operator)
	case parser.KindBinaryOp:
		fmt.Fprintf(sb, "binary %s %d ", proto.Operator, proto.Precedence)
	default:
		sb.WriteString(proto.Name)
	}
	sb.WriteByte('(')
	sb.WriteString(strings.Join(proto.Params, ", "))
	sb.WriteByte(')')
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func writeExpr(sb *strings.Builder, expr parser.Expr) error {
	switch e := expr.(type) {
	case *parser.LiteralExpr:
		sb.WriteString(formatNumber(e.Value))
	case *parser.VariableExpr:
		sb.WriteString(e.Name)
	case *parser.UnaryExpr:
		var operand strings.Builder
		if err := writeExpr(&operand, e.Operand); err != nil {
			return err
		}
		sb.WriteString(e.Op)
		if opensComment(e.Op, operand.String()) {
			sb.WriteByte(' ')
		}
		sb.WriteString(operand.String())
	case *parser.BinaryExpr:
		sb.WriteByte('(')
		if err := writeExpr(sb, e.Left); err != nil {
			return err
		}
		fmt.Fprintf(sb, " %s ", e.Op)
		if err := writeExpr(sb, e.Right); err != nil {
			return err
		}
		sb.WriteByte(')')
	case *parser.CallExpr:
		sb.WriteString(e.Callee)
		sb.WriteByte('(')
		for i, arg := range e.Args {
			if i > 0 {
				sb.WriteString(", ")
			}
			if err := writeExpr(sb, arg); err != nil {
				return err
			}
		}
		sb.WriteByte(')')
	case *parser.ConditionalExpr:
		return writeParts(sb, "(if ", e.Cond, " then ", e.Then, " else ", e.Else, ")")
	case *parser.LoopExpr:
		// step and end sit next to each other without a separator, so
		// both are wrapped to keep a trailing name from turning into a call
		return writeParts(sb, "(for "+e.Var+" = ", e.Start, ", (", e.Step, ") (", e.End, ") in ", e.Body, ")")
	case *parser.LetExpr:
		sb.WriteString("(let ")
		for i, b := range e.Bindings {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(b.Name)
			sb.WriteString(" = ")
			if err := writeExpr(sb, b.Init); err != nil {
				return err
			}
		}
		return writeParts(sb, " in ", e.Body, ")")
	default:
		return fmt.Errorf("format: unsupported expression %T", expr)
	}
	return nil
}

// opensComment reports whether writing next right after op would start a
// "//" or "/*" comment.
func opensComment(op, next string) bool {
	return strings.HasSuffix(op, "/") && (strings.HasPrefix(next, "/") || strings.HasPrefix(next, "*"))
}

// writeParts writes a mix of literal strings and expressions in order.
func writeParts(sb *strings.Builder, parts ...any) error {
	for _, part := range parts {
		switch v := part.(type) {
		case string:
			sb.WriteString(v)
		case parser.Expr:
			if err := writeExpr(sb, v); err != nil {
				return err
			}
		}
	}
	return nil
}
