package parser

// Expr is an expression node. Every child is owned by exactly one parent.
type Expr interface {
	exprNode()
}

type LiteralExpr struct {
	Value float64
}

type VariableExpr struct {
	Name string
}

type UnaryExpr struct {
	Op      string
	Operand Expr
}

type BinaryExpr struct {
	Op    string
	Left  Expr
	Right Expr
}

type ConditionalExpr struct {
	Cond Expr
	Then Expr
	Else Expr
}

type LoopExpr struct {
	Var   string
	Start Expr
	End   Expr
	Step  Expr
	Body  Expr
}

// Binding is one `name = init` pair of a let expression.
type Binding struct {
	Name string
	Init Expr
}

type LetExpr struct {
	Bindings []Binding
	Body     Expr
}

type CallExpr struct {
	Callee string
	Args   []Expr
}

func (*LiteralExpr) exprNode()     {}
func (*VariableExpr) exprNode()    {}
func (*UnaryExpr) exprNode()       {}
func (*BinaryExpr) exprNode()      {}
func (*ConditionalExpr) exprNode() {}
func (*LoopExpr) exprNode()        {}
func (*LetExpr) exprNode()         {}
func (*CallExpr) exprNode()        {}

type FunctionKind int

const (
	KindNormal FunctionKind = iota
	KindUnaryOp
	KindBinaryOp
)

var functionKindNames = map[FunctionKind]string{
	KindNormal:   "Normal",
	KindUnaryOp:  "UnaryOperator",
	KindBinaryOp: "BinaryOperator",
}

func (k FunctionKind) String() string {
	if name, ok := functionKindNames[k]; ok {
		return name
	}
	return "Unknown"
}

// Prototype is the signature of a function or user-defined operator.
// Operator and Precedence are only meaningful for operator kinds; a unary
// operator has exactly one parameter and a binary operator exactly two.
type Prototype struct {
	Name       string
	Kind       FunctionKind
	Operator   string
	Precedence int
	Params     []string
}

// IsAnonymous reports whether p wraps a bare top-level expression.
func (p *Prototype) IsAnonymous() bool {
	return p.Name == "" && p.Kind == KindNormal && len(p.Params) == 0
}

// TopLevelItem is either an *ExternDecl or a *FunctionDef.
type TopLevelItem interface {
	Signature() *Prototype
}

type ExternDecl struct {
	Proto *Prototype
}

type FunctionDef struct {
	Proto *Prototype
	Body  Expr
}

func (d *ExternDecl) Signature() *Prototype  { return d.Proto }
func (d *FunctionDef) Signature() *Prototype { return d.Proto }

func anonymousFunction(body Expr) *FunctionDef {
	return &FunctionDef{
		Proto: &Prototype{Name: "", Kind: KindNormal, Params: []string{}},
		Body:  body,
	}
}
