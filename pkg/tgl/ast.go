package tgl

// Node type tags as they appear in the "type" field of a JSON node.
const (
	TypeText       = "text"
	TypeSequence   = "sequence"
	TypeSeq        = "seq"
	TypeOption     = "option"
	TypeRoulette   = "roulette"
	TypeRepetition = "repetition"
	TypeDelegate   = "delegate"
	TypeLayer      = "layer"
	TypeModule     = "module"
	TypeVar        = "var"
	TypeVec        = "vec"
	TypeRef        = "ref"
	TypeExpression = "expression"
	TypeExpr       = "expr"
	TypeCall       = "call"
	TypeSet        = "set"
	TypeEffect     = "effect"
	TypeDomain     = "domain"
	TypeMatch      = "match"
)

// Operators understood by BinaryExpr, UnaryExpr, TernaryExpr and MatchExpr.
const (
	OpAdd      = "+"
	OpSub      = "-"
	OpMul      = "*"
	OpDiv      = "/"
	OpMod      = "%"
	OpGT       = ">"
	OpLT       = "<"
	OpGTE      = ">="
	OpLTE      = "<="
	OpEQ       = "=="
	OpNEQ      = "!="
	OpAnd      = "and"
	OpOr       = "or"
	OpNot      = "not"
	OpTernary  = "?:"
	OpPipe     = "|"
	OpMatch    = "match"
	OpMatchMut = "match_mut"
	OpGet      = "get"
)

// Node is a TGL AST node. The set of implementations is closed.
type Node interface {
	Tag() string
}

// Text renders a literal string.
type Text struct {
	Text string
}

// Sequence concatenates its items.
type Sequence struct {
	Items []Node
}

// Option renders one item picked uniformly.
type Option struct {
	Items []Node
}

// WeightedItem is one entry of a Roulette. A nil Weight counts as 1.
type WeightedItem struct {
	Weight Expr
	Value  Node
}

// Roulette renders one item picked by weight; weights are re-evaluated on every call.
type Roulette struct {
	Items []WeightedItem
}

// Repetition renders Value a fixed number of times.
type Repetition struct {
	Times     Expr
	Value     Node
	Separator Node
}

// Delegate renders Value while Weight, evaluated with the 1-based loop
// index bound to Index, stays positive and not below the index.
type Delegate struct {
	Weight    Expr
	Value     Node
	Index     string
	Separator Node
}

// Layer opens a child scope with props, declarations and before-hooks.
// Items (list form) is rendered as a uniform roulette; Item (object form)
// is rendered directly.
type Layer struct {
	Props  map[string]any
	Decls  []Decl
	Before []Node
	Items  []Node
	Item   Node
}

// Module renders a selected item, its default, or all items joined by newlines.
type Module struct {
	Items        []Node
	Default      Node
	DefaultIndex int // -1 when no "$N" default is set
}

// Vec evaluates items into a list; used inside expressions.
type Vec struct {
	Items []Node
}

// Ref renders the value found at Path, or Else when it is missing.
type Ref struct {
	Path string
	Else Node
}

// ExprNode renders the string form of an expression.
type ExprNode struct {
	Expr Expr
}

// CallNode renders the string form of a built-in call.
type CallNode struct {
	Call *CallExpr
}

// Set assigns Value to Path in the current scope and renders nothing.
type Set struct {
	Path  string
	Value Expr
}

// Effect applies nested Set/Effect nodes and renders nothing.
type Effect struct {
	Items []Node
}

// Unknown is any node whose tag is not recognised. It renders "".
type Unknown struct {
	Type string
}

func (*Text) Tag() string       { return TypeText }
func (*Sequence) Tag() string   { return TypeSequence }
func (*Option) Tag() string     { return TypeOption }
func (*Roulette) Tag() string   { return TypeRoulette }
func (*Repetition) Tag() string { return TypeRepetition }
func (*Delegate) Tag() string   { return TypeDelegate }
func (*Layer) Tag() string      { return TypeLayer }
func (*Module) Tag() string     { return TypeModule }
func (*Vec) Tag() string        { return TypeVec }
func (*Ref) Tag() string        { return TypeRef }
func (*ExprNode) Tag() string   { return TypeExpr }
func (*CallNode) Tag() string   { return TypeCall }
func (*Set) Tag() string        { return TypeSet }
func (*Effect) Tag() string     { return TypeEffect }
func (u *Unknown) Tag() string  { return u.Type }

// Expr is an expression evaluated to a dynamic value.
type Expr interface {
	exprNode()
}

// Literal passes its value through unchanged.
type Literal struct {
	Value any
}

// Concat joins the string forms of its parts.
type Concat struct {
	Parts []Expr
}

// PathExpr looks up a scope path.
type PathExpr struct {
	Path string
}

// CallExpr invokes a built-in function.
type CallExpr struct {
	Name string
	Args []Expr
}

// BinaryExpr applies an arithmetic, comparison or logical operator.
type BinaryExpr struct {
	Op          string
	Left, Right Expr
}

// UnaryExpr applies "not".
type UnaryExpr struct {
	Op      string
	Operand Expr
}

// TernaryExpr picks Then or Else by the truth of Cond.
type TernaryExpr struct {
	Cond, Then, Else Expr
}

// MatchExpr dispatches Subject and Args to the nearest Match declaration
// named by Matcher. Both "a | m, args" and "a.m(args)" decode to it.
type MatchExpr struct {
	Op      string
	Subject Expr
	Matcher Expr
	Args    []Expr
}

// NodeExpr evaluates a TGL node in expression position. Vec yields a list,
// every other node its rendered string.
type NodeExpr struct {
	Node Node
}

func (*Literal) exprNode()     {}
func (*Concat) exprNode()      {}
func (*PathExpr) exprNode()    {}
func (*CallExpr) exprNode()    {}
func (*BinaryExpr) exprNode()  {}
func (*UnaryExpr) exprNode()   {}
func (*TernaryExpr) exprNode() {}
func (*MatchExpr) exprNode()   {}
func (*NodeExpr) exprNode()    {}
