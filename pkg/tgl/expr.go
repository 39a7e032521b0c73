package tgl

import (
	"math"
	"strings"

	"github.com/aretw0/genson/pkg/scope"
)

// EvalExpr evaluates an expression in s.
func (in *Interpreter) EvalExpr(e Expr, s *scope.Scope) (any, error) {
	return in.evalExpr(e, s, 0)
}

func (in *Interpreter) evalExpr(e Expr, s *scope.Scope, depth int) (any, error) {
	switch x := e.(type) {
	case nil:
		return "", nil
	case *Literal:
		if x.Value == nil {
			return "", nil
		}
		return x.Value, nil
	case *Concat:
		var sb strings.Builder
		for _, p := range x.Parts {
			v, err := in.evalExpr(p, s, depth)
			if err != nil {
				return nil, err
			}
			sb.WriteString(ToString(v))
		}
		return sb.String(), nil
	case *PathExpr:
		v, _ := s.Get(x.Path)
		return v, nil
	case *CallExpr:
		return in.evalCall(x, s, depth)
	case *UnaryExpr:
		v, err := in.evalExpr(x.Operand, s, depth)
		if err != nil {
			return nil, err
		}
		return !Truthy(v), nil
	case *TernaryExpr:
		cond, err := in.evalExpr(x.Cond, s, depth)
		if err != nil {
			return nil, err
		}
		if Truthy(cond) {
			return in.evalExpr(x.Then, s, depth)
		}
		return in.evalExpr(x.Else, s, depth)
	case *BinaryExpr:
		return in.evalBinary(x, s, depth)
	case *MatchExpr:
		return in.evalMatch(x, s, depth)
	case *NodeExpr:
		if vec, ok := x.Node.(*Vec); ok {
			return in.evalVec(vec, s, depth)
		}
		return in.eval(x.Node, s, depth)
	}
	return "", nil
}

func (in *Interpreter) evalBinary(x *BinaryExpr, s *scope.Scope, depth int) (any, error) {
	left, err := in.evalExpr(x.Left, s, depth)
	if err != nil {
		return nil, err
	}

	switch x.Op {
	case OpAnd:
		if !Truthy(left) {
			return false, nil
		}
		right, err := in.evalExpr(x.Right, s, depth)
		if err != nil {
			return nil, err
		}
		return Truthy(right), nil
	case OpOr:
		if Truthy(left) {
			return true, nil
		}
		right, err := in.evalExpr(x.Right, s, depth)
		if err != nil {
			return nil, err
		}
		return Truthy(right), nil
	}

	right, err := in.evalExpr(x.Right, s, depth)
	if err != nil {
		return nil, err
	}
	return Apply(x.Op, left, right), nil
}

// Apply evaluates a binary operator on already evaluated operands.
// Arithmetic coerces both sides to numbers; "+" falls back to string
// concatenation, the others to NaN. Division or modulo by zero is NaN.
// Comparisons are numeric when both sides are numeric, lexicographic
// otherwise. Unknown operators yield "".
func Apply(op string, left, right any) any {
	ln, rn := ToNumber(left), ToNumber(right)
	numeric := !math.IsNaN(ln) && !math.IsNaN(rn)

	switch op {
	case OpAdd:
		if numeric {
			return ln + rn
		}
		return ToString(left) + ToString(right)
	case OpSub:
		if numeric {
			return ln - rn
		}
		return math.NaN()
	case OpMul:
		if numeric {
			return ln * rn
		}
		return math.NaN()
	case OpDiv:
		if numeric && rn != 0 {
			return ln / rn
		}
		return math.NaN()
	case OpMod:
		if numeric && rn != 0 {
			return math.Mod(ln, rn)
		}
		return math.NaN()
	case OpGT, OpLT, OpGTE, OpLTE:
		var c int
		if numeric {
			switch {
			case ln < rn:
				c = -1
			case ln > rn:
				c = 1
			}
		} else {
			c = strings.Compare(ToString(left), ToString(right))
		}
		switch op {
		case OpGT:
			return c > 0
		case OpLT:
			return c < 0
		case OpGTE:
			return c >= 0
		}
		return c <= 0
	case OpEQ:
		return Equal(left, right)
	case OpNEQ:
		return !Equal(left, right)
	case OpAnd:
		return Truthy(left) && Truthy(right)
	case OpOr:
		return Truthy(left) || Truthy(right)
	}
	return ""
}

// evalMatch resolves the nearest Match declaration named by the matcher
// and renders the result of its first satisfied branch, or "".
func (in *Interpreter) evalMatch(x *MatchExpr, s *scope.Scope, depth int) (any, error) {
	subject, err := in.evalExpr(x.Subject, s, depth)
	if err != nil {
		return nil, err
	}
	if x.Matcher == nil {
		return "", nil
	}
	name, err := in.evalExpr(x.Matcher, s, depth)
	if err != nil {
		return nil, err
	}
	decl, ok := s.FindDecl(ToString(name), isMatch)
	if !ok {
		return "", nil
	}

	args := make([]any, 0, len(x.Args)+1)
	args = append(args, subject)
	for _, a := range x.Args {
		v, err := in.evalExpr(a, s, depth)
		if err != nil {
			return nil, err
		}
		args = append(args, v)
	}

	to, matched, err := in.selectBranch(decl.(*Match), args, s, depth)
	if err != nil || !matched {
		return "", err
	}
	return in.eval(to, s, depth)
}

func (in *Interpreter) selectBranch(m *Match, args []any, s *scope.Scope, depth int) (Node, bool, error) {
	for _, br := range m.Branches {
		all := true
		for i, req := range br.Reqs {
			var arg any
			if i < len(args) {
				arg = args[i]
			}
			ok, err := in.satisfies(req, arg, s, depth)
			if err != nil {
				return nil, false, err
			}
			if !ok {
				all = false
				break
			}
		}
		if all {
			return br.To, true, nil
		}
	}
	return nil, false, nil
}

func (in *Interpreter) satisfies(req Requirement, arg any, s *scope.Scope, depth int) (bool, error) {
	if req.Index != "" {
		v, ok := field(arg, req.Index)
		if !ok {
			return false, nil
		}
		arg = v
	}
	if req.Domain != "" {
		// an undeclared domain does not constrain
		if d, ok := s.FindDecl(req.Domain, isDomain); ok {
			if _, in := d.(*Domain).Label(arg); !in {
				return false, nil
			}
		}
	}
	if req.HasEq && !Equal(arg, req.Eq) {
		return false, nil
	}
	if req.Expr != nil {
		child := s.Child()
		child.Bind("_arg", arg)
		v, err := in.evalExpr(req.Expr, child, depth)
		if err != nil {
			return false, err
		}
		if !Truthy(v) {
			return false, nil
		}
	}
	return true, nil
}
