package tgl

import (
	"math"
	"strings"
	"unicode/utf8"

	"github.com/aretw0/genson/pkg/scope"
)

type builtin func(s *scope.Scope, args []any) any

// builtins is the fixed table reachable through "call" nodes.
var builtins = map[string]builtin{
	"rand_int": randInt,
	"randint":  randInt,
	"len":      length,
	"upper":    func(_ *scope.Scope, args []any) any { return strings.ToUpper(argString(args, 0)) },
	"lower":    func(_ *scope.Scope, args []any) any { return strings.ToLower(argString(args, 0)) },
	"label":    domainLabel,
}

// evalCall dispatches to the built-in table. Unknown names yield "".
func (in *Interpreter) evalCall(c *CallExpr, s *scope.Scope, depth int) (any, error) {
	if c == nil || c.Name == "" {
		return "", nil
	}
	args := make([]any, 0, len(c.Args))
	for _, a := range c.Args {
		v, err := in.evalExpr(a, s, depth)
		if err != nil {
			return nil, err
		}
		args = append(args, v)
	}
	fn, ok := builtins[c.Name]
	if !ok {
		in.logger.Debug("unknown call", "name", c.Name)
		return "", nil
	}
	return fn(s, args), nil
}

// randInt draws an integer in [min, max], both bounds inclusive.
func randInt(s *scope.Scope, args []any) any {
	if len(args) < 2 {
		return ""
	}
	lo, hi := math.Floor(ToNumber(args[0])), math.Floor(ToNumber(args[1]))
	if math.IsNaN(lo) || math.IsNaN(hi) {
		return math.NaN()
	}
	if hi < lo {
		lo, hi = hi, lo
	}
	span := hi - lo + 1
	if span > math.MaxInt32 {
		span = math.MaxInt32
	}
	return lo + float64(s.Rand().IntN(int(span)))
}

func length(_ *scope.Scope, args []any) any {
	if len(args) == 0 {
		return 0.0
	}
	switch v := args[0].(type) {
	case string:
		return float64(utf8.RuneCountInString(v))
	case []any:
		return float64(len(v))
	case map[string]any:
		return float64(len(v))
	}
	return 0.0
}

// domainLabel returns the label a named Domain assigns to a value.
func domainLabel(s *scope.Scope, args []any) any {
	if len(args) < 2 {
		return ""
	}
	d, ok := s.FindDecl(ToString(args[0]), isDomain)
	if !ok {
		return ""
	}
	label, _ := d.(*Domain).Label(args[1])
	return label
}

func argString(args []any, i int) string {
	if i >= len(args) {
		return ""
	}
	return ToString(args[i])
}
