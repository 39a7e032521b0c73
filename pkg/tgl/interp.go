package tgl

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"strings"

	"github.com/aretw0/genson/pkg/scope"
)

// Safety limits.
const (
	DefaultMaxDepth      = 100
	DefaultMaxIterations = 10000
)

// ErrRecursionLimit aborts an evaluation that nests deeper than the
// configured maximum depth. It is not recoverable locally.
var ErrRecursionLimit = errors.New("maximum recursion depth exceeded")

// Interpreter evaluates TGL nodes against a scope chain.
// It holds no per-evaluation state and may be reused.
type Interpreter struct {
	maxDepth      int
	maxIterations int
	logger        *slog.Logger
	rng           scope.Rand
	vars          map[string]any
}

// InterpreterOption configures an Interpreter.
type InterpreterOption func(*Interpreter)

// WithMaxDepth overrides the recursion ceiling.
func WithMaxDepth(n int) InterpreterOption {
	return func(in *Interpreter) {
		if n > 0 {
			in.maxDepth = n
		}
	}
}

// WithMaxIterations overrides the loop ceiling of Repetition and Delegate.
func WithMaxIterations(n int) InterpreterOption {
	return func(in *Interpreter) {
		if n > 0 {
			in.maxIterations = n
		}
	}
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) InterpreterOption {
	return func(in *Interpreter) {
		if logger != nil {
			in.logger = logger
		}
	}
}

// WithSeed makes root scopes created by the interpreter reproducible.
func WithSeed(seed uint64) InterpreterOption {
	return func(in *Interpreter) {
		in.rng = scope.NewRand(seed)
	}
}

// WithRand injects the random source used for root scopes.
func WithRand(rng scope.Rand) InterpreterOption {
	return func(in *Interpreter) {
		in.rng = rng
	}
}

// WithVars pre-binds variables on every root scope.
func WithVars(vars map[string]any) InterpreterOption {
	return func(in *Interpreter) {
		in.vars = vars
	}
}

// New creates an interpreter with default limits.
func New(opts ...InterpreterOption) *Interpreter {
	in := &Interpreter{
		maxDepth:      DefaultMaxDepth,
		maxIterations: DefaultMaxIterations,
		logger:        slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(in)
	}
	return in
}

// MaxDepth returns the configured recursion ceiling.
func (in *Interpreter) MaxDepth() int { return in.maxDepth }

// NewScope creates a root scope carrying the interpreter's random source and vars.
func (in *Interpreter) NewScope() *scope.Scope {
	s := scope.NewRoot(in.rng)
	for k, v := range in.vars {
		s.Bind(k, v)
	}
	return s
}

// Evaluate renders node in a fresh root scope.
func Evaluate(node Node, opts ...InterpreterOption) (string, error) {
	in := New(opts...)
	return in.Eval(node, in.NewScope())
}

// Eval renders node in s.
func (in *Interpreter) Eval(node Node, s *scope.Scope) (string, error) {
	return in.eval(node, s, 0)
}

func (in *Interpreter) eval(node Node, s *scope.Scope, depth int) (string, error) {
	depth++
	if depth > in.maxDepth {
		return "", fmt.Errorf("%w (%d)", ErrRecursionLimit, in.maxDepth)
	}
	if node == nil {
		return "", nil
	}

	switch n := node.(type) {
	case *Text:
		return n.Text, nil
	case *Sequence:
		return in.join(n.Items, "", s, depth)
	case *Option:
		if len(n.Items) == 0 {
			return "", nil
		}
		return in.eval(n.Items[s.Rand().IntN(len(n.Items))], s, depth)
	case *Roulette:
		return in.evalRoulette(n, s, depth)
	case *Repetition:
		return in.evalRepetition(n, s, depth)
	case *Delegate:
		return in.evalDelegate(n, s, depth)
	case *Layer:
		return in.evalLayer(n, s, depth)
	case *Module:
		return in.evalModule(n, s, depth)
	case *Vec:
		vals, err := in.evalVec(n, s, depth)
		if err != nil {
			return "", err
		}
		return ToString(vals), nil
	case *Ref:
		return in.evalRef(n, s, depth)
	case *ExprNode:
		v, err := in.evalExpr(n.Expr, s, depth)
		if err != nil {
			return "", err
		}
		return ToString(v), nil
	case *CallNode:
		v, err := in.evalCall(n.Call, s, depth)
		if err != nil {
			return "", err
		}
		return ToString(v), nil
	case *Set:
		return "", in.applySet(n, s, depth)
	case *Effect:
		return "", in.applyEffect(n, s, depth)
	}
	return "", nil
}

func (in *Interpreter) join(items []Node, sep string, s *scope.Scope, depth int) (string, error) {
	var sb strings.Builder
	for i, item := range items {
		if i > 0 {
			sb.WriteString(sep)
		}
		part, err := in.eval(item, s, depth)
		if err != nil {
			return "", err
		}
		sb.WriteString(part)
	}
	return sb.String(), nil
}

func (in *Interpreter) evalRoulette(n *Roulette, s *scope.Scope, depth int) (string, error) {
	if len(n.Items) == 0 {
		return "", nil
	}
	weights := make([]float64, len(n.Items))
	for i, item := range n.Items {
		if item.Weight == nil {
			weights[i] = 1
			continue
		}
		w, err := in.evalExpr(item.Weight, s, depth)
		if err != nil {
			return "", err
		}
		weights[i] = ClampWeight(w)
	}
	chosen := n.Items[WeightedIndex(weights, s.Rand())]
	return in.eval(chosen.Value, s, depth)
}

func (in *Interpreter) evalRepetition(n *Repetition, s *scope.Scope, depth int) (string, error) {
	t, err := in.evalExpr(n.Times, s, depth)
	if err != nil {
		return "", err
	}
	count := 0
	if times := ToNumber(t); !math.IsNaN(times) && times > 0 {
		if times > float64(in.maxIterations) {
			in.logger.Debug("repetition truncated", "times", times, "limit", in.maxIterations)
			count = in.maxIterations
		} else {
			count = int(math.Ceil(times))
		}
	}

	parts := make([]string, 0, count)
	for i := 0; i < count; i++ {
		part, err := in.eval(n.Value, s, depth)
		if err != nil {
			return "", err
		}
		parts = append(parts, part)
	}
	return in.joinParts(parts, n.Separator, s, depth)
}

func (in *Interpreter) evalDelegate(n *Delegate, s *scope.Scope, depth int) (string, error) {
	var parts []string
	iteration := 1
	for ; iteration <= in.maxIterations; iteration++ {
		iter := s.Child()
		iter.Bind(n.Index, float64(iteration))

		w, err := in.evalExpr(n.Weight, iter, depth)
		if err != nil {
			return "", err
		}
		target := ToNumber(w)
		if math.IsNaN(target) || target <= 0 || float64(iteration) > target {
			break
		}

		part, err := in.eval(n.Value, iter, depth)
		if err != nil {
			return "", err
		}
		parts = append(parts, part)
	}
	if iteration > in.maxIterations {
		in.logger.Debug("delegate stopped at iteration limit", "limit", in.maxIterations)
	}
	return in.joinParts(parts, n.Separator, s, depth)
}

func (in *Interpreter) joinParts(parts []string, separator Node, s *scope.Scope, depth int) (string, error) {
	sep := ""
	if separator != nil {
		var err error
		if sep, err = in.eval(separator, s, depth); err != nil {
			return "", err
		}
	}
	return strings.Join(parts, sep), nil
}

func (in *Interpreter) evalLayer(n *Layer, s *scope.Scope, depth int) (string, error) {
	child := s.Child()
	for k, v := range n.Props {
		child.Bind(k, v)
	}
	for _, d := range n.Decls {
		child.Declare(d.DeclName(), d)
	}
	for _, hook := range n.Before {
		if _, err := in.eval(hook, child, depth); err != nil {
			return "", err
		}
	}

	if n.Items != nil {
		if len(n.Items) == 0 {
			return "", nil
		}
		weights := make([]float64, len(n.Items))
		for i := range weights {
			weights[i] = 1
		}
		return in.eval(n.Items[WeightedIndex(weights, child.Rand())], child, depth)
	}
	if n.Item != nil {
		return in.eval(n.Item, child, depth)
	}
	return "", nil
}

func (in *Interpreter) evalModule(n *Module, s *scope.Scope, depth int) (string, error) {
	if n.DefaultIndex >= 0 {
		if n.DefaultIndex >= len(n.Items) {
			return "", nil
		}
		return in.eval(n.Items[n.DefaultIndex], s, depth)
	}
	if n.Default != nil {
		return in.eval(n.Default, s, depth)
	}
	return in.join(n.Items, "\n", s, depth)
}

func (in *Interpreter) evalVec(n *Vec, s *scope.Scope, depth int) ([]any, error) {
	out := make([]any, 0, len(n.Items))
	for _, item := range n.Items {
		v, err := in.eval(item, s, depth)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

func (in *Interpreter) evalRef(n *Ref, s *scope.Scope, depth int) (string, error) {
	target, ok := s.Get(n.Path)
	if !ok || target == nil {
		if n.Else != nil {
			return in.eval(n.Else, s, depth)
		}
		return "", nil
	}

	switch t := target.(type) {
	case Node:
		return in.eval(t, s, depth)
	case map[string]any:
		if typ, _ := t["type"].(string); typ != "" {
			node, err := Decode(t)
			if err != nil {
				return "", fmt.Errorf("ref %s: %w", n.Path, err)
			}
			return in.eval(node, s, depth)
		}
	}
	return ToString(target), nil
}

func (in *Interpreter) applySet(n *Set, s *scope.Scope, depth int) error {
	v, err := in.evalExpr(n.Value, s, depth)
	if err != nil {
		return err
	}
	return s.Set(n.Path, v)
}

func (in *Interpreter) applyEffect(n *Effect, s *scope.Scope, depth int) error {
	for _, item := range n.Items {
		switch it := item.(type) {
		case *Set:
			if err := in.applySet(it, s, depth); err != nil {
				return err
			}
		case *Effect:
			if _, err := in.eval(it, s, depth); err != nil {
				return err
			}
		}
	}
	return nil
}
