package runtime

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/aretw0/genson/pkg/domain"
	"github.com/aretw0/genson/pkg/scope"
	"github.com/aretw0/genson/pkg/tgl"
)

// DefaultContinueCeiling bounds the iterations of a continue term.
const DefaultContinueCeiling = 114

// LineMode selects how a node's line is exposed on its descriptor.
type LineMode int

const (
	// LineRaw exposes the line as written, without evaluation.
	LineRaw LineMode = iota
	// LineEvaluated renders the line through TGL like the title.
	LineEvaluated
)

func (m LineMode) String() string {
	if m == LineEvaluated {
		return "evaluated"
	}
	return "raw"
}

// ParseLineMode parses "raw" or "evaluated".
func ParseLineMode(s string) (LineMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "raw":
		return LineRaw, nil
	case "evaluated", "eval":
		return LineEvaluated, nil
	}
	return LineRaw, fmt.Errorf("unknown line mode %q", s)
}

// Engine expands schema nodes into descriptors.
// It holds no per-call state; every expansion works on the scope it is given.
type Engine struct {
	schema          *domain.Schema
	interp          *tgl.Interpreter
	logger          *slog.Logger
	hooks           domain.LifecycleHooks
	maxDepth        int
	maxIterations   int
	continueCeiling int
	lineMode        LineMode
	rng             scope.Rand
	vars            map[string]any
}

// EngineOption defines a functional option for configuring the Engine.
type EngineOption func(*Engine)

// WithLogger sets a custom structured logger for the engine.
func WithLogger(logger *slog.Logger) EngineOption {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) EngineOption {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// WithMaxDepth bounds both expansion nesting and TGL recursion.
func WithMaxDepth(n int) EngineOption {
	return func(e *Engine) {
		if n > 0 {
			e.maxDepth = n
		}
	}
}

// WithMaxIterations bounds TGL loops and computed repeat counts.
func WithMaxIterations(n int) EngineOption {
	return func(e *Engine) {
		if n > 0 {
			e.maxIterations = n
		}
	}
}

// WithContinueCeiling overrides the iteration ceiling of continue terms.
func WithContinueCeiling(n int) EngineOption {
	return func(e *Engine) {
		if n > 0 {
			e.continueCeiling = n
		}
	}
}

// WithLineMode selects raw or evaluated lines.
func WithLineMode(mode LineMode) EngineOption {
	return func(e *Engine) {
		e.lineMode = mode
	}
}

// WithSeed makes every root scope created by the engine reproducible.
func WithSeed(seed uint64) EngineOption {
	return func(e *Engine) {
		e.rng = scope.NewRand(seed)
	}
}

// WithRand injects the random source used for root scopes.
func WithRand(rng scope.Rand) EngineOption {
	return func(e *Engine) {
		e.rng = rng
	}
}

// WithVars pre-binds variables on every root scope.
func WithVars(vars map[string]any) EngineOption {
	return func(e *Engine) {
		e.vars = vars
	}
}

// NewEngine creates an engine over a compiled schema.
func NewEngine(schema *domain.Schema, opts ...EngineOption) *Engine {
	if schema == nil {
		schema = domain.NewSchema()
	}
	e := &Engine{
		schema:          schema,
		logger:          slog.New(slog.NewTextHandler(io.Discard, nil)),
		maxDepth:        tgl.DefaultMaxDepth,
		maxIterations:   tgl.DefaultMaxIterations,
		continueCeiling: DefaultContinueCeiling,
	}
	for _, opt := range opts {
		opt(e)
	}

	interpOpts := []tgl.InterpreterOption{
		tgl.WithMaxDepth(e.maxDepth),
		tgl.WithMaxIterations(e.maxIterations),
		tgl.WithLogger(e.logger),
		tgl.WithVars(e.vars),
	}
	if e.rng != nil {
		interpOpts = append(interpOpts, tgl.WithRand(e.rng))
	}
	e.interp = tgl.New(interpOpts...)
	return e
}

// Schema returns the schema the engine expands.
func (e *Engine) Schema() *domain.Schema {
	return e.schema
}

// Interpreter returns the TGL interpreter used for titles, lines and hooks.
func (e *Engine) Interpreter() *tgl.Interpreter {
	return e.interp
}

// NewScope creates a root scope carrying the engine's random source and vars.
func (e *Engine) NewScope() *scope.Scope {
	return e.interp.NewScope()
}
