package genson

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/aretw0/genson/internal/runtime"
	"github.com/aretw0/genson/pkg/adapters/file"
	loamAdapter "github.com/aretw0/genson/pkg/adapters/loam"
	"github.com/aretw0/genson/pkg/domain"
	"github.com/aretw0/genson/pkg/ports"
	"github.com/aretw0/genson/pkg/schema"
	"github.com/aretw0/genson/pkg/tgl"
)

// LineMode selects how a node's line is exposed on its descriptor.
type LineMode = runtime.LineMode

const (
	// LineRaw exposes the line as written.
	LineRaw = runtime.LineRaw
	// LineEvaluated renders the line through TGL.
	LineEvaluated = runtime.LineEvaluated
)

// Accessor describes a node by key. An empty key selects the root.
type Accessor func(key string) (*domain.Descriptor, error)

// Engine is the high-level entry point for GenSON.
// It wraps the internal runtime and provides a simplified API for consumers.
type Engine struct {
	mu          sync.RWMutex
	runtime     *runtime.Engine
	schema      *domain.Schema
	loader      ports.SchemaLoader
	runtimeOpts []runtime.EngineOption
	hooks       domain.LifecycleHooks
	logger      *slog.Logger
	root        string
	Name        string
}

// Option defines a functional option for configuring the Engine.
type Option func(*Engine)

// WithLoader injects a custom SchemaLoader, bypassing path-based loading.
func WithLoader(l ports.SchemaLoader) Option {
	return func(e *Engine) {
		e.loader = l
	}
}

// WithSchema uses an already compiled schema. No loader is consulted.
func WithSchema(s *domain.Schema) Option {
	return func(e *Engine) {
		e.schema = s
	}
}

// WithLogger sets a custom structured logger for the engine.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// WithRoot overrides the default root (the first key of the schema).
func WithRoot(key string) Option {
	return func(e *Engine) {
		e.root = key
	}
}

// WithMaxDepth bounds expansion nesting and TGL recursion.
func WithMaxDepth(n int) Option {
	return func(e *Engine) {
		e.runtimeOpts = append(e.runtimeOpts, runtime.WithMaxDepth(n))
	}
}

// WithMaxIterations bounds TGL loops and computed repeat counts.
func WithMaxIterations(n int) Option {
	return func(e *Engine) {
		e.runtimeOpts = append(e.runtimeOpts, runtime.WithMaxIterations(n))
	}
}

// WithContinueCeiling bounds the iterations of continue terms.
func WithContinueCeiling(n int) Option {
	return func(e *Engine) {
		e.runtimeOpts = append(e.runtimeOpts, runtime.WithContinueCeiling(n))
	}
}

// WithLineMode selects raw (default) or evaluated lines.
func WithLineMode(mode LineMode) Option {
	return func(e *Engine) {
		e.runtimeOpts = append(e.runtimeOpts, runtime.WithLineMode(mode))
	}
}

// WithSeed makes expansion and evaluation reproducible.
func WithSeed(seed uint64) Option {
	return func(e *Engine) {
		e.runtimeOpts = append(e.runtimeOpts, runtime.WithSeed(seed))
	}
}

// WithVars pre-binds variables visible to every root scope.
func WithVars(vars map[string]any) Option {
	return func(e *Engine) {
		e.runtimeOpts = append(e.runtimeOpts, runtime.WithVars(vars))
	}
}

// New initializes a new GenSON Engine.
// A directory path is read as a Loam repository with one document per node;
// a file path is read as a single JSON or YAML schema document.
// If WithLoader or WithSchema is provided, path is only used as a label.
func New(path string, opts ...Option) (*Engine, error) {
	eng := &Engine{}

	// Apply Options first to check if a loader or schema is provided
	for _, opt := range opts {
		opt(eng)
	}

	if eng.loader == nil && eng.schema == nil {
		if path == "" {
			return nil, fmt.Errorf("path is required when no custom loader is provided")
		}
		loader, err := openPath(path)
		if err != nil {
			return nil, err
		}
		eng.loader = loader
	}
	if path != "" {
		eng.Name = trimName(path)
	}

	if eng.logger == nil {
		eng.logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	if eng.Name != "" {
		eng.logger = eng.logger.With("schema", eng.Name)
	}

	if eng.schema == nil {
		if err := eng.Reload(); err != nil {
			return nil, err
		}
		return eng, nil
	}
	eng.install(eng.schema)
	return eng, nil
}

// NewFromDocument builds an engine from an in-memory JSON or YAML document.
func NewFromDocument(data []byte, format schema.Format, opts ...Option) (*Engine, error) {
	loader, err := file.NewFromBytes(data, format)
	if err != nil {
		return nil, err
	}
	return New("", append([]Option{WithLoader(loader)}, opts...)...)
}

func openPath(path string) (ports.SchemaLoader, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("invalid path: %w", err)
	}
	if info.IsDir() {
		return loamAdapter.Open(path)
	}
	return file.New(path)
}

func trimName(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	base := filepath.Base(abs)
	return base[:len(base)-len(filepath.Ext(base))]
}

// install swaps the compiled schema and rebuilds the runtime around it.
func (e *Engine) install(s *domain.Schema) {
	if e.root != "" {
		s.Root = e.root
	}

	runtimeOpts := []runtime.EngineOption{
		runtime.WithLifecycleHooks(e.hooks),
		runtime.WithLogger(e.logger),
	}
	runtimeOpts = append(runtimeOpts, e.runtimeOpts...)

	e.mu.Lock()
	e.schema = s
	e.runtime = runtime.NewEngine(s, runtimeOpts...)
	e.mu.Unlock()
}

// Reload recompiles the schema from the loader. On failure the previous
// schema stays in place.
func (e *Engine) Reload() error {
	if e.loader == nil {
		return fmt.Errorf("engine has no loader to reload from")
	}
	s, err := schema.Load(e.loader)
	if err != nil {
		return err
	}
	e.install(s)
	e.logger.Debug("schema loaded", "nodes", len(s.Nodes), "root", s.RootKey())
	return nil
}

func (e *Engine) current() *runtime.Engine {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.runtime
}

// Accessor returns the by-key lookup over the current schema.
// Every call starts from a fresh root scope.
func (e *Engine) Accessor() Accessor {
	acc := e.current().Accessor()
	return acc.Get
}

// Get describes key. Unknown keys yield a sentinel descriptor.
func (e *Engine) Get(key string) (*domain.Descriptor, error) {
	return e.current().Accessor().Get(key)
}

// Expand describes key and eagerly drills it levels deep, filling Children.
func (e *Engine) Expand(key string, levels int) (*domain.Descriptor, error) {
	return e.current().Tree(key, levels)
}

// Evaluate renders a TGL node with the engine's seed, vars and limits.
func (e *Engine) Evaluate(node tgl.Node) (string, error) {
	rt := e.current()
	in := rt.Interpreter()
	return in.Eval(node, rt.NewScope())
}

// Inspect returns the node definitions in document order.
func (e *Engine) Inspect() []*domain.NodeDefinition {
	s := e.Schema()
	out := make([]*domain.NodeDefinition, 0, len(s.Order))
	for _, key := range s.Order {
		out = append(out, s.Nodes[key])
	}
	return out
}

// Schema returns the compiled schema currently in use.
func (e *Engine) Schema() *domain.Schema {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.schema
}

// Root returns the key selected by an empty accessor lookup.
func (e *Engine) Root() string {
	return e.Schema().RootKey()
}

// Watch returns a channel that signals when the underlying schema changes.
// Returns error if the loader does not support watching.
func (e *Engine) Watch(ctx context.Context) (<-chan string, error) {
	if w, ok := e.loader.(ports.Watchable); ok {
		return w.Watch(ctx)
	}
	return nil, fmt.Errorf("current loader does not support watching")
}

// Loader returns the underlying SchemaLoader, nil when built WithSchema.
func (e *Engine) Loader() ports.SchemaLoader {
	return e.loader
}
