package dsl

import (
	"errors"
	"fmt"

	"github.com/aretw0/genson/pkg/adapters/memory"
	"github.com/aretw0/genson/pkg/domain"
	"github.com/aretw0/genson/pkg/schema"
)

// ErrShapeAlreadySet is reported by Build when a node's slot shape is
// chosen twice.
var ErrShapeAlreadySet = errors.New("slot shape already set")

// Shape is the state of a node's slot while it is being built.
type Shape int

const (
	ShapeUnset Shape = iota
	ShapeSequence
	ShapeBranch
	ShapeList
)

func (s Shape) String() string {
	switch s {
	case ShapeSequence:
		return "sequence"
	case ShapeBranch:
		return "branch"
	case ShapeList:
		return "list"
	}
	return "unset"
}

// Builder manages the schema construction.
type Builder struct {
	nodes map[string]*node
	order []string
	errs  []error
}

type node struct {
	key   string
	def   map[string]any
	shape Shape
}

// New creates a new schema builder.
func New() *Builder {
	return &Builder{
		nodes: make(map[string]*node),
	}
}

// Node creates a new node in the schema. The first node added is the
// default root. If the node already exists, it returns a builder for it.
func (b *Builder) Node(key string) *NodeBuilder {
	n, ok := b.nodes[key]
	if !ok {
		n = &node{key: key, def: make(map[string]any)}
		b.nodes[key] = n
		b.order = append(b.order, key)
	}
	return &NodeBuilder{n: n, b: b}
}

// Shape reports the slot state of key.
func (b *Builder) Shape(key string) Shape {
	if n, ok := b.nodes[key]; ok {
		return n.shape
	}
	return ShapeUnset
}

// Definitions returns the raw schema document built so far.
func (b *Builder) Definitions() map[string]any {
	out := make(map[string]any, len(b.nodes))
	for key, n := range b.nodes {
		out[key] = n.def
	}
	return out
}

// Build compiles the schema into a MemoryLoader.
func (b *Builder) Build() (*memory.Loader, error) {
	if len(b.errs) > 0 {
		return nil, errors.Join(b.errs...)
	}

	loader, err := memory.NewFromDefinitions(b.Definitions(), b.order...)
	if err != nil {
		return nil, fmt.Errorf("failed to build memory loader: %w", err)
	}

	return loader, nil
}

// Schema builds and compiles the schema in one step.
func (b *Builder) Schema() (*domain.Schema, error) {
	loader, err := b.Build()
	if err != nil {
		return nil, err
	}
	return schema.Load(loader)
}

func (b *Builder) transition(n *node, to Shape) bool {
	if n.shape != ShapeUnset {
		b.errs = append(b.errs, fmt.Errorf("node %q: %w: %s, cannot become %s", n.key, ErrShapeAlreadySet, n.shape, to))
		return false
	}
	n.shape = to
	return true
}
