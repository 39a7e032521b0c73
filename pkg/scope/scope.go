// Package scope implements the chained lexical environment shared by the
// expansion engine and the TGL interpreter.
//
// A Scope holds its own bindings and declarations plus a pointer to the scope
// it was created from. Lookups walk the chain towards the root; writes only
// ever touch the current layer (or, with the "parent." prefix, the layer
// directly above). Every scope in a chain shares the random source of its
// root so that a seeded root makes a whole evaluation reproducible.
package scope

import (
	"errors"
	"math/rand/v2"
)

// ErrNoParentScope is returned when a "parent." write is attempted on a root scope.
var ErrNoParentScope = errors.New("no parent scope")

// ErrIndexOutOfRange is returned when a write would grow a list past MaxIndex.
var ErrIndexOutOfRange = errors.New("list index out of range")

// Rand is the random source consumed by the engines.
// *math/rand/v2.Rand satisfies it.
type Rand interface {
	Float64() float64
	IntN(n int) int
}

// NewRand returns a deterministic source for the given seed.
func NewRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// Scope is one layer of the environment chain.
type Scope struct {
	vars   map[string]any
	decls  map[string]any
	parent *Scope
	rng    Rand
	depth  int
}

// NewRoot creates a scope without a parent.
// A nil source is replaced by a randomly seeded one.
func NewRoot(rng Rand) *Scope {
	if rng == nil {
		rng = NewRand(rand.Uint64())
	}
	return &Scope{
		vars:  make(map[string]any),
		decls: make(map[string]any),
		rng:   rng,
	}
}

// Child allocates a scope whose lookups fall back to s.
func (s *Scope) Child() *Scope {
	return &Scope{
		vars:   make(map[string]any),
		decls:  make(map[string]any),
		parent: s,
		rng:    s.rng,
		depth:  s.depth + 1,
	}
}

// Parent returns the enclosing scope, or nil for a root.
func (s *Scope) Parent() *Scope { return s.parent }

// Depth is the number of Child calls between the root and s.
func (s *Scope) Depth() int { return s.depth }

// Rand returns the random source shared by the whole chain.
func (s *Scope) Rand() Rand { return s.rng }

// Bind sets a top-level name on the current layer. Maps and slices are
// deep-copied, so later writes never reach the caller's value.
func (s *Scope) Bind(name string, value any) {
	s.vars[name] = Clone(value)
}

// Lookup resolves a top-level name, walking up the chain.
func (s *Scope) Lookup(name string) (any, bool) {
	for cur := s; cur != nil; cur = cur.parent {
		if v, ok := cur.vars[name]; ok {
			return v, true
		}
	}
	return nil, false
}

// Declare registers a declaration (match, domain, ...) on the current layer.
func (s *Scope) Declare(name string, decl any) {
	s.decls[name] = decl
}

// FindDecl returns the nearest declaration called name that accept approves.
// A nil accept approves everything.
func (s *Scope) FindDecl(name string, accept func(any) bool) (any, bool) {
	for cur := s; cur != nil; cur = cur.parent {
		d, ok := cur.decls[name]
		if !ok {
			continue
		}
		if accept == nil || accept(d) {
			return d, true
		}
	}
	return nil, false
}

// Snapshot flattens the visible bindings into a fresh map.
// Nearer layers shadow farther ones.
func (s *Scope) Snapshot() map[string]any {
	chain := make([]*Scope, 0, s.depth+1)
	for cur := s; cur != nil; cur = cur.parent {
		chain = append(chain, cur)
	}
	out := make(map[string]any)
	for i := len(chain) - 1; i >= 0; i-- {
		for k, v := range chain[i].vars {
			out[k] = v
		}
	}
	return out
}
