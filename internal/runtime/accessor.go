package runtime

import (
	"fmt"
	"time"

	"github.com/aretw0/genson/pkg/domain"
	"github.com/aretw0/genson/pkg/scope"
	"github.com/aretw0/genson/pkg/tgl"
)

// Accessor looks nodes up by key and materializes their descriptors.
type Accessor struct {
	engine *Engine
}

// Accessor returns the by-key lookup bound to the engine's schema.
func (e *Engine) Accessor() *Accessor {
	return &Accessor{engine: e}
}

// Get describes key in a fresh root scope. An empty key selects the root.
// Unknown keys yield a sentinel descriptor, not an error; the only errors
// come from title or line evaluation.
func (a *Accessor) Get(key string) (*domain.Descriptor, error) {
	return a.GetIn(key, a.engine.NewScope())
}

// GetIn describes key in s. Its children will inherit s.
func (a *Accessor) GetIn(key string, s *scope.Scope) (*domain.Descriptor, error) {
	if key == "" {
		key = a.engine.schema.RootKey()
	}
	return a.engine.describe(key, s)
}

// describe builds the descriptor of key as seen from s. Title and line are
// evaluated now, once, with the node's props visible.
func (e *Engine) describe(key string, s *scope.Scope) (*domain.Descriptor, error) {
	def, ok := e.schema.Node(key)
	if !ok {
		e.logger.Debug("missing node", "key", key)
		if e.hooks.OnNodeMissing != nil {
			e.hooks.OnNodeMissing(&domain.NodeEvent{
				EventBase: domain.EventBase{Timestamp: time.Now(), Type: domain.EventNodeMissing},
				Key:       key,
				Depth:     s.Depth(),
			})
		}
		return domain.NewMissing(key), nil
	}

	view := s.Child()
	bindProps(view, def.Prop)

	title, err := e.interp.Eval(def.Title, view)
	if err != nil {
		return nil, fmt.Errorf("node %q title: %w", key, err)
	}
	if title == "" {
		title = key
	}

	d := domain.NewDescriptor(key, title, func(parent *scope.Scope) ([]*domain.Descriptor, error) {
		if parent == nil {
			parent = s
		}
		return e.expandNode(def, parent)
	})
	if def.Prop != nil {
		d.Prop, _ = scope.Clone(def.Prop).(map[string]any)
	}

	switch e.lineMode {
	case LineEvaluated:
		if d.Line, err = e.interp.Eval(def.Line, view); err != nil {
			return nil, fmt.Errorf("node %q line: %w", key, err)
		}
	default:
		d.Line = tgl.ToString(def.RawLine)
	}
	return d, nil
}

// expandNode enters def in a child of parent carrying its props and
// resolves its slot there.
func (e *Engine) expandNode(def *domain.NodeDefinition, parent *scope.Scope) ([]*domain.Descriptor, error) {
	start := time.Now()

	child := parent.Child()
	if child.Depth() > e.maxDepth {
		return nil, fmt.Errorf("expanding %q: %w (%d)", def.Key, domain.ErrRecursionLimit, e.maxDepth)
	}
	bindProps(child, def.Prop)

	children, err := e.expandSlot(def.Key, def.Slot, child)
	if err != nil {
		return nil, err
	}

	e.logger.Debug("node expanded", "key", def.Key, "slot", def.Slot.Kind.String(),
		"depth", child.Depth(), "children", len(children))
	if e.hooks.OnNodeExpand != nil {
		e.hooks.OnNodeExpand(&domain.NodeEvent{
			EventBase: domain.EventBase{Timestamp: time.Now(), Type: domain.EventNodeExpand},
			Key:       def.Key,
			Depth:     child.Depth(),
			Children:  len(children),
			Duration:  time.Since(start),
		})
	}
	return children, nil
}

// bindProps exposes props as "prop" and merges each key into s.
// Bind copies every value, so hooks never write through to the schema.
func bindProps(s *scope.Scope, prop map[string]any) {
	bag := make(map[string]any, len(prop))
	for k, v := range prop {
		bag[k] = v
		s.Bind(k, v)
	}
	s.Bind("prop", bag)
}
