package runtime

import (
	"fmt"
	"math"
	"time"

	"github.com/aretw0/genson/pkg/domain"
	"github.com/aretw0/genson/pkg/scope"
	"github.com/aretw0/genson/pkg/tgl"
)

// fanOutMax is the upper bound of picks drawn from a bare key list.
const fanOutMax = 4

// ExpandSlot resolves a slot into the next level of descriptors.
// s is the scope of the node entry: slot hooks, props and term
// expressions all see it, and children capture it for their own Expand.
func (e *Engine) ExpandSlot(slot domain.Slot, s *scope.Scope) ([]*domain.Descriptor, error) {
	return e.expandSlot("", slot, s)
}

func (e *Engine) expandSlot(key string, slot domain.Slot, s *scope.Scope) ([]*domain.Descriptor, error) {
	switch slot.Kind {
	case domain.SlotList:
		return e.fanOut(slot.Keys, s)
	case domain.SlotSeq:
		return e.seq(key, slot.Terms, slot, s)
	case domain.SlotBranch:
		return e.branch(key, slot, s)
	case domain.SlotTerm:
		if slot.Term == nil {
			return nil, nil
		}
		return e.term(key, *slot.Term, s)
	}
	return nil, nil
}

// fanOut draws a count in [1,4] and picks that many keys uniformly, with
// repetition.
func (e *Engine) fanOut(keys []string, s *scope.Scope) ([]*domain.Descriptor, error) {
	if len(keys) == 0 {
		return nil, nil
	}
	rng := s.Rand()
	n := 1 + rng.IntN(fanOutMax)
	out := make([]*domain.Descriptor, 0, n)
	for i := 0; i < n; i++ {
		d, err := e.describe(keys[rng.IntN(len(keys))], s)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, nil
}

// seq resolves terms in order between the slot's onEnter and onLeave hooks.
func (e *Engine) seq(key string, terms []domain.Term, hooks domain.Slot, s *scope.Scope) ([]*domain.Descriptor, error) {
	if err := e.runHook(key, "onEnter", hooks.OnEnter, s); err != nil {
		return nil, err
	}

	var out []*domain.Descriptor
	for _, t := range terms {
		ds, err := e.term(key, t, s)
		if err != nil {
			return nil, err
		}
		out = append(out, ds...)
	}

	if err := e.runHook(key, "onLeave", hooks.OnLeave, s); err != nil {
		return nil, err
	}
	return out, nil
}

func (e *Engine) runHook(key, name string, hook tgl.Node, s *scope.Scope) error {
	if hook == nil {
		return nil
	}
	if _, err := e.interp.Eval(hook, s); err != nil {
		return fmt.Errorf("node %q %s: %w", key, name, err)
	}
	return nil
}

// branch realizes exactly one branch. Sibling branches are never evaluated.
func (e *Engine) branch(key string, slot domain.Slot, s *scope.Scope) ([]*domain.Descriptor, error) {
	switch len(slot.Branches) {
	case 0:
		return nil, nil
	case 1:
		return e.seq(key, slot.Branches[0].Content, slot, s)
	}

	weights := make([]float64, len(slot.Branches))
	for i, b := range slot.Branches {
		if b.Weight == nil {
			weights[i] = 1
			continue
		}
		w, err := e.interp.EvalExpr(b.Weight, s)
		if err != nil {
			return nil, fmt.Errorf("node %q branch %d weight: %w", key, i, err)
		}
		weights[i] = tgl.ClampWeight(w)
	}

	idx := tgl.WeightedIndex(weights, s.Rand())
	if e.hooks.OnBranchSelected != nil {
		e.hooks.OnBranchSelected(&domain.BranchEvent{
			EventBase: domain.EventBase{Timestamp: time.Now(), Type: domain.EventBranchSelected},
			Key:       key,
			Index:     idx,
			Weights:   weights,
		})
	}
	return e.seq(key, slot.Branches[idx].Content, slot, s)
}

// term resolves one term into zero or more descriptors. Repeat and continue
// results are flattened one level; skip terms contribute nothing.
func (e *Engine) term(key string, t domain.Term, s *scope.Scope) ([]*domain.Descriptor, error) {
	switch t.Kind {
	case domain.TermKey:
		n, err := e.count(key, t.Count, s)
		if err != nil {
			return nil, err
		}
		out := make([]*domain.Descriptor, 0, n)
		for i := 0; i < n; i++ {
			d, err := e.describe(t.Key, s)
			if err != nil {
				return nil, err
			}
			out = append(out, d)
		}
		return out, nil

	case domain.TermRef:
		d, err := e.describe(t.Key, s)
		if err != nil {
			return nil, err
		}
		return []*domain.Descriptor{d}, nil

	case domain.TermTitle:
		return []*domain.Descriptor{domain.NewLeaf(t.Title)}, nil

	case domain.TermRepeat:
		if t.Value == nil {
			return nil, nil
		}
		n, err := e.count(key, t.Count, s)
		if err != nil {
			return nil, err
		}
		var out []*domain.Descriptor
		for i := 0; i < n; i++ {
			ds, err := e.term(key, *t.Value, s)
			if err != nil {
				return nil, err
			}
			out = append(out, ds...)
		}
		return out, nil

	case domain.TermContinue:
		return e.continueLoop(key, t, s)

	case domain.TermLiteral:
		d, err := e.literal(t.Literal, s)
		if err != nil {
			return nil, err
		}
		return []*domain.Descriptor{d}, nil
	}
	return nil, nil
}

// continueLoop resolves the value while the predicate holds. The predicate
// sees the 0-based iteration number as "count".
func (e *Engine) continueLoop(key string, t domain.Term, s *scope.Scope) ([]*domain.Descriptor, error) {
	if t.Value == nil {
		return nil, nil
	}
	var out []*domain.Descriptor
	count := 0
	for {
		check := s.Child()
		check.Bind("count", float64(count))
		ok, err := e.interp.EvalExpr(t.While, check)
		if err != nil {
			return nil, fmt.Errorf("node %q continue: %w", key, err)
		}
		if !tgl.Truthy(ok) {
			break
		}
		if count >= e.continueCeiling {
			e.truncated(key, "continue loop truncated", e.continueCeiling)
			break
		}

		ds, err := e.term(key, *t.Value, s)
		if err != nil {
			return nil, err
		}
		out = append(out, ds...)
		count++
	}
	return out, nil
}

// count realizes a repetition count: fixed, a uniform draw in an inclusive
// range, or an evaluated expression. Every result is capped at the
// iteration ceiling.
func (e *Engine) count(key string, c domain.Count, s *scope.Scope) (int, error) {
	if c.Expr != nil {
		v, err := e.interp.EvalExpr(c.Expr, s)
		if err != nil {
			return 0, err
		}
		n := tgl.ToNumber(v)
		if math.IsNaN(n) || n <= 0 {
			return 0, nil
		}
		if n > float64(e.maxIterations) {
			e.truncated(key, "repeat count truncated", e.maxIterations)
			return e.maxIterations, nil
		}
		return int(math.Floor(n)), nil
	}

	n := max(c.Min, 0)
	if c.Max > c.Min {
		n = c.Min + s.Rand().IntN(c.Max-c.Min+1)
	}
	if n > e.maxIterations {
		e.truncated(key, "repeat count truncated", e.maxIterations)
		return e.maxIterations, nil
	}
	return n, nil
}

func (e *Engine) truncated(key, msg string, limit int) {
	e.logger.Debug(msg, "key", key, "limit", limit)
	if e.hooks.OnLoopTruncated != nil {
		e.hooks.OnLoopTruncated(&domain.LoopEvent{
			EventBase: domain.EventBase{Timestamp: time.Now(), Type: domain.EventLoopTruncated},
			Key:       key,
			Limit:     limit,
		})
	}
}

// literal turns an opaque inline object into a leaf. Its title and line
// fields, if any, are rendered as TGL.
func (e *Engine) literal(lit map[string]any, s *scope.Scope) (*domain.Descriptor, error) {
	copied, _ := scope.Clone(lit).(map[string]any)
	d := &domain.Descriptor{Literal: copied}

	var err error
	if d.Title, err = e.render(lit["title"], s); err != nil {
		return nil, fmt.Errorf("literal title: %w", err)
	}
	if d.Line, err = e.render(lit["line"], s); err != nil {
		return nil, fmt.Errorf("literal line: %w", err)
	}
	return d, nil
}

func (e *Engine) render(raw any, s *scope.Scope) (string, error) {
	if raw == nil {
		return "", nil
	}
	node, err := tgl.Decode(raw)
	if err != nil {
		return "", err
	}
	return e.interp.Eval(node, s)
}
