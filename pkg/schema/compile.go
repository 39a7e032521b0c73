package schema

import (
	"fmt"
	"sort"

	"github.com/aretw0/genson/pkg/domain"
	"github.com/aretw0/genson/pkg/tgl"
)

// Compile turns a decoded document into a schema. Keys are added in order
// (sorted when order is empty); keys of doc missing from order are appended
// sorted. Problems are collected into an *AggregateError; the returned schema
// still holds every definition, compiled as far as possible.
func Compile(doc map[string]any, order ...string) (*domain.Schema, error) {
	s := domain.NewSchema()
	var errs []error

	for _, key := range keyOrder(doc, order) {
		def, err := CompileNode(key, doc[key])
		if err != nil {
			if nested := ValidationErrors(err); nested != nil {
				errs = append(errs, nested...)
			} else {
				errs = append(errs, err)
			}
		}
		s.Add(def)
	}

	if len(errs) > 0 {
		return s, &AggregateError{Errors: errs}
	}
	return s, nil
}

func keyOrder(doc map[string]any, order []string) []string {
	seen := make(map[string]bool, len(doc))
	keys := make([]string, 0, len(doc))
	for _, k := range order {
		if _, ok := doc[k]; ok && !seen[k] {
			seen[k] = true
			keys = append(keys, k)
		}
	}
	var rest []string
	for k := range doc {
		if !seen[k] {
			rest = append(rest, k)
		}
	}
	sort.Strings(rest)
	return append(keys, rest...)
}

// CompileNode compiles one definition. It always returns a usable
// definition; the error, if any, is an *AggregateError.
func CompileNode(key string, raw any) (*domain.NodeDefinition, error) {
	def := &domain.NodeDefinition{Key: key}
	c := &compiler{key: key}

	m, ok := tgl.Normalize(raw).(map[string]any)
	if !ok {
		if raw != nil {
			c.fail("", "node definition must be an object", raw)
		}
		return def, c.err()
	}

	// 1. Text fields
	if title, ok := m["title"]; ok {
		node, err := tgl.Decode(title)
		if err != nil {
			c.fail("title", err.Error(), title)
		}
		def.Title = node
	}
	if line, ok := m["line"]; ok {
		def.RawLine = line
		node, err := tgl.Decode(line)
		if err != nil {
			c.fail("line", err.Error(), line)
		}
		def.Line = node
	}

	// 2. Props
	if prop, ok := m["prop"]; ok && prop != nil {
		pm, isMap := prop.(map[string]any)
		if !isMap {
			c.fail("prop", "prop must be an object", prop)
		}
		def.Prop = pm
	}

	// 3. Slot, with "entry" as an alias
	slot, ok := m["slot"]
	field := "slot"
	if !ok || slot == nil {
		slot, field = m["entry"], "entry"
	}
	def.Slot = c.slot(field, slot)

	return def, c.err()
}

// CompileSlot compiles a raw slot specification on its own.
func CompileSlot(raw any) (domain.Slot, error) {
	c := &compiler{}
	slot := c.slot("slot", tgl.Normalize(raw))
	return slot, c.err()
}

func (c *compiler) err() error {
	if len(c.errs) == 0 {
		return nil
	}
	return &AggregateError{Errors: c.errs}
}

func (c *compiler) slot(field string, raw any) domain.Slot {
	switch v := raw.(type) {
	case nil:
		return domain.Slot{Kind: domain.SlotNone}

	case []any:
		return c.listSlot(field, v)

	case map[string]any:
		var slot domain.Slot
		if b, ok := v["branch"]; ok && b != nil {
			slot = domain.Slot{Kind: domain.SlotBranch, Branches: c.branches(field+".branch", b)}
		} else if seq, ok := v["seq"]; ok && seq != nil {
			slot = domain.Slot{Kind: domain.SlotSeq, Terms: c.terms(field+".seq", seq)}
		} else {
			t := c.term(field, v)
			return domain.Slot{Kind: domain.SlotTerm, Term: &t}
		}
		slot.OnEnter = c.hook(field+".onEnter", v["onEnter"])
		slot.OnLeave = c.hook(field+".onLeave", v["onLeave"])
		return slot
	}

	t := c.term(field, raw)
	return domain.Slot{Kind: domain.SlotTerm, Term: &t}
}

// listSlot handles bare arrays: ["seq", ...] and ["branch", ...] shorthands,
// plain key lists, and mixed lists which read as a sequence.
func (c *compiler) listSlot(field string, list []any) domain.Slot {
	if len(list) == 0 {
		return domain.Slot{Kind: domain.SlotNone}
	}
	if head, ok := list[0].(string); ok {
		switch head {
		case "seq":
			return domain.Slot{Kind: domain.SlotSeq, Terms: c.terms(field, list[1:])}
		case "branch":
			return domain.Slot{Kind: domain.SlotBranch, Branches: c.branches(field, list[1:])}
		}
	}

	keys := make([]string, 0, len(list))
	for _, item := range list {
		s, ok := item.(string)
		if !ok {
			return domain.Slot{Kind: domain.SlotSeq, Terms: c.terms(field, list)}
		}
		keys = append(keys, s)
	}
	return domain.Slot{Kind: domain.SlotList, Keys: keys}
}

func (c *compiler) branches(field string, raw any) []domain.Branch {
	list, ok := raw.([]any)
	if !ok {
		list = []any{raw}
	}
	out := make([]domain.Branch, 0, len(list))
	for i, item := range list {
		out = append(out, c.branch(fmt.Sprintf("%s[%d]", field, i), item))
	}
	return out
}

// branch resolves the weight (weight, wt, positional [w, content], else 1)
// and content (content, branch, value, positional, else the branch itself).
func (c *compiler) branch(field string, raw any) domain.Branch {
	var b domain.Branch
	switch v := raw.(type) {
	case map[string]any:
		weight, ok := v["weight"]
		if !ok || weight == nil {
			weight = v["wt"]
		}
		if weight != nil {
			expr, err := tgl.DecodeExpr(weight)
			if err != nil {
				c.fail(field+".weight", err.Error(), weight)
			}
			b.Weight = expr
		}
		for _, k := range []string{"content", "branch", "value"} {
			if content, ok := v[k]; ok && content != nil {
				b.Content = c.content(field+"."+k, content)
				return b
			}
		}
		if b.Weight != nil {
			// a weighted branch with no content realizes nothing
			return b
		}
		b.Content = []domain.Term{c.term(field, v)}

	case []any:
		if len(v) == 2 {
			if w, isNum := v[0].(float64); isNum {
				b.Weight = &tgl.Literal{Value: w}
				b.Content = c.content(field+"[1]", v[1])
				return b
			}
		}
		b.Content = c.terms(field, v)

	default:
		b.Content = []domain.Term{c.term(field, v)}
	}
	return b
}

// content reads a branch body: a term list, a {seq} object or one term.
func (c *compiler) content(field string, raw any) []domain.Term {
	if m, ok := raw.(map[string]any); ok {
		if seq, ok := m["seq"]; ok && seq != nil {
			return c.terms(field+".seq", seq)
		}
	}
	return c.terms(field, raw)
}

func (c *compiler) hook(field string, raw any) tgl.Node {
	if raw == nil {
		return nil
	}
	node, err := tgl.Decode(raw)
	if err != nil {
		c.fail(field, err.Error(), raw)
		return nil
	}
	return node
}
