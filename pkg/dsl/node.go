package dsl

// NodeBuilder configures a node's text and props, and picks its slot shape.
type NodeBuilder struct {
	n *node
	b *Builder
}

// Title sets the title: a string or a TGL AST value.
func (nb *NodeBuilder) Title(v any) *NodeBuilder {
	nb.n.def["title"] = raw(v)
	return nb
}

// Line sets the line: a string or a TGL AST value.
func (nb *NodeBuilder) Line(v any) *NodeBuilder {
	nb.n.def["line"] = raw(v)
	return nb
}

// Prop sets an inheritable property.
func (nb *NodeBuilder) Prop(key string, value any) *NodeBuilder {
	props, _ := nb.n.def["prop"].(map[string]any)
	if props == nil {
		props = make(map[string]any)
		nb.n.def["prop"] = props
	}
	props[key] = raw(value)
	return nb
}

// List makes the slot a bare key list: one to four keys picked at random.
func (nb *NodeBuilder) List(keys ...string) *Builder {
	if nb.b.transition(nb.n, ShapeList) {
		items := make([]any, len(keys))
		for i, k := range keys {
			items[i] = k
		}
		nb.n.def["slot"] = items
	}
	return nb.b
}

// Seq makes the slot a sequence of terms.
func (nb *NodeBuilder) Seq(terms ...Term) *SeqBuilder {
	slot := map[string]any{"seq": []any{}}
	if nb.b.transition(nb.n, ShapeSequence) {
		nb.n.def["slot"] = slot
	}
	sb := &SeqBuilder{slot: slot}
	return sb.Then(terms...)
}

// Branch makes the slot a weighted choice between branches.
func (nb *NodeBuilder) Branch() *BranchBuilder {
	slot := map[string]any{"branch": []any{}}
	if nb.b.transition(nb.n, ShapeBranch) {
		nb.n.def["slot"] = slot
	}
	return &BranchBuilder{slot: slot}
}

// SeqBuilder appends terms to a sequence slot.
type SeqBuilder struct {
	slot map[string]any
}

// Then appends terms.
func (sb *SeqBuilder) Then(terms ...Term) *SeqBuilder {
	sb.slot["seq"] = append(sb.slot["seq"].([]any), rawTerms(terms)...)
	return sb
}

// OnEnter sets a TGL hook run before the terms resolve.
func (sb *SeqBuilder) OnEnter(hook any) *SeqBuilder {
	sb.slot["onEnter"] = raw(hook)
	return sb
}

// OnLeave sets a TGL hook run after the terms resolve.
func (sb *SeqBuilder) OnLeave(hook any) *SeqBuilder {
	sb.slot["onLeave"] = raw(hook)
	return sb
}

// BranchBuilder appends weighted branches to a branch slot.
type BranchBuilder struct {
	slot map[string]any
}

// Option appends a branch with a fixed weight.
func (bb *BranchBuilder) Option(weight float64, terms ...Term) *BranchBuilder {
	return bb.Weighted(weight, terms...)
}

// Weighted appends a branch whose weight is a number or a TGL expression.
func (bb *BranchBuilder) Weighted(weight any, terms ...Term) *BranchBuilder {
	branch := map[string]any{
		"weight":  raw(weight),
		"content": rawTerms(terms),
	}
	bb.slot["branch"] = append(bb.slot["branch"].([]any), branch)
	return bb
}

// OnEnter sets a TGL hook run before the chosen branch resolves.
func (bb *BranchBuilder) OnEnter(hook any) *BranchBuilder {
	bb.slot["onEnter"] = raw(hook)
	return bb
}

// OnLeave sets a TGL hook run after the chosen branch resolves.
func (bb *BranchBuilder) OnLeave(hook any) *BranchBuilder {
	bb.slot["onLeave"] = raw(hook)
	return bb
}
