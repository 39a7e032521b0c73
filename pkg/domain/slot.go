package domain

import "github.com/aretw0/genson/pkg/tgl"

// SlotKind discriminates the shapes a slot can take.
type SlotKind int

const (
	// SlotNone produces no children.
	SlotNone SlotKind = iota
	// SlotList picks one to four keys uniformly, with repetition.
	SlotList
	// SlotSeq resolves every term in order.
	SlotSeq
	// SlotBranch realizes exactly one weighted branch.
	SlotBranch
	// SlotTerm resolves a single term.
	SlotTerm
)

func (k SlotKind) String() string {
	switch k {
	case SlotList:
		return "list"
	case SlotSeq:
		return "seq"
	case SlotBranch:
		return "branch"
	case SlotTerm:
		return "term"
	}
	return "none"
}

// Slot describes how a node produces its children.
type Slot struct {
	Kind     SlotKind
	Keys     []string
	Terms    []Term
	Branches []Branch
	Term     *Term

	// OnEnter and OnLeave run in the slot's child scope around the terms.
	OnEnter tgl.Node
	OnLeave tgl.Node
}

// Branch is one weighted alternative of a branch slot.
// A nil Weight counts as 1.
type Branch struct {
	Weight  tgl.Expr
	Content []Term
}

// TermKind discriminates the shapes a term can take.
type TermKind int

const (
	TermSkip TermKind = iota
	TermKey
	TermTitle
	TermRepeat
	TermContinue
	TermRef
	TermLiteral
)

func (k TermKind) String() string {
	switch k {
	case TermKey:
		return "key"
	case TermTitle:
		return "title"
	case TermRepeat:
		return "repeat"
	case TermContinue:
		return "continue"
	case TermRef:
		return "ref"
	case TermLiteral:
		return "literal"
	}
	return "skip"
}

// Term is one step within a sequence.
type Term struct {
	Kind TermKind

	// Key is the referenced node for TermKey and TermRef.
	Key string
	// Title is the literal title of a TermTitle leaf.
	Title string
	// Count applies to TermKey and TermRepeat.
	Count Count
	// Value is the repeated term of TermRepeat and TermContinue.
	Value *Term
	// While is the TermContinue predicate. It sees the 0-based iteration
	// number bound as "count".
	While tgl.Expr
	// Literal is the opaque object of a TermLiteral.
	Literal map[string]any
}

// Count is an inclusive repetition range, or an expression evaluated at
// expansion time when Expr is set.
type Count struct {
	Min, Max int
	Expr     tgl.Expr
}

// Once is the count of a plain key term.
var Once = Count{Min: 1, Max: 1}

// Fixed returns a count of exactly n.
func Fixed(n int) Count { return Count{Min: n, Max: n} }

// Range returns an inclusive count; bounds are swapped when reversed.
func Range(lo, hi int) Count {
	if hi < lo {
		lo, hi = hi, lo
	}
	return Count{Min: lo, Max: hi}
}

// References lists the node keys a slot may resolve, in first-seen order.
func (s Slot) References() []string {
	var out []string
	seen := map[string]bool{}
	add := func(k string) {
		if k != "" && !seen[k] {
			seen[k] = true
			out = append(out, k)
		}
	}
	var walk func(t *Term)
	walk = func(t *Term) {
		if t == nil {
			return
		}
		switch t.Kind {
		case TermKey, TermRef:
			add(t.Key)
		case TermRepeat, TermContinue:
			walk(t.Value)
		}
	}

	for _, k := range s.Keys {
		add(k)
	}
	for i := range s.Terms {
		walk(&s.Terms[i])
	}
	for _, b := range s.Branches {
		for i := range b.Content {
			walk(&b.Content[i])
		}
	}
	walk(s.Term)
	return out
}
