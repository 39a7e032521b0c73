package dsl

import (
	"fmt"

	"github.com/aretw0/genson/pkg/scope"
)

// Term is one entry of a sequence or branch, in its schema form.
type Term struct {
	raw any
}

// Raw returns the schema value of the term.
func (t Term) Raw() any { return t.raw }

// Key references another node once.
func Key(key string) Term {
	return Term{raw: key}
}

// Times repeats a reference a uniform number of times in [lo, hi].
func Times(key string, lo, hi int) Term {
	if lo == hi {
		return Term{raw: fmt.Sprintf("%s*%d", key, lo)}
	}
	return Term{raw: fmt.Sprintf("%s*[%d,%d]", key, lo, hi)}
}

// Title is a leaf with a literal title.
func Title(title string) Term {
	return Term{raw: "#" + title}
}

// Ref references a node by key, bypassing term shorthand parsing.
func Ref(key string) Term {
	return Term{raw: map[string]any{"ref": key}}
}

// Repeat resolves term count times; count is a number, a [min,max] pair
// or a TGL expression.
func Repeat(count any, term Term) Term {
	return Term{raw: map[string]any{"repeat": raw(count), "value": term.raw}}
}

// While resolves term as long as the TGL predicate holds. The predicate
// sees the 0-based iteration as "count".
func While(predicate any, term Term) Term {
	return Term{raw: map[string]any{"continue": raw(predicate), "value": term.raw}}
}

// Literal is an inline leaf object. Its title and line are rendered as TGL.
func Literal(fields map[string]any) Term {
	return Term{raw: scope.Clone(fields)}
}

func rawTerms(terms []Term) []any {
	out := make([]any, len(terms))
	for i, t := range terms {
		out[i] = t.raw
	}
	return out
}

// raw unwraps builder values so they can be embedded in definitions.
func raw(v any) any {
	switch t := v.(type) {
	case Term:
		return t.raw
	}
	return v
}
