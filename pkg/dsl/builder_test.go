package dsl

import (
	"errors"
	"testing"

	"github.com/aretw0/genson/internal/runtime"
	"github.com/aretw0/genson/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuilder_SimpleSchema(t *testing.T) {
	// 1. Build the schema using DSL
	b := New()

	b.Node("town").
		Title(map[string]any{"type": "seq", "items": []any{"Town of ", map[string]any{"type": "ref", "to": "name"}}}).
		Prop("name", "Ada").
		Seq(Times("house", 2, 2), Title("Market")).
		OnEnter(map[string]any{"type": "set", "path": "visited", "value": true})

	b.Node("house").
		Title("House").
		Branch().
		Option(3, Key("garden")).
		Option(1)

	b.Node("garden").Title("Garden")

	// 2. Compile to Loader
	loader, err := b.Build()
	require.NoError(t, err)

	keys, err := loader.ListNodes()
	require.NoError(t, err)
	assert.Equal(t, []string{"town", "house", "garden"}, keys)

	data, err := loader.GetNode("house")
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"title": "House",
		"slot": {"branch": [{"weight": 3, "content": ["garden"]}, {"weight": 1, "content": []}]}
	}`, string(data))

	// 3. Verify compiled shapes
	s, err := b.Schema()
	require.NoError(t, err)
	assert.Equal(t, "town", s.RootKey())

	town, _ := s.Node("town")
	assert.Equal(t, domain.SlotSeq, town.Slot.Kind)
	assert.NotNil(t, town.Slot.OnEnter)
	require.Len(t, town.Slot.Terms, 2)
	assert.Equal(t, domain.Fixed(2), town.Slot.Terms[0].Count)
	assert.Equal(t, domain.TermTitle, town.Slot.Terms[1].Kind)

	house, _ := s.Node("house")
	assert.Equal(t, domain.SlotBranch, house.Slot.Kind)
	assert.Len(t, house.Slot.Branches, 2)

	// 4. Expand it
	tree, err := runtime.NewEngine(s, runtime.WithSeed(3)).Tree("", 1)
	require.NoError(t, err)
	assert.Equal(t, "Town of Ada", tree.Title)
	require.Len(t, tree.Children, 3)
	assert.Equal(t, "Market", tree.Children[2].Title)
}

func TestBuilder_ShapeTransitions(t *testing.T) {
	b := New()
	assert.Equal(t, ShapeUnset, b.Shape("a"))

	b.Node("a").Seq(Key("b"))
	assert.Equal(t, ShapeSequence, b.Shape("a"))

	// The same node may not change shape later.
	b.Node("a").Branch().Option(1, Key("c"))
	assert.Equal(t, ShapeSequence, b.Shape("a"))

	_, err := b.Build()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrShapeAlreadySet))
	assert.Contains(t, err.Error(), `node "a"`)
	assert.Contains(t, err.Error(), "sequence, cannot become branch")
}

func TestBuilder_ListAndTerms(t *testing.T) {
	b := New()
	b.Node("root").List("a", "b")
	b.Node("a").Seq(
		Ref("b"),
		Repeat([]int{1, 3}, Key("b")),
		While(map[string]any{"op": "<", "left": map[string]any{"type": "ref", "to": "count"}, "right": 2}, Title("tick")),
		Literal(map[string]any{"title": "inline", "color": "red"}),
	)
	b.Node("b").Line("bee")

	assert.Equal(t, ShapeList, b.Shape("root"))
	assert.Equal(t, ShapeUnset, b.Shape("b"))

	s, err := b.Schema()
	require.NoError(t, err)

	root, _ := s.Node("root")
	assert.Equal(t, domain.SlotList, root.Slot.Kind)
	assert.Equal(t, []string{"a", "b"}, root.Slot.Keys)

	a, _ := s.Node("a")
	kinds := make([]domain.TermKind, len(a.Slot.Terms))
	for i, term := range a.Slot.Terms {
		kinds[i] = term.Kind
	}
	assert.Equal(t, []domain.TermKind{domain.TermRef, domain.TermRepeat, domain.TermContinue, domain.TermLiteral}, kinds)
	assert.Equal(t, domain.Range(1, 3), a.Slot.Terms[1].Count)
}

func TestShape_String(t *testing.T) {
	assert.Equal(t, "unset", ShapeUnset.String())
	assert.Equal(t, "sequence", ShapeSequence.String())
	assert.Equal(t, "branch", ShapeBranch.String())
	assert.Equal(t, "list", ShapeList.String())
}
