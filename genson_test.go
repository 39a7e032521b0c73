package genson_test

import (
	"context"
	"testing"

	"github.com/aretw0/genson"
	"github.com/aretw0/genson/internal/testutils"
	"github.com/aretw0/genson/pkg/adapters/memory"
	"github.com/aretw0/genson/pkg/domain"
	"github.com/aretw0/genson/pkg/schema"
	"github.com/aretw0/genson/pkg/tgl"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const worldYAML = `
world:
  title: World
  prop:
    name: Ada
  slot:
    seq: ["town*2", "#Sky"]
town:
  title:
    type: seq
    items: ["Town of ", {type: ref, to: name}]
  slot: [house]
house:
  title: House
`

func TestFacade_FileSchema(t *testing.T) {
	path := testutils.WriteSchema(t, "world.yaml", worldYAML)

	engine, err := genson.New(path, genson.WithSeed(7))
	require.NoError(t, err)
	assert.Equal(t, "world", engine.Name)
	assert.Equal(t, "world", engine.Root())

	root, err := engine.Get("")
	require.NoError(t, err)
	assert.Equal(t, "World", root.Title)

	tree, err := engine.Expand("", 2)
	require.NoError(t, err)
	require.Len(t, tree.Children, 3)
	assert.Equal(t, "Town of Ada", tree.Children[0].Title)
	assert.Equal(t, "Town of Ada", tree.Children[1].Title)
	assert.Equal(t, "Sky", tree.Children[2].Title)
	assert.NotEmpty(t, tree.Children[0].Children)
	assert.Empty(t, tree.Children[2].Children)
}

func TestFacade_DirectorySchema(t *testing.T) {
	dir := t.TempDir()
	testutils.WriteFiles(t, dir, map[string]string{
		"forest.md": "---\ntitle: Forest\nslot: [tree]\n---\nA dark forest.",
		"tree.md":   "---\ntitle: Tree\n---\nBark.",
	})

	engine, err := genson.New(dir)
	require.NoError(t, err)

	d, err := engine.Accessor()("forest")
	require.NoError(t, err)
	assert.Equal(t, "Forest", d.Title)
	assert.Equal(t, "A dark forest.", d.Line)

	children, err := d.Expand(nil)
	require.NoError(t, err)
	require.NotEmpty(t, children)
	assert.Equal(t, "Tree", children[0].Title)
}

func TestFacade_RequiresSource(t *testing.T) {
	_, err := genson.New("")
	assert.Error(t, err)

	_, err = genson.New("/does/not/exist.json")
	assert.Error(t, err)
}

func TestFacade_CompileErrorsAreAggregated(t *testing.T) {
	_, err := genson.NewFromDocument([]byte(`{"a": {"slot": {"seq": [{"ref": 3}]}}, "b": {"prop": 1}}`), schema.FormatJSON)
	require.Error(t, err)
	assert.Len(t, schema.ValidationErrors(err), 2)
}

func TestFacade_WithLoaderAndRoot(t *testing.T) {
	loader := memory.NewLoader(map[string]string{
		"a": `{"title": "A"}`,
		"b": `{"title": "B", "line": "b line"}`,
	}, "a", "b")

	engine, err := genson.New("", genson.WithLoader(loader), genson.WithRoot("b"))
	require.NoError(t, err)
	assert.Equal(t, "b", engine.Root())

	d, err := engine.Get("")
	require.NoError(t, err)
	assert.Equal(t, "B", d.Title)
	assert.Equal(t, "b line", d.Line)

	missing, err := engine.Get("nope")
	require.NoError(t, err)
	assert.True(t, missing.Missing)

	keys := []string{}
	for _, def := range engine.Inspect() {
		keys = append(keys, def.Key)
	}
	assert.Equal(t, []string{"a", "b"}, keys)
	assert.Same(t, loader, engine.Loader())
}

func TestFacade_WithSchema(t *testing.T) {
	s, err := schema.ParseJSON([]byte(`{"only": {"title": "Only"}}`))
	require.NoError(t, err)

	engine, err := genson.New("", genson.WithSchema(s))
	require.NoError(t, err)
	assert.Nil(t, engine.Loader())
	assert.Error(t, engine.Reload())

	_, err = engine.Watch(context.Background())
	assert.Error(t, err)
}

func TestFacade_EvaluateUsesSeedAndVars(t *testing.T) {
	node := tgl.MustDecode(map[string]any{
		"type": "seq",
		"items": []any{
			map[string]any{"type": "ref", "to": "who"},
			" rolled ",
			map[string]any{"type": "option", "items": []any{"1", "2", "3", "4", "5", "6"}},
		},
	})

	render := func() string {
		engine, err := genson.NewFromDocument([]byte(`{}`), schema.FormatJSON,
			genson.WithSeed(42), genson.WithVars(map[string]any{"who": "Ada"}))
		require.NoError(t, err)
		out, err := engine.Evaluate(node)
		require.NoError(t, err)
		return out
	}

	first := render()
	assert.Regexp(t, `^Ada rolled [1-6]$`, first)
	assert.Equal(t, first, render())
}

func TestFacade_LineModeAndHooks(t *testing.T) {
	var expanded []string
	engine, err := genson.NewFromDocument([]byte(`{
		"a": {"line": {"type": "seq", "items": ["x", "y"]}, "slot": {"seq": ["#leaf"]}}
	}`), schema.FormatJSON,
		genson.WithLineMode(genson.LineEvaluated),
		genson.WithLifecycleHooks(domain.LifecycleHooks{
			OnNodeExpand: func(ev *domain.NodeEvent) { expanded = append(expanded, ev.Key) },
		}))
	require.NoError(t, err)

	tree, err := engine.Expand("a", 1)
	require.NoError(t, err)
	assert.Equal(t, "xy", tree.Line)
	assert.Equal(t, []string{"a"}, expanded)
}

func TestFacade_ReloadKeepsPreviousSchemaOnError(t *testing.T) {
	dir := t.TempDir()
	testutils.WriteFiles(t, dir, map[string]string{
		"a.json": `{"title": "First"}`,
	})

	engine, err := genson.New(dir)
	require.NoError(t, err)

	testutils.WriteFiles(t, dir, map[string]string{
		"a.json": `{"title": "Second"}`,
	})
	require.NoError(t, engine.Reload())
	d, err := engine.Get("a")
	require.NoError(t, err)
	assert.Equal(t, "Second", d.Title)

	testutils.WriteFiles(t, dir, map[string]string{
		"a.json": `{"title": "Third", "slot": {"seq": [{"ref": 3}]}}`,
	})
	assert.Error(t, engine.Reload())
	d, err = engine.Get("a")
	require.NoError(t, err)
	assert.Equal(t, "Second", d.Title)
}
