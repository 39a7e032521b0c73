package schema_test

import (
	"testing"

	"github.com/aretw0/genson/pkg/domain"
	"github.com/aretw0/genson/pkg/schema"
	"github.com/aretw0/genson/pkg/tgl"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTerm(t *testing.T) {
	tests := []struct {
		in   string
		want domain.Term
	}{
		{"tree", domain.Term{Kind: domain.TermKey, Key: "tree", Count: domain.Once}},
		{"tree*3", domain.Term{Kind: domain.TermKey, Key: "tree", Count: domain.Fixed(3)}},
		{"tree*[2, 5]", domain.Term{Kind: domain.TermKey, Key: "tree", Count: domain.Range(2, 5)}},
		{"tree*[5,2]", domain.Term{Kind: domain.TermKey, Key: "tree", Count: domain.Range(2, 5)}},
		{"#Clearing", domain.Term{Kind: domain.TermTitle, Title: "Clearing"}},
		{"nih", domain.Term{Kind: domain.TermSkip}},
		{"", domain.Term{Kind: domain.TermSkip}},
		{"a*b", domain.Term{Kind: domain.TermKey, Key: "a*b", Count: domain.Once}},
		{"x*100000000000", domain.Term{Kind: domain.TermKey, Key: "x", Count: domain.Fixed(schema.MaxCount)}},
		{"x*[1,99999999999999999999999]", domain.Term{Kind: domain.TermKey, Key: "x", Count: domain.Range(1, schema.MaxCount)}},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, schema.ParseTerm(tt.in))
		})
	}
}

func TestCompileSlot_Shapes(t *testing.T) {
	t.Run("bare key list", func(t *testing.T) {
		slot, err := schema.CompileSlot([]any{"b", "c"})
		require.NoError(t, err)
		assert.Equal(t, domain.SlotList, slot.Kind)
		assert.Equal(t, []string{"b", "c"}, slot.Keys)
	})

	t.Run("seq shorthand", func(t *testing.T) {
		slot, err := schema.CompileSlot([]any{"seq", "a", "#b"})
		require.NoError(t, err)
		assert.Equal(t, domain.SlotSeq, slot.Kind)
		require.Len(t, slot.Terms, 2)
		assert.Equal(t, domain.TermTitle, slot.Terms[1].Kind)
	})

	t.Run("branch shorthand", func(t *testing.T) {
		slot, err := schema.CompileSlot([]any{"branch", "a", "b"})
		require.NoError(t, err)
		assert.Equal(t, domain.SlotBranch, slot.Kind)
		assert.Len(t, slot.Branches, 2)
	})

	t.Run("mixed list reads as a sequence", func(t *testing.T) {
		slot, err := schema.CompileSlot([]any{"a", nil, map[string]any{"ref": "b"}})
		require.NoError(t, err)
		assert.Equal(t, domain.SlotSeq, slot.Kind)
		assert.Equal(t, []domain.TermKind{domain.TermKey, domain.TermSkip, domain.TermRef},
			[]domain.TermKind{slot.Terms[0].Kind, slot.Terms[1].Kind, slot.Terms[2].Kind})
	})

	t.Run("single term", func(t *testing.T) {
		slot, err := schema.CompileSlot(map[string]any{"repeat": []any{2.0, 2.0}, "value": "x"})
		require.NoError(t, err)
		assert.Equal(t, domain.SlotTerm, slot.Kind)
		require.NotNil(t, slot.Term)
		assert.Equal(t, domain.TermRepeat, slot.Term.Kind)
		assert.Equal(t, domain.Range(2, 2), slot.Term.Count)
		assert.Equal(t, "x", slot.Term.Value.Key)
	})

	t.Run("empty", func(t *testing.T) {
		slot, err := schema.CompileSlot(nil)
		require.NoError(t, err)
		assert.Equal(t, domain.SlotNone, slot.Kind)
	})
}

func TestCompileSlot_Branches(t *testing.T) {
	slot, err := schema.CompileSlot(map[string]any{
		"onEnter": map[string]any{"type": "set", "path": "mood", "value": "calm"},
		"branch": []any{
			map[string]any{"weight": 3.0, "content": []any{"a"}},
			map[string]any{"wt": 1.0, "branch": map[string]any{"seq": []any{"b", "c"}}},
			[]any{2.0, "d"},
			map[string]any{"value": "e"},
			"f",
		},
	})
	require.NoError(t, err)
	require.Len(t, slot.Branches, 5)
	assert.NotNil(t, slot.OnEnter)

	assert.Equal(t, &tgl.Literal{Value: 3.0}, slot.Branches[0].Weight)
	assert.Equal(t, "a", slot.Branches[0].Content[0].Key)

	assert.Equal(t, &tgl.Literal{Value: 1.0}, slot.Branches[1].Weight)
	assert.Len(t, slot.Branches[1].Content, 2)

	assert.Equal(t, &tgl.Literal{Value: 2.0}, slot.Branches[2].Weight)
	assert.Equal(t, "d", slot.Branches[2].Content[0].Key)

	assert.Nil(t, slot.Branches[3].Weight)
	assert.Equal(t, "e", slot.Branches[3].Content[0].Key)

	assert.Nil(t, slot.Branches[4].Weight)
	assert.Equal(t, "f", slot.Branches[4].Content[0].Key)
}

func TestCompileSlot_Terms(t *testing.T) {
	slot, err := schema.CompileSlot(map[string]any{"seq": []any{
		map[string]any{"repeat": 2.0, "value": map[string]any{"value": "x"}},
		map[string]any{"continue": map[string]any{"op": "<", "left": map[string]any{"type": "ref", "to": "count"}, "right": 3.0}, "value": "y"},
		map[string]any{"title": "Inline", "color": "red"},
		map[string]any{"repeat": map[string]any{"type": "call", "path": "rand_int", "args": []any{1.0, 3.0}}, "value": "z"},
		[]any{"p", "q"},
		"nih",
	}})
	require.NoError(t, err)
	require.Len(t, slot.Terms, 7)

	rep := slot.Terms[0]
	assert.Equal(t, domain.TermRepeat, rep.Kind)
	assert.Equal(t, domain.Fixed(2), rep.Count)
	assert.Equal(t, "x", rep.Value.Key)

	cont := slot.Terms[1]
	assert.Equal(t, domain.TermContinue, cont.Kind)
	assert.NotNil(t, cont.While)
	assert.Equal(t, "y", cont.Value.Key)

	lit := slot.Terms[2]
	assert.Equal(t, domain.TermLiteral, lit.Kind)
	assert.Equal(t, map[string]any{"title": "Inline", "color": "red"}, lit.Literal)

	computed := slot.Terms[3]
	assert.NotNil(t, computed.Count.Expr)

	assert.Equal(t, "p", slot.Terms[4].Key)
	assert.Equal(t, "q", slot.Terms[5].Key)
	assert.Equal(t, domain.TermSkip, slot.Terms[6].Kind)
}

func TestCompileSlot_HugeCountsSaturate(t *testing.T) {
	slot, err := schema.CompileSlot(map[string]any{"seq": []any{
		map[string]any{"repeat": 1e20, "value": "x"},
		map[string]any{"repeat": []any{2.0, 1e30}, "value": "y"},
	}})
	require.NoError(t, err)
	require.Len(t, slot.Terms, 2)
	assert.Equal(t, domain.Fixed(schema.MaxCount), slot.Terms[0].Count)
	assert.Equal(t, domain.Range(2, schema.MaxCount), slot.Terms[1].Count)
}

func TestCompileNode_CollectsErrors(t *testing.T) {
	def, err := schema.CompileNode("broken", map[string]any{
		"title": "Broken",
		"prop":  "not a map",
		"slot": map[string]any{"seq": []any{
			map[string]any{"repeat": 2.0},
			map[string]any{"ref": 3.0},
			map[string]any{"repeat": "lots", "value": "x"},
		}},
	})
	require.Error(t, err)
	require.NotNil(t, def)
	assert.Equal(t, "broken", def.Key)

	errs := schema.ValidationErrors(err)
	require.Len(t, errs, 4)

	var ve *schema.ValidationError
	require.ErrorAs(t, errs[0], &ve)
	assert.Equal(t, "prop", ve.Field)
	assert.Contains(t, err.Error(), "4 validation errors")
}

func TestCompileNode_EntryAlias(t *testing.T) {
	def, err := schema.CompileNode("a", map[string]any{"entry": []any{"b"}})
	require.NoError(t, err)
	assert.Equal(t, domain.SlotList, def.Slot.Kind)
}

func TestParse_KeepsDocumentOrder(t *testing.T) {
	jsonDoc := `{"zeta": {"title": "Z", "slot": ["alpha"]}, "alpha": {"title": "A"}, "mid": {"title": "M"}}`
	s, err := schema.ParseJSON([]byte(jsonDoc))
	require.NoError(t, err)
	assert.Equal(t, []string{"zeta", "alpha", "mid"}, s.Order)
	assert.Equal(t, "zeta", s.RootKey())

	yamlDoc := `
zeta:
  title: Z
  slot: [alpha]
alpha:
  title: A
  prop:
    size: 3
`
	s, err = schema.ParseYAML([]byte(yamlDoc))
	require.NoError(t, err)
	assert.Equal(t, []string{"zeta", "alpha"}, s.Order)

	alpha, ok := s.Node("alpha")
	require.True(t, ok)
	assert.Equal(t, map[string]any{"size": 3.0}, alpha.Prop)
}

func TestParse_RejectsNonObjects(t *testing.T) {
	_, err := schema.ParseJSON([]byte(`["a"]`))
	assert.Error(t, err)

	_, err = schema.ParseYAML([]byte(`- a`))
	assert.Error(t, err)
}

func TestCompile_SortsUnorderedKeys(t *testing.T) {
	s, err := schema.Compile(map[string]any{
		"b": map[string]any{"title": "B"},
		"a": map[string]any{"title": "A"},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, s.Order)

	s, err = schema.Compile(map[string]any{
		"b": map[string]any{"title": "B"},
		"a": map[string]any{"title": "A"},
	}, "b")
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "a"}, s.Order)
}

func TestFormatFromPath(t *testing.T) {
	assert.Equal(t, schema.FormatYAML, schema.FormatFromPath("world.YML"))
	assert.Equal(t, schema.FormatYAML, schema.FormatFromPath("a/b/world.yaml"))
	assert.Equal(t, schema.FormatJSON, schema.FormatFromPath("world.json"))
	assert.Equal(t, schema.FormatJSON, schema.FormatFromPath("world"))
}
