package tgl

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToNumber(t *testing.T) {
	assert.Equal(t, 3.0, ToNumber("3"))
	assert.Equal(t, 2.5, ToNumber(" 2.5 "))
	assert.Equal(t, 7.0, ToNumber(7))
	assert.True(t, math.IsNaN(ToNumber("")))
	assert.True(t, math.IsNaN(ToNumber("inf")))
	assert.True(t, math.IsInf(ToNumber("Infinity"), 1))
	assert.True(t, math.IsNaN(ToNumber(true)))
	assert.True(t, math.IsNaN(ToNumber(nil)))
}

func TestToString(t *testing.T) {
	assert.Equal(t, "3", ToString(3.0))
	assert.Equal(t, "0.5", ToString(0.5))
	assert.Equal(t, "1e+21", ToString(1e21))
	assert.Equal(t, "NaN", ToString(math.NaN()))
	assert.Equal(t, "a,1", ToString([]any{"a", 1.0}))
	assert.Equal(t, `{"k":"v"}`, ToString(map[string]any{"k": "v"}))
	assert.Equal(t, "", ToString(nil))
}

func TestClampWeight(t *testing.T) {
	assert.Equal(t, 1.0, ClampWeight("heavy"))
	assert.Equal(t, 0.0, ClampWeight(-2.0))
	assert.Equal(t, 0.0, ClampWeight(0.0))
	assert.Equal(t, 4.0, ClampWeight("4"))
}

func TestNormalize(t *testing.T) {
	got := Normalize(map[any]any{"n": 3, "list": []any{json.Number("1.5"), int64(2)}})
	assert.Equal(t, map[string]any{"n": 3.0, "list": []any{1.5, 2.0}}, got)
}

func TestDecode_ShapesAndAliases(t *testing.T) {
	n, err := Decode(map[string]any{"type": "Roulette", "items": []any{"a"}})
	require.NoError(t, err)
	require.IsType(t, &Roulette{}, n)
	assert.Nil(t, n.(*Roulette).Items[0].Weight)

	n, err = Decode(map[string]any{"type": "delegate", "weight": 2.0, "value": "x"})
	require.NoError(t, err)
	assert.Equal(t, "i", n.(*Delegate).Index)

	n, err = Decode(map[string]any{"type": "layer", "before": []any{"ignored", map[string]any{"type": "set", "path": "a", "value": 1.0}}})
	require.NoError(t, err)
	assert.Len(t, n.(*Layer).Before, 1)

	n, err = Decode(map[string]any{"type": "module", "items": []any{"a"}, "default": "$0"})
	require.NoError(t, err)
	assert.Equal(t, 0, n.(*Module).DefaultIndex)

	n, err = Decode(map[string]any{"type": "mystery"})
	require.NoError(t, err)
	assert.Equal(t, "mystery", n.Tag())
}

func TestDecodeExpr_CompactForms(t *testing.T) {
	e, err := DecodeExpr(map[string]any{"expr": []any{1.0, "+", 2.0}})
	require.NoError(t, err)
	assert.Equal(t, &BinaryExpr{Op: "+", Left: &Literal{Value: 1.0}, Right: &Literal{Value: 2.0}}, e)

	e, err = DecodeExpr(map[string]any{"expr": []any{"var", "a.b"}})
	require.NoError(t, err)
	assert.Equal(t, &PathExpr{Path: "a.b"}, e)

	e, err = DecodeExpr([]any{"a", "b"})
	require.NoError(t, err)
	assert.IsType(t, &Concat{}, e)
}

func TestDecodeExpr_TypedArrayIsJoined(t *testing.T) {
	parts := []any{"a", "b", "c"}
	want := &Concat{Parts: []Expr{&Literal{Value: "a"}, &Literal{Value: "b"}, &Literal{Value: "c"}}}

	for _, typ := range []string{"expr", "expression"} {
		e, err := DecodeExpr(map[string]any{"type": typ, "expr": parts})
		require.NoError(t, err)
		assert.Equal(t, want, e, typ)
	}

	e, err := DecodeExpr(map[string]any{"expr": parts})
	require.NoError(t, err)
	assert.Equal(t, &BinaryExpr{Op: "b", Left: &Literal{Value: "a"}, Right: &Literal{Value: "c"}}, e)
}

func TestDomainLabel(t *testing.T) {
	d := &Domain{Name: "age", Branches: []DomainBranch{
		{Values: []float64{0}, Label: "newborn"},
		{Ranges: [][2]float64{{1, 12}}, Label: "child"},
	}}
	label, ok := d.Label(0.0)
	assert.True(t, ok)
	assert.Equal(t, "newborn", label)

	label, ok = d.Label("12")
	assert.True(t, ok)
	assert.Equal(t, "child", label)

	_, ok = d.Label(13.0)
	assert.False(t, ok)
}
