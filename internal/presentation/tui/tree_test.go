package tui

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/aretw0/genson/pkg/domain"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleTree() *domain.Descriptor {
	root := &domain.Descriptor{Key: "world", Title: "World", Line: "a small world"}
	town := &domain.Descriptor{Key: "town", Title: "Town_1"}
	town.Children = []*domain.Descriptor{
		domain.NewLeaf("Market"),
		domain.NewMissing("ghost"),
	}
	lit := &domain.Descriptor{Title: "Lamp", Literal: map[string]any{"title": "Lamp"}}
	root.Children = []*domain.Descriptor{town, lit}
	return root
}

func TestWriteText(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteText(&buf, sampleTree(), termenv.Ascii))

	assert.Equal(t, "World: a small world\n"+
		"├── Town_1\n"+
		"│   ├── Market\n"+
		"│   └── missing node: ghost\n"+
		"└── Lamp\n", buf.String())
}

func TestWriteText_Colored(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteText(&buf, sampleTree(), termenv.ANSI))
	assert.Contains(t, buf.String(), "\x1b[")
}

func TestMarkdown(t *testing.T) {
	md := Markdown(sampleTree())
	assert.Equal(t, "# World\n\n"+
		"_a small world_\n\n"+
		"- **Town\\_1**\n"+
		"  - **Market**\n"+
		"  - ~~missing node: ghost~~\n"+
		"- `Lamp`\n", md)
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, sampleTree()))

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "World", decoded["title"])
	children := decoded["children"].([]any)
	require.Len(t, children, 2)
	grand := children[0].(map[string]any)["children"].([]any)
	assert.Equal(t, true, grand[1].(map[string]any)["missing"])
}

func TestRender_NonTerminalFallsBackToText(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, sampleTree(), FormatAuto))
	assert.Contains(t, buf.String(), "└── Lamp")
	assert.NotContains(t, buf.String(), "\x1b[")

	buf.Reset()
	require.NoError(t, Render(&buf, sampleTree(), FormatMarkdown))
	assert.Contains(t, buf.String(), "# World")
}

func TestNewRenderer(t *testing.T) {
	out, err := NewRenderer()("# Title\n\n- **item**\n")
	require.NoError(t, err)
	assert.Contains(t, out, "item")
}

func TestParseFormat(t *testing.T) {
	for in, want := range map[string]Format{
		"": FormatAuto, "auto": FormatAuto, "TEXT": FormatText, "md": FormatMarkdown,
		"markdown": FormatMarkdown, "json": FormatJSON,
	} {
		got, err := ParseFormat(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseFormat("xml")
	assert.Error(t, err)
}

func TestPrintBanner(t *testing.T) {
	var buf bytes.Buffer
	PrintBanner(&buf, "v1.2.3")
	assert.Contains(t, buf.String(), "v1.2.3")
	assert.NotContains(t, buf.String(), "\x1b[")
	assert.False(t, IsTerminal(&buf))
}
