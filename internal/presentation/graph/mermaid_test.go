package graph_test

import (
	"strings"
	"testing"

	"github.com/aretw0/genson/internal/presentation/graph"
	"github.com/aretw0/genson/pkg/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateMermaid(t *testing.T) {
	s, err := schema.ParseJSON([]byte(`{
		"world": {"slot": {"seq": ["town*[1,3]", "sea", {"repeat": 2, "value": "isle.north"}]}},
		"town": {"slot": {"branch": [
			{"weight": 3, "content": ["house"]},
			{"weight": {"type": "ref", "to": "size"}, "content": ["ghost-town"]}
		]}},
		"house": {"slot": ["room", "room"]},
		"sea": {"slot": {"continue": true, "value": "wave"}},
		"wave": {},
		"room": {},
		"isle.north": {}
	}`))
	require.NoError(t, err)

	tests := []struct {
		name     string
		overlay  *graph.GraphOverlay
		contains []string
		absent   []string
	}{
		{
			name: "Shapes",
			contains: []string{
				"graph TD\n",
				`world(("world"))`,
				`town{"town"}`,
				`house["house"]`,
				`wave(["wave"])`,
				`isle_north(["isle.north"])`,
			},
		},
		{
			name: "Edge Labels",
			contains: []string{
				`world -- "x1..3" --> town`,
				"world --> sea",
				`world -- "x2" --> isle_north`,
				`town -- "w=3" --> house`,
				`town -- "w=?" --> ghost_town`,
				`house -- "1..4" --> room`,
				`sea -. "while" .-> wave`,
			},
		},
		{
			name: "Missing Nodes",
			contains: []string{
				"classDef missing",
				`ghost_town["ghost-town"]`,
				"class ghost_town missing;",
			},
		},
		{
			name:    "Overlay",
			overlay: &graph.GraphOverlay{Root: "town", VisitedNodes: []string{"town", "house", "town", "ghost-town"}},
			contains: []string{
				`town(("town"))`,
				`world["world"]`,
				"classDef visited",
				"class town visited;",
				"class house visited;",
			},
			absent: []string{"class ghost_town visited;"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := graph.GenerateMermaid(s, tt.overlay)
			for _, want := range tt.contains {
				assert.Contains(t, out, want)
			}
			for _, unwanted := range tt.absent {
				assert.NotContains(t, out, unwanted)
			}
		})
	}

	out := graph.GenerateMermaid(s, &graph.GraphOverlay{VisitedNodes: []string{"town", "town"}})
	assert.Equal(t, 1, strings.Count(out, "class town visited;"))
}
