package validator

import (
	"testing"

	"github.com/aretw0/genson/pkg/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateSchema(t *testing.T) {
	// 1. Scenario A: Valid schema
	s, err := schema.ParseJSON([]byte(`{
		"world": {"slot": {"seq": ["town*2", {"ref": "sea"}]}},
		"town":  {"slot": {"branch": [{"weight": 1, "content": ["house"]}, {"weight": 1, "content": ["#empty"]}]}},
		"house": {"slot": ["room"]},
		"room":  {"slot": {"repeat": 2, "value": "room"}},
		"sea":   {},
		"moon":  {"slot": ["world"]}
	}`))
	require.NoError(t, err)

	report, err := ValidateSchema(s, "")
	require.NoError(t, err)
	assert.True(t, report.OK())
	assert.Equal(t, "world", report.Root)
	assert.Equal(t, []string{"world", "town", "sea", "house", "room"}, report.Reachable)
	assert.Equal(t, []string{"moon"}, report.Unreachable)
	assert.Equal(t, []string{"room"}, report.Recursive)

	// 2. Scenario B: Broken reference
	broken, err := schema.ParseJSON([]byte(`{
		"start": {"slot": {"seq": ["ghost_node", "real"]}},
		"real":  {"slot": {"continue": true, "value": "phantom"}}
	}`))
	require.NoError(t, err)

	report, err = ValidateSchema(broken, "start")
	require.Error(t, err)
	assert.False(t, report.OK())
	assert.Contains(t, err.Error(), "Missing node 'ghost_node' referenced by 'start'")
	assert.Contains(t, err.Error(), "Missing node 'phantom' referenced by 'real'")
	assert.Equal(t, []Dangling{{From: "start", To: "ghost_node"}, {From: "real", To: "phantom"}}, report.Dangling)

	// 3. Scenario C: Unknown root
	_, err = ValidateSchema(broken, "nowhere")
	assert.ErrorContains(t, err, "root node 'nowhere' not found")
}
