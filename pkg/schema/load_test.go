package schema_test

import (
	"errors"
	"testing"

	"github.com/aretw0/genson/pkg/adapters/memory"
	"github.com/aretw0/genson/pkg/domain"
	"github.com/aretw0/genson/pkg/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_CompilesInListOrder(t *testing.T) {
	loader := memory.NewLoader(map[string]string{
		"world": `{"title": "World", "slot": ["town"]}`,
		"town":  `{"title": "Town", "prop": {"size": 3}}`,
	}, "world", "town")

	s, err := schema.Load(loader)
	require.NoError(t, err)
	assert.Equal(t, []string{"world", "town"}, s.Order)
	assert.Equal(t, "world", s.RootKey())

	town, ok := s.Node("town")
	require.True(t, ok)
	assert.Equal(t, map[string]any{"size": 3.0}, town.Prop)

	world, _ := s.Node("world")
	assert.Equal(t, domain.SlotList, world.Slot.Kind)
}

func TestLoad_AggregatesDefinitionErrors(t *testing.T) {
	loader := memory.NewLoader(map[string]string{
		"bad": `{"prop": "not a map"}`,
	})
	s, err := schema.Load(loader)
	require.Error(t, err)
	require.NotNil(t, s)
	assert.Len(t, schema.ValidationErrors(err), 1)
}

type brokenLoader struct{}

func (brokenLoader) GetNode(string) ([]byte, error) { return nil, domain.ErrNodeNotFound }
func (brokenLoader) ListNodes() ([]string, error)   { return []string{"a"}, nil }

func TestLoad_LoaderErrorsAbort(t *testing.T) {
	_, err := schema.Load(brokenLoader{})
	assert.True(t, errors.Is(err, domain.ErrNodeNotFound))

	_, err = schema.Load(memory.NewLoader(map[string]string{"a": `{not json`}))
	assert.ErrorContains(t, err, `decoding node "a"`)
}
