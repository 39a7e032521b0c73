package file_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/aretw0/genson/pkg/adapters/file"
	"github.com/aretw0/genson/pkg/ports"
	contract "github.com/aretw0/genson/pkg/ports/tests"
	"github.com/aretw0/genson/pkg/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ ports.SchemaLoader = (*file.Loader)(nil)

const yamlDoc = `
world:
  title: World
  slot: [town, town]
town:
  title: Town
  prop:
    size: 3
`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestFileLoader_Contract(t *testing.T) {
	loader, err := file.New(writeFile(t, "schema.json", `{"b": {"title": "B"}, "a": {"slot": ["b"]}}`))
	require.NoError(t, err)

	contract.SchemaLoaderContractTest(t, loader, map[string][]byte{
		"b": []byte(`{"title":"B"}`),
		"a": []byte(`{"slot":["b"]}`),
	})
}

func TestFileLoader_YAMLKeepsDocumentOrder(t *testing.T) {
	path := writeFile(t, "schema.yml", yamlDoc)
	loader, err := file.New(path)
	require.NoError(t, err)
	assert.Equal(t, path, loader.Path)

	keys, err := loader.ListNodes()
	require.NoError(t, err)
	assert.Equal(t, []string{"world", "town"}, keys)

	data, err := loader.GetNode("town")
	require.NoError(t, err)
	assert.JSONEq(t, `{"title": "Town", "prop": {"size": 3}}`, string(data))

	s, err := schema.Load(loader)
	require.NoError(t, err)
	assert.Equal(t, "world", s.RootKey())
}

func TestFileLoader_Errors(t *testing.T) {
	_, err := file.New(filepath.Join(t.TempDir(), "missing.json"))
	assert.ErrorContains(t, err, "failed to read schema file")

	_, err = file.New(writeFile(t, "list.json", `[1, 2]`))
	assert.ErrorContains(t, err, "expected an object")

	_, err = file.NewFromBytes([]byte("- a\n- b\n"), schema.FormatYAML)
	assert.ErrorContains(t, err, "expected a mapping")
}
