package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/aretw0/genson"
	"github.com/aretw0/genson/internal/testutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const villageYAML = `
village:
  title: Village
  slot:
    seq: ["house*2", "#Well"]
house:
  title: House
  line: A small house.
  slot:
    seq: [door]
door:
  title: Door
orphan:
  title: Orphan
`

func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	t.Chdir(t.TempDir())

	var stdout, stderr bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestExpand_Text(t *testing.T) {
	path := testutils.WriteSchema(t, "village.yaml", villageYAML)

	out, _, err := run(t, "expand", "--schema", path, "--format", "text", "--seed", "3")
	require.NoError(t, err)
	assert.Equal(t, `Village
├── House: A small house.
│   └── Door
├── House: A small house.
│   └── Door
└── Well
`, out)
}

func TestExpand_JSONWithKeyAndDepth(t *testing.T) {
	path := testutils.WriteSchema(t, "village.yaml", villageYAML)

	out, _, err := run(t, "expand", "house", "-s", path, "-f", "json", "-d", "0")
	require.NoError(t, err)
	assert.Contains(t, out, `"title": "House"`)
	assert.NotContains(t, out, "Door")
}

func TestExpand_Metrics(t *testing.T) {
	path := testutils.WriteSchema(t, "village.yaml", villageYAML)

	_, errOut, err := run(t, "expand", "-s", path, "-f", "markdown", "--metrics")
	require.NoError(t, err)
	assert.Contains(t, errOut, "genson_nodes_expanded_total")
}

func TestExpand_BadFormat(t *testing.T) {
	path := testutils.WriteSchema(t, "village.yaml", villageYAML)
	_, _, err := run(t, "expand", "-s", path, "-f", "pdf")
	assert.Error(t, err)
}

func TestExpand_ConfigFile(t *testing.T) {
	path := testutils.WriteSchema(t, "village.yaml", villageYAML)
	cfgPath := filepath.Join(filepath.Dir(path), "genson.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("schema: "+path+"\nroot: door\n"), 0644))

	out, _, err := run(t, "expand", "--config", cfgPath, "-f", "text")
	require.NoError(t, err)
	assert.Equal(t, "Door\n", out)
}

func TestEval(t *testing.T) {
	doc := testutils.WriteSchema(t, "greet.yaml", `
type: seq
items:
  - "Hello, "
  - {type: ref, to: name, else: stranger}
  - "!"
`)
	out, _, err := run(t, "eval", doc, "--var", "name=Ada")
	require.NoError(t, err)
	assert.Equal(t, "Hello, Ada!\n", out)

	out, _, err = run(t, "eval", doc, "-n", "2")
	require.NoError(t, err)
	assert.Equal(t, "Hello, stranger!\nHello, stranger!\n", out)
}

func TestValidate(t *testing.T) {
	path := testutils.WriteSchema(t, "village.yaml", villageYAML)
	out, _, err := run(t, "validate", "-s", path)
	require.NoError(t, err)
	assert.Contains(t, out, "unreachable: orphan")
	assert.Contains(t, out, "Schema is valid!")

	broken := testutils.WriteSchema(t, "broken.json", `{"a": {"slot": ["ghost"]}}`)
	_, _, err = run(t, "validate", "-s", broken)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Missing node 'ghost' referenced by 'a'")
}

func TestGraph(t *testing.T) {
	path := testutils.WriteSchema(t, "village.yaml", villageYAML)
	out, _, err := run(t, "graph", "-s", path, "--trace", "2")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "graph TD\n"))
	assert.Contains(t, out, "village")
	assert.Contains(t, out, "door")
}

func TestPublishThenExpandFromRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	path := testutils.WriteSchema(t, "village.yaml", villageYAML)

	out, _, err := run(t, "publish", "-s", path, "--redis-addr", mr.Addr(), "--redis-prefix", "village:")
	require.NoError(t, err)
	assert.Equal(t, "Published 4 node(s) to "+mr.Addr()+"\n", out)

	out, _, err = run(t, "expand", "--redis-addr", mr.Addr(), "--redis-prefix", "village:", "-f", "text", "-d", "1")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "Village\n"), out)
}

func TestVersion(t *testing.T) {
	out, _, err := run(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "genson version "+strings.TrimSpace(genson.Version)+"\n", out)
}
