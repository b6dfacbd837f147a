package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/require"
)

const sampleYAML = `
types:
  - name: app.tree.Node
    record:
      fields:
        - name: value
          type: int
        - name: children
          type: {list: {ref: Node}}
  - name: app.misc.Broken
    record:
      fields:
        - name: dep
          type: {ref: Nowhere}
`

func writeSample(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "types.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleYAML), 0o644))
	return path
}

func run(args ...string) (string, error) {
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestCompileCommand(t *testing.T) {
	path := writeSample(t)
	out, err := run("compile", path, "--type", "app.tree.Node")
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &doc))
	require.Equal(t, "#/$defs/Node", doc["$ref"])
}

func TestCompileCommandOutputFile(t *testing.T) {
	path := writeSample(t)
	dst := filepath.Join(t.TempDir(), "schema.json")
	_, err := run("compile", path, "--type", "Node", "-o", dst)
	require.NoError(t, err)

	data, err := os.ReadFile(dst)
	require.NoError(t, err)
	require.Contains(t, string(data), `"$defs"`)
}

func TestCompileCommandUnknownType(t *testing.T) {
	path := writeSample(t)
	_, err := run("compile", path, "--type", "Ghost")
	require.ErrorContains(t, err, "not declared")
}

func TestCompileCommandUnresolved(t *testing.T) {
	path := writeSample(t)
	_, err := run("compile", path, "--type", "Broken")
	require.ErrorContains(t, err, "unresolved references")
}

func TestCompileCommandWireFormat(t *testing.T) {
	path := writeSample(t)
	out, err := run("compile", path, "--type", "Node", "--format", "wire")
	require.NoError(t, err)

	var wire map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &wire))
	require.Equal(t, "record", wire["type"])
}

func TestCompileCommandCanonicalFormat(t *testing.T) {
	path := writeSample(t)
	first, err := run("compile", path, "--type", "Node", "--format", "canonical")
	require.NoError(t, err)
	second, err := run("compile", path, "--type", "Node", "--format", "canonical")
	require.NoError(t, err)
	// Separate loads build separate declaration identities, so only the
	// shape up to the ref id is comparable; both must parse identically
	// shaped objects.
	var a, b map[string]any
	require.NoError(t, json.Unmarshal([]byte(first), &a))
	require.NoError(t, json.Unmarshal([]byte(second), &b))
	require.Equal(t, a["type"], b["type"])
}

func TestCompileCommandBadMode(t *testing.T) {
	path := writeSample(t)
	_, err := run("compile", path, "--type", "Node", "--mode", "sideways")
	require.ErrorContains(t, err, "unknown mode")
}

func TestCheckCommand(t *testing.T) {
	path := writeSample(t)
	out, err := run("check", path)
	require.Error(t, err, "a file with unresolved references fails the check")
	require.Contains(t, out, "ok   app.tree.Node")
	require.Contains(t, out, "FAIL app.misc.Broken")
}
