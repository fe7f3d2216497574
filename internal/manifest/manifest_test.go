package manifest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_KeepsFileOrder(t *testing.T) {
	doc, err := Parse([]byte(`{
  "mcpServers": {
    "zeta": {"command": "z"},
    "alpha": {"type": "sse", "url": "http://localhost:1"},
    "mid": {"url": "http://localhost:2", "args": ["a"]}
  }
}`))
	require.NoError(t, err)
	assert.Equal(t, []string{"zeta", "alpha", "mid"}, doc.IDs)
	assert.Equal(t, 3, doc.Len())
	assert.True(t, doc.Has("alpha"))
	assert.False(t, doc.Has("nope"))

	assert.Equal(t, "stdio", doc.Servers["zeta"].Transport())
	assert.Equal(t, "sse", doc.Servers["alpha"].Transport())
	assert.Equal(t, "http", doc.Servers["mid"].Transport())
	assert.JSONEq(t, `{"command": "z"}`, string(doc.Servers["zeta"].Raw))
}

func TestParse_NoServers(t *testing.T) {
	for _, in := range []string{`{}`, `{"mcpServers": null}`, `{"theme": "dark"}`} {
		doc, err := Parse([]byte(in))
		require.NoError(t, err, in)
		assert.Empty(t, doc.IDs, in)
	}
}

func TestParse_Errors(t *testing.T) {
	for _, in := range []string{`[]`, `{"mcpServers": []}`, `{"mcpServers": {"a": {"args": "x"}}}`, `{`} {
		_, err := Parse([]byte(in))
		assert.Error(t, err, in)
	}
}

func TestLister(t *testing.T) {
	dir := t.TempDir()
	l := Lister{
		ProjectPath: filepath.Join(dir, ".mcp.json"),
		UserPath:    filepath.Join(dir, "home", "config.json"),
	}

	ids, err := l.ListExtensionIDs(ScopeProject)
	require.NoError(t, err)
	assert.Empty(t, ids)

	require.NoError(t, os.WriteFile(l.ProjectPath, []byte(`{"mcpServers": {"b": {}, "a": {}}}`), 0o644))
	ids, err = l.ListExtensionIDs(ScopeProject)
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "a"}, ids)

	_, err = l.ListExtensionIDs(Scope("team"))
	assert.Error(t, err)
}

func TestLoad_Malformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".mcp.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"mcpServers":`), 0o644))

	_, found, err := Load(path)
	assert.True(t, found)
	assert.ErrorContains(t, err, path)
}

func TestParseScope(t *testing.T) {
	s, err := ParseScope("user")
	require.NoError(t, err)
	assert.Equal(t, ScopeUser, s)

	_, err = ParseScope("global")
	assert.Error(t, err)
}
