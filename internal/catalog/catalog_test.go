package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuiltin_OrderStable(t *testing.T) {
	c := Builtin()

	ids := c.IDs()
	require.NotEmpty(t, ids)
	assert.Equal(t, "hikvision", ids[0])
	assert.Equal(t, GenericID, ids[len(ids)-1])

	// Order must be identical across constructions.
	assert.Equal(t, ids, Builtin().IDs())
}

func TestCatalog_GetFallsBackToGeneric(t *testing.T) {
	c := Builtin()

	p := c.Get("no-such-vendor")
	assert.Equal(t, GenericID, p.ID)
	assert.Equal(t, []int{554, 8554}, p.Ports)
}

func TestCatalog_GenericHasNoMatchTokens(t *testing.T) {
	assert.Empty(t, Builtin().Generic().Match)
}

func TestCatalog_PutReplacesInPlace(t *testing.T) {
	c := New(
		Profile{ID: "a", Ports: []int{1}},
		Profile{ID: "b", Ports: []int{2}},
		Profile{ID: "a", Ports: []int{9}},
	)

	assert.Equal(t, []string{"a", "b"}, c.IDs())
	assert.Equal(t, []int{9}, c.Get("a").Ports)
}

func TestRegistry_ReloadOverlay(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "vendors.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
vendors:
  - id: hikvision
    match: [hikvision]
    paths: [Streaming/Channels/201]
    ports: [554]
  - id: acme
    match: [acme]
    paths: [live/main]
    ports: [8554]
`), 0o644))

	reg := NewRegistry(path)
	require.NoError(t, reg.Reload())

	c := reg.Current()
	// Overridden vendor keeps its original position.
	assert.Equal(t, "hikvision", c.IDs()[0])
	assert.Equal(t, []string{"Streaming/Channels/201"}, c.Get("hikvision").Paths)
	// New vendor is appended after generic but still reachable.
	assert.Equal(t, []string{"live/main"}, c.Get("acme").Paths)
}

func TestRegistry_ReloadBadFileKeepsCurrent(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "vendors.yaml")
	require.NoError(t, os.WriteFile(path, []byte("vendors: [{id: acme}]"), 0o644))

	reg := NewRegistry(path)
	require.NoError(t, reg.Reload())
	before := reg.Current()

	require.NoError(t, os.WriteFile(path, []byte("{not yaml"), 0o644))
	assert.Error(t, reg.Reload())
	assert.Same(t, before, reg.Current())
}

func TestRegistry_NoPathIsNoop(t *testing.T) {
	reg := NewRegistry("")
	assert.NoError(t, reg.Reload())
	assert.Equal(t, Builtin().IDs(), reg.Current().IDs())
}
