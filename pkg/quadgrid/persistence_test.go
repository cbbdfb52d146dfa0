package quadgrid

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveLoadRoundTrip(t *testing.T) {
	g, err := New(1.0, Bounds{LonFrom: 0, LonTo: 10, LatFrom: 0, LatTo: 10})
	require.NoError(t, err)
	require.NoError(t, g.ApplyMask(boxRegion{2, 2, 8, 8}, 0))

	path := filepath.Join(t.TempDir(), "grid.gob")
	require.NoError(t, g.SaveToFile(path))

	loaded, err := LoadFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, g.Resolution(), loaded.Resolution())
	assert.Equal(t, g.Bounds(), loaded.Bounds())
	assert.Equal(t, g.Qids(), loaded.Qids())
	assert.Equal(t, g.Areas(), loaded.Areas())
	assert.Equal(t, g.Mask(), loaded.Mask())
}

func TestSaveLoadWithoutMask(t *testing.T) {
	g, err := NewGlobal(30)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "grid.gob")
	require.NoError(t, g.SaveToFile(path))

	loaded, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Nil(t, loaded.Mask())
	assert.Equal(t, g.Qids(), loaded.Qids())
}

func TestLoadMissingFile(t *testing.T) {
	_, err := LoadFromFile(filepath.Join(t.TempDir(), "absent.gob"))
	assert.Error(t, err)
}
