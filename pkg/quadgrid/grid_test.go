package quadgrid

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewGlobalScenario(t *testing.T) {
	g, err := NewGlobal(1.0)
	require.NoError(t, err)

	assert.Equal(t, 180, g.NRows())
	assert.Equal(t, 360, g.NCols())
	assert.Equal(t, 64800, g.NCells())
	assert.Len(t, g.Qids(), 64800)
	assert.Len(t, g.Areas(), 180)
	assert.Nil(t, g.Mask())
	assert.Equal(t, GlobalBounds(), g.Bounds())
}

func TestRegionalGridAlignsWithGlobal(t *testing.T) {
	// A regional grid is the exact subset of the global grid: same qids,
	// same centroids, cell for cell.
	global, err := NewGlobal(5.0)
	require.NoError(t, err)
	regional, err := New(5.0, Bounds{LonFrom: 0, LonTo: 30, LatFrom: 10, LatTo: 40})
	require.NoError(t, err)

	require.Equal(t, 6, regional.NRows())
	require.Equal(t, 6, regional.NCols())

	for r := 0; r < regional.NRows(); r++ {
		assert.Equal(t, global.LatCentroids()[regional.RowOffset()+r], regional.LatCentroids()[r])
		for c := 0; c < regional.NCols(); c++ {
			want, err := global.QidAt(regional.RowOffset()+r, regional.ColOffset()+c)
			require.NoError(t, err)
			got, err := regional.QidAt(r, c)
			require.NoError(t, err)
			assert.Equal(t, want, got, "cell (%d, %d)", r, c)
		}
	}
}

func TestQidOf(t *testing.T) {
	g, err := NewGlobal(1.0)
	require.NoError(t, err)

	// The cell holding a point and the cell at its indices agree.
	want, err := g.QidAt(g.RowOffset()+127, g.ColOffset()+57)
	require.NoError(t, err)
	got, err := g.QidOf(-180+57.5, -90+127.5)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestQidOfOutsideRegionalBounds(t *testing.T) {
	g, err := New(1.0, Bounds{LonFrom: 0, LonTo: 10, LatFrom: 0, LatTo: 10})
	require.NoError(t, err)

	_, err = g.QidOf(-5, 5)
	assert.ErrorIs(t, err, ErrDomain)
	_, err = g.QidOf(5, 15)
	assert.ErrorIs(t, err, ErrDomain)
}

func TestQidAtIndexError(t *testing.T) {
	g, err := NewGlobal(30)
	require.NoError(t, err)

	_, err = g.QidAt(-1, 0)
	assert.ErrorIs(t, err, ErrIndex)
	_, err = g.QidAt(0, g.NCols())
	assert.ErrorIs(t, err, ErrIndex)
}

func TestCellAt(t *testing.T) {
	g, err := New(1.0, Bounds{LonFrom: 0, LonTo: 10, LatFrom: 0, LatTo: 10})
	require.NoError(t, err)

	cell, err := g.CellAt(2, 3)
	require.NoError(t, err)
	assert.InDelta(t, 2.5, cell.Lat, 1e-12)
	assert.InDelta(t, 3.5, cell.Lon, 1e-12)
	assert.Equal(t, g.Areas()[2], cell.AreaKm2)
	assert.True(t, cell.Inside, "no mask applied means every cell is inside")

	qid, err := g.QidAt(2, 3)
	require.NoError(t, err)
	assert.Equal(t, qid, cell.Qid)
}

func TestMaskedAreaKm2(t *testing.T) {
	g, err := New(1.0, Bounds{LonFrom: 0, LonTo: 10, LatFrom: 0, LatTo: 10})
	require.NoError(t, err)

	assert.Equal(t, g.TotalAreaKm2(), g.MaskedAreaKm2())

	require.NoError(t, g.ApplyMask(boxRegion{2, 2, 8, 8}, 0))
	masked := g.MaskedAreaKm2()
	assert.Greater(t, masked, 0.0)
	assert.Less(t, masked, g.TotalAreaKm2())
}

func TestGridString(t *testing.T) {
	g, err := NewGlobal(0.5)
	require.NoError(t, err)
	assert.Equal(t, "QuadGrid 0.5 deg | -180<=lon<=180 | -90<=lat<=90", g.String())
}
