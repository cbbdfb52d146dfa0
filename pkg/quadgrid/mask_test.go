package quadgrid

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// boxRegion is a minimal Region for exercising the mask engine without
// pulling in a real geometry implementation.
type boxRegion struct {
	minLon, minLat, maxLon, maxLat float64
}

func (b boxRegion) Contains(lon, lat float64) (bool, error) {
	return lon >= b.minLon && lon <= b.maxLon && lat >= b.minLat && lat <= b.maxLat, nil
}

func (b boxRegion) Buffer(deg float64) (Region, error) {
	return boxRegion{b.minLon - deg, b.minLat - deg, b.maxLon + deg, b.maxLat + deg}, nil
}

func (b boxRegion) BBox() (float64, float64, float64, float64) {
	return b.minLon, b.minLat, b.maxLon, b.maxLat
}

// failingRegion simulates a malformed-geometry collaborator.
type failingRegion struct{ err error }

func (f failingRegion) Contains(lon, lat float64) (bool, error) { return false, f.err }
func (f failingRegion) Buffer(deg float64) (Region, error)      { return f, nil }
func (f failingRegion) BBox() (float64, float64, float64, float64) {
	return -180, -90, 180, 90
}

func newTestGrid(t *testing.T) *QuadGrid {
	t.Helper()
	g, err := New(1.0, Bounds{LonFrom: 0, LonTo: 10, LatFrom: 0, LatTo: 10})
	require.NoError(t, err)
	return g
}

func TestApplyMaskUnbuffered(t *testing.T) {
	g := newTestGrid(t)
	require.Nil(t, g.Mask())

	err := g.ApplyMask(boxRegion{2, 2, 8, 8}, 0)
	require.NoError(t, err)
	require.Len(t, g.Mask(), 100)

	// Centroids run 0.5..9.5; the box keeps 2.5..7.5 in both axes.
	assert.Equal(t, 36, g.MaskedCount())

	cell, err := g.CellAt(5, 5)
	require.NoError(t, err)
	assert.True(t, cell.Inside)
	cell, err = g.CellAt(0, 0)
	require.NoError(t, err)
	assert.False(t, cell.Inside)
}

func TestApplyMaskAutoBuffer(t *testing.T) {
	g := newTestGrid(t)

	require.NoError(t, g.ApplyMask(boxRegion{2, 2, 8, 8}, 0))
	unbuffered := append([]bool(nil), g.Mask()...)

	require.NoError(t, g.ApplyMask(boxRegion{2, 2, 8, 8}, AutoBuffer))
	buffered := g.Mask()

	// Buffering only adds cells: the unbuffered mask is a subset.
	for i, in := range unbuffered {
		if in {
			assert.True(t, buffered[i], "buffered mask dropped cell %d", i)
		}
	}
	assert.Greater(t, countTrue(buffered), countTrue(unbuffered))

	// The default buffer (res*sqrt(2)/2 ~ 0.707) reaches centroids half a
	// cell outside the box.
	row, col := 1, 1 // centroid (1.5, 1.5), 0.5 degrees outside
	assert.True(t, buffered[row*g.NCols()+col])
}

func TestApplyMaskExplicitBuffer(t *testing.T) {
	g := newTestGrid(t)

	require.NoError(t, g.ApplyMask(boxRegion{2, 2, 8, 8}, 2.0))
	// Box grows to 0..10: every centroid is inside.
	assert.Equal(t, 100, g.MaskedCount())
}

func TestApplyMaskReplacesWholesale(t *testing.T) {
	g := newTestGrid(t)

	require.NoError(t, g.ApplyMask(boxRegion{0, 0, 10, 10}, 0))
	assert.Equal(t, 100, g.MaskedCount())

	require.NoError(t, g.ApplyMask(boxRegion{2, 2, 8, 8}, 0))
	assert.Equal(t, 36, g.MaskedCount())
}

func TestApplyMaskErrorLeavesGridUntouched(t *testing.T) {
	g := newTestGrid(t)
	require.NoError(t, g.ApplyMask(boxRegion{2, 2, 8, 8}, 0))
	before := append([]bool(nil), g.Mask()...)

	boom := errors.New("self-intersecting ring")
	err := g.ApplyMask(failingRegion{err: boom}, 0)
	require.Error(t, err)
	assert.ErrorIs(t, err, boom) // collaborator error propagates unchanged
	assert.Equal(t, before, g.Mask())
}

func TestApplyMaskConfigurationErrors(t *testing.T) {
	g := newTestGrid(t)

	err := g.ApplyMask(nil, 0)
	assert.ErrorIs(t, err, ErrConfiguration)

	err = g.ApplyMask(boxRegion{2, 2, 8, 8}, -0.5)
	assert.ErrorIs(t, err, ErrConfiguration)
	assert.Nil(t, g.Mask())
}

func TestApplyMaskDoesNotTouchQidsOrAreas(t *testing.T) {
	g := newTestGrid(t)
	qids := append([]int64(nil), g.Qids()...)
	areas := append([]float64(nil), g.Areas()...)

	require.NoError(t, g.ApplyMask(boxRegion{2, 2, 8, 8}, AutoBuffer))
	assert.Equal(t, qids, g.Qids())
	assert.Equal(t, areas, g.Areas())
}

func TestClearMask(t *testing.T) {
	g := newTestGrid(t)
	require.NoError(t, g.ApplyMask(boxRegion{2, 2, 8, 8}, 0))
	require.NotNil(t, g.Mask())

	g.ClearMask()
	assert.Nil(t, g.Mask())
	assert.Equal(t, g.NCells(), g.MaskedCount())
}

func countTrue(mask []bool) int {
	n := 0
	for _, b := range mask {
		if b {
			n++
		}
	}
	return n
}
