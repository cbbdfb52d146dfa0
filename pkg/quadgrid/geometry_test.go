package quadgrid

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGlobalGridDimensions(t *testing.T) {
	testCases := []struct {
		name  string
		res   float64
		nRows int
		nCols int
	}{
		{"1 degree", 1.0, 180, 360},
		{"half degree", 0.5, 360, 720},
		{"quarter degree", 0.25, 720, 1440},
		{"5 degrees", 5.0, 36, 72},
		{"coarse 60 degrees", 60.0, 3, 6},
		{"coarse 90 degrees", 90.0, 2, 4},
		{"non power of ten", 7.5, 24, 48},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			g, err := newGridGeometry(tc.res, GlobalBounds())
			require.NoError(t, err)
			assert.Equal(t, tc.nRows, g.nRows)
			assert.Equal(t, tc.nCols, g.nCols)
			assert.Equal(t, 0, g.rowOffset)
			assert.Equal(t, 0, g.colOffset)
			assert.Len(t, g.latCentroids, tc.nRows)
			assert.Len(t, g.lonCentroids, tc.nCols)
		})
	}
}

func TestConfigurationErrors(t *testing.T) {
	testCases := []struct {
		name   string
		res    float64
		bounds Bounds
	}{
		{"zero resolution", 0, GlobalBounds()},
		{"negative resolution", -1, GlobalBounds()},
		{"resolution not dividing 180", 7, GlobalBounds()},
		{"inverted latitudes", 1, Bounds{LonFrom: 0, LonTo: 10, LatFrom: 10, LatTo: 0}},
		{"equal latitudes", 1, Bounds{LonFrom: 0, LonTo: 10, LatFrom: 5, LatTo: 5}},
		{"inverted longitudes", 1, Bounds{LonFrom: 10, LonTo: 0, LatFrom: 0, LatTo: 10}},
		{"longitude past 180", 1, Bounds{LonFrom: 0, LonTo: 181, LatFrom: 0, LatTo: 10}},
		{"latitude below -90", 1, Bounds{LonFrom: 0, LonTo: 10, LatFrom: -91, LatTo: 10}},
		{"bounds collapse after snapping", 1, Bounds{LonFrom: 0.1, LonTo: 0.4, LatFrom: 0.1, LatTo: 0.4}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := newGridGeometry(tc.res, tc.bounds)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrConfiguration)
		})
	}
}

func TestCentroidValues(t *testing.T) {
	g, err := newGridGeometry(1.0, GlobalBounds())
	require.NoError(t, err)

	assert.InDelta(t, -89.5, g.latCentroids[0], 1e-12)
	assert.InDelta(t, 89.5, g.latCentroids[179], 1e-12)
	assert.InDelta(t, -179.5, g.lonCentroids[0], 1e-12)
	assert.InDelta(t, 179.5, g.lonCentroids[359], 1e-12)

	// Centroids ascend in steps of exactly one resolution.
	for i := 1; i < len(g.latCentroids); i++ {
		assert.InDelta(t, 1.0, g.latCentroids[i]-g.latCentroids[i-1], 1e-9)
	}
}

func TestBoundSnapping(t *testing.T) {
	// Bounds off the global cell boundaries snap to the nearest ones.
	g, err := newGridGeometry(1.0, Bounds{LonFrom: -10.4, LonTo: 10.6, LatFrom: 0.3, LatTo: 5.4})
	require.NoError(t, err)

	assert.Equal(t, Bounds{LonFrom: -10, LonTo: 11, LatFrom: 0, LatTo: 5}, g.bounds)
	assert.Equal(t, 21, g.nCols)
	assert.Equal(t, 5, g.nRows)
	assert.Equal(t, 170, g.colOffset)
	assert.Equal(t, 90, g.rowOffset)

	// First centroids sit half a cell inside the snapped bounds.
	assert.InDelta(t, -9.5, g.lonCentroids[0], 1e-12)
	assert.InDelta(t, 0.5, g.latCentroids[0], 1e-12)
}

func TestCoarseResolutionTolerance(t *testing.T) {
	// 180/0.1 accumulates float noise; the relative tolerance must not
	// drop a row.
	g, err := newGridGeometry(0.1, GlobalBounds())
	require.NoError(t, err)
	assert.Equal(t, 1800, g.nRows)
	assert.Equal(t, 3600, g.nCols)
}

func TestRowColOf(t *testing.T) {
	g, err := newGridGeometry(1.0, GlobalBounds())
	require.NoError(t, err)

	assert.Equal(t, 0, g.rowOf(-90))
	assert.Equal(t, 179, g.rowOf(90)) // pole clamps into the top row
	assert.Equal(t, 90, g.rowOf(0.5))
	assert.Equal(t, 0, g.colOf(-180))
	assert.Equal(t, 359, g.colOf(180))
	assert.Equal(t, 180, g.colOf(0.5))
}
