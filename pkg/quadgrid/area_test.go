package quadgrid

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAreaSymmetryAboutEquator(t *testing.T) {
	for _, lat := range []float64{0.5, 10.5, 45.5, 89.5} {
		assert.InDelta(t, areaKm2(lat, 1.0), areaKm2(-lat, 1.0), 1e-6,
			"area at %g and %g must match", lat, -lat)
	}
}

func TestAreaDecreasesTowardPoles(t *testing.T) {
	prev := math.Inf(1)
	for lat := 0.5; lat < 90; lat++ {
		a := areaKm2(lat, 1.0)
		assert.Less(t, a, prev, "area must shrink with |lat|, failed at %g", lat)
		assert.Greater(t, a, 0.0)
		prev = a
	}
}

func TestAreaEquatorMagnitude(t *testing.T) {
	// A 1x1 degree cell at the equator is roughly 111km x 111km.
	a := areaKm2(0.5, 1.0)
	assert.InEpsilon(t, 111.19*111.19, a, 0.01)
}

func TestGlobalAreaSum(t *testing.T) {
	// The sum over a global grid approximates Earth's surface area, and
	// the spherical model keeps the relative error small at any
	// resolution.
	const earthSurfaceKm2 = 510072000.0

	for _, res := range []float64{10.0, 1.0} {
		g, err := NewGlobal(res)
		require.NoError(t, err)
		assert.InEpsilon(t, earthSurfaceKm2, g.TotalAreaKm2(), 1e-3,
			"total area at %g degrees", res)
	}
}

func TestAreaConstantAlongRow(t *testing.T) {
	g, err := NewGlobal(30)
	require.NoError(t, err)
	// One area value per row is the whole contract: longitude never
	// enters the formula.
	assert.Len(t, g.Areas(), g.NRows())
}
