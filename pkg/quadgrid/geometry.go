package quadgrid

import (
	"fmt"
	"math"
)

// Bounds delimits a grid region in decimal degrees. The zero value is not
// usable; use GlobalBounds for the full globe.
type Bounds struct {
	LonFrom float64
	LonTo   float64
	LatFrom float64
	LatTo   float64
}

// GlobalBounds returns the full-globe extent.
func GlobalBounds() Bounds {
	return Bounds{LonFrom: -180, LonTo: 180, LatFrom: -90, LatTo: 90}
}

func (b Bounds) String() string {
	return fmt.Sprintf("%g<=lon<=%g | %g<=lat<=%g", b.LonFrom, b.LonTo, b.LatFrom, b.LatTo)
}

// divTolerance is the relative tolerance for the 180/resolution
// divisibility check. It must scale with the cell count, not be an
// absolute epsilon, or coarse resolutions lose a row to float round-off.
const divTolerance = 1e-9

// gridGeometry derives the canonical grid layout from a resolution and
// snapped bounds. Row/column offsets are indices into the implicit global
// grid so that regional grids stay aligned with it.
type gridGeometry struct {
	res        float64
	bounds     Bounds
	rowsGlobal int
	colsGlobal int
	rowOffset  int
	colOffset  int
	nRows      int
	nCols      int

	latCentroids []float64
	lonCentroids []float64
}

// globalRows derives the global row count from a resolution, validating
// that the resolution evenly divides the 180 degree latitude span.
func globalRows(res float64) (int, error) {
	if math.IsNaN(res) || math.IsInf(res, 0) || res <= 0 {
		return 0, fmt.Errorf("%w: resolution must be positive, got %g", ErrConfiguration, res)
	}
	rows := 180.0 / res
	n := int(math.Round(rows))
	if n < 1 || math.Abs(rows-float64(n)) > divTolerance*rows {
		return 0, fmt.Errorf("%w: resolution %g does not evenly divide 180 degrees", ErrConfiguration, res)
	}
	return n, nil
}

func newGridGeometry(res float64, b Bounds) (*gridGeometry, error) {
	rowsGlobal, err := globalRows(res)
	if err != nil {
		return nil, err
	}
	colsGlobal := 2 * rowsGlobal

	if err := validateBounds(b); err != nil {
		return nil, err
	}

	// Snap each bound to the nearest global cell boundary so the region is
	// an exact subset of the global grid at this resolution.
	rowFrom := snapIndex(b.LatFrom+90, res, rowsGlobal)
	rowTo := snapIndex(b.LatTo+90, res, rowsGlobal)
	colFrom := snapIndex(b.LonFrom+180, res, colsGlobal)
	colTo := snapIndex(b.LonTo+180, res, colsGlobal)

	if rowTo <= rowFrom || colTo <= colFrom {
		return nil, fmt.Errorf("%w: bounds %v collapse to an empty grid at resolution %g", ErrConfiguration, b, res)
	}

	g := &gridGeometry{
		res: res,
		bounds: Bounds{
			LonFrom: -180 + res*float64(colFrom),
			LonTo:   -180 + res*float64(colTo),
			LatFrom: -90 + res*float64(rowFrom),
			LatTo:   -90 + res*float64(rowTo),
		},
		rowsGlobal: rowsGlobal,
		colsGlobal: colsGlobal,
		rowOffset:  rowFrom,
		colOffset:  colFrom,
		nRows:      rowTo - rowFrom,
		nCols:      colTo - colFrom,
	}

	g.latCentroids = make([]float64, g.nRows)
	for i := range g.latCentroids {
		g.latCentroids[i] = -90 + res*(float64(rowFrom+i)+0.5)
	}
	g.lonCentroids = make([]float64, g.nCols)
	for i := range g.lonCentroids {
		g.lonCentroids[i] = -180 + res*(float64(colFrom+i)+0.5)
	}
	return g, nil
}

func validateBounds(b Bounds) error {
	for _, v := range []float64{b.LonFrom, b.LonTo, b.LatFrom, b.LatTo} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: bounds %v contain a non-finite value", ErrConfiguration, b)
		}
	}
	if b.LonFrom >= b.LonTo || b.LatFrom >= b.LatTo {
		return fmt.Errorf("%w: inverted bounds %v", ErrConfiguration, b)
	}
	if b.LonFrom < -180 || b.LonTo > 180 || b.LatFrom < -90 || b.LatTo > 90 {
		return fmt.Errorf("%w: bounds %v exceed the global domain", ErrConfiguration, b)
	}
	return nil
}

// snapIndex rounds an offset from the global origin to the nearest cell
// boundary, clamped to the global index range [0, max].
func snapIndex(offset, res float64, max int) int {
	i := int(math.Round(offset / res))
	if i < 0 {
		i = 0
	}
	if i > max {
		i = max
	}
	return i
}

// rowOf returns the global row index of a latitude, clamped to the grid.
func (g *gridGeometry) rowOf(lat float64) int {
	r := int(math.Floor((lat + 90) / g.res))
	if r < 0 {
		r = 0
	}
	if r >= g.rowsGlobal {
		r = g.rowsGlobal - 1
	}
	return r
}

// colOf returns the global column index of a longitude, clamped to the grid.
func (g *gridGeometry) colOf(lon float64) int {
	c := int(math.Floor((lon + 180) / g.res))
	if c < 0 {
		c = 0
	}
	if c >= g.colsGlobal {
		c = g.colsGlobal - 1
	}
	return c
}
