// Package quadgrid generates a quadcell uniform-resolution grid over a
// latitude/longitude domain and performs simple operations on it: qid
// (quadtree identifier) encoding, spherical cell areas, region masking
// and great-circle distances.
package quadgrid

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
)

// QuadGrid owns one grid: the derived geometry plus the qid, area and
// mask arrays. Qids and areas are computed once at construction and are
// immutable afterwards; the mask is the only field rewritten post
// construction, wholesale on each ApplyMask call. Slices returned by
// accessors are the grid's own backing arrays and must not be modified.
//
// A QuadGrid is not safe for concurrent masking; callers must serialize
// ApplyMask per instance. Everything else is read-only after New.
type QuadGrid struct {
	geom  *gridGeometry
	key   QuadKey
	qids  []int64   // row-major, nRows*nCols
	areas []float64 // one per row, constant across columns
	mask  []bool    // row-major, nil until ApplyMask
}

// Cell is one grid cell, addressed by grid-local row/column indices.
type Cell struct {
	Qid     int64
	Row     int
	Col     int
	Lat     float64
	Lon     float64
	AreaKm2 float64
	Inside  bool
}

// New constructs a grid at the given resolution restricted to the given
// bounds. The bounds are snapped to the nearest global cell boundaries,
// so a regional grid is always an exact subset of the global grid at the
// same resolution: same qids, same centroids.
func New(res float64, b Bounds) (*QuadGrid, error) {
	geom, err := newGridGeometry(res, b)
	if err != nil {
		return nil, err
	}
	key, err := newQuadKey(geom.rowsGlobal)
	if err != nil {
		return nil, err
	}

	g := &QuadGrid{
		geom:  geom,
		key:   key,
		qids:  make([]int64, geom.nRows*geom.nCols),
		areas: make([]float64, geom.nRows),
	}
	for r := 0; r < geom.nRows; r++ {
		g.areas[r] = areaKm2(geom.latCentroids[r], res)
		for c := 0; c < geom.nCols; c++ {
			qid, err := key.Encode(geom.rowOffset+r, geom.colOffset+c)
			if err != nil {
				return nil, err
			}
			g.qids[r*geom.nCols+c] = qid
		}
	}
	return g, nil
}

// NewGlobal constructs a full-globe grid at the given resolution.
func NewGlobal(res float64) (*QuadGrid, error) {
	return New(res, GlobalBounds())
}

func (g *QuadGrid) String() string {
	return fmt.Sprintf("QuadGrid %g deg | %s", g.geom.res, g.geom.bounds)
}

// Resolution is the cell edge length in degrees of latitude.
func (g *QuadGrid) Resolution() float64 { return g.geom.res }

// Bounds returns the snapped bounds actually covered by the grid.
func (g *QuadGrid) Bounds() Bounds { return g.geom.bounds }

// Key returns the qid codec for this grid's resolution.
func (g *QuadGrid) Key() QuadKey { return g.key }

func (g *QuadGrid) NRows() int { return g.geom.nRows }
func (g *QuadGrid) NCols() int { return g.geom.nCols }

// NCells is the total cell count, NRows*NCols.
func (g *QuadGrid) NCells() int { return g.geom.nRows * g.geom.nCols }

// RowOffset is the global row index of the grid's first (southernmost) row.
func (g *QuadGrid) RowOffset() int { return g.geom.rowOffset }

// ColOffset is the global column index of the grid's first (westernmost) column.
func (g *QuadGrid) ColOffset() int { return g.geom.colOffset }

// LatCentroids returns the ascending cell-centre latitudes, one per row.
func (g *QuadGrid) LatCentroids() []float64 { return g.geom.latCentroids }

// LonCentroids returns the ascending cell-centre longitudes, one per column.
func (g *QuadGrid) LonCentroids() []float64 { return g.geom.lonCentroids }

// Qids returns the row-major qid array.
func (g *QuadGrid) Qids() []int64 { return g.qids }

// Areas returns one cell area in km2 per row; area is constant along a row.
func (g *QuadGrid) Areas() []float64 { return g.areas }

// Mask returns the row-major mask array, or nil if no mask has been
// applied. A nil mask means every cell counts as inside.
func (g *QuadGrid) Mask() []bool { return g.mask }

// QidAt returns the qid of the cell at grid-local (row, col).
func (g *QuadGrid) QidAt(row, col int) (int64, error) {
	if row < 0 || row >= g.geom.nRows || col < 0 || col >= g.geom.nCols {
		return 0, fmt.Errorf("%w: cell (%d, %d) not in %dx%d grid", ErrIndex, row, col, g.geom.nRows, g.geom.nCols)
	}
	return g.qids[row*g.geom.nCols+col], nil
}

// QidOf returns the qid of the cell containing the given coordinate.
func (g *QuadGrid) QidOf(lon, lat float64) (int64, error) {
	row := g.geom.rowOf(lat) - g.geom.rowOffset
	col := g.geom.colOf(lon) - g.geom.colOffset
	if row < 0 || row >= g.geom.nRows || col < 0 || col >= g.geom.nCols {
		return 0, fmt.Errorf("%w: point (%g, %g) outside grid bounds %s", ErrDomain, lon, lat, g.geom.bounds)
	}
	return g.qids[row*g.geom.nCols+col], nil
}

// CellAt returns the full cell record at grid-local (row, col).
func (g *QuadGrid) CellAt(row, col int) (Cell, error) {
	qid, err := g.QidAt(row, col)
	if err != nil {
		return Cell{}, err
	}
	return Cell{
		Qid:     qid,
		Row:     row,
		Col:     col,
		Lat:     g.geom.latCentroids[row],
		Lon:     g.geom.lonCentroids[col],
		AreaKm2: g.areas[row],
		Inside:  g.mask == nil || g.mask[row*g.geom.nCols+col],
	}, nil
}

// TotalAreaKm2 is the surface area covered by the whole grid. For a
// global grid this approximates the sphere's total surface area.
func (g *QuadGrid) TotalAreaKm2() float64 {
	rowTotals := make([]float64, g.geom.nRows)
	for r, a := range g.areas {
		rowTotals[r] = a * float64(g.geom.nCols)
	}
	return floats.Sum(rowTotals)
}

// MaskedAreaKm2 is the surface area of the cells currently inside the
// mask; with no mask applied it equals TotalAreaKm2.
func (g *QuadGrid) MaskedAreaKm2() float64 {
	if g.mask == nil {
		return g.TotalAreaKm2()
	}
	inside := make([]float64, 0, len(g.mask))
	for i, in := range g.mask {
		if in {
			inside = append(inside, g.areas[i/g.geom.nCols])
		}
	}
	return floats.Sum(inside)
}

// MaskedCount is the number of cells currently inside the mask.
func (g *QuadGrid) MaskedCount() int {
	if g.mask == nil {
		return len(g.qids)
	}
	n := 0
	for _, in := range g.mask {
		if in {
			n++
		}
	}
	return n
}
