// Package cellindex provides an R-Tree index over the cell centroids of
// a quadgrid for bounding-box, radius and nearest-cell queries. The grid
// itself answers per-cell lookups; the index exists for the inverse
// direction, finding cells near arbitrary coordinates without scanning.
package cellindex

import (
	"fmt"
	"math"
	"runtime"
	"sync"

	"github.com/dhconnelly/rtreego"

	"github.com/kass/go-quadgrid/pkg/quadgrid"
)

const (
	tolerance   = 0.01
	minChildren = 25
	maxChildren = 50
	dimensions  = 2
)

// spatialCell wraps a cell for R-Tree indexing
type spatialCell struct {
	cell quadgrid.Cell
	rect *rtreego.Rect
}

func (sc *spatialCell) Bounds() *rtreego.Rect {
	return sc.rect
}

// Index is a thread-safe R-Tree over grid cell centroids.
type Index struct {
	tree  *rtreego.Rtree
	mu    sync.RWMutex
	count int
}

// New creates an empty cell index.
func New() *Index {
	return &Index{
		tree: rtreego.NewTree(dimensions, minChildren, maxChildren),
	}
}

// IndexGrid inserts every cell of the grid into the index. Rect
// preparation is parallelized across CPU cores; insertion itself is
// synchronized.
func (ix *Index) IndexGrid(g *quadgrid.QuadGrid) error {
	nCells := g.NCells()
	if nCells == 0 {
		return nil
	}

	items := make([]rtreego.Spatial, nCells)
	numCPU := runtime.NumCPU()
	batchSize := nCells / numCPU
	if batchSize < 1 {
		batchSize = 1
		numCPU = nCells
	}

	var wg sync.WaitGroup
	var firstErr error
	var errOnce sync.Once
	for i := 0; i < numCPU && i*batchSize < nCells; i++ {
		start := i * batchSize
		end := start + batchSize
		if i == numCPU-1 || end > nCells {
			end = nCells
		}

		wg.Add(1)
		go func(start, end int) {
			defer wg.Done()
			for j := start; j < end; j++ {
				cell, err := g.CellAt(j/g.NCols(), j%g.NCols())
				if err != nil {
					errOnce.Do(func() { firstErr = err })
					return
				}
				pt := rtreego.Point{cell.Lat, cell.Lon}
				items[j] = &spatialCell{cell: cell, rect: pt.ToRect(tolerance)}
			}
		}(start, end)
	}
	wg.Wait()
	if firstErr != nil {
		return firstErr
	}

	ix.mu.Lock()
	defer ix.mu.Unlock()
	for _, item := range items {
		ix.tree.Insert(item)
	}
	ix.count += nCells
	return nil
}

// SearchBox returns the cells whose centroids fall inside the bounds.
func (ix *Index) SearchBox(b quadgrid.Bounds) ([]quadgrid.Cell, error) {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	origin := rtreego.Point{b.LatFrom, b.LonFrom}
	rect, err := rtreego.NewRect(origin, []float64{b.LatTo - b.LatFrom, b.LonTo - b.LonFrom})
	if err != nil {
		return nil, fmt.Errorf("invalid bounding box: %w", err)
	}

	results := ix.tree.SearchIntersect(rect)
	cells := make([]quadgrid.Cell, 0, len(results))
	for _, result := range results {
		sc, ok := result.(*spatialCell)
		if !ok {
			continue
		}
		// The tolerance rects over-approximate; keep exact hits only.
		if sc.cell.Lat >= b.LatFrom && sc.cell.Lat <= b.LatTo &&
			sc.cell.Lon >= b.LonFrom && sc.cell.Lon <= b.LonTo {
			cells = append(cells, sc.cell)
		}
	}
	return cells, nil
}

// SearchRadius returns the cells whose centroids lie within radiusKm of
// the center point.
func (ix *Index) SearchRadius(lon, lat, radiusKm float64) ([]quadgrid.Cell, error) {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	// Degree-space bounding box around the cap, filtered by true distance.
	deg := (radiusKm / quadgrid.EarthRadiusKm) * (180 / math.Pi)
	rect, err := rtreego.NewRect(
		rtreego.Point{lat - deg, lon - deg},
		[]float64{2 * deg, 2 * deg},
	)
	if err != nil {
		return nil, fmt.Errorf("invalid radius search: %w", err)
	}

	results := ix.tree.SearchIntersect(rect)
	cells := make([]quadgrid.Cell, 0, len(results))
	for _, result := range results {
		sc, ok := result.(*spatialCell)
		if !ok {
			continue
		}
		if quadgrid.Haversine(lon, lat, sc.cell.Lon, sc.cell.Lat) <= radiusKm {
			cells = append(cells, sc.cell)
		}
	}
	return cells, nil
}

// NearestCells returns the n cells with centroids closest to the point.
func (ix *Index) NearestCells(lon, lat float64, n int) []quadgrid.Cell {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	results := ix.tree.NearestNeighbors(n, rtreego.Point{lat, lon})
	cells := make([]quadgrid.Cell, 0, len(results))
	for _, result := range results {
		if sc, ok := result.(*spatialCell); ok {
			cells = append(cells, sc.cell)
		}
	}
	return cells
}

// Size returns the number of indexed cells.
func (ix *Index) Size() int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return ix.count
}

// Clear removes all cells from the index.
func (ix *Index) Clear() {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	ix.tree = rtreego.NewTree(dimensions, minChildren, maxChildren)
	ix.count = 0
}
