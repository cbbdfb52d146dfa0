package quadgrid

import (
	"fmt"
	"math"
)

// Region is the external geometry collaborator: a polygon or
// multi-polygon in decimal degrees, queried but never mutated by the
// grid. Contains errors (malformed geometry and the like) propagate
// unchanged out of ApplyMask.
type Region interface {
	// Contains reports whether the point lies inside the region.
	Contains(lon, lat float64) (bool, error)
	// Buffer returns a copy of the region expanded outward by a distance
	// in degrees. Planar degree-space buffering is accepted here; it is
	// an approximation, not geodesic.
	Buffer(deg float64) (Region, error)
	// BBox returns the region's bounding box in decimal degrees.
	BBox() (minLon, minLat, maxLon, maxLat float64)
}

// AutoBuffer selects the default buffer distance for ApplyMask: half the
// cell diagonal, res*sqrt(2)/2. A cell that overlaps the region but whose
// centroid falls just outside is then still likely to classify as inside.
// This is a heuristic against centroid sampling error, not a true
// cell-polygon overlap test: it trades false negatives for false
// positives near the boundary.
const AutoBuffer = -1.0

// ApplyMask classifies every cell centroid against the region and
// rewrites the grid's mask wholesale. buff is the buffering distance in
// degrees: 0 tests against the region as-is, a positive value buffers by
// that much, AutoBuffer picks the default. On error the existing mask is
// left untouched.
func (g *QuadGrid) ApplyMask(region Region, buff float64) error {
	if region == nil {
		return fmt.Errorf("%w: nil region", ErrConfiguration)
	}
	switch {
	case buff == AutoBuffer:
		buff = g.geom.res * math.Sqrt2 / 2
	case math.IsNaN(buff) || buff < 0:
		return fmt.Errorf("%w: buffer distance must be >= 0 or AutoBuffer, got %g", ErrConfiguration, buff)
	}

	r := region
	if buff > 0 {
		var err error
		if r, err = region.Buffer(buff); err != nil {
			return err
		}
	}

	// The bounding box lets us skip centroids that are trivially outside
	// without asking the collaborator.
	minLon, minLat, maxLon, maxLat := r.BBox()

	mask := make([]bool, g.geom.nRows*g.geom.nCols)
	for row, lat := range g.geom.latCentroids {
		if lat < minLat || lat > maxLat {
			continue
		}
		for col, lon := range g.geom.lonCentroids {
			if lon < minLon || lon > maxLon {
				continue
			}
			in, err := r.Contains(lon, lat)
			if err != nil {
				return err
			}
			mask[row*g.geom.nCols+col] = in
		}
	}
	g.mask = mask
	return nil
}

// ClearMask removes the mask, returning the grid to its unmasked state.
func (g *QuadGrid) ClearMask() {
	g.mask = nil
}
