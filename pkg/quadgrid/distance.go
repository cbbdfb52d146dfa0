package quadgrid

import (
	"fmt"
	"math"

	"github.com/golang/geo/s1"
	"github.com/golang/geo/s2"
)

// Haversine returns the great-circle distance in kilometres between two
// points given in decimal degrees, on a sphere of radius EarthRadiusKm.
func Haversine(lon1, lat1, lon2, lat2 float64) float64 {
	a := s2.LatLngFromDegrees(lat1, lon1)
	b := s2.LatLngFromDegrees(lat2, lon2)
	return earthKm(a.Distance(b))
}

// earthKm converts an angle on the unit sphere to kilometres on Earth.
func earthKm(a s1.Angle) float64 {
	return a.Radians() * EarthRadiusKm
}

// Distance returns the great-circle distance in kilometres from the
// reference point to every cell centroid, in row-major order matching
// the centroid arrays. It does not mutate the grid.
func (g *QuadGrid) Distance(lon, lat float64) ([]float64, error) {
	if math.IsNaN(lat) || lat < -90 || lat > 90 {
		return nil, fmt.Errorf("%w: latitude %g not in [-90, 90]", ErrDomain, lat)
	}
	if math.IsNaN(lon) || lon < -180 || lon > 180 {
		return nil, fmt.Errorf("%w: longitude %g not in [-180, 180]", ErrDomain, lon)
	}

	ref := s2.LatLngFromDegrees(lat, lon)
	out := make([]float64, g.geom.nRows*g.geom.nCols)
	for r, clat := range g.geom.latCentroids {
		for c, clon := range g.geom.lonCentroids {
			out[r*g.geom.nCols+c] = earthKm(ref.Distance(s2.LatLngFromDegrees(clat, clon)))
		}
	}
	return out, nil
}
