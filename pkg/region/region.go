// Package region implements the geometry collaborator consumed by
// pkg/quadgrid: planar point-in-polygon containment and degree-space
// buffering over go-geom polygons and multi-polygons. All computation is
// in unprojected decimal degrees; buffering here is planar, not geodesic.
package region

import (
	"fmt"
	"math"

	gj "github.com/paulmach/go.geojson"
	geom "github.com/twpayne/go-geom"
	geomjson "github.com/twpayne/go-geom/encoding/geojson"

	"github.com/kass/go-quadgrid/pkg/quadgrid"
)

// Poly is a polygon or multi-polygon region. Containment is evaluated
// with even-odd ray casting over all rings, so holes are honored as long
// as the component polygons do not overlap each other. A buffered Poly
// additionally counts points within the buffer distance of any ring
// boundary as inside.
type Poly struct {
	rings [][]float64 // closed rings as flat lon/lat pairs
	buff  float64     // accumulated buffer distance in degrees

	minLon, minLat float64
	maxLon, maxLat float64
}

var _ quadgrid.Region = (*Poly)(nil)

// FromGeom builds a region from a go-geom Polygon or MultiPolygon.
func FromGeom(t geom.T) (*Poly, error) {
	p := &Poly{}
	switch v := t.(type) {
	case *geom.Polygon:
		if err := p.addPolygonRings(v); err != nil {
			return nil, err
		}
	case *geom.MultiPolygon:
		for i := 0; i < v.NumPolygons(); i++ {
			if err := p.addPolygonRings(v.Polygon(i)); err != nil {
				return nil, err
			}
		}
	default:
		return nil, fmt.Errorf("%w: cannot build a region from geometry of type %T", quadgrid.ErrGeometry, t)
	}
	return p.finish()
}

// FromGeoJSON builds a region from GeoJSON: a bare Polygon/MultiPolygon
// geometry, a Feature, or a FeatureCollection. A collection is dissolved
// into a single multi-polygon region.
func FromGeoJSON(data []byte) (*Poly, error) {
	var t geom.T
	if err := geomjson.Unmarshal(data, &t); err == nil {
		return FromGeom(t)
	}

	if f, err := gj.UnmarshalFeature(data); err == nil && f.Geometry != nil {
		p := &Poly{}
		if err := p.addGeoJSONGeometry(f.Geometry); err != nil {
			return nil, err
		}
		return p.finish()
	}

	if fc, err := gj.UnmarshalFeatureCollection(data); err == nil && len(fc.Features) > 0 {
		p := &Poly{}
		for _, f := range fc.Features {
			if f.Geometry == nil {
				continue
			}
			if err := p.addGeoJSONGeometry(f.Geometry); err != nil {
				return nil, err
			}
		}
		return p.finish()
	}

	return nil, fmt.Errorf("%w: data is not GeoJSON polygon geometry, a feature or a feature collection", quadgrid.ErrGeometry)
}

// Rect builds a rectangular region, handy for tests and demos.
func Rect(minLon, minLat, maxLon, maxLat float64) *Poly {
	p := &Poly{
		rings: [][]float64{{
			minLon, minLat,
			maxLon, minLat,
			maxLon, maxLat,
			minLon, maxLat,
			minLon, minLat,
		}},
	}
	done, _ := p.finish() // a rectangle ring is always valid
	return done
}

func (p *Poly) addPolygonRings(poly *geom.Polygon) error {
	for i := 0; i < poly.NumLinearRings(); i++ {
		ring := poly.LinearRing(i)
		stride := ring.Stride()
		flat := ring.FlatCoords()
		coords := make([]float64, 0, 2*len(flat)/stride)
		for j := 0; j+1 < len(flat); j += stride {
			coords = append(coords, flat[j], flat[j+1])
		}
		if err := p.addRing(coords); err != nil {
			return err
		}
	}
	return nil
}

func (p *Poly) addGeoJSONGeometry(g *gj.Geometry) error {
	switch {
	case g.IsPolygon():
		return p.addGeoJSONPolygon(g.Polygon)
	case g.IsMultiPolygon():
		for _, poly := range g.MultiPolygon {
			if err := p.addGeoJSONPolygon(poly); err != nil {
				return err
			}
		}
		return nil
	default:
		return fmt.Errorf("%w: cannot build a region from GeoJSON geometry %q", quadgrid.ErrGeometry, g.Type)
	}
}

func (p *Poly) addGeoJSONPolygon(poly [][][]float64) error {
	for _, ring := range poly {
		coords := make([]float64, 0, 2*len(ring))
		for _, pt := range ring {
			if len(pt) < 2 {
				return fmt.Errorf("%w: ring position with fewer than 2 ordinates", quadgrid.ErrGeometry)
			}
			coords = append(coords, pt[0], pt[1])
		}
		if err := p.addRing(coords); err != nil {
			return err
		}
	}
	return nil
}

func (p *Poly) addRing(coords []float64) error {
	n := len(coords) / 2
	if n < 3 {
		return fmt.Errorf("%w: degenerate ring with %d points", quadgrid.ErrGeometry, n)
	}
	// Close the ring if the source left it open.
	if coords[0] != coords[len(coords)-2] || coords[1] != coords[len(coords)-1] {
		coords = append(coords, coords[0], coords[1])
	}
	p.rings = append(p.rings, coords)
	return nil
}

func (p *Poly) finish() (*Poly, error) {
	if len(p.rings) == 0 {
		return nil, fmt.Errorf("%w: region has no rings", quadgrid.ErrGeometry)
	}
	p.minLon, p.minLat = math.Inf(1), math.Inf(1)
	p.maxLon, p.maxLat = math.Inf(-1), math.Inf(-1)
	for _, ring := range p.rings {
		for i := 0; i+1 < len(ring); i += 2 {
			p.minLon = math.Min(p.minLon, ring[i])
			p.maxLon = math.Max(p.maxLon, ring[i])
			p.minLat = math.Min(p.minLat, ring[i+1])
			p.maxLat = math.Max(p.maxLat, ring[i+1])
		}
	}
	return p, nil
}

// Contains reports whether the point is inside the region, or within the
// accumulated buffer distance of its boundary.
func (p *Poly) Contains(lon, lat float64) (bool, error) {
	minLon, minLat, maxLon, maxLat := p.BBox()
	if lon < minLon || lon > maxLon || lat < minLat || lat > maxLat {
		return false, nil
	}

	inside := false
	for _, ring := range p.rings {
		n := len(ring)/2 - 1 // last point repeats the first
		for i := 0; i < n; i++ {
			x1, y1 := ring[2*i], ring[2*i+1]
			x2, y2 := ring[2*i+2], ring[2*i+3]
			if (y1 > lat) != (y2 > lat) &&
				lon < (x2-x1)*(lat-y1)/(y2-y1)+x1 {
				inside = !inside
			}
		}
	}
	if inside || p.buff == 0 {
		return inside, nil
	}
	return p.boundaryDistance(lon, lat) <= p.buff, nil
}

// Buffer returns a copy of the region expanded outward by deg degrees.
func (p *Poly) Buffer(deg float64) (quadgrid.Region, error) {
	if math.IsNaN(deg) || deg < 0 {
		return nil, fmt.Errorf("%w: buffer distance %g must be >= 0", quadgrid.ErrGeometry, deg)
	}
	buffered := *p
	buffered.buff += deg
	return &buffered, nil
}

// BBox returns the region's bounding box, grown by the buffer distance.
func (p *Poly) BBox() (minLon, minLat, maxLon, maxLat float64) {
	return p.minLon - p.buff, p.minLat - p.buff, p.maxLon + p.buff, p.maxLat + p.buff
}

// boundaryDistance is the planar distance in degrees from the point to
// the nearest ring edge.
func (p *Poly) boundaryDistance(lon, lat float64) float64 {
	min := math.Inf(1)
	for _, ring := range p.rings {
		n := len(ring)/2 - 1
		for i := 0; i < n; i++ {
			d := segmentDistance(lon, lat, ring[2*i], ring[2*i+1], ring[2*i+2], ring[2*i+3])
			if d < min {
				min = d
			}
		}
	}
	return min
}

// segmentDistance is the planar distance from point (px, py) to the
// segment (x1, y1)-(x2, y2).
func segmentDistance(px, py, x1, y1, x2, y2 float64) float64 {
	dx, dy := x2-x1, y2-y1
	if dx == 0 && dy == 0 {
		return math.Hypot(px-x1, py-y1)
	}
	t := ((px-x1)*dx + (py-y1)*dy) / (dx*dx + dy*dy)
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}
	return math.Hypot(px-(x1+t*dx), py-(y1+t*dy))
}
