// Package export converts a quadgrid's frozen arrays into exchange
// forms: a flat table, a GeoJSON vector layer with one polygon per cell,
// and a gridded dataset with lat/lon coordinate axes. Each converter is
// a pure function over the grid's public arrays; none of them mutate the
// grid or each other's output.
package export

import (
	"fmt"

	gj "github.com/paulmach/go.geojson"

	"github.com/kass/go-quadgrid/pkg/quadgrid"
)

// CellRecord is one row of the flat table form, keyed by (lat, lon).
type CellRecord struct {
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
	Qid     int64   `json:"qid"`
	Res     float64 `json:"res"`
	AreaKm2 float64 `json:"area"`
	Inside  bool    `json:"mask"`
}

// Table flattens the grid into row-major cell records.
func Table(g *quadgrid.QuadGrid) []CellRecord {
	lats, lons := g.LatCentroids(), g.LonCentroids()
	qids, areas, mask := g.Qids(), g.Areas(), g.Mask()
	res := g.Resolution()

	records := make([]CellRecord, 0, g.NCells())
	for r, lat := range lats {
		for c, lon := range lons {
			i := r*g.NCols() + c
			records = append(records, CellRecord{
				Lat:     lat,
				Lon:     lon,
				Qid:     qids[i],
				Res:     res,
				AreaKm2: areas[r],
				Inside:  mask == nil || mask[i],
			})
		}
	}
	return records
}

// FeatureCollection renders the grid as a GeoJSON FeatureCollection with
// one square polygon per cell and the cell attributes as properties.
func FeatureCollection(g *quadgrid.QuadGrid) *gj.FeatureCollection {
	lats, lons := g.LatCentroids(), g.LonCentroids()
	qids, areas, mask := g.Qids(), g.Areas(), g.Mask()
	res := g.Resolution()
	h := res / 2

	fc := gj.NewFeatureCollection()
	for r, lat := range lats {
		for c, lon := range lons {
			i := r*g.NCols() + c
			f := gj.NewPolygonFeature([][][]float64{{
				{lon + h, lat + h},
				{lon + h, lat - h},
				{lon - h, lat - h},
				{lon - h, lat + h},
				{lon + h, lat + h},
			}})
			f.SetProperty("lat", lat)
			f.SetProperty("lon", lon)
			f.SetProperty("qid", qids[i])
			f.SetProperty("res", res)
			f.SetProperty("area", areas[r])
			f.SetProperty("mask", mask == nil || mask[i])
			fc.AddFeature(f)
		}
	}
	return fc
}

// Dataset is the gridded form: lat/lon coordinate axes with 2-D data
// layers indexed [row][col], plus free-form attributes.
type Dataset struct {
	Lats    []float64
	Lons    []float64
	Qid     [][]int64
	AreaKm2 [][]float64
	Mask    [][]bool
	Attrs   map[string]string
}

// Raster arranges the grid arrays into a Dataset annotated with the
// resolution and area units.
func Raster(g *quadgrid.QuadGrid) *Dataset {
	nRows, nCols := g.NRows(), g.NCols()
	qids, areas, mask := g.Qids(), g.Areas(), g.Mask()

	ds := &Dataset{
		Lats:    g.LatCentroids(),
		Lons:    g.LonCentroids(),
		Qid:     make([][]int64, nRows),
		AreaKm2: make([][]float64, nRows),
		Mask:    make([][]bool, nRows),
		Attrs: map[string]string{
			"type":       "quadgrid",
			"resolution": fmt.Sprintf("%g deg", g.Resolution()),
			"area_units": "km2",
		},
	}
	for r := 0; r < nRows; r++ {
		ds.Qid[r] = qids[r*nCols : (r+1)*nCols]
		ds.AreaKm2[r] = make([]float64, nCols)
		ds.Mask[r] = make([]bool, nCols)
		for c := 0; c < nCols; c++ {
			ds.AreaKm2[r][c] = areas[r]
			ds.Mask[r][c] = mask == nil || mask[r*nCols+c]
		}
	}
	return ds
}
