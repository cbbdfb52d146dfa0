package quadgrid

import "math"

// EarthRadiusKm is the mean Earth radius in kilometres (spherical model).
const EarthRadiusKm = 6371.0088

// areaKm2 is the true spherical surface area of one cell in a latitude
// band. Longitude never enters: on a sphere the area of a fixed angular
// cell depends only on its latitude span.
//
// The band edges are clamped to the poles, so a pole-adjacent row clipped
// to +-90 degrees gets its correctly reduced area.
func areaKm2(latCentroid, res float64) float64 {
	hi := math.Min(latCentroid+res/2, 90)
	lo := math.Max(latCentroid-res/2, -90)
	resRad := res * math.Pi / 180
	return EarthRadiusKm * EarthRadiusKm * resRad *
		(math.Sin(hi*math.Pi/180) - math.Sin(lo*math.Pi/180))
}
