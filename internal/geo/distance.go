package geo

import (
	"github.com/paulmach/orb"
	orbgeo "github.com/paulmach/orb/geo"
)

const metersPerMile = 1609.344

// MilesBetween returns the great-circle distance in miles between two
// lat/lng pairs, computed with the haversine formula.
func MilesBetween(lat1, lng1, lat2, lng2 float64) float64 {
	p1 := orb.Point{lng1, lat1}
	p2 := orb.Point{lng2, lat2}
	return orbgeo.DistanceHaversine(p1, p2) / metersPerMile
}
