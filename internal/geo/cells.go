package geo

import "github.com/mmcloughlin/geohash"

// EncodeCell returns the full-precision geohash stored alongside each
// property's coordinates.
func EncodeCell(lat, lng float64) string {
	return geohash.Encode(lat, lng)
}

// cellMinDimensionMiles is the smaller side of a geohash cell at each
// prefix length. A radius no larger than this is fully covered by a
// cell plus its eight neighbors.
var cellMinDimensionMiles = map[uint]float64{
	1: 3101.0,
	2: 387.0,
	3: 96.9,
	4: 12.1,
	5: 3.03,
	6: 0.37,
}

// CellPrefixes returns the geohash prefixes that cover a radius search
// around a point: the center cell at a precision wide enough for the
// radius, plus its eight neighbors. Callers use the prefixes as a
// coarse index filter; exact distances are checked afterwards.
func CellPrefixes(lat, lng, radiusMiles float64) []string {
	precision := uint(1)
	for p := uint(2); p <= 6; p++ {
		if cellMinDimensionMiles[p] < radiusMiles {
			break
		}
		precision = p
	}

	center := geohash.EncodeWithPrecision(lat, lng, precision)
	prefixes := append([]string{center}, geohash.Neighbors(center)...)
	return prefixes
}
