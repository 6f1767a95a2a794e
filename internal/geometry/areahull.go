package geometry

import (
	"database/sql"
	"fmt"
	"sort"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/sirupsen/logrus"
)

// AreaHullBuilder derives display boundaries for postal areas from the
// coordinates already stored on properties.
type AreaHullBuilder struct {
	db     *sql.DB
	logger *logrus.Logger
}

func NewAreaHullBuilder(db *sql.DB, logger *logrus.Logger) *AreaHullBuilder {
	return &AreaHullBuilder{
		db:     db,
		logger: logger,
	}
}

// areaPoints loads the distinct coordinates of properties in a postal
// area. City narrows the area when supplied.
func (b *AreaHullBuilder) areaPoints(postalPrefix, city string) ([]orb.Point, error) {
	query := `
		SELECT DISTINCT latitude, longitude
		FROM properties
		WHERE latitude IS NOT NULL
		AND longitude IS NOT NULL
		AND postal_code LIKE ? || '%'
		AND (? = '' OR LOWER(city) = LOWER(?))
	`

	rows, err := b.db.Query(query, postalPrefix, city, city)
	if err != nil {
		return nil, fmt.Errorf("failed to query area coordinates: %v", err)
	}
	defer rows.Close()

	var points []orb.Point
	for rows.Next() {
		var lat, lng float64
		if err := rows.Scan(&lat, &lng); err != nil {
			return nil, fmt.Errorf("failed to scan row: %v", err)
		}
		points = append(points, orb.Point{lng, lat})
	}

	return points, rows.Err()
}

// BoundaryFeature returns the convex hull of an area's property
// coordinates as a GeoJSON feature. Returns nil when the area has too
// few distinct coordinates to enclose.
func (b *AreaHullBuilder) BoundaryFeature(postalPrefix, city string) (*geojson.Feature, error) {
	points, err := b.areaPoints(postalPrefix, city)
	if err != nil {
		return nil, err
	}

	hull := convexHull(points)
	if hull == nil {
		b.logger.Debugf("Not enough coordinates for area %s (minimum 3 required)", postalPrefix)
		return nil, nil
	}

	feature := geojson.NewFeature(orb.Polygon{hull})
	feature.Properties = geojson.Properties{
		"postal_prefix": postalPrefix,
		"point_count":   len(points),
		"hull_type":     "convex",
	}
	if city != "" {
		feature.Properties["city"] = city
	}

	return feature, nil
}

// convexHull computes the hull ring with the monotone chain algorithm.
// Returns nil for fewer than 3 distinct, non-collinear points.
func convexHull(points []orb.Point) orb.Ring {
	if len(points) < 3 {
		return nil
	}

	sorted := make([]orb.Point, len(points))
	copy(sorted, points)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i][0] != sorted[j][0] {
			return sorted[i][0] < sorted[j][0]
		}
		return sorted[i][1] < sorted[j][1]
	})

	var lower []orb.Point
	for _, p := range sorted {
		for len(lower) >= 2 && cross(lower[len(lower)-2], lower[len(lower)-1], p) <= 0 {
			lower = lower[:len(lower)-1]
		}
		lower = append(lower, p)
	}

	var upper []orb.Point
	for i := len(sorted) - 1; i >= 0; i-- {
		p := sorted[i]
		for len(upper) >= 2 && cross(upper[len(upper)-2], upper[len(upper)-1], p) <= 0 {
			upper = upper[:len(upper)-1]
		}
		upper = append(upper, p)
	}

	hull := append(lower[:len(lower)-1], upper[:len(upper)-1]...)
	if len(hull) < 3 {
		return nil
	}

	// Close the ring
	hull = append(hull, hull[0])
	return orb.Ring(hull)
}

// cross returns the z component of (a-o) x (b-o). Positive is a left
// turn from o->a to o->b.
func cross(o, a, b orb.Point) float64 {
	return (a[0]-o[0])*(b[1]-o[1]) - (a[1]-o[1])*(b[0]-o[0])
}
