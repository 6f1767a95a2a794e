package database

import (
	"compsage/server/internal/geo"
	"compsage/server/internal/models"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// UpsertProperties writes a batch of listing records inside the
// caller's transaction. Records sharing an id with a stored row replace
// it, so re-imported feeds converge on the latest snapshot. Records
// carrying coordinates get their geohash cell filled before the write;
// records without coordinates keep whatever the geocoding backfill
// already resolved.
func UpsertProperties(tx *gorm.DB, properties []models.PropertyRecord) error {
	if len(properties) == 0 {
		return nil
	}

	now := time.Now().UTC()
	for i := range properties {
		if properties[i].ID == 0 {
			return fmt.Errorf("property at index %d has no id", i)
		}
		if properties[i].HasCoordinates() {
			properties[i].Geohash = geo.EncodeCell(*properties[i].Latitude, *properties[i].Longitude)
		}
		if properties[i].CreatedAt.IsZero() {
			properties[i].CreatedAt = now
		}
		properties[i].UpdatedAt = now
	}

	assignments := clause.AssignmentColumns([]string{
		"street", "city", "state", "postal_code", "property_type",
		"status", "price", "bedrooms", "bathrooms", "square_feet",
		"lot_size_sqft", "year_built", "garage_spaces", "has_basement",
		"days_on_market", "listed_date", "sold_date", "updated_at",
	})
	assignments = append(assignments,
		clause.Assignment{Column: clause.Column{Name: "latitude"}, Value: gorm.Expr("COALESCE(excluded.latitude, latitude)")},
		clause.Assignment{Column: clause.Column{Name: "longitude"}, Value: gorm.Expr("COALESCE(excluded.longitude, longitude)")},
		clause.Assignment{Column: clause.Column{Name: "geohash"}, Value: gorm.Expr("CASE WHEN excluded.geohash != '' THEN excluded.geohash ELSE geohash END")},
	)

	err := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: assignments,
	}).Create(&properties).Error
	if err != nil {
		return fmt.Errorf("failed to upsert %d properties: %v", len(properties), err)
	}

	return nil
}
