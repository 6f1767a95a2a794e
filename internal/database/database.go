package database

import (
	"compsage/server/internal/engine"
	"compsage/server/internal/geo"
	"compsage/server/internal/models"
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/mattn/go-sqlite3"
)

type Database struct {
	db *sql.DB
}

func NewDatabase(dbPath string) (*Database, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}

	// Enable foreign keys
	_, err = db.Exec("PRAGMA foreign_keys = ON")
	if err != nil {
		return nil, err
	}

	return &Database{db: db}, nil
}

func (d *Database) Close() error {
	return d.db.Close()
}

// GetDB returns the underlying database connection
func (d *Database) GetDB() *sql.DB {
	return d.db
}

// propertyColumns is the shared select list for property queries. Scan
// order must match scanProperty.
const propertyColumns = `
	id, street, city, state, postal_code, property_type, status,
	price, bedrooms, bathrooms, square_feet, lot_size_sqft, year_built,
	garage_spaces, has_basement, days_on_market, listed_date, sold_date,
	latitude, longitude, geohash, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanProperty(row rowScanner) (models.PropertyRecord, error) {
	var p models.PropertyRecord
	var street, city, state, postalCode, propertyType, status, geohash sql.NullString
	var price, bedrooms, squareFeet sql.NullInt64
	var lotSize, yearBuilt, garageSpaces, daysOnMarket sql.NullInt64
	var bathrooms, latitude, longitude sql.NullFloat64
	var hasBasement sql.NullBool
	var listedDate, soldDate, createdAt, updatedAt sql.NullTime

	err := row.Scan(
		&p.ID, &street, &city, &state, &postalCode, &propertyType, &status,
		&price, &bedrooms, &bathrooms, &squareFeet, &lotSize, &yearBuilt,
		&garageSpaces, &hasBasement, &daysOnMarket, &listedDate, &soldDate,
		&latitude, &longitude, &geohash, &createdAt, &updatedAt,
	)
	if err != nil {
		return p, err
	}

	p.Street = street.String
	p.City = city.String
	p.State = state.String
	p.PostalCode = postalCode.String
	p.PropertyType = models.PropertyType(propertyType.String)
	p.Status = models.ListingStatus(status.String)
	p.Price = price.Int64
	p.Bedrooms = int(bedrooms.Int64)
	p.Bathrooms = bathrooms.Float64
	p.SquareFeet = int(squareFeet.Int64)
	p.Geohash = geohash.String

	if lotSize.Valid {
		v := int(lotSize.Int64)
		p.LotSizeSqFt = &v
	}
	if yearBuilt.Valid {
		v := int(yearBuilt.Int64)
		p.YearBuilt = &v
	}
	if garageSpaces.Valid {
		v := int(garageSpaces.Int64)
		p.GarageSpaces = &v
	}
	if hasBasement.Valid {
		v := hasBasement.Bool
		p.HasBasement = &v
	}
	if daysOnMarket.Valid {
		v := int(daysOnMarket.Int64)
		p.DaysOnMarket = &v
	}
	if listedDate.Valid {
		t := listedDate.Time
		p.ListedDate = &t
	}
	if soldDate.Valid {
		t := soldDate.Time
		p.SoldDate = &t
	}
	if latitude.Valid {
		v := latitude.Float64
		p.Latitude = &v
	}
	if longitude.Valid {
		v := longitude.Float64
		p.Longitude = &v
	}
	if createdAt.Valid {
		p.CreatedAt = createdAt.Time
	}
	if updatedAt.Valid {
		p.UpdatedAt = updatedAt.Time
	}

	return p, nil
}

func scanProperties(rows *sql.Rows) ([]models.PropertyRecord, error) {
	var properties []models.PropertyRecord
	for rows.Next() {
		p, err := scanProperty(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan property: %v", err)
		}
		properties = append(properties, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate properties: %v", err)
	}

	return properties, nil
}

// GetProperty returns a single property by id, or nil when no record
// exists.
func (d *Database) GetProperty(id models.PropertyID) (*models.PropertyRecord, error) {
	row := d.db.QueryRow(`SELECT `+propertyColumns+` FROM properties WHERE id = ?`, int64(id))

	p, err := scanProperty(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query property %d: %v", id, err)
	}

	return &p, nil
}

// GetProperties returns properties matching the filter, newest first.
func (d *Database) GetProperties(filter models.PropertyFilter) ([]models.PropertyRecord, error) {
	query := `SELECT ` + propertyColumns + ` FROM properties WHERE 1=1`
	var args []interface{}

	if filter.City != "" {
		query += " AND LOWER(city) = LOWER(?)"
		args = append(args, filter.City)
	}
	if filter.PostalPrefix != "" {
		query += " AND postal_code LIKE ? || '%'"
		args = append(args, filter.PostalPrefix)
	}
	if filter.Status != "" {
		query += " AND status = ?"
		args = append(args, string(filter.Status))
	}
	if filter.PropertyType != "" {
		query += " AND property_type = ?"
		args = append(args, string(filter.PropertyType))
	}
	if filter.MinPrice > 0 {
		query += " AND price >= ?"
		args = append(args, filter.MinPrice)
	}
	if filter.MaxPrice > 0 {
		query += " AND price <= ?"
		args = append(args, filter.MaxPrice)
	}

	query += " ORDER BY id DESC"
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	rows, err := d.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query properties: %v", err)
	}
	defer rows.Close()

	return scanProperties(rows)
}

// GetCandidatePool loads a coarse superset of comparable candidates for
// a subject. Only cheap indexable predicates run here (type, status,
// bedroom and square footage bands, price band, geohash cells around
// the subject); the exact per-candidate checks run in memory afterwards.
func (d *Database) GetCandidatePool(subject models.PropertyRecord, criteria models.CompCriteria, limit int) ([]models.PropertyRecord, error) {
	query := `SELECT ` + propertyColumns + ` FROM properties WHERE 1=1`
	var args []interface{}

	if subject.ID != 0 {
		query += " AND id != ?"
		args = append(args, int64(subject.ID))
	}
	if criteria.PropertyType != nil {
		query += " AND property_type = ?"
		args = append(args, string(*criteria.PropertyType))
	}
	if len(criteria.Statuses) > 0 {
		placeholders := strings.TrimSuffix(strings.Repeat("?,", len(criteria.Statuses)), ",")
		query += " AND status IN (" + placeholders + ")"
		for _, status := range criteria.Statuses {
			args = append(args, string(status))
		}
	}

	query += " AND bedrooms BETWEEN ? AND ?"
	args = append(args, criteria.BedroomBand.Min, criteria.BedroomBand.Max)
	query += " AND square_feet BETWEEN ? AND ?"
	args = append(args, criteria.SquareFeetBand.Min, criteria.SquareFeetBand.Max)

	minPrice, maxPrice := engine.PriceBounds(subject.Price, criteria.PriceBandPct)
	query += " AND price BETWEEN ? AND ?"
	args = append(args, minPrice, maxPrice)

	// Candidates without a stored geohash pass the cell filter; their
	// distance is resolved in memory like everything else.
	if subject.HasCoordinates() {
		prefixes := geo.CellPrefixes(*subject.Latitude, *subject.Longitude, criteria.RadiusMiles)
		if len(prefixes) > 0 {
			placeholders := strings.TrimSuffix(strings.Repeat("?,", len(prefixes)), ",")
			query += fmt.Sprintf(" AND (geohash IS NULL OR geohash = '' OR substr(geohash, 1, %d) IN (%s))",
				len(prefixes[0]), placeholders)
			for _, prefix := range prefixes {
				args = append(args, prefix)
			}
		}
	}

	query += " ORDER BY id LIMIT ?"
	args = append(args, limit)

	rows, err := d.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query candidate pool: %v", err)
	}
	defer rows.Close()

	return scanProperties(rows)
}

// GetMarketStats returns aggregate statistics for one city, or for the
// whole database when city is empty.
func (d *Database) GetMarketStats(city string) (models.MarketStats, error) {
	query := `
		SELECT
			COUNT(*) as total_properties,
			COALESCE(SUM(CASE WHEN status = 'active' THEN 1 ELSE 0 END), 0) as total_active,
			COALESCE(SUM(CASE WHEN status = 'pending' THEN 1 ELSE 0 END), 0) as total_pending,
			COALESCE(SUM(CASE WHEN status = 'sold' THEN 1 ELSE 0 END), 0) as total_sold,
			COALESCE(AVG(price), 0) as average_price,
			COALESCE(AVG(CAST(price AS FLOAT) / NULLIF(square_feet, 0)), 0) as avg_price_per_sqft,
			COALESCE(AVG(days_on_market), 0) as avg_days_on_market
		FROM properties
		WHERE price > 0
		AND (? = '' OR LOWER(city) = LOWER(?))
	`

	var stats models.MarketStats
	err := d.db.QueryRow(query, city, city).Scan(
		&stats.TotalProperties,
		&stats.TotalActive,
		&stats.TotalPending,
		&stats.TotalSold,
		&stats.AveragePrice,
		&stats.AvgPricePerSqFt,
		&stats.AvgDaysOnMarket,
	)
	if err != nil {
		return stats, fmt.Errorf("failed to query market stats: %v", err)
	}

	stats.MedianPrice, err = d.medianPrice("", city)
	if err != nil {
		return stats, err
	}

	return stats, nil
}

// GetAreaStats returns aggregate statistics for a postal code prefix,
// optionally narrowed to one city.
func (d *Database) GetAreaStats(postalPrefix, city string) (models.AreaStats, error) {
	query := `
		SELECT
			COUNT(*) as property_count,
			COALESCE(AVG(price), 0) as average_price,
			COALESCE(AVG(CAST(price AS FLOAT) / NULLIF(square_feet, 0)), 0) as avg_price_per_sqft
		FROM properties
		WHERE postal_code LIKE ? || '%'
		AND price > 0
		AND (? = '' OR LOWER(city) = LOWER(?))
	`

	stats := models.AreaStats{PostalPrefix: postalPrefix}
	err := d.db.QueryRow(query, postalPrefix, city, city).Scan(
		&stats.PropertyCount,
		&stats.AveragePrice,
		&stats.AvgPricePerSqFt,
	)
	if err != nil {
		return stats, fmt.Errorf("failed to query area stats: %v", err)
	}

	stats.MedianPrice, err = d.medianPrice(postalPrefix, city)
	if err != nil {
		return stats, err
	}

	return stats, nil
}

// medianPrice computes the median listing price over the selected rows.
// SQLite has no median aggregate, so prices are pulled sorted and the
// middle is taken here.
func (d *Database) medianPrice(postalPrefix, city string) (float64, error) {
	query := `
		SELECT price FROM properties
		WHERE price > 0
		AND (? = '' OR postal_code LIKE ? || '%')
		AND (? = '' OR LOWER(city) = LOWER(?))
		ORDER BY price
	`

	rows, err := d.db.Query(query, postalPrefix, postalPrefix, city, city)
	if err != nil {
		return 0, fmt.Errorf("failed to query prices for median: %v", err)
	}
	defer rows.Close()

	var prices []int64
	for rows.Next() {
		var price int64
		if err := rows.Scan(&price); err != nil {
			return 0, fmt.Errorf("failed to scan price: %v", err)
		}
		prices = append(prices, price)
	}
	if err := rows.Err(); err != nil {
		return 0, fmt.Errorf("failed to iterate prices: %v", err)
	}

	n := len(prices)
	if n == 0 {
		return 0, nil
	}
	if n%2 == 1 {
		return float64(prices[n/2]), nil
	}
	return float64(prices[n/2-1]+prices[n/2]) / 2, nil
}

// GetRecentSales returns the most recently sold properties, optionally
// narrowed to one city.
func (d *Database) GetRecentSales(limit int, city string) ([]models.PropertyRecord, error) {
	query := `SELECT ` + propertyColumns + ` FROM properties
		WHERE status = 'sold' AND sold_date IS NOT NULL
		AND (? = '' OR LOWER(city) = LOWER(?))
		ORDER BY sold_date DESC, id DESC
		LIMIT ?`

	rows, err := d.db.Query(query, city, city, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query recent sales: %v", err)
	}
	defer rows.Close()

	return scanProperties(rows)
}
