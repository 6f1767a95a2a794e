package database

import (
	"compsage/server/internal/geo"
	"fmt"
)

// Geocoder resolves a street address to coordinates.
type Geocoder interface {
	GeocodeAddress(street, city, state, postalCode string) (float64, float64, error)
}

// UpdateMissingCoordinates geocodes properties that have an address but
// no coordinates, filling latitude, longitude and the geohash cell.
// Each property is attempted once; failures are marked so the next run
// skips them. Returns the number of properties resolved and failed.
func (d *Database) UpdateMissingCoordinates(geocoder Geocoder) (int, int, error) {
	var totalCount int
	err := d.db.QueryRow(`
		SELECT COUNT(*) FROM properties
		WHERE (latitude IS NULL OR longitude IS NULL)
		AND geocoding_attempted = 0
		AND street != '' AND city != ''
	`).Scan(&totalCount)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to count properties missing coordinates: %v", err)
	}
	if totalCount == 0 {
		return 0, 0, nil
	}

	const batchSize = 10
	var processed, failed int

	for processed+failed < totalCount {
		batchProcessed, batchFailed, err := d.geocodeBatch(geocoder, batchSize)
		if err != nil {
			return processed, failed, err
		}
		if batchProcessed+batchFailed == 0 {
			break
		}
		processed += batchProcessed
		failed += batchFailed
	}

	return processed, failed, nil
}

func (d *Database) geocodeBatch(geocoder Geocoder, batchSize int) (int, int, error) {
	tx, err := d.db.Begin()
	if err != nil {
		return 0, 0, fmt.Errorf("failed to begin transaction: %v", err)
	}
	defer tx.Rollback()

	rows, err := tx.Query(`
		SELECT id, street, city, state, postal_code FROM properties
		WHERE (latitude IS NULL OR longitude IS NULL)
		AND geocoding_attempted = 0
		AND street != '' AND city != ''
		ORDER BY id
		LIMIT ?
	`, batchSize)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to query properties missing coordinates: %v", err)
	}

	type address struct {
		id                              int64
		street, city, state, postalCode string
	}
	var batch []address
	for rows.Next() {
		var a address
		if err := rows.Scan(&a.id, &a.street, &a.city, &a.state, &a.postalCode); err != nil {
			rows.Close()
			return 0, 0, fmt.Errorf("failed to scan address: %v", err)
		}
		batch = append(batch, a)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return 0, 0, fmt.Errorf("failed to iterate addresses: %v", err)
	}
	if len(batch) == 0 {
		return 0, 0, nil
	}

	updateStmt, err := tx.Prepare(`
		UPDATE properties
		SET latitude = ?, longitude = ?, geohash = ?, geocoding_attempted = 1
		WHERE id = ?
	`)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to prepare update statement: %v", err)
	}
	defer updateStmt.Close()

	failedStmt, err := tx.Prepare(`
		UPDATE properties SET geocoding_attempted = 1 WHERE id = ?
	`)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to prepare failure statement: %v", err)
	}
	defer failedStmt.Close()

	var processed, failed int
	for _, a := range batch {
		lat, lng, err := geocoder.GeocodeAddress(a.street, a.city, a.state, a.postalCode)
		if err != nil {
			if _, err := failedStmt.Exec(a.id); err != nil {
				return processed, failed, fmt.Errorf("failed to mark property %d: %v", a.id, err)
			}
			failed++
			continue
		}

		if _, err := updateStmt.Exec(lat, lng, geo.EncodeCell(lat, lng), a.id); err != nil {
			return processed, failed, fmt.Errorf("failed to update property %d: %v", a.id, err)
		}
		processed++
	}

	if err := tx.Commit(); err != nil {
		return 0, 0, fmt.Errorf("failed to commit geocoding batch: %v", err)
	}

	return processed, failed, nil
}
