package database

import "fmt"

// RunMigrations creates the schema and brings older database files up
// to date. Every step is idempotent so startup can always run the full
// list.
func (d *Database) RunMigrations() error {
	_, err := d.db.Exec(`
		CREATE TABLE IF NOT EXISTS properties (
			id INTEGER PRIMARY KEY,
			street TEXT NOT NULL DEFAULT '',
			city TEXT NOT NULL DEFAULT '',
			state TEXT NOT NULL DEFAULT '',
			postal_code TEXT NOT NULL DEFAULT '',
			property_type TEXT NOT NULL DEFAULT 'single_family',
			status TEXT NOT NULL DEFAULT 'active',
			price INTEGER,
			bedrooms INTEGER NOT NULL DEFAULT 0,
			bathrooms REAL NOT NULL DEFAULT 0,
			square_feet INTEGER NOT NULL DEFAULT 0,
			lot_size_sqft INTEGER,
			year_built INTEGER,
			garage_spaces INTEGER,
			has_basement BOOLEAN,
			days_on_market INTEGER,
			listed_date DATE,
			sold_date DATE,
			latitude REAL,
			longitude REAL,
			geohash TEXT,
			geocoding_attempted BOOLEAN NOT NULL DEFAULT 0,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		);
	`)
	if err != nil {
		return fmt.Errorf("failed to create properties table: %v", err)
	}

	_, err = d.db.Exec(`
		CREATE TABLE IF NOT EXISTS adjustment_sessions (
			id TEXT PRIMARY KEY,
			subject_id INTEGER NOT NULL,
			comp_id INTEGER NOT NULL,
			adj_bedrooms INTEGER NOT NULL DEFAULT 0,
			adj_bathrooms INTEGER NOT NULL DEFAULT 0,
			adj_square_feet INTEGER NOT NULL DEFAULT 0,
			adj_age INTEGER NOT NULL DEFAULT 0,
			adj_garage INTEGER NOT NULL DEFAULT 0,
			adj_basement INTEGER NOT NULL DEFAULT 0,
			adj_location INTEGER NOT NULL DEFAULT 0,
			adj_condition INTEGER NOT NULL DEFAULT 0,
			adj_other INTEGER NOT NULL DEFAULT 0,
			adjusted_price INTEGER NOT NULL DEFAULT 0,
			notes TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			UNIQUE (subject_id, comp_id)
		);
	`)
	if err != nil {
		return fmt.Errorf("failed to create adjustment_sessions table: %v", err)
	}

	// Columns added after the first release; ALTER fails harmlessly on
	// databases that already have them.
	alterColumns := []struct {
		name string
		stmt string
	}{
		{"geohash", `ALTER TABLE properties ADD COLUMN geohash TEXT;`},
		{"geocoding_attempted", `ALTER TABLE properties ADD COLUMN geocoding_attempted BOOLEAN NOT NULL DEFAULT 0;`},
	}
	for _, col := range alterColumns {
		_, err = d.db.Exec(col.stmt)
		if err != nil && err.Error() != "duplicate column name: "+col.name {
			return fmt.Errorf("failed to add %s column: %v", col.name, err)
		}
	}

	indexes := []string{
		`CREATE INDEX IF NOT EXISTS idx_properties_coordinates ON properties(latitude, longitude);`,
		`CREATE INDEX IF NOT EXISTS idx_properties_geohash ON properties(geohash);`,
		`CREATE INDEX IF NOT EXISTS idx_properties_city ON properties(city);`,
		`CREATE INDEX IF NOT EXISTS idx_properties_postal ON properties(postal_code);`,
		`CREATE INDEX IF NOT EXISTS idx_properties_status_type ON properties(status, property_type);`,
		`CREATE INDEX IF NOT EXISTS idx_sessions_subject ON adjustment_sessions(subject_id);`,
		`CREATE INDEX IF NOT EXISTS idx_sessions_updated ON adjustment_sessions(updated_at);`,
	}
	for _, stmt := range indexes {
		if _, err = d.db.Exec(stmt); err != nil {
			return fmt.Errorf("failed to create index: %v", err)
		}
	}

	return nil
}
