package database

import (
	"compsage/server/internal/models"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

const sessionColumns = `
	id, subject_id, comp_id, adj_bedrooms, adj_bathrooms,
	adj_square_feet, adj_age, adj_garage, adj_basement, adj_location,
	adj_condition, adj_other, adjusted_price, notes, created_at, updated_at`

func scanSession(row rowScanner) (models.AdjustmentSession, error) {
	var s models.AdjustmentSession
	var createdAt, updatedAt sql.NullTime

	err := row.Scan(
		&s.ID, &s.SubjectID, &s.CompID,
		&s.Adjustments.Bedrooms, &s.Adjustments.Bathrooms,
		&s.Adjustments.SquareFeet, &s.Adjustments.Age,
		&s.Adjustments.Garage, &s.Adjustments.Basement,
		&s.Adjustments.Location, &s.Adjustments.Condition,
		&s.Adjustments.Other, &s.AdjustedPrice, &s.Notes,
		&createdAt, &updatedAt,
	)
	if err != nil {
		return s, err
	}

	if createdAt.Valid {
		s.CreatedAt = createdAt.Time
	}
	if updatedAt.Valid {
		s.UpdatedAt = updatedAt.Time
	}

	return s, nil
}

// SaveSession stores an adjustment worksheet for a subject/comp pair.
// A pair has at most one session: saving again replaces the amounts and
// notes but keeps the original session id and creation time. The stored
// session is returned.
func (d *Database) SaveSession(session models.AdjustmentSession) (models.AdjustmentSession, error) {
	if session.ID == "" {
		session.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if session.CreatedAt.IsZero() {
		session.CreatedAt = now
	}
	session.UpdatedAt = now

	_, err := d.db.Exec(`
		INSERT INTO adjustment_sessions (
			id, subject_id, comp_id, adj_bedrooms, adj_bathrooms,
			adj_square_feet, adj_age, adj_garage, adj_basement,
			adj_location, adj_condition, adj_other, adjusted_price,
			notes, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(subject_id, comp_id) DO UPDATE SET
			adj_bedrooms = excluded.adj_bedrooms,
			adj_bathrooms = excluded.adj_bathrooms,
			adj_square_feet = excluded.adj_square_feet,
			adj_age = excluded.adj_age,
			adj_garage = excluded.adj_garage,
			adj_basement = excluded.adj_basement,
			adj_location = excluded.adj_location,
			adj_condition = excluded.adj_condition,
			adj_other = excluded.adj_other,
			adjusted_price = excluded.adjusted_price,
			notes = excluded.notes,
			updated_at = excluded.updated_at
	`,
		session.ID, int64(session.SubjectID), int64(session.CompID),
		session.Adjustments.Bedrooms, session.Adjustments.Bathrooms,
		session.Adjustments.SquareFeet, session.Adjustments.Age,
		session.Adjustments.Garage, session.Adjustments.Basement,
		session.Adjustments.Location, session.Adjustments.Condition,
		session.Adjustments.Other, session.AdjustedPrice, session.Notes,
		session.CreatedAt, session.UpdatedAt,
	)
	if err != nil {
		return session, fmt.Errorf("failed to save adjustment session: %v", err)
	}

	// Re-read so a replaced session reports its surviving id and
	// creation time.
	saved, err := d.GetSessionByPair(session.SubjectID, session.CompID)
	if err != nil {
		return session, err
	}
	if saved == nil {
		return session, fmt.Errorf("failed to read back session for subject %d comp %d", session.SubjectID, session.CompID)
	}

	return *saved, nil
}

// GetSession returns a session by id, or nil when no session exists.
func (d *Database) GetSession(id string) (*models.AdjustmentSession, error) {
	row := d.db.QueryRow(`SELECT `+sessionColumns+` FROM adjustment_sessions WHERE id = ?`, id)

	s, err := scanSession(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query session %s: %v", id, err)
	}

	return &s, nil
}

// GetSessionByPair returns the session for a subject/comp pair, or nil
// when none exists.
func (d *Database) GetSessionByPair(subjectID, compID models.PropertyID) (*models.AdjustmentSession, error) {
	row := d.db.QueryRow(`SELECT `+sessionColumns+` FROM adjustment_sessions WHERE subject_id = ? AND comp_id = ?`,
		int64(subjectID), int64(compID))

	s, err := scanSession(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query session for subject %d comp %d: %v", subjectID, compID, err)
	}

	return &s, nil
}

// GetSessionsBySubject returns all saved sessions for a subject, most
// recently updated first.
func (d *Database) GetSessionsBySubject(subjectID models.PropertyID) ([]models.AdjustmentSession, error) {
	rows, err := d.db.Query(`SELECT `+sessionColumns+` FROM adjustment_sessions
		WHERE subject_id = ? ORDER BY updated_at DESC, comp_id`, int64(subjectID))
	if err != nil {
		return nil, fmt.Errorf("failed to query sessions for subject %d: %v", subjectID, err)
	}
	defer rows.Close()

	var sessions []models.AdjustmentSession
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan session: %v", err)
		}
		sessions = append(sessions, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate sessions: %v", err)
	}

	return sessions, nil
}

// DeleteSession removes a session by id.
func (d *Database) DeleteSession(id string) error {
	result, err := d.db.Exec(`DELETE FROM adjustment_sessions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete session %s: %v", id, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check deleted rows: %v", err)
	}
	if affected == 0 {
		return fmt.Errorf("session not found: %s", id)
	}

	return nil
}

// DeleteSessionsOlderThan removes sessions not updated since the
// cutoff, returning how many were removed.
func (d *Database) DeleteSessionsOlderThan(cutoff time.Time) (int64, error) {
	result, err := d.db.Exec(`DELETE FROM adjustment_sessions WHERE updated_at < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired sessions: %v", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count deleted sessions: %v", err)
	}

	return affected, nil
}
