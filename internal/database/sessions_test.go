package database

import (
	"compsage/server/internal/models"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveSession_AssignsID(t *testing.T) {
	db := setupTestDB(t)

	saved, err := db.SaveSession(models.AdjustmentSession{
		SubjectID: 1,
		CompID:    2,
		Adjustments: models.AdjustmentVector{
			Bedrooms:   5000,
			SquareFeet: 10000,
			Location:   -7500,
		},
		AdjustedPrice: 447500,
		Notes:         "corner lot discount",
	})
	require.NoError(t, err)

	assert.NotEmpty(t, saved.ID)
	assert.Equal(t, models.PropertyID(1), saved.SubjectID)
	assert.Equal(t, models.PropertyID(2), saved.CompID)
	assert.False(t, saved.CreatedAt.IsZero())
	assert.False(t, saved.UpdatedAt.IsZero())
}

func TestSaveSession_ReplacesExistingPair(t *testing.T) {
	db := setupTestDB(t)

	first, err := db.SaveSession(models.AdjustmentSession{
		SubjectID:     1,
		CompID:        2,
		Adjustments:   models.AdjustmentVector{Bedrooms: 5000},
		AdjustedPrice: 455000,
		Notes:         "first pass",
	})
	require.NoError(t, err)

	second, err := db.SaveSession(models.AdjustmentSession{
		SubjectID:     1,
		CompID:        2,
		Adjustments:   models.AdjustmentVector{Bedrooms: 0, Location: -10000},
		AdjustedPrice: 440000,
		Notes:         "after drive-by",
	})
	require.NoError(t, err)

	// The pair keeps its identity across saves
	assert.Equal(t, first.ID, second.ID)
	assert.True(t, second.CreatedAt.Equal(first.CreatedAt))
	assert.Equal(t, int64(0), second.Adjustments.Bedrooms)
	assert.Equal(t, int64(-10000), second.Adjustments.Location)
	assert.Equal(t, int64(440000), second.AdjustedPrice)
	assert.Equal(t, "after drive-by", second.Notes)

	sessions, err := db.GetSessionsBySubject(1)
	require.NoError(t, err)
	assert.Len(t, sessions, 1, "saving the same pair twice must not create a second row")
}

func TestSaveSession_DifferentCompsKeepSeparateSessions(t *testing.T) {
	db := setupTestDB(t)

	_, err := db.SaveSession(models.AdjustmentSession{SubjectID: 1, CompID: 2})
	require.NoError(t, err)
	_, err = db.SaveSession(models.AdjustmentSession{SubjectID: 1, CompID: 3})
	require.NoError(t, err)
	_, err = db.SaveSession(models.AdjustmentSession{SubjectID: 9, CompID: 2})
	require.NoError(t, err)

	sessions, err := db.GetSessionsBySubject(1)
	require.NoError(t, err)
	assert.Len(t, sessions, 2)
}

func TestGetSession(t *testing.T) {
	db := setupTestDB(t)

	saved, err := db.SaveSession(models.AdjustmentSession{
		SubjectID:     1,
		CompID:        2,
		Adjustments:   models.AdjustmentVector{Condition: 12000},
		AdjustedPrice: 452000,
	})
	require.NoError(t, err)

	got, err := db.GetSession(saved.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, saved.ID, got.ID)
	assert.Equal(t, int64(12000), got.Adjustments.Condition)
	assert.Equal(t, int64(452000), got.AdjustedPrice)

	missing, err := db.GetSession("no-such-session")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestGetSessionByPair(t *testing.T) {
	db := setupTestDB(t)

	saved, err := db.SaveSession(models.AdjustmentSession{SubjectID: 5, CompID: 6})
	require.NoError(t, err)

	got, err := db.GetSessionByPair(5, 6)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, saved.ID, got.ID)

	missing, err := db.GetSessionByPair(5, 99)
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestDeleteSession(t *testing.T) {
	db := setupTestDB(t)

	saved, err := db.SaveSession(models.AdjustmentSession{SubjectID: 1, CompID: 2})
	require.NoError(t, err)

	require.NoError(t, db.DeleteSession(saved.ID))

	got, err := db.GetSession(saved.ID)
	require.NoError(t, err)
	assert.Nil(t, got)

	err = db.DeleteSession(saved.ID)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "session not found")
}

func TestDeleteSessionsOlderThan(t *testing.T) {
	db := setupTestDB(t)

	_, err := db.SaveSession(models.AdjustmentSession{SubjectID: 1, CompID: 2})
	require.NoError(t, err)
	stale, err := db.SaveSession(models.AdjustmentSession{SubjectID: 1, CompID: 3})
	require.NoError(t, err)

	_, err = db.GetDB().Exec(`UPDATE adjustment_sessions SET updated_at = ? WHERE id = ?`,
		time.Now().UTC().Add(-120*24*time.Hour), stale.ID)
	require.NoError(t, err)

	removed, err := db.DeleteSessionsOlderThan(time.Now().UTC().Add(-90 * 24 * time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)

	sessions, err := db.GetSessionsBySubject(1)
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	assert.Equal(t, models.PropertyID(2), sessions[0].CompID)
}
