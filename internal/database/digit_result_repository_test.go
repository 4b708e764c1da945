package database

import (
	"context"
	"database/sql"
	"os"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nepal-lottery/lottery-backend/internal/models"
)

// setupTestDB connects to TEST_DATABASE_URL and recreates the schema.
// Tests are skipped when the variable is not set.
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set, skipping PostgreSQL tests")
	}

	db, err := sql.Open("postgres", url)
	require.NoError(t, err)

	_, err = db.Exec(`
		DROP TABLE IF EXISTS site_settings CASCADE;
		DROP TABLE IF EXISTS contact_submissions CASCADE;
		DROP TABLE IF EXISTS digit_results CASCADE;
		DROP TABLE IF EXISTS image_results CASCADE;
		DROP TABLE IF EXISTS categories CASCADE;
	`)
	require.NoError(t, err, "failed to clean database")

	_, err = db.Exec(Schema)
	require.NoError(t, err, "failed to create schema")

	t.Cleanup(func() { db.Close() })
	return db
}

func TestDigitResultRepository_UpsertCreatesThenUpdatesOneShift(t *testing.T) {
	db := setupTestDB(t)
	repo := NewDigitResultRepository(db)
	ctx := context.Background()

	rec, created, err := repo.UpsertShift(ctx, "2024-06-01", models.ShiftEvening, 3)
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, "2024-06-01", rec.ResultDate)
	assert.Nil(t, rec.MorningDigit)
	assert.Nil(t, rec.DayDigit)
	require.NotNil(t, rec.EveningDigit)
	assert.Equal(t, 3, *rec.EveningDigit)

	_, _, err = repo.UpsertShift(ctx, "2024-06-01", models.ShiftMorning, 5)
	require.NoError(t, err)
	updated, created, err := repo.UpsertShift(ctx, "2024-06-01", models.ShiftDay, 7)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, rec.ID, updated.ID)
	assert.Equal(t, 5, *updated.MorningDigit)
	assert.Equal(t, 7, *updated.DayDigit)
	assert.Equal(t, 3, *updated.EveningDigit)

	found, err := repo.FindByDate(ctx, "2024-06-01")
	require.NoError(t, err)
	assert.Equal(t, updated, found)
}

func TestDigitResultRepository_ConcurrentShiftsAreAllKept(t *testing.T) {
	db := setupTestDB(t)
	repo := NewDigitResultRepository(db)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i, shift := range models.Shifts {
		wg.Add(1)
		go func(shift models.Shift, digit int) {
			defer wg.Done()
			_, _, err := repo.UpsertShift(ctx, "2024-07-04", shift, digit)
			assert.NoError(t, err)
		}(shift, i+1)
	}
	wg.Wait()

	list, err := repo.List(ctx, 10)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, 1, *list[0].MorningDigit)
	assert.Equal(t, 2, *list[0].DayDigit)
	assert.Equal(t, 3, *list[0].EveningDigit)
}

func TestDigitResultRepository_DeleteAndListOrder(t *testing.T) {
	db := setupTestDB(t)
	repo := NewDigitResultRepository(db)
	ctx := context.Background()

	for _, d := range []string{"2024-06-02", "2024-06-03", "2024-06-01"} {
		_, _, err := repo.UpsertShift(ctx, d, models.ShiftMorning, 1)
		require.NoError(t, err)
	}

	list, err := repo.List(ctx, 2)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "2024-06-03", list[0].ResultDate)
	assert.Equal(t, "2024-06-02", list[1].ResultDate)

	latest, err := repo.Latest(ctx)
	require.NoError(t, err)
	assert.Equal(t, "2024-06-03", latest.ResultDate)

	deleted, err := repo.DeleteByID(ctx, latest.ID)
	require.NoError(t, err)
	assert.True(t, deleted)
	deleted, err = repo.DeleteByID(ctx, latest.ID)
	require.NoError(t, err)
	assert.False(t, deleted)

	missing, err := repo.FindByDate(ctx, "2024-06-03")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestDigitResultRepository_CheckConstraintRejectsOutOfRange(t *testing.T) {
	db := setupTestDB(t)
	repo := NewDigitResultRepository(db)

	_, _, err := repo.UpsertShift(context.Background(), "2024-06-01", models.ShiftDay, 12)
	assert.Error(t, err)
}
