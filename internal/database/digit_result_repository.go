package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/nepal-lottery/lottery-backend/internal/models"
)

// DigitResultRepository is the persistence contract of the daily digit ledger.
type DigitResultRepository interface {
	// FindByDate returns the row for date (YYYY-MM-DD), nil when none exists.
	FindByDate(ctx context.Context, date string) (*models.DigitResult, error)

	// Latest returns the row with the most recent date, nil when the table is empty.
	Latest(ctx context.Context) (*models.DigitResult, error)

	// UpsertShift atomically inserts the row for date with only shift set, or
	// sets only that shift on the existing row. created is true on insert.
	UpsertShift(ctx context.Context, date string, shift models.Shift, digit int) (rec *models.DigitResult, created bool, err error)

	// DeleteByID removes the whole row. deleted is false when id did not exist.
	DeleteByID(ctx context.Context, id string) (deleted bool, err error)

	// List returns up to limit rows, most recent date first.
	List(ctx context.Context, limit int) ([]models.DigitResult, error)
}

type digitResultRepositoryImpl struct {
	db DBTX
}

// NewDigitResultRepository creates a DigitResultRepository backed by db.
func NewDigitResultRepository(db DBTX) DigitResultRepository {
	return &digitResultRepositoryImpl{db: db}
}

const digitResultColumns = `id, result_date, morning_digit, day_digit, evening_digit, created_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDigitResult(row rowScanner) (*models.DigitResult, error) {
	var (
		rec                   models.DigitResult
		resultDate            time.Time
		morning, day, evening sql.NullInt64
	)
	if err := row.Scan(&rec.ID, &resultDate, &morning, &day, &evening, &rec.CreatedAt); err != nil {
		return nil, err
	}
	rec.ResultDate = resultDate.Format("2006-01-02")
	rec.MorningDigit = nullableDigit(morning)
	rec.DayDigit = nullableDigit(day)
	rec.EveningDigit = nullableDigit(evening)
	return &rec, nil
}

func nullableDigit(n sql.NullInt64) *int {
	if !n.Valid {
		return nil
	}
	v := int(n.Int64)
	return &v
}

func (r *digitResultRepositoryImpl) FindByDate(ctx context.Context, date string) (*models.DigitResult, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+digitResultColumns+` FROM digit_results WHERE result_date = $1`, date)
	rec, err := scanDigitResult(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find digit result for %s: %w", date, err)
	}
	return rec, nil
}

func (r *digitResultRepositoryImpl) Latest(ctx context.Context) (*models.DigitResult, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+digitResultColumns+` FROM digit_results ORDER BY result_date DESC LIMIT 1`)
	rec, err := scanDigitResult(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch latest digit result: %w", err)
	}
	return rec, nil
}

// UpsertShift relies on the UNIQUE(result_date) constraint as the conflict
// target. The update branch assigns only the targeted column, so concurrent
// upserts of different shifts for the same date never overwrite each other.
func (r *digitResultRepositoryImpl) UpsertShift(ctx context.Context, date string, shift models.Shift, digit int) (*models.DigitResult, bool, error) {
	column := shift.Column()
	if column == "" {
		return nil, false, fmt.Errorf("unknown shift %q", shift)
	}

	newID := uuid.New().String()
	query := fmt.Sprintf(`
		INSERT INTO digit_results (id, result_date, %[1]s, created_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (result_date) DO UPDATE SET %[1]s = EXCLUDED.%[1]s
		RETURNING `+digitResultColumns, column)

	rec, err := scanDigitResult(r.db.QueryRowContext(ctx, query, newID, date, digit))
	if err != nil {
		return nil, false, fmt.Errorf("failed to upsert %s digit for %s: %w", shift, date, err)
	}
	// The row keeps its original id on conflict, so a matching id means insert.
	return rec, rec.ID == newID, nil
}

func (r *digitResultRepositoryImpl) DeleteByID(ctx context.Context, id string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM digit_results WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete digit result %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read affected rows: %w", err)
	}
	return n > 0, nil
}

func (r *digitResultRepositoryImpl) List(ctx context.Context, limit int) ([]models.DigitResult, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+digitResultColumns+` FROM digit_results ORDER BY result_date DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list digit results: %w", err)
	}
	defer rows.Close()

	results := []models.DigitResult{}
	for rows.Next() {
		rec, err := scanDigitResult(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan digit result: %w", err)
		}
		results = append(results, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error while iterating digit results: %w", err)
	}
	return results, nil
}
