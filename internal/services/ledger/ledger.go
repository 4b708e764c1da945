package ledger

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/nepal-lottery/lottery-backend/internal/config"
	"github.com/nepal-lottery/lottery-backend/internal/database"
	"github.com/nepal-lottery/lottery-backend/internal/models"
)

const (
	DefaultListLimit = 100
	MaxListLimit     = 366
)

const dateLayout = "2006-01-02"

// Result is the outcome of a successful ledger write.
type Result struct {
	Message string
	Record  *models.DigitResult
	Created bool
}

// Ledger keeps one digit_results row per calendar day and lets each of the
// three shifts be recorded independently.
type Ledger struct {
	repo database.DigitResultRepository
	loc  *time.Location
	now  func() time.Time
}

// Option configures a Ledger.
type Option func(*Ledger)

// WithLocation sets the zone that decides what "today" is.
func WithLocation(loc *time.Location) Option {
	return func(l *Ledger) { l.loc = loc }
}

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(l *Ledger) { l.now = now }
}

// New creates a Ledger over repo.
func New(repo database.DigitResultRepository, opts ...Option) *Ledger {
	l := &Ledger{repo: repo, loc: time.Local, now: time.Now}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Today is the current calendar date in the ledger's zone.
func (l *Ledger) Today() string {
	return l.now().In(l.loc).Format(dateLayout)
}

// ValidateShiftInput checks and normalises an upsert request without touching
// the store.
func ValidateShiftInput(date, shift, digit string) (string, models.Shift, int, error) {
	date, shift, digit = strings.TrimSpace(date), strings.TrimSpace(shift), strings.TrimSpace(digit)
	if date == "" || shift == "" || digit == "" {
		return "", "", 0, &ValidationError{Message: "Date, Shift and Digit are required"}
	}

	d, err := parseDate(date)
	if err != nil {
		return "", "", 0, err
	}

	s, ok := models.ParseShift(shift)
	if !ok {
		return "", "", 0, &ValidationError{Message: "Invalid shift"}
	}

	n, err := strconv.Atoi(digit)
	if err != nil || n < 0 || n > 9 {
		return "", "", 0, &ValidationError{Message: "Digit must be between 0-9"}
	}
	return d, s, n, nil
}

func parseDate(date string) (string, error) {
	t, err := time.Parse(dateLayout, strings.TrimSpace(date))
	if err != nil {
		return "", &ValidationError{Message: "Invalid date"}
	}
	return t.Format(dateLayout), nil
}

// UpsertShift records digit for one shift of date. The row is created on the
// first write for that date; later writes touch only their own shift.
func (l *Ledger) UpsertShift(ctx context.Context, date, shift, digit string) (*Result, error) {
	d, s, n, err := ValidateShiftInput(date, shift, digit)
	if err != nil {
		return nil, err
	}

	rec, created, err := l.repo.UpsertShift(ctx, d, s, n)
	if err != nil {
		config.LogError("ledger", "UpsertShift", "upsert digit result",
			map[string]any{"date": d, "shift": s, "digit": n}, err)
		return nil, &StorageError{Message: fmt.Sprintf("Failed to save %s result", s.Label()), Err: err}
	}

	msg := fmt.Sprintf("%s updated to %d", s.Label(), n)
	if created {
		msg = fmt.Sprintf("New entry: %s is %d", s.Label(), n)
	}
	config.GetLogger().WithFields(logrus.Fields{
		"date": d, "shift": s, "digit": n, "created": created,
	}).Info("digit result saved")

	return &Result{Message: msg, Record: rec, Created: created}, nil
}

// DeleteRecord removes every shift of the record with id. Deleting an id that
// does not exist succeeds, so repeated deletes are harmless.
func (l *Ledger) DeleteRecord(ctx context.Context, id string) (*Result, error) {
	if _, err := uuid.Parse(strings.TrimSpace(id)); err != nil {
		return nil, &ValidationError{Message: "Invalid id"}
	}

	deleted, err := l.repo.DeleteByID(ctx, id)
	if err != nil {
		config.LogError("ledger", "DeleteRecord", "delete digit result", id, err)
		return nil, &StorageError{Message: "Failed to delete entry", Err: err}
	}
	if !deleted {
		config.GetLogger().WithField("id", id).Info("digit result already absent")
	}
	return &Result{Message: "Entry deleted successfully"}, nil
}

// ListRecords returns up to limit records, most recent date first.
// A non-positive limit means DefaultListLimit.
func (l *Ledger) ListRecords(ctx context.Context, limit int) ([]models.DigitResult, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if limit > MaxListLimit {
		limit = MaxListLimit
	}

	records, err := l.repo.List(ctx, limit)
	if err != nil {
		config.LogError("ledger", "ListRecords", "list digit results", limit, err)
		return nil, &StorageError{Message: "Failed to load digit results", Err: err}
	}
	return records, nil
}

// RecordForDate returns the record of date, or nil when nothing was recorded.
func (l *Ledger) RecordForDate(ctx context.Context, date string) (*models.DigitResult, error) {
	d, err := parseDate(date)
	if err != nil {
		return nil, err
	}
	rec, err := l.repo.FindByDate(ctx, d)
	if err != nil {
		config.LogError("ledger", "RecordForDate", "find digit result", d, err)
		return nil, &StorageError{Message: "Failed to load digit result", Err: err}
	}
	return rec, nil
}

// Latest returns the most recent record and whether it is today's.
func (l *Ledger) Latest(ctx context.Context) (*models.DigitResult, bool, error) {
	rec, err := l.repo.Latest(ctx)
	if err != nil {
		config.LogError("ledger", "Latest", "latest digit result", nil, err)
		return nil, false, &StorageError{Message: "Failed to load digit result", Err: err}
	}
	return rec, rec != nil && rec.ResultDate == l.Today(), nil
}
