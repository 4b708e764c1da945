package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/lib/pq"

	"github.com/nepal-lottery/lottery-backend/internal/config"
)

// DBTX is satisfied by both *sql.DB and *sql.Tx so repositories can run inside
// or outside a transaction.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// DatabaseService owns the connection pool.
type DatabaseService struct {
	DB *sql.DB
}

// NewDatabaseService opens a PostgreSQL pool and verifies it with a ping.
func NewDatabaseService(ctx context.Context, databaseURL string) (*DatabaseService, error) {
	log := config.GetLogger()
	log.Infof("connecting to database: %s", redactURL(databaseURL))

	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxIdleTime(5 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database, check the connection settings: %w", err)
	}

	log.Info("database connection established")
	return &DatabaseService{DB: db}, nil
}

// Close releases the pool.
func (s *DatabaseService) Close() error {
	return s.DB.Close()
}

// Version returns the server version string, used by the migrate command.
func (s *DatabaseService) Version(ctx context.Context) (string, error) {
	var version string
	if err := s.DB.QueryRowContext(ctx, "SELECT version()").Scan(&version); err != nil {
		return "", fmt.Errorf("failed to query server version: %w", err)
	}
	return version, nil
}

// redactURL masks the password of a connection URL for logging.
func redactURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return "<unparseable DATABASE_URL>"
	}
	return u.Redacted()
}

// IsForeignKeyViolation reports whether err carries PostgreSQL error 23503.
func IsForeignKeyViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23503"
}
