package database

import (
	"context"
	"fmt"
)

// CreateSchema creates every table the site needs.
// Safe to call multiple times - uses IF NOT EXISTS.
func (s *DatabaseService) CreateSchema(ctx context.Context) error {
	if _, err := s.DB.ExecContext(ctx, Schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// Schema is the full DDL, also used by the integration tests.
const Schema = `
CREATE TABLE IF NOT EXISTS categories (
    id UUID PRIMARY KEY,
    name VARCHAR(50) NOT NULL,
    created_at TIMESTAMP NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS image_results (
    id UUID PRIMARY KEY,
    title TEXT NOT NULL,
    result_date TIMESTAMP NOT NULL,
    category_id UUID NOT NULL REFERENCES categories(id) ON DELETE CASCADE,
    description TEXT,
    image_url TEXT NOT NULL,
    thumbnail_url TEXT,
    created_at TIMESTAMP NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_image_results_result_date ON image_results(result_date DESC);
CREATE INDEX IF NOT EXISTS idx_image_results_category_id ON image_results(category_id);

-- One row per day; each shift is set independently.
CREATE TABLE IF NOT EXISTS digit_results (
    id UUID PRIMARY KEY,
    result_date DATE NOT NULL UNIQUE,
    morning_digit INTEGER CHECK (morning_digit BETWEEN 0 AND 9),
    day_digit INTEGER CHECK (day_digit BETWEEN 0 AND 9),
    evening_digit INTEGER CHECK (evening_digit BETWEEN 0 AND 9),
    created_at TIMESTAMP NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS contact_submissions (
    id UUID PRIMARY KEY,
    name TEXT NOT NULL,
    email TEXT NOT NULL,
    message TEXT NOT NULL,
    status VARCHAR(20) NOT NULL DEFAULT 'unread' CHECK (status IN ('unread', 'read')),
    created_at TIMESTAMP NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_contact_submissions_status ON contact_submissions(status);

CREATE TABLE IF NOT EXISTS site_settings (
    id UUID PRIMARY KEY,
    key TEXT NOT NULL UNIQUE,
    value TEXT NOT NULL,
    updated_at TIMESTAMP NOT NULL DEFAULT NOW()
);
`
