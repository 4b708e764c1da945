package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/nepal-lottery/lottery-backend/internal/models"
)

// ImageResultRepository defines database operations on uploaded result sheets.
type ImageResultRepository interface {
	Create(ctx context.Context, img *models.ImageResult) error
	// Update writes title, description, category, date and both URLs.
	Update(ctx context.Context, img *models.ImageResult) error
	Delete(ctx context.Context, id string) error
	// Get returns the result joined with its category name, nil when absent.
	Get(ctx context.Context, id string) (*models.ImageResult, error)
	// List returns results by result date, newest first. An empty
	// categoryID means every category.
	List(ctx context.Context, limit int, categoryID string) ([]models.ImageResult, error)
	// RecentUploads orders by upload time instead of result date.
	RecentUploads(ctx context.Context, limit int) ([]models.ImageResult, error)
	Count(ctx context.Context) (int, error)
}

type imageResultRepositoryImpl struct {
	db DBTX
}

// NewImageResultRepository creates an ImageResultRepository backed by db.
func NewImageResultRepository(db DBTX) ImageResultRepository {
	return &imageResultRepositoryImpl{db: db}
}

const imageResultSelect = `
	SELECT i.id, i.title, i.result_date, i.category_id, COALESCE(c.name, ''),
	       COALESCE(i.description, ''), i.image_url, COALESCE(i.thumbnail_url, ''), i.created_at
	FROM image_results i
	LEFT JOIN categories c ON c.id = i.category_id`

func scanImageResult(row rowScanner) (*models.ImageResult, error) {
	var img models.ImageResult
	err := row.Scan(&img.ID, &img.Title, &img.ResultDate, &img.CategoryID, &img.CategoryName,
		&img.Description, &img.ImageURL, &img.ThumbnailURL, &img.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &img, nil
}

func nullIfEmpty(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func (r *imageResultRepositoryImpl) Create(ctx context.Context, img *models.ImageResult) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO image_results (id, title, result_date, category_id, description, image_url, thumbnail_url, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		img.ID, img.Title, img.ResultDate, img.CategoryID, nullIfEmpty(img.Description),
		img.ImageURL, nullIfEmpty(img.ThumbnailURL), img.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert image result: %w", err)
	}
	return nil
}

func (r *imageResultRepositoryImpl) Update(ctx context.Context, img *models.ImageResult) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE image_results
		SET title = $1, description = $2, category_id = $3, result_date = $4, image_url = $5, thumbnail_url = $6
		WHERE id = $7`,
		img.Title, nullIfEmpty(img.Description), img.CategoryID, img.ResultDate,
		img.ImageURL, nullIfEmpty(img.ThumbnailURL), img.ID)
	if err != nil {
		return fmt.Errorf("failed to update image result %s: %w", img.ID, err)
	}
	return nil
}

func (r *imageResultRepositoryImpl) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM image_results WHERE id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete image result %s: %w", id, err)
	}
	return nil
}

func (r *imageResultRepositoryImpl) Get(ctx context.Context, id string) (*models.ImageResult, error) {
	img, err := scanImageResult(r.db.QueryRowContext(ctx, imageResultSelect+` WHERE i.id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get image result %s: %w", id, err)
	}
	return img, nil
}

func (r *imageResultRepositoryImpl) List(ctx context.Context, limit int, categoryID string) ([]models.ImageResult, error) {
	if categoryID == "" {
		return r.query(ctx, imageResultSelect+` ORDER BY i.result_date DESC, i.created_at DESC LIMIT $1`, limit)
	}
	return r.query(ctx, imageResultSelect+` WHERE i.category_id = $1 ORDER BY i.result_date DESC, i.created_at DESC LIMIT $2`,
		categoryID, limit)
}

func (r *imageResultRepositoryImpl) RecentUploads(ctx context.Context, limit int) ([]models.ImageResult, error) {
	return r.query(ctx, imageResultSelect+` ORDER BY i.created_at DESC LIMIT $1`, limit)
}

func (r *imageResultRepositoryImpl) query(ctx context.Context, query string, args ...any) ([]models.ImageResult, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list image results: %w", err)
	}
	defer rows.Close()

	results := []models.ImageResult{}
	for rows.Next() {
		img, err := scanImageResult(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan image result: %w", err)
		}
		results = append(results, *img)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error while iterating image results: %w", err)
	}
	return results, nil
}

func (r *imageResultRepositoryImpl) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM image_results`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count image results: %w", err)
	}
	return n, nil
}
