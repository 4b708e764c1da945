package database

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/nepal-lottery/lottery-backend/internal/models"
)

// CategoryRepository defines database operations on categories.
type CategoryRepository interface {
	Create(ctx context.Context, name string) (*models.Category, error)
	// Update renames a category. updated is false when id does not exist.
	Update(ctx context.Context, id, name string) (updated bool, err error)
	// Delete removes a category and, by cascade, its image results.
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]models.Category, error)
	Count(ctx context.Context) (int, error)
}

type categoryRepositoryImpl struct {
	db DBTX
}

// NewCategoryRepository creates a CategoryRepository backed by db.
func NewCategoryRepository(db DBTX) CategoryRepository {
	return &categoryRepositoryImpl{db: db}
}

func (r *categoryRepositoryImpl) Create(ctx context.Context, name string) (*models.Category, error) {
	c := &models.Category{ID: uuid.New().String(), Name: name, CreatedAt: time.Now()}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO categories (id, name, created_at) VALUES ($1, $2, $3)`,
		c.ID, c.Name, c.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to insert category: %w", err)
	}
	return c, nil
}

func (r *categoryRepositoryImpl) Update(ctx context.Context, id, name string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `UPDATE categories SET name = $1 WHERE id = $2`, name, id)
	if err != nil {
		return false, fmt.Errorf("failed to update category %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read affected rows: %w", err)
	}
	return n > 0, nil
}

func (r *categoryRepositoryImpl) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM categories WHERE id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete category %s: %w", id, err)
	}
	return nil
}

func (r *categoryRepositoryImpl) List(ctx context.Context) ([]models.Category, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, created_at FROM categories ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	defer rows.Close()

	categories := []models.Category{}
	for rows.Next() {
		var c models.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error while iterating categories: %w", err)
	}
	return categories, nil
}

func (r *categoryRepositoryImpl) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM categories`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count categories: %w", err)
	}
	return n, nil
}
