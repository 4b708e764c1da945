package database

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/nepal-lottery/lottery-backend/internal/models"
)

// ContactRepository defines database operations on contact form submissions.
type ContactRepository interface {
	Create(ctx context.Context, name, email, message string) (*models.ContactSubmission, error)
	List(ctx context.Context) ([]models.ContactSubmission, error)
	MarkRead(ctx context.Context, id string) error
	Delete(ctx context.Context, id string) error
	CountUnread(ctx context.Context) (int, error)
}

type contactRepositoryImpl struct {
	db DBTX
}

// NewContactRepository creates a ContactRepository backed by db.
func NewContactRepository(db DBTX) ContactRepository {
	return &contactRepositoryImpl{db: db}
}

func (r *contactRepositoryImpl) Create(ctx context.Context, name, email, message string) (*models.ContactSubmission, error) {
	m := &models.ContactSubmission{
		ID:        uuid.New().String(),
		Name:      name,
		Email:     email,
		Message:   message,
		Status:    models.MessageStatusUnread,
		CreatedAt: time.Now(),
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO contact_submissions (id, name, email, message, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		m.ID, m.Name, m.Email, m.Message, m.Status, m.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to insert contact submission: %w", err)
	}
	return m, nil
}

func (r *contactRepositoryImpl) List(ctx context.Context) ([]models.ContactSubmission, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, email, message, status, created_at
		FROM contact_submissions ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list contact submissions: %w", err)
	}
	defer rows.Close()

	messages := []models.ContactSubmission{}
	for rows.Next() {
		var m models.ContactSubmission
		if err := rows.Scan(&m.ID, &m.Name, &m.Email, &m.Message, &m.Status, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan contact submission: %w", err)
		}
		messages = append(messages, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error while iterating contact submissions: %w", err)
	}
	return messages, nil
}

func (r *contactRepositoryImpl) MarkRead(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE contact_submissions SET status = $1 WHERE id = $2`, models.MessageStatusRead, id)
	if err != nil {
		return fmt.Errorf("failed to mark message %s as read: %w", id, err)
	}
	return nil
}

func (r *contactRepositoryImpl) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM contact_submissions WHERE id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete message %s: %w", id, err)
	}
	return nil
}

func (r *contactRepositoryImpl) CountUnread(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM contact_submissions WHERE status = $1`, models.MessageStatusUnread).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count unread messages: %w", err)
	}
	return n, nil
}
