package results

import (
	"context"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/nepal-lottery/lottery-backend/internal/apperrors"
	"github.com/nepal-lottery/lottery-backend/internal/config"
	"github.com/nepal-lottery/lottery-backend/internal/database"
	"github.com/nepal-lottery/lottery-backend/internal/models"
	"github.com/nepal-lottery/lottery-backend/internal/services/storage"
	"github.com/nepal-lottery/lottery-backend/internal/validation"
)

const (
	DefaultListLimit = 50
	MaxListLimit     = 200
)

// ImageStore saves and removes result images.
type ImageStore interface {
	Save(ctx context.Context, r io.Reader) (*storage.StoredImage, error)
	Remove(ctx context.Context, urls ...string) error
}

// ResultService manages uploaded result sheets.
type ResultService interface {
	Create(ctx context.Context, form models.ImageResultForm, image io.Reader) (*models.ImageResult, error)
	// Update keeps the current image when image is nil.
	Update(ctx context.Context, id string, form models.ImageResultForm, image io.Reader) (*models.ImageResult, error)
	Delete(ctx context.Context, id string) error
	Get(ctx context.Context, id string) (*models.ImageResult, error)
	List(ctx context.Context, limit int, categoryID string) ([]models.ImageResult, error)
	Recent(ctx context.Context, limit int) ([]models.ImageResult, error)
}

type resultServiceImpl struct {
	repo   database.ImageResultRepository
	images ImageStore
	now    func() time.Time
}

// NewResultService creates a ResultService.
func NewResultService(repo database.ImageResultRepository, images ImageStore) ResultService {
	return &resultServiceImpl{repo: repo, images: images, now: time.Now}
}

func normalizeForm(form *models.ImageResultForm) error {
	form.Title = strings.TrimSpace(form.Title)
	form.CategoryID = strings.TrimSpace(form.CategoryID)
	form.Date = strings.TrimSpace(form.Date)
	return validation.Struct(form)
}

func (s *resultServiceImpl) saveImage(ctx context.Context, image io.Reader) (*storage.StoredImage, error) {
	stored, err := s.images.Save(ctx, image)
	if err != nil {
		if storage.IsUserError(err) {
			return nil, &apperrors.ValidationError{Message: err.Error()}
		}
		config.LogError("results", "saveImage", "upload image", nil, err)
		return nil, &apperrors.StorageError{Message: "Failed to upload image", Err: err}
	}
	return stored, nil
}

// cleanup removes uploaded objects that no row points to any more.
func (s *resultServiceImpl) cleanup(ctx context.Context, urls ...string) {
	if err := s.images.Remove(ctx, urls...); err != nil {
		config.LogError("results", "cleanup", "remove orphaned objects", urls, err)
	}
}

func (s *resultServiceImpl) Create(ctx context.Context, form models.ImageResultForm, image io.Reader) (*models.ImageResult, error) {
	if err := normalizeForm(&form); err != nil {
		return nil, err
	}
	if image == nil {
		return nil, &apperrors.ValidationError{Message: storage.ErrEmptyImage.Error()}
	}
	date, _ := time.Parse("2006-01-02", form.Date)

	stored, err := s.saveImage(ctx, image)
	if err != nil {
		return nil, err
	}

	img := &models.ImageResult{
		ID:           uuid.New().String(),
		Title:        form.Title,
		ResultDate:   date,
		CategoryID:   form.CategoryID,
		Description:  form.Description,
		ImageURL:     stored.URL,
		ThumbnailURL: stored.ThumbnailURL,
		CreatedAt:    s.now().UTC(),
	}
	if err := s.repo.Create(ctx, img); err != nil {
		s.cleanup(ctx, stored.URL, stored.ThumbnailURL)
		if database.IsForeignKeyViolation(err) {
			return nil, &apperrors.ValidationError{Message: "Category not found"}
		}
		config.LogError("results", "Create", "insert image result", img.Title, err)
		return nil, &apperrors.StorageError{Message: "Failed to save result", Err: err}
	}

	config.GetLogger().WithFields(logrus.Fields{
		"id": img.ID, "category": img.CategoryID, "date": form.Date,
	}).Info("image result created")
	return img, nil
}

func (s *resultServiceImpl) Update(ctx context.Context, id string, form models.ImageResultForm, image io.Reader) (*models.ImageResult, error) {
	if err := normalizeForm(&form); err != nil {
		return nil, err
	}
	current, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	date, _ := time.Parse("2006-01-02", form.Date)

	updated := *current
	updated.Title = form.Title
	updated.Description = form.Description
	updated.CategoryID = form.CategoryID
	updated.ResultDate = date

	var stored *storage.StoredImage
	if image != nil {
		if stored, err = s.saveImage(ctx, image); err != nil {
			return nil, err
		}
		updated.ImageURL = stored.URL
		updated.ThumbnailURL = stored.ThumbnailURL
	}

	if err := s.repo.Update(ctx, &updated); err != nil {
		if stored != nil {
			s.cleanup(ctx, stored.URL, stored.ThumbnailURL)
		}
		if database.IsForeignKeyViolation(err) {
			return nil, &apperrors.ValidationError{Message: "Category not found"}
		}
		config.LogError("results", "Update", "update image result", id, err)
		return nil, &apperrors.StorageError{Message: "Failed to update result", Err: err}
	}
	if stored != nil {
		s.cleanup(ctx, current.ImageURL, current.ThumbnailURL)
	}
	return &updated, nil
}

func (s *resultServiceImpl) Delete(ctx context.Context, id string) error {
	current, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.images.Remove(ctx, current.ImageURL, current.ThumbnailURL); err != nil {
		// The row goes regardless.
		config.LogError("results", "Delete", "remove image objects", id, err)
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		config.LogError("results", "Delete", "delete image result", id, err)
		return &apperrors.StorageError{Message: "Failed to delete result", Err: err}
	}
	return nil
}

func (s *resultServiceImpl) Get(ctx context.Context, id string) (*models.ImageResult, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, &apperrors.NotFoundError{What: "Result"}
	}
	img, err := s.repo.Get(ctx, id)
	if err != nil {
		config.LogError("results", "Get", "get image result", id, err)
		return nil, &apperrors.StorageError{Message: "Failed to load result", Err: err}
	}
	if img == nil {
		return nil, &apperrors.NotFoundError{What: "Result"}
	}
	return img, nil
}

func (s *resultServiceImpl) List(ctx context.Context, limit int, categoryID string) ([]models.ImageResult, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if limit > MaxListLimit {
		limit = MaxListLimit
	}
	if categoryID != "" {
		if _, err := uuid.Parse(categoryID); err != nil {
			return nil, &apperrors.ValidationError{Message: "Invalid category"}
		}
	}
	list, err := s.repo.List(ctx, limit, categoryID)
	if err != nil {
		config.LogError("results", "List", "list image results", categoryID, err)
		return nil, &apperrors.StorageError{Message: "Failed to load results", Err: err}
	}
	return list, nil
}

func (s *resultServiceImpl) Recent(ctx context.Context, limit int) ([]models.ImageResult, error) {
	list, err := s.repo.List(ctx, limit, "")
	if err != nil {
		config.LogError("results", "Recent", "list recent image results", limit, err)
		return nil, &apperrors.StorageError{Message: "Failed to load results", Err: err}
	}
	return list, nil
}
