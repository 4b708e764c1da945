package results

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nepal-lottery/lottery-backend/internal/apperrors"
	"github.com/nepal-lottery/lottery-backend/internal/models"
	"github.com/nepal-lottery/lottery-backend/internal/services/storage"
)

type fakeRepo struct {
	mu         sync.Mutex
	rows       map[string]models.ImageResult
	categories map[string]bool
	fail       error
}

func newFakeRepo(categories ...string) *fakeRepo {
	r := &fakeRepo{rows: map[string]models.ImageResult{}, categories: map[string]bool{}}
	for _, c := range categories {
		r.categories[c] = true
	}
	return r
}

func (r *fakeRepo) Create(_ context.Context, img *models.ImageResult) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail != nil {
		return r.fail
	}
	if !r.categories[img.CategoryID] {
		return fmt.Errorf("failed to insert image result: %w", &pq.Error{Code: "23503"})
	}
	r.rows[img.ID] = *img
	return nil
}

func (r *fakeRepo) Update(_ context.Context, img *models.ImageResult) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail != nil {
		return r.fail
	}
	r.rows[img.ID] = *img
	return nil
}

func (r *fakeRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.rows, id)
	return nil
}

func (r *fakeRepo) Get(_ context.Context, id string) (*models.ImageResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if img, ok := r.rows[id]; ok {
		return &img, nil
	}
	return nil, nil
}

func (r *fakeRepo) List(_ context.Context, limit int, categoryID string) ([]models.ImageResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.ImageResult
	for _, img := range r.rows {
		if categoryID == "" || img.CategoryID == categoryID {
			out = append(out, img)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ResultDate.After(out[j].ResultDate) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *fakeRepo) RecentUploads(ctx context.Context, limit int) ([]models.ImageResult, error) {
	return r.List(ctx, limit, "")
}

func (r *fakeRepo) Count(_ context.Context) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.rows), nil
}

type fakeImages struct {
	saved   int
	removed []string
	err     error
}

func (f *fakeImages) Save(_ context.Context, r io.Reader) (*storage.StoredImage, error) {
	if f.err != nil {
		return nil, f.err
	}
	if _, err := io.ReadAll(r); err != nil {
		return nil, err
	}
	f.saved++
	return &storage.StoredImage{
		URL:          fmt.Sprintf("https://cdn.example/%d.png", f.saved),
		ThumbnailURL: fmt.Sprintf("https://cdn.example/thumbs/%d.jpg", f.saved),
	}, nil
}

func (f *fakeImages) Remove(_ context.Context, urls ...string) error {
	f.removed = append(f.removed, urls...)
	return nil
}

var categoryID = uuid.NewString()

func validForm() models.ImageResultForm {
	return models.ImageResultForm{
		Title:       " 05/01/2026 Result | 11:30 AM ",
		Description: "**Lucky** numbers",
		CategoryID:  categoryID,
		Date:        "2026-01-05",
	}
}

func TestCreate_StoresImageAndRow(t *testing.T) {
	repo, images := newFakeRepo(categoryID), &fakeImages{}
	svc := NewResultService(repo, images)

	img, err := svc.Create(context.Background(), validForm(), strings.NewReader("png"))
	require.NoError(t, err)

	assert.Equal(t, "05/01/2026 Result | 11:30 AM", img.Title)
	assert.Equal(t, "**Lucky** numbers", img.Description)
	assert.Equal(t, time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC), img.ResultDate)
	assert.Equal(t, "https://cdn.example/1.png", img.ImageURL)
	assert.Equal(t, "https://cdn.example/thumbs/1.jpg", img.ThumbnailURL)

	got, err := svc.Get(context.Background(), img.ID)
	require.NoError(t, err)
	assert.Equal(t, img.Title, got.Title)
}

func TestCreate_Validation(t *testing.T) {
	svc := NewResultService(newFakeRepo(categoryID), &fakeImages{})

	form := validForm()
	form.Title = "  "
	_, err := svc.Create(context.Background(), form, strings.NewReader("png"))
	var vErr *apperrors.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "required", vErr.Fields["Title"])

	_, err = svc.Create(context.Background(), validForm(), nil)
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "Image is required", vErr.Message)
}

func TestCreate_BadImageIsValidationError(t *testing.T) {
	svc := NewResultService(newFakeRepo(categoryID), &fakeImages{err: storage.ErrUnsupportedImage})

	_, err := svc.Create(context.Background(), validForm(), strings.NewReader("pdf"))
	var vErr *apperrors.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, storage.ErrUnsupportedImage.Error(), vErr.Message)
}

func TestCreate_UnknownCategoryCleansUp(t *testing.T) {
	images := &fakeImages{}
	svc := NewResultService(newFakeRepo(), images)

	_, err := svc.Create(context.Background(), validForm(), strings.NewReader("png"))
	var vErr *apperrors.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "Category not found", vErr.Message)
	assert.Equal(t, []string{"https://cdn.example/1.png", "https://cdn.example/thumbs/1.jpg"}, images.removed)
}

func TestCreate_StorageFailure(t *testing.T) {
	repo := newFakeRepo(categoryID)
	repo.fail = errors.New("db down")
	svc := NewResultService(repo, &fakeImages{})

	_, err := svc.Create(context.Background(), validForm(), strings.NewReader("png"))
	var sErr *apperrors.StorageError
	require.ErrorAs(t, err, &sErr)
	assert.Equal(t, "Failed to save result", sErr.Error())
}

func TestUpdate_ReplacesImageOnlyWhenGiven(t *testing.T) {
	images := &fakeImages{}
	svc := NewResultService(newFakeRepo(categoryID), images)
	ctx := context.Background()

	img, err := svc.Create(ctx, validForm(), strings.NewReader("png"))
	require.NoError(t, err)

	form := validForm()
	form.Title = "Renamed"
	same, err := svc.Update(ctx, img.ID, form, nil)
	require.NoError(t, err)
	assert.Equal(t, "Renamed", same.Title)
	assert.Equal(t, img.ImageURL, same.ImageURL)
	assert.Empty(t, images.removed)

	replaced, err := svc.Update(ctx, img.ID, form, strings.NewReader("png2"))
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example/2.png", replaced.ImageURL)
	assert.Equal(t, []string{img.ImageURL, img.ThumbnailURL}, images.removed)
}

func TestUpdateAndDelete_NotFound(t *testing.T) {
	svc := NewResultService(newFakeRepo(categoryID), &fakeImages{})
	var nf *apperrors.NotFoundError

	_, err := svc.Update(context.Background(), uuid.NewString(), validForm(), nil)
	assert.ErrorAs(t, err, &nf)

	err = svc.Delete(context.Background(), "not-an-id")
	assert.ErrorAs(t, err, &nf)
}

func TestDelete_RemovesObjectsAndRow(t *testing.T) {
	repo, images := newFakeRepo(categoryID), &fakeImages{}
	svc := NewResultService(repo, images)
	ctx := context.Background()

	img, err := svc.Create(ctx, validForm(), strings.NewReader("png"))
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, img.ID))
	assert.Equal(t, []string{img.ImageURL, img.ThumbnailURL}, images.removed)
	n, _ := repo.Count(ctx)
	assert.Zero(t, n)
}

func TestList_FiltersAndValidatesCategory(t *testing.T) {
	other := uuid.NewString()
	repo := newFakeRepo(categoryID, other)
	svc := NewResultService(repo, &fakeImages{})
	ctx := context.Background()

	for i, cat := range []string{categoryID, other, categoryID} {
		form := validForm()
		form.CategoryID = cat
		form.Date = fmt.Sprintf("2026-01-0%d", i+1)
		_, err := svc.Create(ctx, form, strings.NewReader("png"))
		require.NoError(t, err)
	}

	list, err := svc.List(ctx, 0, categoryID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, 3, list[0].ResultDate.Day())

	_, err = svc.List(ctx, 10, "bogus")
	var vErr *apperrors.ValidationError
	assert.ErrorAs(t, err, &vErr)
}
