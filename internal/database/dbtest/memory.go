// Package dbtest provides in-memory implementations of the repositories in
// package database. They keep the same semantics as the PostgreSQL versions,
// including the atomic per-shift upsert, and are safe for concurrent use.
package dbtest

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/nepal-lottery/lottery-backend/internal/database"
	"github.com/nepal-lottery/lottery-backend/internal/models"
)

var foreignKeyViolation = &pq.Error{Code: "23503", Message: "violates foreign key constraint"}

// Store holds every table. Setting Err makes all calls fail with it.
type Store struct {
	mu         sync.Mutex
	Err        error
	digits     map[string]*models.DigitResult
	categories map[string]models.Category
	images     map[string]models.ImageResult
	contacts   map[string]models.ContactSubmission
	settings   map[string]string
}

// NewStore creates an empty Store.
func NewStore() *Store {
	return &Store{
		digits:     map[string]*models.DigitResult{},
		categories: map[string]models.Category{},
		images:     map[string]models.ImageResult{},
		contacts:   map[string]models.ContactSubmission{},
		settings:   map[string]string{},
	}
}

// SetErr makes every following call fail with err, or succeed again for nil.
func (s *Store) SetErr(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Err = err
}

func copyDigit(r *models.DigitResult) *models.DigitResult {
	c := *r
	c.MorningDigit, c.DayDigit, c.EveningDigit = nil, nil, nil
	for _, sh := range models.Shifts {
		if d := r.Digit(sh); d != nil {
			c.SetDigit(sh, *d)
		}
	}
	return &c
}

// DigitResults returns the digit_results view of s.
func (s *Store) DigitResults() database.DigitResultRepository { return digitRepo{s} }

// Categories returns the categories view of s.
func (s *Store) Categories() database.CategoryRepository { return categoryRepo{s} }

// ImageResults returns the image_results view of s.
func (s *Store) ImageResults() database.ImageResultRepository { return imageRepo{s} }

// Contacts returns the contact_submissions view of s.
func (s *Store) Contacts() database.ContactRepository { return contactRepo{s} }

// Settings returns the site_settings view of s.
func (s *Store) Settings() database.SettingRepository { return settingRepo{s} }

// DigitRows is the number of digit_results rows for date.
func (s *Store) DigitRows(date string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.digits[date]; ok {
		return 1
	}
	return 0
}

type digitRepo struct{ s *Store }

func (r digitRepo) FindByDate(_ context.Context, date string) (*models.DigitResult, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.Err; err != nil {
		return nil, err
	}
	if rec, ok := r.s.digits[date]; ok {
		return copyDigit(rec), nil
	}
	return nil, nil
}

func (r digitRepo) Latest(ctx context.Context) (*models.DigitResult, error) {
	list, err := r.List(ctx, 1)
	if err != nil || len(list) == 0 {
		return nil, err
	}
	return &list[0], nil
}

func (r digitRepo) UpsertShift(_ context.Context, date string, shift models.Shift, digit int) (*models.DigitResult, bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.Err; err != nil {
		return nil, false, err
	}
	rec, ok := r.s.digits[date]
	if !ok {
		rec = &models.DigitResult{ID: uuid.NewString(), ResultDate: date, CreatedAt: time.Now().UTC()}
		r.s.digits[date] = rec
	}
	rec.SetDigit(shift, digit)
	return copyDigit(rec), !ok, nil
}

func (r digitRepo) DeleteByID(_ context.Context, id string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.Err; err != nil {
		return false, err
	}
	for date, rec := range r.s.digits {
		if rec.ID == id {
			delete(r.s.digits, date)
			return true, nil
		}
	}
	return false, nil
}

func (r digitRepo) List(_ context.Context, limit int) ([]models.DigitResult, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.Err; err != nil {
		return nil, err
	}
	out := make([]models.DigitResult, 0, len(r.s.digits))
	for _, rec := range r.s.digits {
		out = append(out, *copyDigit(rec))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ResultDate > out[j].ResultDate })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

type categoryRepo struct{ s *Store }

func (r categoryRepo) Create(_ context.Context, name string) (*models.Category, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.Err; err != nil {
		return nil, err
	}
	c := models.Category{ID: uuid.NewString(), Name: name, CreatedAt: time.Now().UTC()}
	r.s.categories[c.ID] = c
	return &c, nil
}

func (r categoryRepo) Update(_ context.Context, id, name string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.Err; err != nil {
		return false, err
	}
	c, ok := r.s.categories[id]
	if !ok {
		return false, nil
	}
	c.Name = name
	r.s.categories[id] = c
	return true, nil
}

func (r categoryRepo) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.Err; err != nil {
		return err
	}
	delete(r.s.categories, id)
	for imgID, img := range r.s.images {
		if img.CategoryID == id {
			delete(r.s.images, imgID)
		}
	}
	return nil
}

func (r categoryRepo) List(_ context.Context) ([]models.Category, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.Err; err != nil {
		return nil, err
	}
	out := make([]models.Category, 0, len(r.s.categories))
	for _, c := range r.s.categories {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r categoryRepo) Count(ctx context.Context) (int, error) {
	list, err := r.List(ctx)
	return len(list), err
}

type imageRepo struct{ s *Store }

func (r imageRepo) withCategory(img models.ImageResult) models.ImageResult {
	img.CategoryName = r.s.categories[img.CategoryID].Name
	return img
}

func (r imageRepo) Create(_ context.Context, img *models.ImageResult) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.Err; err != nil {
		return err
	}
	if _, ok := r.s.categories[img.CategoryID]; !ok {
		return fmt.Errorf("failed to insert image result: %w", foreignKeyViolation)
	}
	r.s.images[img.ID] = *img
	return nil
}

func (r imageRepo) Update(_ context.Context, img *models.ImageResult) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.Err; err != nil {
		return err
	}
	if _, ok := r.s.categories[img.CategoryID]; !ok {
		return fmt.Errorf("failed to update image result %s: %w", img.ID, foreignKeyViolation)
	}
	if _, ok := r.s.images[img.ID]; ok {
		r.s.images[img.ID] = *img
	}
	return nil
}

func (r imageRepo) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.Err; err != nil {
		return err
	}
	delete(r.s.images, id)
	return nil
}

func (r imageRepo) Get(_ context.Context, id string) (*models.ImageResult, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.Err; err != nil {
		return nil, err
	}
	img, ok := r.s.images[id]
	if !ok {
		return nil, nil
	}
	img = r.withCategory(img)
	return &img, nil
}

func (r imageRepo) sorted(limit int, keep func(models.ImageResult) bool, less func(a, b models.ImageResult) bool) ([]models.ImageResult, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.Err; err != nil {
		return nil, err
	}
	out := []models.ImageResult{}
	for _, img := range r.s.images {
		if keep(img) {
			out = append(out, r.withCategory(img))
		}
	}
	sort.Slice(out, func(i, j int) bool { return less(out[i], out[j]) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r imageRepo) List(_ context.Context, limit int, categoryID string) ([]models.ImageResult, error) {
	return r.sorted(limit,
		func(img models.ImageResult) bool { return categoryID == "" || img.CategoryID == categoryID },
		func(a, b models.ImageResult) bool { return a.ResultDate.After(b.ResultDate) })
}

func (r imageRepo) RecentUploads(_ context.Context, limit int) ([]models.ImageResult, error) {
	return r.sorted(limit,
		func(models.ImageResult) bool { return true },
		func(a, b models.ImageResult) bool { return a.CreatedAt.After(b.CreatedAt) })
}

func (r imageRepo) Count(_ context.Context) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.Err; err != nil {
		return 0, err
	}
	return len(r.s.images), nil
}

type contactRepo struct{ s *Store }

func (r contactRepo) Create(_ context.Context, name, email, message string) (*models.ContactSubmission, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.Err; err != nil {
		return nil, err
	}
	m := models.ContactSubmission{
		ID: uuid.NewString(), Name: name, Email: email, Message: message,
		Status: models.MessageStatusUnread, CreatedAt: time.Now().UTC(),
	}
	r.s.contacts[m.ID] = m
	return &m, nil
}

func (r contactRepo) List(_ context.Context) ([]models.ContactSubmission, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.Err; err != nil {
		return nil, err
	}
	out := make([]models.ContactSubmission, 0, len(r.s.contacts))
	for _, m := range r.s.contacts {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r contactRepo) MarkRead(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.Err; err != nil {
		return err
	}
	if m, ok := r.s.contacts[id]; ok {
		m.Status = models.MessageStatusRead
		r.s.contacts[id] = m
	}
	return nil
}

func (r contactRepo) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.Err; err != nil {
		return err
	}
	delete(r.s.contacts, id)
	return nil
}

func (r contactRepo) CountUnread(_ context.Context) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.Err; err != nil {
		return 0, err
	}
	n := 0
	for _, m := range r.s.contacts {
		if strings.EqualFold(m.Status, models.MessageStatusUnread) {
			n++
		}
	}
	return n, nil
}

type settingRepo struct{ s *Store }

func (r settingRepo) Get(_ context.Context, key string) (string, bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.Err; err != nil {
		return "", false, err
	}
	v, ok := r.s.settings[key]
	return v, ok, nil
}

func (r settingRepo) Set(_ context.Context, key, value string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.Err; err != nil {
		return err
	}
	r.s.settings[key] = value
	return nil
}
