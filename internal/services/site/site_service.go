package site

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/nepal-lottery/lottery-backend/internal/apperrors"
	"github.com/nepal-lottery/lottery-backend/internal/config"
	"github.com/nepal-lottery/lottery-backend/internal/database"
	"github.com/nepal-lottery/lottery-backend/internal/models"
	"github.com/nepal-lottery/lottery-backend/internal/services/ledger"
	"github.com/nepal-lottery/lottery-backend/internal/validation"
)

const (
	homeRecentImages      = 4
	dashboardRecentImages = 5
)

// Service covers the small admin-managed parts of the site: categories,
// contact messages, the live stream link and the summary pages.
type Service struct {
	categories database.CategoryRepository
	images     database.ImageResultRepository
	contacts   database.ContactRepository
	settings   database.SettingRepository
	ledger     *ledger.Ledger
}

// NewService wires the repositories together.
func NewService(
	categories database.CategoryRepository,
	images database.ImageResultRepository,
	contacts database.ContactRepository,
	settings database.SettingRepository,
	l *ledger.Ledger,
) *Service {
	return &Service{categories: categories, images: images, contacts: contacts, settings: settings, ledger: l}
}

func storageError(fn, msg string, data any, err error) error {
	config.LogError("site", fn, msg, data, err)
	return &apperrors.StorageError{Message: msg, Err: err}
}

func parseID(id, what string) error {
	if _, err := uuid.Parse(id); err != nil {
		return &apperrors.NotFoundError{What: what}
	}
	return nil
}

// ListCategories returns every category, newest first.
func (s *Service) ListCategories(ctx context.Context) ([]models.Category, error) {
	list, err := s.categories.List(ctx)
	if err != nil {
		return nil, storageError("ListCategories", "Failed to load categories", nil, err)
	}
	return list, nil
}

func (s *Service) CreateCategory(ctx context.Context, req models.CategoryRequest) (*models.Category, error) {
	req.Name = strings.TrimSpace(req.Name)
	if err := validation.Struct(&req); err != nil {
		return nil, err
	}
	cat, err := s.categories.Create(ctx, req.Name)
	if err != nil {
		return nil, storageError("CreateCategory", "Failed to create category", req.Name, err)
	}
	config.GetLogger().WithField("category", cat.Name).Info("category created")
	return cat, nil
}

func (s *Service) UpdateCategory(ctx context.Context, id string, req models.CategoryRequest) error {
	if err := parseID(id, "Category"); err != nil {
		return err
	}
	req.Name = strings.TrimSpace(req.Name)
	if err := validation.Struct(&req); err != nil {
		return err
	}
	ok, err := s.categories.Update(ctx, id, req.Name)
	if err != nil {
		return storageError("UpdateCategory", "Failed to update category", id, err)
	}
	if !ok {
		return &apperrors.NotFoundError{What: "Category"}
	}
	return nil
}

// DeleteCategory also removes the category's image results.
func (s *Service) DeleteCategory(ctx context.Context, id string) error {
	if err := parseID(id, "Category"); err != nil {
		return err
	}
	if err := s.categories.Delete(ctx, id); err != nil {
		return storageError("DeleteCategory", "Failed to delete category", id, err)
	}
	return nil
}

// SubmitContact stores a message from the public contact form.
func (s *Service) SubmitContact(ctx context.Context, req models.ContactRequest) (*models.ContactSubmission, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)
	req.Message = strings.TrimSpace(req.Message)
	if err := validation.Struct(&req); err != nil {
		return nil, err
	}
	m, err := s.contacts.Create(ctx, req.Name, req.Email, req.Message)
	if err != nil {
		return nil, storageError("SubmitContact", "Failed to send message", req.Email, err)
	}
	return m, nil
}

func (s *Service) ListMessages(ctx context.Context) ([]models.ContactSubmission, error) {
	list, err := s.contacts.List(ctx)
	if err != nil {
		return nil, storageError("ListMessages", "Failed to load messages", nil, err)
	}
	return list, nil
}

func (s *Service) MarkMessageRead(ctx context.Context, id string) error {
	if err := parseID(id, "Message"); err != nil {
		return err
	}
	if err := s.contacts.MarkRead(ctx, id); err != nil {
		return storageError("MarkMessageRead", "Failed to update message", id, err)
	}
	return nil
}

func (s *Service) DeleteMessage(ctx context.Context, id string) error {
	if err := parseID(id, "Message"); err != nil {
		return err
	}
	if err := s.contacts.Delete(ctx, id); err != nil {
		return storageError("DeleteMessage", "Failed to delete message", id, err)
	}
	return nil
}

// YoutubeLink returns the live stream URL. Failures read as "no link".
func (s *Service) YoutubeLink(ctx context.Context) string {
	v, _, err := s.settings.Get(ctx, models.SettingYoutubeLiveURL)
	if err != nil {
		config.LogError("site", "YoutubeLink", "read setting", models.SettingYoutubeLiveURL, err)
		return ""
	}
	return v
}

// UpdateYoutubeLink stores url; an empty url clears the link.
func (s *Service) UpdateYoutubeLink(ctx context.Context, req models.YoutubeLinkRequest) error {
	req.URL = strings.TrimSpace(req.URL)
	if err := validation.Struct(&req); err != nil {
		return err
	}
	if err := s.settings.Set(ctx, models.SettingYoutubeLiveURL, req.URL); err != nil {
		return storageError("UpdateYoutubeLink", "Failed to update link", req.URL, err)
	}
	config.GetLogger().WithField("url", req.URL).Info("youtube link updated")
	return nil
}

// Dashboard gathers the admin landing page numbers concurrently. Any failed
// count fails the whole dashboard.
func (s *Service) Dashboard(ctx context.Context) (*models.DashboardStats, error) {
	var stats models.DashboardStats
	g, gctx := errgroup.WithContext(ctx)

	run := func(name string, fn func(context.Context) error) {
		g.Go(func() error {
			if err := fn(gctx); err != nil {
				return storageError("Dashboard", "Failed to load dashboard", name, err)
			}
			return nil
		})
	}

	run("images", func(ctx context.Context) (err error) {
		stats.ImagesCount, err = s.images.Count(ctx)
		return
	})
	run("unread", func(ctx context.Context) (err error) {
		stats.UnreadCount, err = s.contacts.CountUnread(ctx)
		return
	})
	run("categories", func(ctx context.Context) (err error) {
		stats.CategoriesCount, err = s.categories.Count(ctx)
		return
	})
	run("today", func(ctx context.Context) (err error) {
		stats.TodayDigitEntry, err = s.ledger.RecordForDate(ctx, s.ledger.Today())
		return
	})
	run("recent", func(ctx context.Context) (err error) {
		stats.RecentUploads, err = s.images.RecentUploads(ctx, dashboardRecentImages)
		return
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if stats.RecentUploads == nil {
		stats.RecentUploads = []models.ImageResult{}
	}
	return &stats, nil
}

// Home builds the public landing page summary.
func (s *Service) Home(ctx context.Context) (*models.HomeSummary, error) {
	latest, isToday, err := s.ledger.Latest(ctx)
	if err != nil {
		return nil, err
	}
	recent, err := s.images.List(ctx, homeRecentImages, "")
	if err != nil {
		return nil, storageError("Home", "Failed to load results", nil, err)
	}
	if recent == nil {
		recent = []models.ImageResult{}
	}

	today := s.ledger.Today()
	summary := &models.HomeSummary{
		LatestDigit:  latest,
		IsDigitToday: isToday,
		RecentImages: recent,
		IsImageToday: len(recent) > 0 && recent[0].ResultDate.Format("2006-01-02") == today,
		YoutubeLink:  s.YoutubeLink(ctx),
	}
	config.GetLogger().WithFields(logrus.Fields{
		"digitToday": summary.IsDigitToday, "imageToday": summary.IsImageToday,
	}).Debug("home summary built")
	return summary, nil
}
