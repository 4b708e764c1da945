package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/disintegration/imaging"
	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	_ "golang.org/x/image/webp" // registers the WebP decoder used by imaging.Decode

	"github.com/nepal-lottery/lottery-backend/internal/config"
)

const (
	MaxImageBytes  = 5 << 20
	ThumbnailWidth = 400
)

var (
	ErrImageTooLarge    = errors.New("Image must be 5MB or smaller")
	ErrUnsupportedImage = errors.New("Image must be a JPEG, PNG, WebP or GIF")
	ErrEmptyImage       = errors.New("Image is required")
)

var extensions = map[string]string{
	"image/jpeg": "jpg",
	"image/png":  "png",
	"image/webp": "webp",
	"image/gif":  "gif",
}

// StoredImage describes the objects written for one upload.
type StoredImage struct {
	Path          string
	URL           string
	ThumbnailPath string
	ThumbnailURL  string
}

// ImageService validates result images and writes them, with a thumbnail,
// to an ObjectStore.
type ImageService struct {
	store ObjectStore
	now   func() time.Time
}

// NewImageService creates an ImageService over store.
func NewImageService(store ObjectStore) *ImageService {
	return &ImageService{store: store, now: time.Now}
}

// IsUserError reports whether err describes a bad upload rather than a
// storage failure.
func IsUserError(err error) bool {
	return errors.Is(err, ErrImageTooLarge) || errors.Is(err, ErrUnsupportedImage) || errors.Is(err, ErrEmptyImage)
}

// Save reads at most MaxImageBytes from r, checks the content type by
// sniffing and uploads it as <unix-millis>-<short-uuid>.<ext>. A thumbnail is written under
// thumbs/ when the image can be decoded; failing to build one is not fatal.
func (s *ImageService) Save(ctx context.Context, r io.Reader) (*StoredImage, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxImageBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read image: %w", err)
	}
	if len(data) == 0 {
		return nil, ErrEmptyImage
	}
	if len(data) > MaxImageBytes {
		return nil, ErrImageTooLarge
	}

	mime := mimetype.Detect(data)
	ext, ok := extensions[mime.String()]
	if !ok {
		return nil, ErrUnsupportedImage
	}

	name := objectName(s.now())
	out := &StoredImage{Path: name + "." + ext}
	if err := s.store.Upload(ctx, out.Path, data, mime.String()); err != nil {
		return nil, err
	}
	out.URL = s.store.PublicURL(out.Path)

	thumb, err := Thumbnail(data, ThumbnailWidth)
	if err != nil {
		config.GetLogger().WithFields(logrus.Fields{
			"path": out.Path, "mime": mime.String(),
		}).Warnf("skipping thumbnail: %v", err)
		return out, nil
	}
	thumbPath := "thumbs/" + name + ".jpg"
	if err := s.store.Upload(ctx, thumbPath, thumb, "image/jpeg"); err != nil {
		config.LogError("storage", "Save", "upload thumbnail", thumbPath, err)
		return out, nil
	}
	out.ThumbnailPath = thumbPath
	out.ThumbnailURL = s.store.PublicURL(thumbPath)
	return out, nil
}

// objectName is unique even for uploads in the same millisecond; the bucket
// refuses to overwrite.
func objectName(t time.Time) string {
	return fmt.Sprintf("%d-%s", t.UnixMilli(), uuid.NewString()[:8])
}

// Remove deletes the objects behind the given public URLs. URLs that do not
// belong to the store are ignored.
func (s *ImageService) Remove(ctx context.Context, urls ...string) error {
	var paths []string
	for _, u := range urls {
		if p, ok := s.store.PathFromURL(u); ok {
			paths = append(paths, p)
		}
	}
	return s.store.Remove(ctx, paths...)
}

// Thumbnail scales data down to width pixels wide, keeping the aspect ratio,
// and encodes it as JPEG. Narrower images keep their size.
func Thumbnail(data []byte, width int) ([]byte, error) {
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	if img.Bounds().Dx() > width {
		img = imaging.Resize(img, width, 0, imaging.Lanczos)
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(80)); err != nil {
		return nil, fmt.Errorf("failed to encode thumbnail: %w", err)
	}
	return buf.Bytes(), nil
}
