package storage

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	storage_go "github.com/supabase-community/storage-go"
)

// ObjectStore is the part of a storage bucket the image service needs.
type ObjectStore interface {
	Upload(ctx context.Context, path string, data []byte, contentType string) error
	Remove(ctx context.Context, paths ...string) error
	// PublicURL is the address the frontend can load path from.
	PublicURL(path string) string
	// PathFromURL reverses PublicURL. ok is false for foreign URLs.
	PathFromURL(url string) (path string, ok bool)
}

// SupabaseStore is an ObjectStore over one Supabase Storage bucket.
type SupabaseStore struct {
	client *storage_go.Client
	bucket string
	prefix string
}

// NewSupabaseStore connects to the storage API of the project at supabaseURL
// using the service role key.
func NewSupabaseStore(supabaseURL, serviceKey, bucket string) *SupabaseStore {
	base := strings.TrimRight(supabaseURL, "/")
	client := storage_go.NewClient(base+"/storage/v1", serviceKey, map[string]string{
		"apikey": serviceKey,
	})
	return &SupabaseStore{
		client: client,
		bucket: bucket,
		prefix: fmt.Sprintf("%s/storage/v1/object/public/%s/", base, bucket),
	}
}

func (s *SupabaseStore) Upload(_ context.Context, path string, data []byte, contentType string) error {
	cacheControl := "3600"
	upsert := false
	_, err := s.client.UploadFile(s.bucket, path, bytes.NewReader(data), storage_go.FileOptions{
		CacheControl: &cacheControl,
		ContentType:  &contentType,
		Upsert:       &upsert,
	})
	if err != nil {
		return fmt.Errorf("failed to upload %s to bucket %s: %w", path, s.bucket, err)
	}
	return nil
}

func (s *SupabaseStore) Remove(_ context.Context, paths ...string) error {
	if len(paths) == 0 {
		return nil
	}
	if _, err := s.client.RemoveFile(s.bucket, paths); err != nil {
		return fmt.Errorf("failed to remove %v from bucket %s: %w", paths, s.bucket, err)
	}
	return nil
}

func (s *SupabaseStore) PublicURL(path string) string {
	return s.client.GetPublicUrl(s.bucket, path).SignedURL
}

func (s *SupabaseStore) PathFromURL(url string) (string, bool) {
	return trimPublicPrefix(s.prefix, url)
}

func trimPublicPrefix(prefix, url string) (string, bool) {
	if url == "" || !strings.HasPrefix(url, prefix) {
		return "", false
	}
	p := strings.TrimPrefix(url, prefix)
	if i := strings.IndexByte(p, '?'); i >= 0 {
		p = p[:i]
	}
	return p, p != ""
}
