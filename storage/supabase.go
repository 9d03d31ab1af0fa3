package storage

import (
	"context"
	"fmt"
	"io"
	"strings"

	supa "github.com/supabase-community/storage-go"
)

type Supabase struct {
	client *supa.Client
	bucket string
}

func NewSupabase(supabaseURL, key, bucket string) *Supabase {
	return &Supabase{
		client: supa.NewClient(strings.TrimRight(supabaseURL, "/")+"/storage/v1", key, nil),
		bucket: bucket,
	}
}

// Upload ghi đè (upsert) object tại path rồi trả về public URL.
func (s *Supabase) Upload(_ context.Context, path string, r io.Reader, _ int64, contentType string) (string, error) {
	upsert := true
	options := supa.FileOptions{
		ContentType: &contentType,
		Upsert:      &upsert,
	}
	if _, err := s.client.UploadFile(s.bucket, path, r, options); err != nil {
		return "", fmt.Errorf("supabase upload %s: %w", path, err)
	}
	return s.PublicURL(path), nil
}

func (s *Supabase) Delete(_ context.Context, path string) error {
	if _, err := s.client.RemoveFile(s.bucket, []string{path}); err != nil {
		return fmt.Errorf("supabase remove %s: %w", path, err)
	}
	return nil
}

func (s *Supabase) PublicURL(path string) string {
	return s.client.GetPublicUrl(s.bucket, path).SignedURL
}
