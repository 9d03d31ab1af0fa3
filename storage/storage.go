// Package storage lưu file tĩnh (logo thương hiệu của form) lên object storage.
package storage

import (
	"context"
	"io"
)

// BlobStorage là phần tối thiểu ứng dụng cần từ object storage.
type BlobStorage interface {
	Upload(ctx context.Context, path string, r io.Reader, size int64, contentType string) (string, error)
	Delete(ctx context.Context, path string) error
	PublicURL(path string) string
}
