package config

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/vnkhanh/form-server/live"
	"github.com/vnkhanh/form-server/session"
	"github.com/vnkhanh/form-server/storage"
)

// Các dịch vụ dùng chung cho controllers/middleware, main gán khi khởi động.
var (
	Blob     storage.BlobStorage
	Sessions session.Store = session.NewMemoryStore()
	Live                   = live.NewHub()
	Redis    *redis.Client
)

// NewBlobStorage chọn driver lưu file theo cấu hình; driver rỗng → nil (tắt upload).
func NewBlobStorage(ctx context.Context, cfg StorageConfig) (storage.BlobStorage, error) {
	switch cfg.Driver {
	case "":
		return nil, nil
	case "supabase":
		if cfg.SupabaseURL == "" || cfg.SupabaseKey == "" {
			return nil, fmt.Errorf("supabase storage requires SUPABASE_URL and SUPABASE_KEY")
		}
		return storage.NewSupabase(cfg.SupabaseURL, cfg.SupabaseKey, cfg.Bucket), nil
	case "minio":
		m, err := storage.NewMinio(ctx, storage.MinioOptions{
			Endpoint:  cfg.MinioEndpoint,
			AccessKey: cfg.MinioAccessKey,
			SecretKey: cfg.MinioSecretKey,
			Bucket:    cfg.Bucket,
			UseSSL:    cfg.MinioUseSSL,
		})
		if err != nil {
			return nil, err
		}
		return m, nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}

// NewSessionStore dùng redis khi có REDIS_ADDR, ngược lại giữ danh sách thu hồi trong bộ nhớ.
func NewSessionStore(ctx context.Context, cfg RedisConfig) (session.Store, *redis.Client, error) {
	if cfg.Addr == "" {
		return session.NewMemoryStore(), nil, nil
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, nil, fmt.Errorf("redis ping: %w", err)
	}
	return session.NewRedisStore(rdb), rdb, nil
}
