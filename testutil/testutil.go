// Package testutil dựng môi trường test: sqlite trong bộ nhớ, router đầy đủ và seeders.
package testutil

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/vnkhanh/form-server/config"
	"github.com/vnkhanh/form-server/live"
	"github.com/vnkhanh/form-server/middleware"
	"github.com/vnkhanh/form-server/models"
	"github.com/vnkhanh/form-server/routes"
	"github.com/vnkhanh/form-server/session"
	"github.com/vnkhanh/form-server/utils"
)

const (
	JWTSecret     = "form-server-test-secret"
	PublicBaseURL = "http://forms.test"
)

// SetupTestDB mở sqlite trong bộ nhớ, migrate và gán các biến toàn cục của config.
// Mỗi test có một database riêng.
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?_foreign_keys=on"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("Failed to open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("Failed to get sql.DB: %v", err)
	}
	// một kết nối duy nhất giữ database trong bộ nhớ sống suốt test
	sqlDB.SetMaxOpenConns(1)

	if err := config.Migrate(db); err != nil {
		t.Fatalf("Failed to migrate test tables: %v", err)
	}

	cfg := config.Default()
	cfg.Auth.JWTSecret = JWTSecret
	cfg.Auth.SessionTTL = time.Hour
	cfg.Server.PublicBaseURL = PublicBaseURL

	prevDB, prevCfg, prevBlob, prevSessions, prevLive := config.DB, config.Cfg, config.Blob, config.Sessions, config.Live
	config.DB = db
	config.Cfg = cfg
	config.Blob = NewFakeBlobStorage()
	config.Sessions = session.NewMemoryStore()
	config.Live = live.NewHub()
	zap.ReplaceGlobals(zap.NewNop())

	t.Cleanup(func() {
		sqlDB.Close()
		config.DB, config.Cfg, config.Blob, config.Sessions, config.Live = prevDB, prevCfg, prevBlob, prevSessions, prevLive
	})
	return db
}

// SetupRouter tạo router test với toàn bộ route của ứng dụng.
func SetupRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(middleware.RequestID())
	r.Use(gin.Recovery())

	limiters := middleware.NewLimiters(1000, 1000)
	t.Cleanup(limiters.Stop)
	routes.SetupRoutes(r, limiters)
	return r
}

// DoRequest gửi request JSON tới router; token rỗng thì không gắn Authorization.
func DoRequest(r *gin.Engine, method, path string, body interface{}, token string) *httptest.ResponseRecorder {
	var reqBody io.Reader = http.NoBody
	if body != nil {
		switch b := body.(type) {
		case string:
			reqBody = strings.NewReader(b)
		default:
			jsonBytes, _ := json.Marshal(body)
			reqBody = bytes.NewReader(jsonBytes)
		}
	}

	req := httptest.NewRequest(method, path, reqBody)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// ParseResponse parse body JSON thành map.
func ParseResponse(w *httptest.ResponseRecorder) map[string]interface{} {
	var result map[string]interface{}
	json.Unmarshal(w.Body.Bytes(), &result)
	return result
}

// TokenFor tạo session token hợp lệ cho user.
func TokenFor(t *testing.T, userID string) string {
	t.Helper()
	token, _, err := utils.GenerateToken(JWTSecret, userID, time.Hour)
	if err != nil {
		t.Fatalf("Failed to sign token: %v", err)
	}
	return token
}

// SeedUser tạo user đã xác nhận email với mật khẩu cho trước.
func SeedUser(t *testing.T, db *gorm.DB, email, password string) *models.User {
	t.Helper()
	hash, err := utils.HashPassword(password)
	if err != nil {
		t.Fatalf("Failed to hash password: %v", err)
	}
	u := &models.User{
		Email:         email,
		Name:          "Test User",
		PasswordHash:  hash,
		EmailVerified: true,
	}
	if err := db.Create(u).Error; err != nil {
		t.Fatalf("Failed to seed test user: %v", err)
	}
	return u
}

// SeedForm tạo form thuộc userID với trạng thái status.
func SeedForm(t *testing.T, db *gorm.DB, userID, title, slug, status string) *models.Form {
	t.Helper()
	f := &models.Form{
		UserID:   userID,
		Title:    title,
		Slug:     slug,
		Status:   status,
		Settings: datatypes.NewJSONType(utils.DefaultSettings()),
	}
	if status == models.FormStatusPublished {
		now := time.Now().UTC()
		f.PublishedAt = &now
	}
	if err := db.Create(f).Error; err != nil {
		t.Fatalf("Failed to seed test form: %v", err)
	}
	return f
}

// SeedQuestion tạo câu hỏi; options chỉ được lưu với câu hỏi chọn đáp án.
func SeedQuestion(t *testing.T, db *gorm.DB, formID, qType, text string, order int, options ...string) *models.Question {
	t.Helper()
	q := &models.Question{
		FormID: formID,
		Type:   qType,
		Text:   text,
		Order:  order,
	}
	if models.IsChoice(qType) {
		raw, _ := json.Marshal(options)
		s := string(raw)
		q.Options = &s
	}
	if err := db.Create(q).Error; err != nil {
		t.Fatalf("Failed to seed test question: %v", err)
	}
	return q
}

// SeedResponse ghi một phản hồi với thời điểm tạo cố định; answers là questionID → value.
func SeedResponse(t *testing.T, db *gorm.DB, formID, source string, at time.Time, answers map[string]string) *models.Response {
	t.Helper()
	resp := &models.Response{FormID: formID, Source: source, CreatedAt: at.UTC()}
	if err := db.Create(resp).Error; err != nil {
		t.Fatalf("Failed to seed test response: %v", err)
	}
	for qid, v := range answers {
		a := &models.Answer{ResponseID: resp.ID, QuestionID: qid, Value: v}
		if err := db.Create(a).Error; err != nil {
			t.Fatalf("Failed to seed test answer: %v", err)
		}
	}
	return resp
}

// FakeBlobStorage giữ object trong bộ nhớ.
type FakeBlobStorage struct {
	mu      sync.Mutex
	Objects map[string][]byte
	Deleted []string
}

func NewFakeBlobStorage() *FakeBlobStorage {
	return &FakeBlobStorage{Objects: make(map[string][]byte)}
}

func (f *FakeBlobStorage) Upload(_ context.Context, path string, r io.Reader, _ int64, _ string) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Objects[path] = data
	return f.PublicURL(path), nil
}

func (f *FakeBlobStorage) Delete(_ context.Context, path string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.Objects, path)
	f.Deleted = append(f.Deleted, path)
	return nil
}

func (f *FakeBlobStorage) PublicURL(path string) string {
	return "https://blob.test/" + path
}

// Blob trả về fake storage đang gắn vào config.
func Blob(t *testing.T) *FakeBlobStorage {
	t.Helper()
	b, ok := config.Blob.(*FakeBlobStorage)
	if !ok {
		t.Fatalf("config.Blob is not a FakeBlobStorage")
	}
	return b
}
