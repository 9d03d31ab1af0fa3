package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/vnkhanh/form-server/models"
	"gorm.io/gorm"
)

var ErrEmailTaken = errors.New("email đã tồn tại")

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (r *UserRepository) Create(ctx context.Context, u *models.User) error {
	u.Email = normalizeEmail(u.Email)
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.User{}).Where("email = ?", u.Email).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return ErrEmailTaken
	}
	err := r.db.WithContext(ctx).Create(u).Error
	if isDuplicateKey(err) {
		return ErrEmailTaken
	}
	return err
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (*models.User, error) {
	var u models.User
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&u).Error; err != nil {
		return nil, notFound(err)
	}
	return &u, nil
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	if err := r.db.WithContext(ctx).Where("email = ?", normalizeEmail(email)).First(&u).Error; err != nil {
		return nil, notFound(err)
	}
	return &u, nil
}

func (r *UserRepository) FindByGoogleSub(ctx context.Context, sub string) (*models.User, error) {
	var u models.User
	if err := r.db.WithContext(ctx).Where("google_sub = ?", sub).First(&u).Error; err != nil {
		return nil, notFound(err)
	}
	return &u, nil
}

// MarkVerified xác nhận email và xoá token một lần.
func (r *UserRepository) MarkVerified(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Updates(map[string]interface{}{
		"email_verified":    true,
		"verify_token_hash": "",
		"verify_expires_at": nil,
	}).Error
}

// LinkGoogle gắn tài khoản Google vào user và coi như email đã xác nhận.
func (r *UserRepository) LinkGoogle(ctx context.Context, id, sub string) error {
	return r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Updates(map[string]interface{}{
		"google_sub":     sub,
		"email_verified": true,
	}).Error
}
