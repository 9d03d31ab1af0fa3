// Package repository gói các truy vấn gorm theo từng thao tác nghiệp vụ.
package repository

import (
	"errors"
	"strings"

	"gorm.io/gorm"
)

var (
	ErrNotFound  = errors.New("không tìm thấy bản ghi")
	ErrSlugTaken = errors.New("slug đã được sử dụng")
)

type Repositories struct {
	Users     *UserRepository
	Forms     *FormRepository
	Content   *ContentRepository
	Responses *ResponseRepository
}

func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		Users:     NewUserRepository(db),
		Forms:     NewFormRepository(db),
		Content:   NewContentRepository(db),
		Responses: NewResponseRepository(db),
	}
}

// notFound chuẩn hoá gorm.ErrRecordNotFound thành ErrNotFound.
func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

// isDuplicateKey nhận diện vi phạm unique index. Cần gorm.Config.TranslateError;
// chuỗi lỗi sqlite là đường dự phòng khi driver không dịch được.
func isDuplicateKey(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, gorm.ErrDuplicatedKey) || strings.Contains(err.Error(), "UNIQUE constraint failed")
}
