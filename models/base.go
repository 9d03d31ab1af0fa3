package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// newID gán UUID cho khoá chính dạng chuỗi nếu caller chưa đặt.
func newID(id *string) {
	if *id == "" {
		*id = uuid.NewString()
	}
}

func (u *User) BeforeCreate(*gorm.DB) error     { newID(&u.ID); return nil }
func (f *Form) BeforeCreate(*gorm.DB) error     { newID(&f.ID); return nil }
func (s *Section) BeforeCreate(*gorm.DB) error  { newID(&s.ID); return nil }
func (q *Question) BeforeCreate(*gorm.DB) error { newID(&q.ID); return nil }
func (r *Response) BeforeCreate(*gorm.DB) error { newID(&r.ID); return nil }
func (a *Answer) BeforeCreate(*gorm.DB) error   { newID(&a.ID); return nil }
