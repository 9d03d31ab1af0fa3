package models

import (
	"time"

	"github.com/vnkhanh/form-server/utils"
	"gorm.io/datatypes"
)

const (
	FormStatusDraft     = "draft"
	FormStatusPublished = "published"
)

type Form struct {
	ID          string                                        `gorm:"column:id;primaryKey;size:36" json:"id"`
	UserID      string                                        `gorm:"column:user_id;size:36;index;not null" json:"user_id"`
	Title       string                                        `gorm:"column:title;size:255;not null" json:"title"`
	Description string                                        `gorm:"column:description;type:text" json:"description"`
	Slug        string                                        `gorm:"column:slug;size:120;uniqueIndex;not null" json:"slug"`
	Status      string                                        `gorm:"column:status;size:20;not null;default:'draft'" json:"status"`
	Settings    datatypes.JSONType[utils.PresentationSettings] `gorm:"column:settings" json:"settings"`
	PublishedAt *time.Time                                    `gorm:"column:published_at" json:"published_at"`
	CreatedAt   time.Time                                     `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time                                     `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`

	User      *User      `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Sections  []Section  `gorm:"foreignKey:FormID;constraint:OnDelete:CASCADE" json:"-"`
	Questions []Question `gorm:"foreignKey:FormID;constraint:OnDelete:CASCADE" json:"-"`
	Responses []Response `gorm:"foreignKey:FormID;constraint:OnDelete:CASCADE" json:"-"`
}

func (Form) TableName() string {
	return "forms"
}

func (f *Form) IsPublished() bool {
	return f.Status == FormStatusPublished
}
