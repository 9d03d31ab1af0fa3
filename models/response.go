package models

import "time"

const (
	SourceQR  = "qr"
	SourceWeb = "web"
)

// Response là một lần gửi form; không bao giờ bị sửa sau khi tạo.
type Response struct {
	ID        string    `gorm:"column:id;primaryKey;size:36" json:"id"`
	FormID    string    `gorm:"column:form_id;size:36;index;not null" json:"form_id"`
	Source    string    `gorm:"column:source;size:10;not null;default:'web'" json:"source"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime;index" json:"created_at"`

	Answers []Answer `gorm:"foreignKey:ResponseID;constraint:OnDelete:CASCADE" json:"-"`
}

func (Response) TableName() string {
	return "form_responses"
}

func ValidSource(s string) bool {
	return s == SourceQR || s == SourceWeb
}
