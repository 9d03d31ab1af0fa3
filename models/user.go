package models

import "time"

type User struct {
	ID              string     `gorm:"column:id;primaryKey;size:36" json:"id"`
	Email           string     `gorm:"column:email;size:255;uniqueIndex;not null" json:"email"`
	Name            string     `gorm:"column:name;size:100" json:"name"`
	PasswordHash    string     `gorm:"column:password_hash;size:255" json:"-"`
	GoogleSub       *string    `gorm:"column:google_sub;size:255;uniqueIndex" json:"-"`
	EmailVerified   bool       `gorm:"column:email_verified;not null;default:false" json:"email_verified"`
	VerifyTokenHash string     `gorm:"column:verify_token_hash;type:text" json:"-"`
	VerifyExpiresAt *time.Time `gorm:"column:verify_expires_at" json:"-"`
	CreatedAt       time.Time  `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (User) TableName() string {
	return "users"
}
