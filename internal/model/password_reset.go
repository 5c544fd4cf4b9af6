package model

import "time"

type PasswordReset struct {
	UserID    uint64    `gorm:"column:user_id;primaryKey"`
	Token     string    `gorm:"size:128;uniqueIndex;not null"`
	ExpiresAt time.Time `gorm:"column:expires_at;not null"`
}

func (PasswordReset) TableName() string {
	return "password_resets"
}
