package model

import "time"

type UserType string

const (
	UserTypeRequester UserType = "requester"
	UserTypeProvider  UserType = "provider"
)

type User struct {
	ID                uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	Email             string    `gorm:"size:255;uniqueIndex;not null" json:"email"`
	PasswordHash      string    `gorm:"column:password_hash;size:255;not null" json:"-"`
	UserType          UserType  `gorm:"column:user_type;size:32;not null" json:"user_type"`
	Name              string    `gorm:"size:120;not null" json:"name"`
	ProfilePhoto      *string   `gorm:"column:profile_photo;size:512" json:"profile_photo"`
	Bio               *string   `gorm:"type:text" json:"bio"`
	ServiceAreaCenter *string   `gorm:"column:service_area_center;size:255" json:"service_area_center"`
	ServiceAreaRadius *int      `gorm:"column:service_area_radius" json:"service_area_radius"`
	CreatedAt         time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (User) TableName() string {
	return "users"
}
