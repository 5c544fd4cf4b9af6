package model

import "time"

type Review struct {
	ID          uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	TaskID      uint64    `gorm:"column:task_id;uniqueIndex;not null" json:"task_id"`
	ProviderID  uint64    `gorm:"column:provider_id;index;not null" json:"provider_id"`
	RequesterID uint64    `gorm:"column:requester_id;index;not null" json:"requester_id"`
	Rating      int       `gorm:"not null" json:"rating"`
	ReviewText  *string   `gorm:"column:review_text;type:text" json:"review_text"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (Review) TableName() string {
	return "reviews"
}
