package model

import "time"

type TaskImage struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	TaskID    uint64    `gorm:"column:task_id;index;not null" json:"task_id"`
	ImageURL  string    `gorm:"column:image_url;size:512;not null" json:"image_url"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (TaskImage) TableName() string {
	return "task_images"
}
