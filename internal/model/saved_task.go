package model

import "time"

type SavedTask struct {
	UserID    uint64    `gorm:"column:user_id;primaryKey" json:"user_id"`
	TaskID    uint64    `gorm:"column:task_id;primaryKey" json:"task_id"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (SavedTask) TableName() string {
	return "saved_tasks"
}
