package model

import "time"

type TaskStatus string

const (
	TaskStatusOpen      TaskStatus = "open"
	TaskStatusAssigned  TaskStatus = "assigned"
	TaskStatusCompleted TaskStatus = "completed"
	TaskStatusCancelled TaskStatus = "cancelled"
)

type Task struct {
	ID                 uint64     `gorm:"primaryKey;autoIncrement" json:"id"`
	RequesterID        uint64     `gorm:"column:requester_id;index;not null" json:"requester_id"`
	Title              string     `gorm:"size:255;not null" json:"title"`
	Description        string     `gorm:"type:text;not null" json:"description"`
	Category           string     `gorm:"size:64;index;not null" json:"category"`
	Location           string     `gorm:"size:255;not null" json:"location"`
	LocationLat        *float64   `gorm:"column:location_lat" json:"location_lat"`
	LocationLng        *float64   `gorm:"column:location_lng" json:"location_lng"`
	SuggestedPrice     *float64   `gorm:"column:suggested_price" json:"suggested_price"`
	Status             TaskStatus `gorm:"size:32;index;not null;default:open" json:"status"`
	AssignedProviderID *uint64    `gorm:"column:assigned_provider_id;index" json:"assigned_provider_id"`
	ScheduledTime      *time.Time `gorm:"column:scheduled_time" json:"scheduled_time"`
	CreatedAt          time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt          time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Task) TableName() string {
	return "tasks"
}
