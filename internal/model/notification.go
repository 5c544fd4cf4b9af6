package model

import "time"

const (
	NotificationTypeApplicationReceived = "application_received"
	NotificationTypeApplicationAccepted = "application_accepted"
	NotificationTypeApplicationRejected = "application_rejected"
	NotificationTypeNewMessage          = "new_message"
)

type Notification struct {
	ID            uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID        uint64    `gorm:"column:user_id;index;not null" json:"user_id"`
	Type          string    `gorm:"size:64;not null" json:"type"`
	Message       string    `gorm:"type:text;not null" json:"message"`
	RelatedTaskID *uint64   `gorm:"column:related_task_id;index" json:"related_task_id"`
	Read          bool      `gorm:"column:is_read;not null;default:false" json:"read"`
	CreatedAt     time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (Notification) TableName() string {
	return "notifications"
}
