package model

import "time"

// Conversation pairs a task's requester with one provider. At most one
// conversation exists per (task, requester, provider) triple.
type Conversation struct {
	ID          uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	TaskID      uint64    `gorm:"column:task_id;index:idx_task_pair,unique" json:"task_id"`
	RequesterID uint64    `gorm:"column:requester_id;index:idx_task_pair,unique" json:"requester_id"`
	ProviderID  uint64    `gorm:"column:provider_id;index:idx_task_pair,unique" json:"provider_id"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Conversation) TableName() string {
	return "conversations"
}

// HasParticipant reports whether the given user is one of the two parties.
func (c Conversation) HasParticipant(userID uint64) bool {
	return c.RequesterID == userID || c.ProviderID == userID
}

// OtherParticipant returns the counterpart of the given participant.
func (c Conversation) OtherParticipant(userID uint64) uint64 {
	if c.RequesterID == userID {
		return c.ProviderID
	}
	return c.RequesterID
}
