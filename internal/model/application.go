package model

import "time"

type ApplicationStatus string

const (
	ApplicationStatusPending   ApplicationStatus = "pending"
	ApplicationStatusAccepted  ApplicationStatus = "accepted"
	ApplicationStatusRejected  ApplicationStatus = "rejected"
	ApplicationStatusWithdrawn ApplicationStatus = "withdrawn"
)

type Application struct {
	ID             uint64            `gorm:"primaryKey;autoIncrement" json:"id"`
	TaskID         uint64            `gorm:"column:task_id;index:idx_task_provider,unique;not null" json:"task_id"`
	ProviderID     uint64            `gorm:"column:provider_id;index:idx_task_provider,unique;not null" json:"provider_id"`
	ProposedPrice  float64           `gorm:"column:proposed_price;not null" json:"proposed_price"`
	SelectedSlotID uint64            `gorm:"column:selected_slot_id;not null" json:"selected_slot_id"`
	Status         ApplicationStatus `gorm:"size:32;not null;default:pending" json:"status"`
	CreatedAt      time.Time         `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time         `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Application) TableName() string {
	return "applications"
}
