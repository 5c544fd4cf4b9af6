package model

import "time"

type AvailabilitySlot struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	TaskID    uint64    `gorm:"column:task_id;index;not null" json:"task_id"`
	StartTime time.Time `gorm:"column:start_time;not null" json:"start_time"`
	EndTime   time.Time `gorm:"column:end_time;not null" json:"end_time"`
}

func (AvailabilitySlot) TableName() string {
	return "task_availability_slots"
}
