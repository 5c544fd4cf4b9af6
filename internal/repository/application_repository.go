package repository

import (
	"context"
	"time"

	"github.com/fixlater/fixlater-backend/internal/model"
	"gorm.io/gorm"
)

// ApplicationDetail joins an application with task and counterpart fields
// for list views.
type ApplicationDetail struct {
	model.Application
	TaskTitle     string           `json:"task_title"`
	TaskStatus    model.TaskStatus `json:"task_status"`
	StartTime     time.Time        `json:"start_time"`
	EndTime       time.Time        `json:"end_time"`
	RequesterName string           `json:"requester_name,omitempty"`
	ProviderName  string           `json:"provider_name,omitempty"`
	ProviderPhoto *string          `json:"provider_photo,omitempty"`
}

type ApplicationRepository interface {
	Create(ctx context.Context, a *model.Application) error
	FindByID(ctx context.Context, id uint64) (*model.Application, error)
	FindByTaskProvider(ctx context.Context, taskID, providerID uint64) (*model.Application, error)
	Exists(ctx context.Context, taskID, providerID uint64) (bool, error)
	ListByProvider(ctx context.Context, providerID uint64) ([]ApplicationDetail, error)
	ListByRequester(ctx context.Context, requesterID uint64) ([]ApplicationDetail, error)
	ListByTask(ctx context.Context, taskID uint64) ([]ApplicationDetail, error)
	UpdateStatus(ctx context.Context, id uint64, status model.ApplicationStatus) error
	RejectOthers(ctx context.Context, taskID, acceptedID uint64) error
}

type applicationRepository struct {
	db *gorm.DB
}

func NewApplicationRepository(db *gorm.DB) ApplicationRepository {
	return &applicationRepository{db: db}
}

func (r *applicationRepository) Create(ctx context.Context, a *model.Application) error {
	return r.db.WithContext(ctx).Create(a).Error
}

func (r *applicationRepository) FindByID(ctx context.Context, id uint64) (*model.Application, error) {
	var a model.Application
	if err := r.db.WithContext(ctx).First(&a, id).Error; err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *applicationRepository) FindByTaskProvider(ctx context.Context, taskID, providerID uint64) (*model.Application, error) {
	var a model.Application
	if err := r.db.WithContext(ctx).
		Where("task_id = ? AND provider_id = ?", taskID, providerID).
		First(&a).Error; err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *applicationRepository) Exists(ctx context.Context, taskID, providerID uint64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Application{}).
		Where("task_id = ? AND provider_id = ?", taskID, providerID).
		Count(&count).Error
	return count > 0, err
}

func (r *applicationRepository) ListByProvider(ctx context.Context, providerID uint64) ([]ApplicationDetail, error) {
	var list []ApplicationDetail
	err := r.db.WithContext(ctx).Model(&model.Application{}).
		Select(`applications.*, tasks.title AS task_title, tasks.status AS task_status,
			task_availability_slots.start_time, task_availability_slots.end_time,
			users.name AS requester_name`).
		Joins("JOIN tasks ON tasks.id = applications.task_id").
		Joins("JOIN task_availability_slots ON task_availability_slots.id = applications.selected_slot_id").
		Joins("JOIN users ON users.id = tasks.requester_id").
		Where("applications.provider_id = ?", providerID).
		Order("applications.created_at DESC").
		Find(&list).Error
	return list, err
}

func (r *applicationRepository) ListByRequester(ctx context.Context, requesterID uint64) ([]ApplicationDetail, error) {
	var list []ApplicationDetail
	err := r.db.WithContext(ctx).Model(&model.Application{}).
		Select(`applications.*, tasks.title AS task_title, tasks.status AS task_status,
			task_availability_slots.start_time, task_availability_slots.end_time,
			users.name AS provider_name, users.profile_photo AS provider_photo`).
		Joins("JOIN tasks ON tasks.id = applications.task_id").
		Joins("JOIN task_availability_slots ON task_availability_slots.id = applications.selected_slot_id").
		Joins("JOIN users ON users.id = applications.provider_id").
		Where("tasks.requester_id = ?", requesterID).
		Order("applications.created_at DESC").
		Find(&list).Error
	return list, err
}

func (r *applicationRepository) ListByTask(ctx context.Context, taskID uint64) ([]ApplicationDetail, error) {
	var list []ApplicationDetail
	err := r.db.WithContext(ctx).Model(&model.Application{}).
		Select(`applications.*, task_availability_slots.start_time, task_availability_slots.end_time,
			users.name AS provider_name, users.profile_photo AS provider_photo`).
		Joins("JOIN task_availability_slots ON task_availability_slots.id = applications.selected_slot_id").
		Joins("JOIN users ON users.id = applications.provider_id").
		Where("applications.task_id = ?", taskID).
		Order("applications.created_at DESC").
		Find(&list).Error
	return list, err
}

func (r *applicationRepository) UpdateStatus(ctx context.Context, id uint64, status model.ApplicationStatus) error {
	return r.db.WithContext(ctx).Model(&model.Application{}).
		Where("id = ?", id).
		Update("status", status).Error
}

func (r *applicationRepository) RejectOthers(ctx context.Context, taskID, acceptedID uint64) error {
	return r.db.WithContext(ctx).Model(&model.Application{}).
		Where("task_id = ? AND id != ?", taskID, acceptedID).
		Update("status", model.ApplicationStatusRejected).Error
}
