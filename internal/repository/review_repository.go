package repository

import (
	"context"

	"github.com/fixlater/fixlater-backend/internal/model"
	"gorm.io/gorm"
)

type ReviewDetail struct {
	model.Review
	RequesterName  string  `json:"requester_name"`
	RequesterPhoto *string `json:"requester_photo"`
	TaskTitle      string  `json:"task_title"`
}

type ReviewRepository interface {
	Create(ctx context.Context, rv *model.Review) error
	ExistsForTask(ctx context.Context, taskID uint64) (bool, error)
	ListByProvider(ctx context.Context, providerID uint64) ([]ReviewDetail, error)
}

type reviewRepository struct {
	db *gorm.DB
}

func NewReviewRepository(db *gorm.DB) ReviewRepository {
	return &reviewRepository{db: db}
}

func (r *reviewRepository) Create(ctx context.Context, rv *model.Review) error {
	return r.db.WithContext(ctx).Create(rv).Error
}

func (r *reviewRepository) ExistsForTask(ctx context.Context, taskID uint64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Review{}).
		Where("task_id = ?", taskID).
		Count(&count).Error
	return count > 0, err
}

func (r *reviewRepository) ListByProvider(ctx context.Context, providerID uint64) ([]ReviewDetail, error) {
	var list []ReviewDetail
	err := r.db.WithContext(ctx).Model(&model.Review{}).
		Select(`reviews.*, users.name AS requester_name, users.profile_photo AS requester_photo,
			tasks.title AS task_title`).
		Joins("JOIN users ON users.id = reviews.requester_id").
		Joins("JOIN tasks ON tasks.id = reviews.task_id").
		Where("reviews.provider_id = ?", providerID).
		Order("reviews.created_at DESC").
		Find(&list).Error
	return list, err
}
