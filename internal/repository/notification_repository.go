package repository

import (
	"context"

	"github.com/fixlater/fixlater-backend/internal/model"
	"gorm.io/gorm"
)

type NotificationDetail struct {
	model.Notification
	TaskTitle *string `json:"task_title"`
}

type NotificationRepository interface {
	Create(ctx context.Context, n *model.Notification) error
	ListByUser(ctx context.Context, userID uint64, limit int) ([]NotificationDetail, error)
	MarkRead(ctx context.Context, id, userID uint64) error
	MarkAllRead(ctx context.Context, userID uint64) error
	CountUnread(ctx context.Context, userID uint64) (int64, error)
}

type notificationRepository struct {
	db *gorm.DB
}

func NewNotificationRepository(db *gorm.DB) NotificationRepository {
	return &notificationRepository{db: db}
}

func (r *notificationRepository) Create(ctx context.Context, n *model.Notification) error {
	return r.db.WithContext(ctx).Create(n).Error
}

func (r *notificationRepository) ListByUser(ctx context.Context, userID uint64, limit int) ([]NotificationDetail, error) {
	if limit <= 0 || limit > 50 {
		limit = 50
	}
	var list []NotificationDetail
	err := r.db.WithContext(ctx).Model(&model.Notification{}).
		Select("notifications.*, tasks.title AS task_title").
		Joins("LEFT JOIN tasks ON tasks.id = notifications.related_task_id").
		Where("notifications.user_id = ?", userID).
		Order("notifications.created_at DESC").
		Limit(limit).
		Find(&list).Error
	return list, err
}

func (r *notificationRepository) MarkRead(ctx context.Context, id, userID uint64) error {
	return r.db.WithContext(ctx).Model(&model.Notification{}).
		Where("id = ? AND user_id = ?", id, userID).
		Update("is_read", true).Error
}

func (r *notificationRepository) MarkAllRead(ctx context.Context, userID uint64) error {
	return r.db.WithContext(ctx).Model(&model.Notification{}).
		Where("user_id = ?", userID).
		Update("is_read", true).Error
}

func (r *notificationRepository) CountUnread(ctx context.Context, userID uint64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Notification{}).
		Where("user_id = ? AND is_read = false", userID).
		Count(&count).Error
	return count, err
}
