package service

import (
	"context"
	"log"

	"github.com/fixlater/fixlater-backend/internal/model"
	"github.com/fixlater/fixlater-backend/internal/repository"
)

type NotificationService interface {
	Notify(ctx context.Context, userID uint64, typ, message string, relatedTaskID *uint64)
	List(ctx context.Context, userID uint64) ([]repository.NotificationDetail, int64, error)
	MarkRead(ctx context.Context, userID, id uint64) error
	MarkAllRead(ctx context.Context, userID uint64) error
}

type notificationService struct {
	repo repository.NotificationRepository
}

func NewNotificationService(repo repository.NotificationRepository) NotificationService {
	return &notificationService{repo: repo}
}

// Notify is best-effort; it logs errors but does not return them to avoid
// breaking the main flows.
func (s *notificationService) Notify(ctx context.Context, userID uint64, typ, message string, relatedTaskID *uint64) {
	if userID == 0 || typ == "" {
		return
	}
	n := &model.Notification{
		UserID:        userID,
		Type:          typ,
		Message:       message,
		RelatedTaskID: relatedTaskID,
	}
	if err := s.repo.Create(ctx, n); err != nil {
		log.Printf("notify user %d failed: %v", userID, err)
	}
}

func (s *notificationService) List(ctx context.Context, userID uint64) ([]repository.NotificationDetail, int64, error) {
	list, err := s.repo.ListByUser(ctx, userID, 50)
	if err != nil {
		return nil, 0, err
	}
	cnt, err := s.repo.CountUnread(ctx, userID)
	if err != nil {
		return list, 0, err
	}
	return list, cnt, nil
}

func (s *notificationService) MarkRead(ctx context.Context, userID, id uint64) error {
	return s.repo.MarkRead(ctx, id, userID)
}

func (s *notificationService) MarkAllRead(ctx context.Context, userID uint64) error {
	return s.repo.MarkAllRead(ctx, userID)
}
