package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/fixlater/fixlater-backend/internal/model"
	"github.com/fixlater/fixlater-backend/internal/repository"
	"gorm.io/gorm"
)

type CreateReviewInput struct {
	TaskID     uint64  `json:"task_id"`
	Rating     int     `json:"rating"`
	ReviewText *string `json:"review_text"`
}

type ProviderReviews struct {
	Reviews       []repository.ReviewDetail `json:"reviews"`
	AverageRating float64                   `json:"average_rating"`
	ReviewCount   int64                     `json:"review_count"`
}

type ReviewService interface {
	Create(ctx context.Context, caller *model.User, in CreateReviewInput) (*model.Review, error)
	ListByProvider(ctx context.Context, providerID uint64) (*ProviderReviews, error)
	ListProviders(ctx context.Context, searchTerm, sortBy string) ([]repository.ProviderListing, error)
}

type reviewService struct {
	reviewRepo repository.ReviewRepository
	taskRepo   repository.TaskRepository
	userRepo   repository.UserRepository
}

func NewReviewService(reviewRepo repository.ReviewRepository, taskRepo repository.TaskRepository, userRepo repository.UserRepository) ReviewService {
	return &reviewService{reviewRepo: reviewRepo, taskRepo: taskRepo, userRepo: userRepo}
}

func (s *reviewService) Create(ctx context.Context, caller *model.User, in CreateReviewInput) (*model.Review, error) {
	if in.Rating < 1 || in.Rating > 5 {
		return nil, fmt.Errorf("%w: rating must be between 1 and 5", ErrInvalid)
	}

	task, err := s.taskRepo.FindByID(ctx, in.TaskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if task.Status != model.TaskStatusCompleted && task.Status != model.TaskStatusAssigned {
		return nil, fmt.Errorf("%w: task must be completed to review", ErrInvalid)
	}
	if task.ScheduledTime != nil && task.ScheduledTime.After(time.Now()) {
		return nil, fmt.Errorf("%w: cannot review before scheduled time", ErrInvalid)
	}

	var providerID, requesterID uint64
	if caller.UserType == model.UserTypeRequester {
		if task.AssignedProviderID == nil {
			return nil, fmt.Errorf("%w: no provider assigned to task", ErrInvalid)
		}
		requesterID = caller.ID
		providerID = *task.AssignedProviderID
	} else {
		providerID = caller.ID
		requesterID = task.RequesterID
	}

	exists, err := s.reviewRepo.ExistsForTask(ctx, in.TaskID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, fmt.Errorf("%w: review already exists for this task", ErrInvalid)
	}

	if in.ReviewText != nil {
		trimmed := strings.TrimSpace(*in.ReviewText)
		if trimmed == "" {
			in.ReviewText = nil
		} else {
			in.ReviewText = &trimmed
		}
	}

	rv := &model.Review{
		TaskID:      in.TaskID,
		ProviderID:  providerID,
		RequesterID: requesterID,
		Rating:      in.Rating,
		ReviewText:  in.ReviewText,
	}
	if err := s.reviewRepo.Create(ctx, rv); err != nil {
		return nil, err
	}

	if err := s.taskRepo.Update(ctx, in.TaskID, map[string]interface{}{"status": model.TaskStatusCompleted}); err != nil {
		return nil, err
	}
	return rv, nil
}

func (s *reviewService) ListByProvider(ctx context.Context, providerID uint64) (*ProviderReviews, error) {
	reviews, err := s.reviewRepo.ListByProvider(ctx, providerID)
	if err != nil {
		return nil, err
	}
	stats, err := s.userRepo.ProviderStats(ctx, providerID)
	if err != nil {
		return nil, err
	}
	return &ProviderReviews{
		Reviews:       reviews,
		AverageRating: stats.AverageRating,
		ReviewCount:   stats.ReviewCount,
	}, nil
}

func (s *reviewService) ListProviders(ctx context.Context, searchTerm, sortBy string) ([]repository.ProviderListing, error) {
	return s.userRepo.ListProviders(ctx, searchTerm, sortBy)
}
