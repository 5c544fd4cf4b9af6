package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fixlater/fixlater-backend/internal/model"
	"github.com/fixlater/fixlater-backend/internal/repository"
	"gorm.io/gorm"
)

type ApplyInput struct {
	TaskID         uint64  `json:"task_id"`
	ProposedPrice  float64 `json:"proposed_price"`
	SelectedSlotID uint64  `json:"selected_slot_id"`
}

type ApplicationService interface {
	ListForUser(ctx context.Context, user *model.User) ([]repository.ApplicationDetail, error)
	Apply(ctx context.Context, provider *model.User, in ApplyInput) (*model.Application, error)
	Decide(ctx context.Context, caller *model.User, appID uint64, status model.ApplicationStatus) error
	Withdraw(ctx context.Context, providerID, appID uint64) error
}

type applicationService struct {
	appRepo  repository.ApplicationRepository
	taskRepo repository.TaskRepository
	notifier NotificationService
}

func NewApplicationService(appRepo repository.ApplicationRepository, taskRepo repository.TaskRepository, notifier NotificationService) ApplicationService {
	return &applicationService{appRepo: appRepo, taskRepo: taskRepo, notifier: notifier}
}

func (s *applicationService) ListForUser(ctx context.Context, user *model.User) ([]repository.ApplicationDetail, error) {
	if user.UserType == model.UserTypeProvider {
		return s.appRepo.ListByProvider(ctx, user.ID)
	}
	return s.appRepo.ListByRequester(ctx, user.ID)
}

func (s *applicationService) Apply(ctx context.Context, provider *model.User, in ApplyInput) (*model.Application, error) {
	if provider.UserType != model.UserTypeProvider {
		return nil, ErrForbidden
	}
	if in.ProposedPrice < 0 {
		return nil, fmt.Errorf("%w: proposed price must not be negative", ErrInvalid)
	}

	task, err := s.taskRepo.FindByID(ctx, in.TaskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if task.Status != model.TaskStatusOpen {
		return nil, fmt.Errorf("%w: task is not open for applications", ErrInvalid)
	}
	if task.RequesterID == provider.ID {
		return nil, fmt.Errorf("%w: cannot apply to your own task", ErrInvalid)
	}

	slot, err := s.taskRepo.FindSlot(ctx, in.SelectedSlotID)
	if err != nil || slot.TaskID != in.TaskID {
		return nil, fmt.Errorf("%w: invalid time slot", ErrInvalid)
	}

	exists, err := s.appRepo.Exists(ctx, in.TaskID, provider.ID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, fmt.Errorf("%w: already applied to this task", ErrInvalid)
	}

	app := &model.Application{
		TaskID:         in.TaskID,
		ProviderID:     provider.ID,
		ProposedPrice:  in.ProposedPrice,
		SelectedSlotID: in.SelectedSlotID,
		Status:         model.ApplicationStatusPending,
	}
	if err := s.appRepo.Create(ctx, app); err != nil {
		return nil, err
	}

	s.notifier.Notify(ctx, task.RequesterID, model.NotificationTypeApplicationReceived,
		fmt.Sprintf("New application received for task: %s", task.Title), &task.ID)

	return app, nil
}

func (s *applicationService) Decide(ctx context.Context, caller *model.User, appID uint64, status model.ApplicationStatus) error {
	if status != model.ApplicationStatusAccepted && status != model.ApplicationStatusRejected {
		return fmt.Errorf("%w: status must be accepted or rejected", ErrInvalid)
	}

	app, err := s.appRepo.FindByID(ctx, appID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}
	task, err := s.taskRepo.FindByID(ctx, app.TaskID)
	if err != nil {
		return err
	}

	switch caller.UserType {
	case model.UserTypeRequester:
		if task.RequesterID != caller.ID {
			return ErrForbidden
		}
	case model.UserTypeProvider:
		if app.ProviderID != caller.ID {
			return ErrForbidden
		}
	default:
		return ErrForbidden
	}

	if err := s.appRepo.UpdateStatus(ctx, appID, status); err != nil {
		return err
	}

	if status == model.ApplicationStatusAccepted {
		updates := map[string]interface{}{
			"status":               model.TaskStatusAssigned,
			"assigned_provider_id": app.ProviderID,
		}
		if slot, err := s.taskRepo.FindSlot(ctx, app.SelectedSlotID); err == nil {
			updates["scheduled_time"] = slot.StartTime
		}
		if err := s.taskRepo.Update(ctx, app.TaskID, updates); err != nil {
			return err
		}
		if err := s.appRepo.RejectOthers(ctx, app.TaskID, appID); err != nil {
			return err
		}
		s.notifier.Notify(ctx, app.ProviderID, model.NotificationTypeApplicationAccepted,
			"Your application was accepted!", &app.TaskID)
	} else {
		s.notifier.Notify(ctx, app.ProviderID, model.NotificationTypeApplicationRejected,
			"Your application was not selected.", &app.TaskID)
	}
	return nil
}

func (s *applicationService) Withdraw(ctx context.Context, providerID, appID uint64) error {
	app, err := s.appRepo.FindByID(ctx, appID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}
	if app.ProviderID != providerID {
		return ErrNotFound
	}

	slot, err := s.taskRepo.FindSlot(ctx, app.SelectedSlotID)
	if err == nil && time.Until(slot.StartTime) < cancellationWindow {
		return fmt.Errorf("%w: cannot withdraw less than 24 hours before scheduled time", ErrInvalid)
	}
	return s.appRepo.UpdateStatus(ctx, appID, model.ApplicationStatusWithdrawn)
}
