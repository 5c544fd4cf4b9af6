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

// cancellation (and withdrawal) is blocked inside this window before the
// scheduled start
const cancellationWindow = 24 * time.Hour

// Geocoder resolves a free-text location to coordinates.
type Geocoder interface {
	Geocode(ctx context.Context, location string) (lat, lng float64, err error)
}

// DistanceKm returns the great-circle distance between two points.
type DistanceFunc func(lat1, lng1, lat2, lng2 float64) float64

type SlotInput struct {
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
}

type CreateTaskInput struct {
	Title          string      `json:"title"`
	Description    string      `json:"description"`
	Category       string      `json:"category"`
	Location       string      `json:"location"`
	SuggestedPrice *float64    `json:"suggested_price"`
	Slots          []SlotInput `json:"availability_slots"`
	ImageURLs      []string    `json:"image_urls"`
}

type PatchTaskInput struct {
	Status             *model.TaskStatus `json:"status"`
	AssignedProviderID *uint64           `json:"assigned_provider_id"`
}

type TaskListFilter struct {
	repository.TaskFilter
	Lat      *float64
	Lng      *float64
	RadiusKm *int
}

// TaskDetail is the full public view of a task. Applications are filled in
// only for the task's requester.
type TaskDetail struct {
	repository.TaskSummary
	Images       []model.TaskImage              `json:"images"`
	Slots        []model.AvailabilitySlot       `json:"availability_slots"`
	Applications []repository.ApplicationDetail `json:"applications,omitempty"`
}

type TaskService interface {
	Create(ctx context.Context, requesterID uint64, in CreateTaskInput) (*model.Task, error)
	List(ctx context.Context, f TaskListFilter) ([]repository.TaskSummary, error)
	Get(ctx context.Context, id uint64, viewerID *uint64) (*TaskDetail, error)
	Patch(ctx context.Context, id, callerID uint64, in PatchTaskInput) error
	Save(ctx context.Context, userID, taskID uint64) error
	Unsave(ctx context.Context, userID, taskID uint64) error
	ListSaved(ctx context.Context, userID uint64) ([]model.Task, error)
}

type taskService struct {
	taskRepo repository.TaskRepository
	appRepo  repository.ApplicationRepository
	geocoder Geocoder
	distance DistanceFunc
}

func NewTaskService(taskRepo repository.TaskRepository, appRepo repository.ApplicationRepository, geocoder Geocoder, distance DistanceFunc) TaskService {
	return &taskService{taskRepo: taskRepo, appRepo: appRepo, geocoder: geocoder, distance: distance}
}

func (s *taskService) Create(ctx context.Context, requesterID uint64, in CreateTaskInput) (*model.Task, error) {
	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)
	in.Category = strings.TrimSpace(in.Category)
	in.Location = strings.TrimSpace(in.Location)
	if in.Title == "" {
		return nil, fmt.Errorf("%w: title is required", ErrInvalid)
	}
	if in.Description == "" {
		return nil, fmt.Errorf("%w: description is required", ErrInvalid)
	}
	if in.Category == "" {
		return nil, fmt.Errorf("%w: category is required", ErrInvalid)
	}
	if in.Location == "" {
		return nil, fmt.Errorf("%w: location is required", ErrInvalid)
	}
	if len(in.Slots) == 0 {
		return nil, fmt.Errorf("%w: at least one availability slot is required", ErrInvalid)
	}
	for _, slot := range in.Slots {
		if !slot.EndTime.After(slot.StartTime) {
			return nil, fmt.Errorf("%w: slot end must be after start", ErrInvalid)
		}
	}

	t := &model.Task{
		RequesterID:    requesterID,
		Title:          in.Title,
		Description:    in.Description,
		Category:       in.Category,
		Location:       in.Location,
		SuggestedPrice: in.SuggestedPrice,
		Status:         model.TaskStatusOpen,
	}

	// Geocoding is best effort; a task without coordinates simply never
	// matches radius filters.
	if s.geocoder != nil {
		if lat, lng, err := s.geocoder.Geocode(ctx, in.Location); err == nil {
			t.LocationLat = &lat
			t.LocationLng = &lng
		}
	}

	slots := make([]model.AvailabilitySlot, 0, len(in.Slots))
	for _, slot := range in.Slots {
		slots = append(slots, model.AvailabilitySlot{StartTime: slot.StartTime, EndTime: slot.EndTime})
	}
	if err := s.taskRepo.Create(ctx, t, slots, in.ImageURLs); err != nil {
		return nil, err
	}
	return t, nil
}

func (s *taskService) List(ctx context.Context, f TaskListFilter) ([]repository.TaskSummary, error) {
	list, err := s.taskRepo.List(ctx, f.TaskFilter)
	if err != nil {
		return nil, err
	}
	if f.Lat == nil || f.Lng == nil || f.RadiusKm == nil || s.distance == nil {
		return list, nil
	}
	filtered := make([]repository.TaskSummary, 0, len(list))
	for _, t := range list {
		if t.LocationLat == nil || t.LocationLng == nil {
			continue
		}
		if s.distance(*f.Lat, *f.Lng, *t.LocationLat, *t.LocationLng) <= float64(*f.RadiusKm) {
			filtered = append(filtered, t)
		}
	}
	return filtered, nil
}

func (s *taskService) Get(ctx context.Context, id uint64, viewerID *uint64) (*TaskDetail, error) {
	summary, err := s.taskRepo.FindSummaryByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	detail := &TaskDetail{TaskSummary: *summary}

	if detail.Images, err = s.taskRepo.ListImages(ctx, id); err != nil {
		return nil, err
	}
	if detail.Slots, err = s.taskRepo.ListSlots(ctx, id); err != nil {
		return nil, err
	}
	if viewerID != nil && *viewerID == summary.RequesterID {
		if detail.Applications, err = s.appRepo.ListByTask(ctx, id); err != nil {
			return nil, err
		}
	}
	return detail, nil
}

func (s *taskService) Patch(ctx context.Context, id, callerID uint64, in PatchTaskInput) error {
	t, err := s.taskRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}
	if t.RequesterID != callerID {
		return ErrForbidden
	}

	if in.Status != nil && *in.Status == model.TaskStatusCancelled && t.ScheduledTime != nil {
		if time.Until(*t.ScheduledTime) < cancellationWindow {
			return fmt.Errorf("%w: cannot cancel less than 24 hours before scheduled time", ErrInvalid)
		}
	}

	updates := map[string]interface{}{}
	if in.Status != nil {
		switch *in.Status {
		case model.TaskStatusAssigned, model.TaskStatusCompleted, model.TaskStatusCancelled:
			updates["status"] = *in.Status
		default:
			return fmt.Errorf("%w: invalid status", ErrInvalid)
		}
	}
	if in.AssignedProviderID != nil {
		updates["assigned_provider_id"] = *in.AssignedProviderID
		app, err := s.appRepo.FindByTaskProvider(ctx, id, *in.AssignedProviderID)
		if err == nil {
			if slot, err := s.taskRepo.FindSlot(ctx, app.SelectedSlotID); err == nil {
				updates["scheduled_time"] = slot.StartTime
			}
		}
	}
	if len(updates) == 0 {
		return fmt.Errorf("%w: no updates provided", ErrInvalid)
	}
	return s.taskRepo.Update(ctx, id, updates)
}

func (s *taskService) Save(ctx context.Context, userID, taskID uint64) error {
	if _, err := s.taskRepo.FindByID(ctx, taskID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}
	return s.taskRepo.Save(ctx, userID, taskID)
}

func (s *taskService) Unsave(ctx context.Context, userID, taskID uint64) error {
	return s.taskRepo.Unsave(ctx, userID, taskID)
}

func (s *taskService) ListSaved(ctx context.Context, userID uint64) ([]model.Task, error) {
	return s.taskRepo.ListSaved(ctx, userID)
}
