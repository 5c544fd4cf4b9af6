package repository

import (
	"context"

	"github.com/fixlater/fixlater-backend/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// TaskFilter narrows the public task list.
type TaskFilter struct {
	Category string
	MinPrice *float64
	MaxPrice *float64
	Status   model.TaskStatus
}

// TaskSummary is a task row joined with requester display fields.
type TaskSummary struct {
	model.Task
	RequesterName    string  `json:"requester_name"`
	RequesterPhoto   *string `json:"requester_photo"`
	ApplicationCount int64   `json:"application_count"`
}

type TaskRepository interface {
	Create(ctx context.Context, t *model.Task, slots []model.AvailabilitySlot, imageURLs []string) error
	FindByID(ctx context.Context, id uint64) (*model.Task, error)
	FindSummaryByID(ctx context.Context, id uint64) (*TaskSummary, error)
	List(ctx context.Context, f TaskFilter) ([]TaskSummary, error)
	Update(ctx context.Context, id uint64, updates map[string]interface{}) error
	ListSlots(ctx context.Context, taskID uint64) ([]model.AvailabilitySlot, error)
	FindSlot(ctx context.Context, slotID uint64) (*model.AvailabilitySlot, error)
	ListImages(ctx context.Context, taskID uint64) ([]model.TaskImage, error)
	Save(ctx context.Context, userID, taskID uint64) error
	Unsave(ctx context.Context, userID, taskID uint64) error
	ListSaved(ctx context.Context, userID uint64) ([]model.Task, error)
}

type taskRepository struct {
	db *gorm.DB
}

func NewTaskRepository(db *gorm.DB) TaskRepository {
	return &taskRepository{db: db}
}

func (r *taskRepository) Create(ctx context.Context, t *model.Task, slots []model.AvailabilitySlot, imageURLs []string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(t).Error; err != nil {
			return err
		}
		for i := range slots {
			slots[i].TaskID = t.ID
		}
		if len(slots) > 0 {
			if err := tx.Create(&slots).Error; err != nil {
				return err
			}
		}
		for _, url := range imageURLs {
			img := model.TaskImage{TaskID: t.ID, ImageURL: url}
			if err := tx.Create(&img).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *taskRepository) FindByID(ctx context.Context, id uint64) (*model.Task, error) {
	var t model.Task
	if err := r.db.WithContext(ctx).First(&t, id).Error; err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *taskRepository) FindSummaryByID(ctx context.Context, id uint64) (*TaskSummary, error) {
	var s TaskSummary
	err := r.db.WithContext(ctx).Model(&model.Task{}).
		Select("tasks.*, users.name AS requester_name, users.profile_photo AS requester_photo").
		Joins("JOIN users ON users.id = tasks.requester_id").
		Where("tasks.id = ?", id).
		First(&s).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *taskRepository) List(ctx context.Context, f TaskFilter) ([]TaskSummary, error) {
	q := r.db.WithContext(ctx).Model(&model.Task{}).
		Select(`tasks.*, users.name AS requester_name, users.profile_photo AS requester_photo,
			(SELECT COUNT(*) FROM applications WHERE applications.task_id = tasks.id) AS application_count`).
		Joins("JOIN users ON users.id = tasks.requester_id")

	if f.Category != "" {
		q = q.Where("tasks.category = ?", f.Category)
	}
	if f.MinPrice != nil {
		q = q.Where("tasks.suggested_price >= ? OR tasks.suggested_price IS NULL", *f.MinPrice)
	}
	if f.MaxPrice != nil {
		q = q.Where("tasks.suggested_price <= ? OR tasks.suggested_price IS NULL", *f.MaxPrice)
	}
	status := f.Status
	if status == "" {
		status = model.TaskStatusOpen
	}
	q = q.Where("tasks.status = ?", status)

	var list []TaskSummary
	if err := q.Order("tasks.created_at DESC").Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *taskRepository) Update(ctx context.Context, id uint64, updates map[string]interface{}) error {
	return r.db.WithContext(ctx).Model(&model.Task{}).Where("id = ?", id).Updates(updates).Error
}

func (r *taskRepository) ListSlots(ctx context.Context, taskID uint64) ([]model.AvailabilitySlot, error) {
	var slots []model.AvailabilitySlot
	if err := r.db.WithContext(ctx).
		Where("task_id = ?", taskID).
		Order("start_time ASC").
		Find(&slots).Error; err != nil {
		return nil, err
	}
	return slots, nil
}

func (r *taskRepository) FindSlot(ctx context.Context, slotID uint64) (*model.AvailabilitySlot, error) {
	var slot model.AvailabilitySlot
	if err := r.db.WithContext(ctx).First(&slot, slotID).Error; err != nil {
		return nil, err
	}
	return &slot, nil
}

func (r *taskRepository) ListImages(ctx context.Context, taskID uint64) ([]model.TaskImage, error) {
	var imgs []model.TaskImage
	if err := r.db.WithContext(ctx).
		Where("task_id = ?", taskID).
		Order("created_at ASC").
		Find(&imgs).Error; err != nil {
		return nil, err
	}
	return imgs, nil
}

func (r *taskRepository) Save(ctx context.Context, userID, taskID uint64) error {
	st := model.SavedTask{UserID: userID, TaskID: taskID}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&st).Error
}

func (r *taskRepository) Unsave(ctx context.Context, userID, taskID uint64) error {
	return r.db.WithContext(ctx).
		Where("user_id = ? AND task_id = ?", userID, taskID).
		Delete(&model.SavedTask{}).Error
}

func (r *taskRepository) ListSaved(ctx context.Context, userID uint64) ([]model.Task, error) {
	var tasks []model.Task
	if err := r.db.WithContext(ctx).Model(&model.Task{}).
		Joins("JOIN saved_tasks ON saved_tasks.task_id = tasks.id").
		Where("saved_tasks.user_id = ?", userID).
		Order("saved_tasks.created_at DESC").
		Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}
