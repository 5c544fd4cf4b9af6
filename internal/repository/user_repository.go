package repository

import (
	"context"
	"time"

	"github.com/fixlater/fixlater-backend/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ProviderStats aggregates review and completion counters for a provider.
type ProviderStats struct {
	AverageRating  float64 `json:"average_rating"`
	ReviewCount    int64   `json:"review_count"`
	CompletedTasks int64   `json:"completed_tasks"`
}

// ProviderListing is one row of the public provider directory.
type ProviderListing struct {
	ID             uint64    `json:"id"`
	Name           string    `json:"name"`
	ProfilePhoto   *string   `json:"profile_photo"`
	Bio            *string   `json:"bio"`
	CreatedAt      time.Time `json:"created_at"`
	AvgRating      float64   `json:"avg_rating"`
	ReviewCount    int64     `json:"review_count"`
	CompletedTasks int64     `json:"completed_tasks"`
}

type UserRepository interface {
	Create(ctx context.Context, u *model.User) error
	FindByID(ctx context.Context, id uint64) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	UpdateProfile(ctx context.Context, id uint64, updates map[string]interface{}) error
	UpdatePassword(ctx context.Context, id uint64, passwordHash string) error
	ProviderStats(ctx context.Context, providerID uint64) (*ProviderStats, error)
	ListProviders(ctx context.Context, searchTerm, sortBy string) ([]ProviderListing, error)
	UpsertPasswordReset(ctx context.Context, pr *model.PasswordReset) error
	FindPasswordReset(ctx context.Context, token string) (*model.PasswordReset, error)
	DeletePasswordReset(ctx context.Context, userID uint64) error
}

type userRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, u *model.User) error {
	return r.db.WithContext(ctx).Create(u).Error
}

func (r *userRepository) FindByID(ctx context.Context, id uint64) (*model.User, error) {
	var u model.User
	if err := r.db.WithContext(ctx).First(&u, id).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *userRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	var u model.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&u).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *userRepository) UpdateProfile(ctx context.Context, id uint64, updates map[string]interface{}) error {
	return r.db.WithContext(ctx).Model(&model.User{}).Where("id = ?", id).Updates(updates).Error
}

func (r *userRepository) UpdatePassword(ctx context.Context, id uint64, passwordHash string) error {
	return r.db.WithContext(ctx).Model(&model.User{}).Where("id = ?", id).
		Update("password_hash", passwordHash).Error
}

func (r *userRepository) ProviderStats(ctx context.Context, providerID uint64) (*ProviderStats, error) {
	var stats ProviderStats
	row := struct {
		AvgRating   *float64
		ReviewCount int64
	}{}
	if err := r.db.WithContext(ctx).Model(&model.Review{}).
		Select("AVG(rating) AS avg_rating, COUNT(*) AS review_count").
		Where("provider_id = ?", providerID).
		Scan(&row).Error; err != nil {
		return nil, err
	}
	if row.AvgRating != nil {
		stats.AverageRating = *row.AvgRating
	}
	stats.ReviewCount = row.ReviewCount

	if err := r.db.WithContext(ctx).Model(&model.Task{}).
		Where("assigned_provider_id = ? AND status = ?", providerID, model.TaskStatusCompleted).
		Count(&stats.CompletedTasks).Error; err != nil {
		return nil, err
	}
	return &stats, nil
}

func (r *userRepository) ListProviders(ctx context.Context, searchTerm, sortBy string) ([]ProviderListing, error) {
	q := r.db.WithContext(ctx).Model(&model.User{}).
		Select(`users.id, users.name, users.profile_photo, users.bio, users.created_at,
			COALESCE(AVG(reviews.rating), 0) AS avg_rating,
			COUNT(reviews.id) AS review_count,
			(SELECT COUNT(*) FROM tasks WHERE tasks.assigned_provider_id = users.id AND tasks.status = ?) AS completed_tasks`,
			model.TaskStatusCompleted).
		Joins("LEFT JOIN reviews ON reviews.provider_id = users.id").
		Where("users.user_type = ?", model.UserTypeProvider).
		Group("users.id")

	if searchTerm != "" {
		like := "%" + searchTerm + "%"
		q = q.Where("LOWER(users.name) LIKE LOWER(?) OR LOWER(users.bio) LIKE LOWER(?)", like, like)
	}

	switch sortBy {
	case "reviewCount":
		q = q.Order("review_count DESC")
	case "completedTasks":
		q = q.Order("completed_tasks DESC")
	case "newest":
		q = q.Order("users.created_at DESC")
	default:
		q = q.Order("avg_rating DESC")
	}

	var list []ProviderListing
	if err := q.Scan(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *userRepository) UpsertPasswordReset(ctx context.Context, pr *model.PasswordReset) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"token", "expires_at"}),
	}).Create(pr).Error
}

func (r *userRepository) FindPasswordReset(ctx context.Context, token string) (*model.PasswordReset, error) {
	var pr model.PasswordReset
	if err := r.db.WithContext(ctx).Where("token = ?", token).First(&pr).Error; err != nil {
		return nil, err
	}
	return &pr, nil
}

func (r *userRepository) DeletePasswordReset(ctx context.Context, userID uint64) error {
	return r.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&model.PasswordReset{}).Error
}
