package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/fixlater/fixlater-backend/internal/model"
	"github.com/fixlater/fixlater-backend/internal/repository"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type PublicProfile struct {
	*model.User
	Stats *repository.ProviderStats `json:"stats,omitempty"`
}

type UpdateProfileInput struct {
	Name              *string `json:"name"`
	Bio               *string `json:"bio"`
	ProfilePhoto      *string `json:"profile_photo"`
	ServiceAreaCenter *string `json:"service_area_center"`
	ServiceAreaRadius *int    `json:"service_area_radius"`
}

type UserService interface {
	Profile(ctx context.Context, id uint64) (*PublicProfile, error)
	UpdateProfile(ctx context.Context, callerID, id uint64, in UpdateProfileInput) error
	ChangePassword(ctx context.Context, callerID, id uint64, current, newPassword string) error
}

type userService struct {
	userRepo repository.UserRepository
}

func NewUserService(userRepo repository.UserRepository) UserService {
	return &userService{userRepo: userRepo}
}

func (s *userService) Profile(ctx context.Context, id uint64) (*PublicProfile, error) {
	u, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	p := &PublicProfile{User: u}
	if u.UserType == model.UserTypeProvider {
		stats, err := s.userRepo.ProviderStats(ctx, id)
		if err != nil {
			return nil, err
		}
		p.Stats = stats
	}
	return p, nil
}

func (s *userService) UpdateProfile(ctx context.Context, callerID, id uint64, in UpdateProfileInput) error {
	if callerID != id {
		return ErrForbidden
	}
	updates := map[string]interface{}{}
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return fmt.Errorf("%w: name must not be empty", ErrInvalid)
		}
		updates["name"] = name
	}
	if in.Bio != nil {
		updates["bio"] = *in.Bio
	}
	if in.ProfilePhoto != nil {
		updates["profile_photo"] = *in.ProfilePhoto
	}
	if in.ServiceAreaCenter != nil {
		updates["service_area_center"] = *in.ServiceAreaCenter
	}
	if in.ServiceAreaRadius != nil {
		if *in.ServiceAreaRadius < 1 {
			return fmt.Errorf("%w: service area radius must be positive", ErrInvalid)
		}
		updates["service_area_radius"] = *in.ServiceAreaRadius
	}
	if len(updates) == 0 {
		return fmt.Errorf("%w: no updates provided", ErrInvalid)
	}
	return s.userRepo.UpdateProfile(ctx, id, updates)
}

func (s *userService) ChangePassword(ctx context.Context, callerID, id uint64, current, newPassword string) error {
	if callerID != id {
		return ErrForbidden
	}
	if len(newPassword) < 6 {
		return fmt.Errorf("%w: password must be at least 6 characters", ErrInvalid)
	}
	u, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(current)); err != nil {
		return fmt.Errorf("%w: current password is incorrect", ErrInvalid)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	return s.userRepo.UpdatePassword(ctx, id, string(hash))
}
