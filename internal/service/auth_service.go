package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/mail"
	"strings"
	"time"

	"github.com/fixlater/fixlater-backend/internal/auth"
	"github.com/fixlater/fixlater-backend/internal/model"
	"github.com/fixlater/fixlater-backend/internal/repository"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const passwordResetTTL = time.Hour

type AuthService interface {
	Register(ctx context.Context, email, password string, userType model.UserType, name string) (*model.User, string, error)
	Login(ctx context.Context, email, password string) (*model.User, string, error)
	RequestPasswordReset(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, token, password string) error
}

type authService struct {
	userRepo  repository.UserRepository
	tokens    *auth.TokenManager
	clientURL string
}

func NewAuthService(userRepo repository.UserRepository, tokens *auth.TokenManager, clientURL string) AuthService {
	return &authService{userRepo: userRepo, tokens: tokens, clientURL: clientURL}
}

func (s *authService) Register(ctx context.Context, email, password string, userType model.UserType, name string) (*model.User, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	name = strings.TrimSpace(name)
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, "", fmt.Errorf("%w: invalid email", ErrInvalid)
	}
	if len(password) < 6 {
		return nil, "", fmt.Errorf("%w: password must be at least 6 characters", ErrInvalid)
	}
	if userType != model.UserTypeRequester && userType != model.UserTypeProvider {
		return nil, "", fmt.Errorf("%w: invalid user type", ErrInvalid)
	}
	if name == "" {
		return nil, "", fmt.Errorf("%w: name is required", ErrInvalid)
	}

	if _, err := s.userRepo.FindByEmail(ctx, email); err == nil {
		return nil, "", fmt.Errorf("%w: user already exists", ErrInvalid)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, "", err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", err
	}

	u := &model.User{
		Email:        email,
		PasswordHash: string(hash),
		UserType:     userType,
		Name:         name,
	}
	if err := s.userRepo.Create(ctx, u); err != nil {
		return nil, "", err
	}

	token, err := s.tokens.Issue(u.ID)
	if err != nil {
		return nil, "", err
	}
	return u, token, nil
}

func (s *authService) Login(ctx context.Context, email, password string) (*model.User, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	u, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", fmt.Errorf("%w: invalid credentials", ErrInvalid)
		}
		return nil, "", err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, "", fmt.Errorf("%w: invalid credentials", ErrInvalid)
	}
	token, err := s.tokens.Issue(u.ID)
	if err != nil {
		return nil, "", err
	}
	return u, token, nil
}

// RequestPasswordReset never reveals whether the email exists.
func (s *authService) RequestPasswordReset(ctx context.Context, email string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	u, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return err
	}

	token := strings.ReplaceAll(uuid.NewString()+uuid.NewString(), "-", "")
	pr := &model.PasswordReset{
		UserID:    u.ID,
		Token:     token,
		ExpiresAt: time.Now().Add(passwordResetTTL),
	}
	if err := s.userRepo.UpsertPasswordReset(ctx, pr); err != nil {
		return err
	}

	// Mail delivery is deployment-specific; surface the link in the logs so
	// operators can forward it until an SMTP relay is configured.
	log.Printf("password reset link for user %d: %s/reset-password?token=%s", u.ID, s.clientURL, token)
	return nil
}

func (s *authService) ResetPassword(ctx context.Context, token, password string) error {
	if token == "" {
		return fmt.Errorf("%w: token is required", ErrInvalid)
	}
	if len(password) < 6 {
		return fmt.Errorf("%w: password must be at least 6 characters", ErrInvalid)
	}
	pr, err := s.userRepo.FindPasswordReset(ctx, token)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: invalid or expired token", ErrInvalid)
		}
		return err
	}
	if time.Now().After(pr.ExpiresAt) {
		return fmt.Errorf("%w: token expired", ErrInvalid)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	if err := s.userRepo.UpdatePassword(ctx, pr.UserID, string(hash)); err != nil {
		return err
	}
	return s.userRepo.DeletePasswordReset(ctx, pr.UserID)
}
