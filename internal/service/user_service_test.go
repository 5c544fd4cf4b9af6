package service

import (
	"context"
	"errors"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/fixlater/fixlater-backend/internal/model"
)

func newUserFixture(t *testing.T) (UserService, *fakeUserRepo) {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("secret1"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	repo := &fakeUserRepo{users: map[uint64]*model.User{
		100: {ID: 100, Name: "Ana", UserType: model.UserTypeRequester, PasswordHash: string(hash)},
		200: {ID: 200, Name: "Bo", UserType: model.UserTypeProvider, PasswordHash: string(hash)},
	}}
	return NewUserService(repo), repo
}

func TestProfileStatsOnlyForProviders(t *testing.T) {
	svc, _ := newUserFixture(t)

	p, err := svc.Profile(context.Background(), 200)
	if err != nil {
		t.Fatalf("provider profile: %v", err)
	}
	if p.Stats == nil {
		t.Fatal("provider profile must include stats")
	}

	p, err = svc.Profile(context.Background(), 100)
	if err != nil {
		t.Fatalf("requester profile: %v", err)
	}
	if p.Stats != nil {
		t.Fatal("requester profile must not include stats")
	}

	if _, err := svc.Profile(context.Background(), 999); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err=%v want ErrNotFound", err)
	}
}

func TestUpdateProfile(t *testing.T) {
	name := "Ana B"
	blank := "  "
	radius := 0

	tests := []struct {
		name     string
		callerID uint64
		in       UpdateProfileInput
		wantErr  error
	}{
		{"ok", 100, UpdateProfileInput{Name: &name}, nil},
		{"someone else's profile", 200, UpdateProfileInput{Name: &name}, ErrForbidden},
		{"blank name", 100, UpdateProfileInput{Name: &blank}, ErrInvalid},
		{"zero radius", 100, UpdateProfileInput{ServiceAreaRadius: &radius}, ErrInvalid},
		{"empty patch", 100, UpdateProfileInput{}, ErrInvalid},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _ := newUserFixture(t)
			err := svc.UpdateProfile(context.Background(), tt.callerID, 100, tt.in)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("err=%v want=%v", err, tt.wantErr)
			}
		})
	}
}

func TestChangePassword(t *testing.T) {
	tests := []struct {
		name     string
		callerID uint64
		current  string
		next     string
		wantErr  error
	}{
		{"ok", 100, "secret1", "newsecret", nil},
		{"wrong current", 100, "nope", "newsecret", ErrInvalid},
		{"too short", 100, "secret1", "abc", ErrInvalid},
		{"not the owner", 200, "secret1", "newsecret", ErrForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, repo := newUserFixture(t)
			before := repo.users[100].PasswordHash
			err := svc.ChangePassword(context.Background(), tt.callerID, 100, tt.current, tt.next)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("err=%v want=%v", err, tt.wantErr)
			}
			if tt.wantErr == nil && repo.users[100].PasswordHash == before {
				t.Fatal("hash must change")
			}
		})
	}
}
