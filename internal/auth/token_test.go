package auth

import (
	"testing"
	"time"
)

func TestTokenRoundTrip(t *testing.T) {
	m, err := NewTokenManager("test-secret", time.Hour)
	if err != nil {
		t.Fatalf("NewTokenManager: %v", err)
	}
	tok, err := m.Issue(42)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	uid, err := m.Verify(tok)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if uid != 42 {
		t.Fatalf("uid=%d want 42", uid)
	}
}

func TestVerifyRejects(t *testing.T) {
	m, _ := NewTokenManager("test-secret", time.Hour)

	expired, _ := NewTokenManager("test-secret", -time.Minute)
	expiredTok, _ := expired.Issue(7)

	other, _ := NewTokenManager("other-secret", time.Hour)
	otherTok, _ := other.Issue(7)

	tests := []struct {
		name  string
		token string
	}{
		{"empty", ""},
		{"garbage", "not.a.token"},
		{"expired", expiredTok},
		{"wrong secret", otherTok},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := m.Verify(tt.token); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestNewTokenManagerRequiresSecret(t *testing.T) {
	if _, err := NewTokenManager("", time.Hour); err == nil {
		t.Fatal("expected error for empty secret")
	}
}
