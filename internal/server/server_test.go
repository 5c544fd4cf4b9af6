package server

import (
	"net/http"
	"testing"
	"time"

	"github.com/fixlater/fixlater-backend/internal/auth"
	"github.com/fixlater/fixlater-backend/internal/config"
)

func TestRouteTable(t *testing.T) {
	tokens, err := auth.NewTokenManager("test-secret", time.Hour)
	if err != nil {
		t.Fatalf("token manager: %v", err)
	}
	srv := New(nil, &config.Config{ClientURL: "http://localhost:3000"}, tokens, nil)

	registered := map[string]bool{}
	for _, r := range srv.e.Routes() {
		registered[r.Method+" "+r.Path] = true
	}

	want := []string{
		http.MethodGet + " /ws",
		http.MethodPost + " /api/auth/register",
		http.MethodPost + " /api/auth/login",
		http.MethodPost + " /api/auth/request-password-reset",
		http.MethodPost + " /api/auth/reset-password",
		http.MethodGet + " /api/tasks",
		http.MethodGet + " /api/tasks/saved",
		http.MethodPost + " /api/tasks/:id/save",
		http.MethodPost + " /api/applications",
		http.MethodGet + " /api/reviews/provider/:provider_id",
		http.MethodGet + " /api/providers",
		http.MethodPost + " /api/messages/conversation",
		http.MethodGet + " /api/messages/conversation/:id/messages",
		http.MethodPatch + " /api/notifications/read-all",
	}
	for _, route := range want {
		if !registered[route] {
			t.Errorf("route %s not registered", route)
		}
	}

	// Uploads stay off without a storage client.
	if registered[http.MethodPost+" /api/upload/image"] {
		t.Error("upload routes must not register without a storage client")
	}
}
