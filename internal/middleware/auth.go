package middleware

import (
	"net/http"
	"strings"

	"github.com/fixlater/fixlater-backend/internal/auth"
	"github.com/fixlater/fixlater-backend/internal/model"
	"github.com/fixlater/fixlater-backend/internal/repository"
	"github.com/labstack/echo/v4"
)

const userContextKey = "user"

type AuthMiddleware struct {
	tokens   *auth.TokenManager
	userRepo repository.UserRepository
}

func NewAuthMiddleware(tokens *auth.TokenManager, userRepo repository.UserRepository) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens, userRepo: userRepo}
}

// RequireAuth rejects requests without a valid bearer token and loads the
// corresponding user into the request context.
func (m *AuthMiddleware) RequireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		u, ok := m.resolveUser(c)
		if !ok {
			return c.JSON(http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
		}
		c.Set(userContextKey, u)
		return next(c)
	}
}

// OptionalAuth loads the user when a valid token is present and continues
// anonymously otherwise.
func (m *AuthMiddleware) OptionalAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if u, ok := m.resolveUser(c); ok {
			c.Set(userContextKey, u)
		}
		return next(c)
	}
}

// RequireUserType guards a route to the given account types. It must run
// after RequireAuth.
func RequireUserType(types ...model.UserType) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			u := CurrentUser(c)
			if u == nil {
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": "authentication required"})
			}
			for _, t := range types {
				if u.UserType == t {
					return next(c)
				}
			}
			return c.JSON(http.StatusForbidden, map[string]string{"error": "insufficient permissions"})
		}
	}
}

// CurrentUser returns the authenticated user, or nil for anonymous
// requests.
func CurrentUser(c echo.Context) *model.User {
	u, _ := c.Get(userContextKey).(*model.User)
	return u
}

func (m *AuthMiddleware) resolveUser(c echo.Context) (*model.User, bool) {
	authz := c.Request().Header.Get("Authorization")
	if authz == "" || !strings.HasPrefix(authz, "Bearer ") {
		return nil, false
	}
	userID, err := m.tokens.Verify(strings.TrimPrefix(authz, "Bearer "))
	if err != nil {
		return nil, false
	}
	u, err := m.userRepo.FindByID(c.Request().Context(), userID)
	if err != nil {
		return nil, false
	}
	return u, true
}
