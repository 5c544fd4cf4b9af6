package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	appmw "github.com/fixlater/fixlater-backend/internal/middleware"
	"github.com/fixlater/fixlater-backend/internal/model"
	"github.com/fixlater/fixlater-backend/internal/service"
)

type AuthHandler struct {
	svc service.AuthService
}

func NewAuthHandler(svc service.AuthService) *AuthHandler {
	return &AuthHandler{svc: svc}
}

type RegisterRequest struct {
	Email    string         `json:"email"`
	Password string         `json:"password"`
	UserType model.UserType `json:"user_type"`
	Name     string         `json:"name"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type AuthResponse struct {
	User  *model.User `json:"user"`
	Token string      `json:"token"`
}

func (h *AuthHandler) Register(c echo.Context) error {
	var req RegisterRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid json"))
	}
	user, token, err := h.svc.Register(c.Request().Context(), req.Email, req.Password, req.UserType, req.Name)
	if err != nil {
		return serviceError(c, err, "failed to register")
	}
	return c.JSON(http.StatusCreated, AuthResponse{User: user, Token: token})
}

func (h *AuthHandler) Login(c echo.Context) error {
	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid json"))
	}
	user, token, err := h.svc.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return serviceError(c, err, "failed to log in")
	}
	return c.JSON(http.StatusOK, AuthResponse{User: user, Token: token})
}

func (h *AuthHandler) Me(c echo.Context) error {
	return c.JSON(http.StatusOK, appmw.CurrentUser(c))
}

type PasswordResetRequest struct {
	Email string `json:"email"`
}

// RequestPasswordReset always answers 200 so the endpoint cannot be used
// to check which emails are registered.
func (h *AuthHandler) RequestPasswordReset(c echo.Context) error {
	var req PasswordResetRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid json"))
	}
	if err := h.svc.RequestPasswordReset(c.Request().Context(), req.Email); err != nil {
		return serviceError(c, err, "failed to process request")
	}
	return c.JSON(http.StatusOK, map[string]string{
		"message": "If that email is registered, a reset link has been sent",
	})
}

type ResetPasswordRequest struct {
	Token    string `json:"token"`
	Password string `json:"password"`
}

func (h *AuthHandler) ResetPassword(c echo.Context) error {
	var req ResetPasswordRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid json"))
	}
	if err := h.svc.ResetPassword(c.Request().Context(), req.Token, req.Password); err != nil {
		return serviceError(c, err, "failed to reset password")
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "Password has been reset"})
}
