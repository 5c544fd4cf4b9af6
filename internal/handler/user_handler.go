package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	appmw "github.com/fixlater/fixlater-backend/internal/middleware"
	"github.com/fixlater/fixlater-backend/internal/service"
)

type UserHandler struct {
	svc service.UserService
}

func NewUserHandler(svc service.UserService) *UserHandler {
	return &UserHandler{svc: svc}
}

func (h *UserHandler) Get(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid id"))
	}
	profile, err := h.svc.Profile(c.Request().Context(), id)
	if err != nil {
		return serviceError(c, err, "failed to fetch user")
	}
	return c.JSON(http.StatusOK, profile)
}

func (h *UserHandler) Update(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid id"))
	}
	var req service.UpdateProfileInput
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid json"))
	}
	user := appmw.CurrentUser(c)
	if err := h.svc.UpdateProfile(c.Request().Context(), user.ID, id, req); err != nil {
		return serviceError(c, err, "failed to update profile")
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "Profile updated"})
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

func (h *UserHandler) ChangePassword(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid id"))
	}
	var req ChangePasswordRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid json"))
	}
	user := appmw.CurrentUser(c)
	if err := h.svc.ChangePassword(c.Request().Context(), user.ID, id, req.CurrentPassword, req.NewPassword); err != nil {
		return serviceError(c, err, "failed to change password")
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "Password changed"})
}
