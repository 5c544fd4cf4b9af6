package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	appmw "github.com/fixlater/fixlater-backend/internal/middleware"
	"github.com/fixlater/fixlater-backend/internal/service"
)

type NotificationHandler struct {
	svc service.NotificationService
}

func NewNotificationHandler(svc service.NotificationService) *NotificationHandler {
	return &NotificationHandler{svc: svc}
}

func (h *NotificationHandler) List(c echo.Context) error {
	user := appmw.CurrentUser(c)
	notifs, unread, err := h.svc.List(c.Request().Context(), user.ID)
	if err != nil {
		return serviceError(c, err, "failed to fetch notifications")
	}
	return c.JSON(http.StatusOK, map[string]any{
		"notifications": notifs,
		"unread_count":  unread,
	})
}

func (h *NotificationHandler) MarkRead(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid id"))
	}
	user := appmw.CurrentUser(c)
	if err := h.svc.MarkRead(c.Request().Context(), user.ID, id); err != nil {
		return serviceError(c, err, "failed to update notification")
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "Notification marked as read"})
}

func (h *NotificationHandler) MarkAllRead(c echo.Context) error {
	user := appmw.CurrentUser(c)
	if err := h.svc.MarkAllRead(c.Request().Context(), user.ID); err != nil {
		return serviceError(c, err, "failed to update notifications")
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "All notifications marked as read"})
}
