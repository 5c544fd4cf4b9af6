package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	appmw "github.com/fixlater/fixlater-backend/internal/middleware"
	"github.com/fixlater/fixlater-backend/internal/model"
	"github.com/fixlater/fixlater-backend/internal/service"
)

type ApplicationHandler struct {
	svc service.ApplicationService
}

func NewApplicationHandler(svc service.ApplicationService) *ApplicationHandler {
	return &ApplicationHandler{svc: svc}
}

func (h *ApplicationHandler) List(c echo.Context) error {
	user := appmw.CurrentUser(c)
	apps, err := h.svc.ListForUser(c.Request().Context(), user)
	if err != nil {
		return serviceError(c, err, "failed to fetch applications")
	}
	return c.JSON(http.StatusOK, map[string]any{"applications": apps})
}

func (h *ApplicationHandler) Apply(c echo.Context) error {
	var req service.ApplyInput
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid json"))
	}
	user := appmw.CurrentUser(c)
	app, err := h.svc.Apply(c.Request().Context(), user, req)
	if err != nil {
		return serviceError(c, err, "failed to submit application")
	}
	return c.JSON(http.StatusCreated, app)
}

type DecideApplicationRequest struct {
	Status model.ApplicationStatus `json:"status"`
}

func (h *ApplicationHandler) Decide(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid id"))
	}
	var req DecideApplicationRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid json"))
	}
	user := appmw.CurrentUser(c)
	if err := h.svc.Decide(c.Request().Context(), user, id, req.Status); err != nil {
		return serviceError(c, err, "failed to update application")
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "Application updated"})
}

func (h *ApplicationHandler) Withdraw(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid id"))
	}
	user := appmw.CurrentUser(c)
	if err := h.svc.Withdraw(c.Request().Context(), user.ID, id); err != nil {
		return serviceError(c, err, "failed to withdraw application")
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "Application withdrawn"})
}
