package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	appmw "github.com/fixlater/fixlater-backend/internal/middleware"
	"github.com/fixlater/fixlater-backend/internal/model"
	"github.com/fixlater/fixlater-backend/internal/repository"
	"github.com/fixlater/fixlater-backend/internal/service"
)

type TaskHandler struct {
	svc service.TaskService
}

func NewTaskHandler(svc service.TaskService) *TaskHandler {
	return &TaskHandler{svc: svc}
}

func (h *TaskHandler) Create(c echo.Context) error {
	var req service.CreateTaskInput
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid json"))
	}
	user := appmw.CurrentUser(c)
	task, err := h.svc.Create(c.Request().Context(), user.ID, req)
	if err != nil {
		return serviceError(c, err, "failed to create task")
	}
	return c.JSON(http.StatusCreated, task)
}

func (h *TaskHandler) List(c echo.Context) error {
	f := service.TaskListFilter{
		TaskFilter: repository.TaskFilter{
			Category: c.QueryParam("category"),
			Status:   model.TaskStatus(c.QueryParam("status")),
		},
	}
	if v := c.QueryParam("min_price"); v != "" {
		if p, err := strconv.ParseFloat(v, 64); err == nil {
			f.MinPrice = &p
		}
	}
	if v := c.QueryParam("max_price"); v != "" {
		if p, err := strconv.ParseFloat(v, 64); err == nil {
			f.MaxPrice = &p
		}
	}
	if v := c.QueryParam("lat"); v != "" {
		if p, err := strconv.ParseFloat(v, 64); err == nil {
			f.Lat = &p
		}
	}
	if v := c.QueryParam("lng"); v != "" {
		if p, err := strconv.ParseFloat(v, 64); err == nil {
			f.Lng = &p
		}
	}
	if v := c.QueryParam("radius"); v != "" {
		if r, err := strconv.Atoi(v); err == nil {
			f.RadiusKm = &r
		}
	}
	tasks, err := h.svc.List(c.Request().Context(), f)
	if err != nil {
		return serviceError(c, err, "failed to fetch tasks")
	}
	return c.JSON(http.StatusOK, map[string]any{"tasks": tasks})
}

func (h *TaskHandler) Get(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid id"))
	}
	var viewerID *uint64
	if user := appmw.CurrentUser(c); user != nil {
		viewerID = &user.ID
	}
	task, err := h.svc.Get(c.Request().Context(), id, viewerID)
	if err != nil {
		return serviceError(c, err, "failed to fetch task")
	}
	return c.JSON(http.StatusOK, task)
}

func (h *TaskHandler) Patch(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid id"))
	}
	var req service.PatchTaskInput
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid json"))
	}
	user := appmw.CurrentUser(c)
	if err := h.svc.Patch(c.Request().Context(), id, user.ID, req); err != nil {
		return serviceError(c, err, "failed to update task")
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "Task updated"})
}

func (h *TaskHandler) Save(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid id"))
	}
	user := appmw.CurrentUser(c)
	if err := h.svc.Save(c.Request().Context(), user.ID, id); err != nil {
		return serviceError(c, err, "failed to save task")
	}
	return c.JSON(http.StatusCreated, map[string]string{"message": "Task saved"})
}

func (h *TaskHandler) Unsave(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid id"))
	}
	user := appmw.CurrentUser(c)
	if err := h.svc.Unsave(c.Request().Context(), user.ID, id); err != nil {
		return serviceError(c, err, "failed to unsave task")
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "Task unsaved"})
}

func (h *TaskHandler) ListSaved(c echo.Context) error {
	user := appmw.CurrentUser(c)
	tasks, err := h.svc.ListSaved(c.Request().Context(), user.ID)
	if err != nil {
		return serviceError(c, err, "failed to fetch saved tasks")
	}
	return c.JSON(http.StatusOK, map[string]any{"tasks": tasks})
}

func parseID(c echo.Context, name string) (uint64, error) {
	return strconv.ParseUint(c.Param(name), 10, 64)
}
