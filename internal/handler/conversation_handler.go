package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	appmw "github.com/fixlater/fixlater-backend/internal/middleware"
	"github.com/fixlater/fixlater-backend/internal/service"
)

type ConversationHandler struct {
	svc service.ConversationService
}

func NewConversationHandler(svc service.ConversationService) *ConversationHandler {
	return &ConversationHandler{svc: svc}
}

type CreateConversationRequest struct {
	TaskID      uint64 `json:"task_id"`
	OtherUserID uint64 `json:"other_user_id"`
}

func (h *ConversationHandler) Create(c echo.Context) error {
	var req CreateConversationRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid json"))
	}
	user := appmw.CurrentUser(c)
	conv, err := h.svc.CreateOrGet(c.Request().Context(), user.ID, req.TaskID, req.OtherUserID)
	if err != nil {
		return serviceError(c, err, "failed to open conversation")
	}
	return c.JSON(http.StatusOK, conv)
}

func (h *ConversationHandler) List(c echo.Context) error {
	user := appmw.CurrentUser(c)
	convs, err := h.svc.ListByUser(c.Request().Context(), user.ID)
	if err != nil {
		return serviceError(c, err, "failed to fetch conversations")
	}
	return c.JSON(http.StatusOK, map[string]any{"conversations": convs})
}

func (h *ConversationHandler) Get(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid id"))
	}
	user := appmw.CurrentUser(c)
	conv, err := h.svc.Get(c.Request().Context(), id, user.ID)
	if err != nil {
		return serviceError(c, err, "failed to fetch conversation")
	}
	return c.JSON(http.StatusOK, conv)
}

func (h *ConversationHandler) ListMessages(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid id"))
	}
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	offset, _ := strconv.Atoi(c.QueryParam("offset"))
	user := appmw.CurrentUser(c)
	msgs, err := h.svc.ListMessages(c.Request().Context(), id, user.ID, limit, offset)
	if err != nil {
		return serviceError(c, err, "failed to fetch messages")
	}
	return c.JSON(http.StatusOK, map[string]any{"messages": msgs})
}
