package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	appmw "github.com/fixlater/fixlater-backend/internal/middleware"
	"github.com/fixlater/fixlater-backend/internal/service"
)

type ReviewHandler struct {
	svc service.ReviewService
}

func NewReviewHandler(svc service.ReviewService) *ReviewHandler {
	return &ReviewHandler{svc: svc}
}

func (h *ReviewHandler) Create(c echo.Context) error {
	var req service.CreateReviewInput
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid json"))
	}
	user := appmw.CurrentUser(c)
	review, err := h.svc.Create(c.Request().Context(), user, req)
	if err != nil {
		return serviceError(c, err, "failed to create review")
	}
	return c.JSON(http.StatusCreated, review)
}

func (h *ReviewHandler) ListByProvider(c echo.Context) error {
	providerID, err := parseID(c, "provider_id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid id"))
	}
	reviews, err := h.svc.ListByProvider(c.Request().Context(), providerID)
	if err != nil {
		return serviceError(c, err, "failed to fetch reviews")
	}
	return c.JSON(http.StatusOK, reviews)
}

// ListProviders is the public provider directory, with optional search and
// sort (avg_rating by default).
func (h *ReviewHandler) ListProviders(c echo.Context) error {
	providers, err := h.svc.ListProviders(c.Request().Context(), c.QueryParam("search"), c.QueryParam("sort_by"))
	if err != nil {
		return serviceError(c, err, "failed to fetch providers")
	}
	return c.JSON(http.StatusOK, map[string]any{"providers": providers})
}
