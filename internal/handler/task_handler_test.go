package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/fixlater/fixlater-backend/internal/model"
	"github.com/fixlater/fixlater-backend/internal/repository"
	"github.com/fixlater/fixlater-backend/internal/service"
)

type fakeTaskService struct {
	lastFilter service.TaskListFilter
	summaries  []repository.TaskSummary
}

func (f *fakeTaskService) Create(context.Context, uint64, service.CreateTaskInput) (*model.Task, error) {
	return nil, nil
}

func (f *fakeTaskService) List(_ context.Context, filter service.TaskListFilter) ([]repository.TaskSummary, error) {
	f.lastFilter = filter
	return f.summaries, nil
}

func (f *fakeTaskService) Get(context.Context, uint64, *uint64) (*service.TaskDetail, error) {
	return nil, service.ErrNotFound
}

func (f *fakeTaskService) Patch(context.Context, uint64, uint64, service.PatchTaskInput) error {
	return nil
}

func (f *fakeTaskService) Save(context.Context, uint64, uint64) error { return nil }

func (f *fakeTaskService) Unsave(context.Context, uint64, uint64) error { return nil }

func (f *fakeTaskService) ListSaved(context.Context, uint64) ([]model.Task, error) {
	return nil, nil
}

func TestTaskListFilters(t *testing.T) {
	svc := &fakeTaskService{summaries: []repository.TaskSummary{
		{Task: model.Task{ID: 1, Title: "Fix the sink"}},
	}}
	h := NewTaskHandler(svc)

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/tasks?category=plumbing&status=assigned&min_price=10&max_price=80&lat=52.5&lng=13.4&radius=25", nil)
	rec := httptest.NewRecorder()

	if err := h.List(e.NewContext(req, rec)); err != nil {
		t.Fatalf("list: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("status=%d want %d", rec.Code, http.StatusOK)
	}

	f := svc.lastFilter
	if f.Category != "plumbing" {
		t.Fatalf("category=%q want plumbing", f.Category)
	}
	if f.Status != model.TaskStatusAssigned {
		t.Fatalf("status=%q want %q", f.Status, model.TaskStatusAssigned)
	}
	if f.MinPrice == nil || *f.MinPrice != 10 || f.MaxPrice == nil || *f.MaxPrice != 80 {
		t.Fatalf("price range not parsed: %v %v", f.MinPrice, f.MaxPrice)
	}
	if f.Lat == nil || *f.Lat != 52.5 || f.Lng == nil || *f.Lng != 13.4 {
		t.Fatalf("coordinates not parsed: %v %v", f.Lat, f.Lng)
	}
	if f.RadiusKm == nil || *f.RadiusKm != 25 {
		t.Fatalf("radius not parsed: %v", f.RadiusKm)
	}

	var body map[string][]repository.TaskSummary
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if len(body["tasks"]) != 1 || body["tasks"][0].Title != "Fix the sink" {
		t.Fatalf("unexpected body: %s", rec.Body.String())
	}
}

func TestTaskListOmitsUnsetFilters(t *testing.T) {
	svc := &fakeTaskService{}
	h := NewTaskHandler(svc)

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/tasks", nil)
	rec := httptest.NewRecorder()

	if err := h.List(e.NewContext(req, rec)); err != nil {
		t.Fatalf("list: %v", err)
	}

	f := svc.lastFilter
	if f.MinPrice != nil || f.MaxPrice != nil || f.Lat != nil || f.Lng != nil || f.RadiusKm != nil {
		t.Fatalf("unset query params must stay nil: %+v", f)
	}
	if f.Status != "" || f.Category != "" {
		t.Fatalf("unset string filters must stay empty: %+v", f)
	}
}
