package server

import (
	"net/http"
	"net/url"
	"strings"

	"cloud.google.com/go/storage"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"gorm.io/gorm"

	"github.com/fixlater/fixlater-backend/internal/auth"
	"github.com/fixlater/fixlater-backend/internal/config"
	"github.com/fixlater/fixlater-backend/internal/geocode"
	"github.com/fixlater/fixlater-backend/internal/handler"
	appmw "github.com/fixlater/fixlater-backend/internal/middleware"
	"github.com/fixlater/fixlater-backend/internal/model"
	"github.com/fixlater/fixlater-backend/internal/realtime"
	"github.com/fixlater/fixlater-backend/internal/repository"
	"github.com/fixlater/fixlater-backend/internal/service"
	"github.com/fixlater/fixlater-backend/internal/upload"
)

type Server struct {
	e   *echo.Echo
	hub *realtime.Hub
}

// New wires the whole application. storageClient may be nil, in which
// case the upload endpoints are not registered.
func New(db *gorm.DB, cfg *config.Config, tokens *auth.TokenManager, storageClient *storage.Client) *Server {
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())
	e.Use(middleware.Logger())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
		AllowOriginFunc:  allowOrigin(cfg.ClientURL),
	}))

	userRepo := repository.NewUserRepository(db)
	taskRepo := repository.NewTaskRepository(db)
	appRepo := repository.NewApplicationRepository(db)
	reviewRepo := repository.NewReviewRepository(db)
	convRepo := repository.NewConversationRepository(db)
	notifRepo := repository.NewNotificationRepository(db)

	notifSvc := service.NewNotificationService(notifRepo)
	authSvc := service.NewAuthService(userRepo, tokens, cfg.ClientURL)
	taskSvc := service.NewTaskService(taskRepo, appRepo, geocode.NewClient(cfg.NominatimURL), geocode.DistanceKm)
	appSvc := service.NewApplicationService(appRepo, taskRepo, notifSvc)
	reviewSvc := service.NewReviewService(reviewRepo, taskRepo, userRepo)
	userSvc := service.NewUserService(userRepo)
	convSvc := service.NewConversationService(convRepo, taskRepo, userRepo)

	authH := handler.NewAuthHandler(authSvc)
	taskH := handler.NewTaskHandler(taskSvc)
	appH := handler.NewApplicationHandler(appSvc)
	reviewH := handler.NewReviewHandler(reviewSvc)
	userH := handler.NewUserHandler(userSvc)
	convH := handler.NewConversationHandler(convSvc)
	notifH := handler.NewNotificationHandler(notifSvc)

	authMw := appmw.NewAuthMiddleware(tokens, userRepo)

	hub := realtime.NewHub()
	gateway := realtime.NewGateway(hub, tokens, convSvc, notifSvc)

	e.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})
	e.GET("/ws", gateway.Handle)

	api := e.Group("/api")

	api.POST("/auth/register", authH.Register)
	api.POST("/auth/login", authH.Login)
	api.GET("/auth/me", authH.Me, authMw.RequireAuth)
	api.POST("/auth/request-password-reset", authH.RequestPasswordReset)
	api.POST("/auth/reset-password", authH.ResetPassword)

	api.GET("/tasks", taskH.List)
	api.GET("/tasks/saved", taskH.ListSaved, authMw.RequireAuth)
	api.GET("/tasks/:id", taskH.Get, authMw.OptionalAuth)
	api.POST("/tasks", taskH.Create, authMw.RequireAuth, appmw.RequireUserType(model.UserTypeRequester, model.UserTypeProvider))
	api.PATCH("/tasks/:id", taskH.Patch, authMw.RequireAuth)
	api.POST("/tasks/:id/save", taskH.Save, authMw.RequireAuth)
	api.DELETE("/tasks/:id/save", taskH.Unsave, authMw.RequireAuth)

	api.GET("/applications", appH.List, authMw.RequireAuth)
	api.POST("/applications", appH.Apply, authMw.RequireAuth, appmw.RequireUserType(model.UserTypeProvider))
	api.PATCH("/applications/:id", appH.Decide, authMw.RequireAuth)
	api.DELETE("/applications/:id", appH.Withdraw, authMw.RequireAuth, appmw.RequireUserType(model.UserTypeProvider))

	api.POST("/reviews", reviewH.Create, authMw.RequireAuth)
	api.GET("/reviews/provider/:provider_id", reviewH.ListByProvider)
	api.GET("/providers", reviewH.ListProviders)

	api.GET("/users/:id", userH.Get)
	api.PATCH("/users/:id", userH.Update, authMw.RequireAuth)
	api.PATCH("/users/:id/password", userH.ChangePassword, authMw.RequireAuth)

	api.POST("/messages/conversation", convH.Create, authMw.RequireAuth)
	api.GET("/messages/conversations", convH.List, authMw.RequireAuth)
	api.GET("/messages/conversation/:id", convH.Get, authMw.RequireAuth)
	api.GET("/messages/conversation/:id/messages", convH.ListMessages, authMw.RequireAuth)

	api.GET("/notifications", notifH.List, authMw.RequireAuth)
	api.PATCH("/notifications/read-all", notifH.MarkAllRead, authMw.RequireAuth)
	api.PATCH("/notifications/:id/read", notifH.MarkRead, authMw.RequireAuth)

	if storageClient != nil && cfg.StorageBucket != "" {
		uploadH := handler.NewUploadHandler(upload.NewUploader(storageClient, cfg.StorageBucket))
		api.POST("/upload/image", uploadH.UploadImage, authMw.RequireAuth)
		api.POST("/upload/images", uploadH.UploadImages, authMw.RequireAuth)
	}

	return &Server{e: e, hub: hub}
}

func (s *Server) Start(addr string) error {
	return s.e.Start(addr)
}

// Shutdown closes every websocket before stopping the listener.
func (s *Server) Shutdown() {
	s.hub.Close()
	_ = s.e.Close()
}

func allowOrigin(clientURL string) func(string) (bool, error) {
	return func(origin string) (bool, error) {
		low := strings.ToLower(origin)
		if strings.HasPrefix(low, "http://localhost:") || strings.HasPrefix(low, "http://127.0.0.1:") ||
			strings.HasPrefix(low, "https://localhost:") || strings.HasPrefix(low, "https://127.0.0.1:") {
			return true, nil
		}
		if clientURL != "" && strings.EqualFold(strings.TrimSuffix(clientURL, "/"), strings.TrimSuffix(origin, "/")) {
			return true, nil
		}
		u, err := url.Parse(origin)
		if err != nil {
			return false, nil
		}
		if u.Scheme != "http" && u.Scheme != "https" {
			return false, nil
		}
		return strings.HasSuffix(u.Hostname(), "vercel.app"), nil
	}
}
