package api

import (
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/adboard/board-api/docs"
	"github.com/adboard/board-api/internal/api/handler"
	"github.com/adboard/board-api/internal/api/metrics"
	"github.com/adboard/board-api/internal/api/middleware"
	"github.com/adboard/board-api/internal/core/domain"
	"github.com/adboard/board-api/internal/core/ports"
)

// Dependencies are the services and probes the router wires into handlers.
type Dependencies struct {
	Auth           ports.AuthService
	Users          ports.UserService
	Advertisements ports.AdvertisementService
	Comments       ports.CommentService
	// Readiness maps a dependency name to its ping for /health/ready.
	Readiness map[string]handler.PingFunc
	Log       zerolog.Logger
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Dependencies) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(metrics.Middleware())

	authHandler := handler.NewAuthHandler(deps.Auth)
	userHandler := handler.NewUserHandler(deps.Users)
	advHandler := handler.NewAdvertisementHandler(deps.Advertisements)
	commentHandler := handler.NewCommentHandler(deps.Comments)
	requireAuth := middleware.Auth(deps.Auth)

	// --- Auth routes ---
	e.POST("/auth/register", authHandler.Register)
	e.POST("/auth/login", authHandler.Login)

	v1 := e.Group("/v1")

	// --- Users ---
	users := v1.Group("/users", requireAuth)
	users.GET("/me", userHandler.Me)
	users.PUT("/me", userHandler.UpdateMe)
	users.DELETE("/me", userHandler.DeleteMe)
	users.GET("", userHandler.List, middleware.RBAC(domain.RoleAdmin, domain.RoleModerator))
	users.PATCH("/:username", userHandler.AdminUpdate, middleware.RBAC(domain.RoleAdmin))
	users.DELETE("/:username", userHandler.AdminDelete, middleware.RBAC(domain.RoleAdmin))

	// --- Advertisements and comments; reads are public ---
	ads := v1.Group("/advertisements")
	ads.GET("", advHandler.List)
	ads.GET("/:id", advHandler.Get)
	ads.POST("", advHandler.Create, requireAuth)
	ads.PUT("/:id", advHandler.Update, requireAuth)
	ads.DELETE("/:id", advHandler.Delete, requireAuth)

	ads.GET("/:id/comments", commentHandler.List)
	ads.POST("/:id/comments", commentHandler.Create, requireAuth)
	ads.PUT("/:id/comments/:comment_id", commentHandler.Update, requireAuth)
	ads.DELETE("/:id/comments/:comment_id", commentHandler.Delete, requireAuth)

	// --- Health probes, metrics and docs (no auth required) ---
	e.GET("/health", handler.NewHealthHandler().Liveness)
	e.GET("/health/ready", handler.NewReadinessHandler(deps.Readiness).Readiness)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	return e
}
