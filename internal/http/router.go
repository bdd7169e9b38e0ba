package http

import (
	"github.com/gin-gonic/gin"

	"github.com/mrlokans/liftlog/internal/auth"
	"github.com/mrlokans/liftlog/internal/config"
)

// Router bundles the engine with controllers that own background resources.
type Router struct {
	*gin.Engine
	authController *auth.AuthController
}

// Close releases background resources held by controllers.
func (r *Router) Close() {
	if r.authController != nil {
		r.authController.Stop()
	}
}

// NewRouter creates and configures the HTTP router with all endpoints.
func NewRouter(cfg RouterConfig) *Router {
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	// Apply security headers to all responses
	router.Use(auth.SecurityHeadersMiddleware())
	router.Use(auth.StrictTransportSecurityMiddleware())

	localAuth := cfg.AuthConfig.Mode == config.AuthModeLocal && cfg.AuthService != nil

	if cfg.SessionManager != nil {
		router.Use(cfg.SessionManager.SessionLoadSave())
	}

	// Only cookie sessions need CSRF protection
	if localAuth && len(cfg.CSRFSecret) > 0 {
		router.Use(auth.CSRFMiddleware(cfg.CSRFSecret, cfg.SecureCookies, cfg.AuthService))
	}

	middleware := cfg.AuthMiddleware
	if middleware == nil {
		middleware = auth.NewMiddleware(cfg.AuthService, cfg.SessionManager, cfg.AuthConfig)
	}
	router.Use(middleware.Handler())

	result := &Router{Engine: router}

	// Health endpoints
	var pinger Pinger
	if cfg.Database != nil {
		pinger = cfg.Database
	}
	health := NewHealthController(pinger, cfg.Version)
	if cfg.TaskClient != nil {
		health.WithQueue(cfg.TaskClient)
	}
	router.GET("/health", health.Status)
	router.GET("/ping", Ping)

	// Auth endpoints
	router.GET("/api/auth/me", auth.Me)
	if localAuth {
		authController := auth.NewAuthController(cfg.AuthService, cfg.SessionManager, cfg.Auditor, cfg.AuthConfig)
		authController.RegisterRoutes(router)
		result.authController = authController

		tokenController := auth.NewAPITokenController(cfg.AuthService, cfg.Auditor)
		router.POST("/api/auth/token", tokenController.GenerateToken)
		router.DELETE("/api/auth/token", tokenController.RevokeToken)

		profileController := NewProfileController(cfg.AuthService, cfg.Auditor)
		router.POST("/api/profile/password", profileController.ChangePassword)
	}

	// Workout endpoints
	if cfg.Workouts != nil {
		NewWorkoutsController(cfg.Workouts, cfg.Auditor).RegisterRoutes(router)
	}
	if cfg.Calendar != nil {
		calendar := NewCalendarController(cfg.Calendar)
		router.GET("/api/calendar", calendar.GetDates)
	}

	// Exercise library endpoints
	if cfg.Exercises != nil {
		NewExercisesController(cfg.Exercises, cfg.Auditor).RegisterRoutes(router)
	}

	// Audit endpoints
	auditController := NewAuditController(cfg.Auditor)
	router.GET("/api/audit", auditController.GetAuditEvents)
	router.GET("/api/workouts/:id/history", auditController.GetWorkoutHistory)

	// Task management endpoints
	if cfg.TaskClient != nil {
		NewTasksController(cfg.TaskClient, cfg.AuditRetentionDays).RegisterRoutes(router)
	}

	return result
}
