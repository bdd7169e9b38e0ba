package http

import (
	"github.com/mrlokans/liftlog/internal/audit"
	"github.com/mrlokans/liftlog/internal/auth"
	"github.com/mrlokans/liftlog/internal/config"
	"github.com/mrlokans/liftlog/internal/database"
	"github.com/mrlokans/liftlog/internal/tasks"
)

// RouterConfig contains all dependencies and configuration needed
// to create the HTTP router.
type RouterConfig struct {
	// Core dependencies
	Database  *database.Database
	Workouts  WorkoutStore
	Calendar  CalendarStore
	Exercises ExerciseStore
	Auditor   *audit.Service

	// Authentication
	AuthConfig     config.Auth
	AuthService    *auth.Service
	SessionManager *auth.SessionManager
	AuthMiddleware *auth.Middleware

	// CSRF protection, enabled in local auth mode
	CSRFSecret    []byte
	SecureCookies bool

	// Task queue client (optional)
	TaskClient         *tasks.Client
	AuditRetentionDays int

	// Application info
	Version string
}
