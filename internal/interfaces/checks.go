package interfaces

// This file contains compile-time interface implementation checks.
// These ensure that concrete types satisfy their interfaces at compile time,
// catching missing methods before runtime.
//
// To verify all checks pass: go build ./internal/interfaces/...

import (
	"github.com/mrlokans/liftlog/internal/audit"
	"github.com/mrlokans/liftlog/internal/auth"
	"github.com/mrlokans/liftlog/internal/database"
	"github.com/mrlokans/liftlog/internal/database/exercises"
	"github.com/mrlokans/liftlog/internal/database/users"
	"github.com/mrlokans/liftlog/internal/database/workouts"
	"github.com/mrlokans/liftlog/internal/http"
	"github.com/mrlokans/liftlog/internal/scheduler"
	"github.com/mrlokans/liftlog/internal/tasks"
)

// =============================================================================
// Data Access Layer
// =============================================================================

// WorkoutStore / CalendarStore implementations
var _ http.WorkoutStore = (*workouts.Repository)(nil)
var _ http.CalendarStore = (*workouts.Repository)(nil)

// ExerciseStore implementations
var _ http.ExerciseStore = (*exercises.Repository)(nil)

// UserStore implementations
var _ auth.UserStore = (*users.Repository)(nil)

// Pinger implementations
var _ http.Pinger = (*database.Database)(nil)

// =============================================================================
// Audit Trail
// =============================================================================

var _ http.AuditReader = (*audit.Service)(nil)
var _ http.AuditWriter = (*audit.Service)(nil)
var _ http.AuthEventLogger = (*audit.Service)(nil)
var _ tasks.AuditEventCleaner = (*audit.Service)(nil)

// =============================================================================
// Authentication
// =============================================================================

var _ http.PasswordChanger = (*auth.Service)(nil)
var _ auth.TokenValidator = (*auth.Service)(nil)

// =============================================================================
// Background Tasks
// =============================================================================

var _ http.TaskRunner = (*tasks.Client)(nil)
var _ http.QueueState = (*tasks.Client)(nil)
var _ scheduler.Enqueuer = (*tasks.Client)(nil)
var _ tasks.ExerciseSeeder = (*exercises.Repository)(nil)
