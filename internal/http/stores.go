package http

import (
	"context"

	"github.com/mikestefanello/backlite"

	"github.com/mrlokans/liftlog/internal/civil"
	"github.com/mrlokans/liftlog/internal/database/workouts"
	"github.com/mrlokans/liftlog/internal/entities"
)

// This file consolidates the store interfaces used by HTTP controllers.
// Each controller depends only on the methods it calls, so tests can use
// small hand-written mocks.

// WorkoutStore is the owner-scoped workout persistence used by
// WorkoutsController. Implemented by *workouts.Repository.
type WorkoutStore interface {
	GetWorkoutsByDate(ctx context.Context, callerID string, date civil.Date) ([]entities.Workout, error)
	GetWorkoutByID(ctx context.Context, callerID, id string) (*entities.Workout, error)
	CreateWorkout(ctx context.Context, callerID string, in workouts.NewWorkout) (*entities.Workout, error)
	UpdateWorkout(ctx context.Context, callerID, id string, upd workouts.WorkoutUpdate) (*entities.Workout, error)
	DeleteWorkout(ctx context.Context, callerID, id string) error

	AddExercise(ctx context.Context, callerID, workoutID string, in workouts.NewWorkoutExercise) (*entities.WorkoutExercise, error)
	RemoveExercise(ctx context.Context, callerID, workoutID, entryID string) error
	AddSet(ctx context.Context, callerID, workoutID, entryID string, in workouts.NewSet) (*entities.Set, error)
	DeleteSet(ctx context.Context, callerID, workoutID, setID string) error
}

// CalendarStore lists the dates on which the caller trained.
type CalendarStore interface {
	ListDates(ctx context.Context, callerID string, from, to civil.Date) ([]civil.Date, error)
}

// ExerciseStore is the exercise library used by ExercisesController.
// Implemented by *exercises.Repository.
type ExerciseStore interface {
	ListExercises(ctx context.Context) ([]entities.Exercise, error)
	GetExerciseByID(ctx context.Context, id string) (*entities.Exercise, error)
	CreateExercise(ctx context.Context, name string, category *string) (*entities.Exercise, error)
}

// AuditReader is the read side of the audit log. Implemented by *audit.Service.
type AuditReader interface {
	GetEvents(userID string, eventType entities.AuditEventType, limit, offset int) ([]entities.AuditEvent, int64, error)
	GetEntityHistory(userID, entityType, entityID string) ([]entities.AuditEvent, error)
}

// AuditWriter records changes. Implemented by *audit.Service; a nil
// *audit.Service is a valid no-op writer.
type AuditWriter interface {
	LogWorkout(userID, action, workoutID, description string, err error)
	LogExercise(userID, action, exerciseID, name string)
}

// Pinger reports store connectivity. Implemented by *database.Database.
type Pinger interface {
	Ping(ctx context.Context) error
}

// TaskRunner enqueues and inspects background tasks. Implemented by *tasks.Client.
type TaskRunner interface {
	HasQueue(name string) bool
	Enqueue(ctx context.Context, task backlite.Task) (string, error)
	Status(ctx context.Context, taskID string) (string, error)
}

// PasswordChanger updates a local account password. Implemented by *auth.Service.
type PasswordChanger interface {
	ChangePassword(ctx context.Context, userID, oldPassword, newPassword string) error
}
