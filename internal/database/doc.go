// Package database provides the data access layer for the application.
//
// # Architecture
//
// The database layer is organized into domain-specific sub-packages:
//
//	database/
//	├── database.go      # Connection setup (sqlite or postgres) and migrations
//	├── workouts/        # Owner-scoped workouts, exercise entries and sets
//	├── exercises/       # Shared exercise library and default seed
//	├── users/           # Local accounts
//	└── audit/           # Audit event storage
//
// # Using Sub-packages
//
// Each sub-package provides a Repository type with domain-specific operations:
//
//	db, err := database.NewDatabase(cfg.Database)
//
//	workoutRepo := workouts.NewRepository(db.DB)
//	exerciseRepo := exercises.NewRepository(db.DB)
//
//	list, err := workoutRepo.GetWorkoutsByDate(ctx, callerID, civil.MustParse("2026-03-14"))
//
// # Interface Implementations
//
//   - workouts.Repository: implements http.WorkoutStore and http.CalendarStore
//   - exercises.Repository: implements http.ExerciseStore and tasks.ExerciseSeeder
//   - users.Repository: implements auth.UserStore
//
// # Cascades
//
// Deleting a workout removes its exercise entries and their sets. Deleting a
// library exercise removes every entry that references it, across owners.
// Both are enforced with foreign keys, so sqlite connections are opened with
// foreign key enforcement on.
package database
