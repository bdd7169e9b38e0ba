// Package interfaces documents the core abstractions used throughout the application.
//
// # Interface Categories
//
// ## Data Access Interfaces
//
//   - WorkoutStore: Owner-scoped workouts, exercise entries and sets (internal/http/stores.go)
//   - CalendarStore: Dates with at least one workout (internal/http/stores.go)
//   - ExerciseStore: Shared exercise library (internal/http/stores.go)
//   - UserStore: Local accounts (internal/auth/service.go)
//
// ## Audit Interfaces
//
//   - AuditReader / AuditWriter: Audit trail access (internal/http/stores.go)
//   - AuditEventCleaner: Retention cleanup (internal/tasks/cleanup_audit.go)
//
// ## Background Task Interfaces
//
//   - TaskRunner: Enqueue and inspect tasks from HTTP (internal/http/stores.go)
//   - Enqueuer: Scheduled task submission (internal/scheduler/audit_cleanup.go)
//   - ExerciseSeeder: Default library loading (internal/tasks/seed_exercises.go)
//
// # Ownership
//
// Every WorkoutStore method takes the caller's identity as its first
// argument after the context. An empty identity fails with
// workouts.ErrUnauthorized before the store is touched, and a record
// owned by someone else is reported as not found.
//
// # Adding a New Background Task
//
//  1. Define the task and its queue config in internal/tasks/
//
//     type RecomputeTotalsTask struct {
//         WorkoutID string `json:"workout_id"`
//     }
//
//     func (t RecomputeTotalsTask) Config() backlite.QueueConfig {
//         return backlite.QueueConfig{Name: "recompute_totals", MaxAttempts: 3}
//     }
//
//  2. Register backlite.NewQueue(processor) in entrypoint.go
//
//  3. List the type in internal/http/tasks.go so it can be run manually
//
// # Compile-Time Interface Checks
//
// All implementations should include compile-time checks to ensure they satisfy
// their interfaces:
//
//	var _ SomeInterface = (*MyImplementation)(nil)
//
// See checks.go for examples.
package interfaces
