// Package workouts is the only access path to workout data.
//
// Every method takes the caller's user ID explicitly and scopes its query
// with user_id = caller. A workout that exists but belongs to somebody
// else is reported exactly like one that does not exist (ErrNotFound).
//
// # Usage
//
//	repo := workouts.NewRepository(db)
//	list, err := repo.GetWorkoutsByDate(ctx, userID, civil.MustParse("2026-01-27"))
//
// Reads return fully materialized values: each workout carries its
// exercises ordered by position, and each exercise carries its library
// entry and its sets ordered by set number.
package workouts

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/mrlokans/liftlog/internal/civil"
	"github.com/mrlokans/liftlog/internal/entities"
)

// NewWorkout holds the fields for CreateWorkout.
type NewWorkout struct {
	Name *string
	Date civil.Date
}

// WorkoutUpdate holds optional fields for UpdateWorkout. Nil fields are left unchanged.
type WorkoutUpdate struct {
	Name *string
	Date *civil.Date
}

// NewWorkoutExercise holds the fields for AddExercise.
// A nil Order appends the exercise after the current last one.
type NewWorkoutExercise struct {
	ExerciseID string
	Order      *int
	Notes      *string
}

// NewSet holds the fields for AddSet.
// A nil SetNumber appends after the current last set; an empty Unit means kg.
type NewSet struct {
	SetNumber *int
	Reps      int
	Weight    decimal.Decimal
	Unit      string
	RPE       *int
	Notes     *string
}

// Repository handles all workout database operations.
type Repository struct {
	db  *gorm.DB
	now func() time.Time
}

// NewRepository creates a new workouts repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		db:  db,
		now: func() time.Time { return time.Now().UTC() },
	}
}

// WithClock replaces the timestamp source. Used by tests to pin created_at ordering.
func (r *Repository) WithClock(now func() time.Time) *Repository {
	r.now = now
	return r
}

// withDetails eager-loads the nested exercise and set view.
func withDetails(db *gorm.DB) *gorm.DB {
	return db.
		Preload("WorkoutExercises", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		Preload("WorkoutExercises.Exercise").
		Preload("WorkoutExercises.Sets", func(db *gorm.DB) *gorm.DB {
			return db.Order("set_number ASC")
		})
}

// GetWorkoutsByDate returns the caller's workouts on date, newest first.
// No workouts is an empty slice, not an error.
func (r *Repository) GetWorkoutsByDate(ctx context.Context, callerID string, date civil.Date) ([]entities.Workout, error) {
	if callerID == "" {
		return nil, ErrUnauthorized
	}
	if err := checkDate(date); err != nil {
		return nil, err
	}

	workouts := []entities.Workout{}
	err := withDetails(r.db.WithContext(ctx)).
		Where("user_id = ? AND date = ?", callerID, date).
		Order("created_at DESC").
		Find(&workouts).Error
	if err != nil {
		return nil, wrapStorage("get workouts by date", err)
	}
	return workouts, nil
}

// GetWorkoutByID returns one of the caller's workouts with its details.
func (r *Repository) GetWorkoutByID(ctx context.Context, callerID, id string) (*entities.Workout, error) {
	if callerID == "" {
		return nil, ErrUnauthorized
	}

	var workout entities.Workout
	err := withDetails(r.db.WithContext(ctx)).
		Where("id = ? AND user_id = ?", id, callerID).
		First(&workout).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, wrapStorage("get workout", err)
	}
	return &workout, nil
}

// CreateWorkout inserts a workout owned by callerID.
func (r *Repository) CreateWorkout(ctx context.Context, callerID string, in NewWorkout) (*entities.Workout, error) {
	if callerID == "" {
		return nil, ErrUnauthorized
	}
	if err := checkDate(in.Date); err != nil {
		return nil, err
	}

	now := r.now()
	workout := &entities.Workout{
		UserID:           callerID,
		Name:             normalizeText(in.Name),
		Date:             in.Date,
		CreatedAt:        now,
		UpdatedAt:        now,
		WorkoutExercises: []entities.WorkoutExercise{},
	}
	if err := r.db.WithContext(ctx).Create(workout).Error; err != nil {
		return nil, wrapStorage("create workout", err)
	}
	return workout, nil
}

// UpdateWorkout changes name and/or date of one of the caller's workouts.
// Zero matching rows, whether absent or foreign, is ErrNotFound and nothing is written.
func (r *Repository) UpdateWorkout(ctx context.Context, callerID, id string, upd WorkoutUpdate) (*entities.Workout, error) {
	if callerID == "" {
		return nil, ErrUnauthorized
	}

	updates := map[string]any{"updated_at": r.now()}
	if upd.Name != nil {
		if name := normalizeText(upd.Name); name != nil {
			updates["name"] = *name
		} else {
			updates["name"] = nil
		}
	}
	if upd.Date != nil {
		if err := checkDate(*upd.Date); err != nil {
			return nil, err
		}
		updates["date"] = *upd.Date
	}

	result := r.db.WithContext(ctx).
		Model(&entities.Workout{}).
		Where("id = ? AND user_id = ?", id, callerID).
		Updates(updates)
	if result.Error != nil {
		return nil, wrapStorage("update workout", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, ErrNotFound
	}

	return r.GetWorkoutByID(ctx, callerID, id)
}

// DeleteWorkout removes one of the caller's workouts together with its
// exercises and sets.
func (r *Repository) DeleteWorkout(ctx context.Context, callerID, id string) error {
	if callerID == "" {
		return ErrUnauthorized
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := requireOwnedWorkout(tx, callerID, id); err != nil {
			return err
		}

		entries := tx.Model(&entities.WorkoutExercise{}).Select("id").Where("workout_id = ?", id)
		if err := tx.Where("workout_exercise_id IN (?)", entries).Delete(&entities.Set{}).Error; err != nil {
			return err
		}
		if err := tx.Where("workout_id = ?", id).Delete(&entities.WorkoutExercise{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ? AND user_id = ?", id, callerID).Delete(&entities.Workout{}).Error
	})
	return wrapStorage("delete workout", err)
}

// AddExercise appends an exercise from the library to one of the caller's workouts.
func (r *Repository) AddExercise(ctx context.Context, callerID, workoutID string, in NewWorkoutExercise) (*entities.WorkoutExercise, error) {
	if callerID == "" {
		return nil, ErrUnauthorized
	}

	var entryID string
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := requireOwnedWorkout(tx, callerID, workoutID); err != nil {
			return err
		}

		var exerciseCount int64
		if err := tx.Model(&entities.Exercise{}).Where("id = ?", in.ExerciseID).Count(&exerciseCount).Error; err != nil {
			return err
		}
		if exerciseCount == 0 {
			return ErrExerciseNotFound
		}

		order, err := nextValue(tx, &entities.WorkoutExercise{}, "position", "workout_id = ?", workoutID, in.Order, ErrOrderConflict)
		if err != nil {
			return err
		}

		entry := &entities.WorkoutExercise{
			WorkoutID:  workoutID,
			ExerciseID: in.ExerciseID,
			Order:      order,
			Notes:      normalizeText(in.Notes),
			CreatedAt:  r.now(),
		}
		if err := tx.Omit("Exercise", "Sets").Create(entry).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrOrderConflict
			}
			return err
		}
		entryID = entry.ID

		return r.touch(tx, workoutID)
	})
	if err != nil {
		return nil, wrapStorage("add exercise", err)
	}

	return r.getEntry(ctx, workoutID, entryID)
}

// RemoveExercise deletes an exercise entry and its sets from one of the caller's workouts.
func (r *Repository) RemoveExercise(ctx context.Context, callerID, workoutID, entryID string) error {
	if callerID == "" {
		return ErrUnauthorized
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := requireOwnedWorkout(tx, callerID, workoutID); err != nil {
			return err
		}

		if err := tx.Where("workout_exercise_id = ?", entryID).Delete(&entities.Set{}).Error; err != nil {
			return err
		}
		result := tx.Where("id = ? AND workout_id = ?", entryID, workoutID).Delete(&entities.WorkoutExercise{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrEntryNotFound
		}

		return r.touch(tx, workoutID)
	})
	return wrapStorage("remove exercise", err)
}

// AddSet records a set against an exercise entry of one of the caller's workouts.
func (r *Repository) AddSet(ctx context.Context, callerID, workoutID, entryID string, in NewSet) (*entities.Set, error) {
	if callerID == "" {
		return nil, ErrUnauthorized
	}

	var set *entities.Set
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := requireOwnedWorkout(tx, callerID, workoutID); err != nil {
			return err
		}

		var entryCount int64
		if err := tx.Model(&entities.WorkoutExercise{}).Where("id = ? AND workout_id = ?", entryID, workoutID).Count(&entryCount).Error; err != nil {
			return err
		}
		if entryCount == 0 {
			return ErrEntryNotFound
		}

		number, err := nextValue(tx, &entities.Set{}, "set_number", "workout_exercise_id = ?", entryID, in.SetNumber, ErrSetNumberConflict)
		if err != nil {
			return err
		}

		unit := strings.TrimSpace(in.Unit)
		if unit == "" {
			unit = entities.DefaultUnit
		}

		set = &entities.Set{
			WorkoutExerciseID: entryID,
			SetNumber:         number,
			Reps:              in.Reps,
			Weight:            in.Weight,
			Unit:              unit,
			RPE:               in.RPE,
			Notes:             normalizeText(in.Notes),
			CreatedAt:         r.now(),
		}
		if err := tx.Create(set).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrSetNumberConflict
			}
			return err
		}

		return r.touch(tx, workoutID)
	})
	if err != nil {
		return nil, wrapStorage("add set", err)
	}
	return set, nil
}

// DeleteSet removes a set from one of the caller's workouts.
func (r *Repository) DeleteSet(ctx context.Context, callerID, workoutID, setID string) error {
	if callerID == "" {
		return ErrUnauthorized
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := requireOwnedWorkout(tx, callerID, workoutID); err != nil {
			return err
		}

		entries := tx.Model(&entities.WorkoutExercise{}).Select("id").Where("workout_id = ?", workoutID)
		result := tx.Where("id = ? AND workout_exercise_id IN (?)", setID, entries).Delete(&entities.Set{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrSetNotFound
		}

		return r.touch(tx, workoutID)
	})
	return wrapStorage("delete set", err)
}

// ListDates returns the distinct dates in [from, to] on which the caller logged a workout.
func (r *Repository) ListDates(ctx context.Context, callerID string, from, to civil.Date) ([]civil.Date, error) {
	if callerID == "" {
		return nil, ErrUnauthorized
	}
	if err := checkDate(from); err != nil {
		return nil, err
	}
	if err := checkDate(to); err != nil {
		return nil, err
	}
	if to.Before(from) {
		return nil, ErrInvalidRange
	}

	dates := []civil.Date{}
	err := r.db.WithContext(ctx).
		Model(&entities.Workout{}).
		Where("user_id = ? AND date >= ? AND date <= ?", callerID, from, to).
		Distinct().
		Order("date ASC").
		Pluck("date", &dates).Error
	if err != nil {
		return nil, wrapStorage("list dates", err)
	}
	return dates, nil
}

func (r *Repository) getEntry(ctx context.Context, workoutID, entryID string) (*entities.WorkoutExercise, error) {
	var entry entities.WorkoutExercise
	err := r.db.WithContext(ctx).
		Preload("Exercise").
		Preload("Sets", func(db *gorm.DB) *gorm.DB {
			return db.Order("set_number ASC")
		}).
		Where("id = ? AND workout_id = ?", entryID, workoutID).
		First(&entry).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEntryNotFound
		}
		return nil, wrapStorage("get workout exercise", err)
	}
	return &entry, nil
}

// touch bumps the parent workout's updated_at after a child change.
func (r *Repository) touch(tx *gorm.DB, workoutID string) error {
	return tx.Model(&entities.Workout{}).Where("id = ?", workoutID).Update("updated_at", r.now()).Error
}

func requireOwnedWorkout(tx *gorm.DB, callerID, workoutID string) error {
	var count int64
	if err := tx.Model(&entities.Workout{}).Where("id = ? AND user_id = ?", workoutID, callerID).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return ErrNotFound
	}
	return nil
}

// nextValue returns the requested position/number after checking it is
// free within the parent scope, or max+1 when none was requested.
func nextValue(tx *gorm.DB, model any, column, scope string, parentID string, requested *int, conflict error) (int, error) {
	if requested != nil {
		var taken int64
		if err := tx.Model(model).Where(scope, parentID).Where(column+" = ?", *requested).Count(&taken).Error; err != nil {
			return 0, err
		}
		if taken > 0 {
			return 0, conflict
		}
		return *requested, nil
	}

	var current int
	if err := tx.Model(model).Where(scope, parentID).Select("COALESCE(MAX(" + column + "), 0)").Scan(&current).Error; err != nil {
		return 0, err
	}
	return current + 1, nil
}

// normalizeText trims optional text and maps blank to NULL.
func normalizeText(s *string) *string {
	if s == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*s)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
