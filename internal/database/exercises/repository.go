// Package exercises manages the shared exercise library.
//
// Exercises are master data: they are not owned by a user and are
// referenced by workout entries. Deleting an exercise removes every
// workout entry and set that used it.
package exercises

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/mrlokans/liftlog/internal/entities"
)

var (
	ErrNotFound       = errors.New("exercise not found")
	ErrExerciseExists = errors.New("exercise with this name already exists")
	ErrNameRequired   = errors.New("exercise name is required")
)

// DefaultLibrary is loaded by Seed.
var DefaultLibrary = []struct {
	Name     string
	Category string
}{
	{"Barbell Bench Press", "Chest"},
	{"Barbell Squat", "Legs"},
	{"Deadlift", "Back"},
	{"Overhead Press", "Shoulders"},
	{"Barbell Row", "Back"},
	{"Lat Pulldown", "Back"},
	{"Leg Press", "Legs"},
	{"Dumbbell Curl", "Arms"},
}

// Repository handles exercise library operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new exercises repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// ListExercises returns the whole library ordered by name.
func (r *Repository) ListExercises(ctx context.Context) ([]entities.Exercise, error) {
	exercises := []entities.Exercise{}
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&exercises).Error; err != nil {
		return nil, fmt.Errorf("failed to list exercises: %w", err)
	}
	return exercises, nil
}

func (r *Repository) GetExerciseByID(ctx context.Context, id string) (*entities.Exercise, error) {
	var exercise entities.Exercise
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&exercise).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get exercise: %w", err)
	}
	return &exercise, nil
}

func (r *Repository) GetExerciseByName(ctx context.Context, name string) (*entities.Exercise, error) {
	var exercise entities.Exercise
	if err := r.db.WithContext(ctx).Where("name = ?", strings.TrimSpace(name)).First(&exercise).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get exercise: %w", err)
	}
	return &exercise, nil
}

// CreateExercise adds a library entry. Names are unique.
func (r *Repository) CreateExercise(ctx context.Context, name string, category *string) (*entities.Exercise, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrNameRequired
	}

	var count int64
	if err := r.db.WithContext(ctx).Model(&entities.Exercise{}).Where("name = ?", name).Count(&count).Error; err != nil {
		return nil, fmt.Errorf("failed to check exercise name: %w", err)
	}
	if count > 0 {
		return nil, ErrExerciseExists
	}

	exercise := &entities.Exercise{
		Name:      name,
		Category:  normalizeCategory(category),
		CreatedAt: time.Now().UTC(),
	}
	if err := r.db.WithContext(ctx).Create(exercise).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrExerciseExists
		}
		return nil, fmt.Errorf("failed to create exercise: %w", err)
	}
	return exercise, nil
}

// GetOrCreateExercise returns the entry named name, creating it when missing.
func (r *Repository) GetOrCreateExercise(ctx context.Context, name string, category *string) (*entities.Exercise, error) {
	existing, err := r.GetExerciseByName(ctx, name)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	created, err := r.CreateExercise(ctx, name, category)
	if errors.Is(err, ErrExerciseExists) {
		// Lost a race with another writer.
		return r.GetExerciseByName(ctx, name)
	}
	return created, err
}

// DeleteExercise removes an entry along with the workout entries and sets that reference it.
func (r *Repository) DeleteExercise(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		entries := tx.Model(&entities.WorkoutExercise{}).Select("id").Where("exercise_id = ?", id)
		if err := tx.Where("workout_exercise_id IN (?)", entries).Delete(&entities.Set{}).Error; err != nil {
			return fmt.Errorf("failed to delete sets: %w", err)
		}
		if err := tx.Where("exercise_id = ?", id).Delete(&entities.WorkoutExercise{}).Error; err != nil {
			return fmt.Errorf("failed to delete workout exercises: %w", err)
		}

		result := tx.Where("id = ?", id).Delete(&entities.Exercise{})
		if result.Error != nil {
			return fmt.Errorf("failed to delete exercise: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}

// Seed inserts the default library. Existing names are left alone, so it is safe to rerun.
func (r *Repository) Seed(ctx context.Context) (int, error) {
	created := 0
	for _, item := range DefaultLibrary {
		category := item.Category
		_, err := r.CreateExercise(ctx, item.Name, &category)
		if errors.Is(err, ErrExerciseExists) {
			continue
		}
		if err != nil {
			return created, fmt.Errorf("failed to seed %q: %w", item.Name, err)
		}
		created++
	}
	return created, nil
}

func normalizeCategory(category *string) *string {
	if category == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*category)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
