package entities

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/mrlokans/liftlog/internal/civil"
)

// DefaultUnit is the weight unit recorded when a set does not name one.
const DefaultUnit = "kg"

// Exercise is an entry in the shared exercise library.
type Exercise struct {
	ID        string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	Name      string    `gorm:"uniqueIndex;size:255;not null" json:"name"`
	Category  *string   `gorm:"size:100" json:"category,omitempty"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`

	WorkoutExercises []WorkoutExercise `gorm:"foreignKey:ExerciseID;constraint:OnDelete:CASCADE" json:"-"`
}

// Workout is a training session owned by exactly one user.
type Workout struct {
	ID        string     `gorm:"primaryKey;type:varchar(36)" json:"id"`
	UserID    string     `gorm:"index:idx_workouts_user_date,priority:1;size:255;not null" json:"user_id"`
	Name      *string    `gorm:"size:255" json:"name"`
	Date      civil.Date `gorm:"index:idx_workouts_user_date,priority:2;not null" json:"date"`
	CreatedAt time.Time  `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time  `gorm:"not null" json:"updated_at"`

	WorkoutExercises []WorkoutExercise `gorm:"foreignKey:WorkoutID;constraint:OnDelete:CASCADE" json:"workout_exercises"`
}

// WorkoutExercise places an exercise at a position inside a workout.
type WorkoutExercise struct {
	ID         string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	WorkoutID  string    `gorm:"uniqueIndex:idx_workout_exercises_position,priority:1;type:varchar(36);not null" json:"workout_id"`
	ExerciseID string    `gorm:"index;type:varchar(36);not null" json:"exercise_id"`
	Order      int       `gorm:"column:position;uniqueIndex:idx_workout_exercises_position,priority:2;not null" json:"order"`
	Notes      *string   `gorm:"type:text" json:"notes,omitempty"`
	CreatedAt  time.Time `gorm:"not null" json:"created_at"`

	Exercise Exercise `gorm:"foreignKey:ExerciseID" json:"exercise"`
	Sets     []Set    `gorm:"foreignKey:WorkoutExerciseID;constraint:OnDelete:CASCADE" json:"sets"`
}

// Set is one set of an exercise performed during a workout.
type Set struct {
	ID                string          `gorm:"primaryKey;type:varchar(36)" json:"id"`
	WorkoutExerciseID string          `gorm:"uniqueIndex:idx_sets_number,priority:1;type:varchar(36);not null" json:"workout_exercise_id"`
	SetNumber         int             `gorm:"uniqueIndex:idx_sets_number,priority:2;not null" json:"set_number"`
	Reps              int             `gorm:"not null" json:"reps"`
	Weight            decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"weight"`
	Unit              string          `gorm:"size:10;not null;default:'kg'" json:"unit"`
	RPE               *int            `gorm:"column:rpe" json:"rpe,omitempty"`
	Notes             *string         `gorm:"type:text" json:"notes,omitempty"`
	CreatedAt         time.Time       `gorm:"not null" json:"created_at"`
}

func (Exercise) TableName() string {
	return "exercises"
}

func (Workout) TableName() string {
	return "workouts"
}

func (WorkoutExercise) TableName() string {
	return "workout_exercises"
}

func (Set) TableName() string {
	return "sets"
}

func (e *Exercise) BeforeCreate(tx *gorm.DB) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	return nil
}

func (w *Workout) BeforeCreate(tx *gorm.DB) error {
	if w.ID == "" {
		w.ID = uuid.NewString()
	}
	return nil
}

func (we *WorkoutExercise) BeforeCreate(tx *gorm.DB) error {
	if we.ID == "" {
		we.ID = uuid.NewString()
	}
	return nil
}

func (s *Set) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	if s.Unit == "" {
		s.Unit = DefaultUnit
	}
	return nil
}

// DisplayName returns the workout name or a fallback for unnamed sessions.
func (w Workout) DisplayName() string {
	if w.Name == nil || *w.Name == "" {
		return "Workout"
	}
	return *w.Name
}
