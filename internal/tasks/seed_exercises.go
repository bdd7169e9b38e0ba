package tasks

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/mikestefanello/backlite"
)

// SeedExercisesQueue is the queue name of SeedExercisesTask.
const SeedExercisesQueue = "seed_exercises"

// ExerciseSeeder loads the default exercise library. Implemented by *exercises.Repository.
type ExerciseSeeder interface {
	Seed(ctx context.Context) (int, error)
}

// SeedExercisesTask adds any missing default exercises to the library.
type SeedExercisesTask struct{}

func (t SeedExercisesTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        SeedExercisesQueue,
		MaxAttempts: 1,
		Backoff:     time.Minute,
		Timeout:     time.Minute,
		Retention: &backlite.Retention{
			Duration: 24 * time.Hour,
			Data:     &backlite.RetainData{OnlyFailed: true},
		},
	}
}

// SeedExercisesProcessor returns the processor for SeedExercisesTask.
func SeedExercisesProcessor(seeder ExerciseSeeder) backlite.QueueProcessor[SeedExercisesTask] {
	return func(ctx context.Context, _ SeedExercisesTask) error {
		if seeder == nil {
			return fmt.Errorf("exercise seeder not configured")
		}

		created, err := seeder.Seed(ctx)
		if err != nil {
			return fmt.Errorf("seed exercises: %w", err)
		}

		log.Printf("[TASK] Seeded %d exercises", created)
		return nil
	}
}

func NewSeedExercisesQueue(seeder ExerciseSeeder) backlite.Queue {
	return backlite.NewQueue(SeedExercisesProcessor(seeder))
}
