package workouts

import (
	"errors"
	"fmt"

	"github.com/mrlokans/liftlog/internal/civil"
)

var (
	// ErrUnauthorized means no caller identity was supplied. Always fatal to the call.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrNotFound covers both a missing workout and one owned by somebody else.
	ErrNotFound          = errors.New("workout not found")
	ErrEntryNotFound     = errors.New("workout exercise not found")
	ErrSetNotFound       = errors.New("set not found")
	ErrExerciseNotFound  = errors.New("exercise not found")
	ErrOrderConflict     = errors.New("order already used in this workout")
	ErrSetNumberConflict = errors.New("set number already used for this exercise")
	ErrInvalidRange      = errors.New("end date is before start date")
)

// StorageError wraps a failure from the underlying store. The driver error
// stays reachable through errors.Is and errors.As.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage error (%s): %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

var domainErrors = []error{
	ErrUnauthorized,
	ErrNotFound,
	ErrEntryNotFound,
	ErrSetNotFound,
	ErrExerciseNotFound,
	ErrOrderConflict,
	ErrSetNumberConflict,
	ErrInvalidRange,
	civil.ErrInvalidDate,
}

// checkDate rejects dates that cannot be stored losslessly.
func checkDate(d civil.Date) error {
	if !d.Storable() {
		return fmt.Errorf("%w: %s", civil.ErrInvalidDate, d)
	}
	return nil
}

// wrapStorage passes domain errors through and wraps everything else.
func wrapStorage(op string, err error) error {
	if err == nil {
		return nil
	}
	for _, domainErr := range domainErrors {
		if errors.Is(err, domainErr) {
			return err
		}
	}
	return &StorageError{Op: op, Err: err}
}
