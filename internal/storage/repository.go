// ABOUTME: Repository interface for persisted workouts.
// ABOUTME: Defines single and batch writes, the three indexed read paths, and a full scan.
package storage

import (
	"context"
	"errors"
	"strings"

	"github.com/harperreed/liftlog/internal/models"
)

// ErrInvalidKey is returned for ids that cannot be used in a storage key.
var ErrInvalidKey = errors.New("invalid key")

// Repository defines the storage interface for workouts.
// This interface allows swapping implementations (e.g., for testing).
type Repository interface {
	// PutWorkout writes one item, replacing any item with the same key.
	PutWorkout(ctx context.Context, w *models.StoredWorkout) error
	// PutWorkouts writes all items atomically where the backend allows it.
	PutWorkouts(ctx context.Context, ws []*models.StoredWorkout) error

	// WorkoutsByUser returns every item for a user, oldest date first.
	WorkoutsByUser(ctx context.Context, userID string) ([]*models.StoredWorkout, error)
	// WorkoutsByDate returns a user's items for one calendar date.
	WorkoutsByDate(ctx context.Context, userID, date string) ([]*models.StoredWorkout, error)
	// WorkoutsByExercise returns a user's items for one exercise, newest first.
	WorkoutsByExercise(ctx context.Context, userID, exercise string) ([]*models.StoredWorkout, error)
	// AllWorkouts returns every item for every user, ordered by user then workout id.
	AllWorkouts(ctx context.Context) ([]*models.StoredWorkout, error)

	// Lifecycle
	Close() error
}

// checkItem rejects items whose key parts would corrupt index keys.
func checkItem(w *models.StoredWorkout) error {
	if w == nil {
		return errors.Join(ErrInvalidKey, errors.New("nil workout"))
	}
	if err := checkKeyPart(w.UserID); err != nil {
		return err
	}
	if err := checkKeyPart(w.WorkoutID); err != nil {
		return err
	}
	if strings.ContainsRune(w.Exercise, sep) || strings.ContainsRune(w.Date, sep) {
		return errors.Join(ErrInvalidKey, errors.New("exercise or date contains a separator byte"))
	}
	return nil
}

func checkKeyPart(s string) error {
	if s == "" || strings.ContainsRune(s, sep) {
		return errors.Join(ErrInvalidKey, errors.New("empty or contains a separator byte"))
	}
	return nil
}

var (
	_ Repository = (*DB)(nil)
	_ Repository = (*BadgerStore)(nil)
	_ Repository = (*CharmStore)(nil)
)
