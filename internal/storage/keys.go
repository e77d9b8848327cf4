// ABOUTME: Key layout shared by the KV backends (badger and charm).
// ABOUTME: Primary items plus date and exercise index keys that point at them.
package storage

import (
	"fmt"
	"strings"

	"github.com/harperreed/liftlog/internal/models"
)

// sep separates key parts; user ids and workout ids may not contain it.
const sep = '\x00'

const (
	workoutPrefix  = "workout"
	datePrefix     = "idx_date"
	exercisePrefix = "idx_exercise"
)

func joinKey(parts ...string) string {
	return strings.Join(parts, string(sep))
}

// workoutKey is the primary key for an item.
func workoutKey(userID, workoutID string) string {
	return joinKey(workoutPrefix, userID, workoutID)
}

// dateIndexKey sorts a user's items by date, then workout id.
func dateIndexKey(w *models.StoredWorkout) string {
	return joinKey(datePrefix, w.UserID, w.Date, w.WorkoutID)
}

// exerciseIndexKey sorts a user's items for one exercise by creation time.
func exerciseIndexKey(w *models.StoredWorkout) string {
	return joinKey(exercisePrefix, w.UserIDExercise, fmt.Sprintf("%020d", w.TimestampMillis()), w.WorkoutID)
}

// primaryPrefix scans every primary item, grouped by user.
func primaryPrefix() string {
	return joinKey(workoutPrefix, "")
}

// userDatePrefix scans every date index entry for a user.
func userDatePrefix(userID string) string {
	return joinKey(datePrefix, userID, "")
}

// dayPrefix scans the date index entries for one user and date.
func dayPrefix(userID, date string) string {
	return joinKey(datePrefix, userID, date, "")
}

// userExercisePrefix scans the exercise index entries for one user and exercise.
func userExercisePrefix(userID, exercise string) string {
	return joinKey(exercisePrefix, models.ExerciseKey(userID, exercise), "")
}

// indexKeys lists the secondary keys written for an item.
func indexKeys(w *models.StoredWorkout) []string {
	return []string{dateIndexKey(w), exerciseIndexKey(w)}
}

// describePrefix renders a key prefix for error messages.
func describePrefix(prefix string) string {
	return strings.TrimSuffix(strings.ReplaceAll(prefix, string(sep), "/"), "/")
}
