// ABOUTME: StoredWorkout is the persisted form of a complete workout.
// ABOUTME: Builds sortable workout ids and the per-exercise secondary key.
package models

import (
	"fmt"
	"strconv"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/shopspring/decimal"
)

// DateLayout is the calendar date format used for the date index.
const DateLayout = "2006-01-02"

// StoredWorkout is one persisted workout item.
type StoredWorkout struct {
	UserID         string `json:"userId"`
	WorkoutID      string `json:"workoutId"`
	UserIDExercise string `json:"userId_exercise"`
	Date           string `json:"date"`
	Timestamp      string `json:"timestamp"`
	Exercise       string `json:"exercise"`
	Sets           int    `json:"sets"`
	Reps           int    `json:"reps"`
	Weight         Weight `json:"weight"`
}

// ExerciseKey builds the per-user exercise secondary key.
func ExerciseKey(userID, exercise string) string {
	return userID + "#EXERCISE#" + exercise
}

// NewWorkoutID formats a workout id. A negative index omits the batch suffix.
// The index is zero-padded so batch ids sort in submission order.
func NewWorkoutID(date string, id ulid.ULID, index int) string {
	if index < 0 {
		return fmt.Sprintf("DATE#%s#TIME#%s", date, id)
	}
	return fmt.Sprintf("DATE#%s#TIME#%s#%03d", date, id, index)
}

// NewULID returns a ULID carrying the given creation time.
func NewULID(at time.Time) ulid.ULID {
	return ulid.MustNew(ulid.Timestamp(at), ulid.DefaultEntropy())
}

// NewStoredWorkout builds an item for one workout created at the given time.
func NewStoredWorkout(userID string, shape StorageShape, at time.Time) *StoredWorkout {
	return newStoredWorkout(userID, shape, at, NewULID(at), -1)
}

// NewStoredBatch builds items that share one creation time and ULID.
// Each id carries the item's position in the batch.
func NewStoredBatch(userID string, shapes []StorageShape, at time.Time) []*StoredWorkout {
	id := NewULID(at)
	items := make([]*StoredWorkout, 0, len(shapes))
	for i, shape := range shapes {
		items = append(items, newStoredWorkout(userID, shape, at, id, i))
	}
	return items
}

func newStoredWorkout(userID string, shape StorageShape, at time.Time, id ulid.ULID, index int) *StoredWorkout {
	date := at.UTC().Format(DateLayout)
	return &StoredWorkout{
		UserID:         userID,
		WorkoutID:      NewWorkoutID(date, id, index),
		UserIDExercise: ExerciseKey(userID, shape.Exercise),
		Date:           date,
		Timestamp:      strconv.FormatInt(at.UnixMilli(), 10),
		Exercise:       shape.Exercise,
		Sets:           shape.Sets,
		Reps:           shape.Reps,
		Weight:         shape.Weight,
	}
}

// TimestampMillis parses the stored timestamp. Unparseable values sort first.
func (w *StoredWorkout) TimestampMillis() int64 {
	ms, err := strconv.ParseInt(w.Timestamp, 10, 64)
	if err != nil {
		return 0
	}
	return ms
}

// Volume is weight times reps times sets.
func (w *StoredWorkout) Volume() Weight {
	return Weight{w.Weight.Mul(decimal.NewFromInt(int64(w.Reps) * int64(w.Sets)))}
}
