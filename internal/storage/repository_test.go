// ABOUTME: Tests for Repository implementations against a shared contract.
// ABOUTME: Runs every case on in-memory badger and a temp-dir SQLite database.
package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/harperreed/liftlog/internal/models"
)

type backend struct {
	name string
	open func(t *testing.T) Repository
}

func backends() []backend {
	return []backend{
		{name: "badger", open: func(t *testing.T) Repository { return setupBadger(t) }},
		{name: "sqlite", open: func(t *testing.T) Repository { return setupTestDB(t) }},
	}
}

// setupTestDB creates a test database in a temp directory.
func setupTestDB(t *testing.T) *DB {
	t.Helper()

	db, err := Open(filepath.Join(t.TempDir(), "liftlog.db"))
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func setupBadger(t *testing.T) *BadgerStore {
	t.Helper()

	s, err := OpenBadgerInMemory(nil)
	if err != nil {
		t.Fatalf("Failed to open badger: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func item(userID, exercise string, at time.Time, weight float64, reps, sets int) *models.StoredWorkout {
	shape := models.StorageShape{Exercise: exercise, Weight: models.NewWeight(weight), Reps: reps, Sets: sets}
	return models.NewStoredWorkout(userID, shape, at)
}

func day(d int, hour int) time.Time {
	return time.Date(2025, 6, d, hour, 0, 0, 0, time.UTC)
}

func TestPutAndQueryByDate(t *testing.T) {
	for _, b := range backends() {
		t.Run(b.name, func(t *testing.T) {
			repo := b.open(t)
			ctx := context.Background()

			w := item("u1", "bench press", day(1, 9), 135.5, 8, 3)
			if err := repo.PutWorkout(ctx, w); err != nil {
				t.Fatalf("PutWorkout failed: %v", err)
			}
			if err := repo.PutWorkout(ctx, item("u1", "squat", day(2, 9), 225, 5, 5)); err != nil {
				t.Fatalf("PutWorkout failed: %v", err)
			}
			if err := repo.PutWorkout(ctx, item("u2", "bench press", day(1, 9), 95, 10, 3)); err != nil {
				t.Fatalf("PutWorkout failed: %v", err)
			}

			got, err := repo.WorkoutsByDate(ctx, "u1", "2025-06-01")
			if err != nil {
				t.Fatalf("WorkoutsByDate failed: %v", err)
			}
			if len(got) != 1 {
				t.Fatalf("got %d workouts, want 1", len(got))
			}
			if got[0].WorkoutID != w.WorkoutID || got[0].Exercise != "bench press" {
				t.Errorf("unexpected workout: %+v", got[0])
			}
			if got[0].Weight.String() != "135.5" {
				t.Errorf("Weight = %s, want 135.5", got[0].Weight)
			}
			if got[0].Reps != 8 || got[0].Sets != 3 {
				t.Errorf("Reps/Sets = %d/%d, want 8/3", got[0].Reps, got[0].Sets)
			}
			if got[0].Timestamp != w.Timestamp || got[0].UserIDExercise != w.UserIDExercise {
				t.Errorf("index attributes not round-tripped: %+v", got[0])
			}

			none, err := repo.WorkoutsByDate(ctx, "u1", "2025-06-30")
			if err != nil {
				t.Fatalf("WorkoutsByDate failed: %v", err)
			}
			if none == nil || len(none) != 0 {
				t.Errorf("expected empty non-nil slice, got %v", none)
			}
		})
	}
}

func TestQueryByUserOrdersByDate(t *testing.T) {
	for _, b := range backends() {
		t.Run(b.name, func(t *testing.T) {
			repo := b.open(t)
			ctx := context.Background()

			for _, w := range []*models.StoredWorkout{
				item("u1", "squat", day(3, 8), 225, 5, 5),
				item("u1", "row", day(1, 8), 95, 10, 3),
				item("u1", "curl", day(2, 8), 30, 12, 3),
				item("other", "curl", day(2, 8), 30, 12, 3),
			} {
				if err := repo.PutWorkout(ctx, w); err != nil {
					t.Fatalf("PutWorkout failed: %v", err)
				}
			}

			got, err := repo.WorkoutsByUser(ctx, "u1")
			if err != nil {
				t.Fatalf("WorkoutsByUser failed: %v", err)
			}
			if len(got) != 3 {
				t.Fatalf("got %d workouts, want 3", len(got))
			}
			want := []string{"2025-06-01", "2025-06-02", "2025-06-03"}
			for i, w := range got {
				if w.Date != want[i] {
					t.Errorf("got[%d].Date = %s, want %s", i, w.Date, want[i])
				}
			}
		})
	}
}

func TestQueryByExerciseNewestFirst(t *testing.T) {
	for _, b := range backends() {
		t.Run(b.name, func(t *testing.T) {
			repo := b.open(t)
			ctx := context.Background()

			for _, w := range []*models.StoredWorkout{
				item("u1", "deadlift", day(1, 8), 275, 5, 3),
				item("u1", "deadlift", day(5, 8), 315, 3, 3),
				item("u1", "deadlift", day(3, 8), 295, 5, 3),
				item("u1", "deadlifts", day(4, 8), 1, 1, 1),
				item("u2", "deadlift", day(6, 8), 405, 1, 1),
			} {
				if err := repo.PutWorkout(ctx, w); err != nil {
					t.Fatalf("PutWorkout failed: %v", err)
				}
			}

			got, err := repo.WorkoutsByExercise(ctx, "u1", "deadlift")
			if err != nil {
				t.Fatalf("WorkoutsByExercise failed: %v", err)
			}
			if len(got) != 3 {
				t.Fatalf("got %d workouts, want 3", len(got))
			}
			want := []string{"315", "295", "275"}
			for i, w := range got {
				if w.Weight.String() != want[i] {
					t.Errorf("got[%d].Weight = %s, want %s", i, w.Weight, want[i])
				}
			}
		})
	}
}

func TestPutWorkoutsBatch(t *testing.T) {
	for _, b := range backends() {
		t.Run(b.name, func(t *testing.T) {
			repo := b.open(t)
			ctx := context.Background()

			batch := models.NewStoredBatch("u1", []models.StorageShape{
				{Exercise: "squat", Weight: models.NewWeight(225), Reps: 5, Sets: 5},
				{Exercise: "squat", Weight: models.NewWeight(235), Reps: 3, Sets: 2},
				{Exercise: "lunge", Weight: models.NewWeight(0), Reps: 12, Sets: 3},
			}, day(7, 18))

			if err := repo.PutWorkouts(ctx, batch); err != nil {
				t.Fatalf("PutWorkouts failed: %v", err)
			}

			got, err := repo.WorkoutsByDate(ctx, "u1", "2025-06-07")
			if err != nil {
				t.Fatalf("WorkoutsByDate failed: %v", err)
			}
			if len(got) != 3 {
				t.Fatalf("got %d workouts, want 3", len(got))
			}

			squats, err := repo.WorkoutsByExercise(ctx, "u1", "squat")
			if err != nil {
				t.Fatalf("WorkoutsByExercise failed: %v", err)
			}
			if len(squats) != 2 {
				t.Fatalf("got %d squats, want 2", len(squats))
			}
			// Same timestamp: higher batch index sorts first.
			if squats[0].WorkoutID != batch[1].WorkoutID {
				t.Errorf("squats[0] = %s, want %s", squats[0].WorkoutID, batch[1].WorkoutID)
			}
		})
	}
}

func TestPutWorkoutsRejectsInvalidBatch(t *testing.T) {
	for _, b := range backends() {
		t.Run(b.name, func(t *testing.T) {
			repo := b.open(t)
			ctx := context.Background()

			good := item("u1", "row", day(1, 8), 95, 10, 3)
			bad := item("u1", "row", day(1, 9), 95, 10, 3)
			bad.UserID = ""

			err := repo.PutWorkouts(ctx, []*models.StoredWorkout{good, bad})
			if !errors.Is(err, ErrInvalidKey) {
				t.Fatalf("expected ErrInvalidKey, got %v", err)
			}

			got, err := repo.WorkoutsByUser(ctx, "u1")
			if err != nil {
				t.Fatalf("WorkoutsByUser failed: %v", err)
			}
			if len(got) != 0 {
				t.Errorf("batch should not be partially written, got %d", len(got))
			}
		})
	}
}

func TestPutWorkoutReplacesIndexes(t *testing.T) {
	for _, b := range backends() {
		t.Run(b.name, func(t *testing.T) {
			repo := b.open(t)
			ctx := context.Background()

			w := item("u1", "curl", day(1, 8), 30, 12, 3)
			if err := repo.PutWorkout(ctx, w); err != nil {
				t.Fatalf("PutWorkout failed: %v", err)
			}

			w.Exercise = "hammer curl"
			w.UserIDExercise = models.ExerciseKey("u1", "hammer curl")
			if err := repo.PutWorkout(ctx, w); err != nil {
				t.Fatalf("PutWorkout failed: %v", err)
			}

			old, _ := repo.WorkoutsByExercise(ctx, "u1", "curl")
			if len(old) != 0 {
				t.Errorf("stale exercise index entry remains: %d", len(old))
			}
			all, _ := repo.WorkoutsByUser(ctx, "u1")
			if len(all) != 1 {
				t.Errorf("got %d workouts after replace, want 1", len(all))
			}
		})
	}
}

func TestQueryRejectsBadUserID(t *testing.T) {
	for _, b := range backends() {
		t.Run(b.name, func(t *testing.T) {
			repo := b.open(t)
			_, err := repo.WorkoutsByUser(context.Background(), "")
			if !errors.Is(err, ErrInvalidKey) {
				t.Errorf("expected ErrInvalidKey, got %v", err)
			}
		})
	}
}

func TestKeyLayout(t *testing.T) {
	w := item("u1", "squat", time.UnixMilli(1700000000000).UTC(), 1, 1, 1)

	if got := dateIndexKey(w); got != "idx_date\x00u1\x00"+w.Date+"\x00"+w.WorkoutID {
		t.Errorf("dateIndexKey = %q", got)
	}
	want := "idx_exercise\x00u1#EXERCISE#squat\x0000000001700000000000\x00" + w.WorkoutID
	if got := exerciseIndexKey(w); got != want {
		t.Errorf("exerciseIndexKey = %q, want %q", got, want)
	}
	if got := describePrefix(userDatePrefix("u1")); got != "idx_date/u1" {
		t.Errorf("describePrefix = %q", got)
	}
}

func TestBadgerPersistsToDisk(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	s, err := OpenBadger(dir, nil)
	if err != nil {
		t.Fatalf("OpenBadger failed: %v", err)
	}
	if err := s.PutWorkout(ctx, item("u1", "dip", day(1, 8), 0, 10, 3)); err != nil {
		t.Fatalf("PutWorkout failed: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	s, err = OpenBadger(dir, nil)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer s.Close()

	got, err := s.WorkoutsByExercise(ctx, "u1", "dip")
	if err != nil {
		t.Fatalf("WorkoutsByExercise failed: %v", err)
	}
	if len(got) != 1 {
		t.Errorf("got %d workouts after reopen, want 1", len(got))
	}
}

func TestAllWorkoutsSpansUsers(t *testing.T) {
	for _, b := range backends() {
		t.Run(b.name, func(t *testing.T) {
			repo := b.open(t)
			ctx := context.Background()

			empty, err := repo.AllWorkouts(ctx)
			if err != nil {
				t.Fatalf("AllWorkouts failed: %v", err)
			}
			if empty == nil || len(empty) != 0 {
				t.Errorf("expected empty non-nil slice, got %v", empty)
			}

			for _, w := range []*models.StoredWorkout{
				item("zed", "row", day(2, 8), 95, 10, 3),
				item("amy", "squat", day(3, 8), 225, 5, 5),
				item("amy", "bench press", day(1, 8), 135, 8, 3),
			} {
				if err := repo.PutWorkout(ctx, w); err != nil {
					t.Fatalf("PutWorkout failed: %v", err)
				}
			}

			got, err := repo.AllWorkouts(ctx)
			if err != nil {
				t.Fatalf("AllWorkouts failed: %v", err)
			}
			if len(got) != 3 {
				t.Fatalf("got %d workouts, want 3", len(got))
			}
			// Workout ids lead with the date, so each user's items are date ordered.
			want := []string{"amy/bench press", "amy/squat", "zed/row"}
			for i, w := range got {
				if w.UserID+"/"+w.Exercise != want[i] {
					t.Errorf("got[%d] = %s/%s, want %s", i, w.UserID, w.Exercise, want[i])
				}
			}
		})
	}
}
