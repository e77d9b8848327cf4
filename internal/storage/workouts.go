// ABOUTME: Workout reads and writes for SQLite storage.
// ABOUTME: Weights are stored as decimal text so they never pass through a float.
package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/harperreed/liftlog/internal/models"
)

const upsertWorkout = `
	INSERT OR REPLACE INTO workouts (
		user_id, workout_id, user_id_exercise, date, timestamp, timestamp_ms,
		exercise, sets, reps, weight
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`

const selectWorkouts = `
	SELECT user_id, workout_id, user_id_exercise, date, timestamp,
		exercise, sets, reps, weight
	FROM workouts
`

// PutWorkout stores one workout, replacing any with the same key.
func (d *DB) PutWorkout(ctx context.Context, w *models.StoredWorkout) error {
	return d.PutWorkouts(ctx, []*models.StoredWorkout{w})
}

// PutWorkouts stores all workouts in one transaction.
func (d *DB) PutWorkouts(ctx context.Context, ws []*models.StoredWorkout) error {
	for _, w := range ws {
		if err := checkItem(w); err != nil {
			return fmt.Errorf("put workout: %w", err)
		}
	}

	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, upsertWorkout)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, w := range ws {
		_, err := stmt.ExecContext(ctx,
			w.UserID,
			w.WorkoutID,
			w.UserIDExercise,
			w.Date,
			w.Timestamp,
			w.TimestampMillis(),
			w.Exercise,
			w.Sets,
			w.Reps,
			w.Weight.String(),
		)
		if err != nil {
			return fmt.Errorf("insert workout %s: %w", w.WorkoutID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit workouts: %w", err)
	}
	return nil
}

// WorkoutsByUser returns every workout for a user ordered by date.
func (d *DB) WorkoutsByUser(ctx context.Context, userID string) ([]*models.StoredWorkout, error) {
	if err := checkKeyPart(userID); err != nil {
		return nil, err
	}
	query := selectWorkouts + `WHERE user_id = ? ORDER BY date ASC, workout_id ASC`
	return d.queryWorkouts(ctx, query, userID)
}

// WorkoutsByDate returns a user's workouts for one date.
func (d *DB) WorkoutsByDate(ctx context.Context, userID, date string) ([]*models.StoredWorkout, error) {
	if err := checkKeyPart(userID); err != nil {
		return nil, err
	}
	query := selectWorkouts + `WHERE user_id = ? AND date = ? ORDER BY workout_id ASC`
	return d.queryWorkouts(ctx, query, userID, date)
}

// WorkoutsByExercise returns a user's workouts for one exercise, newest first.
func (d *DB) WorkoutsByExercise(ctx context.Context, userID, exercise string) ([]*models.StoredWorkout, error) {
	if err := checkKeyPart(userID); err != nil {
		return nil, err
	}
	query := selectWorkouts + `WHERE user_id_exercise = ? ORDER BY timestamp_ms DESC, workout_id DESC`
	return d.queryWorkouts(ctx, query, models.ExerciseKey(userID, exercise))
}

// AllWorkouts returns every stored workout grouped by user.
func (d *DB) AllWorkouts(ctx context.Context) ([]*models.StoredWorkout, error) {
	return d.queryWorkouts(ctx, selectWorkouts+`ORDER BY user_id ASC, workout_id ASC`)
}

func (d *DB) queryWorkouts(ctx context.Context, query string, args ...interface{}) ([]*models.StoredWorkout, error) {
	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query workouts: %w", err)
	}
	defer rows.Close()

	workouts := []*models.StoredWorkout{}
	for rows.Next() {
		w, err := scanWorkout(rows)
		if err != nil {
			return nil, err
		}
		workouts = append(workouts, w)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate workouts: %w", err)
	}
	return workouts, nil
}

func scanWorkout(rows *sql.Rows) (*models.StoredWorkout, error) {
	var w models.StoredWorkout
	var weight string
	err := rows.Scan(
		&w.UserID,
		&w.WorkoutID,
		&w.UserIDExercise,
		&w.Date,
		&w.Timestamp,
		&w.Exercise,
		&w.Sets,
		&w.Reps,
		&weight,
	)
	if err != nil {
		return nil, fmt.Errorf("scan workout: %w", err)
	}
	if w.Weight, err = models.ParseWeight(weight); err != nil {
		return nil, err
	}
	return &w, nil
}
