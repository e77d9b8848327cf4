// ABOUTME: Tests for the parse flow: extraction, follow-ups, merging, and saving.
// ABOUTME: Uses an in-memory badger store and scripted extractors.
package workout

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/harperreed/liftlog/internal/models"
	"github.com/harperreed/liftlog/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

// extractorFunc adapts a function to Extractor.
type extractorFunc func(ctx context.Context, message string, history []models.ChatMessage) *models.WorkoutRecord

func (f extractorFunc) Extract(ctx context.Context, message string, history []models.ChatMessage) *models.WorkoutRecord {
	return f(ctx, message, history)
}

func returns(r *models.WorkoutRecord) extractorFunc {
	return func(ctx context.Context, message string, history []models.ChatMessage) *models.WorkoutRecord {
		return r.Clone()
	}
}

// mockRepo lets a test override individual storage calls.
type mockRepo struct {
	storage.Repository
	putWorkoutFunc  func(ctx context.Context, w *models.StoredWorkout) error
	putWorkoutsFunc func(ctx context.Context, ws []*models.StoredWorkout) error
	byUserFunc      func(ctx context.Context, userID string) ([]*models.StoredWorkout, error)
}

func (m *mockRepo) PutWorkout(ctx context.Context, w *models.StoredWorkout) error {
	return m.putWorkoutFunc(ctx, w)
}

func (m *mockRepo) PutWorkouts(ctx context.Context, ws []*models.StoredWorkout) error {
	return m.putWorkoutsFunc(ctx, ws)
}

func (m *mockRepo) WorkoutsByUser(ctx context.Context, userID string) ([]*models.StoredWorkout, error) {
	return m.byUserFunc(ctx, userID)
}

func setupRepo(t *testing.T) storage.Repository {
	t.Helper()
	repo, err := storage.OpenBadgerInMemory(nil)
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })
	return repo
}

var fixedNow = time.Date(2025, 2, 3, 10, 30, 0, 0, time.UTC)

func newTestService(t *testing.T, repo storage.Repository, ex Extractor) *Service {
	return NewService(repo, ex, zaptest.NewLogger(t)).WithClock(func() time.Time { return fixedNow })
}

func TestParseWorkoutPersistsCompleteRecord(t *testing.T) {
	repo := setupRepo(t)
	candidate := models.NewWorkoutRecord().WithExercise("bench press").WithWeight(135).WithReps(8).WithSets(3)
	svc := newTestService(t, repo, returns(candidate))
	ctx := context.Background()

	res, err := svc.ParseWorkout(ctx, ParseRequest{UserID: "u1", Message: "bench 135 8 3"})
	require.NoError(t, err)

	assert.Equal(t, OutcomePersisted, res.Outcome)
	assert.Equal(t, MsgSaved, res.Message)
	assert.NotEmpty(t, res.WorkoutID)
	assert.Empty(t, res.MissingFields)
	assert.Equal(t, "bench press", *res.Workout.Exercise)

	saved, err := repo.WorkoutsByDate(ctx, "u1", "2025-02-03")
	require.NoError(t, err)
	require.Len(t, saved, 1)
	assert.Equal(t, res.WorkoutID, saved[0].WorkoutID)
	assert.Equal(t, "135", saved[0].Weight.String())
	assert.Equal(t, 8, saved[0].Reps)
	assert.Equal(t, 3, saved[0].Sets)
}

func TestParseWorkoutStandardizesExercise(t *testing.T) {
	repo := setupRepo(t)
	candidate := models.NewWorkoutRecord().WithExercise("bench pres").WithWeight(135).WithReps(8).WithSets(3)
	svc := newTestService(t, repo, returns(candidate))

	res, err := svc.ParseWorkout(context.Background(), ParseRequest{UserID: "u1", Message: "bench pres 135 8 3"})
	require.NoError(t, err)
	assert.Equal(t, "bench press", *res.Workout.Exercise)

	saved, err := repo.WorkoutsByExercise(context.Background(), "u1", "bench press")
	require.NoError(t, err)
	assert.Len(t, saved, 1)
}

func TestParseWorkoutCustomVocabulary(t *testing.T) {
	repo := setupRepo(t)
	candidate := models.NewWorkoutRecord().WithExercise("zercher squats").WithWeight(155).WithReps(5).WithSets(3)
	svc := newTestService(t, repo, returns(candidate)).
		WithVocabulary(models.NewVocabulary([]string{"Zercher Squat", "front squat"}))

	res, err := svc.ParseWorkout(context.Background(), ParseRequest{UserID: "u1", Message: "zerchers"})
	require.NoError(t, err)
	assert.Equal(t, OutcomePersisted, res.Outcome)
	assert.Equal(t, "zercher squat", *res.Workout.Exercise)
}

func TestParseWorkoutAsksForMissingFields(t *testing.T) {
	repo := &mockRepo{putWorkoutFunc: func(ctx context.Context, w *models.StoredWorkout) error {
		t.Fatal("incomplete workouts must not be saved")
		return nil
	}}
	svc := newTestService(t, repo, returns(models.NewWorkoutRecord().WithExercise("squat")))

	res, err := svc.ParseWorkout(context.Background(), ParseRequest{UserID: "u1", Message: "did squats"})
	require.NoError(t, err)

	assert.Equal(t, OutcomeAwaitingFollowUp, res.Outcome)
	assert.Equal(t, []string{"weight", "reps", "sets"}, res.MissingFields)
	assert.Equal(t, "Please provide: weight, reps, sets", res.Message)
	assert.Empty(t, res.WorkoutID)
	assert.Equal(t, "squat", *res.Workout.Exercise)
}

func TestParseWorkoutZeroRepsIsMissing(t *testing.T) {
	svc := newTestService(t, setupRepo(t), returns(
		models.NewWorkoutRecord().WithExercise("dip").WithWeight(0).WithReps(0).WithSets(3)))

	res, err := svc.ParseWorkout(context.Background(), ParseRequest{Message: "dips"})
	require.NoError(t, err)
	assert.Equal(t, OutcomeAwaitingFollowUp, res.Outcome)
	assert.Equal(t, []string{"reps"}, res.MissingFields)
}

func TestParseWorkoutExtractionFailed(t *testing.T) {
	svc := newTestService(t, setupRepo(t), returns(nil))

	res, err := svc.ParseWorkout(context.Background(), ParseRequest{UserID: "u1", Message: "hello"})
	require.NoError(t, err)

	assert.Equal(t, OutcomeExtractionFailed, res.Outcome)
	assert.Equal(t, MsgExtractionFailed, res.Message)
	assert.Equal(t, []string{"exercise", "weight", "reps", "sets"}, res.MissingFields)
	assert.Nil(t, res.Workout)
}

func TestParseWorkoutPersistFailure(t *testing.T) {
	repo := &mockRepo{putWorkoutFunc: func(ctx context.Context, w *models.StoredWorkout) error {
		return errors.New("throughput exceeded")
	}}
	candidate := models.NewWorkoutRecord().WithExercise("row").WithWeight(95).WithReps(10).WithSets(3)
	svc := newTestService(t, repo, returns(candidate))

	res, err := svc.ParseWorkout(context.Background(), ParseRequest{UserID: "u1", Message: "row 95 10 3"})
	require.NoError(t, err)

	assert.Equal(t, OutcomePersistFailed, res.Outcome)
	assert.Equal(t, MsgSaveFailed, res.Message)
	assert.Empty(t, res.WorkoutID)
	assert.True(t, res.Workout.IsComplete())
}

func TestParseWorkoutRequiresMessage(t *testing.T) {
	called := false
	ex := extractorFunc(func(ctx context.Context, message string, history []models.ChatMessage) *models.WorkoutRecord {
		called = true
		return nil
	})
	svc := newTestService(t, setupRepo(t), ex)

	for _, msg := range []string{"", "   "} {
		_, err := svc.ParseWorkout(context.Background(), ParseRequest{UserID: "u1", Message: msg})
		assert.ErrorIs(t, err, ErrMessageRequired)
	}
	assert.False(t, called, "extractor must not run without a message")
}

func TestParseWorkoutMergesPreviousTurn(t *testing.T) {
	repo := setupRepo(t)
	svc := newTestService(t, repo, returns(models.NewWorkoutRecord().WithReps(8).WithSets(3)))
	previous := models.NewWorkoutRecord().WithExercise("bench press").WithWeight(135)

	res, err := svc.ParseWorkout(context.Background(), ParseRequest{
		UserID:  "u1",
		Message: "8 reps, 3 sets",
		ChatHistory: []models.ChatMessage{
			{Role: models.RoleUser, Content: "bench press 135"},
			{Role: models.RoleAssistant, Content: "Please provide: reps, sets"},
		},
		Previous: previous,
	})
	require.NoError(t, err)

	assert.Equal(t, OutcomePersisted, res.Outcome)
	assert.Equal(t, "bench press", *res.Workout.Exercise)
	assert.Equal(t, 135.0, *res.Workout.Weight)
}

func TestParseWorkoutIgnoresInvalidPreviousWeight(t *testing.T) {
	repo := setupRepo(t)
	svc := newTestService(t, repo, returns(models.NewWorkoutRecord().WithExercise("squat").WithReps(5).WithSets(5)))

	res, err := svc.ParseWorkout(context.Background(), ParseRequest{
		UserID:   "u1",
		Message:  "5x5",
		Previous: models.NewWorkoutRecord().WithWeight(-50),
	})
	require.NoError(t, err)

	assert.Equal(t, OutcomeAwaitingFollowUp, res.Outcome)
	assert.Equal(t, []string{models.FieldWeight}, res.MissingFields)
	assert.Nil(t, res.Workout.Weight)

	stored, err := repo.WorkoutsByUser(context.Background(), "u1")
	require.NoError(t, err)
	assert.Empty(t, stored)
}

func TestParseWorkoutPassesHistory(t *testing.T) {
	var gotHistory []models.ChatMessage
	ex := extractorFunc(func(ctx context.Context, message string, history []models.ChatMessage) *models.WorkoutRecord {
		gotHistory = history
		return nil
	})
	svc := newTestService(t, setupRepo(t), ex)
	history := []models.ChatMessage{{Role: models.RoleUser, Content: "squats"}}

	_, err := svc.ParseWorkout(context.Background(), ParseRequest{Message: "225 5 5", ChatHistory: history})
	require.NoError(t, err)
	assert.Equal(t, history, gotHistory)
}

func TestParseWorkoutDefaultsToAnonymous(t *testing.T) {
	var savedUser string
	repo := &mockRepo{putWorkoutFunc: func(ctx context.Context, w *models.StoredWorkout) error {
		savedUser = w.UserID
		return nil
	}}
	candidate := models.NewWorkoutRecord().WithExercise("plank").WithWeight(0).WithReps(1).WithSets(3)
	svc := newTestService(t, repo, returns(candidate))

	res, err := svc.ParseWorkout(context.Background(), ParseRequest{Message: "plank 3 sets"})
	require.NoError(t, err)
	assert.Equal(t, OutcomePersisted, res.Outcome)
	assert.Equal(t, AnonymousUser, savedUser)
}

func TestParseWorkoutWithoutExtractor(t *testing.T) {
	svc := NewService(setupRepo(t), nil, nil)
	res, err := svc.ParseWorkout(context.Background(), ParseRequest{Message: "squat"})
	require.NoError(t, err)
	assert.Equal(t, OutcomeExtractionFailed, res.Outcome)
}

func TestFollowUpMessage(t *testing.T) {
	assert.Equal(t, "Please provide: reps", FollowUpMessage([]string{"reps"}))
	assert.Equal(t, "Please provide: exercise, sets", FollowUpMessage([]string{"exercise", "sets"}))
}
