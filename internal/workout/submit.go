// ABOUTME: Batch submission of explicitly structured workouts.
// ABOUTME: Validates each entry and writes the batch atomically.
package workout

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/harperreed/liftlog/internal/models"
	"github.com/harperreed/liftlog/internal/observability"
	"go.uber.org/zap"
)

// Exercise is one validated entry of a submission.
type Exercise struct {
	Name   string
	Weight models.Weight
	Reps   int
	Sets   int
}

// Validate checks ranges for entries built in process.
func (e Exercise) Validate(index int) error {
	switch {
	case strings.TrimSpace(e.Name) == "":
		return &ExerciseError{Index: index, Reason: "Name cannot be empty"}
	case e.Weight.IsNegative():
		return &ExerciseError{Index: index, Reason: "Weight cannot be negative"}
	case e.Reps <= 0:
		return &ExerciseError{Index: index, Reason: "Reps must be positive"}
	case e.Sets <= 0:
		return &ExerciseError{Index: index, Reason: "Sets must be positive"}
	}
	return nil
}

var exerciseFields = []string{"name", "weight", "reps", "sets"}

// DecodeExercises validates an untyped exercises array from a request body.
// Numbers are expected as json.Number so weights stay exact.
func DecodeExercises(raw any) ([]Exercise, error) {
	list, ok := raw.([]any)
	if !ok || len(list) == 0 {
		return nil, ErrNoExercises
	}
	out := make([]Exercise, 0, len(list))
	for i, entry := range list {
		ex, err := decodeExercise(i, entry)
		if err != nil {
			return nil, err
		}
		out = append(out, ex)
	}
	return out, nil
}

func decodeExercise(index int, raw any) (Exercise, error) {
	fail := func(reason string) (Exercise, error) {
		return Exercise{}, &ExerciseError{Index: index, Reason: reason}
	}

	obj, ok := raw.(map[string]any)
	if !ok {
		return fail("Exercise must be an object")
	}

	var missing []string
	for _, f := range exerciseFields {
		if _, ok := obj[f]; !ok {
			missing = append(missing, f)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return fail("Missing required fields: " + strings.Join(missing, ", "))
	}

	name, ok := obj["name"].(string)
	if !ok {
		return fail("Name must be a string")
	}
	weight, ok := asWeight(obj["weight"])
	if !ok {
		return fail("Weight must be a number")
	}
	reps, ok := asInteger(obj["reps"])
	if !ok {
		return fail("Reps must be an integer")
	}
	sets, ok := asInteger(obj["sets"])
	if !ok {
		return fail("Sets must be an integer")
	}

	ex := Exercise{Name: name, Weight: weight, Reps: reps, Sets: sets}
	if err := ex.Validate(index); err != nil {
		return Exercise{}, err
	}
	return ex, nil
}

func asWeight(v any) (models.Weight, bool) {
	switch x := v.(type) {
	case json.Number:
		w, err := models.ParseWeight(x.String())
		return w, err == nil
	case float64:
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return models.Weight{}, false
		}
		return models.NewWeight(x), true
	default:
		return models.Weight{}, false
	}
}

// asInteger accepts integer literals only; 8.0 is not an integer.
func asInteger(v any) (int, bool) {
	switch x := v.(type) {
	case json.Number:
		n, err := x.Int64()
		if err != nil || n > math.MaxInt32 || n < math.MinInt32 {
			return 0, false
		}
		return int(n), true
	case float64:
		if x != math.Trunc(x) || x > math.MaxInt32 || x < math.MinInt32 {
			return 0, false
		}
		return int(x), true
	default:
		return 0, false
	}
}

// SubmitResult describes a saved batch.
type SubmitResult struct {
	WorkoutIDs []string
	Date       string
	Count      int
}

// SubmitWorkout saves every exercise as one batch sharing a creation time.
// Names go through the exercise vocabulary so they line up with parsed workouts.
func (s *Service) SubmitWorkout(ctx context.Context, userID string, exercises []Exercise) (*SubmitResult, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, ErrUserIDRequired
	}
	if len(exercises) == 0 {
		return nil, ErrNoExercises
	}

	shapes := make([]models.StorageShape, 0, len(exercises))
	for i, ex := range exercises {
		if err := ex.Validate(i); err != nil {
			return nil, err
		}
		shapes = append(shapes, models.StorageShape{
			Exercise: s.vocab.Standardize(ex.Name),
			Weight:   models.Weight{Decimal: ex.Weight.Round(models.WeightPlaces)},
			Reps:     ex.Reps,
			Sets:     ex.Sets,
		})
	}

	items := models.NewStoredBatch(userID, shapes, s.now())
	if err := s.repo.PutWorkouts(ctx, items); err != nil {
		observability.RecordPersistFailure(sourceSubmit)
		s.logger.Error("failed to save workout batch",
			zap.String("user_id", userID),
			zap.Int("count", len(items)),
			zap.Error(err))
		return nil, fmt.Errorf("save workouts: %w", err)
	}
	observability.RecordPersisted(sourceSubmit, len(items))

	ids := make([]string, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.WorkoutID)
	}
	s.logger.Info("workout batch saved", zap.String("user_id", userID), zap.Int("count", len(ids)))

	return &SubmitResult{WorkoutIDs: ids, Date: items[0].Date, Count: len(ids)}, nil
}
