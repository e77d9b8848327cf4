// ABOUTME: Read-side queries over saved workouts.
// ABOUTME: Summary by date, single date, single exercise, and progress over time.
package workout

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/harperreed/liftlog/internal/models"
)

// MsgNoProgressData is reported when an exercise has no saved workouts.
const MsgNoProgressData = "No data found for this exercise"

// QueryType selects a read-side query.
type QueryType int

const (
	QuerySummary QueryType = iota
	QueryDate
	QueryExercise
	QueryProgress
)

var queryTypeNames = map[QueryType]string{
	QuerySummary:  "summary",
	QueryDate:     "date",
	QueryExercise: "exercise",
	QueryProgress: "progress",
}

func (q QueryType) String() string {
	if name, ok := queryTypeNames[q]; ok {
		return name
	}
	return fmt.Sprintf("QueryType(%d)", int(q))
}

// ParseQueryType maps a query_type value to a QueryType.
// Empty and unknown values select the summary.
func ParseQueryType(s string) QueryType {
	s = strings.ToLower(strings.TrimSpace(s))
	for q, name := range queryTypeNames {
		if name == s {
			return q
		}
	}
	return QuerySummary
}

// QueryRequest selects workouts for one user.
type QueryRequest struct {
	UserID   string
	Type     QueryType
	Date     string
	Exercise string
}

// Effective returns the query that will run. A date or exercise query
// without its argument falls back to the summary.
func (r QueryRequest) Effective() QueryType {
	switch r.Type {
	case QueryDate:
		if strings.TrimSpace(r.Date) == "" {
			return QuerySummary
		}
	case QueryExercise, QueryProgress:
		if strings.TrimSpace(r.Exercise) == "" {
			return QuerySummary
		}
	}
	return r.Type
}

// DaySummary groups one date's workouts.
type DaySummary struct {
	Date     string                  `json:"date"`
	Workouts []*models.StoredWorkout `json:"workouts"`
}

// SummaryResult lists every workout grouped by date, newest date first.
type SummaryResult struct {
	UserID         string       `json:"user_id"`
	WorkoutSummary []DaySummary `json:"workout_summary"`
}

// DateResult lists workouts for one date.
type DateResult struct {
	Date     string                  `json:"date"`
	Workouts []*models.StoredWorkout `json:"workouts"`
}

// ExerciseResult lists workouts for one exercise, newest first.
type ExerciseResult struct {
	Exercise string                  `json:"exercise"`
	Workouts []*models.StoredWorkout `json:"workouts"`
}

// ProgressPoint is one workout in an exercise's history.
type ProgressPoint struct {
	Date   string        `json:"date"`
	Weight models.Weight `json:"weight"`
	Reps   int           `json:"reps"`
	Sets   int           `json:"sets"`
	Volume models.Weight `json:"volume"`
}

// ProgressResult is an exercise's history, oldest first, with its best weight.
type ProgressResult struct {
	Success       bool            `json:"success"`
	Exercise      string          `json:"exercise"`
	ProgressData  []ProgressPoint `json:"progress_data,omitempty"`
	MaxWeight     *models.Weight  `json:"max_weight,omitempty"`
	MaxWeightDate string          `json:"max_weight_date,omitempty"`
	Error         string          `json:"error,omitempty"`
}

// Query runs the selected query. The result is one of *SummaryResult,
// *DateResult, *ExerciseResult, or *ProgressResult.
func (s *Service) Query(ctx context.Context, req QueryRequest) (any, error) {
	userID := strings.TrimSpace(req.UserID)
	if userID == "" {
		return nil, ErrUserIDRequired
	}

	switch req.Effective() {
	case QuerySummary:
		return s.Summary(ctx, userID)
	case QueryDate:
		return s.ByDate(ctx, userID, strings.TrimSpace(req.Date))
	case QueryExercise:
		return s.ByExercise(ctx, userID, req.Exercise)
	case QueryProgress:
		return s.Progress(ctx, userID, req.Exercise)
	default:
		return nil, fmt.Errorf("unhandled query type %s", req.Type)
	}
}

// Summary groups all of a user's workouts by date, newest date first.
func (s *Service) Summary(ctx context.Context, userID string) (*SummaryResult, error) {
	workouts, err := s.repo.WorkoutsByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list workouts: %w", err)
	}

	byDate := make(map[string][]*models.StoredWorkout)
	var dates []string
	for _, w := range workouts {
		if _, seen := byDate[w.Date]; !seen {
			dates = append(dates, w.Date)
		}
		byDate[w.Date] = append(byDate[w.Date], w)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(dates)))

	summary := make([]DaySummary, 0, len(dates))
	for _, d := range dates {
		summary = append(summary, DaySummary{Date: d, Workouts: byDate[d]})
	}
	return &SummaryResult{UserID: userID, WorkoutSummary: summary}, nil
}

// ByDate lists a user's workouts for one date.
func (s *Service) ByDate(ctx context.Context, userID, date string) (*DateResult, error) {
	workouts, err := s.repo.WorkoutsByDate(ctx, userID, date)
	if err != nil {
		return nil, fmt.Errorf("list workouts for %s: %w", date, err)
	}
	return &DateResult{Date: date, Workouts: workouts}, nil
}

// ByExercise lists a user's workouts for one exercise, newest first.
func (s *Service) ByExercise(ctx context.Context, userID, exercise string) (*ExerciseResult, error) {
	name := s.vocab.Standardize(exercise)
	workouts, err := s.repo.WorkoutsByExercise(ctx, userID, name)
	if err != nil {
		return nil, fmt.Errorf("list workouts for %s: %w", name, err)
	}
	return &ExerciseResult{Exercise: name, Workouts: workouts}, nil
}

// Progress reports an exercise's history oldest first and its heaviest set.
// The earliest workout wins ties for the max weight.
func (s *Service) Progress(ctx context.Context, userID, exercise string) (*ProgressResult, error) {
	result, err := s.ByExercise(ctx, userID, exercise)
	if err != nil {
		return nil, err
	}
	if len(result.Workouts) == 0 {
		return &ProgressResult{Success: false, Exercise: result.Exercise, Error: MsgNoProgressData}, nil
	}

	workouts := append([]*models.StoredWorkout(nil), result.Workouts...)
	sort.SliceStable(workouts, func(i, j int) bool {
		return workouts[i].Date < workouts[j].Date
	})

	points := make([]ProgressPoint, 0, len(workouts))
	var best *models.StoredWorkout
	for _, w := range workouts {
		points = append(points, ProgressPoint{
			Date:   w.Date,
			Weight: w.Weight,
			Reps:   w.Reps,
			Sets:   w.Sets,
			Volume: w.Volume(),
		})
		if best == nil || w.Weight.GreaterThan(best.Weight.Decimal) {
			best = w
		}
	}

	maxWeight := best.Weight
	return &ProgressResult{
		Success:       true,
		Exercise:      result.Exercise,
		ProgressData:  points,
		MaxWeight:     &maxWeight,
		MaxWeightDate: best.Date,
	}, nil
}
