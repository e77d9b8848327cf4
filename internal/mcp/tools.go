// ABOUTME: MCP tool implementations for liftlog.
// ABOUTME: Exposes chat parsing, batch submission, and workout queries.
package mcp

import (
	"context"
	"errors"
	"fmt"

	"github.com/harperreed/liftlog/internal/models"
	"github.com/harperreed/liftlog/internal/workout"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

func (s *Server) registerTools() {
	// parse_workout
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "parse_workout",
		Description: "Extract a strength workout from a chat message and save it once exercise, weight, reps, and sets are known",
	}, s.handleParseWorkout)

	// submit_workout
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "submit_workout",
		Description: "Save a list of structured exercises as one workout",
	}, s.handleSubmitWorkout)

	// get_workouts
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "get_workouts",
		Description: "Query saved workouts: summary, a single date, one exercise, or progress for one exercise",
	}, s.handleGetWorkouts)
}

// Tool input/output types

type chatMessageInput struct {
	Role    string `json:"role" jsonschema:"Speaker: user or assistant"`
	Content string `json:"content" jsonschema:"Message text"`
}

type partialWorkoutInput struct {
	Exercise *string  `json:"exercise,omitempty" jsonschema:"Exercise name"`
	Weight   *float64 `json:"weight,omitempty" jsonschema:"Weight lifted (0 for bodyweight)"`
	Reps     *int     `json:"reps,omitempty" jsonschema:"Repetitions per set"`
	Sets     *int     `json:"sets,omitempty" jsonschema:"Number of sets"`
}

type parseWorkoutInput struct {
	Message         string               `json:"message" jsonschema:"The user's message describing a workout"`
	UserID          string               `json:"user_id,omitempty" jsonschema:"User to save the workout for (default anonymous)"`
	ChatHistory     []chatMessageInput   `json:"chat_history,omitempty" jsonschema:"Earlier messages in the conversation, oldest first"`
	PreviousWorkout *partialWorkoutInput `json:"previous_workout,omitempty" jsonschema:"Partial workout returned by the previous turn"`
}

type parseWorkoutOutput struct {
	Outcome       string                `json:"outcome"`
	Workout       *models.WorkoutRecord `json:"workout,omitempty"`
	MissingFields []string              `json:"missing_fields"`
	WorkoutID     string                `json:"workout_id,omitempty"`
	Message       string                `json:"message"`
}

type exerciseInput struct {
	Name   string  `json:"name" jsonschema:"Exercise name"`
	Weight float64 `json:"weight" jsonschema:"Weight lifted, 0 or more"`
	Reps   int     `json:"reps" jsonschema:"Repetitions per set, at least 1"`
	Sets   int     `json:"sets" jsonschema:"Number of sets, at least 1"`
}

type submitWorkoutInput struct {
	UserID    string          `json:"user_id" jsonschema:"User to save the workout for"`
	Exercises []exerciseInput `json:"exercises" jsonschema:"Exercises performed"`
}

type submitWorkoutOutput struct {
	Message    string   `json:"message"`
	WorkoutIDs []string `json:"workout_ids"`
	Date       string   `json:"date"`
	Count      int      `json:"count"`
}

type getWorkoutsInput struct {
	UserID    string `json:"user_id" jsonschema:"User whose workouts to read"`
	QueryType string `json:"query_type,omitempty" jsonschema:"summary (default), date, exercise, or progress"`
	Date      string `json:"date,omitempty" jsonschema:"Date for date queries (YYYY-MM-DD)"`
	Exercise  string `json:"exercise,omitempty" jsonschema:"Exercise for exercise and progress queries"`
}

// Tool handlers

func (s *Server) handleParseWorkout(ctx context.Context, req *mcp.CallToolRequest, input parseWorkoutInput) (*mcp.CallToolResult, parseWorkoutOutput, error) {
	history := make([]models.ChatMessage, 0, len(input.ChatHistory))
	for _, m := range input.ChatHistory {
		history = append(history, models.ChatMessage{Role: m.Role, Content: m.Content})
	}

	var previous *models.WorkoutRecord
	if p := input.PreviousWorkout; p != nil {
		previous = &models.WorkoutRecord{Exercise: p.Exercise, Weight: p.Weight, Reps: p.Reps, Sets: p.Sets}
	}

	res, err := s.service.ParseWorkout(ctx, workout.ParseRequest{
		UserID:      input.UserID,
		Message:     input.Message,
		ChatHistory: history,
		Previous:    previous,
	})
	if err != nil {
		return nil, parseWorkoutOutput{}, fmt.Errorf("failed to parse workout: %w", err)
	}

	return nil, parseWorkoutOutput{
		Outcome:       string(res.Outcome),
		Workout:       res.Workout,
		MissingFields: res.MissingFields,
		WorkoutID:     res.WorkoutID,
		Message:       res.Message,
	}, nil
}

func (s *Server) handleSubmitWorkout(ctx context.Context, req *mcp.CallToolRequest, input submitWorkoutInput) (*mcp.CallToolResult, submitWorkoutOutput, error) {
	exercises := make([]workout.Exercise, 0, len(input.Exercises))
	for _, e := range input.Exercises {
		exercises = append(exercises, workout.Exercise{
			Name:   e.Name,
			Weight: models.NewWeight(e.Weight),
			Reps:   e.Reps,
			Sets:   e.Sets,
		})
	}

	res, err := s.service.SubmitWorkout(ctx, input.UserID, exercises)
	if err != nil {
		if workout.IsClientError(err) {
			return nil, submitWorkoutOutput{}, err
		}
		return nil, submitWorkoutOutput{}, fmt.Errorf("failed to save workout: %w", err)
	}

	return nil, submitWorkoutOutput{
		Message:    fmt.Sprintf("Saved %d exercises on %s", res.Count, res.Date),
		WorkoutIDs: res.WorkoutIDs,
		Date:       res.Date,
		Count:      res.Count,
	}, nil
}

func (s *Server) handleGetWorkouts(ctx context.Context, req *mcp.CallToolRequest, input getWorkoutsInput) (*mcp.CallToolResult, any, error) {
	result, err := s.service.Query(ctx, workout.QueryRequest{
		UserID:   input.UserID,
		Type:     workout.ParseQueryType(input.QueryType),
		Date:     input.Date,
		Exercise: input.Exercise,
	})
	if errors.Is(err, workout.ErrUserIDRequired) {
		return nil, nil, err
	}
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get workouts: %w", err)
	}

	return nil, result, nil
}
