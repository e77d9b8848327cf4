// ABOUTME: Request handlers for parse-workout, submit-workout, and get-workouts.
// ABOUTME: Maps service results and errors onto status codes and JSON bodies.
package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/harperreed/liftlog/internal/models"
	"github.com/harperreed/liftlog/internal/workout"
	"go.uber.org/zap"
)

// Handler coordinates requests with the workout service.
type Handler struct {
	service *workout.Service
	logger  *zap.Logger
}

// NewHandler builds a Handler.
func NewHandler(service *workout.Service, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{service: service, logger: logger}
}

type extractionFailedBody struct {
	Error         string   `json:"error"`
	MissingFields []string `json:"missing_fields"`
}

type followUpBody struct {
	Workout       *models.WorkoutRecord `json:"workout"`
	MissingFields []string              `json:"missing_fields"`
	Message       string                `json:"message"`
}

type savedBody struct {
	Workout   *models.WorkoutRecord `json:"workout"`
	Saved     bool                  `json:"saved"`
	WorkoutID *string               `json:"workout_id"`
	Message   string                `json:"message"`
}

type submitBody struct {
	Message    string   `json:"message"`
	WorkoutIDs []string `json:"workoutIds"`
	Date       string   `json:"date"`
	Count      int      `json:"count"`
}

// ParseWorkout turns a chat message into a saved workout or a follow-up question.
func (h *Handler) ParseWorkout(ctx context.Context, ev Event) Response {
	return h.guard("parse-workout", func() Response {
		body, err := decodeBody(ev.Body)
		if err != nil {
			return errorResponse(http.StatusBadRequest, msgInvalidJSON)
		}

		res, err := h.service.ParseWorkout(ctx, workout.ParseRequest{
			UserID:      body.str("user_id", "userId"),
			Message:     body.str("message"),
			ChatHistory: body.chatHistory(),
			Previous:    body.previousWorkout(),
		})
		if errors.Is(err, workout.ErrMessageRequired) {
			return errorResponse(http.StatusBadRequest, msgMessageRequired)
		}
		if err != nil {
			h.logger.Error("parse workout failed", zap.Error(err))
			return errorResponse(http.StatusInternalServerError, msgInternalError)
		}

		switch res.Outcome {
		case workout.OutcomeExtractionFailed:
			return newResponse(http.StatusOK, extractionFailedBody{
				Error:         res.Message,
				MissingFields: res.MissingFields,
			})
		case workout.OutcomeAwaitingFollowUp:
			return newResponse(http.StatusOK, followUpBody{
				Workout:       res.Workout,
				MissingFields: res.MissingFields,
				Message:       res.Message,
			})
		default:
			out := savedBody{
				Workout: res.Workout,
				Saved:   res.Outcome == workout.OutcomePersisted,
				Message: res.Message,
			}
			if out.Saved {
				id := res.WorkoutID
				out.WorkoutID = &id
			}
			return newResponse(http.StatusOK, out)
		}
	})
}

// SubmitWorkout saves an explicit list of exercises as one batch.
func (h *Handler) SubmitWorkout(ctx context.Context, ev Event) Response {
	return h.guard("submit-workout", func() Response {
		body, err := decodeBody(ev.Body)
		if err != nil {
			return errorResponse(http.StatusBadRequest, msgInvalidJSON)
		}

		userID := body.str("userId", "user_id")
		if userID == "" {
			return errorResponse(http.StatusBadRequest, msgSubmitUserID)
		}
		raw, _ := body.lookup("exercises")
		exercises, err := workout.DecodeExercises(raw)
		if err != nil {
			return errorResponse(http.StatusBadRequest, err.Error())
		}

		res, err := h.service.SubmitWorkout(ctx, userID, exercises)
		switch {
		case errors.Is(err, workout.ErrUserIDRequired):
			return errorResponse(http.StatusBadRequest, msgSubmitUserID)
		case workout.IsClientError(err):
			return errorResponse(http.StatusBadRequest, err.Error())
		case err != nil:
			return errorResponse(http.StatusInternalServerError, msgInternalError)
		}

		return newResponse(http.StatusOK, submitBody{
			Message:    workout.MsgSaved,
			WorkoutIDs: res.WorkoutIDs,
			Date:       res.Date,
			Count:      res.Count,
		})
	})
}

// GetWorkouts answers summary, date, exercise, and progress queries.
// Parameters come from the body first, then the query string.
func (h *Handler) GetWorkouts(ctx context.Context, ev Event) Response {
	return h.guard("get-workouts", func() Response {
		body, err := decodeBody(ev.Body)
		if err != nil {
			return errorResponse(http.StatusBadRequest, msgInvalidJSON)
		}
		q := ev.QueryStringParameters

		req := workout.QueryRequest{
			UserID:   body.strOrQuery(q, "user_id", "userId"),
			Type:     workout.ParseQueryType(body.strOrQuery(q, "query_type", "queryType")),
			Date:     body.strOrQuery(q, "date"),
			Exercise: body.strOrQuery(q, "exercise"),
		}
		h.logger.Info("get workouts",
			zap.String("query_type", req.Effective().String()),
			zap.String("user_id", req.UserID),
			zap.String("date", req.Date),
			zap.String("exercise", req.Exercise))

		result, err := h.service.Query(ctx, req)
		if errors.Is(err, workout.ErrUserIDRequired) {
			return errorResponse(http.StatusBadRequest, msgUserIDRequired)
		}
		if err != nil {
			h.logger.Error("query workouts failed", zap.Error(err))
			return errorResponse(http.StatusInternalServerError, msgRetrieveFailed)
		}
		return newResponse(http.StatusOK, result)
	})
}

// guard converts a panic into a generic 500 so internals never leak.
func (h *Handler) guard(name string, fn func() Response) (resp Response) {
	defer func() {
		if r := recover(); r != nil {
			h.logger.Error("handler panicked",
				zap.String("handler", name),
				zap.Any("panic", r),
				zap.Stack("stack"))
			resp = errorResponse(http.StatusInternalServerError, msgInternalError)
		}
	}()
	return fn()
}
