// ABOUTME: Workout service: turns chat messages into saved workouts.
// ABOUTME: Decides per request between a follow-up question and persisting.
package workout

import (
	"context"
	"strings"
	"time"

	"github.com/harperreed/liftlog/internal/models"
	"github.com/harperreed/liftlog/internal/observability"
	"github.com/harperreed/liftlog/internal/storage"
	"go.uber.org/zap"
)

// AnonymousUser is recorded when a parse request names no user.
const AnonymousUser = "anonymous"

// Response messages.
const (
	MsgExtractionFailed = "Could not extract workout data"
	MsgSaved            = "Workout saved successfully"
	MsgSaveFailed       = "Failed to save workout"
	msgFollowUpPrefix   = "Please provide: "
)

// Metric sources.
const (
	sourceParse  = "parse"
	sourceSubmit = "submit"
)

// Outcome is the terminal state of a parse request.
type Outcome string

const (
	OutcomeExtractionFailed Outcome = "extraction_failed"
	OutcomeAwaitingFollowUp Outcome = "awaiting_followup"
	OutcomePersisted        Outcome = "persisted"
	OutcomePersistFailed    Outcome = "persist_failed"
)

// Extractor produces a candidate record from a message; nil means no candidate.
type Extractor interface {
	Extract(ctx context.Context, message string, history []models.ChatMessage) *models.WorkoutRecord
}

// Service coordinates extraction, reconciliation, and storage.
type Service struct {
	repo      storage.Repository
	extractor Extractor
	vocab     *models.Vocabulary
	logger    *zap.Logger
	now       func() time.Time
}

// NewService builds a Service. The extractor may be nil for read-only use.
func NewService(repo storage.Repository, extractor Extractor, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		repo:      repo,
		extractor: extractor,
		vocab:     models.DefaultVocabulary,
		logger:    logger,
		now:       time.Now,
	}
}

// WithVocabulary replaces the exercise vocabulary.
func (s *Service) WithVocabulary(v *models.Vocabulary) *Service {
	s.vocab = v
	return s
}

// WithClock replaces the time source used for new workouts.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// ParseRequest is one chat turn to reconcile.
type ParseRequest struct {
	UserID      string
	Message     string
	ChatHistory []models.ChatMessage
	// Previous is the partial record from earlier turns, if the caller kept one.
	Previous *models.WorkoutRecord
}

// ParseResult is the outcome of one chat turn.
type ParseResult struct {
	Outcome       Outcome
	Workout       *models.WorkoutRecord
	MissingFields []string
	WorkoutID     string
	Message       string
}

// ParseWorkout extracts a workout from the message and saves it when complete.
// Only a missing message is returned as an error; downstream failures
// become outcomes.
func (s *Service) ParseWorkout(ctx context.Context, req ParseRequest) (*ParseResult, error) {
	if strings.TrimSpace(req.Message) == "" {
		return nil, ErrMessageRequired
	}
	userID := strings.TrimSpace(req.UserID)
	if userID == "" {
		userID = AnonymousUser
	}
	logger := s.logger.With(zap.String("user_id", userID))

	var candidate *models.WorkoutRecord
	if s.extractor != nil {
		candidate = s.extractor.Extract(ctx, req.Message, req.ChatHistory)
	}
	if candidate == nil {
		logger.Info("no workout extracted")
		return s.finish(&ParseResult{
			Outcome:       OutcomeExtractionFailed,
			MissingFields: (*models.WorkoutRecord)(nil).MissingFields(),
			Message:       MsgExtractionFailed,
		}), nil
	}

	candidate.MergeWith(req.Previous.Sanitized())
	candidate.StandardizeExerciseName(s.vocab)

	if ok, missing := candidate.Validate(); !ok {
		logger.Debug("workout incomplete", zap.Strings("missing", missing))
		return s.finish(&ParseResult{
			Outcome:       OutcomeAwaitingFollowUp,
			Workout:       candidate,
			MissingFields: missing,
			Message:       FollowUpMessage(missing),
		}), nil
	}

	item := models.NewStoredWorkout(userID, candidate.ToStorageShape(), s.now())
	if err := s.repo.PutWorkout(ctx, item); err != nil {
		logger.Error("failed to save workout", zap.Error(err))
		observability.RecordPersistFailure(sourceParse)
		return s.finish(&ParseResult{
			Outcome: OutcomePersistFailed,
			Workout: candidate,
			Message: MsgSaveFailed,
		}), nil
	}

	observability.RecordPersisted(sourceParse, 1)
	logger.Info("workout saved",
		zap.String("workout_id", item.WorkoutID),
		zap.String("exercise", item.Exercise))
	return s.finish(&ParseResult{
		Outcome:   OutcomePersisted,
		Workout:   candidate,
		WorkoutID: item.WorkoutID,
		Message:   MsgSaved,
	}), nil
}

func (s *Service) finish(r *ParseResult) *ParseResult {
	observability.RecordParseOutcome(string(r.Outcome))
	return r
}

// FollowUpMessage asks for every missing field.
func FollowUpMessage(missing []string) string {
	return msgFollowUpPrefix + strings.Join(missing, ", ")
}
