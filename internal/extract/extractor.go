// ABOUTME: Extractor turns a chat message into a candidate workout record.
// ABOUTME: One completion call per message; any failure yields no candidate.
package extract

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/harperreed/liftlog/internal/completion"
	"github.com/harperreed/liftlog/internal/models"
	"github.com/harperreed/liftlog/internal/observability"
	"go.uber.org/zap"
)

// DefaultTimeout bounds a single completion call.
const DefaultTimeout = 30 * time.Second

// Extractor asks the completion model for a structured workout.
type Extractor struct {
	completer completion.Completer
	logger    *zap.Logger
	timeout   time.Duration
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithTimeout sets the completion timeout. Non-positive values are ignored.
func WithTimeout(d time.Duration) Option {
	return func(e *Extractor) {
		if d > 0 {
			e.timeout = d
		}
	}
}

// New creates an Extractor over the given completer.
func New(completer completion.Completer, logger *zap.Logger, opts ...Option) *Extractor {
	if logger == nil {
		logger = zap.NewNop()
	}
	e := &Extractor{
		completer: completer,
		logger:    logger,
		timeout:   DefaultTimeout,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Extract returns the normalized candidate, or nil when the model call failed
// or its reply held no JSON object.
func (e *Extractor) Extract(ctx context.Context, message string, history []models.ChatMessage) *models.WorkoutRecord {
	prompt := BuildPrompt(message, history)

	callCtx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	start := time.Now()
	text, err := e.complete(callCtx, prompt)
	observability.RecordCompletion(time.Since(start), err)
	if err != nil {
		e.logger.Warn("completion failed", zap.Error(err), zap.Duration("elapsed", time.Since(start)))
		observability.RecordExtraction(observability.ExtractionCompletionError)
		return nil
	}
	e.logger.Debug("completion reply", zap.String("text", text))

	raw, ok := FindObject(text)
	if !ok {
		e.logger.Info("no JSON object in completion reply", zap.Int("reply_len", len(text)))
		observability.RecordExtraction(observability.ExtractionNoJSON)
		return nil
	}

	if name, ok := raw[models.FieldExercise].(string); ok {
		raw[models.FieldExercise] = strings.ToLower(name)
	}

	observability.RecordExtraction(observability.ExtractionExtracted)
	return raw.Normalize()
}

// complete calls the completer, turning a panic into an error.
func (e *Extractor) complete(ctx context.Context, prompt string) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			text, err = "", fmt.Errorf("completer panic: %v", r)
		}
	}()
	return e.completer.Complete(ctx, prompt)
}
