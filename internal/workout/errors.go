// ABOUTME: Caller-facing errors returned by the workout service.
// ABOUTME: Transports map these to client error responses.
package workout

import (
	"errors"
	"fmt"
)

var (
	// ErrMessageRequired means a parse request had no message text.
	ErrMessageRequired = errors.New("message is required")
	// ErrUserIDRequired means a request needed a user id and had none.
	ErrUserIDRequired = errors.New("user_id is required")
	// ErrNoExercises means a submission carried no exercises.
	ErrNoExercises = errors.New("exercises must be a non-empty array")
)

// ExerciseError reports the first invalid entry of a submission.
type ExerciseError struct {
	Index  int
	Reason string
}

func (e *ExerciseError) Error() string {
	return fmt.Sprintf("Invalid exercise at index %d: %s", e.Index, e.Reason)
}

// IsClientError reports whether err was caused by the caller's input.
func IsClientError(err error) bool {
	var exErr *ExerciseError
	return errors.Is(err, ErrMessageRequired) ||
		errors.Is(err, ErrUserIDRequired) ||
		errors.Is(err, ErrNoExercises) ||
		errors.As(err, &exErr)
}
