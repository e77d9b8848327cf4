// ABOUTME: Completer is the port to a hosted text-completion model.
// ABOUTME: Adapters turn a prompt into the model's raw text reply.
package completion

import (
	"context"
	"errors"
)

// ErrEmptyResponse means the model answered without any text.
var ErrEmptyResponse = errors.New("empty completion response")

// Completer sends one prompt and returns the model's text.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Func adapts a plain function to Completer.
type Func func(ctx context.Context, prompt string) (string, error)

// Complete calls f.
func (f Func) Complete(ctx context.Context, prompt string) (string, error) {
	return f(ctx, prompt)
}
