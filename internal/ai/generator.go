package ai

import (
	"context"
	"errors"
)

// ErrUnavailable marks a generation call that failed before producing any
// output: connection refused, non-2xx status, or a bad request body.
var ErrUnavailable = errors.New("ai: generation endpoint unavailable")

// Generator produces model text for a fully rendered prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// StreamGenerator is an optional interface. Generators may produce output
// incrementally; both channels are closed when the stream ends.
type StreamGenerator interface {
	GenerateStream(ctx context.Context, prompt string) (<-chan string, <-chan error)
}
