package execution

import (
	"context"
	"errors"
)

// ErrInterrupted is the interrupt condition an interpreter raises after
// observing the cancellation signal
var ErrInterrupted = errors.New("execution interrupted")

// IsInterrupted reports whether err is the interrupt condition
func IsInterrupted(err error) bool {
	return errors.Is(err, ErrInterrupted)
}

// Output holds the text a single run wrote to its streams
type Output struct {
	Stdout string
	Stderr string
}

// Interpreter runs source text. Implementations capture output per run
// and return ErrInterrupted (possibly wrapped) when the cancel buffer
// given to their Loader was signaled.
type Interpreter interface {
	Run(ctx context.Context, source string) (Output, error)
	Close() error
}

// Loader prepares an interpreter. cancel may be nil.
type Loader interface {
	Load(ctx context.Context, cancel *CancelBuffer) (Interpreter, error)
}

// LoaderFunc adapts a function to Loader
type LoaderFunc func(ctx context.Context, cancel *CancelBuffer) (Interpreter, error)

// Load calls f
func (f LoaderFunc) Load(ctx context.Context, cancel *CancelBuffer) (Interpreter, error) {
	return f(ctx, cancel)
}
