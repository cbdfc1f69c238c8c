package execution

import (
	"context"
	"errors"
	"fmt"
	"time"
)

var (
	ErrSessionNotInitialized = errors.New("interpreter session not initialized")
	ErrLoadFailed            = errors.New("interpreter failed to load")
)

// Session owns one interpreter. It is confined to the worker goroutine.
type Session struct {
	loader Loader
	interp Interpreter
}

// NewSession creates an uninitialized session
func NewSession(loader Loader) *Session {
	return &Session{loader: loader}
}

// Ready reports whether Init has succeeded
func (s *Session) Ready() bool {
	return s.interp != nil
}

// Init loads the interpreter and wires the cancel buffer into it.
// Repeated calls after a success are no-ops. A failed load leaves the
// session uninitialized so a later Init can retry.
func (s *Session) Init(ctx context.Context, cancel *CancelBuffer) error {
	if s.interp != nil {
		return nil
	}

	interp, err := s.loader.Load(ctx, cancel)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrLoadFailed, err)
	}
	if interp == nil {
		return fmt.Errorf("%w: loader returned no interpreter", ErrLoadFailed)
	}

	s.interp = interp
	return nil
}

// Run executes source and measures wall-clock time
func (s *Session) Run(ctx context.Context, source string) (Output, time.Duration, error) {
	if s.interp == nil {
		return Output{}, 0, ErrSessionNotInitialized
	}

	start := time.Now()
	out, err := s.interp.Run(ctx, source)
	return out, time.Since(start), err
}

// Close releases the interpreter
func (s *Session) Close() error {
	if s.interp == nil {
		return nil
	}
	err := s.interp.Close()
	s.interp = nil
	return err
}
