package execution

import (
	"context"
	"sync/atomic"
	"time"
)

// SignalInterrupt is the value written into a CancelBuffer to request
// an interrupt. It mirrors SIGINT.
const SignalInterrupt int32 = 2

// DefaultPollInterval is how often interpreters check the buffer
const DefaultPollInterval = 10 * time.Millisecond

// CancelBuffer is a single-writer, single-reader cancellation flag.
// All methods are safe on a nil receiver.
type CancelBuffer struct {
	v atomic.Int32
}

// NewCancelBuffer creates a cleared buffer
func NewCancelBuffer() *CancelBuffer {
	return &CancelBuffer{}
}

// Signal requests an interrupt
func (c *CancelBuffer) Signal() {
	if c != nil {
		c.v.Store(SignalInterrupt)
	}
}

// Clear resets the buffer before a run
func (c *CancelBuffer) Clear() {
	if c != nil {
		c.v.Store(0)
	}
}

// Signaled reports whether an interrupt was requested
func (c *CancelBuffer) Signaled() bool {
	return c != nil && c.v.Load() == SignalInterrupt
}

// Watch polls the buffer until ctx is done and calls onSignal once the
// signal is observed. The returned stop function ends the poller and
// waits for it to exit, so onSignal never runs after stop returns.
func (c *CancelBuffer) Watch(ctx context.Context, interval time.Duration, onSignal func()) (stop func()) {
	if c == nil {
		return func() {}
	}
	if interval <= 0 {
		interval = DefaultPollInterval
	}

	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	go func() {
		defer close(done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if c.Signaled() {
					onSignal()
					return
				}
			}
		}
	}()

	return func() {
		cancel()
		<-done
	}
}
