package execution

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

var (
	ErrClientClosed = errors.New("execution client closed")
	ErrUnresponsive = errors.New("worker did not answer the cancellation signal")
	ErrInitFailed   = errors.New("interpreter init failed")
)

// ClientConfig tunes the caller-side timeout policy
type ClientConfig struct {
	// Timeout is how long a run may take before the cancel signal is
	// written. Zero disables the signal.
	Timeout time.Duration
	// Grace is how long to wait for the worker after signalling
	Grace  time.Duration
	Logger *zap.Logger
}

// DefaultClientConfig matches the interactive scratchpad
func DefaultClientConfig() ClientConfig {
	return ClientConfig{
		Timeout: 5 * time.Second,
		Grace:   2 * time.Second,
	}
}

// Client is the caller side of the bridge. It owns the cancel buffer,
// assigns request ids and serializes executes.
type Client struct {
	worker *Worker
	cancel *CancelBuffer
	config ClientConfig
	logger *zap.Logger

	nextID  atomic.Uint64
	mu      sync.Mutex
	pending map[uint64]chan Response
	execMu  sync.Mutex
	healthy atomic.Bool
}

// NewClient attaches a client to worker and starts correlating responses
func NewClient(worker *Worker, config ClientConfig) *Client {
	logger := config.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	c := &Client{
		worker:  worker,
		cancel:  NewCancelBuffer(),
		config:  config,
		logger:  logger,
		pending: make(map[uint64]chan Response),
	}
	c.healthy.Store(true)

	go c.dispatch()
	return c
}

// Dial starts a worker for loader and returns a client bound to it
func Dial(loader Loader, config ClientConfig) *Client {
	return NewClient(NewWorker(loader, config.Logger), config)
}

// Healthy is false once the worker stopped or ignored a cancel signal
func (c *Client) Healthy() bool {
	return c.healthy.Load()
}

// Init prepares the worker's interpreter session
func (c *Client) Init(ctx context.Context) error {
	id := c.nextID.Add(1)
	resp, err := c.roundTrip(ctx, InitRequest{ID: id, Cancel: c.cancel}, nil)
	if err != nil {
		return err
	}

	if failed, ok := resp.(InitFailed); ok {
		return fmt.Errorf("%w: %s", ErrInitFailed, failed.Message)
	}
	return nil
}

// Execute runs source and waits for its result. Timeouts and interpreter
// errors come back as TimedOut or Failed responses; the error return is
// reserved for transport failures.
func (c *Client) Execute(ctx context.Context, source string) (Response, error) {
	c.execMu.Lock()
	defer c.execMu.Unlock()

	c.cancel.Clear()
	id := c.nextID.Add(1)

	var deadline <-chan time.Time
	if c.config.Timeout > 0 {
		timer := time.NewTimer(c.config.Timeout)
		defer timer.Stop()
		deadline = timer.C
	}

	return c.roundTrip(ctx, ExecuteRequest{ID: id, Source: source}, deadline)
}

// Close terminates the worker
func (c *Client) Close() {
	c.worker.Terminate()
}

func (c *Client) roundTrip(ctx context.Context, req Request, deadline <-chan time.Time) (Response, error) {
	ch := make(chan Response, 1)
	id := req.RequestID()

	c.mu.Lock()
	if c.pending == nil {
		c.mu.Unlock()
		return nil, ErrClientClosed
	}
	c.pending[id] = ch
	c.mu.Unlock()
	defer c.forget(id)

	if err := c.worker.Post(ctx, req); err != nil {
		return nil, err
	}

	var grace <-chan time.Time
	for {
		select {
		case resp, ok := <-ch:
			if !ok {
				return nil, ErrClientClosed
			}
			return resp, nil
		case <-deadline:
			deadline = nil
			c.cancel.Signal()
			c.logger.Debug("Execution deadline reached, signalling interrupt",
				zap.Uint64("id", id),
				zap.Duration("timeout", c.config.Timeout),
			)
			if c.config.Grace > 0 {
				timer := time.NewTimer(c.config.Grace)
				defer timer.Stop()
				grace = timer.C
			}
		case <-grace:
			c.healthy.Store(false)
			c.logger.Warn("Worker ignored interrupt", zap.Uint64("id", id))
			return nil, ErrUnresponsive
		case <-ctx.Done():
			return nil, c.abandon(id, ch, ctx.Err())
		}
	}
}

// abandon interrupts a run whose caller went away. The client stays
// healthy only if the worker answers within the grace period, so the
// next caller never inherits the abandoned run or its cancel signal.
func (c *Client) abandon(id uint64, ch <-chan Response, cause error) error {
	c.cancel.Signal()

	var grace <-chan time.Time
	if c.config.Grace > 0 {
		timer := time.NewTimer(c.config.Grace)
		defer timer.Stop()
		grace = timer.C
	} else {
		closed := make(chan time.Time)
		close(closed)
		grace = closed
	}

	select {
	case <-ch:
		c.logger.Debug("Abandoned request finished", zap.Uint64("id", id))
	case <-grace:
		c.healthy.Store(false)
		c.logger.Warn("Worker still busy after caller left", zap.Uint64("id", id))
	}
	return cause
}

func (c *Client) forget(id uint64) {
	c.mu.Lock()
	if c.pending != nil {
		delete(c.pending, id)
	}
	c.mu.Unlock()
}

func (c *Client) dispatch() {
	for resp := range c.worker.Responses() {
		c.mu.Lock()
		ch, ok := c.pending[resp.ResponseID()]
		c.mu.Unlock()
		if !ok {
			c.logger.Debug("Dropping uncorrelated response", zap.Uint64("id", resp.ResponseID()))
			continue
		}
		ch <- resp
	}

	c.healthy.Store(false)
	c.mu.Lock()
	for id, ch := range c.pending {
		close(ch)
		delete(c.pending, id)
	}
	c.pending = nil
	c.mu.Unlock()
}
