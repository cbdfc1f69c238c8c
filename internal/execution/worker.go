package execution

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"sync"

	"go.uber.org/zap"
)

// ErrWorkerTerminated is returned when posting to a stopped worker
var ErrWorkerTerminated = errors.New("worker terminated")

// TimeoutMessage is reported for runs stopped by the cancel signal
const TimeoutMessage = "Execution timed out"

const inboxSize = 16

// Worker handles requests in arrival order on its own goroutine
type Worker struct {
	session *Session
	inbox   chan Request
	outbox  chan Response
	logger  *zap.Logger

	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
	once   sync.Once
}

// NewWorker starts a worker around an uninitialized session
func NewWorker(loader Loader, logger *zap.Logger) *Worker {
	if logger == nil {
		logger = zap.NewNop()
	}

	ctx, cancel := context.WithCancel(context.Background())
	w := &Worker{
		session: NewSession(loader),
		inbox:   make(chan Request, inboxSize),
		outbox:  make(chan Response, inboxSize),
		logger:  logger,
		ctx:     ctx,
		cancel:  cancel,
		done:    make(chan struct{}),
	}

	go w.loop()
	return w
}

// Post enqueues a request
func (w *Worker) Post(ctx context.Context, req Request) error {
	select {
	case <-w.ctx.Done():
		return ErrWorkerTerminated
	default:
	}

	select {
	case w.inbox <- req:
		return nil
	case <-w.ctx.Done():
		return ErrWorkerTerminated
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Responses is closed after the worker stops
func (w *Worker) Responses() <-chan Response {
	return w.outbox
}

// Terminate stops the worker and releases its interpreter. A run in
// progress sees its context cancelled.
func (w *Worker) Terminate() {
	w.once.Do(func() {
		w.cancel()
	})
	<-w.done
}

// Done is closed once the worker loop has exited
func (w *Worker) Done() <-chan struct{} {
	return w.done
}

func (w *Worker) loop() {
	defer close(w.done)
	defer close(w.outbox)
	defer func() {
		if err := w.session.Close(); err != nil {
			w.logger.Warn("Failed to close interpreter", zap.Error(err))
		}
	}()

	for {
		select {
		case <-w.ctx.Done():
			return
		case req := <-w.inbox:
			resp := w.handle(req)
			select {
			case w.outbox <- resp:
			case <-w.ctx.Done():
				return
			}
		}
	}
}

func (w *Worker) handle(req Request) (resp Response) {
	defer func() {
		if r := recover(); r != nil {
			w.logger.Error("Worker handler panicked",
				zap.Uint64("id", req.RequestID()),
				zap.String("kind", string(req.Kind())),
				zap.Any("panic", r),
				zap.ByteString("stack", debug.Stack()),
			)
			msg := fmt.Sprintf("internal error: %v", r)
			if req.Kind() == KindInit {
				resp = InitFailed{ID: req.RequestID(), Message: msg}
			} else {
				resp = Failed{ID: req.RequestID(), Message: msg}
			}
		}
	}()

	switch r := req.(type) {
	case InitRequest:
		return w.handleInit(r)
	case ExecuteRequest:
		return w.handleExecute(r)
	default:
		return Failed{ID: req.RequestID(), Message: fmt.Sprintf("unknown request kind %q", req.Kind())}
	}
}

func (w *Worker) handleInit(req InitRequest) Response {
	if w.session.Ready() {
		return InitComplete{ID: req.ID}
	}

	if err := w.session.Init(w.ctx, req.Cancel); err != nil {
		w.logger.Warn("Interpreter init failed", zap.Uint64("id", req.ID), zap.Error(err))
		return InitFailed{ID: req.ID, Message: err.Error()}
	}

	w.logger.Debug("Interpreter ready", zap.Uint64("id", req.ID))
	return InitComplete{ID: req.ID}
}

func (w *Worker) handleExecute(req ExecuteRequest) Response {
	out, elapsed, err := w.session.Run(w.ctx, req.Source)
	switch {
	case err == nil:
		w.logger.Debug("Execution completed", zap.Uint64("id", req.ID), zap.Duration("elapsed", elapsed))
		return Completed{ID: req.ID, Stdout: out.Stdout, Stderr: out.Stderr, Elapsed: elapsed}
	case IsInterrupted(err):
		w.logger.Debug("Execution interrupted", zap.Uint64("id", req.ID), zap.Duration("elapsed", elapsed))
		return TimedOut{ID: req.ID, Message: TimeoutMessage, Elapsed: elapsed}
	default:
		w.logger.Debug("Execution failed", zap.Uint64("id", req.ID), zap.Error(err))
		return Failed{ID: req.ID, Message: err.Error(), Elapsed: elapsed}
	}
}
