package javascript

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/bytedance/sonic"
	"github.com/dop251/goja"

	"github.com/GriffinCanCode/PyLearn/backend/internal/execution"
)

// Runtime wraps a goja VM with cooperative cancellation
type Runtime struct {
	vm     *goja.Runtime
	config Config
	cancel *execution.CancelBuffer
	mu     sync.Mutex

	// Per-run output
	stdout strings.Builder
	stderr strings.Builder
}

// New creates a runtime wired to cancel, which may be nil
func New(config Config, cancel *execution.CancelBuffer) (*Runtime, error) {
	r := &Runtime{
		config: config,
		cancel: cancel,
	}
	if err := r.reset(); err != nil {
		return nil, err
	}
	return r, nil
}

// Run evaluates source in the session VM
func (r *Runtime) Run(ctx context.Context, source string) (execution.Output, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.vm == nil {
		return execution.Output{}, errors.New("runtime closed")
	}

	r.stdout.Reset()
	r.stderr.Reset()

	vm := r.vm
	stopWatch := r.cancel.Watch(ctx, r.config.PollInterval, func() {
		vm.Interrupt(execution.ErrInterrupted)
	})

	runCtx, stopCtx := context.WithCancel(ctx)
	ctxDone := make(chan struct{})
	go func() {
		defer close(ctxDone)
		<-runCtx.Done()
		if ctx.Err() != nil {
			vm.Interrupt(ctx.Err())
		}
	}()

	_, err := vm.RunString(source)

	stopWatch()
	stopCtx()
	<-ctxDone
	vm.ClearInterrupt()

	if err != nil {
		return execution.Output{}, r.translate(err)
	}

	return execution.Output{
		Stdout: r.stdout.String(),
		Stderr: r.stderr.String(),
	}, nil
}

// translate maps goja failures onto the bridge's error conditions
func (r *Runtime) translate(err error) error {
	var interrupted *goja.InterruptedError
	if errors.As(err, &interrupted) {
		if cause, ok := interrupted.Value().(error); ok {
			if errors.Is(cause, execution.ErrInterrupted) {
				return fmt.Errorf("%w: %s", execution.ErrInterrupted, "script interrupted")
			}
			return cause
		}
		return fmt.Errorf("interrupted: %v", interrupted.Value())
	}

	var exception *goja.Exception
	if errors.As(err, &exception) {
		return errors.New(exception.Value().String())
	}
	return err
}

// reset builds a fresh VM with the sandboxed globals
func (r *Runtime) reset() error {
	vm := goja.New()
	if r.config.MaxCallStackSize > 0 {
		vm.SetMaxCallStackSize(r.config.MaxCallStackSize)
	}

	// Remove host escape hatches
	for _, name := range []string{"require", "process", "module", "exports"} {
		if err := vm.Set(name, goja.Undefined()); err != nil {
			return fmt.Errorf("failed to remove %s: %w", name, err)
		}
	}

	if r.config.EnableConsole {
		console := vm.NewObject()
		_ = console.Set("log", r.makeConsoleFunc(&r.stdout))
		_ = console.Set("info", r.makeConsoleFunc(&r.stdout))
		_ = console.Set("warn", r.makeConsoleFunc(&r.stderr))
		_ = console.Set("error", r.makeConsoleFunc(&r.stderr))
		if err := vm.Set("console", console); err != nil {
			return err
		}
	}

	// Timers are inert
	noop := func(goja.FunctionCall) goja.Value { return goja.Undefined() }
	_ = vm.Set("setTimeout", noop)
	_ = vm.Set("setInterval", noop)

	r.vm = vm
	return nil
}

// makeConsoleFunc writes space-joined arguments as one line
func (r *Runtime) makeConsoleFunc(out *strings.Builder) func(goja.FunctionCall) goja.Value {
	return func(call goja.FunctionCall) goja.Value {
		for i, arg := range call.Arguments {
			if i > 0 {
				out.WriteByte(' ')
			}
			out.WriteString(formatValue(arg))
		}
		out.WriteByte('\n')
		return goja.Undefined()
	}
}

// formatValue prints objects as JSON and everything else as its string form
func formatValue(v goja.Value) string {
	if _, ok := v.(*goja.Object); !ok || goja.IsUndefined(v) || goja.IsNull(v) {
		return v.String()
	}
	if _, isFunc := goja.AssertFunction(v); isFunc {
		return v.String()
	}
	data, err := sonic.Marshal(v.Export())
	if err != nil {
		return v.String()
	}
	return string(data)
}

// Reset discards every global defined by earlier runs
func (r *Runtime) Reset() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.reset()
}

// Close releases the VM
func (r *Runtime) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.vm = nil
	return nil
}
