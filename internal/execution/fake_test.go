package execution

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"
)

// scriptedInterpreter interprets a tiny command language:
//
//	print <text>   writes text to stdout
//	warn <text>    writes text to stderr
//	raise <text>   fails with text
//	panic          panics
//	loop           spins until the cancel buffer is signaled
//	hang <dur>     sleeps for dur, ignoring both the buffer and ctx
type scriptedInterpreter struct {
	cancel *CancelBuffer
	closed atomic.Bool
}

func (s *scriptedInterpreter) Run(ctx context.Context, source string) (Output, error) {
	var stdout, stderr strings.Builder
	for _, line := range strings.Split(source, "\n") {
		cmd, arg, _ := strings.Cut(strings.TrimSpace(line), " ")
		switch cmd {
		case "print":
			stdout.WriteString(arg + "\n")
		case "warn":
			stderr.WriteString(arg + "\n")
		case "raise":
			return Output{Stdout: stdout.String()}, errors.New(arg)
		case "panic":
			panic("scripted panic")
		case "hang":
			d, err := time.ParseDuration(arg)
			if err != nil {
				return Output{}, err
			}
			time.Sleep(d)
		case "loop":
			for {
				if s.cancel.Signaled() {
					return Output{}, fmt.Errorf("KeyboardInterrupt: %w", ErrInterrupted)
				}
				select {
				case <-ctx.Done():
					return Output{}, ctx.Err()
				default:
				}
				time.Sleep(time.Millisecond)
			}
		}
	}
	return Output{Stdout: stdout.String(), Stderr: stderr.String()}, nil
}

func (s *scriptedInterpreter) Close() error {
	s.closed.Store(true)
	return nil
}

// flakyLoader fails the first n loads
type flakyLoader struct {
	failures atomic.Int32
	loads    atomic.Int32
}

func newFlakyLoader(failures int32) *flakyLoader {
	l := &flakyLoader{}
	l.failures.Store(failures)
	return l
}

func (l *flakyLoader) Load(ctx context.Context, cancel *CancelBuffer) (Interpreter, error) {
	l.loads.Add(1)
	if l.failures.Add(-1) >= 0 {
		return nil, errors.New("distribution unavailable")
	}
	return &scriptedInterpreter{cancel: cancel}, nil
}
