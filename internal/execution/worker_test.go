package execution

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func post(t *testing.T, w *Worker, req Request) Response {
	t.Helper()
	require.NoError(t, w.Post(context.Background(), req))
	select {
	case resp := <-w.Responses():
		return resp
	case <-time.After(2 * time.Second):
		t.Fatalf("no response for request %d", req.RequestID())
		return nil
	}
}

func TestWorkerExecuteBeforeInit(t *testing.T) {
	loader := newFlakyLoader(0)
	w := NewWorker(loader, nil)
	defer w.Terminate()

	resp := post(t, w, ExecuteRequest{ID: 1, Source: "print hi"})
	failed, ok := resp.(Failed)
	require.True(t, ok, "got %T", resp)
	assert.Equal(t, uint64(1), failed.ID)
	assert.Contains(t, failed.Message, ErrSessionNotInitialized.Error())
	assert.Zero(t, loader.loads.Load())

	// The worker keeps serving
	assert.IsType(t, InitComplete{}, post(t, w, InitRequest{ID: 2}))
}

func TestWorkerInitIdempotent(t *testing.T) {
	loader := newFlakyLoader(0)
	w := NewWorker(loader, nil)
	defer w.Terminate()

	assert.Equal(t, InitComplete{ID: 1}, post(t, w, InitRequest{ID: 1}))
	assert.Equal(t, InitComplete{ID: 2}, post(t, w, InitRequest{ID: 2}))
	assert.Equal(t, int32(1), loader.loads.Load())
}

func TestWorkerInitFailureThenRetry(t *testing.T) {
	loader := newFlakyLoader(1)
	w := NewWorker(loader, nil)
	defer w.Terminate()

	resp := post(t, w, InitRequest{ID: 1})
	failed, ok := resp.(InitFailed)
	require.True(t, ok, "got %T", resp)
	assert.Contains(t, failed.Message, "distribution unavailable")

	assert.IsType(t, Failed{}, post(t, w, ExecuteRequest{ID: 2, Source: "print x"}))

	assert.Equal(t, InitComplete{ID: 3}, post(t, w, InitRequest{ID: 3}))
	assert.IsType(t, Completed{}, post(t, w, ExecuteRequest{ID: 4, Source: "print x"}))
}

func TestWorkerOutcomes(t *testing.T) {
	w := NewWorker(newFlakyLoader(0), nil)
	defer w.Terminate()
	post(t, w, InitRequest{ID: 1})

	resp := post(t, w, ExecuteRequest{ID: 2, Source: "print hello\nwarn careful"})
	completed, ok := resp.(Completed)
	require.True(t, ok, "got %T", resp)
	assert.Equal(t, "hello\n", completed.Stdout)
	assert.Equal(t, "careful\n", completed.Stderr)

	resp = post(t, w, ExecuteRequest{ID: 3, Source: "print partial\nraise NameError: name 'x' is not defined"})
	failed, ok := resp.(Failed)
	require.True(t, ok, "got %T", resp)
	assert.Equal(t, "NameError: name 'x' is not defined", failed.Message)
	assert.Equal(t, OutcomeError, failed.Outcome())

	// Residual output from the failed run does not leak
	resp = post(t, w, ExecuteRequest{ID: 4, Source: "print clean"})
	assert.Equal(t, "clean\n", resp.(Completed).Stdout)
}

func TestWorkerRecoversFromPanic(t *testing.T) {
	w := NewWorker(newFlakyLoader(0), nil)
	defer w.Terminate()
	post(t, w, InitRequest{ID: 1})

	resp := post(t, w, ExecuteRequest{ID: 2, Source: "panic"})
	failed, ok := resp.(Failed)
	require.True(t, ok, "got %T", resp)
	assert.Contains(t, failed.Message, "scripted panic")

	assert.IsType(t, Completed{}, post(t, w, ExecuteRequest{ID: 3, Source: "print ok"}))
}

func TestWorkerInterruptIsTimeout(t *testing.T) {
	cancel := NewCancelBuffer()
	w := NewWorker(newFlakyLoader(0), nil)
	defer w.Terminate()
	post(t, w, InitRequest{ID: 1, Cancel: cancel})

	require.NoError(t, w.Post(context.Background(), ExecuteRequest{ID: 2, Source: "loop"}))
	time.Sleep(20 * time.Millisecond)
	cancel.Signal()

	select {
	case resp := <-w.Responses():
		timedOut, ok := resp.(TimedOut)
		require.True(t, ok, "got %T", resp)
		assert.Equal(t, uint64(2), timedOut.ID)
		assert.Greater(t, timedOut.Elapsed, time.Duration(0))
	case <-time.After(2 * time.Second):
		t.Fatal("interrupt not observed")
	}

	cancel.Clear()
	assert.IsType(t, Completed{}, post(t, w, ExecuteRequest{ID: 3, Source: "print again"}))
}

func TestWorkerPreservesOrder(t *testing.T) {
	w := NewWorker(newFlakyLoader(0), nil)
	defer w.Terminate()
	post(t, w, InitRequest{ID: 1})

	for id := uint64(10); id < 15; id++ {
		require.NoError(t, w.Post(context.Background(), ExecuteRequest{ID: id, Source: "print x"}))
	}
	for id := uint64(10); id < 15; id++ {
		resp := <-w.Responses()
		assert.Equal(t, id, resp.ResponseID())
	}
}

func TestWorkerTerminate(t *testing.T) {
	loader := newFlakyLoader(0)
	w := NewWorker(loader, nil)
	post(t, w, InitRequest{ID: 1})

	w.Terminate()
	w.Terminate()

	assert.ErrorIs(t, w.Post(context.Background(), InitRequest{ID: 2}), ErrWorkerTerminated)
	_, open := <-w.Responses()
	assert.False(t, open)
}
