package execution

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testClientConfig(timeout time.Duration) ClientConfig {
	return ClientConfig{Timeout: timeout, Grace: time.Second}
}

func TestClientExecuteBeforeInitIsBounded(t *testing.T) {
	client := Dial(newFlakyLoader(0), testClientConfig(time.Second))
	defer client.Close()

	start := time.Now()
	resp, err := client.Execute(context.Background(), "print hi")
	require.NoError(t, err)

	assert.Equal(t, OutcomeError, resp.Outcome())
	assert.Less(t, time.Since(start), 500*time.Millisecond)
}

func TestClientTimeoutThenRecovers(t *testing.T) {
	client := Dial(newFlakyLoader(0), testClientConfig(50*time.Millisecond))
	defer client.Close()
	require.NoError(t, client.Init(context.Background()))

	resp, err := client.Execute(context.Background(), "loop")
	require.NoError(t, err)
	assert.Equal(t, OutcomeTimeout, resp.Outcome())
	assert.IsType(t, TimedOut{}, resp)
	assert.True(t, client.Healthy())

	// The buffer is cleared before the next run
	resp, err = client.Execute(context.Background(), "print after")
	require.NoError(t, err)
	completed, ok := resp.(Completed)
	require.True(t, ok, "got %T", resp)
	assert.Equal(t, "after\n", completed.Stdout)
}

func TestClientInitFailure(t *testing.T) {
	client := Dial(newFlakyLoader(1), testClientConfig(time.Second))
	defer client.Close()

	err := client.Init(context.Background())
	assert.ErrorIs(t, err, ErrInitFailed)

	require.NoError(t, client.Init(context.Background()))
}

func TestClientAssignsIncreasingIDs(t *testing.T) {
	client := Dial(newFlakyLoader(0), testClientConfig(time.Second))
	defer client.Close()
	require.NoError(t, client.Init(context.Background()))

	var last uint64
	for i := 0; i < 3; i++ {
		resp, err := client.Execute(context.Background(), "print x")
		require.NoError(t, err)
		assert.Greater(t, resp.ResponseID(), last)
		last = resp.ResponseID()
	}
}

func TestClientSerializesConcurrentExecutes(t *testing.T) {
	client := Dial(newFlakyLoader(0), testClientConfig(time.Second))
	defer client.Close()
	require.NoError(t, client.Init(context.Background()))

	var wg sync.WaitGroup
	results := make([]Response, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			resp, err := client.Execute(context.Background(), "print same")
			assert.NoError(t, err)
			results[i] = resp
		}(i)
	}
	wg.Wait()

	seen := map[uint64]bool{}
	for _, resp := range results {
		require.IsType(t, Completed{}, resp)
		assert.Equal(t, "same\n", resp.(Completed).Stdout)
		seen[resp.ResponseID()] = true
	}
	assert.Len(t, seen, len(results))
}

func TestClientContextCancelled(t *testing.T) {
	client := Dial(newFlakyLoader(0), testClientConfig(0))
	defer client.Close()
	require.NoError(t, client.Init(context.Background()))

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	_, err := client.Execute(ctx, "loop")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.True(t, client.Healthy())

	// The abandoned run was interrupted and its signal does not leak
	start := time.Now()
	resp, err := client.Execute(context.Background(), "print next")
	require.NoError(t, err)
	completed, ok := resp.(Completed)
	require.True(t, ok, "got %T", resp)
	assert.Equal(t, "next\n", completed.Stdout)
	assert.Less(t, time.Since(start), 500*time.Millisecond)
}

func TestClientContextCancelledWorkerBusy(t *testing.T) {
	client := Dial(newFlakyLoader(0), ClientConfig{Timeout: time.Second, Grace: 20 * time.Millisecond})
	defer client.Close()
	require.NoError(t, client.Init(context.Background()))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := client.Execute(ctx, "hang 300ms")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.False(t, client.Healthy())
}

func TestClientAfterClose(t *testing.T) {
	client := Dial(newFlakyLoader(0), testClientConfig(time.Second))
	client.Close()

	assert.Eventually(t, func() bool { return !client.Healthy() }, time.Second, time.Millisecond)
	_, err := client.Execute(context.Background(), "print x")
	assert.Error(t, err)
}
