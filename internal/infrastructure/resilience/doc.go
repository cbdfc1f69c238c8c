/*
Package resilience guards calls to remote dependencies with a circuit breaker.

The interpreter distribution fetcher wraps every download in a Breaker so a
dead mirror fails fast instead of stalling each worker's init.

	breaker := resilience.New("python-dist", resilience.Settings{
		Timeout: 30 * time.Second,
		ReadyToTrip: func(c resilience.Counts) bool {
			return c.ConsecutiveFailures >= 3
		},
	})

	data, err := resilience.Call(ctx, breaker, func(ctx context.Context) ([]byte, error) {
		return download(ctx)
	})

States:

	Closed --[failures]-> Open --[timeout]-> Half-Open --[successes]-> Closed
	                                           |
	                                       [failure]
	                                           v
	                                          Open

Cancellation by the caller is not counted as a failure.
*/
package resilience
