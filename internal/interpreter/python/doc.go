/*
Package python runs Python source on a WebAssembly build of CPython.

The interpreter is a WASI module hosted by wazero. A Distribution is
fetched once (see Fetcher), compiled once per Runtime and instantiated
per run as `python -c <source>`. Every run starts from a clean
interpreter; nothing defined in one run survives into the next.

Cancellation: while a run is in progress the session's CancelBuffer is
polled and, once signaled, the run's context is cancelled. The runtime is
configured with WithCloseOnContextDone so the guest stops at its next
function boundary; that exit is reported as execution.ErrInterrupted.
*/
package python
