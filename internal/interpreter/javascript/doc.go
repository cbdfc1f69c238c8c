/*
Package javascript hosts the scratchpad's JavaScript interpreter on goja.

Each Runtime keeps one VM for the lifetime of its session, so globals
defined by one run are visible to the next. Console output is captured
per run: console.log and console.info go to stdout, console.warn and
console.error go to stderr.

Scripts cannot reach the host. require, process, module and exports are
removed, and timers are inert.

Cancellation is cooperative. While a run is in progress a poller watches
the session's execution.CancelBuffer and calls vm.Interrupt when the
caller signals; the resulting *goja.InterruptedError is reported as
execution.ErrInterrupted.
*/
package javascript
