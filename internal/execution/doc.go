/*
Package execution runs untrusted source code on a dedicated worker goroutine.

The caller side (Client) and the worker side (Worker) talk only through
request and response messages. The one piece of shared memory is the
CancelBuffer: the caller writes it when its own deadline expires and the
interpreter polls it, raising ErrInterrupted when it observes the signal.
The worker turns that condition into a TimedOut response.

Interpreters plug in through the Loader and Interpreter interfaces; see
internal/interpreter for the Python and JavaScript implementations.
*/
package execution
