/*
Package tracing provides lightweight request tracing.

Every HTTP request gets a span; the trace id comes from the X-Trace-ID
header when the caller sent one and is generated otherwise, and both ids
are returned in response headers. Handlers open child spans for slow work
such as interpreter runs:

	span, ctx := tracer.StartSpan(c.Request.Context(), "execution.run")
	defer func() { span.Finish(); tracer.Submit(span) }()

Finished spans are written to the zap logger by a background collector,
at debug level for successes and warn level for failures.
*/
package tracing
