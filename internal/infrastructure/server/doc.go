// Package server assembles the backend.
//
// NewServer loads configuration-driven components in order: logger,
// metrics and tracer, the topic registry (embedded seed, then CONTENT_DIR,
// then CONTENT_URL), the view manager, interpreter pools, and finally the
// gin router with its middleware stack (recovery, tracing, metrics, CORS,
// rate limiting).
//
// Routes:
//
//	GET    /                      liveness
//	GET    /health                pools, latency summary, registry size
//	GET    /topics                topic list
//	GET    /topics/:key           parsed intro
//	GET    /topics/:key/render    disclosure cards (?view=, ?format=json)
//	POST   /views                 mount a view
//	GET    /views/:id             open sections
//	GET    /views/:id/render      cards for a view
//	POST   /views/:id/toggle/:i   flip one section
//	POST   /views/:id/expand-all
//	POST   /views/:id/collapse-all
//	DELETE /views/:id
//	POST   /execute               run a program
//	GET    /stream                execution bridge over WebSocket
//	GET    /metrics               Prometheus exposition
//	GET    /metrics/json          totals and latency summary
//	GET    /assets/*              disclosure.js
//
// Close drains HTTP, then terminates every interpreter worker.
package server
