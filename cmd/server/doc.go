// Package main is the entry point for the PyLearn backend server.
//
// The server parses learning topics into collapsible sections and runs
// learner programs in sandboxed interpreters (WebAssembly CPython by
// default, goja for JavaScript).
//
// Configuration comes from environment variables (see the config package);
// flags override them:
//
//	./server -port 8000 -language python -content ./topics -dev
//
// Signals:
//   - SIGINT, SIGTERM: graceful shutdown
package main
