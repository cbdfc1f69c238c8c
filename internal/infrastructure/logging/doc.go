// Package logging provides structured logging using uber/zap.
//
// This package offers production-ready logging with two modes:
//   - Production: JSON output for machine parsing
//   - Development: Colored console output for human readability
//
// Log Levels:
//   - Debug: Verbose debugging information
//   - Info: General informational messages
//   - Warn: Warning messages
//   - Error: Error messages
//   - Fatal: Fatal errors (exits process)
//
// Features:
//   - Structured fields for context
//   - Per-component child loggers
//
// Example Usage:
//
//	logger := logging.NewDefault()
//	bridge := logger.Component("bridge")
//	logger.Info("Server starting", zap.String("port", "8000"))
//	bridge.Warn("Interpreter init failed", zap.Error(err))
package logging
