// Package config provides 12-factor configuration for the PyLearn backend.
//
// Configuration is loaded from environment variables with sensible defaults.
// CLI flags in cmd/server override the listen address for development.
//
// Configuration Sections:
//   - Server: HTTP listen address
//   - Content: extra topic sources (directory, URL) over the embedded seed
//   - Exec: interpreter language, caller-side timeout, pool size
//   - Python: pinned WebAssembly CPython distribution and cache
//   - Logging: level and output format
//   - RateLimit: per-IP rate limiting
//
// Environment Variables:
//   - PORT, HOST
//   - CONTENT_DIR, CONTENT_URL, CONTENT_SKIP_SEED
//   - EXEC_LANGUAGE, EXEC_TIMEOUT, EXEC_GRACE, EXEC_POOL_SIZE
//   - PYTHON_DIST_URL, PYTHON_DIST_VERSION, PYTHON_DIST_SHA256, PYTHON_CACHE_DIR
//   - LOG_LEVEL, LOG_DEV
//   - RATE_LIMIT_RPS, RATE_LIMIT_BURST, RATE_LIMIT_ENABLED
package config
