// Package middleware provides the HTTP middleware in front of the API.
//
//   - CORS: cross-origin access for the learning front end, exposing the
//     trace headers
//   - RateLimit: per-IP token buckets, idle addresses swept after ten minutes
//   - GlobalRateLimit: a single bucket shared by every caller
//
// Example Usage:
//
//	router.Use(middleware.CORS(middleware.DefaultCORSConfig()))
//	router.Use(middleware.RateLimit(middleware.DefaultRateLimitConfig()))
package middleware
