// Package server is the HTTP shell around podscribe: a Gin engine behind an
// h2c handler, wrapped in the net/http middleware from server/middleware.
//
// Middleware applied to every request, outermost first:
//
//   - Recovery: panics become 500 INTERNAL_ERROR
//   - RequestID: X-Request-Id generation and propagation
//   - CORS
//   - BodySizeLimit: caps upload size
//   - RequestLogger: one log line per request
//
// Route-level middleware (Auth, RateLimit, Metrics) is applied by the api
// package. The endpoint subpackage serves /health and /info.
package server
