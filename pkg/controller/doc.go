// Package controller contains HTTP middlewares and helper handlers shared by
// the PhishGuard API.
//
// Provided middlewares:
//   - WithCORS: Adds CORS headers for the scan endpoints and answers OPTIONS preflight.
//   - WithLogger: Attaches a request-scoped logger and request ID to the context and logs access info.
//   - WithRecover: Turns a panicking handler into a logged 500 response.
//
// Provided helpers:
//   - Pprof: Returns a router exposing net/http/pprof handlers.
package controller
