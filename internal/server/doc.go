// Package server provides HTTP routing, middleware and a graceful server wrapper for the local web form.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support.
//
// [Middleware] added first runs outermost, so Recover should be registered before Logging.
//
// [BasicRouter] registers method routes as "METHOD /path" mux patterns and exposes them via
// [BasicRouter.Patterns] for startup logging.
//
// # Middleware
//
//   - [Logging] : one structured log line per request with status and duration
//   - [RateLimit] : token bucket limiter (golang.org/x/time/rate) answering 429 when exhausted
//   - [Recover] : converts handler panics into 500 responses
//
// # Handler Interface
//
// Custom handlers implement the [Handler] interface, which wraps the stdlib handler interface and adds routes,
// allowing handlers to register multiple routes to encapsulate route definitions within the implementation.
//
// # Server
//
// [Server] listens on the configured address and shuts down when its context is cancelled.
package server
