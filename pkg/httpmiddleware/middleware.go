// Package httpmiddleware provides composable net/http middleware: panic
// recovery, CORS, rate limiting, request IDs, request logging and OpenTelemetry
// instrumentation.
package httpmiddleware

import "net/http"

// Middleware is a function that wraps an http.Handler with additional
// behaviour.
type Middleware func(http.Handler) http.Handler

// Wrap applies middlewares to h in order: the first middleware is the
// outermost, i.e. it sees the request first.
func Wrap(h http.Handler, middlewares ...Middleware) http.Handler {
	for i := len(middlewares) - 1; i >= 0; i-- {
		h = middlewares[i](h)
	}
	return h
}

// RouteFinder reports the route pattern a request will be dispatched to,
// before the mux has actually served it. Used to label logs and metrics with
// low-cardinality route names instead of raw URLs.
type RouteFinder func(r *http.Request) (pattern string, ok bool)

// MakeRouteFinder builds a RouteFinder backed by mux's own routing, so the
// reported pattern always matches what the mux will serve.
func MakeRouteFinder(mux *http.ServeMux) RouteFinder {
	return func(r *http.Request) (string, bool) {
		_, pattern := mux.Handler(r)
		return pattern, pattern != ""
	}
}
