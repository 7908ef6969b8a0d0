package main

import (
	"context"
	"net/http"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"qa-gate/internal/middleware"
)

func shutdownContext(timeout time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), timeout)
}

// withMiddleware wraps h in the global middleware, outermost first: server span,
// access log, security headers, CORS, rate limit. Service spans nest under the
// server span through the request context.
func withMiddleware(h http.Handler, cors *middleware.CORSMiddleware, limiter *middleware.RateLimiter) http.Handler {
	return otelhttp.NewHandler(
		middleware.LoggingMiddleware(
			middleware.SecurityHeaders(
				cors.Handler(
					limiter.Limit(h),
				),
			),
		),
		"qa-gate",
		otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
			return r.Method + " " + r.URL.Path
		}),
	)
}
