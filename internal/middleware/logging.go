package middleware

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// RequestIDHeader carries the correlation id of a request in both directions
const RequestIDHeader = "X-Request-ID"

// maxLoggedBody bounds how much of each body is buffered for DEBUG logs
const maxLoggedBody = 4 << 10

type requestIDKey struct{}

// RequestID returns the correlation id assigned by LoggingMiddleware
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// statusRecorder remembers the status and, when capture is set, the body
type statusRecorder struct {
	http.ResponseWriter
	status  int
	sent    bool
	capture *bytes.Buffer
}

func (rec *statusRecorder) WriteHeader(status int) {
	if rec.sent {
		return
	}
	rec.status, rec.sent = status, true
	rec.ResponseWriter.WriteHeader(status)
}

func (rec *statusRecorder) Write(b []byte) (int, error) {
	rec.WriteHeader(http.StatusOK)
	if rec.capture != nil {
		if room := maxLoggedBody + 1 - rec.capture.Len(); room > 0 {
			rec.capture.Write(b[:min(room, len(b))])
		}
	}
	return rec.ResponseWriter.Write(b)
}

// LoggingMiddleware assigns a request id and writes one access log line per request:
// INFO below 400, WARN for 4xx, ERROR for 5xx. At DEBUG the query and both bodies
// are included.
func LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		began := time.Now()

		id := r.Header.Get(RequestIDHeader)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, id)
		ctx := context.WithValue(r.Context(), requestIDKey{}, id)
		r = r.WithContext(ctx)

		verbose := slog.Default().Enabled(ctx, slog.LevelDebug)
		var payload []byte
		if verbose && r.Body != nil {
			// only the head is buffered; the handler still reads the whole stream
			payload, _ = io.ReadAll(io.LimitReader(r.Body, maxLoggedBody+1))
			r.Body = readCloser{io.MultiReader(bytes.NewReader(payload), r.Body), r.Body}
		}

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		if verbose {
			rec.capture = &bytes.Buffer{}
		}
		next.ServeHTTP(rec, r)

		attrs := []any{
			"request_id", id,
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration_ms", time.Since(began).Milliseconds(),
			"remote_ip", r.RemoteAddr,
		}
		if verbose {
			attrs = append(attrs, "query", r.URL.RawQuery, "request_body", loggedBody(payload), "response_body", loggedBody(rec.capture.Bytes()))
		}

		switch {
		case rec.status >= http.StatusInternalServerError:
			slog.ErrorContext(ctx, "Request failed with error", attrs...)
		case rec.status >= http.StatusBadRequest:
			slog.WarnContext(ctx, "Request rejected", attrs...)
		default:
			slog.InfoContext(ctx, "Request completed", attrs...)
		}
	})
}

type readCloser struct {
	io.Reader
	io.Closer
}

func loggedBody(b []byte) string {
	if len(b) > maxLoggedBody {
		return string(b[:maxLoggedBody]) + "...(truncated)"
	}
	return string(b)
}
