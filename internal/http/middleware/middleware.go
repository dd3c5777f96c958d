// Package middleware holds the HTTP middleware shared by every route.
package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"

	"homiepro-storefront/internal/logger"
)

type ctxKey int

const ctxKeyRequestID ctxKey = iota

// RequestIDHeader is read from incoming requests and echoed on responses.
const RequestIDHeader = "X-Request-Id"

// RequestIDFromContext returns the id assigned by RequestID, if any.
func RequestIDFromContext(ctx context.Context) string {
	v, _ := ctx.Value(ctxKeyRequestID).(string)
	return v
}

// RequestID tags each request with the caller's X-Request-Id or a new UUID.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := r.Header.Get(RequestIDHeader)
		if reqID == "" {
			reqID = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, reqID)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKeyRequestID, reqID)))
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (w *statusRecorder) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusRecorder) Write(b []byte) (int, error) {
	n, err := w.ResponseWriter.Write(b)
	w.bytes += n
	return n, err
}

type logOptions struct {
	skips map[string]struct{}
}

// Option configures LogRequests.
type Option func(*logOptions)

// WithSkips suppresses logging for the given exact paths.
func WithSkips(paths ...string) Option {
	return func(o *logOptions) {
		for _, p := range paths {
			o.skips[p] = struct{}{}
		}
	}
}

// LogRequests logs one line per request after it completes.
func LogRequests(opts ...Option) func(http.Handler) http.Handler {
	o := &logOptions{skips: map[string]struct{}{}}
	for _, opt := range opts {
		opt(o)
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, skip := o.skips[r.URL.Path]; skip {
				next.ServeHTTP(w, r)
				return
			}
			start := time.Now()
			sr := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(sr, r)
			logger.WithFields(map[string]interface{}{
				"method":     r.Method,
				"path":       r.URL.Path,
				"status":     sr.status,
				"bytes":      sr.bytes,
				"latency_ms": float64(time.Since(start).Microseconds()) / 1000.0,
				"request_id": RequestIDFromContext(r.Context()),
			}).Info("http_request")
		})
	}
}
