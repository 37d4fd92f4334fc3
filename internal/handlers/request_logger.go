package handlers

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/getsentry/sentry-go/attribute"
	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/gitshopapp/storefront/internal/logging"
)

const maxRequestIDLength = 64

type requestIDKey struct{}

func requestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

type statusRecorder struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (w *statusRecorder) WriteHeader(status int) {
	if w.status == 0 {
		w.status = status
	}
	w.ResponseWriter.WriteHeader(status)
}

func (w *statusRecorder) Write(b []byte) (int, error) {
	if w.status == 0 {
		w.status = http.StatusOK
	}
	n, err := w.ResponseWriter.Write(b)
	w.bytes += n
	return n, err
}

func (w *statusRecorder) code() int {
	if w.status == 0 {
		return http.StatusOK
	}
	return w.status
}

// RequestLogger tags every request with an id, puts a request-scoped logger
// in the context and records one log line plus metrics when it finishes.
func (h *Handlers) RequestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		route := routeLabel(r)

		requestID := requestIDFromRequest(r)
		w.Header().Set("X-Request-ID", requestID)

		args := []any{
			"request_id", requestID,
			"method", r.Method,
			"path", r.URL.Path,
			"remote_ip", clientIP(r),
		}
		if route != "" {
			args = append(args, "route", route)
		}
		if userAgent := strings.TrimSpace(r.UserAgent()); userAgent != "" {
			args = append(args, "user_agent", userAgent)
		}
		if isHTMXRequest(r) {
			args = append(args, "htmx", true)
		}
		logger := h.logger.With(args...)

		rec := &statusRecorder{ResponseWriter: w}
		ctx := context.WithValue(r.Context(), requestIDKey{}, requestID)
		next.ServeHTTP(rec, r.WithContext(logging.WithLogger(ctx, logger)))

		status := rec.code()
		elapsed := time.Since(start)
		h.recordRequest(r, route, status, elapsed)

		logger.Log(r.Context(), requestLogLevel(r.URL.Path, status), "request completed",
			"status", status,
			"duration_ms", elapsed.Milliseconds(),
			"bytes", rec.bytes,
		)
	})
}

func (h *Handlers) recordRequest(r *http.Request, route string, status int, elapsed time.Duration) {
	if route == "" {
		route = "unknown"
	}

	ctx := r.Context()
	meter := sentry.NewMeter(ctx).WithCtx(ctx)
	attrs := sentry.WithAttributes(
		attribute.String("http.method", r.Method),
		attribute.String("http.route", route),
		attribute.String("http.status_class", fmt.Sprintf("%dxx", status/100)),
	)
	meter.Count("http.server.requests", 1, attrs)
	meter.Distribution("http.server.duration", float64(elapsed.Milliseconds()), sentry.WithUnit(sentry.UnitMillisecond), attrs)
	if status >= http.StatusInternalServerError {
		meter.Count("http.server.errors", 1, attrs)
	}

	h.metrics.ObserveRequest(route, r.Method, status, elapsed)
}

// requestLogLevel keeps static assets out of the info log and surfaces
// failures at the level they deserve.
func requestLogLevel(path string, status int) slog.Level {
	switch {
	case status >= http.StatusInternalServerError:
		return slog.LevelError
	case strings.HasPrefix(path, "/assets/"):
		return slog.LevelDebug
	case status >= http.StatusBadRequest && status != http.StatusNotFound:
		return slog.LevelWarn
	default:
		return slog.LevelInfo
	}
}

// requestIDFromRequest reuses an upstream X-Request-ID when it is short and
// printable, and mints a new one otherwise.
func requestIDFromRequest(r *http.Request) string {
	if r != nil {
		id := strings.TrimSpace(r.Header.Get("X-Request-ID"))
		if id != "" && len(id) <= maxRequestIDLength && isPrintableASCII(id) {
			return id
		}
	}
	return uuid.NewString()
}

func isPrintableASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < 0x21 || s[i] > 0x7e {
			return false
		}
	}
	return true
}

func clientIP(r *http.Request) string {
	if r == nil {
		return ""
	}
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		first, _, _ := strings.Cut(forwarded, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}
	if realIP := strings.TrimSpace(r.Header.Get("X-Real-Ip")); realIP != "" {
		return realIP
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}

// routeLabel names the matched mux route, falling back to its template.
func routeLabel(r *http.Request) string {
	if r == nil {
		return ""
	}
	route := mux.CurrentRoute(r)
	if route == nil {
		return ""
	}
	if name := route.GetName(); name != "" {
		return name
	}
	template, _ := route.GetPathTemplate()
	return template
}
