package httpx

import (
	"fmt"
	"net/http"
	"runtime/debug"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/SageDevelopmentCode/dine-api/internal/domain"
)

// skipInstrumentation reports whether a path is exempt from request timing.
// Dashboard pages, static assets, the favicon, and anything that looks like a
// file request pass through untouched.
func skipInstrumentation(path string) bool {
	if strings.HasPrefix(path, "/dashboard") {
		return true
	}
	if strings.HasPrefix(path, "/static/") {
		return true
	}
	if path == "/favicon.ico" {
		return true
	}
	return strings.Contains(path, ".")
}

// instrument wraps the whole mux. Every non-exempt request is audit-logged and
// counted in prometheus; requests under /api/ additionally produce exactly one
// monitoring row: a metric row on completion, or an error row when the handler
// panics. The panic is re-raised unchanged for the server to handle.
func (r *Router) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		if skipInstrumentation(req.URL.Path) {
			next.ServeHTTP(w, req)
			return
		}

		requestID := strings.TrimSpace(req.Header.Get("X-Request-ID"))
		if requestID == "" {
			requestID = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", requestID)

		recorder := &statusRecorder{ResponseWriter: w}
		start := time.Now()
		timed := strings.HasPrefix(req.URL.Path, "/api/")

		defer func() {
			elapsed := time.Since(start)
			if rec := recover(); rec != nil {
				if timed && r.telemetry != nil {
					r.telemetry.RecordError(domain.ErrorLog{
						Endpoint:     req.URL.Path,
						Method:       req.Method,
						ErrorMessage: fmt.Sprintf("%v", rec),
						ErrorType:    fmt.Sprintf("%T", rec),
						StackTrace:   string(debug.Stack()),
						StatusCode:   http.StatusInternalServerError,
						UserAgent:    req.UserAgent(),
						IPAddress:    clientIP(req),
						OccurredAt:   time.Now().UTC(),
					})
				}
				r.recordRequestMetrics(req.Method, req.URL.Path, http.StatusInternalServerError, elapsed)
				r.logRequest(req, http.StatusInternalServerError, recorder.bytes, elapsed, requestID)
				panic(rec)
			}

			status := recorder.status
			if status == 0 {
				status = http.StatusOK
			}
			if timed && r.telemetry != nil {
				r.telemetry.RecordMetric(domain.APIMetric{
					Endpoint:       req.URL.Path,
					Method:         req.Method,
					StatusCode:     status,
					ResponseTimeMS: elapsed.Milliseconds(),
					UserAgent:      req.UserAgent(),
					IPAddress:      clientIP(req),
					OccurredAt:     time.Now().UTC(),
				})
			}
			r.recordRequestMetrics(req.Method, req.URL.Path, status, elapsed)
			r.logRequest(req, status, recorder.bytes, elapsed, requestID)
		}()

		next.ServeHTTP(recorder, req)
	})
}

func (r *Router) logRequest(req *http.Request, status, bytes int, elapsed time.Duration, requestID string) {
	fields := []any{
		"method", req.Method,
		"path", req.URL.Path,
		"status", status,
		"bytes", bytes,
		"duration_ms", elapsed.Milliseconds(),
		"request_id", requestID,
	}
	if ip := clientIP(req); ip != "" {
		fields = append(fields, "ip", ip)
	}

	switch {
	case status >= http.StatusInternalServerError:
		r.logger.Error("http_request", fields...)
	case status >= http.StatusBadRequest:
		r.logger.Warn("http_request", fields...)
	default:
		r.logger.Info("http_request", fields...)
	}
}
