package httpx

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"log/slog"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/SageDevelopmentCode/dine-api/internal/domain"
	"github.com/SageDevelopmentCode/dine-api/internal/service/auth"
	"github.com/SageDevelopmentCode/dine-api/internal/service/dashboard"
	"github.com/SageDevelopmentCode/dine-api/internal/service/profile"
	"github.com/SageDevelopmentCode/dine-api/internal/service/telemetry"
	"github.com/SageDevelopmentCode/dine-api/internal/ws"
)

// Router wires HTTP endpoints to services.
type Router struct {
	mux           *http.ServeMux
	handler       http.Handler
	logger        *slog.Logger
	auth          auth.Service
	profile       profile.Service
	dashboard     dashboard.Service
	telemetry     *telemetry.Service
	upgrader      websocket.Upgrader
	limiter       RateLimiter
	secureCookies bool
	dbHealth      func(context.Context) error

	metricsOnce        sync.Once
	requestTotal       *prometheus.CounterVec
	requestLatency     *prometheus.HistogramVec
	rateLimitHits      *prometheus.CounterVec
	metricsInitialized bool
}

const (
	rateWindowDefault  = time.Minute
	rateLimitLogin     = 10
	healthCheckTimeout = 2 * time.Second
	sseHeartbeat       = 25 * time.Second
)

// NewRouter assembles routes with dependencies.
func NewRouter(logger *slog.Logger, authSvc auth.Service, profileSvc profile.Service, dashboardSvc dashboard.Service, telemetrySvc *telemetry.Service, limiter RateLimiter, secureCookies bool, dbHealth func(context.Context) error) *Router {
	r := &Router{
		mux:       http.NewServeMux(),
		logger:    logger,
		auth:      authSvc,
		profile:   profileSvc,
		dashboard: dashboardSvc,
		telemetry: telemetrySvc,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		limiter:       limiter,
		secureCookies: secureCookies,
		dbHealth:      dbHealth,
	}
	if r.limiter == nil {
		r.limiter = NewMemoryRateLimiter()
	}
	r.initMetrics()
	r.register()
	r.handler = r.instrument(r.mux)
	return r
}

// ServeHTTP delegates to the instrumented mux.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.handler.ServeHTTP(w, req)
}

// Close releases background resources.
func (r *Router) Close() {
	if r.limiter != nil {
		r.limiter.Close()
	}
}

func (r *Router) register() {
	r.mux.HandleFunc("/healthz", r.handleHealthz)
	r.mux.Handle("/metrics", promhttp.Handler())
	r.mux.HandleFunc("/api/cards", r.handleCards)
	r.mux.HandleFunc("/api/dashboard/auth", r.withRateLimit("dashboard_auth", rateLimitLogin, rateWindowDefault, r.handleDashboardAuth))
	r.mux.HandleFunc("/api/dashboard/metrics", r.requireSession(r.handleDashboardMetrics))
	r.mux.HandleFunc("/api/dashboard/stream", r.requireSession(r.handleDashboardStream))
	r.mux.HandleFunc("/api/dashboard/stream/sse", r.requireSession(r.handleDashboardStreamSSE))
	r.mux.HandleFunc("/api/profile/", r.handleProfileSubroutes)
}

func (r *Router) handleCards(w http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodGet {
		r.methodNotAllowed(w)
		return
	}
	writeJSON(w, http.StatusOK, domain.CardCatalog())
}

func (r *Router) handleDashboardAuth(w http.ResponseWriter, req *http.Request) {
	switch req.Method {
	case http.MethodPost:
		var payload struct {
			Password string `json:"password"`
		}
		if err := json.NewDecoder(req.Body).Decode(&payload); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		token, expires, err := r.auth.Login(payload.Password)
		if err != nil {
			switch {
			case errors.Is(err, auth.ErrNotConfigured):
				r.logger.Error("dashboard password not configured", "path", req.URL.Path)
				writeError(w, http.StatusInternalServerError, "dashboard authentication not configured")
			case errors.Is(err, auth.ErrInvalidPassword):
				writeError(w, http.StatusUnauthorized, "invalid password")
			default:
				r.logger.Error("session token issuance failed", "error", err)
				writeError(w, http.StatusInternalServerError, "login failed")
			}
			return
		}
		r.setSessionCookie(w, token, expires)
		writeJSON(w, http.StatusOK, map[string]any{"success": true})
	case http.MethodDelete:
		r.clearSessionCookie(w)
		writeJSON(w, http.StatusOK, map[string]any{"success": true})
	default:
		r.methodNotAllowed(w)
	}
}

func (r *Router) handleDashboardMetrics(w http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodGet {
		r.methodNotAllowed(w)
		return
	}
	hours, _ := strconv.Atoi(req.URL.Query().Get("timeRange"))
	snapshot := r.dashboard.Snapshot(req.Context(), hours)
	writeJSON(w, http.StatusOK, snapshot)
}

func (r *Router) handleDashboardStream(w http.ResponseWriter, req *http.Request) {
	conn, err := r.upgrader.Upgrade(w, req, nil)
	if err != nil {
		r.logger.Error("websocket upgrade failed", "error", err)
		return
	}
	client := ws.NewClient(conn, r.logger)
	hub := r.telemetry.Hub()
	hub.Register(telemetry.MetricsTopic, client)
	go func() {
		defer func() {
			hub.Unregister(telemetry.MetricsTopic, client)
			client.Close()
		}()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				break
			}
		}
	}()
}

func (r *Router) handleDashboardStreamSSE(w http.ResponseWriter, req *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	client := ws.NewSSEClient(w, flusher, r.logger)
	hub := r.telemetry.Hub()
	hub.Register(telemetry.MetricsTopic, client)
	defer func() {
		hub.Unregister(telemetry.MetricsTopic, client)
		client.Close()
	}()

	heartbeat := time.NewTicker(sseHeartbeat)
	defer heartbeat.Stop()
	for {
		select {
		case <-req.Context().Done():
			return
		case <-heartbeat.C:
			if err := client.Heartbeat(); err != nil {
				return
			}
		}
	}
}

func (r *Router) handleProfileSubroutes(w http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodGet {
		r.methodNotAllowed(w)
		return
	}
	trimmed := strings.TrimPrefix(req.URL.Path, "/api/profile/")
	parts := strings.Split(trimmed, "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		r.notFound(w)
		return
	}
	slug, section := parts[0], parts[1]

	if section == "food-allergies" {
		r.handleFoodAllergies(w, req, slug)
		return
	}

	userID := strings.TrimSpace(req.URL.Query().Get("user_id"))
	if userID == "" {
		writeError(w, http.StatusBadRequest, "User ID is required")
		return
	}

	switch section {
	case "emergency":
		payload, err := r.profile.Emergency(req.Context(), userID)
		if err != nil {
			r.logger.Error("emergency fetch failed", "user_id", userID, "error", err)
			writeError(w, http.StatusInternalServerError, "Failed to fetch emergency data")
			return
		}
		writeJSON(w, http.StatusOK, payload)
	case "epipen":
		payload, err := r.profile.Epipen(req.Context(), userID)
		if err != nil {
			r.logger.Error("epipen fetch failed", "user_id", userID, "error", err)
			writeError(w, http.StatusInternalServerError, "Failed to fetch epipen data")
			return
		}
		writeJSON(w, http.StatusOK, payload)
	case "swe":
		payload, err := r.profile.SchoolWorkEvents(req.Context(), userID)
		if err != nil {
			r.logger.Error("swe fetch failed", "user_id", userID, "error", err)
			writeError(w, http.StatusInternalServerError, "Failed to fetch school work events data")
			return
		}
		writeJSON(w, http.StatusOK, payload)
	case "travel":
		payload, err := r.profile.Travel(req.Context(), userID)
		if err != nil {
			r.logger.Error("travel fetch failed", "user_id", userID, "error", err)
			writeError(w, http.StatusInternalServerError, "Failed to fetch travel data")
			return
		}
		writeRawJSON(w, http.StatusOK, payload)
	default:
		r.notFound(w)
	}
}

func (r *Router) handleFoodAllergies(w http.ResponseWriter, req *http.Request, slug string) {
	payload, err := r.profile.FoodAllergies(req.Context(), slug)
	if err != nil {
		if errors.Is(err, profile.ErrProfileNotFound) {
			writeError(w, http.StatusNotFound, "Profile not found")
			return
		}
		r.logger.Error("allergy profile fetch failed", "slug", slug, "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to fetch profile data")
		return
	}
	writeJSON(w, http.StatusOK, payload)
}

func (r *Router) handleHealthz(w http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodGet {
		r.methodNotAllowed(w)
		return
	}
	components := make(map[string]any)
	status := "ok"
	if r.dbHealth != nil {
		ctx, cancel := context.WithTimeout(req.Context(), healthCheckTimeout)
		defer cancel()
		if err := r.dbHealth(ctx); err != nil {
			status = "degraded"
			components["database"] = map[string]any{
				"status": "down",
				"error":  err.Error(),
			}
		} else {
			components["database"] = map[string]any{"status": "up"}
		}
	}
	payload := map[string]any{
		"status":     status,
		"components": components,
		"timestamp":  time.Now().UTC().Format(time.RFC3339Nano),
	}
	code := http.StatusOK
	if status != "ok" {
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, code, payload)
}

// writeRawJSON passes a pre-encoded JSON document through untouched.
func writeRawJSON(w http.ResponseWriter, status int, payload []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(payload)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (sr *statusRecorder) WriteHeader(code int) {
	sr.status = code
	sr.ResponseWriter.WriteHeader(code)
}

func (sr *statusRecorder) Write(b []byte) (int, error) {
	if sr.status == 0 {
		sr.status = http.StatusOK
	}
	n, err := sr.ResponseWriter.Write(b)
	sr.bytes += n
	return n, err
}

func (sr *statusRecorder) Flush() {
	if f, ok := sr.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (sr *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	if h, ok := sr.ResponseWriter.(http.Hijacker); ok {
		return h.Hijack()
	}
	return nil, nil, errors.New("hijacker not supported")
}

func (sr *statusRecorder) Push(target string, opts *http.PushOptions) error {
	if p, ok := sr.ResponseWriter.(http.Pusher); ok {
		return p.Push(target, opts)
	}
	return http.ErrNotSupported
}

func clientIP(req *http.Request) string {
	if forwarded := strings.TrimSpace(req.Header.Get("X-Forwarded-For")); forwarded != "" {
		parts := strings.Split(forwarded, ",")
		if len(parts) > 0 {
			ip := strings.TrimSpace(parts[0])
			if ip != "" {
				return ip
			}
		}
	}
	host, _, err := net.SplitHostPort(strings.TrimSpace(req.RemoteAddr))
	if err != nil {
		return strings.TrimSpace(req.RemoteAddr)
	}
	return host
}

func (r *Router) applyRateHeaders(w http.ResponseWriter, limit int, decision rateDecision) {
	if limit <= 0 {
		return
	}
	remaining := limit - decision.count
	if remaining < 0 {
		remaining = 0
	}
	headers := w.Header()
	headers.Set("X-RateLimit-Limit", strconv.Itoa(limit))
	headers.Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
	if !decision.windowEnd.IsZero() {
		headers.Set("X-RateLimit-Reset", strconv.FormatInt(decision.windowEnd.Unix(), 10))
	}
}

func (r *Router) methodNotAllowed(w http.ResponseWriter) {
	writeError(w, http.StatusMethodNotAllowed, "method not allowed")
}

func (r *Router) notFound(w http.ResponseWriter) {
	writeError(w, http.StatusNotFound, "not found")
}
