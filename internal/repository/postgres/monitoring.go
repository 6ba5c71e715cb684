package postgres

import (
	"context"
	"encoding/json"
	"time"

	"github.com/SageDevelopmentCode/dine-api/internal/domain"
)

// Monitoring rows are append-only from this application's perspective: the
// collector inserts, the dashboard procedures aggregate, retention is the
// store's concern.

// InsertMetric appends one api_metrics row.
func (r *Repository) InsertMetric(ctx context.Context, metric *domain.APIMetric) error {
	const query = `INSERT INTO monitoring.api_metrics
		(endpoint, method, status_code, response_time_ms, user_agent, ip_address, occurred_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	occurred := metric.OccurredAt
	if occurred.IsZero() {
		occurred = time.Now().UTC()
	}
	_, err := r.pool.Exec(ctx, query,
		metric.Endpoint,
		metric.Method,
		metric.StatusCode,
		metric.ResponseTimeMS,
		nilIfEmpty(metric.UserAgent),
		nilIfEmpty(metric.IPAddress),
		occurred,
	)
	return mapIfErr(err)
}

// InsertErrorLog appends one error_logs row.
func (r *Repository) InsertErrorLog(ctx context.Context, entry *domain.ErrorLog) error {
	const query = `INSERT INTO monitoring.error_logs
		(endpoint, method, error_message, error_type, stack_trace, status_code, user_agent, ip_address, occurred_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	occurred := entry.OccurredAt
	if occurred.IsZero() {
		occurred = time.Now().UTC()
	}
	_, err := r.pool.Exec(ctx, query,
		entry.Endpoint,
		entry.Method,
		entry.ErrorMessage,
		entry.ErrorType,
		nilIfEmpty(entry.StackTrace),
		entry.StatusCode,
		nilIfEmpty(entry.UserAgent),
		nilIfEmpty(entry.IPAddress),
		occurred,
	)
	return mapIfErr(err)
}

// OverviewStats returns the headline totals for the window.
func (r *Repository) OverviewStats(ctx context.Context, hours int) (*domain.OverviewStats, error) {
	payload, err := r.callJSON(ctx, `SELECT monitoring.get_dashboard_stats($1)`, hours)
	if err != nil {
		return nil, err
	}
	if payload == nil {
		return nil, nil
	}
	var stats domain.OverviewStats
	if err := json.Unmarshal(payload, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

// EndpointStats returns ranked per-endpoint aggregates for the window.
func (r *Repository) EndpointStats(ctx context.Context, hours int) ([]domain.EndpointStats, error) {
	var stats []domain.EndpointStats
	if err := r.callJSONSlice(ctx, &stats, `SELECT monitoring.get_endpoint_stats($1)`, hours); err != nil {
		return nil, err
	}
	return stats, nil
}

// RecentRequests returns the most recent metric rows, newest first.
func (r *Repository) RecentRequests(ctx context.Context, limit int) ([]domain.APIMetric, error) {
	var metrics []domain.APIMetric
	if err := r.callJSONSlice(ctx, &metrics, `SELECT monitoring.get_recent_requests($1)`, limit); err != nil {
		return nil, err
	}
	return metrics, nil
}

// RequestTrends returns the time-bucketed latency/traffic series.
func (r *Repository) RequestTrends(ctx context.Context, hours, bucketMinutes int) ([]domain.TrendPoint, error) {
	var trends []domain.TrendPoint
	if err := r.callJSONSlice(ctx, &trends, `SELECT monitoring.get_request_trends($1, $2)`, hours, bucketMinutes); err != nil {
		return nil, err
	}
	return trends, nil
}

// SlowQueries returns the slowest requests within the window, slowest first.
func (r *Repository) SlowQueries(ctx context.Context, hours, limit int) ([]domain.APIMetric, error) {
	var metrics []domain.APIMetric
	if err := r.callJSONSlice(ctx, &metrics, `SELECT monitoring.get_slow_queries($1, $2)`, hours, limit); err != nil {
		return nil, err
	}
	return metrics, nil
}

// RecentErrors returns the most recent error rows, newest first.
func (r *Repository) RecentErrors(ctx context.Context, limit int) ([]domain.ErrorLog, error) {
	var entries []domain.ErrorLog
	if err := r.callJSONSlice(ctx, &entries, `SELECT monitoring.get_recent_errors($1)`, limit); err != nil {
		return nil, err
	}
	return entries, nil
}

// callJSONSlice decodes a procedure's JSON-array result into dest. SQL NULL
// leaves dest untouched (callers treat that as an empty list).
func (r *Repository) callJSONSlice(ctx context.Context, dest any, query string, args ...any) error {
	payload, err := r.callJSON(ctx, query, args...)
	if err != nil {
		return err
	}
	if payload == nil {
		return nil
	}
	return json.Unmarshal(payload, dest)
}

func nilIfEmpty(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func mapIfErr(err error) error {
	if err == nil {
		return nil
	}
	return mapPgError(err)
}
