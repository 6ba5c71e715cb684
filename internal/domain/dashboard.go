package domain

import "time"

// OverviewStats are the dashboard headline totals for the selected window.
type OverviewStats struct {
	TotalRequests     int64   `json:"totalRequests"`
	AvgResponseTimeMS float64 `json:"avgResponseTime"`
	ErrorRate         float64 `json:"errorRate"`
	UniqueEndpoints   int64   `json:"uniqueEndpoints"`
}

// EndpointStats aggregates traffic for a single endpoint/method pair.
type EndpointStats struct {
	Endpoint          string  `json:"endpoint"`
	Method            string  `json:"method"`
	RequestCount      int64   `json:"requestCount"`
	AvgResponseTimeMS float64 `json:"avgResponseTime"`
	MaxResponseTimeMS int64   `json:"maxResponseTime"`
	ErrorCount        int64   `json:"errorCount"`
}

// TrendPoint is one time bucket of the latency/traffic trend series.
type TrendPoint struct {
	BucketStart       time.Time `json:"bucketStart"`
	RequestCount      int64     `json:"requestCount"`
	AvgResponseTimeMS float64   `json:"avgResponseTime"`
	ErrorCount        int64     `json:"errorCount"`
}

// DashboardSnapshot is the composite monitoring view assembled per dashboard
// request. It is never persisted; every view recomputes it from the store.
//
// A failed sub-fetch leaves its field at the empty default (nil overview,
// empty list) rather than failing the snapshot.
type DashboardSnapshot struct {
	Overview       *OverviewStats  `json:"overview"`
	EndpointStats  []EndpointStats `json:"endpointStats"`
	RecentRequests []APIMetric     `json:"recentRequests"`
	Trends         []TrendPoint    `json:"trends"`
	SlowQueries    []APIMetric     `json:"slowQueries"`
	RecentErrors   []ErrorLog      `json:"recentErrors"`
	TimeRangeHours int             `json:"timeRangeHours"`
}
