package domain

import "time"

// APIMetric is one monitoring row per timed inbound API request. Rows are
// append-only; retention is handled by the store, not this service.
type APIMetric struct {
	ID             int64     `json:"id,omitempty"`
	Endpoint       string    `json:"endpoint"`
	Method         string    `json:"method"`
	StatusCode     int       `json:"status_code"`
	ResponseTimeMS int64     `json:"response_time_ms"`
	UserAgent      string    `json:"user_agent,omitempty"`
	IPAddress      string    `json:"ip_address,omitempty"`
	OccurredAt     time.Time `json:"occurred_at"`
}

// ErrorLog is one monitoring row per uncaught failure during request handling.
// StatusCode is fixed at 500 on the write path.
type ErrorLog struct {
	ID           int64     `json:"id,omitempty"`
	Endpoint     string    `json:"endpoint"`
	Method       string    `json:"method"`
	ErrorMessage string    `json:"error_message"`
	ErrorType    string    `json:"error_type"`
	StackTrace   string    `json:"stack_trace,omitempty"`
	StatusCode   int       `json:"status_code"`
	UserAgent    string    `json:"user_agent,omitempty"`
	IPAddress    string    `json:"ip_address,omitempty"`
	OccurredAt   time.Time `json:"occurred_at"`
}
