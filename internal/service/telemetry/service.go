package telemetry

import (
	"context"
	"encoding/json"
	"time"

	"log/slog"

	"github.com/SageDevelopmentCode/dine-api/internal/domain"
	"github.com/SageDevelopmentCode/dine-api/internal/repository"
	"github.com/SageDevelopmentCode/dine-api/internal/ws"
)

const (
	defaultBuffer  = 256
	defaultTimeout = 10 * time.Second
)

// MetricsTopic is the hub topic live-feed subscribers attach to.
const MetricsTopic = "metrics"

// event carries exactly one of the two monitoring row kinds.
type event struct {
	metric *domain.APIMetric
	errLog *domain.ErrorLog
}

// Service drains monitoring rows to the store off the request path. Records
// are handed off through a buffered channel; the response never waits on the
// write, and a write failure is logged locally and swallowed.
type Service struct {
	repo    repository.MonitoringRepository
	hub     *ws.Hub
	logger  *slog.Logger
	queue   chan event
	timeout time.Duration
	done    chan struct{}
}

// New constructs a telemetry collector with sane defaults.
func New(repo repository.MonitoringRepository, hub *ws.Hub, logger *slog.Logger, buffer int, timeout time.Duration) *Service {
	if buffer <= 0 {
		buffer = defaultBuffer
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	if hub == nil {
		hub = ws.NewHub()
	}
	if logger != nil {
		logger = logger.With("component", "telemetry")
	}
	return &Service{
		repo:    repo,
		hub:     hub,
		logger:  logger,
		queue:   make(chan event, buffer),
		timeout: timeout,
		done:    make(chan struct{}),
	}
}

// Run drains the queue until the context is cancelled, then flushes whatever
// is still buffered. It blocks and is meant to run on its own goroutine.
func (s *Service) Run(ctx context.Context) {
	defer close(s.done)
	for {
		select {
		case <-ctx.Done():
			s.drain()
			if s.logger != nil {
				s.logger.Info("telemetry collector stopped")
			}
			return
		case ev := <-s.queue:
			s.write(ev)
		}
	}
}

// Done is closed once Run has flushed and returned.
func (s *Service) Done() <-chan struct{} {
	return s.done
}

// Hub exposes the live-feed hub for HTTP handlers.
func (s *Service) Hub() *ws.Hub {
	return s.hub
}

// RecordMetric enqueues a metric row without blocking. When the buffer is
// full the row is dropped; monitoring must never back-pressure requests.
func (s *Service) RecordMetric(metric domain.APIMetric) {
	if metric.OccurredAt.IsZero() {
		metric.OccurredAt = time.Now().UTC()
	}
	select {
	case s.queue <- event{metric: &metric}:
	default:
		if s.logger != nil {
			s.logger.Warn("telemetry buffer full, dropping metric", "endpoint", metric.Endpoint)
		}
	}
}

// RecordError enqueues an error row without blocking.
func (s *Service) RecordError(entry domain.ErrorLog) {
	if entry.OccurredAt.IsZero() {
		entry.OccurredAt = time.Now().UTC()
	}
	if entry.StatusCode == 0 {
		entry.StatusCode = 500
	}
	select {
	case s.queue <- event{errLog: &entry}:
	default:
		if s.logger != nil {
			s.logger.Warn("telemetry buffer full, dropping error log", "endpoint", entry.Endpoint)
		}
	}
}

// write persists one event on a detached context. Failures never propagate.
func (s *Service) write(ev event) {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	switch {
	case ev.metric != nil:
		if err := s.repo.InsertMetric(ctx, ev.metric); err != nil {
			if s.logger != nil {
				s.logger.Error("failed to record metric", "endpoint", ev.metric.Endpoint, "error", err)
			}
			return
		}
		s.broadcastMetric(*ev.metric)
	case ev.errLog != nil:
		if err := s.repo.InsertErrorLog(ctx, ev.errLog); err != nil {
			if s.logger != nil {
				s.logger.Error("failed to record error log", "endpoint", ev.errLog.Endpoint, "error", err)
			}
		}
	}
}

func (s *Service) broadcastMetric(metric domain.APIMetric) {
	payload, err := json.Marshal(metric)
	if err != nil {
		if s.logger != nil {
			s.logger.Warn("failed to marshal metric payload", "error", err)
		}
		return
	}
	s.hub.Broadcast(MetricsTopic, payload)
}

// drain flushes events still buffered at shutdown.
func (s *Service) drain() {
	for {
		select {
		case ev := <-s.queue:
			s.write(ev)
		default:
			return
		}
	}
}
