package telemetry

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/SageDevelopmentCode/dine-api/internal/domain"
	"github.com/SageDevelopmentCode/dine-api/internal/ws"
)

type recordingMonitoringRepo struct {
	mu        sync.Mutex
	metrics   []domain.APIMetric
	errLogs   []domain.ErrorLog
	insertErr error
	wrote     chan struct{}
}

func newRecordingRepo() *recordingMonitoringRepo {
	return &recordingMonitoringRepo{wrote: make(chan struct{}, 16)}
}

func (r *recordingMonitoringRepo) InsertMetric(ctx context.Context, metric *domain.APIMetric) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.insertErr != nil {
		r.wrote <- struct{}{}
		return r.insertErr
	}
	r.metrics = append(r.metrics, *metric)
	r.wrote <- struct{}{}
	return nil
}

func (r *recordingMonitoringRepo) InsertErrorLog(ctx context.Context, entry *domain.ErrorLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.insertErr != nil {
		r.wrote <- struct{}{}
		return r.insertErr
	}
	r.errLogs = append(r.errLogs, *entry)
	r.wrote <- struct{}{}
	return nil
}

func (r *recordingMonitoringRepo) waitForWrite(t *testing.T) {
	t.Helper()
	select {
	case <-r.wrote:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for monitoring write")
	}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type chanSubscriber struct {
	received chan []byte
}

func (c *chanSubscriber) Send(payload []byte) error {
	c.received <- payload
	return nil
}

func (c *chanSubscriber) Close() {}

func TestRecordMetricPersistsRow(t *testing.T) {
	repo := newRecordingRepo()
	svc := New(repo, nil, discardLogger(), 8, time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	go svc.Run(ctx)

	svc.RecordMetric(domain.APIMetric{
		Endpoint:       "/api/cards",
		Method:         "GET",
		StatusCode:     200,
		ResponseTimeMS: 12,
	})
	repo.waitForWrite(t)

	repo.mu.Lock()
	defer repo.mu.Unlock()
	if len(repo.metrics) != 1 {
		t.Fatalf("expected one metric row, got %d", len(repo.metrics))
	}
	stored := repo.metrics[0]
	if stored.Endpoint != "/api/cards" || stored.Method != "GET" || stored.StatusCode != 200 {
		t.Fatalf("unexpected metric row: %+v", stored)
	}
	if stored.OccurredAt.IsZero() {
		t.Fatal("expected OccurredAt to be stamped")
	}

	cancel()
	<-svc.Done()
}

func TestRecordErrorDefaultsStatusTo500(t *testing.T) {
	repo := newRecordingRepo()
	svc := New(repo, nil, discardLogger(), 8, time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	go svc.Run(ctx)

	svc.RecordError(domain.ErrorLog{
		Endpoint:     "/api/profile/x/emergency",
		Method:       "GET",
		ErrorMessage: "boom",
		ErrorType:    "runtime error",
	})
	repo.waitForWrite(t)

	repo.mu.Lock()
	defer repo.mu.Unlock()
	if len(repo.errLogs) != 1 {
		t.Fatalf("expected one error row, got %d", len(repo.errLogs))
	}
	if repo.errLogs[0].StatusCode != 500 {
		t.Fatalf("expected status fixed at 500, got %d", repo.errLogs[0].StatusCode)
	}

	cancel()
	<-svc.Done()
}

func TestWriteFailureIsSwallowed(t *testing.T) {
	repo := newRecordingRepo()
	repo.insertErr = errors.New("store unavailable")
	svc := New(repo, nil, discardLogger(), 8, time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	go svc.Run(ctx)

	svc.RecordMetric(domain.APIMetric{Endpoint: "/api/cards", Method: "GET"})
	repo.waitForWrite(t)

	// The worker survives the failure and keeps draining.
	repo.mu.Lock()
	repo.insertErr = nil
	repo.mu.Unlock()
	svc.RecordMetric(domain.APIMetric{Endpoint: "/api/cards", Method: "GET"})
	repo.waitForWrite(t)

	cancel()
	<-svc.Done()
}

func TestShutdownDrainsBufferedEvents(t *testing.T) {
	repo := newRecordingRepo()
	svc := New(repo, nil, discardLogger(), 8, time.Second)

	for i := 0; i < 3; i++ {
		svc.RecordMetric(domain.APIMetric{Endpoint: "/api/cards", Method: "GET"})
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	go svc.Run(ctx)
	<-svc.Done()

	repo.mu.Lock()
	defer repo.mu.Unlock()
	if len(repo.metrics) != 3 {
		t.Fatalf("expected buffered rows flushed on shutdown, got %d", len(repo.metrics))
	}
}

func TestFullBufferDropsInsteadOfBlocking(t *testing.T) {
	repo := newRecordingRepo()
	svc := New(repo, nil, discardLogger(), 1, time.Second)

	done := make(chan struct{})
	go func() {
		defer close(done)
		svc.RecordMetric(domain.APIMetric{Endpoint: "/api/a", Method: "GET"})
		svc.RecordMetric(domain.APIMetric{Endpoint: "/api/b", Method: "GET"})
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("RecordMetric blocked on a full buffer")
	}
}

func TestStoredMetricBroadcastsToSubscribers(t *testing.T) {
	repo := newRecordingRepo()
	hub := ws.NewHub()
	svc := New(repo, hub, discardLogger(), 8, time.Second)

	sub := &chanSubscriber{received: make(chan []byte, 1)}
	hub.Register(MetricsTopic, sub)

	ctx, cancel := context.WithCancel(context.Background())
	go svc.Run(ctx)

	svc.RecordMetric(domain.APIMetric{Endpoint: "/api/cards", Method: "GET", StatusCode: 200})

	select {
	case payload := <-sub.received:
		if len(payload) == 0 {
			t.Fatal("expected a non-empty broadcast payload")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for live-feed broadcast")
	}

	cancel()
	<-svc.Done()
}
