package dashboard

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/SageDevelopmentCode/dine-api/internal/domain"
)

type stubDashboardRepository struct {
	overview    *domain.OverviewStats
	overviewErr error

	endpointStats []domain.EndpointStats
	recent        []domain.APIMetric
	trends        []domain.TrendPoint
	slow          []domain.APIMetric
	errLogs       []domain.ErrorLog

	trendArgs struct {
		hours         int
		bucketMinutes int
	}
	recentLimit int
	slowLimit   int
	errLimit    int
}

func (s *stubDashboardRepository) OverviewStats(ctx context.Context, hours int) (*domain.OverviewStats, error) {
	if s.overviewErr != nil {
		return nil, s.overviewErr
	}
	return s.overview, nil
}

func (s *stubDashboardRepository) EndpointStats(ctx context.Context, hours int) ([]domain.EndpointStats, error) {
	return s.endpointStats, nil
}

func (s *stubDashboardRepository) RecentRequests(ctx context.Context, limit int) ([]domain.APIMetric, error) {
	s.recentLimit = limit
	return s.recent, nil
}

func (s *stubDashboardRepository) RequestTrends(ctx context.Context, hours, bucketMinutes int) ([]domain.TrendPoint, error) {
	s.trendArgs.hours = hours
	s.trendArgs.bucketMinutes = bucketMinutes
	return s.trends, nil
}

func (s *stubDashboardRepository) SlowQueries(ctx context.Context, hours, limit int) ([]domain.APIMetric, error) {
	s.slowLimit = limit
	return s.slow, nil
}

func (s *stubDashboardRepository) RecentErrors(ctx context.Context, limit int) ([]domain.ErrorLog, error) {
	s.errLimit = limit
	return s.errLogs, nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestBucketMinutes(t *testing.T) {
	cases := []struct {
		hours int
		want  int
	}{
		{hours: 1, want: 1},
		{hours: 6, want: 5},
		{hours: 24, want: 5},
		{hours: 48, want: 60},
		{hours: 168, want: 60},
	}
	for _, tc := range cases {
		if got := BucketMinutes(tc.hours); got != tc.want {
			t.Fatalf("BucketMinutes(%d) = %d, want %d", tc.hours, got, tc.want)
		}
	}
}

func TestSnapshotMergesAllSixAggregates(t *testing.T) {
	repo := &stubDashboardRepository{
		overview:      &domain.OverviewStats{TotalRequests: 120, UniqueEndpoints: 4},
		endpointStats: []domain.EndpointStats{{Endpoint: "/api/cards", Method: "GET", RequestCount: 80}},
		recent:        []domain.APIMetric{{Endpoint: "/api/cards"}},
		trends:        []domain.TrendPoint{{RequestCount: 10}},
		slow:          []domain.APIMetric{{ResponseTimeMS: 900}},
		errLogs:       []domain.ErrorLog{{ErrorType: "panic"}},
	}
	svc := New(repo, discardLogger(), time.Second)

	snapshot := svc.Snapshot(context.Background(), 6)

	if snapshot.Overview == nil || snapshot.Overview.TotalRequests != 120 {
		t.Fatalf("unexpected overview: %+v", snapshot.Overview)
	}
	if len(snapshot.EndpointStats) != 1 || len(snapshot.RecentRequests) != 1 ||
		len(snapshot.Trends) != 1 || len(snapshot.SlowQueries) != 1 || len(snapshot.RecentErrors) != 1 {
		t.Fatalf("expected all six aggregates populated: %+v", snapshot)
	}
	if snapshot.TimeRangeHours != 6 {
		t.Fatalf("expected timeRangeHours 6, got %d", snapshot.TimeRangeHours)
	}
	if repo.trendArgs.hours != 6 || repo.trendArgs.bucketMinutes != 5 {
		t.Fatalf("unexpected trend args: %+v", repo.trendArgs)
	}
	if repo.recentLimit != 50 || repo.slowLimit != 20 || repo.errLimit != 50 {
		t.Fatalf("unexpected limits: recent=%d slow=%d err=%d", repo.recentLimit, repo.slowLimit, repo.errLimit)
	}
}

func TestSnapshotToleratesFailedAggregate(t *testing.T) {
	repo := &stubDashboardRepository{
		overviewErr:   errors.New("procedure missing"),
		endpointStats: []domain.EndpointStats{{Endpoint: "/api/cards", Method: "GET"}},
	}
	svc := New(repo, discardLogger(), time.Second)

	snapshot := svc.Snapshot(context.Background(), 24)

	if snapshot.Overview != nil {
		t.Fatalf("expected nil overview after failure, got %+v", snapshot.Overview)
	}
	if len(snapshot.EndpointStats) != 1 {
		t.Fatalf("expected surviving aggregate populated, got %+v", snapshot.EndpointStats)
	}
	if snapshot.RecentRequests == nil || snapshot.Trends == nil || snapshot.SlowQueries == nil || snapshot.RecentErrors == nil {
		t.Fatal("expected empty defaults, not nil lists")
	}
}

func TestSnapshotDefaultsTimeRange(t *testing.T) {
	repo := &stubDashboardRepository{}
	svc := New(repo, discardLogger(), time.Second)

	snapshot := svc.Snapshot(context.Background(), 0)

	if snapshot.TimeRangeHours != DefaultTimeRangeHours {
		t.Fatalf("expected default window, got %d", snapshot.TimeRangeHours)
	}
	if repo.trendArgs.bucketMinutes != 5 {
		t.Fatalf("expected 5-minute buckets for default window, got %d", repo.trendArgs.bucketMinutes)
	}
}
