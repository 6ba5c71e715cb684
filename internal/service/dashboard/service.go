package dashboard

import (
	"context"
	"sync"
	"time"

	"log/slog"

	"github.com/SageDevelopmentCode/dine-api/internal/domain"
	"github.com/SageDevelopmentCode/dine-api/internal/repository"
)

const (
	// DefaultTimeRangeHours applies when the caller omits or mangles the
	// timeRange parameter.
	DefaultTimeRangeHours = 24

	recentRequestLimit = 50
	slowQueryLimit     = 20
	recentErrorLimit   = 50

	defaultTimeout = 10 * time.Second
)

// Service assembles the composite monitoring snapshot from six independent
// aggregate calls. Nothing is cached; every view recomputes from the store.
type Service struct {
	repo    repository.DashboardRepository
	logger  *slog.Logger
	timeout time.Duration
}

// New constructs a dashboard Service.
func New(repo repository.DashboardRepository, logger *slog.Logger, timeout time.Duration) Service {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return Service{repo: repo, logger: logger, timeout: timeout}
}

// BucketMinutes selects the trend bucket width for a window size in hours.
func BucketMinutes(hours int) int {
	switch {
	case hours <= 1:
		return 1
	case hours <= 24:
		return 5
	default:
		return 60
	}
}

// Snapshot issues the six aggregate calls concurrently and merges the results.
// Each call is individually error-tolerant: a failure is logged and its slot
// keeps the empty default, so one broken aggregate never blanks the others.
func (s Service) Snapshot(ctx context.Context, hours int) domain.DashboardSnapshot {
	if hours <= 0 {
		hours = DefaultTimeRangeHours
	}
	bucket := BucketMinutes(hours)

	snapshot := domain.DashboardSnapshot{
		EndpointStats:  []domain.EndpointStats{},
		RecentRequests: []domain.APIMetric{},
		Trends:         []domain.TrendPoint{},
		SlowQueries:    []domain.APIMetric{},
		RecentErrors:   []domain.ErrorLog{},
		TimeRangeHours: hours,
	}

	var wg sync.WaitGroup
	run := func(name string, fetch func(context.Context) error) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			callCtx, cancel := context.WithTimeout(ctx, s.timeout)
			defer cancel()
			if err := fetch(callCtx); err != nil {
				if s.logger != nil {
					s.logger.Error("dashboard aggregate failed", "aggregate", name, "error", err)
				}
			}
		}()
	}

	run("overview", func(ctx context.Context) error {
		overview, err := s.repo.OverviewStats(ctx, hours)
		if err != nil {
			return err
		}
		snapshot.Overview = overview
		return nil
	})
	run("endpoint_stats", func(ctx context.Context) error {
		stats, err := s.repo.EndpointStats(ctx, hours)
		if err != nil {
			return err
		}
		if stats != nil {
			snapshot.EndpointStats = stats
		}
		return nil
	})
	run("recent_requests", func(ctx context.Context) error {
		requests, err := s.repo.RecentRequests(ctx, recentRequestLimit)
		if err != nil {
			return err
		}
		if requests != nil {
			snapshot.RecentRequests = requests
		}
		return nil
	})
	run("request_trends", func(ctx context.Context) error {
		trends, err := s.repo.RequestTrends(ctx, hours, bucket)
		if err != nil {
			return err
		}
		if trends != nil {
			snapshot.Trends = trends
		}
		return nil
	})
	run("slow_queries", func(ctx context.Context) error {
		slow, err := s.repo.SlowQueries(ctx, hours, slowQueryLimit)
		if err != nil {
			return err
		}
		if slow != nil {
			snapshot.SlowQueries = slow
		}
		return nil
	})
	run("recent_errors", func(ctx context.Context) error {
		errsList, err := s.repo.RecentErrors(ctx, recentErrorLimit)
		if err != nil {
			return err
		}
		if errsList != nil {
			snapshot.RecentErrors = errsList
		}
		return nil
	})

	wg.Wait()
	return snapshot
}
