package repository

import (
	"context"
	"encoding/json"

	"github.com/SageDevelopmentCode/dine-api/internal/domain"
)

// ProfileRepository resolves public identifiers and invokes the aggregate-fetch
// procedures on the external store. Every call is a pure read.
type ProfileRepository interface {
	// LookupCardID resolves the card identifier owned by a user for one card
	// domain. Returns ErrNotFound when the user has no card of that type.
	LookupCardID(ctx context.Context, cardType domain.CardType, userID string) (string, error)
	// FetchCardData invokes the domain's aggregate-fetch procedure and returns
	// its pre-joined JSON payload verbatim.
	FetchCardData(ctx context.Context, cardType domain.CardType, cardID string) (json.RawMessage, error)
	// FetchAllergyProfile invokes the allergy aggregate procedure keyed by
	// profile slug. Returns ErrNotFound when no profile exists for the slug.
	FetchAllergyProfile(ctx context.Context, slug string) (json.RawMessage, error)
}

// MonitoringRepository appends telemetry rows to the monitoring schema.
type MonitoringRepository interface {
	InsertMetric(ctx context.Context, metric *domain.APIMetric) error
	InsertErrorLog(ctx context.Context, entry *domain.ErrorLog) error
}

// DashboardRepository exposes the six monitoring aggregate procedures.
type DashboardRepository interface {
	OverviewStats(ctx context.Context, hours int) (*domain.OverviewStats, error)
	EndpointStats(ctx context.Context, hours int) ([]domain.EndpointStats, error)
	RecentRequests(ctx context.Context, limit int) ([]domain.APIMetric, error)
	RequestTrends(ctx context.Context, hours, bucketMinutes int) ([]domain.TrendPoint, error)
	SlowQueries(ctx context.Context, hours, limit int) ([]domain.APIMetric, error)
	RecentErrors(ctx context.Context, limit int) ([]domain.ErrorLog, error)
}
