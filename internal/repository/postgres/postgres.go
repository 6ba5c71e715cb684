package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/SageDevelopmentCode/dine-api/internal/domain"
	"github.com/SageDevelopmentCode/dine-api/internal/repository"
)

// Repository implements the store gateway on PostgreSQL. Profile-domain tables
// and procedures live in the public schema and are owned by the external store;
// this service only reads them.
type Repository struct {
	pool *pgxpool.Pool
}

// New constructs a Repository.
func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// ensure Repository satisfies interfaces.
var (
	_ repository.ProfileRepository    = (*Repository)(nil)
	_ repository.MonitoringRepository = (*Repository)(nil)
	_ repository.DashboardRepository  = (*Repository)(nil)
)

// cardTables maps each user-id card domain to its lookup table.
var cardTables = map[domain.CardType]string{
	domain.CardTypeEmergency:        "emergency_cards",
	domain.CardTypeEpipen:           "epipen_cards",
	domain.CardTypeSchoolWorkEvents: "swe_cards",
	domain.CardTypeTravel:           "travel_cards",
}

// cardProcedures maps each card domain to its aggregate-fetch procedure.
var cardProcedures = map[domain.CardType]string{
	domain.CardTypeEmergency:        "get_emergency_card_data",
	domain.CardTypeEpipen:           "get_epipen_card_data",
	domain.CardTypeSchoolWorkEvents: "get_swe_card_data",
	domain.CardTypeTravel:           "get_travel_card_data",
}

// LookupCardID resolves the card id a user owns for the given domain.
func (r *Repository) LookupCardID(ctx context.Context, cardType domain.CardType, userID string) (string, error) {
	table, ok := cardTables[cardType]
	if !ok {
		return "", fmt.Errorf("%w: card type %q has no lookup table", repository.ErrInvalidArgument, cardType)
	}
	query := fmt.Sprintf(`SELECT id FROM %s WHERE user_id = $1 ORDER BY created_at DESC LIMIT 1`, table)
	row := r.pool.QueryRow(ctx, query, userID)
	var id string
	if err := row.Scan(&id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", repository.ErrNotFound
		}
		return "", mapPgError(err)
	}
	return id, nil
}

// FetchCardData invokes the domain's aggregate-fetch procedure.
func (r *Repository) FetchCardData(ctx context.Context, cardType domain.CardType, cardID string) (json.RawMessage, error) {
	proc, ok := cardProcedures[cardType]
	if !ok {
		return nil, fmt.Errorf("%w: card type %q has no aggregate procedure", repository.ErrInvalidArgument, cardType)
	}
	return r.callJSON(ctx, fmt.Sprintf(`SELECT public.%s($1)`, proc), cardID)
}

// FetchAllergyProfile invokes the allergy aggregate procedure by slug. The
// procedure returns SQL NULL when no profile exists for the slug, which maps
// to ErrNotFound (the one domain where absence is a 404, not an empty payload).
func (r *Repository) FetchAllergyProfile(ctx context.Context, slug string) (json.RawMessage, error) {
	payload, err := r.callJSON(ctx, `SELECT public.get_allergy_profile_data($1)`, slug)
	if err != nil {
		return nil, err
	}
	if payload == nil {
		return nil, repository.ErrNotFound
	}
	return payload, nil
}

// callJSON runs a single-value procedure call and returns its JSON result.
// A SQL NULL result comes back as a nil RawMessage.
func (r *Repository) callJSON(ctx context.Context, query string, args ...any) (json.RawMessage, error) {
	row := r.pool.QueryRow(ctx, query, args...)
	var payload []byte
	if err := row.Scan(&payload); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, mapPgError(err)
	}
	if payload == nil {
		return nil, nil
	}
	return json.RawMessage(payload), nil
}

// mapPgError translates store error codes into repository sentinels.
func mapPgError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "22P02": // invalid text representation (malformed uuid etc.)
			return repository.ErrInvalidArgument
		case "23503":
			return repository.ErrNotFound
		}
	}
	return err
}
