package profile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"log/slog"

	"github.com/SageDevelopmentCode/dine-api/internal/domain"
	"github.com/SageDevelopmentCode/dine-api/internal/repository"
)

// ErrProfileNotFound signals that no profile exists for the requested slug.
// Only the food-allergies domain treats absence as an error; for every other
// card domain a missing card is a normal empty state.
var ErrProfileNotFound = errors.New("profile: not found")

const defaultTimeout = 10 * time.Second

// emptyTravelPayload is the travel domain's explicit empty state. The happy
// path passes the procedure's JSON through untouched, so the empty shape is
// pinned here rather than derived from a typed payload.
var emptyTravelPayload = json.RawMessage(`{"travelCard":null,"travelPhrases":[],"travelRestaurantCards":[]}`)

// Service translates public identifiers into aggregate card payloads: at most
// one lookup, then exactly one aggregate-fetch procedure call, then a typed
// reshape. All methods are pure reads.
type Service struct {
	repo    repository.ProfileRepository
	logger  *slog.Logger
	timeout time.Duration
}

// New constructs a profile Service.
func New(repo repository.ProfileRepository, logger *slog.Logger, timeout time.Duration) Service {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return Service{repo: repo, logger: logger, timeout: timeout}
}

// Emergency returns the emergency card with its contacts, doctors, and
// hospitals. A user without an emergency card gets the empty payload, not an
// error.
func (s Service) Emergency(ctx context.Context, userID string) (*domain.EmergencyPayload, error) {
	payload := &domain.EmergencyPayload{}
	data, err := s.fetchCard(ctx, domain.CardTypeEmergency, userID)
	if err != nil {
		return nil, err
	}
	if data != nil {
		if err := json.Unmarshal(data, payload); err != nil {
			return nil, fmt.Errorf("decode emergency payload: %w", err)
		}
	}
	payload.Normalize()
	return payload, nil
}

// Epipen returns the epipen card and its usage instructions.
func (s Service) Epipen(ctx context.Context, userID string) (*domain.EpipenPayload, error) {
	payload := &domain.EpipenPayload{}
	data, err := s.fetchCard(ctx, domain.CardTypeEpipen, userID)
	if err != nil {
		return nil, err
	}
	if data != nil {
		if err := json.Unmarshal(data, payload); err != nil {
			return nil, fmt.Errorf("decode epipen payload: %w", err)
		}
	}
	payload.Normalize()
	return payload, nil
}

// SchoolWorkEvents returns the school/work/events card with its categories
// and precaution measures.
func (s Service) SchoolWorkEvents(ctx context.Context, userID string) (*domain.SWEPayload, error) {
	payload := &domain.SWEPayload{}
	data, err := s.fetchCard(ctx, domain.CardTypeSchoolWorkEvents, userID)
	if err != nil {
		return nil, err
	}
	if data != nil {
		if err := json.Unmarshal(data, payload); err != nil {
			return nil, fmt.Errorf("decode swe payload: %w", err)
		}
	}
	payload.Normalize()
	return payload, nil
}

// Travel returns the travel card payload verbatim as produced by the store.
func (s Service) Travel(ctx context.Context, userID string) (json.RawMessage, error) {
	data, err := s.fetchCard(ctx, domain.CardTypeTravel, userID)
	if err != nil {
		return nil, err
	}
	if data == nil {
		return emptyTravelPayload, nil
	}
	return data, nil
}

// FoodAllergies returns the reaction profile for a slug. A slug with no
// profile yields ErrProfileNotFound.
func (s Service) FoodAllergies(ctx context.Context, slug string) (*domain.AllergyPayload, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	data, err := s.repo.FetchAllergyProfile(ctx, slug)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrProfileNotFound
		}
		return nil, fmt.Errorf("fetch allergy profile: %w", err)
	}
	payload := &domain.AllergyPayload{}
	if err := json.Unmarshal(data, payload); err != nil {
		return nil, fmt.Errorf("decode allergy payload: %w", err)
	}
	payload.Normalize()
	return payload, nil
}

// fetchCard performs the lookup-then-fetch sequence shared by the four
// user-id card domains. A nil result with nil error means the user has no
// card of that type.
func (s Service) fetchCard(ctx context.Context, cardType domain.CardType, userID string) (json.RawMessage, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	cardID, err := s.repo.LookupCardID(ctx, cardType, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			if s.logger != nil {
				s.logger.Debug("no card for user", "card_type", cardType, "user_id", userID)
			}
			return nil, nil
		}
		return nil, fmt.Errorf("lookup %s card: %w", cardType, err)
	}

	data, err := s.repo.FetchCardData(ctx, cardType, cardID)
	if err != nil {
		return nil, fmt.Errorf("fetch %s card data: %w", cardType, err)
	}
	return data, nil
}
