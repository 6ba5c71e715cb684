package auth

import (
	"errors"
	"time"

	"log/slog"

	"github.com/google/uuid"

	"github.com/SageDevelopmentCode/dine-api/pkg/config"
	"github.com/SageDevelopmentCode/dine-api/pkg/crypto"
	"github.com/SageDevelopmentCode/dine-api/pkg/session"
)

var (
	// ErrNotConfigured means DASHBOARD_PASSWORD is unset; auth cannot work.
	ErrNotConfigured = errors.New("auth: dashboard password not configured")
	// ErrInvalidPassword means the presented password does not match.
	ErrInvalidPassword = errors.New("auth: invalid password")
	// ErrInvalidSession means the presented session token failed validation.
	ErrInvalidSession = errors.New("auth: invalid session")
)

// Service gates the metrics dashboard behind the shared operator secret.
// Successful logins are exchanged for a signed session token; the secret's
// plaintext never travels back to the client.
type Service struct {
	cfg    config.APIConfig
	logger *slog.Logger
}

// New constructs an auth Service.
func New(cfg config.APIConfig, logger *slog.Logger) Service {
	return Service{cfg: cfg, logger: logger}
}

// Login validates the shared password and issues a session token.
func (s Service) Login(password string) (string, time.Time, error) {
	if s.cfg.DashboardPassword == "" {
		return "", time.Time{}, ErrNotConfigured
	}
	if err := crypto.CompareSecret(s.cfg.DashboardPassword, password); err != nil {
		return "", time.Time{}, ErrInvalidPassword
	}
	sessionID := uuid.NewString()
	token, err := session.Generate(sessionID, s.signingSecret(), s.cfg.SessionTTL)
	if err != nil {
		return "", time.Time{}, err
	}
	if s.logger != nil {
		s.logger.Info("dashboard login", "session_id", sessionID)
	}
	return token, time.Now().Add(s.cfg.SessionTTL), nil
}

// Verify checks a session token's signature, audience, and expiry.
func (s Service) Verify(token string) error {
	if s.cfg.DashboardPassword == "" {
		return ErrNotConfigured
	}
	if token == "" {
		return ErrInvalidSession
	}
	if _, err := session.Parse(token, s.signingSecret()); err != nil {
		return ErrInvalidSession
	}
	return nil
}

// signingSecret prefers a dedicated SESSION_SECRET and falls back to the
// dashboard password so single-secret deployments still work. Rotating either
// value invalidates outstanding sessions.
func (s Service) signingSecret() string {
	if s.cfg.SessionSecret != "" {
		return s.cfg.SessionSecret
	}
	return s.cfg.DashboardPassword
}
