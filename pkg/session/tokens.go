package session

import (
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
)

// Audience restricts issued tokens to the metrics dashboard.
const Audience = "dine-dashboard"

// Claims defines the dashboard session token payload. The cookie carries this
// signed token rather than the shared secret's plaintext, so a leaked cookie
// never exposes the configured password.
type Claims struct {
	SessionID string `json:"sid"`
	jwtlib.RegisteredClaims
}

// Generate issues a signed HS256 session token with the provided ttl.
func Generate(sessionID, secret string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		SessionID: sessionID,
		RegisteredClaims: jwtlib.RegisteredClaims{
			Issuer:    "dine-api",
			Audience:  jwtlib.ClaimStrings{Audience},
			IssuedAt:  jwtlib.NewNumericDate(now),
			ExpiresAt: jwtlib.NewNumericDate(now.Add(ttl)),
		},
	}
	token := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// Parse validates a session token and extracts its claims.
func Parse(token string, secret string) (*Claims, error) {
	parsed, err := jwtlib.ParseWithClaims(token, &Claims{}, func(t *jwtlib.Token) (interface{}, error) {
		return []byte(secret), nil
	},
		jwtlib.WithValidMethods([]string{jwtlib.SigningMethodHS256.Name}),
		jwtlib.WithAudience(Audience),
	)
	if err != nil {
		return nil, err
	}
	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, jwtlib.ErrTokenInvalidClaims
	}
	return claims, nil
}
