package httpx

import (
	"errors"
	"net/http"
	"time"

	"github.com/SageDevelopmentCode/dine-api/internal/service/auth"
)

// SessionCookieName carries the signed dashboard session token.
const SessionCookieName = "dine_dashboard_session"

// requireSession gates dashboard endpoints behind a valid session cookie.
// An unconfigured password is a server fault, everything else is a 401.
func (r *Router) requireSession(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		cookie, err := req.Cookie(SessionCookieName)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		if err := r.auth.Verify(cookie.Value); err != nil {
			if errors.Is(err, auth.ErrNotConfigured) {
				r.logger.Error("dashboard password not configured", "path", req.URL.Path)
				writeError(w, http.StatusInternalServerError, "dashboard authentication not configured")
				return
			}
			r.logger.Warn("session token rejected", "path", req.URL.Path)
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		next(w, req)
	}
}

func (r *Router) setSessionCookie(w http.ResponseWriter, token string, expires time.Time) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    token,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		Secure:   r.secureCookies,
		SameSite: http.SameSiteStrictMode,
	})
}

func (r *Router) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   r.secureCookies,
		SameSite: http.SameSiteStrictMode,
	})
}
