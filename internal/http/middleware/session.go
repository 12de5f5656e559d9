package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"golang.org/x/oauth2"

	"github.com/jmillares/dental-booking-api/internal/auth"
	"github.com/jmillares/dental-booking-api/pkg/logging"
)

type contextKey string

const (
	userKey  contextKey = "sessionUser"
	tokenKey contextKey = "sessionToken"
)

// TokenRefresher exchanges a caller's near-expiry token set for a fresh one.
type TokenRefresher func(ctx context.Context, tok *oauth2.Token) (*oauth2.Token, error)

// callerRefreshThreshold mirrors the shared-credential threshold: refresh
// the caller's own tokens once they are within 5 minutes of expiry.
const callerRefreshThreshold = 5 * time.Minute

// Session authenticates requests from the session cookie: it refreshes the
// caller's own token set when close to expiry (reissuing the cookie), resolves
// the verified identity, and stores both on the request context.
func Session(sessions *auth.Sessions, identity auth.IdentityProvider, refresh TokenRefresher, logger *logging.Logger) func(http.Handler) http.Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tok, err := sessions.Read(r)
			if err != nil {
				unauthenticated(w)
				return
			}

			if refresh != nil && tok.RefreshToken != "" && !tok.Expiry.IsZero() &&
				time.Until(tok.Expiry) < callerRefreshThreshold {
				if fresh, err := refresh(r.Context(), tok); err == nil {
					tok = fresh
					if err := sessions.Issue(w, tok); err != nil {
						logger.Error("could not reissue session cookie", "error", err)
					}
				} else {
					// Keep going with the stale tokens; userinfo decides.
					logger.Warn("caller token refresh failed", "error", err)
				}
			}

			user, err := identity.UserInfo(r.Context(), tok)
			if err != nil {
				logger.Warn("userinfo lookup failed", "error", err)
				unauthenticated(w)
				return
			}

			ctx := context.WithValue(r.Context(), userKey, *user)
			ctx = context.WithValue(ctx, tokenKey, tok)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UserFromContext returns the authenticated caller, if any.
func UserFromContext(ctx context.Context) (auth.User, bool) {
	user, ok := ctx.Value(userKey).(auth.User)
	return user, ok
}

// TokenFromContext returns the caller's own token set, if any.
func TokenFromContext(ctx context.Context) (*oauth2.Token, bool) {
	tok, ok := ctx.Value(tokenKey).(*oauth2.Token)
	return tok, ok
}

func unauthenticated(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(map[string]string{"error": "Not authenticated"})
}
