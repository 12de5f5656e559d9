package handlers

import (
	"context"
	"net/http"
	"time"

	"golang.org/x/oauth2"

	"github.com/jmillares/dental-booking-api/internal/auth"
	"github.com/jmillares/dental-booking-api/internal/credential"
	"github.com/jmillares/dental-booking-api/pkg/logging"
)

// AuthHandler serves the OAuth login flow and session endpoints.
type AuthHandler struct {
	oauth       *oauth2.Config
	sessions    *auth.Sessions
	identity    auth.IdentityProvider
	policy      *auth.Policy
	manager     *credential.Manager
	frontendURL string
	logger      *logging.Logger

	// refresh renews a caller's own token set; injectable for tests.
	refresh func(ctx context.Context, tok *oauth2.Token) (*oauth2.Token, error)
}

func NewAuthHandler(
	oauthCfg *oauth2.Config,
	sessions *auth.Sessions,
	identity auth.IdentityProvider,
	policy *auth.Policy,
	manager *credential.Manager,
	frontendURL string,
	logger *logging.Logger,
) *AuthHandler {
	if logger == nil {
		logger = logging.Default()
	}
	h := &AuthHandler{
		oauth:       oauthCfg,
		sessions:    sessions,
		identity:    identity,
		policy:      policy,
		manager:     manager,
		frontendURL: frontendURL,
		logger:      logger,
	}
	h.refresh = func(ctx context.Context, tok *oauth2.Token) (*oauth2.Token, error) {
		return oauthCfg.TokenSource(ctx, tok).Token()
	}
	return h
}

// GET /auth/url
func (h *AuthHandler) AuthURL(w http.ResponseWriter, r *http.Request) {
	url := h.oauth.AuthCodeURL("state-token",
		oauth2.AccessTypeOffline,
		oauth2.SetAuthURLParam("prompt", "consent"),
	)
	writeJSON(w, http.StatusOK, map[string]string{"url": url})
}

// GET /oauth2callback
func (h *AuthHandler) Callback(w http.ResponseWriter, r *http.Request) {
	code := r.URL.Query().Get("code")
	if code == "" {
		h.logger.Error("oauth callback without code")
		http.Error(w, "Authentication failed", http.StatusInternalServerError)
		return
	}

	tok, err := h.oauth.Exchange(r.Context(), code)
	if err != nil {
		h.logger.Error("oauth code exchange failed", "error", err)
		http.Error(w, "Authentication failed", http.StatusInternalServerError)
		return
	}

	user, err := h.identity.UserInfo(r.Context(), tok)
	if err != nil {
		h.logger.Error("oauth userinfo failed", "error", err)
		http.Error(w, "Authentication failed", http.StatusInternalServerError)
		return
	}

	h.logger.Info("user authenticated", "email", user.Email, "role", user.Role)

	// An admin login delegates the shared calendar credential.
	if h.policy.IsAdmin(user.Email) {
		h.manager.Seed(r.Context(), tok, user.Email)
	}

	if err := h.sessions.Issue(w, tok); err != nil {
		h.logger.Error("could not issue session cookie", "error", err)
		http.Error(w, "Authentication failed", http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, h.frontendURL+"/?auth=success", http.StatusFound)
}

// POST /auth/logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.sessions.Clear(w)
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// GET /api/me — never returns 401; an anonymous caller just gets
// authenticated:false.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	tok, err := h.sessions.Read(r)
	if err != nil {
		writeJSON(w, http.StatusOK, map[string]any{"authenticated": false})
		return
	}

	if tok.RefreshToken != "" && !tok.Expiry.IsZero() && time.Until(tok.Expiry) < 5*time.Minute {
		if fresh, err := h.refresh(r.Context(), tok); err == nil {
			tok = fresh
			if err := h.sessions.Issue(w, tok); err != nil {
				h.logger.Error("could not reissue session cookie", "error", err)
			}
		}
	}

	user, err := h.identity.UserInfo(r.Context(), tok)
	if err != nil {
		writeJSON(w, http.StatusOK, map[string]any{"authenticated": false})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"authenticated": true, "user": user})
}
