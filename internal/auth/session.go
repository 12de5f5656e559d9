package auth

import (
	"errors"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/oauth2"
)

// SessionCookieName holds the signed session token.
const SessionCookieName = "session"

// ErrNoSession is returned when the request carries no valid session cookie.
var ErrNoSession = errors.New("auth: no valid session")

// sessionClaims wraps the caller's own OAuth token set in a signed JWT so the
// cookie is opaque to tampering.
type sessionClaims struct {
	Tokens *oauth2.Token `json:"tok"`
	jwt.RegisteredClaims
}

// Sessions issues and reads the session cookie.
type Sessions struct {
	secret []byte
	ttl    time.Duration
	secure bool
}

// NewSessions configures session handling. secure controls the cookie's
// Secure attribute (on in production).
func NewSessions(secret string, ttl time.Duration, secure bool) *Sessions {
	return &Sessions{secret: []byte(secret), ttl: ttl, secure: secure}
}

// Issue signs the caller's token set into the session cookie.
func (s *Sessions) Issue(w http.ResponseWriter, tok *oauth2.Token) error {
	now := time.Now()
	claims := sessionClaims{
		Tokens: tok,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return err
	}

	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    signed,
		Path:     "/",
		MaxAge:   int(s.ttl.Seconds()),
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// Read extracts the caller's token set from the session cookie.
func (s *Sessions) Read(r *http.Request) (*oauth2.Token, error) {
	cookie, err := r.Cookie(SessionCookieName)
	if err != nil {
		return nil, ErrNoSession
	}

	claims := sessionClaims{}
	token, err := jwt.ParseWithClaims(cookie.Value, &claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid || claims.Tokens == nil {
		return nil, ErrNoSession
	}
	return claims.Tokens, nil
}

// Clear expires the session cookie.
func (s *Sessions) Clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
	})
}
