// Package credential owns the single shared-calendar credential: the one
// admin-delegated OAuth token set every appointment operation borrows.
package credential

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/oauth2"

	"github.com/jmillares/dental-booking-api/internal/observability/metrics"
	"github.com/jmillares/dental-booking-api/pkg/logging"
)

// ErrNotConfigured means no usable shared credential exists and an admin
// must authenticate before calendar operations can proceed.
var ErrNotConfigured = errors.New("credential: shared calendar credential not configured")

// refreshThreshold is how close to expiry a token may get before it is
// refreshed proactively.
const refreshThreshold = 5 * time.Minute

// Manager holds the process-wide shared credential. There is exactly one
// logical credential system-wide; concurrent refreshes are serialized by the
// mutex and persistence collapses to a single row, so last writer wins.
type Manager struct {
	cfg     *oauth2.Config
	store   Store
	logger  *logging.Logger
	metrics *metrics.BookingMetrics

	mu         sync.Mutex
	tokens     *oauth2.Token
	adminEmail string
}

// NewManager wires the credential manager. store may not be nil; metrics may.
func NewManager(cfg *oauth2.Config, store Store, logger *logging.Logger, m *metrics.BookingMetrics) *Manager {
	if logger == nil {
		logger = logging.Default()
	}
	return &Manager{cfg: cfg, store: store, logger: logger, metrics: m}
}

// Load pulls the persisted credential into memory at process start. A missing
// row is the "admin not yet authenticated" steady state, not an error.
func (m *Manager) Load(ctx context.Context) error {
	rec, err := m.store.Load(ctx)
	if err != nil {
		return fmt.Errorf("load shared credential: %w", err)
	}
	if rec == nil || rec.Tokens == nil || rec.Tokens.AccessToken == "" {
		m.logger.Warn("no shared calendar credential found, admin login required")
		return nil
	}

	m.mu.Lock()
	m.tokens = rec.Tokens
	m.adminEmail = rec.UserEmail
	m.mu.Unlock()

	if _, err := m.Fresh(ctx); err != nil {
		m.logger.Error("persisted credential unusable, admin must re-authenticate", "error", err)
		return nil
	}
	m.logger.Info("shared calendar credential loaded", "admin", rec.UserEmail)
	return nil
}

// Seed installs a brand-new credential after an admin completed the OAuth
// flow, and persists it.
func (m *Manager) Seed(ctx context.Context, tok *oauth2.Token, adminEmail string) {
	m.mu.Lock()
	m.tokens = tok
	m.adminEmail = adminEmail
	m.mu.Unlock()

	m.persist(ctx, tok, adminEmail)
	m.logger.Info("shared calendar credential seeded", "admin", adminEmail)
}

// Fresh returns a copy of the shared credential, refreshing it first when it
// is within the expiry threshold. On refresh failure the in-memory credential
// is invalidated and ErrNotConfigured-compatible handling applies upstream.
func (m *Manager) Fresh(ctx context.Context) (*oauth2.Token, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.tokens == nil {
		return nil, ErrNotConfigured
	}
	if m.tokens.RefreshToken == "" {
		// No refresh capability means the credential cannot outlive its
		// access token; treat it as unusable.
		m.logger.Error("shared credential has no refresh token, invalidating")
		m.tokens = nil
		return nil, ErrNotConfigured
	}
	// A zero expiry is unknown, not "never expires"; refresh immediately.
	if !m.tokens.Expiry.IsZero() && time.Until(m.tokens.Expiry) > refreshThreshold {
		tok := *m.tokens
		return &tok, nil
	}

	// Force the refresh exchange: the oauth2 package only refreshes tokens
	// it considers expired, our threshold is stricter.
	stale := *m.tokens
	stale.Expiry = time.Now().Add(-time.Minute)
	newTok, err := m.cfg.TokenSource(ctx, &stale).Token()
	if err != nil {
		m.metrics.ObserveTokenRefresh("failure")
		m.logger.Error("shared credential refresh failed, admin must re-authenticate", "error", err)
		m.tokens = nil
		return nil, fmt.Errorf("refresh shared credential: %w", err)
	}

	// Google does not always reissue the refresh token; keep the prior one.
	if newTok.RefreshToken == "" {
		newTok.RefreshToken = m.tokens.RefreshToken
	}

	// Adopt every completed exchange: the provider may reissue the same
	// access string with a pushed-out expiry.
	m.tokens = newTok
	m.metrics.ObserveTokenRefresh("success")
	m.logger.Info("shared credential refreshed", "expiry", newTok.Expiry)
	m.persist(ctx, newTok, m.adminEmail)

	tok := *m.tokens
	return &tok, nil
}

// Invalidate clears the in-memory credential.
func (m *Manager) Invalidate() {
	m.mu.Lock()
	m.tokens = nil
	m.mu.Unlock()
}

// Ready reports whether a shared credential is currently held in memory.
func (m *Manager) Ready() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.tokens != nil
}

// AdminEmail returns the email of the admin who delegated the credential.
func (m *Manager) AdminEmail() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.adminEmail
}

// persist writes the credential to durable storage. Persistence is best
// effort: a write failure never fails the in-memory refresh.
func (m *Manager) persist(ctx context.Context, tok *oauth2.Token, adminEmail string) {
	if err := m.store.Save(ctx, &Record{Tokens: tok, UserEmail: adminEmail, SavedAt: time.Now().UTC()}); err != nil {
		m.logger.Error("could not persist shared credential", "error", err)
	}
}
