package credential

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"golang.org/x/oauth2"
)

// recordType is the fixed discriminator keying the single shared-credential
// row; concurrent saves upsert on it and collapse to one row.
const recordType = "shared_calendar"

// Record is the persisted shape of the shared credential.
type Record struct {
	Tokens    *oauth2.Token
	UserEmail string
	SavedAt   time.Time
}

// Store is the durable persistence collaborator for the shared credential.
type Store interface {
	// Load returns the persisted credential, or nil when none exists yet.
	Load(ctx context.Context) (*Record, error)
	Save(ctx context.Context, rec *Record) error
}

// PostgresStore keeps the credential in the calendar_tokens table.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Load(ctx context.Context) (*Record, error) {
	var (
		tokensJSON []byte
		userEmail  string
		savedAt    time.Time
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT tokens, user_email, saved_at
		FROM calendar_tokens WHERE type = $1`, recordType).
		Scan(&tokensJSON, &userEmail, &savedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load calendar tokens: %w", err)
	}

	var tok oauth2.Token
	if err := json.Unmarshal(tokensJSON, &tok); err != nil {
		return nil, fmt.Errorf("unmarshal calendar tokens: %w", err)
	}
	return &Record{Tokens: &tok, UserEmail: userEmail, SavedAt: savedAt}, nil
}

func (s *PostgresStore) Save(ctx context.Context, rec *Record) error {
	tokensJSON, err := json.Marshal(rec.Tokens)
	if err != nil {
		return fmt.Errorf("marshal calendar tokens: %w", err)
	}

	now := time.Now().UTC()
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO calendar_tokens (type, tokens, user_email, saved_at, updated_at)
		VALUES ($1, $2, $3, $4, $4)
		ON CONFLICT (type) DO UPDATE SET
		    tokens=EXCLUDED.tokens, user_email=EXCLUDED.user_email,
		    saved_at=EXCLUDED.saved_at, updated_at=EXCLUDED.updated_at`,
		recordType, tokensJSON, rec.UserEmail, now)
	if err != nil {
		return fmt.Errorf("save calendar tokens: %w", err)
	}
	return nil
}

var _ Store = (*PostgresStore)(nil)
