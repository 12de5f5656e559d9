package calendar

import (
	"context"
	"time"

	"github.com/jmillares/dental-booking-api/internal/credential"
)

// CredentialProvider builds Google clients from the shared credential,
// refreshing it through the manager first.
type CredentialProvider struct {
	manager    *credential.Manager
	calendarID string
	loc        *time.Location
}

func NewCredentialProvider(manager *credential.Manager, calendarID string, loc *time.Location) *CredentialProvider {
	return &CredentialProvider{manager: manager, calendarID: calendarID, loc: loc}
}

func (p *CredentialProvider) Client(ctx context.Context) (Client, error) {
	tok, err := p.manager.Fresh(ctx)
	if err != nil {
		return nil, err
	}
	return NewGoogleClient(ctx, tok, p.calendarID, p.loc)
}

var _ Provider = (*CredentialProvider)(nil)
