package auth

import (
	"context"
	"fmt"

	"golang.org/x/oauth2"
	goauth2 "google.golang.org/api/oauth2/v2"
	"google.golang.org/api/option"
)

// IdentityProvider resolves a caller's token set to a verified identity.
type IdentityProvider interface {
	UserInfo(ctx context.Context, tok *oauth2.Token) (*User, error)
}

// GoogleIdentity fetches userinfo from Google and assigns the role from the
// admin policy.
type GoogleIdentity struct {
	policy *Policy
}

func NewGoogleIdentity(policy *Policy) *GoogleIdentity {
	return &GoogleIdentity{policy: policy}
}

func (g *GoogleIdentity) UserInfo(ctx context.Context, tok *oauth2.Token) (*User, error) {
	service, err := goauth2.NewService(ctx, option.WithTokenSource(oauth2.StaticTokenSource(tok)))
	if err != nil {
		return nil, fmt.Errorf("create userinfo service: %w", err)
	}
	info, err := service.Userinfo.Get().Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("fetch userinfo: %w", err)
	}
	return &User{
		Email:   info.Email,
		Name:    info.Name,
		Picture: info.Picture,
		Role:    g.policy.RoleFor(info.Email),
	}, nil
}

var _ IdentityProvider = (*GoogleIdentity)(nil)
