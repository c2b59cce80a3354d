package service

import (
	"context"
	"errors"
	"strings"

	"github.com/hazelworks/personachat/internal/auth/domain"
	"github.com/hazelworks/personachat/internal/auth/store"
	"github.com/hazelworks/personachat/pkg/idx"
	"github.com/hazelworks/personachat/pkg/slogx"
)

// Profile is a provider-verified identity. The HTTP layer is responsible for
// validating the provider's token before constructing one; everything past
// this boundary treats the fields as trusted.
type Profile struct {
	Provider  string // domain.ProviderApple or domain.ProviderGoogle
	SubjectID string // provider's stable user identifier
	Email     string
	Name      string
	Avatar    string
}

// OAuthService signs users in through external identity providers, linking
// provider identities to existing accounts by email when needed.
type OAuthService struct {
	Auth *AuthService
}

// Authenticate resolves a verified provider profile to a local account and
// issues tokens. Resolution order: by provider subject id, then by email
// (which links the provider to the account), then a fresh account.
func (s *OAuthService) Authenticate(ctx context.Context, p Profile) (domain.User, domain.TokenPair, error) {
	p.Email = normalizeEmail(p.Email)
	l := slogx.FromContext(ctx)

	var (
		u    domain.User
		pair domain.TokenPair
	)
	err := s.Auth.Store.WithTx(ctx, func(tx store.Tx) error {
		var err error
		u, err = s.resolveUser(ctx, tx, p)
		if err != nil {
			return err
		}
		if !u.IsActive {
			return ErrAccountDisabled
		}

		pair, err = s.Auth.issueTokens(ctx, tx, u)
		return err
	})
	if err != nil {
		return domain.User{}, domain.TokenPair{}, err
	}

	l.Info("oauth sign-in", "provider", p.Provider, "user_id", u.ID)
	return u, pair, nil
}

func (s *OAuthService) resolveUser(ctx context.Context, tx store.Tx, p Profile) (domain.User, error) {
	u, err := s.lookupBySubject(ctx, tx, p)
	if err == nil {
		return s.backfillAvatar(ctx, tx, u, p)
	}
	if !errors.Is(err, store.ErrNotFound) {
		return domain.User{}, err
	}

	// No account for this provider identity yet. An existing account with
	// the same email gets the provider linked; the provider recorded on the
	// account is whichever was used most recently.
	if p.Email != "" {
		u, err = tx.Users().GetUserByEmail(ctx, p.Email)
		if err == nil {
			return s.linkProvider(ctx, tx, u, p)
		}
		if !errors.Is(err, store.ErrNotFound) {
			return domain.User{}, err
		}
	}

	return s.createUser(ctx, tx, p)
}

func (s *OAuthService) lookupBySubject(ctx context.Context, tx store.Tx, p Profile) (domain.User, error) {
	switch p.Provider {
	case domain.ProviderApple:
		return tx.Users().GetUserByAppleID(ctx, p.SubjectID)
	case domain.ProviderGoogle:
		return tx.Users().GetUserByGoogleID(ctx, p.SubjectID)
	default:
		return domain.User{}, store.ErrNotFound
	}
}

func (s *OAuthService) linkProvider(ctx context.Context, tx store.Tx, u domain.User, p Profile) (domain.User, error) {
	u.AuthProvider = p.Provider
	switch p.Provider {
	case domain.ProviderApple:
		u.AppleID = p.SubjectID
	case domain.ProviderGoogle:
		u.GoogleID = p.SubjectID
	}
	if u.Avatar == "" && p.Avatar != "" {
		u.Avatar = p.Avatar
	}

	if err := tx.Users().UpdateUser(ctx, u); err != nil {
		return domain.User{}, err
	}

	slogx.FromContext(ctx).Info("linked provider to existing account",
		"provider", p.Provider, "user_id", u.ID)
	return u, nil
}

// backfillAvatar fills a missing avatar from the provider profile on repeat
// sign-ins.
func (s *OAuthService) backfillAvatar(ctx context.Context, tx store.Tx, u domain.User, p Profile) (domain.User, error) {
	if u.Avatar != "" || p.Avatar == "" {
		return u, nil
	}

	u.Avatar = p.Avatar
	if err := tx.Users().UpdateUser(ctx, u); err != nil {
		return domain.User{}, err
	}
	return u, nil
}

func (s *OAuthService) createUser(ctx context.Context, tx store.Tx, p Profile) (domain.User, error) {
	u := domain.User{
		ID:           idx.New().String(),
		Email:        p.Email,
		Name:         displayName(p),
		Avatar:       p.Avatar,
		AuthProvider: p.Provider,
		Role:         domain.RoleUser,
		IsActive:     true,
	}
	switch p.Provider {
	case domain.ProviderApple:
		u.AppleID = p.SubjectID
	case domain.ProviderGoogle:
		u.GoogleID = p.SubjectID
	}

	if err := tx.Users().CreateUser(ctx, u); err != nil {
		return domain.User{}, err
	}
	s.Auth.seedPreferences(ctx, tx, u.ID)

	slogx.FromContext(ctx).Info("created account from provider sign-in",
		"provider", p.Provider, "user_id", u.ID)
	return u, nil
}

// displayName picks a name for a new provider account: the profile name,
// then the email local part, then a provider-specific placeholder.
func displayName(p Profile) string {
	if name := strings.TrimSpace(p.Name); name != "" {
		return name
	}
	if p.Email != "" {
		if local, _, ok := strings.Cut(p.Email, "@"); ok && local != "" {
			return local
		}
	}
	if p.Provider == domain.ProviderApple {
		return "Apple User"
	}
	return "Google User"
}
