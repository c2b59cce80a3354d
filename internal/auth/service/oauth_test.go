package service

import (
	"context"
	"testing"

	"github.com/hazelworks/personachat/internal/auth/domain"
	"github.com/stretchr/testify/require"
)

func newOAuthService(t *testing.T) *OAuthService {
	t.Helper()
	return &OAuthService{Auth: newAuthService(t)}
}

func TestOAuthCreatesAccount(t *testing.T) {
	ctx := context.Background()
	svc := newOAuthService(t)

	u, pair, err := svc.Authenticate(ctx, Profile{
		Provider:  domain.ProviderGoogle,
		SubjectID: "google-sub-1",
		Email:     "Nina@Example.com",
		Name:      "Nina",
		Avatar:    "https://img.example/nina.png",
	})
	require.NoError(t, err)
	require.Equal(t, "nina@example.com", u.Email)
	require.Equal(t, "Nina", u.Name)
	require.Equal(t, domain.ProviderGoogle, u.AuthProvider)
	require.Equal(t, "google-sub-1", u.GoogleID)
	require.Empty(t, u.PasswordHash)
	require.NotEmpty(t, pair.AccessToken)
	require.NotEmpty(t, pair.RefreshToken)

	prefs, err := svc.Auth.Store.Preferences().GetPreferences(ctx, u.ID)
	require.NoError(t, err)
	require.Equal(t, "en", prefs.Language)
}

func TestOAuthRepeatSignInIsIdempotent(t *testing.T) {
	ctx := context.Background()
	svc := newOAuthService(t)

	p := Profile{
		Provider:  domain.ProviderApple,
		SubjectID: "apple-sub-1",
		Email:     "oscar@example.com",
		Name:      "Oscar",
	}

	first, _, err := svc.Authenticate(ctx, p)
	require.NoError(t, err)

	second, _, err := svc.Authenticate(ctx, p)
	require.NoError(t, err)
	require.Equal(t, first.ID, second.ID)
}

func TestOAuthLinksExistingAccountByEmail(t *testing.T) {
	ctx := context.Background()
	svc := newOAuthService(t)

	local, _, err := svc.Auth.Register(ctx, "peggy@example.com", "secret123", "Peggy")
	require.NoError(t, err)

	u, _, err := svc.Authenticate(ctx, Profile{
		Provider:  domain.ProviderGoogle,
		SubjectID: "google-sub-peggy",
		Email:     "peggy@example.com",
		Avatar:    "https://img.example/peggy.png",
	})
	require.NoError(t, err)
	require.Equal(t, local.ID, u.ID, "provider links onto the existing account")
	require.Equal(t, "google-sub-peggy", u.GoogleID)
	require.Equal(t, domain.ProviderGoogle, u.AuthProvider, "most recent provider wins")
	require.Equal(t, "https://img.example/peggy.png", u.Avatar, "missing avatar is backfilled")

	// Linking hands the account to the provider; the stored password hash no
	// longer grants access.
	_, _, err = svc.Auth.Login(ctx, "peggy@example.com", "secret123")
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestOAuthCreatesAccountsWithoutEmail(t *testing.T) {
	ctx := context.Background()
	svc := newOAuthService(t)

	// Apple withholds the email on repeat authorizations; two distinct
	// email-less identities must not collide.
	first, _, err := svc.Authenticate(ctx, Profile{
		Provider:  domain.ProviderApple,
		SubjectID: "apple-no-email-1",
	})
	require.NoError(t, err)
	require.Empty(t, first.Email)
	require.Equal(t, "Apple User", first.Name)

	second, _, err := svc.Authenticate(ctx, Profile{
		Provider:  domain.ProviderApple,
		SubjectID: "apple-no-email-2",
	})
	require.NoError(t, err)
	require.NotEqual(t, first.ID, second.ID)
}

func TestOAuthDisabledAccountRejected(t *testing.T) {
	ctx := context.Background()
	svc := newOAuthService(t)

	p := Profile{
		Provider:  domain.ProviderApple,
		SubjectID: "apple-sub-2",
		Email:     "quinn@example.com",
	}

	u, _, err := svc.Authenticate(ctx, p)
	require.NoError(t, err)

	require.NoError(t, svc.Auth.SetUserActive(ctx, u.ID, false))

	_, _, err = svc.Authenticate(ctx, p)
	require.ErrorIs(t, err, ErrAccountDisabled)
}

func TestOAuthNameFallbacks(t *testing.T) {
	t.Run("email local part", func(t *testing.T) {
		p := Profile{Provider: domain.ProviderGoogle, Email: "rachel@example.com"}
		require.Equal(t, "rachel", displayName(p))
	})

	t.Run("apple placeholder", func(t *testing.T) {
		p := Profile{Provider: domain.ProviderApple}
		require.Equal(t, "Apple User", displayName(p))
	})

	t.Run("google placeholder", func(t *testing.T) {
		p := Profile{Provider: domain.ProviderGoogle}
		require.Equal(t, "Google User", displayName(p))
	})

	t.Run("profile name wins", func(t *testing.T) {
		p := Profile{Provider: domain.ProviderGoogle, Email: "s@example.com", Name: "  Sybil  "}
		require.Equal(t, "Sybil", displayName(p))
	})
}
