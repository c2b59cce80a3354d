package service

import (
	"context"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/hazelworks/personachat/internal/auth/domain"
	"github.com/hazelworks/personachat/internal/auth/revocation"
	"github.com/hazelworks/personachat/internal/auth/store"
	"github.com/hazelworks/personachat/internal/auth/store/drivers/sqlite"
	"github.com/hazelworks/personachat/pkg/cryptox"
	"github.com/hazelworks/personachat/pkg/jwtx"
	"github.com/stretchr/testify/require"
)

func newAuthService(t *testing.T) *AuthService {
	t.Helper()

	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	require.NoError(t, st.ApplyMigrations())

	return &AuthService{
		Store:  st,
		Hasher: &cryptox.Hasher{},
		Codec: &jwtx.Codec{
			Issuer:        "chatbot-api",
			Audience:      "chatbot-app",
			AccessSecret:  []byte("access-secret"),
			RefreshSecret: []byte("refresh-secret"),
			AccessTTL:     time.Hour,
			RefreshTTL:    7 * 24 * time.Hour,
		},
		Revocations: revocation.NewRegistry(slog.Default(), time.Hour),
	}
}

func TestRegisterAndLogin(t *testing.T) {
	ctx := context.Background()
	svc := newAuthService(t)

	u, pair, err := svc.Register(ctx, "Alice@Example.com", "secret123", "Alice")
	require.NoError(t, err)
	require.Equal(t, "alice@example.com", u.Email)
	require.Equal(t, domain.RoleUser, u.Role)
	require.Equal(t, domain.ProviderLocal, u.AuthProvider)
	require.True(t, u.IsActive)
	require.NotEmpty(t, pair.AccessToken)
	require.NotEmpty(t, pair.RefreshToken)

	// Preferences are seeded alongside the account.
	prefs, err := svc.Store.Preferences().GetPreferences(ctx, u.ID)
	require.NoError(t, err)
	require.True(t, prefs.Notifications)
	require.Equal(t, "en", prefs.Language)
	require.True(t, prefs.SaveChatHistory)

	// Login is case-insensitive on email.
	logged, pair2, err := svc.Login(ctx, "ALICE@example.COM", "secret123")
	require.NoError(t, err)
	require.Equal(t, u.ID, logged.ID)
	require.NotEmpty(t, pair2.RefreshToken)
	require.NotEqual(t, pair.RefreshToken, pair2.RefreshToken)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	ctx := context.Background()
	svc := newAuthService(t)

	_, _, err := svc.Register(ctx, "dup@example.com", "secret123", "First")
	require.NoError(t, err)

	_, _, err = svc.Register(ctx, "dup@example.com", "other456", "Second")
	require.ErrorIs(t, err, ErrDuplicateEmail)
}

func TestLoginFailures(t *testing.T) {
	ctx := context.Background()
	svc := newAuthService(t)

	u, _, err := svc.Register(ctx, "bob@example.com", "secret123", "Bob")
	require.NoError(t, err)

	t.Run("unknown email", func(t *testing.T) {
		_, _, err := svc.Login(ctx, "nobody@example.com", "secret123")
		require.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, _, err := svc.Login(ctx, "bob@example.com", "wrong")
		require.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("deactivated account", func(t *testing.T) {
		require.NoError(t, svc.SetUserActive(ctx, u.ID, false))

		_, _, err := svc.Login(ctx, "bob@example.com", "secret123")
		require.ErrorIs(t, err, ErrAccountDisabled)

		require.NoError(t, svc.SetUserActive(ctx, u.ID, true))
	})

	t.Run("deactivated checked before credentials", func(t *testing.T) {
		require.NoError(t, svc.SetUserActive(ctx, u.ID, false))

		_, _, err := svc.Login(ctx, "bob@example.com", "wrong")
		require.ErrorIs(t, err, ErrAccountDisabled)

		require.NoError(t, svc.SetUserActive(ctx, u.ID, true))
	})

	t.Run("provider-owned account", func(t *testing.T) {
		g, _, err := svc.Register(ctx, "gina@example.com", "secret123", "Gina")
		require.NoError(t, err)

		g.AuthProvider = domain.ProviderGoogle
		g.GoogleID = "google-sub-gina"
		require.NoError(t, svc.Store.Users().UpdateUser(ctx, g))

		// The hash is still stored but no longer grants access.
		_, _, err = svc.Login(ctx, "gina@example.com", "secret123")
		require.ErrorIs(t, err, ErrInvalidCredentials)
	})
}

func TestRefreshRotation(t *testing.T) {
	ctx := context.Background()
	svc := newAuthService(t)

	u, pair, err := svc.Register(ctx, "carol@example.com", "secret123", "Carol")
	require.NoError(t, err)

	logged, pair2, err := svc.Refresh(ctx, pair.RefreshToken)
	require.NoError(t, err)
	require.Equal(t, u.ID, logged.ID)
	require.NotEmpty(t, pair2.AccessToken)
	require.NotEqual(t, pair.RefreshToken, pair2.RefreshToken)

	// The consumed token cannot be redeemed again.
	_, _, err = svc.Refresh(ctx, pair.RefreshToken)
	require.ErrorIs(t, err, ErrTokenInvalid)

	// The rotated token still works.
	_, _, err = svc.Refresh(ctx, pair2.RefreshToken)
	require.NoError(t, err)
}

func TestRefreshConcurrentSingleWinner(t *testing.T) {
	ctx := context.Background()
	svc := newAuthService(t)

	_, pair, err := svc.Register(ctx, "dave@example.com", "secret123", "Dave")
	require.NoError(t, err)

	const n = 8
	results := make([]error, n)

	var wg sync.WaitGroup
	for i := range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _, results[i] = svc.Refresh(ctx, pair.RefreshToken)
		}()
	}
	wg.Wait()

	var wins int
	for _, err := range results {
		if err == nil {
			wins++
		} else {
			require.ErrorIs(t, err, ErrTokenInvalid)
		}
	}
	require.Equal(t, 1, wins, "exactly one concurrent redemption may succeed")
}

func TestRefreshRejectsBadTokens(t *testing.T) {
	ctx := context.Background()
	svc := newAuthService(t)

	_, pair, err := svc.Register(ctx, "erin@example.com", "secret123", "Erin")
	require.NoError(t, err)

	t.Run("garbage", func(t *testing.T) {
		_, _, err := svc.Refresh(ctx, "not-a-jwt")
		require.ErrorIs(t, err, ErrTokenInvalid)
	})

	t.Run("access token in place of refresh", func(t *testing.T) {
		_, _, err := svc.Refresh(ctx, pair.AccessToken)
		require.ErrorIs(t, err, ErrTokenInvalid)
	})

	t.Run("valid signature but no stored row", func(t *testing.T) {
		orphan, err := svc.Codec.IssueRefresh("01ARZ3NDEKTSV4RRFFQ69G5FAV")
		require.NoError(t, err)

		_, _, err2 := svc.Refresh(ctx, orphan)
		require.ErrorIs(t, err2, ErrTokenInvalid)
	})

	t.Run("expired signature", func(t *testing.T) {
		// Sign a refresh token whose expiry already passed.
		claims := jwtx.RefreshClaims{
			RegisteredClaims: jwt.RegisteredClaims{
				Issuer:    svc.Codec.Issuer,
				Subject:   "01ARZ3NDEKTSV4RRFFQ69G5FAV",
				Audience:  jwt.ClaimStrings{svc.Codec.Audience},
				IssuedAt:  jwt.NewNumericDate(time.Now().Add(-2 * time.Hour)),
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
			},
			TokenType: jwtx.RefreshTokenType,
		}
		tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(svc.Codec.RefreshSecret)
		require.NoError(t, err)

		_, _, err2 := svc.Refresh(ctx, tok)
		require.ErrorIs(t, err2, ErrTokenExpired)
	})
}

func TestRefreshDeactivatedUser(t *testing.T) {
	ctx := context.Background()
	svc := newAuthService(t)

	u, pair, err := svc.Register(ctx, "frank@example.com", "secret123", "Frank")
	require.NoError(t, err)

	require.NoError(t, svc.SetUserActive(ctx, u.ID, false))

	_, _, err = svc.Refresh(ctx, pair.RefreshToken)
	require.ErrorIs(t, err, ErrAccountDisabled)
}

func TestLogout(t *testing.T) {
	ctx := context.Background()
	svc := newAuthService(t)

	u, pair, err := svc.Register(ctx, "grace@example.com", "secret123", "Grace")
	require.NoError(t, err)

	require.NoError(t, svc.Logout(ctx, u.ID, pair.AccessToken, pair.RefreshToken))

	// The access token is revoked until its natural expiry.
	require.True(t, svc.Revocations.Contains(pair.AccessToken))

	// The refresh token row is gone.
	_, _, err = svc.Refresh(ctx, pair.RefreshToken)
	require.ErrorIs(t, err, ErrTokenInvalid)
}

func TestLogoutSkipsOtherUsersToken(t *testing.T) {
	ctx := context.Background()
	svc := newAuthService(t)

	_, alicePair, err := svc.Register(ctx, "alice2@example.com", "secret123", "Alice")
	require.NoError(t, err)
	bob, bobPair, err := svc.Register(ctx, "bob2@example.com", "secret123", "Bob")
	require.NoError(t, err)

	// Bob presents Alice's refresh token; the scoped delete leaves it alone.
	require.NoError(t, svc.Logout(ctx, bob.ID, bobPair.AccessToken, alicePair.RefreshToken))

	_, _, err = svc.Refresh(ctx, alicePair.RefreshToken)
	require.NoError(t, err)
}

func TestLogoutAll(t *testing.T) {
	ctx := context.Background()
	svc := newAuthService(t)

	u, first, err := svc.Register(ctx, "heidi@example.com", "secret123", "Heidi")
	require.NoError(t, err)
	_, second, err := svc.Login(ctx, "heidi@example.com", "secret123")
	require.NoError(t, err)

	n, err := svc.LogoutAll(ctx, u.ID, first.AccessToken)
	require.NoError(t, err)
	require.EqualValues(t, 2, n)

	_, _, err = svc.Refresh(ctx, first.RefreshToken)
	require.ErrorIs(t, err, ErrTokenInvalid)
	_, _, err = svc.Refresh(ctx, second.RefreshToken)
	require.ErrorIs(t, err, ErrTokenInvalid)
}

func TestDeleteAccount(t *testing.T) {
	ctx := context.Background()
	svc := newAuthService(t)

	u, pair, err := svc.Register(ctx, "ivan@example.com", "secret123", "Ivan")
	require.NoError(t, err)

	require.NoError(t, svc.DeleteAccount(ctx, u.ID, pair.AccessToken))
	require.True(t, svc.Revocations.Contains(pair.AccessToken))

	_, err = svc.GetUser(ctx, u.ID)
	require.ErrorIs(t, err, ErrUserNotFound)

	// Refresh rows cascaded away with the user.
	_, _, err = svc.Refresh(ctx, pair.RefreshToken)
	require.ErrorIs(t, err, ErrTokenInvalid)

	// Idempotence: a second delete reports not found.
	require.ErrorIs(t, svc.DeleteAccount(ctx, u.ID, pair.AccessToken), ErrUserNotFound)
}

func TestRefreshExpiredRowRemovedLazily(t *testing.T) {
	ctx := context.Background()
	svc := newAuthService(t)

	_, pair, err := svc.Register(ctx, "lena@example.com", "secret123", "Lena")
	require.NoError(t, err)

	// Age the stored row while the token's signature stays valid.
	row, err := svc.Store.RefreshTokens().GetRefreshToken(ctx, pair.RefreshToken)
	require.NoError(t, err)
	_, err = svc.Store.RefreshTokens().DeleteRefreshToken(ctx, pair.RefreshToken)
	require.NoError(t, err)
	row.ExpiresAt = time.Now().Add(-time.Minute)
	require.NoError(t, svc.Store.RefreshTokens().CreateRefreshToken(ctx, row))

	_, _, err = svc.Refresh(ctx, pair.RefreshToken)
	require.ErrorIs(t, err, ErrTokenExpired)

	// The dead row is gone even though the redeeming transaction rolled back.
	_, err = svc.Store.RefreshTokens().GetRefreshToken(ctx, pair.RefreshToken)
	require.ErrorIs(t, err, store.ErrNotFound)

	// A second attempt reports invalid, not expired: nothing is stored.
	_, _, err = svc.Refresh(ctx, pair.RefreshToken)
	require.ErrorIs(t, err, ErrTokenInvalid)
}

func TestHousekeepingSweepsExpiredRows(t *testing.T) {
	ctx := context.Background()
	svc := newAuthService(t)

	u, pair, err := svc.Register(ctx, "judy@example.com", "secret123", "Judy")
	require.NoError(t, err)

	// Force the stored row past expiry, keeping the live session intact.
	_, err = svc.Store.RefreshTokens().DeleteRefreshToken(ctx, pair.RefreshToken)
	require.NoError(t, err)
	require.NoError(t, svc.Store.RefreshTokens().CreateRefreshToken(ctx, domain.RefreshToken{
		ID:        "expired-row",
		UserID:    u.ID,
		Token:     "stale-token",
		ExpiresAt: time.Now().Add(-time.Hour),
	}))

	n, err := svc.Store.RefreshTokens().DeleteExpiredRefreshTokens(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 1, n)
}

func TestHousekeepingKeepsLiveRowsAcrossTimezones(t *testing.T) {
	ctx := context.Background()
	svc := newAuthService(t)

	u, pair, err := svc.Register(ctx, "kim@example.com", "secret123", "Kim")
	require.NoError(t, err)

	// A live expiry expressed in a negative-offset zone must not read as
	// past under the sweep's comparison.
	west := time.FixedZone("UTC-5", -5*60*60)
	require.NoError(t, svc.Store.RefreshTokens().CreateRefreshToken(ctx, domain.RefreshToken{
		ID:        "live-row",
		UserID:    u.ID,
		Token:     "live-token",
		ExpiresAt: time.Now().In(west).Add(time.Hour),
	}))

	n, err := svc.Store.RefreshTokens().DeleteExpiredRefreshTokens(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 0, n)

	// Both sessions are still redeemable.
	_, _, err = svc.Refresh(ctx, pair.RefreshToken)
	require.NoError(t, err)
	_, err = svc.Store.RefreshTokens().GetRefreshToken(ctx, "live-token")
	require.NoError(t, err)
}
