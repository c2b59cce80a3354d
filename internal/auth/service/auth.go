package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/hazelworks/personachat/internal/auth/domain"
	"github.com/hazelworks/personachat/internal/auth/revocation"
	"github.com/hazelworks/personachat/internal/auth/store"
	"github.com/hazelworks/personachat/pkg/cryptox"
	"github.com/hazelworks/personachat/pkg/idx"
	"github.com/hazelworks/personachat/pkg/jwtx"
	"github.com/hazelworks/personachat/pkg/slogx"
)

// AuthService owns the credential and token lifecycle: registration, login,
// refresh rotation, logout and account removal.
type AuthService struct {
	Store       store.Store
	Hasher      *cryptox.Hasher
	Codec       *jwtx.Codec
	Revocations *revocation.Registry
}

// Register creates a local account, seeds default preferences and signs in
// the new user.
func (s *AuthService) Register(ctx context.Context, email, password, name string) (domain.User, domain.TokenPair, error) {
	email = normalizeEmail(email)

	hash, err := s.Hasher.Hash(password)
	if err != nil {
		return domain.User{}, domain.TokenPair{}, err
	}

	u := domain.User{
		ID:           idx.New().String(),
		Email:        email,
		PasswordHash: hash,
		Name:         name,
		AuthProvider: domain.ProviderLocal,
		Role:         domain.RoleUser,
		IsActive:     true,
	}

	var pair domain.TokenPair
	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Users().CreateUser(ctx, u); err != nil {
			if errors.Is(err, store.ErrAlreadyExists) {
				return ErrDuplicateEmail
			}
			return err
		}
		s.seedPreferences(ctx, tx, u.ID)

		pair, err = s.issueTokens(ctx, tx, u)
		return err
	})
	if err != nil {
		return domain.User{}, domain.TokenPair{}, err
	}

	slogx.FromContext(ctx).Info("user registered", "user_id", u.ID)
	return u, pair, nil
}

// Login verifies an email/password pair and issues fresh tokens. A missing
// user and a wrong password are indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, email, password string) (domain.User, domain.TokenPair, error) {
	email = normalizeEmail(email)
	l := slogx.FromContext(ctx)

	u, err := s.Store.Users().GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.User{}, domain.TokenPair{}, ErrInvalidCredentials
		}
		return domain.User{}, domain.TokenPair{}, err
	}

	if !u.IsActive {
		return domain.User{}, domain.TokenPair{}, ErrAccountDisabled
	}

	// Accounts owned by an external provider have no local credential, even
	// when a password hash is still stored from before the provider link.
	if u.AuthProvider != domain.ProviderLocal || u.PasswordHash == "" || !s.Hasher.Verify(password, u.PasswordHash) {
		l.Info("login failed", "user_id", u.ID)
		return domain.User{}, domain.TokenPair{}, ErrInvalidCredentials
	}

	var pair domain.TokenPair
	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		pair, err = s.issueTokens(ctx, tx, u)
		return err
	})
	if err != nil {
		return domain.User{}, domain.TokenPair{}, err
	}

	l.Info("user logged in", "user_id", u.ID)
	return u, pair, nil
}

// Refresh rotates a refresh token: the presented token is consumed and a new
// pair is issued. Under concurrent redemption of the same token exactly one
// caller wins; the rest see ErrTokenInvalid.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (domain.User, domain.TokenPair, error) {
	claims, err := s.Codec.VerifyRefresh(refreshToken)
	if err != nil {
		return domain.User{}, domain.TokenPair{}, mapCodecErr(err)
	}

	now := time.Now()

	var (
		u    domain.User
		pair domain.TokenPair
	)
	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		row, err := tx.RefreshTokens().GetRefreshToken(ctx, refreshToken)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrTokenInvalid
			}
			return err
		}

		// Redeeming consumes the row. The rows-affected check is what makes
		// concurrent redemption of the same token single-winner.
		removed, err := tx.RefreshTokens().DeleteRefreshToken(ctx, refreshToken)
		if err != nil {
			return err
		}
		if !removed {
			return ErrTokenInvalid
		}

		if row.Expired(now) {
			return ErrTokenExpired
		}

		u, err = tx.Users().GetUserByID(ctx, claims.Subject)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrTokenInvalid
			}
			return err
		}
		if !u.IsActive {
			return ErrAccountDisabled
		}

		pair, err = s.issueTokens(ctx, tx, u)
		return err
	})
	if err != nil {
		if errors.Is(err, ErrTokenExpired) {
			// The rollback restored the expired row; drop it for real.
			_, _ = s.Store.RefreshTokens().DeleteRefreshToken(ctx, refreshToken)
		}
		return domain.User{}, domain.TokenPair{}, err
	}

	slogx.FromContext(ctx).Debug("refresh token rotated", "user_id", u.ID)
	return u, pair, nil
}

// Logout revokes the presented access token and removes the refresh token
// row. The refresh delete is scoped to userID so one user cannot evict
// another's session.
func (s *AuthService) Logout(ctx context.Context, userID, accessToken, refreshToken string) error {
	s.revokeAccess(accessToken)

	if refreshToken != "" {
		if _, err := s.Store.RefreshTokens().DeleteUserRefreshToken(ctx, refreshToken, userID); err != nil {
			return err
		}
	}

	slogx.FromContext(ctx).Info("user logged out", "user_id", userID)
	return nil
}

// LogoutAll revokes the presented access token and removes every refresh
// token the user holds, ending all sessions.
func (s *AuthService) LogoutAll(ctx context.Context, userID, accessToken string) (int64, error) {
	s.revokeAccess(accessToken)

	n, err := s.Store.RefreshTokens().DeleteAllUserRefreshTokens(ctx, userID)
	if err != nil {
		return 0, err
	}

	slogx.FromContext(ctx).Info("all sessions ended", "user_id", userID, "sessions", n)
	return n, nil
}

// DeleteAccount removes the user row (refresh tokens and preferences cascade)
// and revokes the access token that authorized the call.
func (s *AuthService) DeleteAccount(ctx context.Context, userID, accessToken string) error {
	if err := s.Store.Users().DeleteUser(ctx, userID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	s.revokeAccess(accessToken)

	slogx.FromContext(ctx).Info("account deleted", "user_id", userID)
	return nil
}

// GetUser fetches a user by id.
func (s *AuthService) GetUser(ctx context.Context, userID string) (domain.User, error) {
	u, err := s.Store.Users().GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.User{}, ErrUserNotFound
		}
		return domain.User{}, err
	}
	return u, nil
}

// SetUserActive flips a user's active flag. Deactivated users fail token
// verification at the middleware and cannot log in or refresh.
func (s *AuthService) SetUserActive(ctx context.Context, userID string, active bool) error {
	err := s.Store.Users().SetUserActive(ctx, userID, active)
	if errors.Is(err, store.ErrNotFound) {
		return ErrUserNotFound
	}
	return err
}

// DeactivateUser disables the account and ends every session it holds.
// Outstanding access tokens lapse at the middleware's is_active check.
func (s *AuthService) DeactivateUser(ctx context.Context, userID string) error {
	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Users().SetUserActive(ctx, userID, false); err != nil {
			return err
		}
		_, err := tx.RefreshTokens().DeleteAllUserRefreshTokens(ctx, userID)
		return err
	})
	if errors.Is(err, store.ErrNotFound) {
		return ErrUserNotFound
	}
	if err != nil {
		return err
	}

	slogx.FromContext(ctx).Info("account deactivated", "user_id", userID)
	return nil
}

// issueTokens signs an access/refresh pair for u and persists the refresh
// row keyed by the signed token.
func (s *AuthService) issueTokens(ctx context.Context, tx store.Tx, u domain.User) (domain.TokenPair, error) {
	access, err := s.Codec.IssueAccess(u.ID, u.Email, u.Role)
	if err != nil {
		return domain.TokenPair{}, err
	}

	refresh, err := s.Codec.IssueRefresh(u.ID)
	if err != nil {
		return domain.TokenPair{}, err
	}

	row := domain.RefreshToken{
		ID:        idx.New().String(),
		UserID:    u.ID,
		Token:     refresh,
		ExpiresAt: s.Codec.RefreshExpiry(time.Now()).UTC(),
	}
	if err := tx.RefreshTokens().CreateRefreshToken(ctx, row); err != nil {
		return domain.TokenPair{}, err
	}

	return domain.TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

// revokeAccess blacklists an access token until its natural expiry. Tokens
// whose expiry cannot be decoded are held for a full access TTL.
func (s *AuthService) revokeAccess(accessToken string) {
	if accessToken == "" {
		return
	}

	exp, ok := s.Codec.DecodeExpiryUnsafe(accessToken)
	if !ok {
		exp = time.Now().Add(s.Codec.AccessTTL)
	}
	s.Revocations.Add(accessToken, exp)
}

// seedPreferences writes the default preference row. Best effort: a failure
// here never blocks account creation.
func (s *AuthService) seedPreferences(ctx context.Context, tx store.Tx, userID string) {
	if err := tx.Preferences().CreatePreferences(ctx, domain.DefaultPreferences(userID)); err != nil {
		slogx.FromContext(ctx).Warn("failed to seed default preferences", "user_id", userID, "error", err)
	}
}

func mapCodecErr(err error) error {
	switch {
	case errors.Is(err, jwtx.ErrExpired):
		return ErrTokenExpired
	case errors.Is(err, jwtx.ErrInvalid):
		return ErrTokenInvalid
	default:
		return err
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
