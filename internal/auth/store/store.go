package store

import (
	"context"
	"errors"

	"github.com/hazelworks/personachat/internal/auth/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface. Concrete drivers (sqlite for now)
// implement this. Sub-repositories keep concerns tidy and testable.
type Store interface {
	Users() Users
	RefreshTokens() RefreshTokens
	Preferences() Preferences

	ApplyMigrations() error

	// Tx starts a read/write transaction and returns a Tx-scoped Store.
	// Use it for multi-step operations that must be atomic (e.g., refresh
	// rotation). The caller MUST call Commit() or Rollback() on the result.
	Tx(ctx context.Context) (Tx, error)

	// WithTx executes fn within a transaction, committing on nil and
	// rolling back on error. Prefer this over Tx directly.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	// Close releases any underlying resources.
	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Tx is a transactional store. It embeds the same repos but adds Commit/Rollback.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

type Users interface {
	// GetUserByID returns a user by id.
	GetUserByID(ctx context.Context, id string) (domain.User, error)

	// GetUserByEmail is used during password login and OAuth account linking.
	GetUserByEmail(ctx context.Context, email string) (domain.User, error)

	// GetUserByAppleID looks up a user by their Apple subject identifier.
	GetUserByAppleID(ctx context.Context, appleID string) (domain.User, error)

	// GetUserByGoogleID looks up a user by their Google subject identifier.
	GetUserByGoogleID(ctx context.Context, googleID string) (domain.User, error)

	// CreateUser inserts a new user (id is provided by app via ULID).
	CreateUser(ctx context.Context, u domain.User) error

	// UpdateUser writes the mutable profile and provider-link columns and
	// bumps updated_at.
	UpdateUser(ctx context.Context, u domain.User) error

	// SetUserActive flips the is_active flag.
	SetUserActive(ctx context.Context, userID string, active bool) error

	// DeleteUser cascades to refresh_tokens and user_preferences.
	DeleteUser(ctx context.Context, userID string) error
}

type RefreshTokens interface {
	// CreateRefreshToken stores a new refresh token record.
	CreateRefreshToken(ctx context.Context, t domain.RefreshToken) error

	// GetRefreshToken returns the row keyed by the signed token string.
	GetRefreshToken(ctx context.Context, token string) (domain.RefreshToken, error)

	// DeleteRefreshToken removes the row and reports whether it existed.
	// Under concurrent rotation only one caller observes true.
	DeleteRefreshToken(ctx context.Context, token string) (bool, error)

	// DeleteUserRefreshToken removes the row only if it belongs to userID.
	DeleteUserRefreshToken(ctx context.Context, token, userID string) (bool, error)

	// DeleteAllUserRefreshTokens removes every token for a user and returns
	// the number removed.
	DeleteAllUserRefreshTokens(ctx context.Context, userID string) (int64, error)

	// DeleteExpiredRefreshTokens removes rows past their expiry.
	DeleteExpiredRefreshTokens(ctx context.Context) (int64, error)
}

type Preferences interface {
	// CreatePreferences seeds the per-user preference row.
	CreatePreferences(ctx context.Context, p domain.Preferences) error

	// GetPreferences returns the preference row for a user.
	GetPreferences(ctx context.Context, userID string) (domain.Preferences, error)
}
