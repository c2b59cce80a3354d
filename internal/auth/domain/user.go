package domain

import "time"

// Auth providers recorded on a user account.
const (
	ProviderLocal  = "local"
	ProviderApple  = "apple"
	ProviderGoogle = "google"
)

// Roles carried in access token claims.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

type User struct {
	ID           string
	Email        string
	PasswordHash string // empty for provider-only accounts
	Name         string
	Avatar       string
	AuthProvider string // "local", "apple" or "google"
	AppleID      string
	GoogleID     string
	Role         string
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Preferences are the per-user defaults seeded at account creation.
type Preferences struct {
	UserID          string
	Notifications   bool
	Language        string
	SaveChatHistory bool
	CreatedAt       time.Time
}

// DefaultPreferences returns the seed row for a newly created user.
func DefaultPreferences(userID string) Preferences {
	return Preferences{
		UserID:          userID,
		Notifications:   true,
		Language:        "en",
		SaveChatHistory: true,
	}
}
