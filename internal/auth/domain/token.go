package domain

import "time"

// TokenPair holds the signed access and refresh tokens handed to a client
// after login, registration, OAuth sign-in or a refresh rotation.
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// RefreshToken models a stored refresh token row. Token is the signed JWT
// itself, used verbatim as the lookup key.
type RefreshToken struct {
	ID        string
	UserID    string
	Token     string
	ExpiresAt time.Time
	CreatedAt time.Time
}

// Expired reports whether the row's expiry has passed at now.
func (rt RefreshToken) Expired(now time.Time) bool {
	return !rt.ExpiresAt.After(now)
}
