package jwtx

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/hazelworks/personachat/pkg/idx"
)

// Default token TTLs. These mirror the mobile app's session model: a short
// access token refreshed against a week-long server-side session.
const (
	DefaultAccessTokenTTL  = 1 * time.Hour
	DefaultRefreshTokenTTL = 7 * 24 * time.Hour
)

// RefreshTokenType is the value of the "type" claim that marks a token as a
// refresh token. Access tokens carry no type marker.
const RefreshTokenType = "refresh"

// AccessClaims are the claims embedded in access tokens. Subject is the
// user id; email and role ride along so the route layer can make cheap
// decisions without a store round trip.
type AccessClaims struct {
	jwt.RegisteredClaims

	Email string `json:"email,omitempty"`
	Role  string `json:"role,omitempty"`
}

// RefreshClaims are the claims embedded in refresh tokens. Only the subject
// matters; the TokenType marker stops an access token signed with the wrong
// secret from ever passing as a refresh token (and vice versa, together with
// key separation).
type RefreshClaims struct {
	jwt.RegisteredClaims

	TokenType string `json:"type"`
}

// newRegisteredClaims always stamps a fresh jti. iat/exp only have second
// granularity, so without it two issuances for the same user in the same
// second would sign byte-identical tokens and refresh rotation would hand
// back the token it just consumed.
func newRegisteredClaims(subject, issuer, audience string, ttl time.Duration, now time.Time) jwt.RegisteredClaims {
	return jwt.RegisteredClaims{
		ID:        idx.New().String(),
		Issuer:    issuer,
		Subject:   subject,
		Audience:  jwt.ClaimStrings{audience},
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
}
