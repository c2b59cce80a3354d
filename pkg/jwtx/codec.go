package jwtx

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrExpired is returned when the only thing wrong with a token is that
	// its expiry has passed. Clients can react by refreshing.
	ErrExpired = errors.New("jwtx: token expired")

	// ErrInvalid covers every other verification failure: bad signature,
	// wrong issuer or audience, malformed input, wrong type marker.
	// Clients must re-authenticate.
	ErrInvalid = errors.New("jwtx: invalid token")
)

// Codec signs and verifies the two token kinds. Access and refresh tokens
// are signed with separate secrets so one can never be replayed as the
// other.
type Codec struct {
	Issuer   string
	Audience string

	AccessSecret  []byte
	RefreshSecret []byte

	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

// IssueAccess signs a new access token for the given identity.
func (c *Codec) IssueAccess(userID, email, role string) (string, error) {
	if role == "" {
		role = "user"
	}
	claims := AccessClaims{
		RegisteredClaims: newRegisteredClaims(userID, c.Issuer, c.Audience, c.accessTTL(), time.Now()),
		Email:            email,
		Role:             role,
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.AccessSecret)
}

// IssueRefresh signs a new refresh token for the given identity.
func (c *Codec) IssueRefresh(userID string) (string, error) {
	claims := RefreshClaims{
		RegisteredClaims: newRegisteredClaims(userID, c.Issuer, c.Audience, c.refreshTTL(), time.Now()),
		TokenType:        RefreshTokenType,
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.RefreshSecret)
}

// VerifyAccess checks signature, issuer, audience and expiry, returning the
// typed claims on success.
func (c *Codec) VerifyAccess(token string) (*AccessClaims, error) {
	claims := &AccessClaims{}
	if err := c.verify(token, claims, c.AccessSecret); err != nil {
		return nil, err
	}
	return claims, nil
}

// VerifyRefresh is VerifyAccess for refresh tokens, plus the type-marker
// check. A structurally valid token without type=refresh is ErrInvalid.
func (c *Codec) VerifyRefresh(token string) (*RefreshClaims, error) {
	claims := &RefreshClaims{}
	if err := c.verify(token, claims, c.RefreshSecret); err != nil {
		return nil, err
	}
	if claims.TokenType != RefreshTokenType {
		return nil, ErrInvalid
	}
	return claims, nil
}

// DecodeExpiryUnsafe extracts the expiry without verifying the signature.
// It exists solely so the logout path can compute blacklist retention for a
// token it already trusts; it must never feed an authorization decision.
func (c *Codec) DecodeExpiryUnsafe(token string) (time.Time, bool) {
	claims := &AccessClaims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		return time.Time{}, false
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, false
	}
	return claims.ExpiresAt.Time, true
}

func (c *Codec) verify(token string, claims jwt.Claims, secret []byte) error {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(c.Issuer),
		jwt.WithAudience(c.Audience),
		jwt.WithExpirationRequired(),
	)

	_, err := parser.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		return secret, nil
	})
	if err != nil {
		// Only a pure expiry failure maps to ErrExpired; jwt/v5 joins claim
		// errors, so an expired token that also fails signature, issuer or
		// audience checks is still ErrInvalid.
		if errors.Is(err, jwt.ErrTokenExpired) &&
			!errors.Is(err, jwt.ErrTokenSignatureInvalid) &&
			!errors.Is(err, jwt.ErrTokenInvalidIssuer) &&
			!errors.Is(err, jwt.ErrTokenInvalidAudience) {
			return ErrExpired
		}
		return ErrInvalid
	}
	return nil
}

func (c *Codec) accessTTL() time.Duration {
	if c.AccessTTL > 0 {
		return c.AccessTTL
	}
	return DefaultAccessTokenTTL
}

func (c *Codec) refreshTTL() time.Duration {
	if c.RefreshTTL > 0 {
		return c.RefreshTTL
	}
	return DefaultRefreshTokenTTL
}

// RefreshExpiry reports the absolute expiry a refresh token issued now
// would carry. The refresh-token store persists this alongside the row.
func (c *Codec) RefreshExpiry(now time.Time) time.Time {
	return now.Add(c.refreshTTL())
}
