package http

import (
	"errors"
	"net/http"

	"github.com/hazelworks/personachat/internal/auth/domain"
	"github.com/hazelworks/personachat/internal/auth/revocation"
	"github.com/hazelworks/personachat/internal/auth/service"
	"github.com/hazelworks/personachat/pkg/httpx"
	"github.com/hazelworks/personachat/pkg/jwtx"
	"github.com/hazelworks/personachat/pkg/slogx"
)

// Authenticator gates requests on a valid, unrevoked access token belonging
// to an active user. Tokens are read from the Authorization header first,
// then the accessToken cookie.
type Authenticator struct {
	Codec       *jwtx.Codec
	Revocations *revocation.Registry
	Auth        *service.AuthService
}

// Require rejects requests without a usable access token and attaches the
// caller's Identity to the context.
func (a *Authenticator) Require(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, errCode := a.authenticate(r)
		if errCode != "" {
			httpx.WriteError(w, http.StatusUnauthorized, errCode, authFailureMessage(errCode))
			return
		}

		ctx := withIdentity(r.Context(), id)
		ctx = slogx.WithUserID(ctx, id.UserID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// Optional attaches an Identity when a valid token is presented and lets the
// request through anonymously otherwise.
func (a *Authenticator) Optional(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if id, errCode := a.authenticate(r); errCode == "" {
			ctx := withIdentity(r.Context(), id)
			ctx = slogx.WithUserID(ctx, id.UserID)
			r = r.WithContext(ctx)
		}
		next.ServeHTTP(w, r)
	})
}

// RequireAdmin is Require plus an admin role gate.
func (a *Authenticator) RequireAdmin(next http.Handler) http.Handler {
	return a.Require(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, _ := IdentityFrom(r.Context())
		if id.Role != domain.RoleAdmin {
			httpx.WriteError(w, http.StatusForbidden, httpx.CodeUnauthorized,
				"Admin access required")
			return
		}
		next.ServeHTTP(w, r)
	}))
}

// authenticate resolves the request's access token to an Identity. A non-empty
// error code means rejection; all authentication failures map to 401.
func (a *Authenticator) authenticate(r *http.Request) (Identity, string) {
	token := httpx.BearerOrCookie(r, httpx.AccessTokenCookie)
	if token == "" {
		return Identity{}, httpx.CodeAuthFailed
	}

	if a.Revocations.Contains(token) {
		return Identity{}, httpx.CodeTokenInvalid
	}

	claims, err := a.Codec.VerifyAccess(token)
	if err != nil {
		if errors.Is(err, jwtx.ErrExpired) {
			return Identity{}, httpx.CodeTokenExpired
		}
		return Identity{}, httpx.CodeTokenInvalid
	}

	u, err := a.Auth.GetUser(r.Context(), claims.Subject)
	if err != nil || !u.IsActive {
		return Identity{}, httpx.CodeAuthFailed
	}

	return Identity{
		UserID:      u.ID,
		Email:       u.Email,
		Role:        u.Role,
		AccessToken: token,
	}, ""
}

func authFailureMessage(code string) string {
	switch code {
	case httpx.CodeTokenExpired:
		return "Token has expired"
	case httpx.CodeTokenInvalid:
		return "Invalid token"
	default:
		return "Authentication required"
	}
}
