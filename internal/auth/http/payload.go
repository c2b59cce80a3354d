package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/hazelworks/personachat/internal/auth/domain"
	"github.com/hazelworks/personachat/internal/auth/service"
	"github.com/hazelworks/personachat/pkg/httpx"
	"github.com/hazelworks/personachat/pkg/slogx"
)

const maxBodyBytes = 1 << 20

// userPayload is the public view of a user record.
type userPayload struct {
	ID           string    `json:"id"`
	Email        string    `json:"email,omitempty"`
	Name         string    `json:"name"`
	Avatar       string    `json:"avatar,omitempty"`
	AuthProvider string    `json:"authProvider"`
	Role         string    `json:"role"`
	IsActive     bool      `json:"isActive"`
	CreatedAt    time.Time `json:"createdAt"`
}

func toUserPayload(u domain.User) userPayload {
	return userPayload{
		ID:           u.ID,
		Email:        u.Email,
		Name:         u.Name,
		Avatar:       u.Avatar,
		AuthProvider: u.AuthProvider,
		Role:         u.Role,
		IsActive:     u.IsActive,
		CreatedAt:    u.CreatedAt,
	}
}

type authPayload struct {
	User         userPayload `json:"user"`
	AccessToken  string      `json:"accessToken"`
	RefreshToken string      `json:"refreshToken"`
}

// writeAuthSuccess sets the auth cookies and writes the token response body.
func writeAuthSuccess(w http.ResponseWriter, cookies *httpx.CookieWriter, status int, u domain.User, pair domain.TokenPair) {
	cookies.SetAuthCookies(w, pair.AccessToken, pair.RefreshToken)
	httpx.NoCache(w)
	httpx.WriteData(w, status, authPayload{
		User:         toUserPayload(u),
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	})
}

// decodeJSON reads a JSON body into dst, rejecting unknown garbage gently.
func decodeJSON(r *http.Request, dst any) error {
	body := http.MaxBytesReader(nil, r.Body, maxBodyBytes)
	defer func() { _, _ = io.Copy(io.Discard, body) }()

	dec := json.NewDecoder(body)
	if err := dec.Decode(dst); err != nil {
		return err
	}
	return nil
}

// writeServiceError maps service-layer sentinels onto the error envelope.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidCredentials):
		httpx.WriteError(w, http.StatusUnauthorized, httpx.CodeAuthFailed,
			"Invalid email or password")
	case errors.Is(err, service.ErrDuplicateEmail):
		httpx.WriteError(w, http.StatusConflict, httpx.CodeDuplicate,
			"An account with this email already exists")
	case errors.Is(err, service.ErrAccountDisabled):
		httpx.WriteError(w, http.StatusForbidden, httpx.CodeUnauthorized,
			"Account is deactivated")
	case errors.Is(err, service.ErrTokenExpired):
		httpx.WriteError(w, http.StatusUnauthorized, httpx.CodeTokenExpired,
			"Refresh token has expired")
	case errors.Is(err, service.ErrTokenInvalid):
		httpx.WriteError(w, http.StatusUnauthorized, httpx.CodeTokenInvalid,
			"Invalid refresh token")
	case errors.Is(err, service.ErrUserNotFound):
		httpx.WriteError(w, http.StatusUnauthorized, httpx.CodeAuthFailed,
			"User not found")
	default:
		slogx.FromContext(r.Context()).Error("request failed", "error", err)
		httpx.WriteError(w, http.StatusInternalServerError, httpx.CodeServerError,
			"Internal server error")
	}
}

func validEmail(email string) bool {
	email = strings.TrimSpace(email)
	at := strings.Index(email, "@")
	return at > 0 && at < len(email)-1 && !strings.ContainsAny(email, " \t")
}
