package http

import (
	"net/http"

	"github.com/hazelworks/personachat/internal/auth/service"
	"github.com/hazelworks/personachat/pkg/httpx"
)

// LogoutHandler serves POST /api/auth/logout and POST /api/auth/logout-all.
// Both require the Authenticator.
type LogoutHandler struct {
	Auth    *service.AuthService
	Cookies *httpx.CookieWriter
}

type logoutRequest struct {
	RefreshToken string `json:"refreshToken"`
}

func (h *LogoutHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	id, _ := IdentityFrom(r.Context())

	var req logoutRequest
	_ = decodeJSON(r, &req)

	token := req.RefreshToken
	if token == "" {
		if c, err := r.Cookie(httpx.RefreshTokenCookie); err == nil {
			token = c.Value
		}
	}

	if err := h.Auth.Logout(r.Context(), id.UserID, id.AccessToken, token); err != nil {
		writeServiceError(w, r, err)
		return
	}

	h.Cookies.ClearAuthCookies(w)
	httpx.WriteMessage(w, http.StatusOK, "Logged out successfully")
}

func (h *LogoutHandler) HandleLogoutAll(w http.ResponseWriter, r *http.Request) {
	id, _ := IdentityFrom(r.Context())

	if _, err := h.Auth.LogoutAll(r.Context(), id.UserID, id.AccessToken); err != nil {
		writeServiceError(w, r, err)
		return
	}

	h.Cookies.ClearAuthCookies(w)
	httpx.WriteMessage(w, http.StatusOK, "Logged out from all devices")
}
