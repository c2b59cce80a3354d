package http

import (
	"net/http"

	"github.com/hazelworks/personachat/internal/auth/service"
	"github.com/hazelworks/personachat/pkg/httpx"
)

// RefreshHandler serves POST /api/auth/refresh. The refresh token is taken
// from the JSON body, falling back to the refreshToken cookie.
type RefreshHandler struct {
	Auth    *service.AuthService
	Cookies *httpx.CookieWriter
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

func (h *RefreshHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	_ = decodeJSON(r, &req) // body is optional when the cookie is present

	token := req.RefreshToken
	if token == "" {
		if c, err := r.Cookie(httpx.RefreshTokenCookie); err == nil {
			token = c.Value
		}
	}
	if token == "" {
		httpx.WriteError(w, http.StatusBadRequest, httpx.CodeValidation,
			"Refresh token is required")
		return
	}

	u, pair, err := h.Auth.Refresh(r.Context(), token)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeAuthSuccess(w, h.Cookies, http.StatusOK, u, pair)
}
