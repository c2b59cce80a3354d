package http

import (
	"net/http"

	"github.com/hazelworks/personachat/internal/auth/service"
	"github.com/hazelworks/personachat/pkg/httpx"
)

// LoginHandler serves POST /api/auth/login.
type LoginHandler struct {
	Auth    *service.AuthService
	Cookies *httpx.CookieWriter
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *LoginHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, httpx.CodeValidation, "Invalid request body")
		return
	}

	if req.Email == "" || req.Password == "" {
		httpx.WriteError(w, http.StatusBadRequest, httpx.CodeValidation,
			"Email and password are required")
		return
	}

	u, pair, err := h.Auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeAuthSuccess(w, h.Cookies, http.StatusOK, u, pair)
}
