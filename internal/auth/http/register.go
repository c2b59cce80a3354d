package http

import (
	"net/http"
	"strings"

	"github.com/hazelworks/personachat/internal/auth/service"
	"github.com/hazelworks/personachat/pkg/httpx"
)

// RegisterHandler serves POST /api/auth/register.
type RegisterHandler struct {
	Auth    *service.AuthService
	Cookies *httpx.CookieWriter
}

type registerRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

func (h *RegisterHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(r, &req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, httpx.CodeValidation, "Invalid request body")
		return
	}

	if !validEmail(req.Email) {
		httpx.WriteError(w, http.StatusBadRequest, httpx.CodeValidation, "A valid email is required")
		return
	}
	if len(req.Password) < 6 {
		httpx.WriteError(w, http.StatusBadRequest, httpx.CodeValidation,
			"Password must be at least 6 characters")
		return
	}

	u, pair, err := h.Auth.Register(r.Context(), req.Email, req.Password, strings.TrimSpace(req.Name))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeAuthSuccess(w, h.Cookies, http.StatusCreated, u, pair)
}
