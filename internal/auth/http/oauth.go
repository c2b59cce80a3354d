package http

import (
	"net/http"

	"github.com/hazelworks/personachat/internal/auth/domain"
	"github.com/hazelworks/personachat/internal/auth/service"
	"github.com/hazelworks/personachat/pkg/httpx"
)

// OAuthHandler serves POST /api/auth/apple and POST /api/auth/google. The
// mobile client verifies the provider assertion before calling us; the
// profile fields in the body are trusted past that boundary.
type OAuthHandler struct {
	OAuth   *service.OAuthService
	Cookies *httpx.CookieWriter
}

type appleRequest struct {
	AppleID  string `json:"appleId"`
	Email    string `json:"email"`
	FullName string `json:"fullName"`
}

type googleRequest struct {
	GoogleID string `json:"googleId"`
	Email    string `json:"email"`
	Name     string `json:"name"`
	PhotoURL string `json:"photoURL"`
}

func (h *OAuthHandler) HandleApple(w http.ResponseWriter, r *http.Request) {
	var req appleRequest
	if err := decodeJSON(r, &req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, httpx.CodeValidation, "Invalid request body")
		return
	}

	if req.AppleID == "" {
		httpx.WriteError(w, http.StatusBadRequest, httpx.CodeValidation, "appleId is required")
		return
	}

	h.authenticate(w, r, service.Profile{
		Provider:  domain.ProviderApple,
		SubjectID: req.AppleID,
		Email:     req.Email,
		Name:      req.FullName,
	})
}

func (h *OAuthHandler) HandleGoogle(w http.ResponseWriter, r *http.Request) {
	var req googleRequest
	if err := decodeJSON(r, &req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, httpx.CodeValidation, "Invalid request body")
		return
	}

	if req.GoogleID == "" {
		httpx.WriteError(w, http.StatusBadRequest, httpx.CodeValidation, "googleId is required")
		return
	}

	h.authenticate(w, r, service.Profile{
		Provider:  domain.ProviderGoogle,
		SubjectID: req.GoogleID,
		Email:     req.Email,
		Name:      req.Name,
		Avatar:    req.PhotoURL,
	})
}

func (h *OAuthHandler) authenticate(w http.ResponseWriter, r *http.Request, p service.Profile) {
	u, pair, err := h.OAuth.Authenticate(r.Context(), p)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeAuthSuccess(w, h.Cookies, http.StatusOK, u, pair)
}
