package http

import (
	"net/http"

	"github.com/hazelworks/personachat/internal/auth/service"
	"github.com/hazelworks/personachat/pkg/httpx"
)

// AccountHandler serves GET /api/auth/me and DELETE /api/auth/account.
type AccountHandler struct {
	Auth    *service.AuthService
	Cookies *httpx.CookieWriter
}

func (h *AccountHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	id, _ := IdentityFrom(r.Context())

	u, err := h.Auth.GetUser(r.Context(), id.UserID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.NoCache(w)
	httpx.WriteData(w, http.StatusOK, map[string]any{"user": toUserPayload(u)})
}

func (h *AccountHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, _ := IdentityFrom(r.Context())

	if err := h.Auth.DeleteAccount(r.Context(), id.UserID, id.AccessToken); err != nil {
		writeServiceError(w, r, err)
		return
	}

	h.Cookies.ClearAuthCookies(w)
	httpx.WriteMessage(w, http.StatusOK, "Account deleted")
}
