package http

import (
	"errors"
	"net/http"

	"github.com/hazelworks/personachat/internal/auth/service"
	"github.com/hazelworks/personachat/pkg/httpx"
)

// AdminHandler serves the admin-gated user management endpoints.
type AdminHandler struct {
	Auth *service.AuthService
}

func (h *AdminHandler) HandleDeactivate(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("id")
	if userID == "" {
		httpx.WriteError(w, http.StatusBadRequest, httpx.CodeValidation, "User id is required")
		return
	}

	err := h.Auth.DeactivateUser(r.Context(), userID)
	if errors.Is(err, service.ErrUserNotFound) {
		httpx.WriteError(w, http.StatusBadRequest, httpx.CodeValidation, "User not found")
		return
	}
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteMessage(w, http.StatusOK, "User deactivated")
}
