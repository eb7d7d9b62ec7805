package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"jollybaba-backend/internal/auth"
	"jollybaba-backend/internal/middleware"
	"jollybaba-backend/internal/services"
	"jollybaba-backend/pkg/utils"
)

type AuthHandler struct {
	Service *services.TechnicianService
}

func NewAuthHandler(s *services.TechnicianService) *AuthHandler {
	return &AuthHandler{Service: s}
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Email == "" || req.Password == "" {
		utils.Error(w, http.StatusBadRequest, "Email and password are required")
		return
	}

	resp, err := h.Service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			utils.Error(w, http.StatusUnauthorized, "Invalid credentials")
			return
		}
		utils.Error(w, http.StatusInternalServerError, "Login failed")
		return
	}
	utils.JSON(w, http.StatusOK, resp)
}

// GoogleLogin accepts {credential} from One Tap or {code} from the
// redirect flow.
func (h *AuthHandler) GoogleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Credential string `json:"credential"`
		Code       string `json:"code"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	resp, err := h.Service.LoginWithGoogle(r.Context(), req.Credential, req.Code)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrNotAllowedEmail):
			utils.Error(w, http.StatusForbidden, "This Google account is not allowed. Use password login.")
		case errors.Is(err, auth.ErrOAuthNotConfigured):
			utils.Error(w, http.StatusServiceUnavailable, "Google sign-in is not configured")
		case errors.Is(err, auth.ErrInvalidCredential),
			errors.Is(err, auth.ErrInvalidCode),
			errors.Is(err, services.ErrUnverifiedEmail):
			utils.Error(w, http.StatusBadRequest, "Invalid Google sign-in assertion")
		default:
			utils.Error(w, http.StatusInternalServerError, "Google login failed")
		}
		return
	}
	utils.JSON(w, http.StatusOK, resp)
}

// Me returns the caller's current account row.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		utils.Error(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	user, err := h.Service.Get(r.Context(), userID)
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, "Failed to load account")
		return
	}
	if user == nil {
		utils.Error(w, http.StatusNotFound, "Account no longer exists")
		return
	}
	utils.JSON(w, http.StatusOK, user)
}
