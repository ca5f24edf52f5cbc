package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/arjun/vidtube-backend/internal/api/middleware"
	"github.com/arjun/vidtube-backend/internal/domain"
	"github.com/arjun/vidtube-backend/internal/service"
)

type AuthHandler struct {
	authService *service.AuthService
}

func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type TokenPairResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

type LoginResponse struct {
	User         domain.User `json:"user"`
	AccessToken  string      `json:"accessToken"`
	RefreshToken string      `json:"refreshToken"`
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond(w, http.StatusBadRequest, nil, "invalid request body")
		return
	}

	result, err := h.authService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		respondError(w, r, err)
		return
	}

	setTokenCookies(w, result)
	respond(w, http.StatusOK, LoginResponse{
		User:         result.User,
		AccessToken:  result.AccessToken,
		RefreshToken: result.RefreshToken,
	}, "user logged in successfully")
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.CurrentUser(r.Context())
	if !ok {
		respond(w, http.StatusUnauthorized, nil, "unauthenticated request")
		return
	}

	if err := h.authService.Logout(r.Context(), user.ID); err != nil {
		respondError(w, r, err)
		return
	}

	clearTokenCookies(w)
	respond(w, http.StatusOK, nil, "user logged out successfully")
}

// Refresh exchanges the refresh token (cookie or body) for a fresh pair.
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	token := ""
	if cookie, err := r.Cookie("refreshToken"); err == nil {
		token = cookie.Value
	}
	if token == "" && r.Body != nil {
		var req struct {
			RefreshToken string `json:"refreshToken"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err == nil {
			token = req.RefreshToken
		}
	}

	result, err := h.authService.Refresh(r.Context(), token)
	if err != nil {
		respondError(w, r, err)
		return
	}

	setTokenCookies(w, result)
	respond(w, http.StatusOK, TokenPairResponse{
		AccessToken:  result.AccessToken,
		RefreshToken: result.RefreshToken,
	}, "access token refreshed")
}

type ChangePasswordRequest struct {
	OldPassword string `json:"oldPassword"`
	NewPassword string `json:"newPassword"`
}

func (h *AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.CurrentUser(r.Context())
	if !ok {
		respond(w, http.StatusUnauthorized, nil, "unauthenticated request")
		return
	}

	var req ChangePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond(w, http.StatusBadRequest, nil, "invalid request body")
		return
	}

	if err := h.authService.ChangePassword(r.Context(), user.ID, req.OldPassword, req.NewPassword); err != nil {
		respondError(w, r, err)
		return
	}

	respond(w, http.StatusOK, nil, "password changed successfully")
}

func setTokenCookies(w http.ResponseWriter, result *service.AuthResult) {
	opts := result.CookieOptions
	http.SetCookie(w, &http.Cookie{
		Name:     "accessToken",
		Value:    result.AccessToken,
		Path:     "/",
		Expires:  time.Now().Add(opts.AccessTTL),
		HttpOnly: opts.HTTPOnly,
		Secure:   opts.Secure,
		SameSite: http.SameSiteStrictMode,
	})
	http.SetCookie(w, &http.Cookie{
		Name:     "refreshToken",
		Value:    result.RefreshToken,
		Path:     "/",
		Expires:  time.Now().Add(opts.RefreshTTL),
		HttpOnly: opts.HTTPOnly,
		Secure:   opts.Secure,
		SameSite: http.SameSiteStrictMode,
	})
}

func clearTokenCookies(w http.ResponseWriter) {
	for _, name := range []string{"accessToken", "refreshToken"} {
		http.SetCookie(w, &http.Cookie{
			Name:     name,
			Value:    "",
			Path:     "/",
			MaxAge:   -1,
			HttpOnly: true,
			SameSite: http.SameSiteStrictMode,
		})
	}
}
