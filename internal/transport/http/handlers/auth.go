package handlers

import (
	"net/http"

	"github.com/pribylovaa/go-account-service/internal/service"
	"github.com/pribylovaa/go-account-service/internal/transport/http/middleware"
	"github.com/pribylovaa/go-account-service/internal/transport/http/response"
)

type registerRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterUser — POST /auth/register.
// Успех: 201, access-токен в теле, refresh-токен в HttpOnly cookie.
func (h *Handlers) RegisterUser(w http.ResponseWriter, r *http.Request) {
	var in registerRequest
	if err := decodeStrict(r, &in); err != nil {
		response.Error(w, http.StatusBadRequest, "invalid request body", nil)
		return
	}

	user, pair, err := h.Auth.RegisterUser(r.Context(), in.Email, in.Password)
	if err != nil {
		response.WriteError(w, err)
		return
	}

	h.setRefreshCookie(w, pair.RefreshToken, http.SameSiteLaxMode)
	response.Success(w, http.StatusCreated, "User created successfully", authData{
		User:        newUserView(user),
		AccessToken: pair.AccessToken,
	})
}

// LoginUser — POST /auth/login.
func (h *Handlers) LoginUser(w http.ResponseWriter, r *http.Request) {
	var in loginRequest
	if err := decodeStrict(r, &in); err != nil {
		response.Error(w, http.StatusBadRequest, "invalid request body", nil)
		return
	}

	user, pair, err := h.Auth.LoginUser(r.Context(), in.Email, in.Password)
	if err != nil {
		response.WriteError(w, err)
		return
	}

	h.setRefreshCookie(w, pair.RefreshToken, http.SameSiteLaxMode)
	response.Success(w, http.StatusOK, "Login successful", authData{
		User:        newUserView(user),
		AccessToken: pair.AccessToken,
	})
}

// RefreshTokens — POST /auth/refresh.
// Refresh-токен читается только из cookie; отсутствие cookie — 401.
// Успех ротирует пару: новый refresh уезжает в cookie, access — в тело.
func (h *Handlers) RefreshTokens(w http.ResponseWriter, r *http.Request) {
	refreshToken := refreshFromCookie(r)
	if refreshToken == "" {
		response.WriteError(w, service.ErrInvalidToken)
		return
	}

	pair, err := h.Auth.RefreshTokens(r.Context(), refreshToken)
	if err != nil {
		response.WriteError(w, err)
		return
	}

	h.setRefreshCookie(w, pair.RefreshToken, http.SameSiteLaxMode)
	response.Success(w, http.StatusOK, "Tokens refreshed successfully", map[string]any{
		"access_token":      pair.AccessToken,
		"access_expires_at": pair.AccessExpiresAt,
	})
}

// Logout — POST /auth/logout.
// Всегда успешен: отсутствие cookie не ошибка, cookie сбрасывается в любом случае.
func (h *Handlers) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.Auth.Logout(r.Context(), refreshFromCookie(r)); err != nil {
		response.WriteError(w, err)
		return
	}

	clearRefreshCookie(w)
	response.Success(w, http.StatusOK, "User logged out successfully", nil)
}

// Me — GET /users/me, guard-эндпоинт по access-токену.
func (h *Handlers) Me(w http.ResponseWriter, r *http.Request) {
	user, err := h.Auth.CurrentUser(r.Context(), middleware.BearerToken(r.Context()))
	if err != nil {
		response.WriteError(w, err)
		return
	}

	response.Success(w, http.StatusOK, "Request successful", map[string]any{
		"user": newUserView(user),
	})
}
