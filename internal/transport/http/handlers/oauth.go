package handlers

import (
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pribylovaa/go-account-service/internal/oauth/google"
	logctx "github.com/pribylovaa/go-account-service/internal/pkg/log"
	"github.com/pribylovaa/go-account-service/internal/transport/http/response"
)

type googleLoginRequest struct {
	IDToken string `json:"id_token"`
}

// GoogleLogin — POST /oauth/google: вход по готовому ID-токену.
// Introspection выполняется до резолва пользователя; любой отказ
// провайдера — жёсткий 401 без создания учётной записи.
// Успех: 201 для новой учётной записи, 200 для существующей.
func (h *Handlers) GoogleLogin(w http.ResponseWriter, r *http.Request) {
	if h.OAuth == nil {
		response.WriteError(w, google.ErrConfig)
		return
	}

	var in googleLoginRequest
	if err := decodeStrict(r, &in); err != nil || in.IDToken == "" {
		response.Error(w, http.StatusBadRequest, "invalid request body", nil)
		return
	}

	claims, err := h.OAuth.TokenInfo(r.Context(), in.IDToken)
	if err != nil {
		response.WriteError(w, err)
		return
	}

	user, pair, created, err := h.Auth.LoginExternalUser(r.Context(), claims)
	if err != nil {
		response.WriteError(w, err)
		return
	}

	statusCode := http.StatusOK
	if created {
		statusCode = http.StatusCreated
	}

	h.setRefreshCookie(w, pair.RefreshToken, http.SameSiteLaxMode)
	response.Success(w, statusCode, "Login successful", authData{
		User:        newUserView(user),
		AccessToken: pair.AccessToken,
	})
}

// GoogleInitiate — GET /oauth/google/initiate.
// Обязательный параметр environment задаёт фронтенд, в который браузер
// вернётся после callback; значение уезжает в подписанный state.
// По умолчанию — 302 на страницу авторизации Google; с return_json=true —
// JSON с auth_url для клиентов, которые делают редирект сами.
func (h *Handlers) GoogleInitiate(w http.ResponseWriter, r *http.Request) {
	if h.OAuth == nil {
		response.WriteError(w, google.ErrConfig)
		return
	}

	envParam := r.URL.Query().Get("environment")
	if envParam == "" {
		response.Error(w, http.StatusUnprocessableEntity, "Google Initiation failed", map[string]any{
			"error": "environment parameter not included",
		})
		return
	}

	env, err := google.ParseEnvironment(envParam)
	if err != nil {
		response.Error(w, http.StatusUnprocessableEntity, "Google Initiation failed", map[string]any{
			"error": "unknown environment parameter",
		})
		return
	}

	state, err := h.OAuth.NewState(env)
	if err != nil {
		response.WriteError(w, err)
		return
	}

	authURL := h.OAuth.AuthURL(state)

	if r.URL.Query().Get("return_json") == "true" {
		response.Success(w, http.StatusOK, "Google OAuth URL generated", map[string]any{
			"auth_url":     authURL,
			"state":        state,
			"redirect_uri": h.OAuth.RedirectURI(),
		})
		return
	}

	http.Redirect(w, r, authURL, http.StatusFound)
}

// GoogleCallback — GET /oauth/google/callback.
// Вызывается браузером посреди редиректа, поэтому любой отказ деградирует
// в редирект на фронтенд с auth_success=false, а не в тело ошибки.
// Успех: обмен кода, introspection, резолв пользователя, refresh-токен
// в cookie (SameSite=None — редирект кросс-сайтовый) и редирект с access-токеном.
func (h *Handlers) GoogleCallback(w http.ResponseWriter, r *http.Request) {
	lg := logctx.From(r.Context())

	query := r.URL.Query()
	code := query.Get("code")
	rawState := query.Get("state")

	// Окружение берётся из подписанного state; неподписанному или битому
	// state не верим и уводим браузер на фронтенд по умолчанию.
	env := google.EnvProd
	if h.OAuth != nil && rawState != "" {
		if st, err := h.OAuth.ParseState(rawState); err == nil {
			env = st.Env
		}
	}

	frontend := h.Cfg.Frontend.URLFor(string(env))

	if h.OAuth == nil {
		http.Redirect(w, r, callbackFailureURL(frontend), http.StatusFound)
		return
	}

	if code == "" {
		// Пользователь отменил согласие — возвращаем его на фронтенд без флагов.
		http.Redirect(w, r, frontend, http.StatusFound)
		return
	}

	idToken, err := h.OAuth.ExchangeCode(r.Context(), code)
	if err != nil {
		lg.Error("google_callback_exchange_failed", slog.String("err", err.Error()))
		http.Redirect(w, r, callbackFailureURL(frontend), http.StatusFound)
		return
	}

	claims, err := h.OAuth.TokenInfo(r.Context(), idToken)
	if err != nil {
		lg.Error("google_callback_tokeninfo_failed", slog.String("err", err.Error()))
		http.Redirect(w, r, callbackFailureURL(frontend), http.StatusFound)
		return
	}

	user, pair, _, err := h.Auth.LoginExternalUser(r.Context(), claims)
	if err != nil {
		lg.Error("google_callback_login_failed", slog.String("err", err.Error()))
		http.Redirect(w, r, callbackFailureURL(frontend), http.StatusFound)
		return
	}

	h.setRefreshCookie(w, pair.RefreshToken, http.SameSiteNoneMode)

	// ID-токен провайдера отдаётся фронту отдельной короткоживущей cookie.
	http.SetCookie(w, &http.Cookie{
		Name:     "id_token",
		Value:    idToken,
		Path:     "/",
		Expires:  time.Now().Add(time.Hour),
		MaxAge:   int(time.Hour / time.Second),
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteNoneMode,
	})

	redirect := callbackBase(frontend) + "?" + url.Values{
		"auth_success": {"true"},
		"access_token": {pair.AccessToken},
	}.Encode()

	lg.Info("google_callback_ok", slog.String("user_id", user.ID.String()))
	http.Redirect(w, r, redirect, http.StatusFound)
}

func callbackBase(frontend string) string {
	return strings.TrimRight(frontend, "/") + "/auth/callback"
}

func callbackFailureURL(frontend string) string {
	return callbackBase(frontend) + "?auth_success=false"
}
