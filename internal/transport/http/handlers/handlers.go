// handlers содержит HTTP-хендлеры account-сервиса.
// Здесь выполняется только маппинг запросов/ответов и ошибок доменного слоя;
// вся бизнес-логика находится в пакете service.
//
// Контракт транспорта:
//   - access-токен возвращается в теле ответа и предъявляется клиентом
//     в заголовке Authorization: Bearer <token>;
//   - refresh-токен живёт исключительно в HttpOnly Secure cookie и в теле
//     ответа не появляется никогда.
package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/pribylovaa/go-account-service/internal/config"
	"github.com/pribylovaa/go-account-service/internal/models"
	"github.com/pribylovaa/go-account-service/internal/oauth/google"
)

// refreshCookieName — имя cookie с refresh-токеном.
const refreshCookieName = "refresh_token"

// AuthService — контракт сервисного слоя, используемый хендлерами.
type AuthService interface {
	RegisterUser(ctx context.Context, email, password string) (*models.User, *models.TokenPair, error)
	LoginUser(ctx context.Context, email, password string) (*models.User, *models.TokenPair, error)
	RefreshTokens(ctx context.Context, refreshToken string) (*models.TokenPair, error)
	Logout(ctx context.Context, refreshToken string) error
	CurrentUser(ctx context.Context, accessToken string) (*models.User, error)
	LoginExternalUser(ctx context.Context, claims *models.ExternalClaims) (*models.User, *models.TokenPair, bool, error)
}

// OAuthClient — контракт клиента внешнего провайдера идентичности.
type OAuthClient interface {
	AuthURL(state string) string
	RedirectURI() string
	NewState(env google.Environment) (string, error)
	ParseState(raw string) (google.State, error)
	ExchangeCode(ctx context.Context, code string) (string, error)
	TokenInfo(ctx context.Context, idToken string) (*models.ExternalClaims, error)
}

// Config — транспортные настройки хендлеров.
type Config struct {
	// RefreshCookieTTL — срок жизни cookie с refresh-токеном.
	RefreshCookieTTL time.Duration
	// Frontend — адреса фронтенда по окружениям (для OAuth-редиректов).
	Frontend config.FrontendConfig
}

// Handlers агрегирует зависимости HTTP-слоя.
// OAuth может быть nil, если провайдер не сконфигурирован, —
// соответствующие эндпоинты отвечают ошибкой конфигурации.
type Handlers struct {
	Auth  AuthService
	OAuth OAuthClient
	Cfg   Config
}

func New(auth AuthService, oauth OAuthClient, cfg Config) *Handlers {
	return &Handlers{Auth: auth, OAuth: oauth, Cfg: cfg}
}

// userView — представление пользователя в теле ответа.
type userView struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	IsActive     bool      `json:"is_active"`
	IsVerified   bool      `json:"is_verified"`
	IsSuperadmin bool      `json:"is_superadmin"`
	AuthProvider string    `json:"auth_provider"`
	CreatedAt    time.Time `json:"created_at"`
}

// authData — тело данных ответов Register/Login/GoogleLogin.
type authData struct {
	User        userView `json:"user"`
	AccessToken string   `json:"access_token"`
}

func newUserView(u *models.User) userView {
	return userView{
		ID:           u.ID,
		Email:        u.Email,
		IsActive:     u.IsActive,
		IsVerified:   u.IsVerified,
		IsSuperadmin: u.IsSuperadmin,
		AuthProvider: string(u.AuthProvider),
		CreatedAt:    u.CreatedAt,
	}
}

// decodeStrict — строгий JSON-декодер: запрещаем неизвестные поля.
func decodeStrict(r *http.Request, value any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(value)
}

// setRefreshCookie выставляет HttpOnly Secure cookie с refresh-токеном.
// Для API-ответов используется SameSite=Lax; callback федеративного входа
// завершается кросс-сайтовым редиректом браузера и требует SameSite=None.
func (h *Handlers) setRefreshCookie(w http.ResponseWriter, token string, sameSite http.SameSite) {
	http.SetCookie(w, &http.Cookie{
		Name:     refreshCookieName,
		Value:    token,
		Path:     "/",
		Expires:  time.Now().Add(h.Cfg.RefreshCookieTTL),
		MaxAge:   int(h.Cfg.RefreshCookieTTL / time.Second),
		HttpOnly: true,
		Secure:   true,
		SameSite: sameSite,
	})
}

// clearRefreshCookie сбрасывает cookie с refresh-токеном.
func clearRefreshCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     refreshCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
	})
}

// refreshFromCookie читает refresh-токен из cookie запроса ("" — если нет).
func refreshFromCookie(r *http.Request) string {
	cookie, err := r.Cookie(refreshCookieName)
	if err != nil {
		return ""
	}

	return cookie.Value
}
