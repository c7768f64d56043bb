// google — клиент внешнего провайдера идентичности Google OAuth 2.0.
//
// Пакет отвечает только за сетевую часть федеративного входа: обмен
// authorization code на токены, introspection ID-токена и построение
// URL авторизации. Сведение полученных claims к локальному пользователю —
// обязанность service.ResolveExternalUser; любой неуспешный ответ
// провайдера является жёстким отказом ещё до резолва.
package google

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strings"

	"github.com/pribylovaa/go-account-service/internal/config"
	"github.com/pribylovaa/go-account-service/internal/models"
)

var (
	// ErrConfig — параметры OAuth не заданы или имеют неверный формат. HTTP 500.
	ErrConfig = errors.New("google oauth misconfigured")

	// ErrExchange — провайдер отверг authorization code. HTTP 401.
	ErrExchange = errors.New("authorization code exchange failed")

	// ErrTokenInfo — провайдер отверг ID-токен при introspection. HTTP 401.
	ErrTokenInfo = errors.New("id token introspection failed")
)

// clientIDPattern — формат client ID, выдаваемого Google Cloud Console.
var clientIDPattern = regexp.MustCompile(`^[\d-]+\.apps\.googleusercontent\.com$`)

// Client — HTTP-клиент OAuth-эндпоинтов Google.
type Client struct {
	cfg  config.GoogleConfig
	http *http.Client
}

// New создаёт клиент и валидирует конфигурацию (fail-fast на старте).
func New(cfg config.GoogleConfig) (*Client, error) {
	const op = "oauth.google.New"

	if err := ValidateConfig(cfg); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &Client{
		cfg:  cfg,
		http: &http.Client{Timeout: cfg.Timeout},
	}, nil
}

// ValidateConfig проверяет обязательность и формат параметров OAuth.
func ValidateConfig(cfg config.GoogleConfig) error {
	if cfg.ClientID == "" {
		return fmt.Errorf("%w: client id is not set", ErrConfig)
	}

	if cfg.ClientSecret == "" {
		return fmt.Errorf("%w: client secret is not set", ErrConfig)
	}

	if cfg.RedirectURI == "" {
		return fmt.Errorf("%w: redirect uri is not set", ErrConfig)
	}

	if cfg.StateSecret == "" {
		return fmt.Errorf("%w: state secret is not set", ErrConfig)
	}

	if !clientIDPattern.MatchString(cfg.ClientID) {
		return fmt.Errorf("%w: invalid client id format", ErrConfig)
	}

	if !strings.HasPrefix(cfg.RedirectURI, "http://") && !strings.HasPrefix(cfg.RedirectURI, "https://") {
		return fmt.Errorf("%w: invalid redirect uri format", ErrConfig)
	}

	return nil
}

// AuthURL строит URL авторизации Google для редиректа браузера.
func (c *Client) AuthURL(state string) string {
	query := url.Values{
		"client_id":     {c.cfg.ClientID},
		"redirect_uri":  {c.cfg.RedirectURI},
		"response_type": {"code"},
		"scope":         {"openid email profile"},
		"state":         {state},
		"access_type":   {"offline"},
	}

	return c.cfg.AuthEndpoint + "?" + query.Encode()
}

// RedirectURI возвращает сконфигурированный redirect URI (для ответов initiate).
func (c *Client) RedirectURI() string {
	return c.cfg.RedirectURI
}

// ExchangeCode обменивает authorization code на ID-токен.
// Любой не-2xx ответ провайдера — жёсткий отказ ErrExchange.
func (c *Client) ExchangeCode(ctx context.Context, code string) (string, error) {
	const op = "oauth.google.ExchangeCode"

	form := url.Values{
		"grant_type":    {"authorization_code"},
		"code":          {code},
		"redirect_uri":  {c.cfg.RedirectURI},
		"client_id":     {c.cfg.ClientID},
		"client_secret": {c.cfg.ClientSecret},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.TokenEndpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("%s: %w: %w", op, ErrExchange, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("%s: %w: status %d", op, ErrExchange, resp.StatusCode)
	}

	var body struct {
		IDToken string `json:"id_token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("%s: %w: %w", op, ErrExchange, err)
	}

	if body.IDToken == "" {
		return "", fmt.Errorf("%s: %w: empty id_token", op, ErrExchange)
	}

	return body.IDToken, nil
}

// TokenInfo резолвит ID-токен в проверенные claims через tokeninfo-эндпоинт.
// Любой не-2xx ответ провайдера — жёсткий отказ ErrTokenInfo.
func (c *Client) TokenInfo(ctx context.Context, idToken string) (*models.ExternalClaims, error) {
	const op = "oauth.google.TokenInfo"

	endpoint := c.cfg.TokenInfoEndpoint + "?id_token=" + url.QueryEscape(idToken)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %w", op, ErrTokenInfo, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%s: %w: status %d", op, ErrTokenInfo, resp.StatusCode)
	}

	var claims models.ExternalClaims
	if err := json.NewDecoder(resp.Body).Decode(&claims); err != nil {
		return nil, fmt.Errorf("%s: %w: %w", op, ErrTokenInfo, err)
	}

	return &claims, nil
}
