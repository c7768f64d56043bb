// response стандартизирует тела ответов HTTP-слоя.
//
// Каждый ответ — единый конверт:
//
//	{"status": "success"|"error", "status_code": ..., "message": ..., "data"|"errors": ...}
//
// Ошибки доменного слоя (sentinel-значения service и oauth/google)
// транслируются в HTTP-статусы здесь, в одной точке; наружу уходит краткое
// безопасное message без внутренних деталей.
package response

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/pribylovaa/go-account-service/internal/oauth/google"
	"github.com/pribylovaa/go-account-service/internal/service"
)

// Envelope — корневой объект любого ответа.
type Envelope struct {
	Status     string `json:"status"`
	StatusCode int    `json:"status_code"`
	Message    string `json:"message"`
	Data       any    `json:"data,omitempty"`
	Errors     any    `json:"errors,omitempty"`
}

// Success пишет успешный ответ с данными.
func Success(w http.ResponseWriter, statusCode int, message string, data any) {
	write(w, statusCode, Envelope{
		Status:     "success",
		StatusCode: statusCode,
		Message:    message,
		Data:       data,
	})
}

// Error пишет ответ об ошибке с заданным статусом и деталями.
func Error(w http.ResponseWriter, statusCode int, message string, details map[string]any) {
	if details == nil {
		details = map[string]any{}
	}

	write(w, statusCode, Envelope{
		Status:     "error",
		StatusCode: statusCode,
		Message:    message,
		Errors:     details,
	})
}

// FromError конвертирует доменную ошибку в HTTP-статус и безопасное message.
//
// Маппинг:
//   - ErrInvalidEmail/ErrWeakPassword/ErrEmptyPassword -> 400;
//   - ErrEmailTaken -> 409;
//   - ErrInvalidCredentials -> 401;
//   - ErrInvalidToken/ErrTokenExpired/ErrTokenRevoked -> 401;
//   - ErrInvalidClaims и отказы провайдера (ErrExchange/ErrTokenInfo) -> 401;
//   - google.ErrConfig -> 500;
//   - прочее -> 500 с единым безопасным сообщением.
func FromError(err error) (int, string) {
	switch {
	case errors.Is(err, service.ErrInvalidEmail),
		errors.Is(err, service.ErrWeakPassword),
		errors.Is(err, service.ErrEmptyPassword):
		return http.StatusBadRequest, err.Error()

	case errors.Is(err, service.ErrEmailTaken):
		return http.StatusConflict, "user already exists"

	case errors.Is(err, service.ErrInvalidCredentials):
		return http.StatusUnauthorized, "invalid email or password"

	case errors.Is(err, service.ErrInvalidToken),
		errors.Is(err, service.ErrTokenExpired),
		errors.Is(err, service.ErrTokenRevoked):
		return http.StatusUnauthorized, "invalid or expired token"

	case errors.Is(err, service.ErrInvalidClaims),
		errors.Is(err, google.ErrExchange),
		errors.Is(err, google.ErrTokenInfo):
		return http.StatusUnauthorized, "google authentication failed"

	case errors.Is(err, google.ErrConfig):
		return http.StatusInternalServerError, "google oauth is not configured"

	default:
		return http.StatusInternalServerError, "internal server error"
	}
}

// WriteError — хелпер для хендлеров: маппит ошибку и пишет конверт.
func WriteError(w http.ResponseWriter, err error) {
	statusCode, message := FromError(err)
	Error(w, statusCode, message, nil)
}

func write(w http.ResponseWriter, statusCode int, env Envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(env)
}
