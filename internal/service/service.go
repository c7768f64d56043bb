// service содержит бизнес-логику account-сервиса:
// регистрацию/аутентификацию пользователей, выпуск/проверку/отзыв токенов
// и сведение внешней (OAuth) идентичности к локальной учётной записи.
//
// Основные аспекты:
//   - Пакет не хранит состояние запроса внутри Service; экземпляр Service
//     безопасен для конкурентного использования из разных горутин при условии,
//     что переданные хранилище (storage.Storage) и чёрный список
//     (blacklist.Ledger) потокобезопасны.
//   - Ошибки возвращаются sentinel-значениями и далее маппятся
//     HTTP-слоем на статус-коды (см. комментарии к переменным ошибок ниже).
package service

import (
	"errors"

	"github.com/pribylovaa/go-account-service/internal/blacklist"
	"github.com/pribylovaa/go-account-service/internal/config"
	"github.com/pribylovaa/go-account-service/internal/storage"
)

var (
	// ErrInvalidCredentials — пара логин/пароль неверна или пользователь не найден.
	// HTTP 401.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrInvalidToken — токен (access/refresh) некорректен по формату/подписи,
	// выпущен с другим назначением или ссылается на несуществующего пользователя.
	// HTTP 401.
	ErrInvalidToken = errors.New("invalid token")

	// ErrTokenExpired — срок действия токена истёк. HTTP 401.
	ErrTokenExpired = errors.New("token expired")

	// ErrTokenRevoked — refresh-токен отозван (logout/rotation) и недействителен
	// независимо от срока. HTTP 401.
	ErrTokenRevoked = errors.New("token revoked")

	// ErrEmailTaken — e-mail уже занят другим пользователем. HTTP 409.
	ErrEmailTaken = errors.New("email already taken")

	// ErrInvalidEmail — e-mail имеет некорректный формат. HTTP 400.
	ErrInvalidEmail = errors.New("invalid email format")

	// ErrWeakPassword — пароль не удовлетворяет политикам сложности. HTTP 400.
	ErrWeakPassword = errors.New("password is too weak")

	// ErrEmptyPassword — пароль пустой. HTTP 400.
	ErrEmptyPassword = errors.New("password is empty")

	// ErrInvalidClaims — во внешних claims нет ни email, ни стабильного
	// subject — резолв идентичности невозможен. HTTP 401.
	ErrInvalidClaims = errors.New("invalid external claims")
)

// Service описывает бизнес-логику account-сервиса.
type Service struct {
	storage storage.Storage
	ledger  blacklist.Ledger
	cfg     config.AuthConfig
}

// New создаёт новый экземпляр Service.
func New(storage storage.Storage, ledger blacklist.Ledger, cfg config.AuthConfig) *Service {
	return &Service{
		storage: storage,
		ledger:  ledger,
		cfg:     cfg,
	}
}
