package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/pribylovaa/go-account-service/internal/models"
	"github.com/pribylovaa/go-account-service/internal/pkg/log"
	"github.com/pribylovaa/go-account-service/internal/storage"
)

// placeholderDomain — домен синтетического email для claims без email,
// но со стабильным subject.
const placeholderDomain = "placeholder.google.com"

// ResolveExternalUser сводит проверенную внешнюю идентичность к локальной
// учётной записи: находит пользователя по email из claims либо создаёт
// нового (provider=google, is_verified=true, без пароля).
// Возвращает пользователя и признак того, что запись была создана.
func (s *Service) ResolveExternalUser(ctx context.Context, claims *models.ExternalClaims) (*models.User, bool, error) {
	const op = "service.oauth.ResolveExternalUser"

	lg := log.From(ctx)

	email := extractEmail(claims)
	if email == "" {
		if claims.Subject == "" {
			return nil, false, fmt.Errorf("%s: %w", op, ErrInvalidClaims)
		}

		email = claims.Subject + "@" + placeholderDomain
	}

	email = strings.ToLower(strings.TrimSpace(email))

	user, err := s.storage.UserByEmail(ctx, email)
	if err == nil {
		return user, false, nil
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return nil, false, fmt.Errorf("%s: %w", op, err)
	}

	now := time.Now().UTC()
	user = &models.User{
		ID:           uuid.New(),
		Email:        email,
		IsActive:     true,
		IsVerified:   true,
		AuthProvider: models.ProviderGoogle,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	// Создание — одна атомарная запись; никакая сетевая часть OAuth-обмена
	// сюда не входит, полусозданных пользователей быть не может.
	if err := s.storage.SaveUser(ctx, user); err != nil {
		if errors.Is(err, storage.ErrAlreadyExists) {
			// Проигравший гонку первого федеративного входа читает
			// запись, созданную победителем.
			existing, lerr := s.storage.UserByEmail(ctx, email)
			if lerr != nil {
				return nil, false, fmt.Errorf("%s: %w", op, lerr)
			}

			return existing, false, nil
		}

		return nil, false, fmt.Errorf("%s: %w", op, err)
	}

	lg.Info("external_user_created",
		slog.String("op", op),
		slog.String("user_id", user.ID.String()),
	)

	return user, true, nil
}

// LoginExternalUser — федеративный вход: резолв/создание пользователя
// по внешним claims и выпуск пары токенов.
func (s *Service) LoginExternalUser(ctx context.Context, claims *models.ExternalClaims) (*models.User, *models.TokenPair, bool, error) {
	const op = "service.oauth.LoginExternalUser"

	user, created, err := s.ResolveExternalUser(ctx, claims)
	if err != nil {
		return nil, nil, false, fmt.Errorf("%s: %w", op, err)
	}

	pair, err := s.issueTokenPair(user.ID)
	if err != nil {
		return nil, nil, false, fmt.Errorf("%s: %w", op, err)
	}

	return user, pair, created, nil
}

// extractEmail достаёт email из claims, учитывая все наблюдаемые формы
// ответа провайдера (introspection ID-токена и userinfo дают разные поля).
// Порядок приоритета: email -> payload.email -> emails[0].value.
func extractEmail(claims *models.ExternalClaims) string {
	if claims.Email != "" {
		return claims.Email
	}

	if claims.Payload.Email != "" {
		return claims.Payload.Email
	}

	if len(claims.Emails) > 0 {
		return claims.Emails[0].Value
	}

	return ""
}
