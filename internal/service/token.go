package service

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/pribylovaa/go-account-service/internal/models"
)

// tokenKind — назначение токена. Вид определяет секрет подписи и TTL:
// access-токен никогда не пройдёт проверку как refresh и наоборот,
// даже если один из секретов скомпрометирован.
type tokenKind string

const (
	kindAccess  tokenKind = "access"
	kindRefresh tokenKind = "refresh"
)

type tokenClaims struct {
	Kind string `json:"type"`
	jwt.RegisteredClaims
}

// secretFor возвращает секрет и TTL для данного вида токена.
func (s *Service) secretFor(kind tokenKind) ([]byte, time.Duration) {
	if kind == kindRefresh {
		return []byte(s.cfg.RefreshSecret), s.cfg.RefreshTokenTTL
	}

	return []byte(s.cfg.AccessSecret), s.cfg.AccessTokenTTL
}

// generateToken выпускает подписанный JWT с claims {sub, type, iat, exp}.
func (s *Service) generateToken(userID uuid.UUID, kind tokenKind, now time.Time) (string, error) {
	const op = "service.token.generateToken"

	secret, ttl := s.secretFor(kind)

	claims := tokenClaims{
		Kind: string(kind),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			Issuer:    s.cfg.Issuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(secret)
	if err != nil {
		slog.Error("token_sign_failed",
			slog.String("op", op),
			slog.String("kind", string(kind)),
			slog.String("err", err.Error()),
		)
		return "", fmt.Errorf("%s: %w", op, err)
	}

	return signed, nil
}

// parseToken валидирует токен секретом ожидаемого вида.
// Таксономия отказов сохраняется: истёкший токен — ErrTokenExpired,
// битая подпись/формат/чужой вид — ErrInvalidToken.
func (s *Service) parseToken(tokenStr string, kind tokenKind) (*tokenClaims, error) {
	const op = "service.token.parseToken"

	secret, _ := s.secretFor(kind)

	token, err := jwt.ParseWithClaims(tokenStr, &tokenClaims{},
		func(t *jwt.Token) (interface{}, error) {
			if t.Method != jwt.SigningMethodHS256 {
				return nil, fmt.Errorf("%s: %w", op, ErrInvalidToken)
			}

			return secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithLeeway(5*time.Second),
		jwt.WithIssuer(s.cfg.Issuer),
	)

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, fmt.Errorf("%s: %w", op, ErrTokenExpired)
		}

		return nil, fmt.Errorf("%s: %w", op, ErrInvalidToken)
	}

	claims, ok := token.Claims.(*tokenClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidToken)
	}

	if claims.Kind != string(kind) {
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidToken)
	}

	return claims, nil
}

// subjectID извлекает идентификатор пользователя из claims.
func subjectID(claims *tokenClaims) (uuid.UUID, error) {
	const op = "service.token.subjectID"

	if claims.Subject == "" {
		return uuid.Nil, fmt.Errorf("%s: %w", op, ErrInvalidToken)
	}

	uid, err := uuid.Parse(claims.Subject)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%s: %w", op, ErrInvalidToken)
	}

	return uid, nil
}

// remainingTTL возвращает остаточный срок жизни токена по его claims.
func remainingTTL(claims *tokenClaims, now time.Time) time.Duration {
	if claims.ExpiresAt == nil {
		return 0
	}

	return claims.ExpiresAt.Time.Sub(now)
}

// issueTokenPair выпускает новую пару access+refresh токенов.
func (s *Service) issueTokenPair(userID uuid.UUID) (*models.TokenPair, error) {
	const op = "service.token.issueTokenPair"

	now := time.Now().UTC()

	accessToken, err := s.generateToken(userID, kindAccess, now)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	refreshToken, err := s.generateToken(userID, kindRefresh, now)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &models.TokenPair{
		AccessToken:     accessToken,
		RefreshToken:    refreshToken,
		AccessExpiresAt: now.Add(s.cfg.AccessTokenTTL),
	}, nil
}
