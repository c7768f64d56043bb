package service

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/pribylovaa/go-account-service/internal/config"
)

// testAuthCfg — конфигурация токенов для unit-тестов.
// Секреты access и refresh намеренно различаются: часть тестов
// проверяет, что токены не взаимозаменяемы.
func testAuthCfg() config.AuthConfig {
	return config.AuthConfig{
		AccessSecret:     "unit-access-secret",
		RefreshSecret:    "unit-refresh-secret",
		AccessTokenTTL:   time.Minute,
		RefreshTokenTTL:  time.Hour,
		RefreshCookieTTL: 24 * time.Hour,
		Issuer:           "account-service-test",
	}
}

// TestGenerateAndParseToken_OK — выпущенный токен проходит проверку
// своим же видом и несёт ожидаемый subject.
func TestGenerateAndParseToken_OK(t *testing.T) {
	t.Parallel()

	svc := New(nil, nil, testAuthCfg())
	uid := uuid.New()
	now := time.Now().UTC()

	for _, kind := range []tokenKind{kindAccess, kindRefresh} {
		token, err := svc.generateToken(uid, kind, now)
		require.NoError(t, err)
		require.NotEmpty(t, token)

		claims, err := svc.parseToken(token, kind)
		require.NoError(t, err)
		require.Equal(t, string(kind), claims.Kind)

		got, err := subjectID(claims)
		require.NoError(t, err)
		require.Equal(t, uid, got)
	}
}

// TestParseToken_KindMismatch — access-токен не принимается как refresh
// и наоборот: секреты и claim type у видов различны.
func TestParseToken_KindMismatch(t *testing.T) {
	t.Parallel()

	svc := New(nil, nil, testAuthCfg())
	uid := uuid.New()
	now := time.Now().UTC()

	access, err := svc.generateToken(uid, kindAccess, now)
	require.NoError(t, err)

	refresh, err := svc.generateToken(uid, kindRefresh, now)
	require.NoError(t, err)

	_, err = svc.parseToken(access, kindRefresh)
	require.ErrorIs(t, err, ErrInvalidToken)

	_, err = svc.parseToken(refresh, kindAccess)
	require.ErrorIs(t, err, ErrInvalidToken)
}

// TestParseToken_Expired — истёкший токен даёт именно ErrTokenExpired,
// а не общий ErrInvalidToken.
func TestParseToken_Expired(t *testing.T) {
	t.Parallel()

	svc := New(nil, nil, testAuthCfg())
	uid := uuid.New()

	// iat в прошлом настолько, что exp за пределами leeway.
	token, err := svc.generateToken(uid, kindAccess, time.Now().UTC().Add(-2*time.Hour))
	require.NoError(t, err)

	_, err = svc.parseToken(token, kindAccess)
	require.ErrorIs(t, err, ErrTokenExpired)
	require.NotErrorIs(t, err, ErrInvalidToken)
}

// TestParseToken_Tampered — порча подписи или тела делает токен невалидным.
func TestParseToken_Tampered(t *testing.T) {
	t.Parallel()

	svc := New(nil, nil, testAuthCfg())

	token, err := svc.generateToken(uuid.New(), kindAccess, time.Now().UTC())
	require.NoError(t, err)

	tampered := token[:len(token)-2] + "xx"

	_, err = svc.parseToken(tampered, kindAccess)
	require.ErrorIs(t, err, ErrInvalidToken)
}

// TestParseToken_WrongIssuer — токен чужого издателя отклоняется.
func TestParseToken_WrongIssuer(t *testing.T) {
	t.Parallel()

	cfg := testAuthCfg()
	svc := New(nil, nil, cfg)

	otherCfg := cfg
	otherCfg.Issuer = "another-service"
	other := New(nil, nil, otherCfg)

	token, err := other.generateToken(uuid.New(), kindAccess, time.Now().UTC())
	require.NoError(t, err)

	_, err = svc.parseToken(token, kindAccess)
	require.ErrorIs(t, err, ErrInvalidToken)
}

// TestParseToken_Garbage — строка, не являющаяся JWT, невалидна.
func TestParseToken_Garbage(t *testing.T) {
	t.Parallel()

	svc := New(nil, nil, testAuthCfg())

	for _, raw := range []string{"", "not-a-token", "a.b.c"} {
		_, err := svc.parseToken(raw, kindRefresh)
		require.ErrorIs(t, err, ErrInvalidToken)
	}
}

// TestIssueTokenPair — пара содержит оба токена и срок жизни access.
func TestIssueTokenPair(t *testing.T) {
	t.Parallel()

	cfg := testAuthCfg()
	svc := New(nil, nil, cfg)
	uid := uuid.New()

	pair, err := svc.issueTokenPair(uid)
	require.NoError(t, err)
	require.NotEmpty(t, pair.AccessToken)
	require.NotEmpty(t, pair.RefreshToken)
	require.WithinDuration(t, time.Now().UTC().Add(cfg.AccessTokenTTL), pair.AccessExpiresAt, 5*time.Second)

	// Оба токена валидны каждый своим видом.
	_, err = svc.parseToken(pair.AccessToken, kindAccess)
	require.NoError(t, err)

	_, err = svc.parseToken(pair.RefreshToken, kindRefresh)
	require.NoError(t, err)
}

// TestRemainingTTL — остаток срока считается от exp и не бывает ниже нуля
// только у истёкших токенов (отрицательный остаток допустим — его
// интерпретирует чёрный список).
func TestRemainingTTL(t *testing.T) {
	t.Parallel()

	svc := New(nil, nil, testAuthCfg())
	now := time.Now().UTC()

	token, err := svc.generateToken(uuid.New(), kindRefresh, now)
	require.NoError(t, err)

	claims, err := svc.parseToken(token, kindRefresh)
	require.NoError(t, err)

	ttl := remainingTTL(claims, now)
	require.InDelta(t, time.Hour.Seconds(), ttl.Seconds(), 2)

	require.Negative(t, remainingTTL(claims, now.Add(2*time.Hour)))
}
