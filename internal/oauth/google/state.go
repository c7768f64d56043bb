package google

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
)

// ErrBadState — параметр state отсутствует, подделан или ссылается
// на неизвестное окружение.
var ErrBadState = errors.New("invalid oauth state")

// Environment — окружение фронтенда, в которое вернётся браузер
// после OAuth-callback.
type Environment string

const (
	EnvLocal   Environment = "local"
	EnvStaging Environment = "staging"
	EnvProd    Environment = "prod"
)

// ParseEnvironment валидирует строковое значение окружения.
func ParseEnvironment(s string) (Environment, error) {
	switch Environment(s) {
	case EnvLocal, EnvStaging, EnvProd:
		return Environment(s), nil
	default:
		return "", fmt.Errorf("%w: unknown environment %q", ErrBadState, s)
	}
}

// State — структурированное содержимое OAuth-параметра state.
//
// Кодируется как "nonce.env.sig", где sig — HMAC-SHA256 от "nonce.env".
// Явный enum окружения вместо подстрочного поиска исключает неоднозначные
// совпадения (например, "local" внутри другого значения), а подпись не даёт
// подменить окружение на обратном пути через браузер.
type State struct {
	Nonce string
	Env   Environment
}

// NewState выпускает подписанный state для данного окружения.
func (c *Client) NewState(env Environment) (string, error) {
	const op = "oauth.google.NewState"

	if _, err := ParseEnvironment(string(env)); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	var b [16]byte
	if _, err := rand.Read(b[:]); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	nonce := base64.RawURLEncoding.EncodeToString(b[:])

	return nonce + "." + string(env) + "." + c.sign(nonce, env), nil
}

// ParseState проверяет подпись state и возвращает его содержимое.
func (c *Client) ParseState(raw string) (State, error) {
	const op = "oauth.google.ParseState"

	parts := strings.Split(raw, ".")
	if len(parts) != 3 {
		return State{}, fmt.Errorf("%s: %w", op, ErrBadState)
	}

	nonce, envStr, sig := parts[0], parts[1], parts[2]

	env, err := ParseEnvironment(envStr)
	if err != nil {
		return State{}, fmt.Errorf("%s: %w", op, err)
	}

	if !hmac.Equal([]byte(sig), []byte(c.sign(nonce, env))) {
		return State{}, fmt.Errorf("%s: %w", op, ErrBadState)
	}

	return State{Nonce: nonce, Env: env}, nil
}

func (c *Client) sign(nonce string, env Environment) string {
	mac := hmac.New(sha256.New, []byte(c.cfg.StateSecret))
	mac.Write([]byte(nonce + "." + string(env)))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}
