// config предоставляет структуру конфигурации сервиса и функции
// загрузки из файла/переменных окружения с предсказуемым приоритетом.
package config

import (
	"fmt"
	"net"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config — корневая конфигурация сервиса.
// Источники значений (по убыванию приоритета):
//  1. явный путь через флаг --config;
//  2. путь в переменной окружения CONFIG_PATH;
//  3. файл local.yaml из рабочей директории;
//  4. переменные окружения (cleanenv).
type Config struct {
	Env      string         `yaml:"env" env:"ENV" env-default:"local"`
	HTTP     HTTPConfig     `yaml:"http"`
	Auth     AuthConfig     `yaml:"auth"`
	DB       DBConfig       `yaml:"db"`
	Redis    RedisConfig    `yaml:"redis"`
	Google   GoogleConfig   `yaml:"google"`
	Frontend FrontendConfig `yaml:"frontend"`
	Timeouts TimeoutConfig  `yaml:"timeouts"`
}

// TimeoutConfig — таймауты сервиса.
type TimeoutConfig struct {
	Service time.Duration `yaml:"service" env:"SERVICE_TIMEOUT" env-default:"5s"`
}

// HTTPConfig — сетевые настройки HTTP-сервера.
type HTTPConfig struct {
	Host string `yaml:"host" env:"HTTP_HOST" env-default:"0.0.0.0"`
	Port string `yaml:"port" env:"HTTP_PORT" env-default:"8080"`
}

// Addr возвращает адрес в формате host:port.
func (h HTTPConfig) Addr() string {
	return net.JoinHostPort(h.Host, h.Port)
}

// AuthConfig содержит параметры выпуска и валидации токенов.
//
// Секреты access- и refresh-токенов обязаны быть различными: подпись
// одного вида токена не должна приниматься при проверке другого.
// TTL access и refresh настраиваются независимо; RefreshCookieTTL задаёт
// срок жизни cookie с refresh-токеном и может превышать RefreshTokenTTL.
type AuthConfig struct {
	AccessSecret     string        `yaml:"access_secret" env:"ACCESS_SECRET_KEY" env-required:"true"`
	RefreshSecret    string        `yaml:"refresh_secret" env:"REFRESH_SECRET_KEY" env-required:"true"`
	AccessTokenTTL   time.Duration `yaml:"access_token_ttl" env:"ACCESS_TOKEN_TTL" env-default:"30m"`
	RefreshTokenTTL  time.Duration `yaml:"refresh_token_ttl" env:"REFRESH_TOKEN_TTL" env-default:"168h"`
	RefreshCookieTTL time.Duration `yaml:"refresh_cookie_ttl" env:"REFRESH_COOKIE_TTL" env-default:"1440h"`
	Issuer           string        `yaml:"issuer" env:"ISSUER" env-default:"account-service"`
}

// DBConfig — настройки подключения к базе данных.
type DBConfig struct {
	DatabaseURL string `yaml:"db_url" env:"DATABASE_URL" env-required:"true"`
}

// RedisConfig — настройки подключения к Redis (чёрный список refresh-токенов).
type RedisConfig struct {
	RedisURL string `yaml:"redis_url" env:"REDIS_URL" env-required:"true"`
}

// GoogleConfig — параметры OAuth-провайдера Google.
//
// Эндпоинты вынесены в конфигурацию, чтобы тесты могли подменить их
// на локальный сервер; значения по умолчанию — боевые адреса Google.
type GoogleConfig struct {
	ClientID          string        `yaml:"client_id" env:"GOOGLE_CLIENT_ID" env-default:""`
	ClientSecret      string        `yaml:"client_secret" env:"GOOGLE_CLIENT_SECRET" env-default:""`
	RedirectURI       string        `yaml:"redirect_uri" env:"GOOGLE_REDIRECT_URI" env-default:""`
	StateSecret       string        `yaml:"state_secret" env:"OAUTH_STATE_SECRET" env-default:""`
	AuthEndpoint      string        `yaml:"auth_endpoint" env:"GOOGLE_AUTH_ENDPOINT" env-default:"https://accounts.google.com/o/oauth2/v2/auth"`
	TokenEndpoint     string        `yaml:"token_endpoint" env:"GOOGLE_TOKEN_ENDPOINT" env-default:"https://oauth2.googleapis.com/token"`
	TokenInfoEndpoint string        `yaml:"tokeninfo_endpoint" env:"GOOGLE_TOKENINFO_ENDPOINT" env-default:"https://www.googleapis.com/oauth2/v3/tokeninfo"`
	Timeout           time.Duration `yaml:"timeout" env:"GOOGLE_TIMEOUT" env-default:"10s"`
}

// FrontendConfig — адреса фронтенда по окружениям.
// Используются в OAuth-callback для редиректа браузера обратно на фронт.
type FrontendConfig struct {
	LocalURL   string `yaml:"local_url" env:"LOCAL_FRONTEND_URL" env-default:"http://localhost:3000"`
	StagingURL string `yaml:"staging_url" env:"STAGING_FRONTEND_URL" env-default:""`
	ProdURL    string `yaml:"prod_url" env:"PROD_FRONTEND_URL" env-default:""`
}

// URLFor возвращает адрес фронтенда для окружения ("local"/"staging"/"prod").
// Незаполненный или неизвестный вариант откатывается на LocalURL, чтобы
// редирект всегда имел валидную цель.
func (f FrontendConfig) URLFor(env string) string {
	var u string

	switch env {
	case "local":
		u = f.LocalURL
	case "staging":
		u = f.StagingURL
	case "prod":
		u = f.ProdURL
	}

	if u == "" {
		return f.LocalURL
	}

	return u
}

// MustLoad — обёртка над Load с panic при ошибке.
func MustLoad(path string) *Config {
	cfg, err := Load(path)
	if err != nil {
		panic(err)
	}

	return cfg
}

// Load загружает конфигурацию по приоритету:
// 1) явный путь; 2) CONFIG_PATH; 3) ./local.yaml; 4) ENV.
// ВАЖНО: после чтения файла накладываем ENV-переменные поверх значений из YAML.
func Load(path string) (*Config, error) {
	var cfg Config

	// чтение файла + overlay ENV.
	tryRead := func(p string) (*Config, error) {
		if p == "" {
			return nil, fmt.Errorf("empty config path")
		}

		if _, err := os.Stat(p); err != nil {
			return nil, fmt.Errorf("config file %q stat failed: %w", p, err)
		}

		if err := cleanenv.ReadConfig(p, &cfg); err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}

		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, fmt.Errorf("failed to overlay env: %w", err)
		}

		return &cfg, nil
	}

	// 1) Явный путь.
	if path != "" {
		return tryRead(path)
	}

	// 2) CONFIG_PATH.
	if envPath := os.Getenv("CONFIG_PATH"); envPath != "" {
		return tryRead(envPath)
	}

	// 3) ./local.yaml.
	if _, err := os.Stat("local.yaml"); err == nil {
		return tryRead("local.yaml")
	}

	// 4) Только ENV.
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("config not found: provide --config, CONFIG_PATH, local.yaml or env vars: %w", err)
	}

	return &cfg, nil
}
