// blacklist — чёрный список refresh-токенов поверх Redis.
//
// Отозванный токен записывается с TTL, равным его остаточному сроку жизни:
// после естественного истечения подпись токена всё равно не пройдёт проверку,
// поэтому записи самоуничтожаются и список не растёт бесконечно.
// Повторный отзыв того же токена безвреден (запись просто перезаписывается).
package blacklist

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// Ledger — минимальный контракт чёрного списка refresh-токенов.
type Ledger interface {
	// Blacklist записывает токен как отозванный на срок ttl.
	Blacklist(ctx context.Context, token string, ttl time.Duration) error
	// IsActive возвращает true, если токен не отозван.
	IsActive(ctx context.Context, token string) (bool, error)
	// Close закрывает клиент Redis.
	Close() error
}

type redisLedger struct {
	rdb    *redis.Client
	prefix string
}

// NewRedisLedger создаёт клиент Redis из URL (например, redis://:pass@host:6379/0).
// Если prefix пустой — используется "blacklisted_token:".
func NewRedisLedger(redisURL, prefix string) (Ledger, error) {
	if prefix == "" {
		prefix = "blacklisted_token:"
	}

	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}

	rdb := redis.NewClient(opt)

	// Fail-fast на старте.
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		return nil, err
	}

	return &redisLedger{rdb: rdb, prefix: prefix}, nil
}

func (l *redisLedger) key(token string) string { return l.prefix + token }

func (l *redisLedger) Blacklist(ctx context.Context, token string, ttl time.Duration) error {
	if ttl <= 0 {
		// Токен уже истёк — подпись не пройдёт проверку, запись не нужна.
		return nil
	}

	return l.rdb.Set(ctx, l.key(token), "blacklisted", ttl).Err()
}

func (l *redisLedger) IsActive(ctx context.Context, token string) (bool, error) {
	n, err := l.rdb.Exists(ctx, l.key(token)).Result()
	if err != nil {
		return false, err
	}

	return n == 0, nil
}

func (l *redisLedger) Close() error { return l.rdb.Close() }
