package blacklist

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// Интеграционные тесты чёрного списка поверх реального Redis
// (testcontainers-go, образ redis:7-alpine).
//
// Запуск локально:
//   GO_TEST_INTEGRATION=1 go test ./internal/blacklist -v -race -count=1

// startRedis поднимает временный Redis и возвращает Ledger с функцией очистки.
// Без GO_TEST_INTEGRATION тест пропускается.
func startRedis(t *testing.T) (Ledger, func()) {
	t.Helper()
	if os.Getenv("GO_TEST_INTEGRATION") == "" {
		t.Skip("integration tests are disabled (set GO_TEST_INTEGRATION=1)")
	}

	ctx := context.Background()
	req := tc.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForListeningPort("6379/tcp").WithStartupTimeout(60 * time.Second),
	}
	c, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{ContainerRequest: req, Started: true})
	require.NoError(t, err)

	host, _ := c.Host(ctx)
	port, _ := c.MappedPort(ctx, "6379/tcp")

	ledger, err := NewRedisLedger(fmt.Sprintf("redis://%s:%s/0", host, port.Port()), "")
	require.NoError(t, err)

	cleanup := func() {
		_ = ledger.Close()
		_ = c.Terminate(context.Background())
	}
	return ledger, cleanup
}

// Токен активен, пока не отозван; после отзыва — неактивен.
func TestIntegration_BlacklistAndIsActive(t *testing.T) {
	ledger, cleanup := startRedis(t)
	defer cleanup()

	ctx := context.Background()

	active, err := ledger.IsActive(ctx, "token-1")
	require.NoError(t, err)
	require.True(t, active)

	require.NoError(t, ledger.Blacklist(ctx, "token-1", time.Minute))

	active, err = ledger.IsActive(ctx, "token-1")
	require.NoError(t, err)
	require.False(t, active)

	// Другие токены не затрагиваются.
	active, err = ledger.IsActive(ctx, "token-2")
	require.NoError(t, err)
	require.True(t, active)
}

// Запись самоуничтожается после истечения TTL.
func TestIntegration_Blacklist_EntryExpires(t *testing.T) {
	ledger, cleanup := startRedis(t)
	defer cleanup()

	ctx := context.Background()

	require.NoError(t, ledger.Blacklist(ctx, "short-lived", time.Second))

	active, err := ledger.IsActive(ctx, "short-lived")
	require.NoError(t, err)
	require.False(t, active)

	require.Eventually(t, func() bool {
		active, err := ledger.IsActive(ctx, "short-lived")
		return err == nil && active
	}, 5*time.Second, 200*time.Millisecond)
}

// Неположительный TTL — no-op: истёкший токен и так не пройдёт проверку подписи.
func TestIntegration_Blacklist_NonPositiveTTL(t *testing.T) {
	ledger, cleanup := startRedis(t)
	defer cleanup()

	ctx := context.Background()

	require.NoError(t, ledger.Blacklist(ctx, "expired-token", 0))
	require.NoError(t, ledger.Blacklist(ctx, "expired-token", -time.Minute))

	active, err := ledger.IsActive(ctx, "expired-token")
	require.NoError(t, err)
	require.True(t, active)
}

// Повторный отзыв того же токена безвреден.
func TestIntegration_Blacklist_Idempotent(t *testing.T) {
	ledger, cleanup := startRedis(t)
	defer cleanup()

	ctx := context.Background()

	require.NoError(t, ledger.Blacklist(ctx, "twice", time.Minute))
	require.NoError(t, ledger.Blacklist(ctx, "twice", time.Minute))

	active, err := ledger.IsActive(ctx, "twice")
	require.NoError(t, err)
	require.False(t, active)
}

func TestNewRedisLedger_BadURL(t *testing.T) {
	t.Parallel()

	_, err := NewRedisLedger("not-a-url", "")
	require.Error(t, err)
}
