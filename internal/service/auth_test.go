package service

import (
	"context"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/pribylovaa/go-account-service/internal/models"
	"github.com/pribylovaa/go-account-service/internal/storage"
	"github.com/pribylovaa/go-account-service/mocks"
)

// newTestService собирает Service на моках хранилища и чёрного списка.
func newTestService(t *testing.T) (*Service, *mocks.MockStorage, *mocks.MockLedger) {
	t.Helper()

	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)

	st := mocks.NewMockStorage(ctrl)
	ledger := mocks.NewMockLedger(ctrl)

	return New(st, ledger, testAuthCfg()), st, ledger
}

const validPassword = "Str0ng#pass"

func TestRegisterUser_OK(t *testing.T) {
	t.Parallel()

	svc, st, _ := newTestService(t)
	ctx := context.Background()

	st.EXPECT().UserByEmail(gomock.Any(), "user@example.com").
		Return(nil, storage.ErrNotFound)
	st.EXPECT().SaveUser(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, u *models.User) error {
			require.Equal(t, "user@example.com", u.Email)
			require.NotEmpty(t, u.PasswordHash)
			require.True(t, u.IsActive)
			require.False(t, u.IsVerified)
			require.Equal(t, models.ProviderLocal, u.AuthProvider)
			return nil
		})

	// E-mail нормализуется к нижнему регистру до сохранения.
	user, pair, err := svc.RegisterUser(ctx, "  User@Example.com ", validPassword)
	require.NoError(t, err)
	require.Equal(t, "user@example.com", user.Email)
	require.NotEmpty(t, pair.AccessToken)
	require.NotEmpty(t, pair.RefreshToken)

	// Пароль в хэше, а не в открытом виде.
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(validPassword)))
}

func TestRegisterUser_EmailTaken(t *testing.T) {
	t.Parallel()

	svc, st, _ := newTestService(t)

	st.EXPECT().UserByEmail(gomock.Any(), "taken@example.com").
		Return(&models.User{ID: uuid.New(), Email: "taken@example.com"}, nil)

	_, _, err := svc.RegisterUser(context.Background(), "taken@example.com", validPassword)
	require.ErrorIs(t, err, ErrEmailTaken)
}

// Гонка двух одновременных регистраций: проигравший получает
// ErrAlreadyExists от хранилища и тот же ErrEmailTaken наружу.
func TestRegisterUser_RaceLoser(t *testing.T) {
	t.Parallel()

	svc, st, _ := newTestService(t)

	st.EXPECT().UserByEmail(gomock.Any(), "race@example.com").
		Return(nil, storage.ErrNotFound)
	st.EXPECT().SaveUser(gomock.Any(), gomock.Any()).
		Return(storage.ErrAlreadyExists)

	_, _, err := svc.RegisterUser(context.Background(), "race@example.com", validPassword)
	require.ErrorIs(t, err, ErrEmailTaken)
}

func TestRegisterUser_Validation(t *testing.T) {
	t.Parallel()

	// Невалидный вход отсекается до обращения к хранилищу.
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	cases := []struct {
		name     string
		email    string
		password string
		wantErr  error
	}{
		{"invalid email", "not-an-email", validPassword, ErrInvalidEmail},
		{"empty email", "", validPassword, ErrInvalidEmail},
		{"empty password", "user@example.com", "", ErrEmptyPassword},
		{"short password", "user@example.com", "S1#a", ErrWeakPassword},
		{"no digit", "user@example.com", "Strong#pass", ErrWeakPassword},
		{"no upper", "user@example.com", "str0ng#pass", ErrWeakPassword},
		{"no special", "user@example.com", "Str0ngpass", ErrWeakPassword},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			_, _, err := svc.RegisterUser(ctx, tc.email, tc.password)
			require.ErrorIs(t, err, tc.wantErr)
		})
	}
}

func TestLoginUser_OK(t *testing.T) {
	t.Parallel()

	svc, st, _ := newTestService(t)

	hash, err := bcrypt.GenerateFromPassword([]byte(validPassword), bcrypt.MinCost)
	require.NoError(t, err)

	uid := uuid.New()
	st.EXPECT().UserByEmail(gomock.Any(), "user@example.com").
		Return(&models.User{
			ID:           uid,
			Email:        "user@example.com",
			PasswordHash: string(hash),
			IsActive:     true,
			AuthProvider: models.ProviderLocal,
		}, nil)

	user, pair, err := svc.LoginUser(context.Background(), "user@example.com", validPassword)
	require.NoError(t, err)
	require.Equal(t, uid, user.ID)
	require.NotEmpty(t, pair.AccessToken)
	require.NotEmpty(t, pair.RefreshToken)
}

func TestLoginUser_WrongPassword(t *testing.T) {
	t.Parallel()

	svc, st, _ := newTestService(t)

	hash, err := bcrypt.GenerateFromPassword([]byte(validPassword), bcrypt.MinCost)
	require.NoError(t, err)

	st.EXPECT().UserByEmail(gomock.Any(), "user@example.com").
		Return(&models.User{ID: uuid.New(), PasswordHash: string(hash)}, nil)

	_, _, err = svc.LoginUser(context.Background(), "user@example.com", "Wr0ng#pass")
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

// Неизвестный пользователь и неверный пароль неразличимы снаружи.
func TestLoginUser_UnknownUser(t *testing.T) {
	t.Parallel()

	svc, st, _ := newTestService(t)

	st.EXPECT().UserByEmail(gomock.Any(), "ghost@example.com").
		Return(nil, storage.ErrNotFound)

	_, _, err := svc.LoginUser(context.Background(), "ghost@example.com", validPassword)
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

// Провайдерная учётная запись без пароля не пускается через локальный вход.
func TestLoginUser_ProviderAccountWithoutPassword(t *testing.T) {
	t.Parallel()

	svc, st, _ := newTestService(t)

	st.EXPECT().UserByEmail(gomock.Any(), "oauth@example.com").
		Return(&models.User{
			ID:           uuid.New(),
			Email:        "oauth@example.com",
			PasswordHash: "",
			AuthProvider: models.ProviderGoogle,
		}, nil)

	_, _, err := svc.LoginUser(context.Background(), "oauth@example.com", validPassword)
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestRefreshTokens_OKAndRotation(t *testing.T) {
	t.Parallel()

	svc, st, ledger := newTestService(t)
	uid := uuid.New()

	// refresh выпускается в прошлом, чтобы новая пара отличалась по iat.
	refresh, err := svc.generateToken(uid, kindRefresh, time.Now().UTC().Add(-time.Minute))
	require.NoError(t, err)

	ledger.EXPECT().IsActive(gomock.Any(), refresh).Return(true, nil)
	st.EXPECT().UserByID(gomock.Any(), uid).
		Return(&models.User{ID: uid, IsActive: true}, nil)
	// Ротация отзывает предъявленный токен на остаток срока.
	ledger.EXPECT().Blacklist(gomock.Any(), refresh, gomock.Any()).
		DoAndReturn(func(_ context.Context, _ string, ttl time.Duration) error {
			require.Greater(t, ttl, time.Duration(0))
			return nil
		})

	pair, err := svc.RefreshTokens(context.Background(), refresh)
	require.NoError(t, err)
	require.NotEmpty(t, pair.AccessToken)
	require.NotEqual(t, refresh, pair.RefreshToken)
}

func TestRefreshTokens_Revoked(t *testing.T) {
	t.Parallel()

	svc, _, ledger := newTestService(t)
	uid := uuid.New()

	refresh, err := svc.generateToken(uid, kindRefresh, time.Now().UTC())
	require.NoError(t, err)

	ledger.EXPECT().IsActive(gomock.Any(), refresh).Return(false, nil)

	_, err = svc.RefreshTokens(context.Background(), refresh)
	require.ErrorIs(t, err, ErrTokenRevoked)
}

func TestRefreshTokens_InvalidToken(t *testing.T) {
	t.Parallel()

	// Битый токен отсекается до обращения к чёрному списку и хранилищу.
	svc, _, _ := newTestService(t)

	_, err := svc.RefreshTokens(context.Background(), "")
	require.ErrorIs(t, err, ErrInvalidToken)

	_, err = svc.RefreshTokens(context.Background(), "garbage")
	require.ErrorIs(t, err, ErrInvalidToken)
}

// Access-токен не принимается эндпоинтом обновления.
func TestRefreshTokens_AccessTokenRejected(t *testing.T) {
	t.Parallel()

	svc, _, _ := newTestService(t)

	access, err := svc.generateToken(uuid.New(), kindAccess, time.Now().UTC())
	require.NoError(t, err)

	_, err = svc.RefreshTokens(context.Background(), access)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestRefreshTokens_DeactivatedUser(t *testing.T) {
	t.Parallel()

	svc, st, ledger := newTestService(t)
	uid := uuid.New()

	refresh, err := svc.generateToken(uid, kindRefresh, time.Now().UTC())
	require.NoError(t, err)

	ledger.EXPECT().IsActive(gomock.Any(), refresh).Return(true, nil)
	st.EXPECT().UserByID(gomock.Any(), uid).
		Return(&models.User{ID: uid, IsActive: false}, nil)

	_, err = svc.RefreshTokens(context.Background(), refresh)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestLogout_RevokesToken(t *testing.T) {
	t.Parallel()

	svc, _, ledger := newTestService(t)

	refresh, err := svc.generateToken(uuid.New(), kindRefresh, time.Now().UTC())
	require.NoError(t, err)

	ledger.EXPECT().Blacklist(gomock.Any(), refresh, gomock.Any()).Return(nil)

	require.NoError(t, svc.Logout(context.Background(), refresh))
}

// Отсутствующий или нечитаемый токен — не ошибка logout:
// чёрный список не трогается.
func TestLogout_UnparseableToken(t *testing.T) {
	t.Parallel()

	svc, _, _ := newTestService(t)

	require.NoError(t, svc.Logout(context.Background(), ""))
	require.NoError(t, svc.Logout(context.Background(), "garbage"))
}

func TestCurrentUser_OK(t *testing.T) {
	t.Parallel()

	svc, st, _ := newTestService(t)
	uid := uuid.New()

	access, err := svc.generateToken(uid, kindAccess, time.Now().UTC())
	require.NoError(t, err)

	st.EXPECT().UserByID(gomock.Any(), uid).
		Return(&models.User{ID: uid, Email: "user@example.com", IsActive: true}, nil)

	user, err := svc.CurrentUser(context.Background(), access)
	require.NoError(t, err)
	require.Equal(t, uid, user.ID)
}

// Токен валиден, но пользователь исчез — снаружи это невалидный токен.
func TestCurrentUser_UserGone(t *testing.T) {
	t.Parallel()

	svc, st, _ := newTestService(t)
	uid := uuid.New()

	access, err := svc.generateToken(uid, kindAccess, time.Now().UTC())
	require.NoError(t, err)

	st.EXPECT().UserByID(gomock.Any(), uid).Return(nil, storage.ErrNotFound)

	_, err = svc.CurrentUser(context.Background(), access)
	require.ErrorIs(t, err, ErrInvalidToken)
}

// Refresh-токен не даёт доступа к защищённым ресурсам.
func TestCurrentUser_RefreshTokenRejected(t *testing.T) {
	t.Parallel()

	svc, _, _ := newTestService(t)

	refresh, err := svc.generateToken(uuid.New(), kindRefresh, time.Now().UTC())
	require.NoError(t, err)

	_, err = svc.CurrentUser(context.Background(), refresh)
	require.ErrorIs(t, err, ErrInvalidToken)
}
