package auth_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	gojwt "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/magabrotheeeer/user-service/internal/lib/apperr"
	"github.com/magabrotheeeer/user-service/internal/lib/jwt"
	"github.com/magabrotheeeer/user-service/internal/lib/password"
	"github.com/magabrotheeeer/user-service/internal/metrics"
	"github.com/magabrotheeeer/user-service/internal/models"
	"github.com/magabrotheeeer/user-service/internal/services/auth"
	usersvc "github.com/magabrotheeeer/user-service/internal/services/users"
	"github.com/magabrotheeeer/user-service/internal/storage/inmemory"
)

// Мок для UserService
type UserServiceMock struct {
	mock.Mock
}

func (m *UserServiceMock) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	args := m.Called(ctx, email, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *UserServiceMock) GetStoredByID(ctx context.Context, id string) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

// Мок для jwt.Maker
type JwtMakerMock struct {
	mock.Mock
}

func (m *JwtMakerMock) GenerateToken(subject string) (string, error) {
	args := m.Called(subject)
	return args.String(0), args.Error(1)
}

func (m *JwtMakerMock) ParseToken(token string) (*jwt.Claims, error) {
	args := m.Called(token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*jwt.Claims), args.Error(1)
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

func newMaker(t *testing.T) *jwt.MakerImpl {
	t.Helper()
	m, err := jwt.NewJWTMaker("test-secret", "HS256", 15*time.Minute)
	require.NoError(t, err)
	return m
}

func TestService_Login(t *testing.T) {
	alice := &models.User{ID: "u-alice", Email: "alice@example.com", IsActive: true}

	tests := []struct {
		name       string
		setupMocks func(u *UserServiceMock)
		wantErr    error
	}{
		{
			name: "success issues token for user id",
			setupMocks: func(u *UserServiceMock) {
				u.On("Authenticate", mock.Anything, "alice@example.com", "password123").Return(alice, nil).Once()
			},
		},
		{
			name: "bad credentials",
			setupMocks: func(u *UserServiceMock) {
				u.On("Authenticate", mock.Anything, "alice@example.com", "password123").
					Return(nil, fmt.Errorf("users.Authenticate: %w", apperr.ErrUnauthenticated)).Once()
			},
			wantErr: apperr.ErrUnauthenticated,
		},
		{
			name: "inactive account",
			setupMocks: func(u *UserServiceMock) {
				u.On("Authenticate", mock.Anything, "alice@example.com", "password123").
					Return(nil, apperr.ErrInactiveAccount).Once()
			},
			wantErr: apperr.ErrInactiveAccount,
		},
		{
			name: "store unavailable",
			setupMocks: func(u *UserServiceMock) {
				u.On("Authenticate", mock.Anything, "alice@example.com", "password123").
					Return(nil, apperr.ErrUnavailable).Once()
			},
			wantErr: apperr.ErrUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			users := new(UserServiceMock)
			tt.setupMocks(users)
			maker := newMaker(t)
			svc := auth.NewAuthService(users, maker, metrics.New(), newNoopLogger())

			token, err := svc.Login(context.Background(), "alice@example.com", "password123")
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Empty(t, token)
			} else {
				require.NoError(t, err)
				claims, err := maker.ParseToken(token)
				require.NoError(t, err)
				assert.Equal(t, "u-alice", claims.Subject)
			}
			users.AssertExpectations(t)
		})
	}
}

func TestService_Login_TokenError(t *testing.T) {
	users := new(UserServiceMock)
	users.On("Authenticate", mock.Anything, "a@example.com", "pw").
		Return(&models.User{ID: "u-1", IsActive: true}, nil).Once()
	maker := new(JwtMakerMock)
	maker.On("GenerateToken", "u-1").Return("", errors.New("sign failed")).Once()

	svc := auth.NewAuthService(users, maker, nil, newNoopLogger())

	_, err := svc.Login(context.Background(), "a@example.com", "pw")
	assert.Error(t, err)
	maker.AssertExpectations(t)
}

func TestService_Resolve(t *testing.T) {
	maker := newMaker(t)
	valid, err := maker.GenerateToken("u-1")
	require.NoError(t, err)
	expired, err := maker.GenerateTokenWithTTL("u-1", -time.Minute)
	require.NoError(t, err)
	unknown, err := maker.GenerateToken("u-ghost")
	require.NoError(t, err)
	down, err := maker.GenerateToken("u-down")
	require.NoError(t, err)
	noSub, err := gojwt.NewWithClaims(gojwt.SigningMethodHS256, gojwt.RegisteredClaims{
		ExpiresAt: gojwt.NewNumericDate(time.Now().Add(time.Hour)),
	}).SignedString([]byte("test-secret"))
	require.NoError(t, err)

	inactive := &models.User{ID: "u-1", IsActive: false}

	users := new(UserServiceMock)
	users.On("GetStoredByID", mock.Anything, "u-1").Return(inactive, nil)
	users.On("GetStoredByID", mock.Anything, "u-ghost").Return(nil, fmt.Errorf("storage: %w", apperr.ErrNotFound))
	users.On("GetStoredByID", mock.Anything, "u-down").Return(nil, fmt.Errorf("storage: %w", apperr.ErrUnavailable))

	svc := auth.NewAuthService(users, maker, nil, newNoopLogger())

	tests := []struct {
		name    string
		token   string
		wantID  string
		wantErr error
	}{
		{name: "valid token resolves even for inactive user", token: valid, wantID: "u-1"},
		{name: "empty token", token: "", wantErr: apperr.ErrUnauthenticated},
		{name: "garbage token", token: "not.a.token", wantErr: apperr.ErrUnauthenticated},
		{name: "expired token", token: expired, wantErr: apperr.ErrUnauthenticated},
		{name: "missing subject", token: noSub, wantErr: apperr.ErrUnauthenticated},
		{name: "subject no longer exists", token: unknown, wantErr: apperr.ErrUnauthenticated},
		{name: "store unavailable", token: down, wantErr: apperr.ErrUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u, err := svc.Resolve(context.Background(), tt.token)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, u)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantID, u.ID)
		})
	}
}

func TestRequireActive(t *testing.T) {
	assert.NoError(t, auth.RequireActive(&models.User{IsActive: true}))
	assert.ErrorIs(t, auth.RequireActive(&models.User{IsActive: false}), apperr.ErrInactiveAccount)
	assert.ErrorIs(t, auth.RequireActive(nil), apperr.ErrUnauthenticated)
}

// frozenCache всегда отдаёт снимок пользователя, сделанный при первой записи,
// и не умеет его удалять.
type frozenCache struct {
	users map[string]models.User
}

func (c *frozenCache) GetUser(_ context.Context, id string) (*models.User, bool, error) {
	u, ok := c.users[id]
	if !ok {
		return nil, false, nil
	}
	return &u, true, nil
}

func (c *frozenCache) SetUser(_ context.Context, u *models.User) error {
	if _, ok := c.users[u.ID]; !ok {
		c.users[u.ID] = *u
	}
	return nil
}

func (c *frozenCache) InvalidateUser(context.Context, string) error {
	return errors.New("cache unavailable")
}

func TestService_Resolve_DeactivationIgnoresStaleCache(t *testing.T) {
	ctx := context.Background()
	cache := &frozenCache{users: make(map[string]models.User)}
	userService := usersvc.New(inmemory.New(), password.NewHasher(bcrypt.MinCost), newNoopLogger(), usersvc.WithCache(cache))
	maker := newMaker(t)
	svc := auth.NewAuthService(userService, maker, nil, newNoopLogger())

	alice, err := userService.Register(ctx, models.UserCreate{Email: "alice@example.com", Password: "password123"})
	require.NoError(t, err)

	cached, err := userService.GetByID(ctx, alice.ID)
	require.NoError(t, err)
	require.True(t, cached.IsActive)

	_, err = userService.Update(ctx, alice.ID, models.UserUpdate{IsActive: new(bool)})
	require.NoError(t, err)

	stale, err := userService.GetByID(ctx, alice.ID)
	require.NoError(t, err)
	require.True(t, stale.IsActive, "cache still holds the active record")

	token, err := maker.GenerateToken(alice.ID)
	require.NoError(t, err)
	u, err := svc.Resolve(ctx, token)
	require.NoError(t, err)
	assert.False(t, u.IsActive)
	assert.ErrorIs(t, auth.RequireActive(u), apperr.ErrInactiveAccount)
}
