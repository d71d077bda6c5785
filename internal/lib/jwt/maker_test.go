package jwt

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test_secret_key_1234567890"

// fakeClock управляемый источник времени для проверки истечения токена.
type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func newClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
}

func newTestMaker(t *testing.T, clock *fakeClock) *MakerImpl {
	t.Helper()
	maker, err := NewJWTMaker(testSecret, "HS256", 15*time.Minute, WithClock(clock.Now))
	require.NoError(t, err)
	return maker
}

func TestJWTMaker_GenerateAndParseToken_ValidCases(t *testing.T) {
	clock := newClock()
	maker := newTestMaker(t, clock)

	tests := []struct {
		name    string
		subject string
	}{
		{
			name:    "object id subject",
			subject: "507f1f77bcf86cd799439011",
		},
		{
			name:    "uuid subject",
			subject: "550e8400-e29b-41d4-a716-446655440000",
		},
		{
			name:    "arbitrary string subject",
			subject: "user@domain.com",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token, err := maker.GenerateToken(tt.subject)
			require.NoError(t, err)
			assert.NotEmpty(t, token)

			claims, err := maker.ParseToken(token)
			require.NoError(t, err)

			assert.Equal(t, tt.subject, claims.Subject)
			assert.Equal(t, clock.Now(), claims.IssuedAt.Time.UTC())
			assert.Equal(t, clock.Now().Add(15*time.Minute), claims.ExpiresAt.Time.UTC())
		})
	}
}

func TestJWTMaker_TokenExpiration(t *testing.T) {
	clock := newClock()
	maker := newTestMaker(t, clock)

	token, err := maker.GenerateToken("user-1")
	require.NoError(t, err)

	clock.Advance(15*time.Minute - time.Second)
	claims, err := maker.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.Subject)

	clock.Advance(2 * time.Second)
	claims, err = maker.ParseToken(token)
	require.Error(t, err)
	assert.Nil(t, claims)
	assert.ErrorIs(t, err, ErrInvalidToken)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)
}

func TestJWTMaker_GenerateTokenWithTTL(t *testing.T) {
	clock := newClock()
	maker := newTestMaker(t, clock)

	token, err := maker.GenerateTokenWithTTL("user-1", time.Minute)
	require.NoError(t, err)

	clock.Advance(30 * time.Second)
	_, err = maker.ParseToken(token)
	require.NoError(t, err)

	clock.Advance(31 * time.Second)
	_, err = maker.ParseToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestJWTMaker_ParseToken_InvalidTokens(t *testing.T) {
	clock := newClock()
	maker := newTestMaker(t, clock)

	validToken, err := maker.GenerateToken("testuser")
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
	}{
		{
			name:  "empty token",
			token: "",
		},
		{
			name:  "malformed token",
			token: "invalid.token.here",
		},
		{
			name:  "expired token",
			token: createExpiredToken(t, clock),
		},
		{
			name:  "wrong secret key",
			token: createTokenWithWrongSecret(t, clock),
		},
		{
			name:  "tampered token",
			token: validToken + "tampered",
		},
		{
			name:  "different hmac algorithm",
			token: createTokenWithAlgorithm(t, clock, "HS512"),
		},
		{
			name:  "alg none",
			token: createUnsignedToken(t, clock),
		},
		{
			name:  "no expiry",
			token: createTokenWithoutExpiry(t),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims, err := maker.ParseToken(tt.token)
			assert.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidToken)
			assert.Nil(t, claims)
		})
	}
}

func TestJWTMaker_DifferentSecretKeys(t *testing.T) {
	maker1, err := NewJWTMaker("first_secret_key", "", 15*time.Minute)
	require.NoError(t, err)
	maker2, err := NewJWTMaker("different_secret_key", "", 15*time.Minute)
	require.NoError(t, err)

	token, err := maker1.GenerateToken("testuser")
	require.NoError(t, err)

	claims, err := maker2.ParseToken(token)
	assert.Error(t, err)
	assert.Nil(t, claims)

	claims, err = maker1.ParseToken(token)
	assert.NoError(t, err)
	assert.NotNil(t, claims)
}

func TestNewJWTMaker_Validation(t *testing.T) {
	tests := []struct {
		name      string
		secret    string
		algorithm string
		ttl       time.Duration
		wantErr   bool
		wantIs    error
	}{
		{name: "default algorithm", secret: "s", algorithm: "", ttl: time.Minute},
		{name: "hs384", secret: "s", algorithm: "HS384", ttl: time.Minute},
		{name: "hs512", secret: "s", algorithm: "HS512", ttl: time.Minute},
		{name: "rsa is rejected", secret: "s", algorithm: "RS256", ttl: time.Minute, wantErr: true, wantIs: ErrUnsupportedAlgorithm},
		{name: "unknown algorithm", secret: "s", algorithm: "XX999", ttl: time.Minute, wantErr: true, wantIs: ErrUnsupportedAlgorithm},
		{name: "empty secret", secret: "", algorithm: "HS256", ttl: time.Minute, wantErr: true},
		{name: "zero ttl", secret: "s", algorithm: "HS256", ttl: 0, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			maker, err := NewJWTMaker(tt.secret, tt.algorithm, tt.ttl)
			if !tt.wantErr {
				require.NoError(t, err)
				assert.Equal(t, tt.ttl, maker.TokenTTL())
				return
			}
			require.Error(t, err)
			assert.Nil(t, maker)
			if tt.wantIs != nil {
				assert.ErrorIs(t, err, tt.wantIs)
			}
		})
	}
}

func createExpiredToken(t *testing.T, clock *fakeClock) string {
	t.Helper()
	maker := newTestMaker(t, clock)
	token, err := maker.GenerateTokenWithTTL("testuser", -time.Hour)
	require.NoError(t, err)
	return token
}

func createTokenWithWrongSecret(t *testing.T, clock *fakeClock) string {
	t.Helper()
	wrongMaker, err := NewJWTMaker("wrong_secret_key", "HS256", 15*time.Minute, WithClock(clock.Now))
	require.NoError(t, err)
	token, err := wrongMaker.GenerateToken("testuser")
	require.NoError(t, err)
	return token
}

func createTokenWithAlgorithm(t *testing.T, clock *fakeClock, alg string) string {
	t.Helper()
	other, err := NewJWTMaker(testSecret, alg, 15*time.Minute, WithClock(clock.Now))
	require.NoError(t, err)
	token, err := other.GenerateToken("testuser")
	require.NoError(t, err)
	return token
}

func createUnsignedToken(t *testing.T, clock *fakeClock) string {
	t.Helper()
	claims := jwt.RegisteredClaims{
		Subject:   "testuser",
		ExpiresAt: jwt.NewNumericDate(clock.Now().Add(time.Hour)),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	return token
}

func createTokenWithoutExpiry(t *testing.T) string {
	t.Helper()
	claims := jwt.RegisteredClaims{Subject: "testuser"}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return token
}
