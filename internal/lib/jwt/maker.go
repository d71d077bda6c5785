// Package jwt реализует выпуск и проверку JWT токенов доступа.
//
// Токен подписывается HMAC-секретом сервиса и содержит идентификатор
// пользователя в sub и срок действия в exp. Состояние на сервере не хранится.
package jwt

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultAlgorithm алгоритм подписи по умолчанию.
const DefaultAlgorithm = "HS256"

var (
	// ErrInvalidToken возвращается для любого токена, который не прошёл проверку.
	ErrInvalidToken = errors.New("invalid token")
	// ErrUnsupportedAlgorithm возвращается при настройке алгоритма не из семейства HMAC.
	ErrUnsupportedAlgorithm = errors.New("unsupported signing algorithm")
)

// Maker описывает интерфейс для генерации и парсинга JWT токенов.
type Maker interface {
	// GenerateToken выпускает токен для subject со сроком жизни по умолчанию.
	GenerateToken(subject string) (string, error)
	// ParseToken проверяет подпись и срок действия и возвращает claims.
	ParseToken(tokenStr string) (*Claims, error)
}

// MakerImpl реализует интерфейс Maker с использованием секретного ключа
// и времени жизни токена (TTL).
type MakerImpl struct {
	secretKey []byte            // Секретный ключ для подписи токенов.
	method    jwt.SigningMethod // Алгоритм подписи.
	tokenTTL  time.Duration     // Время жизни токена.
	now       func() time.Time  // Источник времени, подменяется в тестах.
}

// Option настраивает MakerImpl.
type Option func(*MakerImpl)

// WithClock подменяет источник текущего времени.
func WithClock(now func() time.Time) Option {
	return func(m *MakerImpl) {
		m.now = now
	}
}

// NewJWTMaker создаёт новый экземпляр MakerImpl на основе секретного ключа, алгоритма и TTL.
//
// Пустой algorithm означает DefaultAlgorithm. Допускаются только HS256, HS384 и HS512.
func NewJWTMaker(secretKey, algorithm string, ttl time.Duration, opts ...Option) (*MakerImpl, error) {
	const op = "jwt.NewJWTMaker"
	if secretKey == "" {
		return nil, fmt.Errorf("%s: empty secret key", op)
	}
	if algorithm == "" {
		algorithm = DefaultAlgorithm
	}
	method, ok := jwt.GetSigningMethod(algorithm).(*jwt.SigningMethodHMAC)
	if !ok {
		return nil, fmt.Errorf("%s: %w: %q", op, ErrUnsupportedAlgorithm, algorithm)
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("%s: token ttl must be positive, got %s", op, ttl)
	}

	m := &MakerImpl{
		secretKey: []byte(secretKey),
		method:    method,
		tokenTTL:  ttl,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

// TokenTTL возвращает срок жизни токена по умолчанию.
func (j *MakerImpl) TokenTTL() time.Duration {
	return j.tokenTTL
}
