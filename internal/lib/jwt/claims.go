package jwt

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims описывает данные, хранящиеся в JWT: sub, exp и iat.
type Claims struct {
	jwt.RegisteredClaims
}

// GenerateToken создает JWT токен для subject со сроком жизни tokenTTL.
func (j *MakerImpl) GenerateToken(subject string) (string, error) {
	return j.GenerateTokenWithTTL(subject, j.tokenTTL)
}

// GenerateTokenWithTTL создает JWT токен для subject с явно заданным сроком жизни.
func (j *MakerImpl) GenerateTokenWithTTL(subject string, ttl time.Duration) (string, error) {
	const op = "jwt.GenerateToken"
	now := j.now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	token, err := jwt.NewWithClaims(j.method, claims).SignedString(j.secretKey)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return token, nil
}

// ParseToken парсит JWT токен, проверяет алгоритм, подпись и срок действия.
//
// Любая неудача возвращается как ошибка, оборачивающая ErrInvalidToken.
func (j *MakerImpl) ParseToken(tokenStr string) (*Claims, error) {
	const op = "jwt.ParseToken"
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{},
		func(_ *jwt.Token) (any, error) {
			return j.secretKey, nil
		},
		jwt.WithValidMethods([]string{j.method.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(j.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %w", op, ErrInvalidToken, err)
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidToken)
	}
	return claims, nil
}
