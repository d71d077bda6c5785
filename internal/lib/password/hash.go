// Package password реализует хеширование и проверку паролей на bcrypt.
//
// Hash создаёт bcrypt-хеш с солью, встроенной в результат.
// Verify сравнивает пароль с хешем и никогда не возвращает ошибку:
// несовпадение и повреждённый хеш одинаково дают false.
package password

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// ErrTooLong возвращается, если пароль длиннее предела bcrypt в 72 байта.
var ErrTooLong = errors.New("password exceeds 72 bytes")

// Hasher хеширует пароли bcrypt с заданной стоимостью.
type Hasher struct {
	cost int
}

// NewHasher создаёт Hasher. Стоимость вне диапазона bcrypt заменяется на bcrypt.DefaultCost.
func NewHasher(cost int) *Hasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &Hasher{cost: cost}
}

// Cost возвращает используемую стоимость bcrypt.
func (h *Hasher) Cost() int {
	return h.cost
}

// Hash принимает пароль пользователя и возвращает его bcrypt‑хэш.
func (h *Hasher) Hash(password string) (string, error) {
	const op = "password.Hash"
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return "", fmt.Errorf("%s: %w", op, ErrTooLong)
		}
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return string(hashed), nil
}

// Verify сообщает, соответствует ли пароль хэшу.
func (h *Hasher) Verify(password, hashed string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(password)) == nil
}
