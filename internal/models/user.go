// Package models содержит доменную модель пользователя системы и структуры
// для приёма и отдачи данных через HTTP. Преобразование между доменной
// моделью и представлением на проводе выполняется явно функциями этого пакета.
package models

import (
	"strings"
	"time"
)

// User представляет зарегистрированного пользователя системы.
type User struct {
	ID             string    `json:"id"`                  // Уникальный неизменяемый идентификатор, назначается хранилищем
	Email          string    `json:"email"`               // Электронная почта (уникальная, в нижнем регистре)
	FullName       string    `json:"full_name,omitempty"` // Полное имя, до 100 символов
	HashedPassword string    `json:"-"`                   // bcrypt-хэш пароля, никогда не сериализуется
	IsActive       bool      `json:"is_active"`           // false блокирует аутентификацию
	IsSuperuser    bool      `json:"is_superuser"`        // true снимает проверку владельца
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// UserCreate входные данные для регистрации пользователя.
type UserCreate struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=72"`
	FullName string `json:"full_name,omitempty" validate:"omitempty,max=100"`
}

// UserUpdate частичное обновление пользователя.
//
// nil-указатель означает, что поле не передано и не изменяется.
type UserUpdate struct {
	Email    *string `json:"email,omitempty" validate:"omitempty,email"`
	FullName *string `json:"full_name,omitempty" validate:"omitempty,max=100"`
	Password *string `json:"password,omitempty" validate:"omitempty,min=8,max=72"`
	IsActive *bool   `json:"is_active,omitempty"`
}

// IsEmpty сообщает, что в обновлении нет ни одного поля.
func (u UserUpdate) IsEmpty() bool {
	return u.Email == nil && u.FullName == nil && u.Password == nil && u.IsActive == nil
}

// UserChanges набор изменений, который уходит в хранилище.
// Пароль к этому моменту уже заменён хэшем.
type UserChanges struct {
	Email          *string
	FullName       *string
	HashedPassword *string
	IsActive       *bool
}

// IsEmpty сообщает, что изменений нет.
func (c UserChanges) IsEmpty() bool {
	return c.Email == nil && c.FullName == nil && c.HashedPassword == nil && c.IsActive == nil
}

// UserRead представление пользователя для ответа клиенту, без хэша пароля.
type UserRead struct {
	ID          string `json:"id" example:"507f1f77bcf86cd799439011"`
	Email       string `json:"email" example:"alice@example.com"`
	FullName    string `json:"full_name,omitempty" example:"Alice Liddell"`
	IsActive    bool   `json:"is_active" example:"true"`
	IsSuperuser bool   `json:"is_superuser" example:"false"`
}

// NewUserRead преобразует доменного пользователя в представление для клиента.
func NewUserRead(u *User) UserRead {
	return UserRead{
		ID:          u.ID,
		Email:       u.Email,
		FullName:    u.FullName,
		IsActive:    u.IsActive,
		IsSuperuser: u.IsSuperuser,
	}
}

// NewUserReadList преобразует список пользователей.
func NewUserReadList(users []*User) []UserRead {
	out := make([]UserRead, 0, len(users))
	for _, u := range users {
		out = append(out, NewUserRead(u))
	}
	return out
}

// NormalizeEmail приводит email к каноническому виду: без пробелов по краям, в нижнем регистре.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
