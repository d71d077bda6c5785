// Package apperr содержит таксономию ошибок сервиса пользователей.
//
// Слои хранилища, сервисов и транспорта оборачивают эти ошибки через
// fmt.Errorf("%s: %w", op, err), а граница (HTTP, gRPC) сопоставляет их
// со статусами через errors.Is.
package apperr

import "errors"

var (
	// ErrUnauthenticated: отсутствующий, невалидный или просроченный токен, либо неверные учетные данные.
	ErrUnauthenticated = errors.New("unauthenticated")
	// ErrInactiveAccount: учетные данные верны, но учетная запись отключена.
	ErrInactiveAccount = errors.New("inactive account")
	// ErrForbidden: пользователь аутентифицирован, но политика доступа запрещает операцию.
	ErrForbidden = errors.New("forbidden")
	// ErrNotFound: сущность не найдена.
	ErrNotFound = errors.New("not found")
	// ErrConflict: пользователь с таким email уже существует.
	ErrConflict = errors.New("conflict")
	// ErrValidation: входные данные некорректны.
	ErrValidation = errors.New("validation error")
	// ErrUnavailable: хранилище недоступно.
	ErrUnavailable = errors.New("service unavailable")
)
