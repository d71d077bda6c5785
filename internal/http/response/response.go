// Package response содержит вспомогательные типы и функции для формирования
// унифицированных JSON‑ответов HTTP‑обработчиков. Пакет упрощает возврат
// успешных ответов, ошибок и сообщений валидации в едином формате.
package response

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/user-service/internal/lib/apperr"
)

// Response описывает стандартную структуру JSON‑ответа сервера.
// Поле Status: статус запроса ("OK" или "Error").
// Поле Error: текст ошибки (опционально, при неуспехе).
// Поле Data: данные ответа (опционально, при успехе).
type Response struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
	Data   any    `json:"data,omitempty"`
}

// ErrorResponse: структура ошибки для Swagger-документации.
// Используется в аннотациях @Failure как возвращаемый тип ошибки.
type ErrorResponse struct {
	Status string `json:"status" example:"Error"`
	Error  string `json:"error" example:"invalid request body"`
}

const (
	// StatusOK значение статуса для успешного ответа.
	StatusOK = "OK"
	// StatusError значение статуса для ответа с ошибкой.
	StatusError = "Error"
)

// Сообщения об ошибках, которые видит клиент.
const (
	MsgInvalidCredentials = "incorrect email or password"
	MsgInvalidToken       = "could not validate credentials"
	MsgInactiveUser       = "inactive user"
	MsgForbidden          = "the user doesn't have enough privileges"
	MsgNotFound           = "user not found"
	MsgEmailTaken         = "the user with this email already exists in the system"
	MsgValidation         = "invalid request"
	MsgUnavailable        = "service temporarily unavailable"
	MsgInternal           = "internal error"
)

// StatusOKWithData возвращает успешный Response с переданными данными.
func StatusOKWithData(data any) Response {
	return Response{
		Status: StatusOK,
		Data:   data,
	}
}

// Error возвращает Response с ошибкой и переданным сообщением.
func Error(msg string) ErrorResponse {
	return ErrorResponse{
		Status: StatusError,
		Error:  msg,
	}
}

// StatusFor сопоставляет ошибку сервиса с HTTP-статусом и сообщением для клиента.
// Подробности ошибок хранилища клиенту не передаются.
func StatusFor(err error) (int, string) {
	switch {
	case errors.Is(err, apperr.ErrUnauthenticated):
		return http.StatusUnauthorized, MsgInvalidToken
	case errors.Is(err, apperr.ErrInactiveAccount):
		return http.StatusBadRequest, MsgInactiveUser
	case errors.Is(err, apperr.ErrForbidden):
		return http.StatusForbidden, MsgForbidden
	case errors.Is(err, apperr.ErrNotFound):
		return http.StatusNotFound, MsgNotFound
	case errors.Is(err, apperr.ErrConflict):
		return http.StatusBadRequest, MsgEmailTaken
	case errors.Is(err, apperr.ErrValidation):
		return http.StatusUnprocessableEntity, MsgValidation
	case errors.Is(err, apperr.ErrUnavailable):
		return http.StatusServiceUnavailable, MsgUnavailable
	default:
		return http.StatusInternalServerError, MsgInternal
	}
}

// WriteError пишет ответ об ошибке по правилам StatusFor.
// Для 401 добавляется заголовок WWW-Authenticate: Bearer.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	code, msg := StatusFor(err)
	WriteErrorMessage(w, r, code, msg)
}

// WriteErrorMessage пишет ответ об ошибке с явным статусом и сообщением.
func WriteErrorMessage(w http.ResponseWriter, r *http.Request, code int, msg string) {
	if code == http.StatusUnauthorized {
		w.Header().Set("WWW-Authenticate", "Bearer")
	}
	render.Status(r, code)
	render.JSON(w, r, Error(msg))
}

// ValidationError формирует Response со статусом Error на основе ошибок валидации.
// Каждое нарушение формируется в человеко‑читаемый текст, объединённый через запятую.
func ValidationError(errs validator.ValidationErrors) Response {
	var errsMsgs []string

	for _, err := range errs {
		field := strings.ToLower(err.Field())
		switch err.ActualTag() {
		case "required":
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s is a required field", field))
		case "email":
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s must be a valid email address", field))
		case "min":
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s must be at least %s characters long", field, err.Param()))
		case "max":
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s must be at most %s characters long", field, err.Param()))
		case "gte":
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s must be greater than or equal to %s", field, err.Param()))
		case "lte":
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s must be less than or equal to %s", field, err.Param()))
		default:
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s is not valid", field))
		}
	}
	return Response{
		Status: StatusError,
		Error:  strings.Join(errsMsgs, ", "),
	}
}

// WriteValidationError пишет ответ 422. Ошибки, не относящиеся к validator, дают общее сообщение.
func WriteValidationError(w http.ResponseWriter, r *http.Request, err error) {
	render.Status(r, http.StatusUnprocessableEntity)
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		render.JSON(w, r, ValidationError(verrs))
		return
	}
	render.JSON(w, r, Error(MsgValidation))
}
