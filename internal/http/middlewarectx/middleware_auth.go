// Package middlewarectx содержит HTTP middleware аутентификации и авторизации.
//
// JWTMiddleware достаёт bearer-токен из заголовка Authorization, разрешает его
// в пользователя и кладёт пользователя в контекст запроса. ActiveUserMiddleware
// и SuperuserMiddleware проверяют пользователя из контекста.
package middlewarectx

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/middleware"

	"github.com/magabrotheeeer/user-service/internal/http/response"
	"github.com/magabrotheeeer/user-service/internal/lib/sl"
	"github.com/magabrotheeeer/user-service/internal/models"
)

// Key тип для ключей контекста HTTP-запроса.
type Key string

// User ключ текущего пользователя в контексте.
const User Key = "user"

// Resolver разрешает bearer-токен в пользователя.
type Resolver interface {
	Resolve(ctx context.Context, token string) (*models.User, error)
}

// WithUser возвращает контекст с текущим пользователем.
func WithUser(ctx context.Context, u *models.User) context.Context {
	return context.WithValue(ctx, User, u)
}

// UserFromContext возвращает текущего пользователя из контекста.
func UserFromContext(ctx context.Context) (*models.User, bool) {
	u, ok := ctx.Value(User).(*models.User)
	return u, ok && u != nil
}

// BearerToken извлекает токен из заголовка "Authorization: Bearer <token>".
// Схема сравнивается без учёта регистра.
func BearerToken(r *http.Request) (string, bool) {
	scheme, token, found := strings.Cut(r.Header.Get("Authorization"), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// JWTMiddleware возвращает HTTP middleware, который проверяет JWT в заголовке Authorization.
//
// Если токен валиден, добавляет пользователя в контекст запроса,
// иначе возвращает 401 Unauthorized (или 503, если хранилище недоступно).
func JWTMiddleware(resolver Resolver, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			const op = "middlewarectx.JWTMiddleware"
			log := log.With(
				slog.String("op", op),
				slog.String("request_id", middleware.GetReqID(r.Context())),
			)

			tokenStr, ok := BearerToken(r)
			if !ok {
				log.Info("missing or invalid authorization header")
				response.WriteErrorMessage(w, r, http.StatusUnauthorized, "not authenticated")
				return
			}

			u, err := resolver.Resolve(r.Context(), tokenStr)
			if err != nil {
				log.Info("token not resolved", sl.Err(err))
				response.WriteError(w, r, err)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), u)))
		})
	}
}
