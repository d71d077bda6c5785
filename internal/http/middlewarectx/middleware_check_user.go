package middlewarectx

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"

	"github.com/magabrotheeeer/user-service/internal/http/response"
	"github.com/magabrotheeeer/user-service/internal/services/auth"
)

// ActiveUserMiddleware пропускает только активных пользователей. Ставится после JWTMiddleware.
func ActiveUserMiddleware(log *slog.Logger) func(http.Handler) http.Handler {
	return checkUser(log, "middlewarectx.ActiveUserMiddleware", func(r *http.Request) error {
		u, _ := UserFromContext(r.Context())
		return auth.RequireActive(u)
	})
}

// SuperuserMiddleware пропускает только суперпользователей.
func SuperuserMiddleware(log *slog.Logger) func(http.Handler) http.Handler {
	return checkUser(log, "middlewarectx.SuperuserMiddleware", func(r *http.Request) error {
		u, _ := UserFromContext(r.Context())
		return auth.RequireSuperuser(u)
	})
}

func checkUser(log *slog.Logger, op string, check func(r *http.Request) error) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if err := check(r); err != nil {
				log.Info("access denied",
					slog.String("op", op),
					slog.String("request_id", middleware.GetReqID(r.Context())),
					slog.String("path", r.URL.Path),
					slog.String("reason", err.Error()),
				)
				response.WriteError(w, r, err)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
