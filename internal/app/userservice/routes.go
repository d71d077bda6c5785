package userservice

import (
	"log/slog"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	httpSwagger "github.com/swaggo/http-swagger"

	// swagger-описание для /docs
	_ "github.com/magabrotheeeer/user-service/docs"
	"github.com/magabrotheeeer/user-service/internal/http/handlers/auth/login"
	"github.com/magabrotheeeer/user-service/internal/http/handlers/auth/me"
	"github.com/magabrotheeeer/user-service/internal/http/handlers/health"
	"github.com/magabrotheeeer/user-service/internal/http/handlers/users/create"
	"github.com/magabrotheeeer/user-service/internal/http/handlers/users/list"
	"github.com/magabrotheeeer/user-service/internal/http/handlers/users/read"
	"github.com/magabrotheeeer/user-service/internal/http/handlers/users/update"
	"github.com/magabrotheeeer/user-service/internal/http/middlewarectx"
	"github.com/magabrotheeeer/user-service/internal/metrics"
	"github.com/magabrotheeeer/user-service/internal/services/auth"
	"github.com/magabrotheeeer/user-service/internal/services/users"
)

// Deps зависимости HTTP-маршрутов.
type Deps struct {
	Log         *slog.Logger
	ProjectName string
	Users       *users.Service
	Auth        *auth.Service
	Metrics     *metrics.Metrics
	Limiter     *middlewarectx.IPRateLimiter
	// TrustProxyHeaders подключает middleware.RealIP.
	TrustProxyHeaders bool
}

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(r chi.Router, d Deps) {
	// Глобальные middleware
	r.Use(middleware.RequestID)
	if d.TrustProxyHeaders {
		r.Use(middleware.RealIP)
	}
	r.Use(
		middleware.Logger,
		middleware.Recoverer,
		middlewarectx.MetricsMiddleware(d.Metrics),
	)

	r.Get("/", health.New(d.ProjectName).ServeHTTP)
	r.Handle("/metrics", d.Metrics.Handler())
	r.Get("/docs/*", httpSwagger.WrapHandler)

	r.Route("/api/v1", func(r chi.Router) {
		// Открытые конечные точки
		r.With(middlewarectx.RateLimitMiddleware(d.Log, d.Limiter, d.Metrics)).
			Post("/auth/login", login.New(d.Log, d.Auth).ServeHTTP)
		r.Post("/users", create.New(d.Log, d.Users).ServeHTTP)

		// Группа с JWT аутентификацией, только активные пользователи
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.JWTMiddleware(d.Auth, d.Log))
			r.Use(middlewarectx.ActiveUserMiddleware(d.Log))

			r.Get("/auth/me", me.New(d.Log).ServeHTTP)
			r.Get("/users/{id}", read.New(d.Log, d.Users).ServeHTTP)
			r.Put("/users/{id}", update.New(d.Log, d.Users).ServeHTTP)
			r.With(middlewarectx.SuperuserMiddleware(d.Log)).
				Get("/users", list.New(d.Log, d.Users).ServeHTTP)
		})
	})
}
