// Package userservice собирает сервис учётных записей из конфига:
// хранилище, кэш, брокер событий, HTTP и gRPC серверы.
package userservice

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"google.golang.org/grpc"

	"github.com/magabrotheeeer/user-service/internal/cache"
	"github.com/magabrotheeeer/user-service/internal/config"
	grpcserver "github.com/magabrotheeeer/user-service/internal/grpc/server"
	"github.com/magabrotheeeer/user-service/internal/http/middlewarectx"
	"github.com/magabrotheeeer/user-service/internal/lib/jwt"
	"github.com/magabrotheeeer/user-service/internal/lib/password"
	"github.com/magabrotheeeer/user-service/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/user-service/internal/lib/sl"
	"github.com/magabrotheeeer/user-service/internal/metrics"
	"github.com/magabrotheeeer/user-service/internal/migrations"
	"github.com/magabrotheeeer/user-service/internal/services/auth"
	"github.com/magabrotheeeer/user-service/internal/services/users"
	"github.com/magabrotheeeer/user-service/internal/storage/inmemory"
	"github.com/magabrotheeeer/user-service/internal/storage/mongodb"
	"github.com/magabrotheeeer/user-service/internal/storage/postgresql"
)

const (
	shutdownTimeout = 15 * time.Second
	rabbitRetries   = 5
	rabbitDelay     = 2 * time.Second
)

// App приложение сервиса учётных записей.
type App struct {
	httpServer *http.Server
	grpcServer *grpc.Server
	grpcAddr   string
	log        *slog.Logger
	closers    []func(ctx context.Context) error
}

// New создаёт App. При ошибке уже открытые подключения закрываются.
func New(ctx context.Context, cfg *config.Config, log *slog.Logger) (app *App, err error) {
	const op = "userservice.New"

	a := &App{
		grpcAddr: cfg.GRPCAddress,
		log:      log,
	}
	defer func() {
		if err != nil {
			a.close(context.Background())
		}
	}()

	repo, err := a.openStorage(ctx, cfg.Storage)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	m := metrics.New()
	opts := []users.Option{users.WithMetrics(m)}

	if cfg.Redis.Address != "" {
		c, err := cache.InitServer(ctx, cfg.Redis)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		a.closers = append(a.closers, func(context.Context) error { return c.Close() })
		opts = append(opts, users.WithCache(c))
		log.Info("redis cache enabled", slog.String("address", cfg.Redis.Address))
	}

	if cfg.RabbitMQ.URL != "" {
		p, err := rabbitmq.NewPublisher(cfg.RabbitMQ.URL, cfg.RabbitMQ.Exchange, rabbitRetries, rabbitDelay)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		a.closers = append(a.closers, func(context.Context) error { return p.Close() })
		opts = append(opts, users.WithEvents(p))
		log.Info("user events enabled", slog.String("exchange", cfg.RabbitMQ.Exchange))
	}

	userService := users.New(repo, password.NewHasher(cfg.Security.BcryptCost), log, opts...)

	tokens, err := jwt.NewJWTMaker(cfg.JWTToken.SecretKey, cfg.JWTToken.Algorithm, cfg.JWTToken.TokenTTL())
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	authService := auth.NewAuthService(userService, tokens, m, log)

	if cfg.FirstSuperuser.Email != "" {
		if _, _, err := userService.EnsureSuperuser(ctx, cfg.FirstSuperuser.Email, cfg.FirstSuperuser.Password); err != nil {
			return nil, fmt.Errorf("%s: first superuser: %w", op, err)
		}
	}

	router := chi.NewRouter()
	RegisterRoutes(router, Deps{
		Log:         log,
		ProjectName: cfg.ProjectName,
		Users:       userService,
		Auth:        authService,
		Metrics:     m,
		Limiter: middlewarectx.NewIPRateLimiter(cfg.Security.LoginRPS, cfg.Security.LoginBurst,
			middlewarectx.WithMaxClients(cfg.Security.LoginMaxClients)),
		TrustProxyHeaders: cfg.Security.TrustProxyHeaders,
	})

	a.httpServer = &http.Server{
		Addr:         cfg.HTTPServer.Address,
		Handler:      router,
		ReadTimeout:  cfg.HTTPServer.Timeout,
		WriteTimeout: cfg.HTTPServer.Timeout,
		IdleTimeout:  cfg.HTTPServer.IdleTimeout,
	}
	a.grpcServer = grpcserver.New(authService, log)
	return a, nil
}

func (a *App) openStorage(ctx context.Context, cfg config.Storage) (users.UserRepository, error) {
	switch cfg.Driver {
	case config.DriverPostgres:
		st, err := postgresql.New(ctx, cfg.ConnectionString)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, func(context.Context) error { return st.Close() })
		if err := migrations.Run(st.DB, cfg.MigrationsPath); err != nil {
			return nil, err
		}
		a.log.Info("storage ready", slog.String("driver", cfg.Driver))
		return st, nil
	case config.DriverMongo:
		st, err := mongodb.New(ctx, cfg.ConnectionString, cfg.Database)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, st.Close)
		a.log.Info("storage ready", slog.String("driver", cfg.Driver), slog.String("database", cfg.Database))
		return st, nil
	case config.DriverMemory:
		a.log.Warn("using in-memory storage, data is lost on restart")
		return inmemory.New(), nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}

// Handler возвращает HTTP-обработчик приложения.
func (a *App) Handler() http.Handler {
	return a.httpServer.Handler
}

// Run запускает HTTP и gRPC серверы и блокируется до отмены ctx или ошибки одного из них.
func (a *App) Run(ctx context.Context) error {
	lis, err := net.Listen("tcp", a.grpcAddr)
	if err != nil {
		a.close(context.Background())
		return fmt.Errorf("userservice.Run: %w", err)
	}

	errCh := make(chan error, 2)
	go func() {
		a.log.Info("HTTP server starting on", slog.String("address", a.httpServer.Addr))
		err := a.httpServer.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			err = nil
		}
		errCh <- err
	}()
	go func() {
		a.log.Info("gRPC server listening on", slog.String("address", lis.Addr().String()))
		errCh <- a.grpcServer.Serve(lis)
	}()

	var runErr error
	select {
	case runErr = <-errCh:
	case <-ctx.Done():
	}

	timeoutCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	a.log.Info("shutting down servers gracefully")
	if err := a.httpServer.Shutdown(timeoutCtx); err != nil {
		a.log.Error("failed to shutdown HTTP server", sl.Err(err))
	}
	a.grpcServer.GracefulStop()
	a.close(timeoutCtx)
	return runErr
}

func (a *App) close(ctx context.Context) {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](ctx); err != nil {
			a.log.Warn("failed to close resource", sl.Err(err))
		}
	}
	a.closers = nil
}
