// Package auth отвечает за вход по паролю, разрешение bearer-токена в пользователя
// и политику доступа к учётным записям.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/magabrotheeeer/user-service/internal/lib/apperr"
	"github.com/magabrotheeeer/user-service/internal/lib/jwt"
	"github.com/magabrotheeeer/user-service/internal/lib/sl"
	"github.com/magabrotheeeer/user-service/internal/metrics"
	"github.com/magabrotheeeer/user-service/internal/models"
)

// UserService операции над учётными записями, нужные аутентификации.
type UserService interface {
	// Authenticate проверяет email и пароль.
	Authenticate(ctx context.Context, email, password string) (*models.User, error)
	// GetStoredByID читает пользователя из хранилища в обход кэша,
	// чтобы отключение учётной записи действовало с первого запроса.
	GetStoredByID(ctx context.Context, id string) (*models.User, error)
}

// Service выпускает токены и разрешает их в пользователей.
type Service struct {
	users   UserService
	tokens  jwt.Maker
	metrics *metrics.Metrics
	log     *slog.Logger
}

// NewAuthService создает новый экземпляр Service. m может быть nil.
func NewAuthService(users UserService, tokens jwt.Maker, m *metrics.Metrics, log *slog.Logger) *Service {
	return &Service{
		users:   users,
		tokens:  tokens,
		metrics: m,
		log:     log,
	}
}

// Login проверяет учётные данные и выпускает токен доступа с sub = id пользователя.
func (s *Service) Login(ctx context.Context, email, password string) (string, error) {
	const op = "auth.Login"
	u, err := s.users.Authenticate(ctx, email, password)
	if err != nil {
		s.metrics.ObserveLogin(loginResult(err))
		return "", fmt.Errorf("%s: %w", op, err)
	}

	token, err := s.tokens.GenerateToken(u.ID)
	if err != nil {
		s.metrics.ObserveLogin(metrics.LoginError)
		return "", fmt.Errorf("%s: %w", op, err)
	}
	s.metrics.ObserveLogin(metrics.LoginSuccess)
	s.log.Info("user logged in", slog.String("user_id", u.ID))
	return token, nil
}

func loginResult(err error) string {
	switch {
	case errors.Is(err, apperr.ErrUnauthenticated):
		return metrics.LoginInvalid
	case errors.Is(err, apperr.ErrInactiveAccount):
		return metrics.LoginInactive
	default:
		return metrics.LoginError
	}
}

// Resolve разрешает bearer-токен в пользователя.
//
// Невалидный токен, пустой sub и несуществующий пользователь дают
// apperr.ErrUnauthenticated. Активность учётной записи здесь не проверяется,
// для этого есть RequireActive.
func (s *Service) Resolve(ctx context.Context, token string) (*models.User, error) {
	const op = "auth.Resolve"
	if token == "" {
		return nil, fmt.Errorf("%s: %w: missing token", op, apperr.ErrUnauthenticated)
	}
	claims, err := s.tokens.ParseToken(token)
	if err != nil {
		s.log.Debug("token rejected", sl.Err(err))
		return nil, fmt.Errorf("%s: %w", op, apperr.ErrUnauthenticated)
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("%s: %w: missing subject", op, apperr.ErrUnauthenticated)
	}

	u, err := s.users.GetStoredByID(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w: unknown subject", op, apperr.ErrUnauthenticated)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return u, nil
}

// RequireActive возвращает apperr.ErrInactiveAccount для отключённой учётной записи.
func RequireActive(u *models.User) error {
	if u == nil {
		return fmt.Errorf("auth.RequireActive: %w", apperr.ErrUnauthenticated)
	}
	if !u.IsActive {
		return fmt.Errorf("auth.RequireActive: %w", apperr.ErrInactiveAccount)
	}
	return nil
}
