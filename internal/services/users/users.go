// Package users содержит бизнес-логику жизненного цикла учётных записей:
// регистрацию, проверку учётных данных, частичное обновление и чтение.
package users

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/magabrotheeeer/user-service/internal/lib/apperr"
	"github.com/magabrotheeeer/user-service/internal/lib/password"
	"github.com/magabrotheeeer/user-service/internal/lib/sl"
	"github.com/magabrotheeeer/user-service/internal/metrics"
	"github.com/magabrotheeeer/user-service/internal/models"
)

const (
	// DefaultListLimit размер страницы списка по умолчанию.
	DefaultListLimit = 100
	// MaxListLimit наибольший размер страницы, который уходит в хранилище.
	MaxListLimit = 1000
)

// UserRepository описывает хранилище учётных записей.
type UserRepository interface {
	// CreateUser сохраняет пользователя и возвращает запись с назначенным id.
	CreateUser(ctx context.Context, user *models.User) (*models.User, error)
	// GetUserByID возвращает пользователя по id.
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	// GetUserByEmail возвращает пользователя по email.
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	// UpdateUser применяет изменения и возвращает обновлённую запись.
	UpdateUser(ctx context.Context, id string, changes models.UserChanges) (*models.User, error)
	// ListUsers возвращает страницу пользователей.
	ListUsers(ctx context.Context, skip, limit int) ([]*models.User, error)
}

// PasswordHasher хеширует и проверяет пароли.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(password, hashed string) bool
}

// Cache кэш пользователей по id.
type Cache interface {
	GetUser(ctx context.Context, id string) (*models.User, bool, error)
	SetUser(ctx context.Context, user *models.User) error
	InvalidateUser(ctx context.Context, id string) error
}

// EventPublisher отправляет события учётных записей в брокер.
type EventPublisher interface {
	Publish(ctx context.Context, routingKey string, message any) error
}

// Service реализует операции над учётными записями.
type Service struct {
	repo    UserRepository
	hasher  PasswordHasher
	cache   Cache
	events  EventPublisher
	metrics *metrics.Metrics
	log     *slog.Logger

	dummyOnce sync.Once
	dummyHash string
}

// Option настраивает Service.
type Option func(*Service)

// WithCache включает кэш пользователей.
func WithCache(c Cache) Option {
	return func(s *Service) { s.cache = c }
}

// WithEvents включает публикацию событий.
func WithEvents(p EventPublisher) Option {
	return func(s *Service) { s.events = p }
}

// WithMetrics включает учёт метрик.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// New создаёт сервис учётных записей.
func New(repo UserRepository, hasher PasswordHasher, log *slog.Logger, opts ...Option) *Service {
	s := &Service{
		repo:   repo,
		hasher: hasher,
		log:    log,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register создаёт активного пользователя без прав суперпользователя.
func (s *Service) Register(ctx context.Context, in models.UserCreate) (*models.User, error) {
	const op = "users.Register"
	u, err := s.create(ctx, in, false)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("user registered", slog.String("user_id", u.ID))
	return u, nil
}

// EnsureSuperuser создаёт суперпользователя, если email ещё не зарегистрирован.
// Второе значение сообщает, была ли создана новая запись.
func (s *Service) EnsureSuperuser(ctx context.Context, email, rawPassword string) (*models.User, bool, error) {
	const op = "users.EnsureSuperuser"
	existing, err := s.repo.GetUserByEmail(ctx, models.NormalizeEmail(email))
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, apperr.ErrNotFound) {
		return nil, false, fmt.Errorf("%s: %w", op, err)
	}

	u, err := s.create(ctx, models.UserCreate{Email: email, Password: rawPassword}, true)
	if errors.Is(err, apperr.ErrConflict) {
		// Параллельный экземпляр успел создать запись.
		existing, err = s.repo.GetUserByEmail(ctx, models.NormalizeEmail(email))
		if err != nil {
			return nil, false, fmt.Errorf("%s: %w", op, err)
		}
		return existing, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("first superuser created", slog.String("user_id", u.ID))
	return u, true, nil
}

func (s *Service) create(ctx context.Context, in models.UserCreate, superuser bool) (*models.User, error) {
	email := models.NormalizeEmail(in.Email)

	_, err := s.repo.GetUserByEmail(ctx, email)
	switch {
	case err == nil:
		return nil, apperr.ErrConflict
	case !errors.Is(err, apperr.ErrNotFound):
		return nil, err
	}

	hashed, err := s.hash(in.Password)
	if err != nil {
		return nil, err
	}

	u, err := s.repo.CreateUser(ctx, &models.User{
		Email:          email,
		FullName:       in.FullName,
		HashedPassword: hashed,
		IsActive:       true,
		IsSuperuser:    superuser,
	})
	if err != nil {
		return nil, err
	}

	s.metrics.ObserveRegistration()
	s.publish(ctx, models.EventUserRegistered, u)
	return u, nil
}

// Authenticate проверяет email и пароль.
//
// Неизвестный email и неверный пароль дают один и тот же apperr.ErrUnauthenticated.
// Для неизвестного email всё равно выполняется сравнение bcrypt, чтобы время
// ответа не выдавало существование адреса.
func (s *Service) Authenticate(ctx context.Context, email, rawPassword string) (*models.User, error) {
	const op = "users.Authenticate"
	u, err := s.repo.GetUserByEmail(ctx, models.NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			s.hasher.Verify(rawPassword, s.dummy())
			return nil, fmt.Errorf("%s: %w", op, apperr.ErrUnauthenticated)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if !s.hasher.Verify(rawPassword, u.HashedPassword) {
		return nil, fmt.Errorf("%s: %w", op, apperr.ErrUnauthenticated)
	}
	if !u.IsActive {
		return nil, fmt.Errorf("%s: %w", op, apperr.ErrInactiveAccount)
	}
	return u, nil
}

// dummy возвращает хэш, с которым сравнивается пароль для неизвестного email.
func (s *Service) dummy() string {
	s.dummyOnce.Do(func() {
		h, err := s.hasher.Hash(uuid.NewString())
		if err != nil {
			s.log.Warn("failed to prepare dummy hash", sl.Err(err))
			return
		}
		s.dummyHash = h
	})
	return s.dummyHash
}

// Update применяет к пользователю только переданные поля.
// Новый пароль хешируется, открытый текст дальше сервиса не уходит.
func (s *Service) Update(ctx context.Context, id string, in models.UserUpdate) (*models.User, error) {
	const op = "users.Update"
	current, err := s.repo.GetUserByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if in.IsEmpty() {
		return current, nil
	}

	var changes models.UserChanges
	if in.Email != nil {
		email := models.NormalizeEmail(*in.Email)
		owner, err := s.repo.GetUserByEmail(ctx, email)
		switch {
		case err == nil && owner.ID != id:
			return nil, fmt.Errorf("%s: %w", op, apperr.ErrConflict)
		case err != nil && !errors.Is(err, apperr.ErrNotFound):
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		changes.Email = &email
	}
	if in.FullName != nil {
		name := *in.FullName
		changes.FullName = &name
	}
	if in.Password != nil {
		hashed, err := s.hash(*in.Password)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		changes.HashedPassword = &hashed
	}
	if in.IsActive != nil {
		active := *in.IsActive
		changes.IsActive = &active
	}

	u, err := s.repo.UpdateUser(ctx, id, changes)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if s.cache != nil {
		if err := s.cache.InvalidateUser(ctx, id); err != nil {
			s.log.Warn("failed to invalidate cached user", slog.String("user_id", id), sl.Err(err))
		}
	}
	s.publish(ctx, models.EventUserUpdated, u)
	s.log.Info("user updated", slog.String("user_id", id))
	return u, nil
}

// GetByID возвращает пользователя по id, сначала заглядывая в кэш.
// Запись из кэша приходит без хэша пароля и может отставать от хранилища
// не дольше, чем на TTL кэша.
func (s *Service) GetByID(ctx context.Context, id string) (*models.User, error) {
	const op = "users.GetByID"
	if s.cache != nil {
		u, found, err := s.cache.GetUser(ctx, id)
		if err != nil {
			s.log.Warn("failed to read cached user", slog.String("user_id", id), sl.Err(err))
		}
		if found {
			s.metrics.ObserveCache(true)
			return u, nil
		}
		s.metrics.ObserveCache(false)
	}

	u, err := s.repo.GetUserByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if s.cache != nil {
		if err := s.cache.SetUser(ctx, u); err != nil {
			s.log.Warn("failed to cache user", slog.String("user_id", id), sl.Err(err))
		}
	}
	return u, nil
}

// GetStoredByID возвращает пользователя прямо из хранилища, не читая и не заполняя кэш.
func (s *Service) GetStoredByID(ctx context.Context, id string) (*models.User, error) {
	const op = "users.GetStoredByID"
	u, err := s.repo.GetUserByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return u, nil
}

// GetByEmail возвращает пользователя по email.
func (s *Service) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	const op = "users.GetByEmail"
	u, err := s.repo.GetUserByEmail(ctx, models.NormalizeEmail(email))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return u, nil
}

// List возвращает страницу пользователей.
func (s *Service) List(ctx context.Context, skip, limit int) ([]*models.User, error) {
	const op = "users.List"
	if skip < 0 || limit < 1 || limit > MaxListLimit {
		return nil, fmt.Errorf("%s: %w: skip must be >= 0 and limit in [1, %d]", op, apperr.ErrValidation, MaxListLimit)
	}
	list, err := s.repo.ListUsers(ctx, skip, limit)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return list, nil
}

func (s *Service) hash(raw string) (string, error) {
	hashed, err := s.hasher.Hash(raw)
	if errors.Is(err, password.ErrTooLong) {
		return "", fmt.Errorf("%w: %w", apperr.ErrValidation, err)
	}
	return hashed, err
}

// publish отправляет событие. Ошибка брокера не прерывает операцию.
func (s *Service) publish(ctx context.Context, eventType string, u *models.User) {
	if s.events == nil {
		return
	}
	evt := models.UserEvent{
		EventID:    uuid.NewString(),
		Type:       eventType,
		UserID:     u.ID,
		Email:      u.Email,
		OccurredAt: time.Now().UTC(),
	}
	err := s.events.Publish(ctx, eventType, evt)
	s.metrics.ObserveEvent(eventType, err)
	if err != nil {
		s.log.Warn("failed to publish user event",
			slog.String("type", eventType), slog.String("user_id", u.ID), sl.Err(err))
	}
}
