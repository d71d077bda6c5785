// Package inmemory реализует хранилище пользователей в памяти процесса.
//
// Используется для локального запуска и в тестах. Соблюдает те же
// инварианты, что и постоянные хранилища: уникальный email и неизменный id.
package inmemory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/magabrotheeeer/user-service/internal/lib/apperr"
	"github.com/magabrotheeeer/user-service/internal/models"
)

// Storage хранит пользователей в map под RWMutex.
type Storage struct {
	mu      sync.RWMutex
	byID    map[string]*models.User
	byEmail map[string]string
	order   []string
	now     func() time.Time
}

// New создаёт пустое хранилище.
func New() *Storage {
	return &Storage{
		byID:    make(map[string]*models.User),
		byEmail: make(map[string]string),
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// CreateUser сохраняет копию пользователя с новым UUID.
func (s *Storage) CreateUser(_ context.Context, user *models.User) (*models.User, error) {
	const op = "storage.inmemory.CreateUser"
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byEmail[user.Email]; exists {
		return nil, fmt.Errorf("%s: %w", op, apperr.ErrConflict)
	}

	u := *user
	u.ID = uuid.NewString()
	u.CreatedAt = s.now()
	u.UpdatedAt = u.CreatedAt
	s.byID[u.ID] = &u
	s.byEmail[u.Email] = u.ID
	s.order = append(s.order, u.ID)

	out := u
	return &out, nil
}

// GetUserByID возвращает копию пользователя по id.
func (s *Storage) GetUserByID(_ context.Context, id string) (*models.User, error) {
	const op = "storage.inmemory.GetUserByID"
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.byID[id]
	if !ok {
		return nil, fmt.Errorf("%s: %w", op, apperr.ErrNotFound)
	}
	out := *u
	return &out, nil
}

// GetUserByEmail возвращает копию пользователя по email.
func (s *Storage) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	const op = "storage.inmemory.GetUserByEmail"
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byEmail[email]
	if !ok {
		return nil, fmt.Errorf("%s: %w", op, apperr.ErrNotFound)
	}
	out := *s.byID[id]
	return &out, nil
}

// UpdateUser применяет заданные поля атомарно.
func (s *Storage) UpdateUser(_ context.Context, id string, changes models.UserChanges) (*models.User, error) {
	const op = "storage.inmemory.UpdateUser"
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.byID[id]
	if !ok {
		return nil, fmt.Errorf("%s: %w", op, apperr.ErrNotFound)
	}
	if changes.IsEmpty() {
		out := *u
		return &out, nil
	}

	if changes.Email != nil && *changes.Email != u.Email {
		if _, taken := s.byEmail[*changes.Email]; taken {
			return nil, fmt.Errorf("%s: %w", op, apperr.ErrConflict)
		}
		delete(s.byEmail, u.Email)
		u.Email = *changes.Email
		s.byEmail[u.Email] = u.ID
	}
	if changes.FullName != nil {
		u.FullName = *changes.FullName
	}
	if changes.HashedPassword != nil {
		u.HashedPassword = *changes.HashedPassword
	}
	if changes.IsActive != nil {
		u.IsActive = *changes.IsActive
	}
	u.UpdatedAt = s.now()

	out := *u
	return &out, nil
}

// ListUsers возвращает страницу пользователей в порядке вставки.
func (s *Storage) ListUsers(_ context.Context, skip, limit int) ([]*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	users := make([]*models.User, 0)
	if skip < 0 || skip >= len(s.order) || limit <= 0 {
		return users, nil
	}
	end := len(s.order)
	if limit < end-skip {
		end = skip + limit
	}
	for _, id := range s.order[skip:end] {
		out := *s.byID[id]
		users = append(users, &out)
	}
	return users, nil
}
