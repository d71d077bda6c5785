// Package postgresql реализует хранилище учётных записей пользователей на PostgreSQL.
//
// Схема создаётся миграциями из каталога migrations/. Уникальность email
// обеспечивается индексом users_email_key, поэтому гонка двух одновременных
// регистраций завершается одной успешной вставкой и одной ошибкой apperr.ErrConflict.
package postgresql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	// Регистрация драйвера pgx для использования с database/sql.
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/magabrotheeeer/user-service/internal/lib/apperr"
	"github.com/magabrotheeeer/user-service/internal/models"
)

const (
	pgUniqueViolation = "23505"
	pgInvalidText     = "22P02"

	userColumns = `id, email, full_name, hashed_password, is_active, is_superuser, created_at, updated_at`
)

// Storage инкапсулирует пул соединений с PostgreSQL.
type Storage struct {
	DB *sql.DB
}

// New создаёт пул соединений и проверяет доступность базы.
func New(ctx context.Context, storageConnectionString string) (*Storage, error) {
	const op = "storage.postgresql.New"

	db, err := sql.Open("pgx", storageConnectionString)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err = db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%s: %w: %w", op, apperr.ErrUnavailable, err)
	}

	return &Storage{DB: db}, nil
}

// Close закрывает пул соединений.
func (s *Storage) Close() error {
	if s == nil || s.DB == nil {
		return nil
	}
	return s.DB.Close()
}

func (s *Storage) ready(op string) error {
	if s == nil || s.DB == nil {
		return fmt.Errorf("%s: %w: no database handle", op, apperr.ErrUnavailable)
	}
	return nil
}

// CreateUser вставляет пользователя и возвращает запись с назначенными id и временем создания.
func (s *Storage) CreateUser(ctx context.Context, user *models.User) (*models.User, error) {
	const op = "storage.postgresql.CreateUser"
	if err := s.ready(op); err != nil {
		return nil, err
	}

	query := `INSERT INTO users (email, full_name, hashed_password, is_active, is_superuser)
			  VALUES ($1, $2, $3, $4, $5)
			  RETURNING ` + userColumns
	created, err := scanUser(s.DB.QueryRowContext(ctx, query,
		user.Email, user.FullName, user.HashedPassword, user.IsActive, user.IsSuperuser))
	if err != nil {
		return nil, mapError(op, err)
	}
	return created, nil
}

// GetUserByID возвращает пользователя по id. Некорректный UUID означает отсутствие записи.
func (s *Storage) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	const op = "storage.postgresql.GetUserByID"
	if err := s.ready(op); err != nil {
		return nil, err
	}
	if _, err := uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("%s: %w", op, apperr.ErrNotFound)
	}

	u, err := scanUser(s.DB.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, id))
	if err != nil {
		return nil, mapError(op, err)
	}
	return u, nil
}

// GetUserByEmail возвращает пользователя по email.
func (s *Storage) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	const op = "storage.postgresql.GetUserByEmail"
	if err := s.ready(op); err != nil {
		return nil, err
	}

	u, err := scanUser(s.DB.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = $1`, email))
	if err != nil {
		return nil, mapError(op, err)
	}
	return u, nil
}

// UpdateUser применяет только заданные поля и возвращает обновлённую запись.
func (s *Storage) UpdateUser(ctx context.Context, id string, changes models.UserChanges) (*models.User, error) {
	const op = "storage.postgresql.UpdateUser"
	if err := s.ready(op); err != nil {
		return nil, err
	}
	if changes.IsEmpty() {
		return s.GetUserByID(ctx, id)
	}
	if _, err := uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("%s: %w", op, apperr.ErrNotFound)
	}

	query := `UPDATE users SET
				email = COALESCE($2, email),
				full_name = COALESCE($3, full_name),
				hashed_password = COALESCE($4, hashed_password),
				is_active = COALESCE($5, is_active),
				updated_at = NOW()
			  WHERE id = $1
			  RETURNING ` + userColumns
	u, err := scanUser(s.DB.QueryRowContext(ctx, query,
		id, changes.Email, changes.FullName, changes.HashedPassword, changes.IsActive))
	if err != nil {
		return nil, mapError(op, err)
	}
	return u, nil
}

// ListUsers возвращает страницу пользователей в порядке создания.
func (s *Storage) ListUsers(ctx context.Context, skip, limit int) ([]*models.User, error) {
	const op = "storage.postgresql.ListUsers"
	if err := s.ready(op); err != nil {
		return nil, err
	}

	rows, err := s.DB.QueryContext(ctx,
		`SELECT `+userColumns+` FROM users ORDER BY created_at, id OFFSET $1 LIMIT $2`,
		skip, limit)
	if err != nil {
		return nil, mapError(op, err)
	}
	defer rows.Close()

	users := make([]*models.User, 0, min(limit, 64))
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, mapError(op, err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(op, err)
	}
	return users, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*models.User, error) {
	u := &models.User{}
	if err := row.Scan(&u.ID, &u.Email, &u.FullName, &u.HashedPassword,
		&u.IsActive, &u.IsSuperuser, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return nil, err
	}
	return u, nil
}

// mapError переводит ошибки драйвера в ошибки apperr.
// Ошибки без кода PostgreSQL считаются недоступностью базы.
func mapError(op string, err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s: %w", op, apperr.ErrNotFound)
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			return fmt.Errorf("%s: %w: %s", op, apperr.ErrConflict, pgErr.ConstraintName)
		case pgInvalidText:
			return fmt.Errorf("%s: %w", op, apperr.ErrNotFound)
		}
		return fmt.Errorf("%s: %w", op, err)
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%s: %w", op, err)
	}
	return fmt.Errorf("%s: %w: %w", op, apperr.ErrUnavailable, err)
}
