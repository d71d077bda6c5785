// Package cache реализует кэш пользователей поверх Redis.
//
// Значения хранятся в JSON. Хэш пароля в кэш не попадает: поле
// models.User.HashedPassword не сериализуется.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/magabrotheeeer/user-service/internal/config"
	"github.com/magabrotheeeer/user-service/internal/models"
)

const userKeyPrefix = "user:"

// Cache клиент Redis и срок жизни записей пользователей.
type Cache struct {
	Db      *redis.Client
	userTTL time.Duration
}

// InitServer подключается к Redis и проверяет соединение.
func InitServer(ctx context.Context, cfg config.RedisConnection) (*Cache, error) {
	const op = "cache.InitServer"
	db := redis.NewClient(&redis.Options{
		Addr:         cfg.Address,
		Password:     cfg.Password,
		DB:           cfg.DB,
		Username:     cfg.User,
		MaxRetries:   cfg.MaxRetries,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.Timeout,
		WriteTimeout: cfg.Timeout,
	})

	if err := db.Ping(ctx).Err(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &Cache{Db: db, userTTL: cfg.UserTTL}, nil
}

// Get читает значение по ключу в result. false означает промах.
func (c *Cache) Get(ctx context.Context, key string, result any) (bool, error) {
	const op = "cache.Get"
	val, err := c.Db.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	if err := json.Unmarshal(val, result); err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return true, nil
}

// Set сохраняет значение по ключу. Нулевой expiration означает запись без срока.
func (c *Cache) Set(ctx context.Context, key string, value any, expiration time.Duration) error {
	const op = "cache.Set"
	jsonData, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := c.Db.Set(ctx, key, jsonData, expiration).Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// Invalidate удаляет ключ.
func (c *Cache) Invalidate(ctx context.Context, key string) error {
	const op = "cache.Invalidate"
	if err := c.Db.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// GetUser возвращает пользователя из кэша без хэша пароля.
func (c *Cache) GetUser(ctx context.Context, id string) (*models.User, bool, error) {
	var u models.User
	found, err := c.Get(ctx, UserKey(id), &u)
	if err != nil || !found {
		return nil, false, err
	}
	return &u, true, nil
}

// SetUser кладёт пользователя в кэш на userTTL.
func (c *Cache) SetUser(ctx context.Context, user *models.User) error {
	return c.Set(ctx, UserKey(user.ID), user, c.userTTL)
}

// InvalidateUser удаляет пользователя из кэша.
func (c *Cache) InvalidateUser(ctx context.Context, id string) error {
	return c.Invalidate(ctx, UserKey(id))
}

// Close закрывает соединение с Redis.
func (c *Cache) Close() error {
	return c.Db.Close()
}

// UserKey ключ записи пользователя.
func UserKey(id string) string {
	return userKeyPrefix + id
}
