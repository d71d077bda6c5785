// Package mongodb реализует хранилище учётных записей пользователей на MongoDB.
//
// Пользователи лежат в коллекции users. Идентификатор это ObjectID в виде
// 24-символьной hex-строки. Уникальность email обеспечивает индекс users_email_key.
package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"

	"github.com/magabrotheeeer/user-service/internal/lib/apperr"
	"github.com/magabrotheeeer/user-service/internal/models"
)

const usersCollection = "users"

// userDocument представление пользователя в коллекции.
type userDocument struct {
	ID             bson.ObjectID `bson:"_id,omitempty"`
	Email          string        `bson:"email"`
	FullName       string        `bson:"full_name"`
	HashedPassword string        `bson:"hashed_password"`
	IsActive       bool          `bson:"is_active"`
	IsSuperuser    bool          `bson:"is_superuser"`
	CreatedAt      time.Time     `bson:"created_at"`
	UpdatedAt      time.Time     `bson:"updated_at"`
}

func (d *userDocument) toModel() *models.User {
	return &models.User{
		ID:             d.ID.Hex(),
		Email:          d.Email,
		FullName:       d.FullName,
		HashedPassword: d.HashedPassword,
		IsActive:       d.IsActive,
		IsSuperuser:    d.IsSuperuser,
		CreatedAt:      d.CreatedAt,
		UpdatedAt:      d.UpdatedAt,
	}
}

// Storage хранит клиента MongoDB и коллекцию пользователей.
type Storage struct {
	client *mongo.Client
	users  *mongo.Collection
	now    func() time.Time
}

// New подключается к MongoDB, проверяет соединение и создаёт индексы.
func New(ctx context.Context, uri, database string) (*Storage, error) {
	const op = "storage.mongodb.New"

	client, err := mongo.Connect(options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("%s: %w: %w", op, apperr.ErrUnavailable, err)
	}

	s := &Storage{
		client: client,
		users:  client.Database(database).Collection(usersCollection),
		now:    func() time.Time { return time.Now().UTC().Truncate(time.Millisecond) },
	}
	if err := s.ensureIndexes(ctx); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return s, nil
}

func (s *Storage) ensureIndexes(ctx context.Context) error {
	_, err := s.users.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("users_email_key"),
	})
	return err
}

// Close отключается от MongoDB.
func (s *Storage) Close(ctx context.Context) error {
	if s == nil || s.client == nil {
		return nil
	}
	return s.client.Disconnect(ctx)
}

func (s *Storage) ready(op string) error {
	if s == nil || s.users == nil {
		return fmt.Errorf("%s: %w: no database handle", op, apperr.ErrUnavailable)
	}
	return nil
}

// CreateUser вставляет пользователя и возвращает запись с назначенным id.
func (s *Storage) CreateUser(ctx context.Context, user *models.User) (*models.User, error) {
	const op = "storage.mongodb.CreateUser"
	if err := s.ready(op); err != nil {
		return nil, err
	}

	now := s.now()
	doc := userDocument{
		ID:             bson.NewObjectID(),
		Email:          user.Email,
		FullName:       user.FullName,
		HashedPassword: user.HashedPassword,
		IsActive:       user.IsActive,
		IsSuperuser:    user.IsSuperuser,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if _, err := s.users.InsertOne(ctx, doc); err != nil {
		return nil, mapError(op, err)
	}
	return doc.toModel(), nil
}

// GetUserByID возвращает пользователя по hex-представлению ObjectID.
func (s *Storage) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	const op = "storage.mongodb.GetUserByID"
	if err := s.ready(op); err != nil {
		return nil, err
	}
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, apperr.ErrNotFound)
	}
	return s.findOne(ctx, op, bson.D{{Key: "_id", Value: oid}})
}

// GetUserByEmail возвращает пользователя по email.
func (s *Storage) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	const op = "storage.mongodb.GetUserByEmail"
	if err := s.ready(op); err != nil {
		return nil, err
	}
	return s.findOne(ctx, op, bson.D{{Key: "email", Value: email}})
}

func (s *Storage) findOne(ctx context.Context, op string, filter bson.D) (*models.User, error) {
	var doc userDocument
	if err := s.users.FindOne(ctx, filter).Decode(&doc); err != nil {
		return nil, mapError(op, err)
	}
	return doc.toModel(), nil
}

// UpdateUser применяет заданные поля через find_one_and_update и возвращает документ после изменения.
func (s *Storage) UpdateUser(ctx context.Context, id string, changes models.UserChanges) (*models.User, error) {
	const op = "storage.mongodb.UpdateUser"
	if err := s.ready(op); err != nil {
		return nil, err
	}
	if changes.IsEmpty() {
		return s.GetUserByID(ctx, id)
	}
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, apperr.ErrNotFound)
	}

	set := bson.D{{Key: "updated_at", Value: s.now()}}
	if changes.Email != nil {
		set = append(set, bson.E{Key: "email", Value: *changes.Email})
	}
	if changes.FullName != nil {
		set = append(set, bson.E{Key: "full_name", Value: *changes.FullName})
	}
	if changes.HashedPassword != nil {
		set = append(set, bson.E{Key: "hashed_password", Value: *changes.HashedPassword})
	}
	if changes.IsActive != nil {
		set = append(set, bson.E{Key: "is_active", Value: *changes.IsActive})
	}

	var doc userDocument
	err = s.users.FindOneAndUpdate(ctx,
		bson.D{{Key: "_id", Value: oid}},
		bson.D{{Key: "$set", Value: set}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	if err != nil {
		return nil, mapError(op, err)
	}
	return doc.toModel(), nil
}

// ListUsers возвращает страницу пользователей, упорядоченных по _id.
func (s *Storage) ListUsers(ctx context.Context, skip, limit int) ([]*models.User, error) {
	const op = "storage.mongodb.ListUsers"
	if err := s.ready(op); err != nil {
		return nil, err
	}

	cursor, err := s.users.Find(ctx, bson.D{},
		options.Find().
			SetSort(bson.D{{Key: "_id", Value: 1}}).
			SetSkip(int64(skip)).
			SetLimit(int64(limit)),
	)
	if err != nil {
		return nil, mapError(op, err)
	}
	var docs []userDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, mapError(op, err)
	}

	users := make([]*models.User, 0, len(docs))
	for i := range docs {
		users = append(users, docs[i].toModel())
	}
	return users, nil
}

func mapError(op string, err error) error {
	switch {
	case errors.Is(err, mongo.ErrNoDocuments):
		return fmt.Errorf("%s: %w", op, apperr.ErrNotFound)
	case mongo.IsDuplicateKeyError(err):
		return fmt.Errorf("%s: %w", op, apperr.ErrConflict)
	case mongo.IsNetworkError(err), mongo.IsTimeout(err), errors.Is(err, mongo.ErrClientDisconnected):
		return fmt.Errorf("%s: %w: %w", op, apperr.ErrUnavailable, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}
