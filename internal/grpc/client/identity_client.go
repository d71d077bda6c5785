// Package client содержит Go-клиент gRPC-сервиса users.v1.Identity
// для сервисов, которым нужно проверять bearer-токены пользователей.
package client

import (
	"context"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/magabrotheeeer/user-service/internal/grpc/identity"
)

// Identity владелец токена.
type Identity struct {
	UserID      string
	Email       string
	IsActive    bool
	IsSuperuser bool
}

// IdentityClient обёртка над identity.IdentityClient.
type IdentityClient struct {
	conn   *grpc.ClientConn
	client identity.IdentityClient
}

// NewIdentityClient открывает соединение с addr без TLS.
func NewIdentityClient(addr string, opts ...grpc.DialOption) (*IdentityClient, error) {
	opts = append([]grpc.DialOption{grpc.WithTransportCredentials(insecure.NewCredentials())}, opts...)
	conn, err := grpc.NewClient(addr, opts...)
	if err != nil {
		return nil, fmt.Errorf("client.NewIdentityClient: %w", err)
	}
	return &IdentityClient{
		conn:   conn,
		client: identity.NewIdentityClient(conn),
	}, nil
}

// Close закрывает соединение.
func (c *IdentityClient) Close() error {
	return c.conn.Close()
}

// ValidateToken возвращает владельца токена. Ошибка несёт gRPC-статус сервера.
func (c *IdentityClient) ValidateToken(ctx context.Context, token string) (*Identity, error) {
	resp, err := c.client.ValidateToken(ctx, wrapperspb.String(token))
	if err != nil {
		return nil, err
	}
	f := resp.GetFields()
	return &Identity{
		UserID:      f[identity.FieldUserID].GetStringValue(),
		Email:       f[identity.FieldEmail].GetStringValue(),
		IsActive:    f[identity.FieldIsActive].GetBoolValue(),
		IsSuperuser: f[identity.FieldIsSuperuser].GetBoolValue(),
	}, nil
}
