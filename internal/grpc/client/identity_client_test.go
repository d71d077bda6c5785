package client

import (
	"context"
	"io"
	"log/slog"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"

	"github.com/magabrotheeeer/user-service/internal/grpc/server"
	"github.com/magabrotheeeer/user-service/internal/lib/apperr"
	"github.com/magabrotheeeer/user-service/internal/models"
)

type staticResolver map[string]*models.User

func (r staticResolver) Resolve(_ context.Context, token string) (*models.User, error) {
	if u, ok := r[token]; ok {
		return u, nil
	}
	return nil, apperr.ErrUnauthenticated
}

func newTestClient(t *testing.T, resolver server.Resolver) *IdentityClient {
	t.Helper()
	lis := bufconn.Listen(1 << 20)
	srv := server.New(resolver, slog.New(slog.NewTextHandler(io.Discard, nil)))
	go func() { _ = srv.Serve(lis) }()
	t.Cleanup(srv.Stop)

	c, err := NewIdentityClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestIdentityClient_ValidateToken(t *testing.T) {
	c := newTestClient(t, staticResolver{
		"alice-token": {ID: "u-1", Email: "alice@example.com", IsActive: true},
		"admin-token": {ID: "u-0", Email: "admin@example.com", IsActive: true, IsSuperuser: true},
	})

	got, err := c.ValidateToken(context.Background(), "alice-token")
	require.NoError(t, err)
	assert.Equal(t, &Identity{UserID: "u-1", Email: "alice@example.com", IsActive: true}, got)

	got, err = c.ValidateToken(context.Background(), "admin-token")
	require.NoError(t, err)
	assert.True(t, got.IsSuperuser)

	_, err = c.ValidateToken(context.Background(), "bogus")
	require.Error(t, err)
	assert.Equal(t, codes.Unauthenticated, status.Code(err))
}
