// Package server реализует gRPC-сервер сервиса учётных записей.
//
// IdentityServer разрешает bearer-токены соседних сервисов в пользователей.
// Вместе с ним регистрируется стандартный grpc.health.v1.Health.
package server

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/magabrotheeeer/user-service/internal/grpc/identity"
	"github.com/magabrotheeeer/user-service/internal/lib/apperr"
	"github.com/magabrotheeeer/user-service/internal/lib/sl"
	"github.com/magabrotheeeer/user-service/internal/models"
)

// Resolver разрешает токен в пользователя.
type Resolver interface {
	Resolve(ctx context.Context, token string) (*models.User, error)
}

// IdentityServer реализует identity.IdentityServer.
type IdentityServer struct {
	resolver Resolver
	log      *slog.Logger
}

var _ identity.IdentityServer = (*IdentityServer)(nil)

// NewIdentityServer создает новый экземпляр IdentityServer.
func NewIdentityServer(resolver Resolver, log *slog.Logger) *IdentityServer {
	return &IdentityServer{
		resolver: resolver,
		log:      log,
	}
}

// ValidateToken проверяет токен и возвращает данные владельца.
// Отключённая учётная запись не отклоняется, клиент видит is_active=false.
func (s *IdentityServer) ValidateToken(ctx context.Context, req *wrapperspb.StringValue) (*structpb.Struct, error) {
	u, err := s.resolver.Resolve(ctx, req.GetValue())
	if err != nil {
		s.log.Info("ValidateToken failed", sl.Err(err))
		return nil, toStatus(err)
	}

	out, err := structpb.NewStruct(map[string]any{
		identity.FieldUserID:      u.ID,
		identity.FieldEmail:       u.Email,
		identity.FieldIsActive:    u.IsActive,
		identity.FieldIsSuperuser: u.IsSuperuser,
	})
	if err != nil {
		s.log.Error("failed to build response", sl.Err(err))
		return nil, status.Error(codes.Internal, "internal error")
	}
	return out, nil
}

func toStatus(err error) error {
	switch {
	case errors.Is(err, apperr.ErrUnauthenticated):
		return status.Error(codes.Unauthenticated, "invalid token")
	case errors.Is(err, apperr.ErrUnavailable):
		return status.Error(codes.Unavailable, "service temporarily unavailable")
	default:
		return status.Error(codes.Internal, "internal error")
	}
}

// LoggingInterceptor пишет в лог каждый unary-вызов с кодом ответа и длительностью.
func LoggingInterceptor(log *slog.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		start := time.Now()
		resp, err := handler(ctx, req)
		log.Info("grpc request",
			slog.String("method", info.FullMethod),
			slog.String("code", status.Code(err).String()),
			slog.Duration("duration", time.Since(start)),
		)
		return resp, err
	}
}

// New собирает grpc.Server с сервисами Identity и Health.
func New(resolver Resolver, log *slog.Logger) *grpc.Server {
	srv := grpc.NewServer(grpc.UnaryInterceptor(LoggingInterceptor(log)))
	identity.RegisterIdentityServer(srv, NewIdentityServer(resolver, log))

	hs := health.NewServer()
	hs.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	hs.SetServingStatus(identity.ServiceName, healthpb.HealthCheckResponse_SERVING)
	healthpb.RegisterHealthServer(srv, hs)
	return srv
}
