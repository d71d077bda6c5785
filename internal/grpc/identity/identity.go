// Package identity описывает gRPC-сервис users.v1.Identity.
//
// Сервис принимает bearer-токен в google.protobuf.StringValue и возвращает
// учётную запись его владельца в google.protobuf.Struct с полями user_id,
// email, is_active и is_superuser. Описание сервиса собрано вручную поверх
// well-known types, поэтому отдельная кодогенерация не нужна.
package identity

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

const (
	// ServiceName полное имя сервиса.
	ServiceName = "users.v1.Identity"
	// ValidateTokenMethod полное имя метода ValidateToken.
	ValidateTokenMethod = "/users.v1.Identity/ValidateToken"
)

// Поля ответа ValidateToken.
const (
	FieldUserID      = "user_id"
	FieldEmail       = "email"
	FieldIsActive    = "is_active"
	FieldIsSuperuser = "is_superuser"
)

// IdentityServer серверная часть сервиса.
type IdentityServer interface {
	ValidateToken(ctx context.Context, token *wrapperspb.StringValue) (*structpb.Struct, error)
}

// IdentityClient клиентская часть сервиса.
type IdentityClient interface {
	ValidateToken(ctx context.Context, token *wrapperspb.StringValue, opts ...grpc.CallOption) (*structpb.Struct, error)
}

type identityClient struct {
	cc grpc.ClientConnInterface
}

// NewIdentityClient создаёт клиента поверх соединения.
func NewIdentityClient(cc grpc.ClientConnInterface) IdentityClient {
	return &identityClient{cc: cc}
}

func (c *identityClient) ValidateToken(ctx context.Context, token *wrapperspb.StringValue, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, ValidateTokenMethod, token, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

// RegisterIdentityServer регистрирует реализацию сервиса на gRPC-сервере.
func RegisterIdentityServer(s grpc.ServiceRegistrar, srv IdentityServer) {
	s.RegisterService(&ServiceDesc, srv)
}

func validateTokenHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(wrapperspb.StringValue)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(IdentityServer).ValidateToken(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: ValidateTokenMethod,
	}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(IdentityServer).ValidateToken(ctx, req.(*wrapperspb.StringValue))
	}
	return interceptor(ctx, in, info, handler)
}

// ServiceDesc описание сервиса для grpc.Server.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*IdentityServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "ValidateToken",
			Handler:    validateTokenHandler,
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "users/v1/identity.proto",
}
