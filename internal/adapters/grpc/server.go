package grpc

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/viralforge/brandhub/internal/domain"
)

const serviceName = "brandhub.internal.v1.InternalService"

// Authenticator is the slice of the application service exposed to other
// services over gRPC.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (domain.Actor, error)
	CheckSession(ctx context.Context, accountID uuid.UUID) (domain.PublicAccount, error)
}

type InternalService interface {
	ValidateToken(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetAccount(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

type InternalServer struct {
	auth Authenticator
}

func NewInternalServer(auth Authenticator) *InternalServer {
	return &InternalServer{auth: auth}
}

// NewServer builds a gRPC server carrying the internal service and the
// standard health service, reported as serving.
func NewServer(auth Authenticator, opts ...grpc.ServerOption) *grpc.Server {
	server := grpc.NewServer(opts...)
	Register(server, NewInternalServer(auth))

	healthServer := health.NewServer()
	healthServer.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	healthServer.SetServingStatus(serviceName, healthpb.HealthCheckResponse_SERVING)
	healthpb.RegisterHealthServer(server, healthServer)
	return server
}

func Register(server grpc.ServiceRegistrar, svc InternalService) {
	server.RegisterService(&grpc.ServiceDesc{
		ServiceName: serviceName,
		HandlerType: (*InternalService)(nil),
		Methods: []grpc.MethodDesc{
			{MethodName: "ValidateToken", Handler: unaryHandler("ValidateToken", svc.ValidateToken)},
			{MethodName: "GetAccount", Handler: unaryHandler("GetAccount", svc.GetAccount)},
		},
		Streams:  []grpc.StreamDesc{},
		Metadata: "brandhub/internal/v1/internal.proto",
	}, svc)
}

func (s *InternalServer) ValidateToken(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	token := req.GetFields()["token"].GetStringValue()
	if token == "" {
		return nil, status.Error(codes.InvalidArgument, "missing token")
	}
	actor, err := s.auth.Authenticate(ctx, token)
	if err != nil {
		return nil, status.Error(codes.Unauthenticated, "invalid token")
	}
	resp, err := structpb.NewStruct(map[string]any{
		"valid":   true,
		"user_id": actor.AccountID.String(),
		"role":    string(actor.Role),
	})
	if err != nil {
		return nil, status.Errorf(codes.Internal, "build response: %v", err)
	}
	return resp, nil
}

func (s *InternalServer) GetAccount(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	id, err := uuid.Parse(req.GetFields()["user_id"].GetStringValue())
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, "invalid user_id")
	}
	account, err := s.auth.CheckSession(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			return nil, status.Error(codes.NotFound, "account not found")
		}
		return nil, status.Errorf(codes.Internal, "load account: %v", err)
	}
	resp, err := structpb.NewStruct(map[string]any{
		"user_id":           account.ID.String(),
		"name":              account.Name,
		"email":             account.Email,
		"role":              string(account.Role),
		"status":            string(account.Status),
		"is_email_verified": account.IsEmailVerified,
	})
	if err != nil {
		return nil, status.Errorf(codes.Internal, "build response: %v", err)
	}
	return resp, nil
}

type structMethod func(context.Context, *structpb.Struct) (*structpb.Struct, error)

func unaryHandler(method string, call structMethod) func(any, context.Context, func(any) error, grpc.UnaryServerInterceptor) (any, error) {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		req := &structpb.Struct{}
		if err := dec(req); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(ctx, req)
		}
		info := &grpc.UnaryServerInfo{
			Server:     srv,
			FullMethod: "/" + serviceName + "/" + method,
		}
		handler := func(ctx context.Context, req any) (any, error) {
			typed, ok := req.(*structpb.Struct)
			if !ok {
				return nil, status.Error(codes.InvalidArgument, "invalid request type")
			}
			return call(ctx, typed)
		}
		return interceptor(ctx, req, info, handler)
	}
}
