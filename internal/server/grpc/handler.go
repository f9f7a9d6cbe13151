package grpc

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/gophauth/internal/common"
	pb "github.com/dmitrijs2005/gophauth/internal/proto"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func (s *GRPCServer) Register(ctx context.Context, req *pb.RegisterRequest) (*pb.RegisterResponse, error) {
	user, err := s.users.Register(ctx, models.NewUser{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		s.metrics.ObserveOutcome("register", resultOf(err))
		return nil, toStatus(err)
	}

	s.metrics.ObserveOutcome("register", "ok")
	return &pb.RegisterResponse{User: toUser(user)}, nil
}

func (s *GRPCServer) Login(ctx context.Context, req *pb.LoginRequest) (*pb.LoginResponse, error) {
	tokens, err := s.users.Login(ctx, models.LoginUser{Email: req.Email, Password: req.Password})
	if err != nil {
		s.metrics.ObserveOutcome("login", resultOf(err))
		return nil, toStatus(err)
	}

	s.metrics.ObserveOutcome("login", "ok")
	return &pb.LoginResponse{
		User:         toUser(&tokens.User),
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
	}, nil
}

func (s *GRPCServer) Refresh(ctx context.Context, req *pb.RefreshRequest) (*pb.RefreshResponse, error) {
	token, err := s.users.Refresh(ctx, models.RefreshRequest{RefreshToken: req.RefreshToken})
	if err != nil {
		s.metrics.ObserveOutcome("refresh", resultOf(err))
		return nil, toStatus(err)
	}

	s.metrics.ObserveOutcome("refresh", "ok")
	return &pb.RefreshResponse{AccessToken: token.AccessToken, RefreshToken: token.RefreshToken}, nil
}

// Me returns the claims placed in the context by accessTokenInterceptor.
func (s *GRPCServer) Me(ctx context.Context, _ *pb.MeRequest) (*pb.MeResponse, error) {
	claims, ok := claimsFromContext(ctx)
	if !ok {
		return nil, status.Error(codes.Unauthenticated, common.ErrorUnauthorized.Error())
	}
	return &pb.MeResponse{
		Subject:   claims.Subject,
		Role:      claims.Role,
		ExpiresAt: claims.ExpiresAt.Unix(),
	}, nil
}

func toUser(u *models.User) *pb.User {
	return &pb.User{ID: u.ID, Name: u.Name, Email: u.Email, Role: u.RoleOrEmpty()}
}

// toStatus maps an error to a gRPC status carrying only the public message.
// A conflict also names the offending field in a BadRequest detail.
func toStatus(err error) error {
	switch {
	case errors.Is(err, common.ErrorUnauthorized):
		return status.Error(codes.Unauthenticated, common.ErrorUnauthorized.Error())
	case errors.Is(err, common.ErrorConflict):
		st := status.New(codes.AlreadyExists, err.Error())
		var e *common.Error
		if errors.As(err, &e) && e.Field != "" {
			if withDetails, derr := st.WithDetails(&errdetails.BadRequest{
				FieldViolations: []*errdetails.BadRequest_FieldViolation{
					{Field: e.Field, Description: err.Error()},
				},
			}); derr == nil {
				st = withDetails
			}
		}
		return st.Err()
	case errors.Is(err, common.ErrorNotFound):
		return status.Error(codes.NotFound, common.ErrorNotFound.Error())
	default:
		return status.Error(codes.Internal, common.ErrorInternal.Error())
	}
}

// resultOf labels an error for the outcomes counter.
func resultOf(err error) string {
	switch {
	case errors.Is(err, common.ErrorUnauthorized):
		return "unauthorized"
	case errors.Is(err, common.ErrorConflict):
		return "conflict"
	case errors.Is(err, common.ErrorNotFound):
		return "not_found"
	default:
		return "internal"
	}
}
